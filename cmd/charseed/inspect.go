package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/charseed/internal/inference"
	"github.com/samcharles93/charseed/internal/logger"
	"github.com/samcharles93/charseed/internal/model"
)

type inspectOutput struct {
	Path        string         `json:"path"`
	Fingerprint string         `json:"fingerprint"`
	Metadata    model.Metadata `json:"metadata"`
	InputShape  [3]int         `json:"input_shape"`
}

func inspectCmd() *cli.Command {
	var (
		showVocab bool
		asJSON    bool
	)

	flags := append([]cli.Flag{}, commonModelFlags()...)
	flags = append(flags,
		&cli.BoolFlag{Name: "vocab", Usage: "print the character table", Destination: &showVocab},
		&cli.BoolFlag{Name: "json", Usage: "print metadata as JSON", Destination: &asJSON},
	)

	return &cli.Command{
		Name:  "inspect",
		Usage: "Show model metadata and fingerprint",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyModelConfig(cmd, fileConfig)
			resolvedModelPath, err := resolveModelPath(modelPath, "", os.Stdin, os.Stderr)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: resolve model: %v", err), 1)
			}

			loader := newLoader()
			loader.Logger = logger.FromContext(ctx)
			loaded, err := loader.Load(ctx, resolvedModelPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: load model: %v", err), 1)
			}
			defer func() { _ = loaded.Engine.Close() }()
			meta := loaded.Metadata

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(inspectOutput{
					Path:        loaded.Path,
					Fingerprint: loaded.Fingerprint,
					Metadata:    meta,
					InputShape:  meta.InputShape(),
				})
			}

			shape := meta.InputShape()
			fmt.Printf("path:            %s\n", loaded.Path)
			fmt.Printf("fingerprint:     %s\n", loaded.Fingerprint)
			fmt.Printf("model_type:      %s\n", meta.ModelType)
			fmt.Printf("vocabulary_size: %d\n", meta.VocabularySize)
			fmt.Printf("max_len:         %d\n", meta.MaxLen)
			fmt.Printf("input shape:     [%d, %d, %d]\n", shape[0], shape[1], shape[2])
			if meta.Temperature != nil {
				fmt.Printf("temperature:     %g\n", *meta.Temperature)
			}
			if meta.Steps != nil {
				fmt.Printf("steps:           %d\n", *meta.Steps)
			}

			if showVocab {
				vocab, err := meta.CharVocab()
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: vocabulary: %v", err), 1)
				}
				fmt.Println()
				for i, r := range vocab.Runes() {
					fmt.Printf("%4d  %-8s U+%04X\n", i, displayRune(r), r)
				}
			}
			return nil
		},
	}
}

func displayRune(r rune) string {
	if s := inference.SanitizeForDisplay(string(r)); s == string(r) && r != '\n' && r != '\t' && r != ' ' {
		return s
	}
	return strconv.QuoteRune(r)
}
