package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/charseed/internal/inference"
	"github.com/samcharles93/charseed/internal/logger"
	"github.com/samcharles93/charseed/internal/model"
)

func initModelCmd() *cli.Command {
	var (
		out         string
		weightsSeed int64
		length      int64
		force       bool
	)

	return &cli.Command{
		Name:  "init-model",
		Usage: "Write a dense model with random weights plus its metadata.json",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output model path",
				Value:       filepath.Join(defaultModelsDir, "model.json"),
				Destination: &out,
			},
			&cli.Int64Flag{
				Name:        "weights-seed",
				Usage:       "seed for the random weights",
				Value:       1,
				Destination: &weightsSeed,
			},
			&cli.Int64Flag{
				Name:        "length",
				Aliases:     []string{"l"},
				Usage:       "window length",
				Value:       model.DefaultMaxLen,
				Destination: &length,
			},
			&cli.BoolFlag{
				Name:        "force",
				Usage:       "overwrite an existing model",
				Destination: &force,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyWindowConfig(cmd, fileConfig, &length)

			if !force && inference.Available(out) {
				return cli.Exit(fmt.Sprintf("error: %s already exists (use --force)", out), 1)
			}

			meta := model.DefaultMetadata("dense")
			meta.MaxLen = int(length)
			temp := inference.DefaultTemperature
			steps := inference.DefaultSteps
			meta.Temperature = &temp
			meta.Steps = &steps

			dense, err := model.NewDense(meta, weightsSeed)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: build model: %v", err), 1)
			}
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return cli.Exit(fmt.Sprintf("error: create output dir: %v", err), 1)
			}
			if err := dense.Save(out); err != nil {
				return cli.Exit(fmt.Sprintf("error: write model: %v", err), 1)
			}
			metaPath := filepath.Join(filepath.Dir(out), model.MetadataFileName)
			if err := model.WriteMetadata(metaPath, dense.Metadata()); err != nil {
				return cli.Exit(fmt.Sprintf("error: write metadata: %v", err), 1)
			}

			fp, err := inference.Fingerprint(out)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: fingerprint: %v", err), 1)
			}
			log.Info("model written", "path", out, "metadata", metaPath, "fingerprint", fp)
			fmt.Println(out)
			return nil
		},
	}
}
