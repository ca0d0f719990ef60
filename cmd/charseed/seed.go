package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/charseed/internal/inference"
	"github.com/samcharles93/charseed/internal/logger"
	"github.com/samcharles93/charseed/internal/model"
	"github.com/samcharles93/charseed/internal/tokenizer"
)

func seedCmd() *cli.Command {
	var (
		length  int64
		rngSeed int64
	)

	flags := append([]cli.Flag{}, commonModelFlags()...)
	flags = append(flags,
		&cli.Int64Flag{
			Name:        "length",
			Aliases:     []string{"l"},
			Usage:       "seed length when no model is given",
			Value:       model.DefaultMaxLen,
			Destination: &length,
		},
		&cli.Int64Flag{
			Name:        "rng-seed",
			Usage:       "random seed (-1 = time based)",
			Value:       -1,
			Destination: &rngSeed,
		},
	)

	return &cli.Command{
		Name:  "seed",
		Usage: "Print a random seed drawn from the vocabulary",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyModelConfig(cmd, fileConfig)
			applyWindowConfig(cmd, fileConfig, &length)
			if fileConfig.Seed != nil && !cmd.IsSet("rng-seed") {
				rngSeed = *fileConfig.Seed
			}

			if strings.TrimSpace(modelPath) != "" {
				loader := newLoader()
				loader.Logger = logger.FromContext(ctx)
				loaded, err := loader.Load(ctx, modelPath)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: load model: %v", err), 1)
				}
				defer func() { _ = loaded.Engine.Close() }()
				printSeed(os.Stdout, loaded.Engine.RandomSeed(rngSeed), logger.IsTerminal(os.Stdout))
				return nil
			}

			if length <= 0 {
				return cli.Exit(fmt.Sprintf("error: length must be positive, got %d", length), 1)
			}
			if rngSeed < 0 {
				rngSeed = time.Now().UnixNano()
			}
			rng := rand.New(rand.NewSource(rngSeed))
			seed := inference.RandomSeed(rng, tokenizer.DefaultCharVocab(), int(length))
			printSeed(os.Stdout, seed, logger.IsTerminal(os.Stdout))
			return nil
		},
	}
}

// printSeed writes seed on its own line. Seeds may contain C1 controls such
// as U+009B, so a terminal gets the sanitised form; pipes get the raw runes.
func printSeed(w io.Writer, seed string, terminal bool) {
	if terminal {
		seed = inference.SanitizeForDisplay(seed)
	}
	_, _ = fmt.Fprintln(w, seed)
}
