package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/charseed/internal/inference"
	"github.com/samcharles93/charseed/internal/logger"
)

// generateOutput is the --json shape of a finished run.
type generateOutput struct {
	Model          string  `json:"model"`
	Seed           string  `json:"seed"`
	Text           string  `json:"text"`
	Steps          int     `json:"steps"`
	Temperature    float64 `json:"temperature"`
	ElapsedMS      float64 `json:"elapsed_ms"`
	CharsPerSecond float64 `json:"chars_per_second"`
}

func generateCmd() *cli.Command {
	var (
		seedText   string
		steps      int64
		temp       float64
		rngSeed    int64
		strict     bool
		streamMode string
		asJSON     bool
	)

	flags := append([]cli.Flag{}, commonModelFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "seed",
			Aliases:     []string{"s"},
			Usage:       "seed text (empty draws a random seed)",
			Destination: &seedText,
		},
		&cli.Int64Flag{
			Name:        "steps",
			Aliases:     []string{"n"},
			Usage:       "number of characters to generate",
			Value:       inference.DefaultSteps,
			Destination: &steps,
		},
		&cli.Float64Flag{
			Name:        "temperature",
			Aliases:     []string{"temp", "t"},
			Usage:       "sampling temperature",
			Value:       inference.DefaultTemperature,
			Destination: &temp,
		},
		&cli.Int64Flag{
			Name:        "rng-seed",
			Usage:       "random seed for sampling (-1 = time based)",
			Value:       -1,
			Destination: &rngSeed,
		},
		&cli.BoolFlag{
			Name:        "strict",
			Usage:       "fail on zero or invalid probabilities instead of clamping",
			Destination: &strict,
		},
		&cli.StringFlag{
			Name:        "stream-mode",
			Usage:       "output mode (instant, smooth, typewriter, quiet)",
			Value:       string(StreamInstant),
			Destination: &streamMode,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "print the finished run as JSON instead of streaming",
			Destination: &asJSON,
		},
	)

	return &cli.Command{
		Name:    "generate",
		Aliases: []string{"gen"},
		Usage:   "Generate text from a seed",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyGenerateConfig(cmd, fileConfig, &temp, &steps, &rngSeed, &streamMode)

			mode, err := parseStreamMode(streamMode)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if asJSON {
				mode = StreamQuiet
			}

			resolvedModelPath, err := resolveModelPath(modelPath, "", os.Stdin, os.Stderr)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: resolve model: %v", err), 1)
			}

			loader := newLoader()
			loader.Logger = log
			loaded, err := loader.Load(ctx, resolvedModelPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: load model: %v", err), 1)
			}
			defer func() { _ = loaded.Engine.Close() }()

			opts := generateOptions(cmd, fileConfig, seedText, steps, temp, rngSeed, strict)
			req := inference.ResolveRequest(opts, loaded.GenerationDefaults)
			if err := req.Validate(); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if !asJSON {
				req.OnStart = func(seed string) error {
					_, err := fmt.Fprintf(os.Stderr, "%s\nseed: %s\n", inference.StatusRunning, inference.SanitizeForDisplay(seed))
					return err
				}
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
			defer stop()

			sw := NewStreamWriter(mode, os.Stdout)
			start := time.Now()
			res, err := loaded.Engine.Generate(ctx, &req, sw.Write)
			text := sw.Flush()
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return cli.Exit("error: generation cancelled", 130)
				}
				return cli.Exit(fmt.Sprintf("error: generate: %v", err), 1)
			}
			log.Debug("generate finished", "chars", len([]rune(text)), "wall", time.Since(start))

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(generateOutput{
					Model:          loaded.Path,
					Seed:           res.Seed,
					Text:           res.Text,
					Steps:          res.Stats.Steps,
					Temperature:    req.Temperature,
					ElapsedMS:      float64(res.Stats.Elapsed) / float64(time.Millisecond),
					CharsPerSecond: res.Stats.CharsPerSecond,
				})
			}
			fmt.Println()
			_, _ = fmt.Fprintln(os.Stderr, inference.SanitizeForDisplay(inference.StatusGenerated(res.Stats.Elapsed, res.Text)))
			return nil
		},
	}
}

// generateOptions passes on only the values the user or the config file
// chose, so model defaults still apply to the rest.
func generateOptions(cmd *cli.Command, cfg Config,
	seedText string, steps int64, temp float64, rngSeed int64, strict bool,
) inference.RequestOptions {
	var opts inference.RequestOptions
	if seedText != "" {
		opts.SeedText = &seedText
	}
	if cmd.IsSet("steps") || cfg.Steps != nil {
		n := int(steps)
		opts.Steps = &n
	}
	if cmd.IsSet("temperature") || cfg.Temperature != nil {
		opts.Temperature = &temp
	}
	opts.RNGSeed = &rngSeed
	if strict {
		opts.Strict = &strict
	}
	return opts
}
