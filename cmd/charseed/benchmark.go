package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/charseed/internal/inference"
	"github.com/samcharles93/charseed/internal/logger"
)

func benchmarkCmd() *cli.Command {
	var (
		warmupRuns int64
		benchRuns  int64
		seedText   string
		steps      int64
		temp       float64
	)

	flags := append([]cli.Flag{}, commonModelFlags()...)
	flags = append(flags,
		&cli.Int64Flag{
			Name:        "warmup",
			Usage:       "number of warmup runs",
			Value:       1,
			Destination: &warmupRuns,
		},
		&cli.Int64Flag{
			Name:        "runs",
			Usage:       "number of benchmark runs",
			Value:       5,
			Destination: &benchRuns,
		},
		&cli.StringFlag{
			Name:        "seed",
			Aliases:     []string{"s"},
			Usage:       "seed text (empty draws the same random seed every run)",
			Destination: &seedText,
		},
		&cli.Int64Flag{
			Name:        "steps",
			Aliases:     []string{"n"},
			Usage:       "characters to generate per run",
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
	)

	return &cli.Command{
		Name:  "benchmark",
		Usage: "Measure generation throughput",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyModelConfig(cmd, fileConfig)
			if benchRuns <= 0 {
				return cli.Exit("error: --runs must be positive", 1)
			}

			resolvedModelPath, err := resolveModelPath(modelPath, "", os.Stdin, os.Stderr)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: resolve model: %v", err), 1)
			}

			log.Info("loading model for benchmark", "path", resolvedModelPath)
			loadStart := time.Now()
			loader := newLoader()
			loader.Logger = log
			loaded, err := loader.Load(ctx, resolvedModelPath)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: load model: %v", err), 1)
			}
			defer func() { _ = loaded.Engine.Close() }()
			loadDuration := time.Since(loadStart)

			rngSeed := int64(42)
			stepsVal := int(steps)
			opts := inference.RequestOptions{
				Steps:       &stepsVal,
				Temperature: &temp,
				RNGSeed:     &rngSeed,
			}
			if seedText != "" {
				opts.SeedText = &seedText
			}
			req := inference.ResolveRequest(opts, loaded.GenerationDefaults)
			if err := req.Validate(); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			fmt.Println("=== Charseed Benchmark ===")
			fmt.Printf("Model:      %s (%s)\n", loaded.Path, loaded.Metadata.ModelType)
			fmt.Printf("Fingerprint: %s\n", loaded.Fingerprint)
			fmt.Printf("CPUs:       %d\n", runtime.NumCPU())
			fmt.Printf("GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))
			fmt.Printf("Load:       %s\n", loadDuration.Round(time.Millisecond))
			fmt.Printf("Steps:      %d characters\n", req.Steps)
			fmt.Printf("Warmup:     %d runs\n", warmupRuns)
			fmt.Printf("Runs:       %d\n", benchRuns)
			fmt.Println()

			for i := range int(warmupRuns) {
				log.Debug("warmup run", "run", i+1)
				if _, err := loaded.Engine.Generate(ctx, &req, nil); err != nil {
					return cli.Exit(fmt.Sprintf("error: warmup run %d: %v", i+1, err), 1)
				}
			}

			bar := progressbar.NewOptions(int(benchRuns),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("Benchmarking"),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "=",
					SaucerHead:    ">",
					SaucerPadding: " ",
					BarStart:      "[",
					BarEnd:        "]",
				}),
			)

			results := make([]inference.Stats, 0, benchRuns)
			for i := range int(benchRuns) {
				res, err := loaded.Engine.Generate(ctx, &req, nil)
				if err != nil {
					_ = bar.Finish()
					return cli.Exit(fmt.Sprintf("error: benchmark run %d: %v", i+1, err), 1)
				}
				results = append(results, res.Stats)
				bar.Describe(fmt.Sprintf("Benchmarking (%.0f chars/s)", res.Stats.CharsPerSecond))
				_ = bar.Add(1)
			}
			_ = bar.Finish()
			_, _ = fmt.Fprintln(os.Stderr)

			fmt.Println("=== Results ===")
			fmt.Printf("%-6s %12s %10s %8s %12s\n", "Run", "Duration", "chars/s", "Chars", "per step")
			var sumCPS float64
			var sumDur time.Duration
			for i, r := range results {
				fmt.Printf("%-6d %12s %10.1f %8d %12s\n",
					i+1, r.Elapsed.Round(time.Microsecond), r.CharsPerSecond, r.Steps, perStep(r))
				sumCPS += r.CharsPerSecond
				sumDur += r.Elapsed
			}
			n := float64(len(results))
			fmt.Printf("\n%-6s %12s %10.1f\n", "Avg", (sumDur / time.Duration(len(results))).Round(time.Microsecond), sumCPS/n)

			var mem runtime.MemStats
			runtime.ReadMemStats(&mem)
			fmt.Printf("\nMemory: %.1f MB alloc, %.1f MB sys\n",
				float64(mem.Alloc)/(1024*1024),
				float64(mem.Sys)/(1024*1024))
			return nil
		},
	}
}

func perStep(s inference.Stats) time.Duration {
	if s.Steps == 0 {
		return 0
	}
	return (s.Elapsed / time.Duration(s.Steps)).Round(time.Microsecond)
}
