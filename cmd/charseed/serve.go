package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/charseed/internal/api"
	"github.com/samcharles93/charseed/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		preload     bool
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the demo page and the generation API",
		Flags: append(commonModelFlags(),
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
			&cli.DurationFlag{
				Name:        "read-timeout",
				Usage:       "read header timeout",
				Value:       30 * time.Second,
				Destination: &readTimeout,
			},
			&cli.BoolFlag{
				Name:        "preload",
				Usage:       "load the model before accepting requests",
				Destination: &preload,
			},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			applyServeConfig(cmd, fileConfig, &addr)

			loader := newLoader()
			loader.Logger = log
			provider := api.NewCachedEngineProvider(api.EngineProviderConfig{
				ModelPath: defaultServeModelPath(modelPath),
				Loader:    loader,
			})
			defer func() { _ = provider.Close() }()

			status := provider.Status()
			log.Info(status.Line(), "path", status.Path)
			if preload {
				if _, err := provider.Load(ctx); err != nil {
					log.Error("preload failed", "path", status.Path, "error", err)
				}
			}

			store := api.NewGenerationStore(api.DefaultStoreCapacity)
			server := api.NewServer(store, provider, log)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
