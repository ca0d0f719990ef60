package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/charseed/internal/version"
)

func versionCmd() *cli.Command {
	var (
		short  bool
		asJSON bool
	)

	return &cli.Command{
		Name:  "version",
		Usage: "Print version information",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "short", Usage: "print only the version and short commit", Destination: &short},
			&cli.BoolFlag{Name: "json", Usage: "print build information as JSON", Destination: &asJSON},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			switch {
			case short:
				fmt.Println(version.String())
				return nil
			case asJSON:
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(version.Resolve())
			}
			writeVersion(os.Stdout, version.Resolve())
			return nil
		},
	}
}

// writeVersion prints the build block followed by the runtime the
// binary was built for.
func writeVersion(w io.Writer, info version.Info) {
	_, _ = fmt.Fprintf(w, "charseed %s\n", info.Version)
	if info.Commit != "" {
		_, _ = fmt.Fprintf(w, "  commit:     %s\n", info.Commit)
	}
	if info.BuildTime != "" {
		_, _ = fmt.Fprintf(w, "  built:      %s\n", info.BuildTime)
	}
	_, _ = fmt.Fprintf(w, "  go:         %s %s/%s\n", info.GoVersion, runtime.GOOS, runtime.GOARCH)
}
