package main

import (
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/charseed/internal/inference"
)

var (
	modelPath   string
	onnxLibrary string
	onnxInput   string
	onnxOutput  string
	onnxThreads int64
	configFile  string
	logLevel    string
	logFormat   string
	debug       bool
)

func commonModelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "model",
			Aliases:     []string{"m"},
			Usage:       "path to a .onnx export or a dense .json model",
			Sources:     cli.EnvVars(envCharseedModel),
			Destination: &modelPath,
		},
		&cli.StringFlag{
			Name:        "onnx-library",
			Usage:       "path to the onnxruntime shared library",
			Destination: &onnxLibrary,
		},
		&cli.StringFlag{
			Name:        "onnx-input",
			Usage:       "name of the ONNX model input",
			Value:       inference.DefaultONNXInputName,
			Destination: &onnxInput,
		},
		&cli.StringFlag{
			Name:        "onnx-output",
			Usage:       "name of the ONNX model output",
			Value:       inference.DefaultONNXOutputName,
			Destination: &onnxOutput,
		},
		&cli.Int64Flag{
			Name:        "onnx-threads",
			Usage:       "intra-op threads for ONNX Runtime (0 = runtime default)",
			Destination: &onnxThreads,
		},
	}
}

func rootFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml",
			Value:       configPath(),
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (auto, pretty, json, text)",
			Value:       "auto",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

func newLoader() inference.Loader {
	return inference.Loader{
		SharedLibraryPath: onnxLibrary,
		InputName:         onnxInput,
		OutputName:        onnxOutput,
		Threads:           int(onnxThreads),
	}
}
