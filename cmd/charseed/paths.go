package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/samcharles93/charseed/internal/model"
)

const (
	envCharseedModel = "CHARSEED_MODEL"

	// defaultModelsDir is searched when no model is named.
	defaultModelsDir = "resources"
)

// stdinIsTTY is a small seam for tests.
var stdinIsTTY = isTTY

// resolveModelPath picks the model to load: the --model flag (or
// CHARSEED_MODEL) when set, otherwise the single model found in modelsDir.
// Several candidates prompt for a choice when stdin is interactive.
func resolveModelPath(modelFlag, modelsDir string, stdin io.Reader, stderr io.Writer) (string, error) {
	modelFlag = strings.TrimSpace(modelFlag)
	if modelFlag != "" {
		return filepath.Clean(modelFlag), nil
	}
	if strings.TrimSpace(modelsDir) == "" {
		modelsDir = defaultModelsDir
	}

	models, err := discoverModels(modelsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("--model is required unless %s is set or %s holds a model", envCharseedModel, modelsDir)
		}
		return "", err
	}
	switch len(models) {
	case 0:
		return "", fmt.Errorf("no .onnx or .json models found in %s", modelsDir)
	case 1:
		_, _ = fmt.Fprintf(stderr, "charseed: using model %s\n", models[0])
		return models[0], nil
	default:
		if !stdinIsTTY() {
			return "", fmt.Errorf(
				"multiple models found in %s but stdin is not interactive; set --model",
				modelsDir,
			)
		}
		return selectModelInteractively(modelsDir, models, stdin, stderr)
	}
}

// defaultServeModelPath returns the model the server offers to load. A
// missing model is not an error: the server starts standing by.
func defaultServeModelPath(modelFlag string) string {
	modelFlag = strings.TrimSpace(modelFlag)
	if modelFlag != "" {
		return filepath.Clean(modelFlag)
	}
	models, err := discoverModels(defaultModelsDir)
	if err != nil || len(models) == 0 {
		return filepath.Join(defaultModelsDir, "model.json")
	}
	return models[0]
}

func discoverModels(dir string) ([]string, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("models path is not a directory: %s", dir)
	}

	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	models := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if name == model.MetadataFileName {
			continue
		}
		switch strings.ToLower(filepath.Ext(name)) {
		case ".onnx", ".json":
			models = append(models, filepath.Join(dir, name))
		}
	}
	sort.Strings(models)
	return models, nil
}

func selectModelInteractively(modelsDir string, models []string, stdin io.Reader, stderr io.Writer) (string, error) {
	if len(models) == 0 {
		return "", fmt.Errorf("no models available in %s", modelsDir)
	}

	_, _ = fmt.Fprintf(stderr, "charseed: select a model from %s\n", modelsDir)
	for i, m := range models {
		_, _ = fmt.Fprintf(stderr, "%d. %s\n", i+1, filepath.Base(m))
	}

	reader := bufio.NewReader(stdin)
	for {
		_, _ = fmt.Fprintf(stderr, "charseed: enter selection [1-%d]: ", len(models))
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			if errors.Is(err, io.EOF) {
				return "", errors.New("no selection provided on stdin; set --model")
			}
			continue
		}

		idx, convErr := strconv.Atoi(line)
		if convErr != nil || idx < 1 || idx > len(models) {
			_, _ = fmt.Fprintf(stderr, "charseed: invalid selection %q\n", line)
			if errors.Is(err, io.EOF) {
				return "", errors.New("invalid selection provided on stdin; set --model")
			}
			continue
		}
		return models[idx-1], nil
	}
}

func isTTY() bool {
	st, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (st.Mode() & os.ModeCharDevice) != 0
}
