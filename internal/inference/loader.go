package inference

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/samcharles93/charseed/internal/logger"
	"github.com/samcharles93/charseed/internal/metrics"
	"github.com/samcharles93/charseed/internal/model"
)

const (
	DefaultONNXInputName  = "input"
	DefaultONNXOutputName = "output"
)

type Loader struct {
	// ONNX runtime settings, ignored for dense models.
	SharedLibraryPath string
	InputName         string
	OutputName        string
	Threads           int

	Logger logger.Logger
}

type LoadResult struct {
	Engine             Engine
	Metadata           model.Metadata
	GenerationDefaults GenDefaults
	// Fingerprint is the hex xxhash64 of the model file.
	Fingerprint string
	Path        string
}

// Available reports whether path names an existing regular file.
func Available(path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Load opens the model at modelPath. Files ending in .json are dense models,
// files ending in .onnx are served through ONNX Runtime. A metadata.json next
// to the model supplies or cross-checks its dimensions.
func (l Loader) Load(ctx context.Context, modelPath string) (res *LoadResult, err error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, fmt.Errorf("model path is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log := l.Logger
	if log == nil {
		log = logger.FromContext(ctx)
	}

	start := time.Now()
	modelType := ""
	defer func() {
		metrics.RecordModelLoad(modelType, time.Since(start), err)
	}()

	info, err := os.Stat(modelPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", model.ErrModelNotFound, modelPath)
		}
		return nil, err
	}
	if info.IsDir() {
		return nil, fmt.Errorf("model path %s is a directory", modelPath)
	}

	sidecar, hasSidecar, err := readSidecar(modelPath)
	if err != nil {
		return nil, err
	}

	var (
		predictor model.Predictor
		meta      model.Metadata
	)
	switch ext := strings.ToLower(filepath.Ext(modelPath)); ext {
	case ".json":
		dense, err := model.LoadDense(modelPath)
		if err != nil {
			return nil, err
		}
		meta = dense.Metadata()
		if hasSidecar {
			if sidecar.VocabularySize != meta.VocabularySize || sidecar.MaxLen != meta.MaxLen {
				return nil, fmt.Errorf("%w: %s declares [%d %d], model is [%d %d]",
					model.ErrShapeMismatch, model.MetadataFileName,
					sidecar.MaxLen, sidecar.VocabularySize, meta.MaxLen, meta.VocabularySize)
			}
			meta = mergeDefaults(meta, sidecar)
		}
		predictor = dense
	case ".onnx":
		meta = model.DefaultMetadata("onnx")
		if hasSidecar {
			meta = sidecar
		}
		onnx, err := model.NewONNX(model.ONNXConfig{
			Path:              modelPath,
			SharedLibraryPath: l.SharedLibraryPath,
			InputName:         valueOr(l.InputName, DefaultONNXInputName),
			OutputName:        valueOr(l.OutputName, DefaultONNXOutputName),
			Threads:           l.Threads,
			Metadata:          meta,
		})
		if err != nil {
			return nil, err
		}
		predictor = onnx
	default:
		return nil, fmt.Errorf("unsupported model format %q (want .json or .onnx)", ext)
	}
	modelType = meta.ModelType

	cleanup := func(err error) (*LoadResult, error) {
		_ = model.Close(predictor)
		return nil, err
	}

	fingerprint, err := Fingerprint(modelPath)
	if err != nil {
		return cleanup(err)
	}
	engine, err := NewEngine(predictor, meta, log)
	if err != nil {
		return cleanup(err)
	}

	log.Info("model loaded",
		"path", modelPath,
		"model_type", meta.ModelType,
		"vocabulary_size", meta.VocabularySize,
		"max_len", meta.MaxLen,
		"fingerprint", fingerprint,
	)

	return &LoadResult{
		Engine:   engine,
		Metadata: meta,
		GenerationDefaults: GenDefaults{
			Temperature: meta.Temperature,
			Steps:       meta.Steps,
		},
		Fingerprint: fingerprint,
		Path:        modelPath,
	}, nil
}

// Fingerprint returns the hex xxhash64 of the file at path.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", path, err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

func readSidecar(modelPath string) (model.Metadata, bool, error) {
	path := filepath.Join(filepath.Dir(modelPath), model.MetadataFileName)
	if filepath.Clean(path) == filepath.Clean(modelPath) {
		return model.Metadata{}, false, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Metadata{}, false, nil
		}
		return model.Metadata{}, false, err
	}
	meta, err := model.ReadMetadata(path)
	if err != nil {
		return model.Metadata{}, false, err
	}
	return meta, true, nil
}

func mergeDefaults(meta, sidecar model.Metadata) model.Metadata {
	if meta.Temperature == nil {
		meta.Temperature = sidecar.Temperature
	}
	if meta.Steps == nil {
		meta.Steps = sidecar.Steps
	}
	return meta
}

func valueOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
