package model

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/samcharles93/charseed/internal/tensor"
)

// DenseFormat tags model files written by (*Dense).Save.
const DenseFormat = "charseed-dense"

// Dense is a single linear softmax layer from the flattened one-hot window to
// the vocabulary. It stands in for the pretrained network when no exported
// model is at hand and is cheap enough for tests and benchmarks.
type Dense struct {
	meta Metadata

	W    tensor.Mat // [max_len*vocab x vocab]
	Bias []float32  // [vocab]
}

// NewDense builds a dense model with deterministic random weights derived
// from seed. Biases are zeroed.
func NewDense(meta Metadata, seed int64) (*Dense, error) {
	if meta.ModelType == "" {
		meta.ModelType = "dense"
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	d := &Dense{
		meta: meta,
		W:    tensor.NewMat(meta.MaxLen*meta.VocabularySize, meta.VocabularySize),
		Bias: make([]float32, meta.VocabularySize),
	}
	tensor.FillRand(&d.W, seed+11)
	return d, nil
}

// Metadata returns the model description.
func (d *Dense) Metadata() Metadata {
	return d.meta
}

// Predict returns softmax(x·W + b) where x is the flattened input window.
func (d *Dense) Predict(ctx context.Context, input tensor.Batch) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := d.meta.CheckInput(input); err != nil {
		return nil, err
	}
	probs := make([]float32, d.meta.VocabularySize)
	tensor.VecMat(probs, input.Data, &d.W)
	tensor.Add(probs, d.Bias)
	tensor.Softmax(probs)
	return probs, nil
}

type denseFile struct {
	Format string `json:"format"`
	Metadata
	Weights []float32 `json:"weights"`
	Bias    []float32 `json:"bias"`
}

// Save writes the model as a single JSON document.
func (d *Dense) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	if err := enc.Encode(denseFile{
		Format:   DenseFormat,
		Metadata: d.meta,
		Weights:  d.W.Data,
		Bias:     d.Bias,
	}); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode dense model: %w", err)
	}
	return f.Close()
}

// LoadDense reads a model written by Save.
func LoadDense(path string) (*Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var df denseFile
	if err := json.NewDecoder(f).Decode(&df); err != nil {
		return nil, fmt.Errorf("parse dense model %s: %w", path, err)
	}
	if df.Format != DenseFormat {
		return nil, fmt.Errorf("dense model %s: unexpected format %q", path, df.Format)
	}
	if err := df.Metadata.Validate(); err != nil {
		return nil, fmt.Errorf("dense model %s: %w", path, err)
	}
	v := df.VocabularySize
	w, err := tensor.NewMatFromData(df.MaxLen*v, v, df.Weights)
	if err != nil {
		return nil, fmt.Errorf("%w: dense weights: %v", ErrShapeMismatch, err)
	}
	if len(df.Bias) != v {
		return nil, fmt.Errorf("%w: dense bias has %d entries, want %d", ErrShapeMismatch, len(df.Bias), v)
	}
	return &Dense{meta: df.Metadata, W: w, Bias: df.Bias}, nil
}
