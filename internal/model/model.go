package model

import (
	"context"
	"errors"

	"github.com/samcharles93/charseed/internal/tensor"
)

var (
	// ErrUnavailable is returned when a predictor fails or was never initialised.
	ErrUnavailable = errors.New("predictor unavailable")
	// ErrShapeMismatch is returned when an input window or a weight file does
	// not match the model's [1, max_len, vocabulary_size] contract.
	ErrShapeMismatch = errors.New("shape mismatch")
	// ErrModelNotFound is returned when a model file does not exist.
	ErrModelNotFound = errors.New("model not found")
)

// Predictor maps an encoded window of shape [1, max_len, vocabulary_size] to
// a probability vector with one entry per vocabulary index.
type Predictor interface {
	Predict(ctx context.Context, input tensor.Batch) ([]float32, error)
}

// PredictorFunc adapts a plain function to the Predictor interface.
type PredictorFunc func(ctx context.Context, input tensor.Batch) ([]float32, error)

func (f PredictorFunc) Predict(ctx context.Context, input tensor.Batch) ([]float32, error) {
	return f(ctx, input)
}

// Close releases resources held by p if it implements io.Closer.
func Close(p Predictor) error {
	if c, ok := p.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
