package model

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/samcharles93/charseed/internal/tensor"
)

// ONNXConfig describes an exported Keras/TF model served through ONNX Runtime.
type ONNXConfig struct {
	Path string
	// SharedLibraryPath points at libonnxruntime when it is not on the
	// default loader path.
	SharedLibraryPath string
	InputName         string
	OutputName        string
	Threads           int
	Metadata          Metadata
}

// ONNX runs a session bound to pre-allocated input and output tensors.
// Predict calls are serialised.
type ONNX struct {
	mu      sync.Mutex
	meta    Metadata
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

var ortInitMu sync.Mutex

func initONNXRuntime(libPath string) error {
	ortInitMu.Lock()
	defer ortInitMu.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	if libPath != "" {
		ort.SetSharedLibraryPath(libPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("%w: initialize onnx runtime: %v", ErrUnavailable, err)
	}
	return nil
}

// NewONNX loads the model at cfg.Path.
func NewONNX(cfg ONNXConfig) (*ONNX, error) {
	if cfg.Path == "" {
		return nil, errors.New("onnx: model path is required")
	}
	if cfg.InputName == "" {
		return nil, errors.New("onnx: input name is required")
	}
	if cfg.OutputName == "" {
		return nil, errors.New("onnx: output name is required")
	}
	if err := cfg.Metadata.Validate(); err != nil {
		return nil, err
	}
	if err := initONNXRuntime(cfg.SharedLibraryPath); err != nil {
		return nil, err
	}

	meta := cfg.Metadata
	l, v := int64(meta.MaxLen), int64(meta.VocabularySize)
	input, err := ort.NewTensor(ort.NewShape(1, l, v), make([]float32, l*v))
	if err != nil {
		return nil, fmt.Errorf("onnx: create input tensor: %w", err)
	}
	output, err := ort.NewTensor(ort.NewShape(1, v), make([]float32, v))
	if err != nil {
		_ = input.Destroy()
		return nil, fmt.Errorf("onnx: create output tensor: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, fmt.Errorf("onnx: create session options: %w", err)
	}
	defer func() { _ = options.Destroy() }()
	if cfg.Threads > 0 {
		if err := options.SetIntraOpNumThreads(cfg.Threads); err != nil {
			_ = input.Destroy()
			_ = output.Destroy()
			return nil, fmt.Errorf("onnx: set threads: %w", err)
		}
	}

	session, err := ort.NewAdvancedSession(cfg.Path,
		[]string{cfg.InputName}, []string{cfg.OutputName},
		[]ort.Value{input}, []ort.Value{output}, options)
	if err != nil {
		_ = input.Destroy()
		_ = output.Destroy()
		return nil, fmt.Errorf("%w: onnx session %s: %v", ErrUnavailable, cfg.Path, err)
	}

	return &ONNX{meta: meta, session: session, input: input, output: output}, nil
}

// Metadata returns the model description.
func (o *ONNX) Metadata() Metadata {
	return o.meta
}

// Predict copies input into the bound tensor, runs the session and returns a
// copy of the output vector.
func (o *ONNX) Predict(ctx context.Context, input tensor.Batch) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.meta.CheckInput(input); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil, fmt.Errorf("%w: onnx session closed", ErrUnavailable)
	}
	copy(o.input.GetData(), input.Data)
	if err := o.session.Run(); err != nil {
		return nil, fmt.Errorf("%w: onnx run: %v", ErrUnavailable, err)
	}
	return append([]float32(nil), o.output.GetData()...), nil
}

// Close destroys the session and its tensors.
func (o *ONNX) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.session == nil {
		return nil
	}
	errs := []error{o.session.Destroy(), o.input.Destroy(), o.output.Destroy()}
	o.session = nil
	return errors.Join(errs...)
}
