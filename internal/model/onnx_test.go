package model

import "testing"

func TestNewONNXValidatesConfig(t *testing.T) {
	t.Parallel()

	meta := DefaultMetadata("lstm")
	tests := []struct {
		name string
		cfg  ONNXConfig
	}{
		{"missing path", ONNXConfig{InputName: "in", OutputName: "out", Metadata: meta}},
		{"missing input", ONNXConfig{Path: "m.onnx", OutputName: "out", Metadata: meta}},
		{"missing output", ONNXConfig{Path: "m.onnx", InputName: "in", Metadata: meta}},
		{"bad metadata", ONNXConfig{Path: "m.onnx", InputName: "in", OutputName: "out"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewONNX(tt.cfg); err == nil {
				t.Fatalf("expected configuration error")
			}
		})
	}
}
