package model

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/samcharles93/charseed/internal/tensor"
	"github.com/samcharles93/charseed/internal/tokenizer"
)

const (
	// DefaultMaxLen is the window length the pretrained demo model expects.
	DefaultMaxLen = 10
	// MetadataFileName is the sidecar read next to a model file.
	MetadataFileName = "metadata.json"
)

// Metadata describes a character model. The JSON layout matches the
// metadata.json exported alongside the pretrained model.
type Metadata struct {
	ModelType      string `json:"model_type"`
	VocabularySize int    `json:"vocabulary_size"`
	MaxLen         int    `json:"max_len"`

	// Vocabulary optionally overrides the built-in character table. Entry i
	// of the string is the character with index i.
	Vocabulary string `json:"vocabulary,omitempty"`

	// Generation defaults shipped with the model.
	Temperature *float64 `json:"temperature,omitempty"`
	Steps       *int     `json:"steps,omitempty"`
}

// DefaultMetadata describes the pretrained 150 character, 10 wide model.
func DefaultMetadata(modelType string) Metadata {
	return Metadata{
		ModelType:      modelType,
		VocabularySize: tokenizer.DefaultVocabSize,
		MaxLen:         DefaultMaxLen,
	}
}

// Validate checks the dimensions and the optional vocabulary override.
func (m Metadata) Validate() error {
	if m.VocabularySize <= 1 {
		return fmt.Errorf("invalid vocabulary_size: %d (must be > 1)", m.VocabularySize)
	}
	if m.MaxLen <= 0 {
		return fmt.Errorf("invalid max_len: %d (must be positive)", m.MaxLen)
	}
	if m.Temperature != nil && *m.Temperature <= 0 {
		return fmt.Errorf("invalid temperature: %v (must be positive)", *m.Temperature)
	}
	if m.Steps != nil && *m.Steps < 0 {
		return fmt.Errorf("invalid steps: %d (must be non-negative)", *m.Steps)
	}
	_, err := m.CharVocab()
	return err
}

// CharVocab returns the vocabulary the model was trained with.
func (m Metadata) CharVocab() (*tokenizer.CharVocab, error) {
	v := tokenizer.DefaultCharVocab()
	if m.Vocabulary != "" {
		custom, err := tokenizer.NewCharVocab([]rune(m.Vocabulary))
		if err != nil {
			return nil, err
		}
		v = custom
	}
	if v.Size() != m.VocabularySize {
		return nil, fmt.Errorf("%w: vocabulary has %d characters, vocabulary_size is %d",
			ErrShapeMismatch, v.Size(), m.VocabularySize)
	}
	return v, nil
}

// InputShape returns the [1, max_len, vocabulary_size] shape.
func (m Metadata) InputShape() [3]int {
	return [3]int{1, m.MaxLen, m.VocabularySize}
}

// CheckInput verifies that input matches InputShape.
func (m Metadata) CheckInput(input tensor.Batch) error {
	if input.Shape != m.InputShape() {
		return fmt.Errorf("%w: input %v, model expects %v", ErrShapeMismatch, input.Shape, m.InputShape())
	}
	if len(input.Data) != input.Len() {
		return fmt.Errorf("%w: input holds %d values for shape %v", ErrShapeMismatch, len(input.Data), input.Shape)
	}
	return nil
}

// ReadMetadata decodes a metadata.json file.
func ReadMetadata(path string) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, err
	}
	var meta Metadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return Metadata{}, fmt.Errorf("parse metadata %s: %w", path, err)
	}
	if err := meta.Validate(); err != nil {
		return Metadata{}, fmt.Errorf("metadata %s: %w", path, err)
	}
	return meta, nil
}

// WriteMetadata encodes meta as indented JSON.
func WriteMetadata(path string, meta Metadata) error {
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(raw, '\n'), 0o644)
}
