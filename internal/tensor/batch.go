package tensor

import "fmt"

// Batch is a dense rank-3 float32 tensor laid out row-major as
// [Shape[0], Shape[1], Shape[2]]. Windows are encoded as [1, length, vocab].
type Batch struct {
	Shape [3]int
	Data  []float32
}

// NewBatch allocates a zeroed tensor of shape [b, l, v].
func NewBatch(b, l, v int) Batch {
	if b < 0 || l < 0 || v < 0 {
		panic("negative dimension for batch")
	}
	return Batch{Shape: [3]int{b, l, v}, Data: make([]float32, b*l*v)}
}

// Len returns the number of elements.
func (t Batch) Len() int {
	return t.Shape[0] * t.Shape[1] * t.Shape[2]
}

func (t Batch) offset(b, l, v int) int {
	if b < 0 || b >= t.Shape[0] || l < 0 || l >= t.Shape[1] || v < 0 || v >= t.Shape[2] {
		panic(fmt.Sprintf("batch index [%d %d %d] out of range for shape %v", b, l, v, t.Shape))
	}
	return (b*t.Shape[1]+l)*t.Shape[2] + v
}

// At returns the element at [b, l, v].
func (t Batch) At(b, l, v int) float32 {
	return t.Data[t.offset(b, l, v)]
}

// Set stores x at [b, l, v].
func (t Batch) Set(b, l, v int, x float32) {
	t.Data[t.offset(b, l, v)] = x
}

// Position returns the vector at [b, l] as a view into Data.
func (t Batch) Position(b, l int) []float32 {
	start := t.offset(b, l, 0)
	return t.Data[start : start+t.Shape[2]]
}

// OneHot encodes a window of vocabulary indices as a [1, windowLength, vocabSize]
// tensor with a single 1 per encoded position. Positions past len(indices)
// stay all-zero.
func OneHot(indices []int, windowLength, vocabSize int) (Batch, error) {
	if windowLength <= 0 || vocabSize <= 0 {
		return Batch{}, fmt.Errorf("one-hot: invalid shape [1 %d %d]", windowLength, vocabSize)
	}
	if len(indices) > windowLength {
		return Batch{}, fmt.Errorf("one-hot: %d indices exceed window length %d", len(indices), windowLength)
	}
	t := NewBatch(1, windowLength, vocabSize)
	for pos, id := range indices {
		if id < 0 || id >= vocabSize {
			return Batch{}, fmt.Errorf("one-hot: index %d at position %d not in [0, %d)", id, pos, vocabSize)
		}
		t.Set(0, pos, id, 1)
	}
	return t, nil
}
