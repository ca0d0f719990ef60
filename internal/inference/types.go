package inference

import (
	"context"
	"time"

	"github.com/samcharles93/charseed/internal/model"
)

// StreamFunc receives each generated character as soon as it is sampled.
type StreamFunc func(ch string)

type Engine interface {
	Generate(ctx context.Context, req *Request, stream StreamFunc) (*Result, error)
	// RandomSeed draws a window-length seed from the model's vocabulary.
	RandomSeed(rngSeed int64) string
	Metadata() model.Metadata
	Close() error
}

type Request struct {
	// SeedText is the initial window. Empty means a random seed.
	SeedText string

	Steps       int
	Temperature float64
	// RNGSeed seeds the sampler; negative values use the wall clock.
	RNGSeed int64
	Strict  bool

	// OnStart, when set, is called once with the resolved seed before the
	// first step. A random seed and the sampler share one stream seeded by
	// RNGSeed, so callers learn the seed here instead of drawing it first.
	// An error aborts the run.
	OnStart func(seed string) error
}

type Result struct {
	Seed   string
	Text   string
	Window string
	Stats  Stats
}

type Stats struct {
	Steps          int
	Elapsed        time.Duration
	CharsPerSecond float64
}
