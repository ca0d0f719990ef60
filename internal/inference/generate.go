package inference

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/samcharles93/charseed/internal/logger"
	"github.com/samcharles93/charseed/internal/logits"
	"github.com/samcharles93/charseed/internal/metrics"
	"github.com/samcharles93/charseed/internal/model"
	"github.com/samcharles93/charseed/internal/tensor"
	"github.com/samcharles93/charseed/internal/tokenizer"
)

// ErrSeedLength is returned when a seed is empty or longer than the window.
var ErrSeedLength = errors.New("invalid seed length")

// State is the sliding window plus everything generated so far.
type State struct {
	Window []rune
	Output []rune
}

// NewState starts a run from seed.
func NewState(seed []rune) State {
	return State{Window: append([]rune(nil), seed...)}
}

// Advance drops the oldest window character and appends r to both the window
// and the output. The receiver is left untouched.
func (s State) Advance(r rune) State {
	window := make([]rune, len(s.Window))
	if len(window) > 0 {
		copy(window, s.Window[1:])
		window[len(window)-1] = r
	}
	output := make([]rune, len(s.Output), len(s.Output)+1)
	copy(output, s.Output)
	return State{Window: window, Output: append(output, r)}
}

// Generator runs the fixed-step sliding-window loop.
// A Generator is not safe for concurrent use because its Sampler is not.
type Generator struct {
	Vocab     *tokenizer.CharVocab
	Predictor model.Predictor
	Sampler   *logits.Sampler

	WindowLength int
	Steps        int

	Logger logger.Logger
}

// Step encodes the window, asks the predictor for the next-character
// distribution, samples it and advances the state.
func (g *Generator) Step(ctx context.Context, st State) (State, rune, error) {
	ids, err := g.Vocab.EncodeFolded(st.Window)
	if err != nil {
		return st, 0, fmt.Errorf("encode window: %w", err)
	}
	input, err := tensor.OneHot(ids, g.WindowLength, g.Vocab.Size())
	if err != nil {
		return st, 0, err
	}

	start := time.Now()
	preds, err := safePredict(ctx, g.Predictor, input)
	metrics.RecordPredict(time.Since(start))
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, model.ErrUnavailable) || errors.Is(err, model.ErrShapeMismatch) {
			return st, 0, err
		}
		return st, 0, fmt.Errorf("%w: %w", model.ErrUnavailable, err)
	}
	if len(preds) != g.Vocab.Size() {
		return st, 0, fmt.Errorf("%w: prediction has %d entries, want %d", model.ErrShapeMismatch, len(preds), g.Vocab.Size())
	}

	idx, err := g.Sampler.Sample(preds)
	if err != nil {
		if errors.Is(err, logits.ErrInvalidProbability) {
			metrics.RecordInvalidProbability()
		}
		return st, 0, err
	}
	r, err := g.Vocab.DecodeIndex(idx)
	if err != nil {
		return st, 0, err
	}
	return st.Advance(r), r, nil
}

// Generate runs exactly g.Steps steps from seed. Any failed step aborts the
// run and no partial result is returned.
func (g *Generator) Generate(ctx context.Context, seed string, stream StreamFunc) (*Result, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}
	if g.Vocab == nil {
		return nil, fmt.Errorf("vocabulary is required")
	}
	if g.Predictor == nil {
		return nil, fmt.Errorf("%w: no predictor", model.ErrUnavailable)
	}
	if g.Sampler == nil {
		return nil, fmt.Errorf("sampler is required")
	}
	if g.Steps < 0 {
		return nil, fmt.Errorf("%w: steps must be non-negative, got %d", ErrInvalidOptions, g.Steps)
	}

	runes := []rune(seed)
	if len(runes) == 0 || len(runes) > g.WindowLength {
		return nil, fmt.Errorf("%w: seed has %d characters, window holds %d", ErrSeedLength, len(runes), g.WindowLength)
	}
	if _, err := g.Vocab.EncodeFolded(runes); err != nil {
		return nil, fmt.Errorf("encode seed: %w", err)
	}

	log := g.Logger
	if log == nil {
		log = logger.FromContext(ctx)
	}

	done := metrics.TrackActive()
	defer done()

	st := NewState(runes)
	start := time.Now()
	for i := 0; i < g.Steps; i++ {
		if err := ctx.Err(); err != nil {
			metrics.RecordGenerationFailure()
			return nil, err
		}
		var (
			r   rune
			err error
		)
		st, r, err = g.Step(ctx, st)
		if err != nil {
			metrics.RecordGenerationFailure()
			log.Debug("generation aborted", "step", i, "error", err)
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		if stream != nil {
			stream(string(r))
		}
	}

	var stats Stats
	stats.Steps = len(st.Output)
	stats.Elapsed = time.Since(start)
	if stats.Elapsed.Seconds() > 0 {
		stats.CharsPerSecond = float64(stats.Steps) / stats.Elapsed.Seconds()
	}
	metrics.RecordGeneration(stats.Steps, stats.Elapsed)
	log.Debug("generation complete",
		"steps", stats.Steps,
		"elapsed", stats.Elapsed,
		"temperature", g.Sampler.Temperature(),
	)

	return &Result{
		Seed:   seed,
		Text:   string(st.Output),
		Window: string(st.Window),
		Stats:  stats,
	}, nil
}

// RandomSeed draws length characters uniformly from indices [1, Size()).
// Index 0, the newline sentinel, is never drawn.
func RandomSeed(rng *rand.Rand, vocab *tokenizer.CharVocab, length int) string {
	runes := vocab.Runes()
	if length <= 0 || len(runes) < 2 {
		return ""
	}
	out := make([]rune, length)
	for i := range out {
		out[i] = runes[1+rng.Intn(len(runes)-1)]
	}
	return string(out)
}

func safePredict(ctx context.Context, p model.Predictor, input tensor.Batch) (preds []float32, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: panic in Predict: %v", model.ErrUnavailable, rec)
		}
	}()
	return p.Predict(ctx, input)
}

func newRand(seed int64) *rand.Rand {
	if seed < 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
