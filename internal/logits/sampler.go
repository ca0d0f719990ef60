package logits

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrInvalidProbability is returned when a prediction vector cannot be
// rescaled: it is empty, or (in strict mode) holds a non-positive or
// non-finite entry.
var ErrInvalidProbability = errors.New("invalid probability")

// InvalidProbabilityError reports the offending entry of a prediction vector.
type InvalidProbabilityError struct {
	Index int
	Value float32
}

func (e InvalidProbabilityError) Error() string {
	return fmt.Sprintf("invalid probability %v at index %d", e.Value, e.Index)
}

func (e InvalidProbabilityError) Unwrap() error {
	return ErrInvalidProbability
}

// DefaultEpsilon is the floor non-positive probabilities are clamped to.
const DefaultEpsilon = 1e-10

// SamplerConfig configures the behaviour of a Sampler.
type SamplerConfig struct {
	Seed        int64
	Temperature float64
	// Epsilon replaces non-positive or NaN probabilities unless Strict is set.
	// A +Inf probability is drawn outright.
	Epsilon float64
	Strict  bool
}

// Sampler draws vocabulary indices from probability vectors.
// A Sampler is not safe for concurrent use.
type Sampler struct {
	rng     *rand.Rand
	cfg     SamplerConfig
	logw    []float64
	weights []float64
}

// NewSampler returns a new sampler seeded from cfg.Seed.
func NewSampler(cfg SamplerConfig) *Sampler {
	return NewSamplerWithRand(cfg, rand.New(rand.NewSource(cfg.Seed)))
}

// NewSamplerWithRand returns a sampler drawing from rng.
func NewSamplerWithRand(cfg SamplerConfig, rng *rand.Rand) *Sampler {
	if cfg.Temperature <= 0 || math.IsNaN(cfg.Temperature) {
		cfg.Temperature = 1
	}
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = DefaultEpsilon
	}
	return &Sampler{rng: rng, cfg: cfg}
}

// Temperature returns the effective temperature.
func (s *Sampler) Temperature() float64 {
	return s.cfg.Temperature
}

// Sample draws a single index from the probability vector preds:
//
//  1. Every probability is rescaled as exp(log(p) / temperature). The
//     rescale is done in log space relative to the largest term, which
//     leaves the relative weights unchanged.
//  2. One single-trial multinomial draw over the rescaled weights yields an
//     indicator vector with exactly one entry set.
//  3. The index of that entry is returned.
func (s *Sampler) Sample(preds []float32) (int, error) {
	if len(preds) == 0 {
		return 0, fmt.Errorf("%w: empty prediction vector", ErrInvalidProbability)
	}

	if cap(s.logw) < len(preds) {
		s.logw = make([]float64, len(preds))
		s.weights = make([]float64, len(preds))
	}
	logw := s.logw[:len(preds)]
	weights := s.weights[:len(preds)]

	invTemp := 1.0 / s.cfg.Temperature
	maxLog := math.Inf(-1)
	certain := -1
	for i, p := range preds {
		v := float64(p)
		if !(v > 0) || math.IsInf(v, 0) {
			if s.cfg.Strict {
				return 0, InvalidProbabilityError{Index: i, Value: p}
			}
			if math.IsInf(v, 1) && certain < 0 {
				certain = i
			}
			v = s.cfg.Epsilon
		}
		logw[i] = math.Log(v) * invTemp
		if logw[i] > maxLog {
			maxLog = logw[i]
		}
	}
	// +Inf holds all the mass.
	if certain >= 0 {
		return certain, nil
	}
	for i := range logw {
		weights[i] = math.Exp(logw[i] - maxLog)
	}

	draw := Multinomial(s.rng, 1, weights)
	if idx, ok := drawnIndex(draw); ok {
		return idx, nil
	}
	// Every weight underflowed, e.g. at a vanishing temperature.
	return Argmax(preds), nil
}

// Multinomial draws trials samples from the categorical distribution given by
// the relative weights and returns the count of each outcome. Negative or NaN
// weights count as zero. If every weight is zero the counts stay zero and
// the caller must pick an outcome itself.
func Multinomial(rng *rand.Rand, trials int, weights []float64) []int {
	counts := make([]int, len(weights))
	var sum float64
	for _, w := range weights {
		if w > 0 {
			sum += w
		}
	}
	if sum == 0 || math.IsInf(sum, 0) {
		return counts
	}
	for range trials {
		r := rng.Float64() * sum
		last := -1
		var c float64
		picked := false
		for i, w := range weights {
			if !(w > 0) {
				continue
			}
			last = i
			c += w
			if r < c {
				counts[i]++
				picked = true
				break
			}
		}
		if !picked {
			// rounding left r just above the cumulative sum
			counts[last]++
		}
	}
	return counts
}

// Argmax returns the index of the maximum value in the slice. If the slice is empty it panics.
func Argmax(x []float32) int {
	if len(x) == 0 {
		panic("argmax: empty slice")
	}
	bestI := 0
	bestV := x[0]
	for i := 1; i < len(x); i++ {
		if x[i] > bestV {
			bestV = x[i]
			bestI = i
		}
	}
	return bestI
}

// drawnIndex returns the outcome of a single-trial draw. ok is false when
// nothing was drawn.
func drawnIndex(counts []int) (int, bool) {
	for i, c := range counts {
		if c > 0 {
			return i, true
		}
	}
	return 0, false
}
