package inference

import (
	"context"
	"fmt"
	"sync"

	"github.com/samcharles93/charseed/internal/logger"
	"github.com/samcharles93/charseed/internal/logits"
	"github.com/samcharles93/charseed/internal/model"
	"github.com/samcharles93/charseed/internal/tokenizer"
)

// EngineImpl drives a loaded predictor. Generations on the same engine are
// serialised.
type EngineImpl struct {
	mu        sync.Mutex
	predictor model.Predictor
	meta      model.Metadata
	vocab     *tokenizer.CharVocab
	log       logger.Logger
}

// NewEngine wraps p, which must accept windows described by meta.
func NewEngine(p model.Predictor, meta model.Metadata, log logger.Logger) (*EngineImpl, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: no predictor", model.ErrUnavailable)
	}
	if err := meta.Validate(); err != nil {
		return nil, err
	}
	vocab, err := meta.CharVocab()
	if err != nil {
		return nil, err
	}
	return &EngineImpl{predictor: p, meta: meta, vocab: vocab, log: log}, nil
}

func (e *EngineImpl) Metadata() model.Metadata {
	return e.meta
}

func (e *EngineImpl) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.predictor == nil {
		return nil
	}
	err := model.Close(e.predictor)
	e.predictor = nil
	return err
}

// RandomSeed returns the seed Generate would draw for an empty SeedText with
// the same RNGSeed.
func (e *EngineImpl) RandomSeed(rngSeed int64) string {
	return RandomSeed(newRand(rngSeed), e.vocab, e.meta.MaxLen)
}

func (e *EngineImpl) Generate(ctx context.Context, req *Request, stream StreamFunc) (*Result, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}
	if req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.predictor == nil {
		return nil, fmt.Errorf("%w: engine closed", model.ErrUnavailable)
	}

	rng := newRand(req.RNGSeed)
	seed := req.SeedText
	if seed == "" {
		seed = RandomSeed(rng, e.vocab, e.meta.MaxLen)
	}
	if req.OnStart != nil {
		if err := req.OnStart(seed); err != nil {
			return nil, err
		}
	}

	gen := &Generator{
		Vocab:     e.vocab,
		Predictor: e.predictor,
		Sampler: logits.NewSamplerWithRand(logits.SamplerConfig{
			Temperature: req.Temperature,
			Strict:      req.Strict,
		}, rng),
		WindowLength: e.meta.MaxLen,
		Steps:        req.Steps,
		Logger:       e.log,
	}
	return gen.Generate(ctx, seed, stream)
}
