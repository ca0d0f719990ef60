package api

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/samcharles93/charseed/internal/inference"
)

// MaxSteps caps the steps a single request may ask for.
const MaxSteps = 10000

type GenerationService struct {
	provider EngineProvider
	clock    func() time.Time
}

func NewGenerationService(provider EngineProvider) *GenerationService {
	return &GenerationService{provider: provider, clock: time.Now}
}

// CreateGeneration runs one generation. When stream is non-nil the lifecycle
// events are written to it as they happen. On failure the returned
// Generation carries the error and has status failed.
func (s *GenerationService) CreateGeneration(ctx context.Context, req *GenerationRequest, stream StreamWriter) (*Generation, error) {
	if err := validateGenerationRequest(req); err != nil {
		return nil, err
	}

	gen := Generation{
		ID:        newGenerationID(),
		Object:    "generation",
		CreatedAt: s.clock().Unix(),
		Status:    generationInProgress,
	}

	begun := false
	err := s.provider.WithEngine(ctx, func(engine inference.Engine, defaults inference.GenDefaults) error {
		ireq := inference.ResolveRequest(inference.RequestOptions{
			SeedText:    req.Seed,
			Steps:       req.Steps,
			Temperature: req.Temperature,
			RNGSeed:     req.RNGSeed,
			Strict:      req.Strict,
		}, defaults)
		if err := ireq.Validate(); err != nil {
			return err
		}
		gen.Steps = ireq.Steps
		gen.Temperature = ireq.Temperature

		var streamErr error
		var streamFn inference.StreamFunc
		ireq.OnStart = func(seed string) error {
			gen.Seed = seed
			if stream == nil {
				return nil
			}
			if err := stream.Begin(gen); err != nil {
				return err
			}
			begun = true
			return nil
		}
		if stream != nil {
			streamFn = func(ch string) {
				if streamErr == nil {
					streamErr = stream.EmitDelta(gen.ID, ch)
				}
			}
		}

		res, err := engine.Generate(ctx, &ireq, streamFn)
		if err != nil {
			return err
		}
		if streamErr != nil {
			return fmt.Errorf("stream: %w", streamErr)
		}
		gen.Status = generationCompleted
		gen.Seed = res.Seed
		gen.Text = res.Text
		gen.ElapsedMS = float64(res.Stats.Elapsed.Microseconds()) / 1000
		gen.Steps = res.Stats.Steps
		gen.StatusLine = inference.StatusGenerated(res.Stats.Elapsed, res.Text)
		return nil
	})
	if err != nil {
		_, body := classifyError(err)
		gen.Status = generationFailed
		gen.Error = &body
		if begun {
			_ = stream.Failed(gen)
		}
		return &gen, err
	}
	if stream != nil {
		if err := stream.Complete(gen); err != nil {
			return &gen, err
		}
	}
	return &gen, nil
}

func validateGenerationRequest(req *GenerationRequest) error {
	if req == nil {
		return newInvalidRequest("request body is required")
	}
	if req.Steps != nil && (*req.Steps < 0 || *req.Steps > MaxSteps) {
		return newInvalidRequest(fmt.Sprintf("steps must be between 0 and %d", MaxSteps))
	}
	if t := req.Temperature; t != nil && (*t <= 0 || math.IsNaN(*t) || math.IsInf(*t, 0)) {
		return newInvalidRequest("temperature must be a positive number")
	}
	return nil
}

// RandomSeed draws a seed from the loaded model's vocabulary.
func (s *GenerationService) RandomSeed(ctx context.Context, rngSeed int64) (string, error) {
	var seed string
	err := s.provider.WithEngine(ctx, func(engine inference.Engine, _ inference.GenDefaults) error {
		seed = engine.RandomSeed(rngSeed)
		return nil
	})
	return seed, err
}
