package inference

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/samcharles93/charseed/internal/model"
	"github.com/samcharles93/charseed/internal/tensor"
)

type closingPredictor struct {
	model.Predictor
	closed int
}

func (c *closingPredictor) Close() error {
	c.closed++
	return nil
}

func newTestEngine(t *testing.T, p model.Predictor) *EngineImpl {
	t.Helper()
	e, err := NewEngine(p, model.DefaultMetadata("test"), nil)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestEngineImplGenerateDrawsRandomSeed(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, oneHotPredictor(150, 63))
	res, err := e.Generate(context.Background(), &Request{Steps: 5, Temperature: 0.5, RNGSeed: 42}, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got := len([]rune(res.Seed)); got != model.DefaultMaxLen {
		t.Fatalf("seed %q has %d characters", res.Seed, got)
	}
	if strings.ContainsRune(res.Seed, '\n') {
		t.Fatalf("seed %q contains the sentinel", res.Seed)
	}
	if res.Text != "aaaaa" {
		t.Fatalf("text = %q", res.Text)
	}

	again, err := e.Generate(context.Background(), &Request{Steps: 5, Temperature: 0.5, RNGSeed: 42}, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if again.Seed != res.Seed {
		t.Fatalf("same rng seed gave %q and %q", res.Seed, again.Seed)
	}
}

func TestEngineImplRandomSeedMatchesGenerate(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, oneHotPredictor(150, 63))
	seed := e.RandomSeed(7)
	res, err := e.Generate(context.Background(), &Request{Steps: 0, Temperature: 1, RNGSeed: 7}, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.Seed != seed {
		t.Fatalf("RandomSeed = %q, Generate drew %q", seed, res.Seed)
	}
}

func TestEngineImplOnStartReportsDrawnSeed(t *testing.T) {
	t.Parallel()

	dense, err := model.NewDense(model.DefaultMetadata("dense"), 3)
	if err != nil {
		t.Fatalf("NewDense: %v", err)
	}
	e := newTestEngine(t, dense)

	plain, err := e.Generate(context.Background(), &Request{Steps: 30, Temperature: 0.5, RNGSeed: 9}, nil)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var reported string
	var streamed strings.Builder
	req := &Request{
		Steps:       30,
		Temperature: 0.5,
		RNGSeed:     9,
		OnStart: func(seed string) error {
			if streamed.Len() != 0 {
				t.Fatalf("OnStart called after the first character")
			}
			reported = seed
			return nil
		},
	}
	res, err := e.Generate(context.Background(), req, func(ch string) { streamed.WriteString(ch) })
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if reported != plain.Seed || res.Seed != plain.Seed {
		t.Fatalf("seeds differ: plain %q, reported %q, result %q", plain.Seed, reported, res.Seed)
	}
	if res.Text != plain.Text || streamed.String() != plain.Text {
		t.Fatalf("same rng seed gave %q and %q", plain.Text, res.Text)
	}

	boom := errors.New("boom")
	_, err = e.Generate(context.Background(), &Request{
		Steps:       5,
		Temperature: 0.5,
		OnStart:     func(string) error { return boom },
	}, func(string) { t.Fatalf("streamed after OnStart failed") })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want OnStart error", err)
	}
}

// TestEngineImplRandomSeedScenario runs the empty-seed path for many rng
// seeds with a predictor fixed on 'a'.
func TestEngineImplRandomSeedScenario(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, oneHotPredictor(150, 63))
	want := strings.Repeat("a", DefaultSteps)
	for rngSeed := int64(0); rngSeed < 200; rngSeed++ {
		res, err := e.Generate(context.Background(), &Request{Steps: DefaultSteps, Temperature: DefaultTemperature, RNGSeed: rngSeed}, nil)
		if err != nil {
			t.Fatalf("rng seed %d: %v", rngSeed, err)
		}
		if res.Seed != e.RandomSeed(rngSeed) {
			t.Fatalf("rng seed %d: drew %q, RandomSeed gives %q", rngSeed, res.Seed, e.RandomSeed(rngSeed))
		}
		if res.Text != want {
			t.Fatalf("rng seed %d: text = %q", rngSeed, res.Text)
		}
	}
}

func TestEngineImplGenerateValidatesRequest(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, oneHotPredictor(150, 63))
	for _, req := range []*Request{
		{Steps: -1, Temperature: 0.5},
		{Steps: 1, Temperature: 0},
		{Steps: 1, Temperature: -2},
	} {
		if _, err := e.Generate(context.Background(), req, nil); !errors.Is(err, ErrInvalidOptions) {
			t.Fatalf("request %+v: err = %v, want ErrInvalidOptions", req, err)
		}
	}
	if _, err := e.Generate(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil request")
	}
}

func TestEngineImplCloseReleasesPredictor(t *testing.T) {
	t.Parallel()

	p := &closingPredictor{Predictor: oneHotPredictor(150, 1)}
	e := newTestEngine(t, p)
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if p.closed != 1 {
		t.Fatalf("predictor closed %d times", p.closed)
	}
	_, err := e.Generate(context.Background(), &Request{Steps: 1, Temperature: 1, SeedText: "abc"}, nil)
	if !errors.Is(err, model.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestNewEngineRejectsBadInput(t *testing.T) {
	t.Parallel()

	if _, err := NewEngine(nil, model.DefaultMetadata("x"), nil); !errors.Is(err, model.ErrUnavailable) {
		t.Fatalf("nil predictor: err = %v", err)
	}
	stub := model.PredictorFunc(func(context.Context, tensor.Batch) ([]float32, error) { return nil, nil })
	meta := model.Metadata{ModelType: "x", VocabularySize: 4, MaxLen: 2}
	if _, err := NewEngine(stub, meta, nil); !errors.Is(err, model.ErrShapeMismatch) {
		t.Fatalf("vocabulary mismatch: err = %v", err)
	}
}
