package inference

import "testing"

func TestResolveRequestDefaults(t *testing.T) {
	t.Parallel()

	req := ResolveRequest(RequestOptions{}, GenDefaults{})
	if req.Steps != DefaultSteps || req.Temperature != DefaultTemperature || req.RNGSeed != -1 {
		t.Fatalf("unexpected defaults: %+v", req)
	}
	if req.SeedText != "" || req.Strict {
		t.Fatalf("unexpected defaults: %+v", req)
	}
}

func TestResolveRequestPrecedence(t *testing.T) {
	t.Parallel()

	modelTemp, modelSteps := 0.9, 20
	defaults := GenDefaults{Temperature: &modelTemp, Steps: &modelSteps}

	req := ResolveRequest(RequestOptions{}, defaults)
	if req.Temperature != 0.9 || req.Steps != 20 {
		t.Fatalf("model defaults not applied: %+v", req)
	}

	seed, temp, steps, rng, strict := "abc", 1.5, 3, int64(11), true
	req = ResolveRequest(RequestOptions{
		SeedText:    &seed,
		Temperature: &temp,
		Steps:       &steps,
		RNGSeed:     &rng,
		Strict:      &strict,
	}, defaults)
	if req.SeedText != "abc" || req.Temperature != 1.5 || req.Steps != 3 || req.RNGSeed != 11 || !req.Strict {
		t.Fatalf("options not applied: %+v", req)
	}
}

func TestResolveRequestIgnoresInvalidModelDefaults(t *testing.T) {
	t.Parallel()

	badTemp, badSteps := -1.0, -5
	req := ResolveRequest(RequestOptions{}, GenDefaults{Temperature: &badTemp, Steps: &badSteps})
	if req.Temperature != DefaultTemperature || req.Steps != DefaultSteps {
		t.Fatalf("invalid model defaults leaked: %+v", req)
	}
}
