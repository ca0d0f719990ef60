package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordGeneration(t *testing.T) {
	before := testutil.ToFloat64(CharactersTotal)
	completed := testutil.ToFloat64(GenerationsTotal.WithLabelValues("completed"))

	RecordGeneration(100, 20*time.Millisecond)

	if got := testutil.ToFloat64(CharactersTotal) - before; got != 100 {
		t.Fatalf("characters increase: got %v want 100", got)
	}
	if got := testutil.ToFloat64(GenerationsTotal.WithLabelValues("completed")) - completed; got != 1 {
		t.Fatalf("completed increase: got %v want 1", got)
	}
}

func TestRecordGenerationFailure(t *testing.T) {
	before := testutil.ToFloat64(GenerationsTotal.WithLabelValues("failed"))
	RecordGenerationFailure()
	if got := testutil.ToFloat64(GenerationsTotal.WithLabelValues("failed")) - before; got != 1 {
		t.Fatalf("failed increase: got %v want 1", got)
	}
}

func TestRecordModelLoadOutcomes(t *testing.T) {
	ok := testutil.ToFloat64(ModelLoads.WithLabelValues("dense", "ok"))
	failed := testutil.ToFloat64(ModelLoads.WithLabelValues("unknown", "error"))

	RecordModelLoad("dense", time.Millisecond, nil)
	RecordModelLoad("", time.Millisecond, errors.New("boom"))

	if got := testutil.ToFloat64(ModelLoads.WithLabelValues("dense", "ok")) - ok; got != 1 {
		t.Fatalf("ok loads increase: got %v", got)
	}
	if got := testutil.ToFloat64(ModelLoads.WithLabelValues("unknown", "error")) - failed; got != 1 {
		t.Fatalf("failed loads increase: got %v", got)
	}
}

func TestTrackActive(t *testing.T) {
	before := testutil.ToFloat64(ActiveGenerations)
	done := TrackActive()
	if got := testutil.ToFloat64(ActiveGenerations) - before; got != 1 {
		t.Fatalf("active increase: got %v", got)
	}
	done()
	if got := testutil.ToFloat64(ActiveGenerations); got != before {
		t.Fatalf("active after done: got %v want %v", got, before)
	}
}

func TestRecordPredictAndInvalid(t *testing.T) {
	RecordPredict(50 * time.Microsecond)
	before := testutil.ToFloat64(InvalidProbabilities)
	RecordInvalidProbability()
	if got := testutil.ToFloat64(InvalidProbabilities) - before; got != 1 {
		t.Fatalf("invalid increase: got %v", got)
	}
}
