package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "charseed_generations_total",
		Help: "Generation runs by outcome",
	}, []string{"outcome"})

	CharactersTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "charseed_characters_generated_total",
		Help: "The total number of characters generated",
	})

	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "charseed_generation_duration_seconds",
		Help:    "Wall-clock duration of a whole generation run",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	PredictDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "charseed_predict_duration_seconds",
		Help:    "Duration of a single predictor call",
		Buckets: prometheus.ExponentialBuckets(0.00005, 2, 14),
	})

	InvalidProbabilities = promauto.NewCounter(prometheus.CounterOpts{
		Name: "charseed_invalid_probabilities_total",
		Help: "Prediction vectors rejected by the sampler",
	})

	ModelLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "charseed_model_loads_total",
		Help: "Model load attempts by model type and outcome",
	}, []string{"model_type", "outcome"})

	ModelLoadDuration = promauto.NewSummary(prometheus.SummaryOpts{
		Name: "charseed_model_load_duration_seconds",
		Help: "Duration of model loads",
	})

	ActiveGenerations = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "charseed_active_generations",
		Help: "Generations currently running",
	})
)

// RecordGeneration records a completed run.
func RecordGeneration(chars int, duration time.Duration) {
	GenerationsTotal.WithLabelValues("completed").Inc()
	CharactersTotal.Add(float64(chars))
	GenerationDuration.Observe(duration.Seconds())
}

// RecordGenerationFailure records an aborted run.
func RecordGenerationFailure() {
	GenerationsTotal.WithLabelValues("failed").Inc()
}

func RecordPredict(duration time.Duration) {
	PredictDuration.Observe(duration.Seconds())
}

func RecordInvalidProbability() {
	InvalidProbabilities.Inc()
}

// RecordModelLoad records a load attempt; modelType is empty on failure
// before the type is known.
func RecordModelLoad(modelType string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	if modelType == "" {
		modelType = "unknown"
	}
	ModelLoads.WithLabelValues(modelType, outcome).Inc()
	if err == nil {
		ModelLoadDuration.Observe(duration.Seconds())
	}
}

// TrackActive increments the active gauge and returns the matching decrement.
func TrackActive() func() {
	ActiveGenerations.Inc()
	return ActiveGenerations.Dec
}
