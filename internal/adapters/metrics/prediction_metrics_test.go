package metrics_test

import (
	"testing"

	"github.com/IANDYI/longevity-service/internal/adapters/metrics"
	"github.com/IANDYI/longevity-service/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObservePrediction_CountsByMethodModeSource(t *testing.T) {
	counter := metrics.PredictionsTotal.WithLabelValues("learned_model", "model", metrics.SourceHTTP)
	before := testutil.ToFloat64(counter)

	metrics.ObservePrediction(metrics.SourceHTTP, &domain.PredictionResult{
		PredictionMethod: domain.MethodLearnedModel,
		Mode:             domain.ModeModelAssisted,
	})

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestObservePrediction_FallbackCounted(t *testing.T) {
	fallbacks := metrics.ModelFallbacksTotal.WithLabelValues(metrics.SourceQueue)
	before := testutil.ToFloat64(fallbacks)

	metrics.ObservePrediction(metrics.SourceQueue, &domain.PredictionResult{
		PredictionMethod: domain.MethodHeuristic,
		Mode:             domain.ModeModelAssisted,
		Notice:           "model unavailable",
	})
	// heuristic-only requests never count as fallbacks
	metrics.ObservePrediction(metrics.SourceQueue, &domain.PredictionResult{
		PredictionMethod: domain.MethodHeuristic,
		Mode:             domain.ModeHeuristicOnly,
	})
	metrics.ObservePrediction(metrics.SourceQueue, nil)

	assert.Equal(t, before+1, testutil.ToFloat64(fallbacks))
}

func TestSetModelLoaded(t *testing.T) {
	metrics.SetModelLoaded(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ModelLoaded))
	metrics.SetModelLoaded(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.ModelLoaded))
}

func TestRegisterPredictionMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	assert.NotPanics(t, func() { metrics.RegisterPredictionMetrics(reg) })
	assert.Panics(t, func() { metrics.RegisterPredictionMetrics(reg) })
}
