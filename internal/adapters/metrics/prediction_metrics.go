package metrics

import (
	"github.com/IANDYI/longevity-service/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Sources a prediction can arrive from
const (
	SourceHTTP  = "http"
	SourceQueue = "queue"
)

var (
	PredictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "predictions_total",
			Help: "Total number of predictions served",
		},
		[]string{"method", "mode", "source"},
	)

	ModelFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "model_fallbacks_total",
			Help: "Model-assisted predictions that fell back to the heuristic",
		},
		[]string{"source"},
	)

	ModelLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "model_loaded",
			Help: "1 when the learned model is loaded, 0 otherwise",
		},
	)

	MessagesConsumedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_messages_consumed_total",
			Help: "Total number of prediction requests consumed from RabbitMQ",
		},
		[]string{"status"},
	)

	ConsumeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rabbitmq_consume_duration_seconds",
			Help:    "Duration of RabbitMQ message processing",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"status"},
	)
)

// RegisterPredictionMetrics registers all prediction metrics
func RegisterPredictionMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(PredictionsTotal)
	reg.MustRegister(ModelFallbacksTotal)
	reg.MustRegister(ModelLoaded)
	reg.MustRegister(MessagesConsumedTotal)
	reg.MustRegister(ConsumeDuration)
}

// ObservePrediction counts a served result; a notice on a model-assisted result means it fell back
func ObservePrediction(source string, result *domain.PredictionResult) {
	if result == nil {
		return
	}
	PredictionsTotal.WithLabelValues(string(result.PredictionMethod), string(result.Mode), source).Inc()
	if result.Mode == domain.ModeModelAssisted && result.Notice != "" {
		ModelFallbacksTotal.WithLabelValues(source).Inc()
	}
}

// SetModelLoaded is usable as model.LazyModel.OnLoad
func SetModelLoaded(loaded bool) {
	if loaded {
		ModelLoaded.Set(1)
		return
	}
	ModelLoaded.Set(0)
}
