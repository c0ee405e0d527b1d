package ports

import (
	"context"

	"github.com/IANDYI/longevity-service/internal/core/domain"
)

// PredictionService defines the orchestration entry point used by the handlers
type PredictionService interface {
	// Run always computes the heuristic result once and, in model-assisted mode,
	// replaces only the final estimate with the learned model's value
	Run(ctx context.Context, mode domain.PredictionMode, body domain.BodyComposition, history domain.HealthHistory) *domain.PredictionResult
}

// ResultPublisher publishes finished predictions to downstream consumers
type ResultPublisher interface {
	PublishResult(ctx context.Context, requestID string, result *domain.PredictionResult) error
}
