package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/IANDYI/longevity-service/internal/core/domain"
	"github.com/IANDYI/longevity-service/internal/core/ports"
)

// AdaptAndPredict encodes the records in the versioned feature layout and asks the model
// A nil model yields domain.ErrModelUnavailable.
func AdaptAndPredict(ctx context.Context, model ports.PredictiveModel, body domain.BodyComposition, history domain.HealthHistory) (float64, error) {
	if model == nil {
		return 0, domain.ErrModelUnavailable
	}

	v, err := model.Predict(ctx, domain.FeatureVector(body, history))
	if err != nil {
		if errors.Is(err, domain.ErrModelUnavailable) {
			return 0, err
		}
		return 0, fmt.Errorf("model prediction failed: %w", err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, domain.ErrInvalidPrediction
	}
	return v, nil
}
