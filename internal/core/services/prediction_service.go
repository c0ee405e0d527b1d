package services

import (
	"context"
	"errors"

	"github.com/IANDYI/longevity-service/internal/core/domain"
	"github.com/IANDYI/longevity-service/internal/core/ports"
	"go.uber.org/zap"
)

// Notices shown to the user when a model-assisted request degrades
const (
	NoticeModelUnavailable = "Learned model is not available; showing the heuristic estimate."
	NoticeModelFailed      = "Learned model could not produce an estimate; showing the heuristic estimate."
)

// PredictionService decides which final estimate to surface
// The model is optional; a nil model behaves like an absent one.
type PredictionService struct {
	heuristic *HeuristicPredictor
	model     ports.PredictiveModel
	logger    *zap.Logger
}

// NewPredictionService creates the orchestrator
func NewPredictionService(heuristic *HeuristicPredictor, model ports.PredictiveModel, logger *zap.Logger) *PredictionService {
	if heuristic == nil {
		heuristic = NewHeuristicPredictor(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PredictionService{
		heuristic: heuristic,
		model:     model,
		logger:    logger,
	}
}

// Run computes the heuristic result exactly once and, in model-assisted mode,
// overrides only the final estimate. Model failures degrade to the heuristic result.
func (s *PredictionService) Run(ctx context.Context, mode domain.PredictionMode, body domain.BodyComposition, history domain.HealthHistory) *domain.PredictionResult {
	result := s.heuristic.Predict(body, history)
	result.Mode = mode

	if mode != domain.ModeModelAssisted {
		return result
	}

	v, err := AdaptAndPredict(ctx, s.model, body, history)
	if err != nil {
		if errors.Is(err, domain.ErrModelUnavailable) {
			result.Notice = NoticeModelUnavailable
			s.logger.Info("model unavailable, using heuristic estimate")
		} else {
			result.Notice = NoticeModelFailed
			s.logger.Warn("model prediction failed, using heuristic estimate", zap.Error(err))
		}
		return result
	}

	out := *result
	out.WellnessTips = append([]string{}, result.WellnessTips...)
	out.FinalLifeExpectancyYears = domain.Round1(v)
	if out.FinalLifeExpectancyYears < domain.MinLifeExpectancyYears {
		out.FinalLifeExpectancyYears = domain.MinLifeExpectancyYears
	}
	out.PredictionMethod = domain.MethodLearnedModel
	return &out
}

var _ ports.PredictionService = (*PredictionService)(nil)
