package services_test

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/IANDYI/longevity-service/internal/core/domain"
	"github.com/IANDYI/longevity-service/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(model *MockPredictiveModel) *services.PredictionService {
	if model == nil {
		return services.NewPredictionService(services.NewHeuristicPredictor(nil), nil, zap.NewNop())
	}
	return services.NewPredictionService(services.NewHeuristicPredictor(nil), model, zap.NewNop())
}

func TestPredictionService_HeuristicOnly(t *testing.T) {
	model := new(MockPredictiveModel)
	svc := newService(model)
	body, history := scenarioB()

	result := svc.Run(context.Background(), domain.ModeHeuristicOnly, body, history)

	assert.Equal(t, 71.6, result.FinalLifeExpectancyYears)
	assert.Equal(t, domain.MethodHeuristic, result.PredictionMethod)
	assert.Equal(t, domain.ModeHeuristicOnly, result.Mode)
	assert.Empty(t, result.Notice)
	model.AssertNotCalled(t, "Predict")
}

// Scenario C
func TestPredictionService_ModelAssisted_ModelAbsent(t *testing.T) {
	svc := newService(nil)
	body, history := scenarioB()

	heuristic := svc.Run(context.Background(), domain.ModeHeuristicOnly, body, history)
	assisted := svc.Run(context.Background(), domain.ModeModelAssisted, body, history)

	assert.Equal(t, domain.MethodHeuristic, assisted.PredictionMethod)
	assert.Equal(t, heuristic.FinalLifeExpectancyYears, assisted.FinalLifeExpectancyYears)
	assert.Equal(t, heuristic.BaselineLifeExpectancyYears, assisted.BaselineLifeExpectancyYears)
	assert.Equal(t, heuristic.HealthRiskScore, assisted.HealthRiskScore)
	assert.Equal(t, heuristic.BodyMassIndex, assisted.BodyMassIndex)
	assert.Equal(t, heuristic.WellnessTips, assisted.WellnessTips)
	assert.Equal(t, services.NoticeModelUnavailable, assisted.Notice)
}

// Scenario D
func TestPredictionService_ModelAssisted_ModelPresent(t *testing.T) {
	model := new(MockPredictiveModel)
	body, history := scenarioB()
	model.On("Predict", mock.Anything, domain.FeatureVector(body, history)).Return(52.36, nil)
	svc := newService(model)

	heuristic := svc.Run(context.Background(), domain.ModeHeuristicOnly, body, history)
	assisted := svc.Run(context.Background(), domain.ModeModelAssisted, body, history)

	assert.Equal(t, 52.4, assisted.FinalLifeExpectancyYears)
	assert.Equal(t, domain.MethodLearnedModel, assisted.PredictionMethod)
	assert.Equal(t, domain.ModeModelAssisted, assisted.Mode)
	assert.Empty(t, assisted.Notice)

	assert.NotEqual(t, heuristic.FinalLifeExpectancyYears, assisted.FinalLifeExpectancyYears)
	assert.Equal(t, heuristic.BaselineLifeExpectancyYears, assisted.BaselineLifeExpectancyYears)
	assert.Equal(t, heuristic.HealthRiskScore, assisted.HealthRiskScore)
	assert.Equal(t, heuristic.BodyMassIndex, assisted.BodyMassIndex)
	assert.Equal(t, heuristic.WellnessTips, assisted.WellnessTips)
	model.AssertNumberOfCalls(t, "Predict", 1)
}

func TestPredictionService_ModelUnavailableError(t *testing.T) {
	model := new(MockPredictiveModel)
	model.On("Predict", mock.Anything, mock.Anything).Return(0.0, fmt.Errorf("load failed: %w", domain.ErrModelUnavailable))
	svc := newService(model)
	body, history := scenarioB()

	result := svc.Run(context.Background(), domain.ModeModelAssisted, body, history)

	assert.Equal(t, domain.MethodHeuristic, result.PredictionMethod)
	assert.Equal(t, 71.6, result.FinalLifeExpectancyYears)
	assert.Equal(t, services.NoticeModelUnavailable, result.Notice)
}

func TestPredictionService_ModelFailureDegrades(t *testing.T) {
	model := new(MockPredictiveModel)
	model.On("Predict", mock.Anything, mock.Anything).Return(0.0, errBoom)
	svc := newService(model)
	body, history := scenarioB()

	result := svc.Run(context.Background(), domain.ModeModelAssisted, body, history)

	assert.Equal(t, domain.MethodHeuristic, result.PredictionMethod)
	assert.Equal(t, 71.6, result.FinalLifeExpectancyYears)
	assert.Equal(t, services.NoticeModelFailed, result.Notice)
}

func TestPredictionService_NonFinitePredictionDegrades(t *testing.T) {
	model := new(MockPredictiveModel)
	model.On("Predict", mock.Anything, mock.Anything).Return(math.NaN(), nil)
	svc := newService(model)
	body, history := scenarioB()

	result := svc.Run(context.Background(), domain.ModeModelAssisted, body, history)

	assert.Equal(t, domain.MethodHeuristic, result.PredictionMethod)
	assert.Equal(t, services.NoticeModelFailed, result.Notice)
}

func TestPredictionService_ModelValueFloored(t *testing.T) {
	model := new(MockPredictiveModel)
	model.On("Predict", mock.Anything, mock.Anything).Return(12.0, nil)
	svc := newService(model)
	body, history := scenarioB()

	result := svc.Run(context.Background(), domain.ModeModelAssisted, body, history)

	assert.Equal(t, domain.MethodLearnedModel, result.PredictionMethod)
	assert.Equal(t, 40.0, result.FinalLifeExpectancyYears)
}

func TestAdaptAndPredict_FeatureOrder(t *testing.T) {
	model := new(MockPredictiveModel)
	body, history := scenarioB()
	history.IsSmoker = true
	history.FamilyHistoryCVD = true
	expected := []float64{45, 1, 1.65, 70, 25, 8, 30, 1500, 1, 120, 90, 1}
	model.On("Predict", mock.Anything, expected).Return(30.0, nil)

	v, err := services.AdaptAndPredict(context.Background(), model, body, history)

	require.NoError(t, err)
	assert.Equal(t, 30.0, v)
	model.AssertExpectations(t)
}

func TestAdaptAndPredict_NilModel(t *testing.T) {
	body, history := scenarioB()

	_, err := services.AdaptAndPredict(context.Background(), nil, body, history)

	assert.ErrorIs(t, err, domain.ErrModelUnavailable)
}
