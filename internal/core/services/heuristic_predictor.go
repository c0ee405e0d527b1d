package services

import (
	"math"

	"github.com/IANDYI/longevity-service/internal/core/domain"
)

// HeuristicPredictor combines the baseline with the risk score into a final estimate
type HeuristicPredictor struct {
	baseline BaselineEstimator
}

// NewHeuristicPredictor creates a predictor; a nil estimator falls back to Baseline
func NewHeuristicPredictor(baseline BaselineEstimator) *HeuristicPredictor {
	if baseline == nil {
		baseline = BaselineFunc(Baseline)
	}
	return &HeuristicPredictor{baseline: baseline}
}

// Predict returns a heuristic PredictionResult
// Arithmetic runs at full precision; outputs are rounded to one decimal.
func (p *HeuristicPredictor) Predict(body domain.BodyComposition, history domain.HealthHistory) *domain.PredictionResult {
	baseline := p.baseline.Baseline(history.Age, history.Sex)
	assessment := ScoreRisk(body, history)

	final := math.Max(domain.MinLifeExpectancyYears, baseline-assessment.HealthRiskScore*domain.RiskAdjustmentFactor)

	return &domain.PredictionResult{
		FinalLifeExpectancyYears:    domain.Round1(final),
		BaselineLifeExpectancyYears: domain.Round1(baseline),
		HealthRiskScore:             domain.Round1(assessment.HealthRiskScore),
		BodyMassIndex:               domain.Round1(assessment.BodyMassIndex),
		WellnessTips:                wellnessTips(body, assessment),
		PredictionMethod:            domain.MethodHeuristic,
		Mode:                        domain.ModeHeuristicOnly,
	}
}

// wellnessTips runs the independent checks in their fixed order
func wellnessTips(body domain.BodyComposition, assessment domain.RiskAssessment) []string {
	tips := []string{}
	if assessment.BodyMassIndex > domain.WeightTipBMIOver {
		tips = append(tips, domain.TipWeightReduction)
	}
	if body.VisceralFatLevel > domain.VisceralTipLevelOver {
		tips = append(tips, domain.TipVisceralFat)
	}
	if assessment.HealthRiskScore > domain.WellnessTipRiskOver {
		tips = append(tips, domain.TipWellnessProgram)
	}
	return tips
}
