package domain

import "math"

// PredictionMethod records which branch produced the final estimate
type PredictionMethod string

const (
	MethodHeuristic    PredictionMethod = "heuristic"
	MethodLearnedModel PredictionMethod = "learned_model"
)

// PredictionMode is the caller's choice between the heuristic and the learned model
type PredictionMode string

const (
	ModeHeuristicOnly PredictionMode = "heuristic"
	ModeModelAssisted PredictionMode = "model"
)

// ParsePredictionMode maps a request value to a mode; empty input yields the fallback
func ParsePredictionMode(s string, fallback PredictionMode) (PredictionMode, bool) {
	switch PredictionMode(s) {
	case "":
		return fallback, true
	case ModeHeuristicOnly, ModeModelAssisted:
		return PredictionMode(s), true
	default:
		return "", false
	}
}

// Life expectancy floors and the risk scale factor
const (
	MinLifeExpectancyYears = 40.0
	RiskAdjustmentFactor   = 0.15
	MaxHealthRiskScore     = 100.0
)

// Wellness tips, emitted in this order
const (
	TipWeightReduction   = "Lose weight: reaching a healthy BMI can add 2-5 years."
	TipVisceralFat       = "Reduce visceral fat (e.g. cavitation, targeted exercise): about +3 years."
	TipWellnessProgram   = "Join a structured wellness program: +5 years or more."
	Disclaimer           = "Wellness insights only - not medical advice."
	WeightTipBMIOver     = 25.0
	VisceralTipLevelOver = 7.0
	WellnessTipRiskOver  = 50.0
)

// RiskAssessment is the composite health-risk score and the BMI it was derived from
type RiskAssessment struct {
	HealthRiskScore float64 `json:"health_risk_score"`
	BodyMassIndex   float64 `json:"body_mass_index"`
}

// PredictionResult is what the rendering layer displays
// Risk score, BMI and tips always come from the heuristic path
type PredictionResult struct {
	FinalLifeExpectancyYears    float64          `json:"final_life_expectancy_years"`
	BaselineLifeExpectancyYears float64          `json:"baseline_life_expectancy_years"`
	HealthRiskScore             float64          `json:"health_risk_score"`
	BodyMassIndex               float64          `json:"body_mass_index"`
	WellnessTips                []string         `json:"wellness_tips"`
	PredictionMethod            PredictionMethod `json:"prediction_method"`
	Mode                        PredictionMode   `json:"mode"`
	Notice                      string           `json:"notice,omitempty"`
}

// Round1 rounds half away from zero to one decimal place
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
