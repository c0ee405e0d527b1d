package services

import (
	"math"

	"github.com/IANDYI/longevity-service/internal/core/domain"
)

// Healthy-range thresholds of the risk terms
const (
	healthyBMI             = 22.5
	healthyVisceralFat     = 7.0
	idealBodyFatMale       = 15.0
	idealBodyFatFemale     = 23.0
	healthyMuscleMassKG    = 32.0
	healthyBMRKcal         = 1500.0
	hypertensionSystolicBP = 140.0
	elevatedGlucose        = 100.0
)

// Flat penalties for history flags
const (
	smokerPenalty       = 15.0
	hypertensionPenalty = 10.0
	glucosePenalty      = 12.0
	familyCVDPenalty    = 8.0
)

// ScoreRisk sums the weighted risk terms and clamps the total to [0, 100]
// Each term is zero inside its healthy range and grows linearly beyond it.
// BMI is returned unrounded. body.HeightM must be > 0.
func ScoreRisk(body domain.BodyComposition, history domain.HealthHistory) domain.RiskAssessment {
	bmi := body.BMI()

	idealBodyFat := idealBodyFatFemale
	if history.Sex.IsMale() {
		idealBodyFat = idealBodyFatMale
	}

	risk := 0.0
	risk += math.Max(0, (bmi-healthyBMI)/10) * 20
	risk += math.Max(0, body.VisceralFatLevel-healthyVisceralFat) * 15
	risk += math.Max(0, (body.BodyFatPct-idealBodyFat)/5) * 10
	risk += math.Max(0, (healthyMuscleMassKG-body.SkeletalMuscleMassKG)/5) * 8
	risk += math.Max(0, (healthyBMRKcal-body.BasalMetabolicRateKcal)/200) * 5

	if history.IsSmoker {
		risk += smokerPenalty
	}
	if history.SystolicBP > hypertensionSystolicBP {
		risk += hypertensionPenalty
	}
	if history.FastingGlucose > elevatedGlucose {
		risk += glucosePenalty
	}
	if history.FamilyHistoryCVD {
		risk += familyCVDPenalty
	}

	return domain.RiskAssessment{
		HealthRiskScore: clamp(risk, 0, domain.MaxHealthRiskScore),
		BodyMassIndex:   bmi,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
