package domain

// FeatureLayoutVersion identifies the column order below
// Bump it whenever FeatureNames changes; artifacts fit on another layout are rejected
const FeatureLayoutVersion = 1

// TargetColumn is the column the offline model is fit to predict
const TargetColumn = "le_remaining"

// FeatureNames is the exact column order the external training script fits on
var FeatureNames = []string{
	"age",
	"sex_male",
	"height_m",
	"weight",
	"bf_pct",
	"vfl",
	"smm_kg",
	"bmr",
	"smoking",
	"bp",
	"glucose",
	"family_cvd",
}

// FeatureVector encodes the two records in FeatureNames order, booleans as 1/0
func FeatureVector(body BodyComposition, history HealthHistory) []float64 {
	return []float64{
		float64(history.Age),
		boolToFloat(history.Sex.IsMale()),
		body.HeightM,
		body.WeightKG,
		body.BodyFatPct,
		body.VisceralFatLevel,
		body.SkeletalMuscleMassKG,
		body.BasalMetabolicRateKcal,
		boolToFloat(history.IsSmoker),
		history.SystolicBP,
		history.FastingGlucose,
		boolToFloat(history.FamilyHistoryCVD),
	}
}

// SameFeatureLayout reports whether names matches FeatureNames exactly
func SameFeatureLayout(names []string) bool {
	if len(names) != len(FeatureNames) {
		return false
	}
	for i, n := range names {
		if n != FeatureNames[i] {
			return false
		}
	}
	return true
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
