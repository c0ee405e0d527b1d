package domain

import (
	"fmt"
	"strings"
)

// Sex is the biological sex used by the baseline and body-fat calculations
type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

// ParseSex accepts "M"/"F" in any case, as well as "male"/"female"
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male":
		return SexMale, nil
	case "f", "female":
		return SexFemale, nil
	default:
		return "", fmt.Errorf("invalid sex: %q", s)
	}
}

// IsMale reports whether the sex is SexMale
func (s Sex) IsMale() bool {
	return s == SexMale
}

// BodyComposition holds the readings of a body-composition analyzer
// Built once per prediction request and never mutated afterwards
type BodyComposition struct {
	HeightM                float64 `json:"height_m"`
	WeightKG               float64 `json:"weight_kg"`
	BodyFatPct             float64 `json:"body_fat_pct"`
	VisceralFatLevel       float64 `json:"visceral_fat_level"`
	SkeletalMuscleMassKG   float64 `json:"skeletal_muscle_mass_kg"`
	BasalMetabolicRateKcal float64 `json:"basal_metabolic_rate_kcal"`
}

// BMI returns weight_kg / height_m², unrounded
// HeightM must be > 0; the validation layer guarantees it
func (b BodyComposition) BMI() float64 {
	return b.WeightKG / (b.HeightM * b.HeightM)
}

// HealthHistory holds the lifestyle and clinical history of the subject
type HealthHistory struct {
	Age              int     `json:"age"`
	Sex              Sex     `json:"sex"`
	IsSmoker         bool    `json:"is_smoker"`
	SystolicBP       float64 `json:"systolic_bp"`
	FastingGlucose   float64 `json:"fasting_glucose"`
	FamilyHistoryCVD bool    `json:"family_history_cvd"`
}
