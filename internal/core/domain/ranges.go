package domain

// InputRange is the accepted closed interval of one numeric input field
type InputRange struct {
	Field   string
	Min     float64
	Max     float64
	Integer bool
}

// InputRanges lists the ranges the input-collection layer enforces
// height_cm is converted to meters before it reaches the core
var InputRanges = []InputRange{
	{Field: "age", Min: 18, Max: 100, Integer: true},
	{Field: "height_cm", Min: 140, Max: 220},
	{Field: "weight_kg", Min: 40, Max: 200},
	{Field: "body_fat_pct", Min: 5, Max: 60},
	{Field: "visceral_fat_level", Min: 1, Max: 20},
	{Field: "skeletal_muscle_mass_kg", Min: 20, Max: 50},
	{Field: "bmr_kcal", Min: 1000, Max: 2500},
	{Field: "systolic_bp", Min: 90, Max: 200},
	{Field: "fasting_glucose", Min: 70, Max: 300},
}

// BooleanInputs are the toggles of the input form
var BooleanInputs = []string{"is_smoker", "family_history_cvd"}
