package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/IANDYI/longevity-service/internal/core/domain"
	"github.com/xeipuuv/gojsonschema"
)

// Defaults applied when the optional vitals are omitted
const (
	DefaultSystolicBP     = 120.0
	DefaultFastingGlucose = 90.0
)

// optionalFields may be omitted and receive a default
var optionalFields = map[string]bool{
	"systolic_bp":     true,
	"fasting_glucose": true,
}

// ErrMalformedInput is returned when the payload is not a JSON object
var ErrMalformedInput = errors.New("malformed input")

// PredictionInput is the wire form of one prediction request
type PredictionInput struct {
	Mode                 string   `json:"mode,omitempty"`
	Age                  int      `json:"age"`
	Sex                  string   `json:"sex"`
	HeightCM             float64  `json:"height_cm"`
	WeightKG             float64  `json:"weight_kg"`
	BodyFatPct           float64  `json:"body_fat_pct"`
	VisceralFatLevel     float64  `json:"visceral_fat_level"`
	SkeletalMuscleMassKG float64  `json:"skeletal_muscle_mass_kg"`
	BMRKcal              float64  `json:"bmr_kcal"`
	IsSmoker             bool     `json:"is_smoker"`
	SystolicBP           *float64 `json:"systolic_bp,omitempty"`
	FastingGlucose       *float64 `json:"fasting_glucose,omitempty"`
	FamilyHistoryCVD     bool     `json:"family_history_cvd"`
}

// ToRecords converts the validated input into the core records
// height_cm becomes meters and missing vitals take their defaults here, not at point of use.
func (in PredictionInput) ToRecords() (domain.BodyComposition, domain.HealthHistory, error) {
	sex, err := domain.ParseSex(in.Sex)
	if err != nil {
		return domain.BodyComposition{}, domain.HealthHistory{}, err
	}

	bp := DefaultSystolicBP
	if in.SystolicBP != nil {
		bp = *in.SystolicBP
	}
	glucose := DefaultFastingGlucose
	if in.FastingGlucose != nil {
		glucose = *in.FastingGlucose
	}

	body := domain.BodyComposition{
		HeightM:                in.HeightCM / 100,
		WeightKG:               in.WeightKG,
		BodyFatPct:             in.BodyFatPct,
		VisceralFatLevel:       in.VisceralFatLevel,
		SkeletalMuscleMassKG:   in.SkeletalMuscleMassKG,
		BasalMetabolicRateKcal: in.BMRKcal,
	}
	history := domain.HealthHistory{
		Age:              in.Age,
		Sex:              sex,
		IsSmoker:         in.IsSmoker,
		SystolicBP:       bp,
		FastingGlucose:   glucose,
		FamilyHistoryCVD: in.FamilyHistoryCVD,
	}
	return body, history, nil
}

// InputValidator enforces the accepted input ranges with a JSON schema compiled once
type InputValidator struct {
	schema *gojsonschema.Schema
}

// NewInputValidator compiles the schema built from domain.InputRanges
func NewInputValidator() (*InputValidator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(InputSchema()))
	if err != nil {
		return nil, fmt.Errorf("failed to compile input schema: %w", err)
	}
	return &InputValidator{schema: schema}, nil
}

// InputSchema returns the JSON schema document for PredictionInput
func InputSchema() map[string]interface{} {
	properties := map[string]interface{}{
		"mode": map[string]interface{}{
			"enum": []string{string(domain.ModeHeuristicOnly), string(domain.ModeModelAssisted)},
		},
		"sex": map[string]interface{}{
			"type": "string",
			"enum": []string{"M", "F", "m", "f", "male", "female", "Male", "Female"},
		},
	}
	required := []string{"sex"}

	for _, r := range domain.InputRanges {
		kind := "number"
		if r.Integer {
			kind = "integer"
		}
		properties[r.Field] = map[string]interface{}{
			"type":    kind,
			"minimum": r.Min,
			"maximum": r.Max,
		}
		if !optionalFields[r.Field] {
			required = append(required, r.Field)
		}
	}
	for _, field := range domain.BooleanInputs {
		properties[field] = map[string]interface{}{"type": "boolean"}
	}

	return map[string]interface{}{
		"type":       "object",
		"required":   required,
		"properties": properties,
	}
}

// Validate checks raw JSON against the schema and decodes it
// Range or type violations yield *domain.InputOutOfRangeError.
func (v *InputValidator) Validate(data []byte) (*PredictionInput, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	if !result.Valid() {
		violations := make([]domain.FieldViolation, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			field := e.Field()
			if field == "(root)" {
				if missing, ok := e.Details()["property"].(string); ok {
					field = missing
				}
			}
			violations = append(violations, domain.FieldViolation{
				Field:   strings.TrimPrefix(field, "(root)."),
				Message: e.Description(),
			})
		}
		return nil, &domain.InputOutOfRangeError{Violations: violations}
	}

	var in PredictionInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return &in, nil
}
