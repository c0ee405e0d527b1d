package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrModelUnavailable means no learned model is loaded, or loading it failed
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrInvalidPrediction means the model returned a non-finite value
	ErrInvalidPrediction = errors.New("model returned an invalid prediction")

	// ErrFeatureLayoutMismatch means an artifact was fit on a different column order
	ErrFeatureLayoutMismatch = errors.New("feature layout mismatch")
)

// FieldViolation describes one field outside its accepted range
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// InputOutOfRangeError is returned by the input-collection layer, never by the core
type InputOutOfRangeError struct {
	Violations []FieldViolation
}

func (e *InputOutOfRangeError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return "input out of range: " + strings.Join(parts, "; ")
}
