package model

import (
	"context"
	"fmt"
)

// LinearModel is intercept + coefficients·x
type LinearModel struct {
	intercept    float64
	coefficients []float64
}

// NewLinearModel builds a linear regressor
func NewLinearModel(intercept float64, coefficients []float64) (*LinearModel, error) {
	if len(coefficients) == 0 {
		return nil, fmt.Errorf("linear model needs coefficients")
	}
	return &LinearModel{intercept: intercept, coefficients: coefficients}, nil
}

// Predict evaluates the linear function
func (m *LinearModel) Predict(_ context.Context, features []float64) (float64, error) {
	if len(features) != len(m.coefficients) {
		return 0, fmt.Errorf("expected %d features, got %d", len(m.coefficients), len(features))
	}
	v := m.intercept
	for i, c := range m.coefficients {
		v += c * features[i]
	}
	return v, nil
}

// Kind returns KindLinear
func (m *LinearModel) Kind() string {
	return KindLinear
}
