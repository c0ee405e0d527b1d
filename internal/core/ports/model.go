package ports

import (
	"context"
)

// PredictiveModel is a learned regressor over domain.FeatureNames
// Implementations are read-only after load and safe for concurrent use
type PredictiveModel interface {
	// Predict maps a feature vector in domain.FeatureNames order to a scalar
	// Returns domain.ErrModelUnavailable if the model could not be loaded
	Predict(ctx context.Context, features []float64) (float64, error)
}

// ModelSource loads a model artifact from wherever it is stored
type ModelSource interface {
	// Load returns a ready model or an error; callers treat any error as "model absent"
	Load(ctx context.Context) (PredictiveModel, error)

	// Describe names the source for logs, e.g. "file:/models/le.json"
	Describe() string
}

// ModelInfo describes the model currently held by the service
type ModelInfo struct {
	Source        string   `json:"source"`
	Loaded        bool     `json:"loaded"`
	Kind          string   `json:"kind,omitempty"`
	LayoutVersion int      `json:"feature_layout_version"`
	FeatureNames  []string `json:"feature_names"`
	LoadError     string   `json:"load_error,omitempty"`
}

// ModelInspector exposes load status without forcing a load
type ModelInspector interface {
	Info() ModelInfo
}
