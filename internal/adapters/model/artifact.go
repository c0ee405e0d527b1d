package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/IANDYI/longevity-service/internal/core/domain"
	"github.com/IANDYI/longevity-service/internal/core/ports"
	"github.com/xeipuuv/gojsonschema"
)

// Artifact kinds
const (
	KindRandomForest = "random_forest"
	KindLinear       = "linear"
)

// ArtifactFormatVersion is the only artifact format this service reads
const ArtifactFormatVersion = 1

// artifactSchema checks the shape of an exported model before it is interpreted
const artifactSchema = `{
	"type": "object",
	"required": ["format_version", "kind", "feature_names", "target"],
	"properties": {
		"format_version": {"enum": [1]},
		"kind": {"enum": ["random_forest", "linear"]},
		"feature_names": {"type": "array", "items": {"type": "string"}, "minItems": 1},
		"target": {"type": "string"},
		"intercept": {"type": "number"},
		"coefficients": {"type": "array", "items": {"type": "number"}},
		"trees": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["feature", "threshold", "children_left", "children_right", "value"],
				"properties": {
					"feature": {"type": "array", "items": {"type": "integer"}},
					"threshold": {"type": "array", "items": {"type": "number"}},
					"children_left": {"type": "array", "items": {"type": "integer"}},
					"children_right": {"type": "array", "items": {"type": "integer"}},
					"value": {"type": "array", "items": {"type": "number"}}
				}
			}
		}
	}
}`

var compiledArtifactSchema = mustCompileSchema(artifactSchema)

func mustCompileSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic("invalid model artifact schema: " + err.Error())
	}
	return schema
}

// Artifact is the JSON export of a model fit by the offline training job
type Artifact struct {
	FormatVersion int          `json:"format_version"`
	Kind          string       `json:"kind"`
	FeatureNames  []string     `json:"feature_names"`
	Target        string       `json:"target"`
	Intercept     float64      `json:"intercept,omitempty"`
	Coefficients  []float64    `json:"coefficients,omitempty"`
	Trees         []TreeArrays `json:"trees,omitempty"`
}

// TreeArrays is one decision tree in the parallel-array layout of scikit-learn's tree_
// For node i: go left when x[feature[i]] <= threshold[i]; a child of -1 marks a leaf.
type TreeArrays struct {
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Value         []float64 `json:"value"`
}

// ParseArtifact validates raw artifact JSON and builds the model it describes
func ParseArtifact(data []byte) (ports.PredictiveModel, error) {
	result, err := compiledArtifactSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("invalid model artifact: %s", strings.Join(msgs, "; "))
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact: %w", err)
	}
	return a.Build()
}

// Build checks the training contract and constructs the model
func (a *Artifact) Build() (ports.PredictiveModel, error) {
	if a.FormatVersion != ArtifactFormatVersion {
		return nil, fmt.Errorf("unsupported artifact format version %d", a.FormatVersion)
	}
	if !domain.SameFeatureLayout(a.FeatureNames) {
		return nil, fmt.Errorf("%w: artifact columns %v, service layout v%d %v",
			domain.ErrFeatureLayoutMismatch, a.FeatureNames, domain.FeatureLayoutVersion, domain.FeatureNames)
	}
	if a.Target != domain.TargetColumn {
		return nil, fmt.Errorf("artifact target %q, expected %q", a.Target, domain.TargetColumn)
	}

	switch a.Kind {
	case KindLinear:
		if len(a.Coefficients) != len(a.FeatureNames) {
			return nil, fmt.Errorf("linear model has %d coefficients for %d features", len(a.Coefficients), len(a.FeatureNames))
		}
		return NewLinearModel(a.Intercept, a.Coefficients)
	case KindRandomForest:
		return NewForest(a.Trees, len(a.FeatureNames))
	default:
		return nil, fmt.Errorf("unknown model kind %q", a.Kind)
	}
}
