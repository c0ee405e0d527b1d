package model

import (
	"context"
	"fmt"
	"os"

	"github.com/IANDYI/longevity-service/internal/core/ports"
)

// FileSource loads a model artifact from a JSON file on disk
type FileSource struct {
	path string
}

// NewFileSource creates a source for the artifact at path
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load reads and parses the artifact
func (s *FileSource) Load(_ context.Context) (ports.PredictiveModel, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}
	m, err := ParseArtifact(data)
	if err != nil {
		return nil, fmt.Errorf("model file %s: %w", s.path, err)
	}
	return m, nil
}

// Describe returns "file:" + path
func (s *FileSource) Describe() string {
	return "file:" + s.path
}

var _ ports.ModelSource = (*FileSource)(nil)
