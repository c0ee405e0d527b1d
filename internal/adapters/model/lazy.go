package model

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/IANDYI/longevity-service/internal/core/domain"
	"github.com/IANDYI/longevity-service/internal/core/ports"
	"go.uber.org/zap"
)

// loadTimeout bounds the one-time artifact load
const loadTimeout = 30 * time.Second

// LazyModel loads its model from a source on first use and keeps it for the process lifetime
// A failed load is remembered; later calls report domain.ErrModelUnavailable without retrying.
type LazyModel struct {
	source ports.ModelSource
	logger *zap.Logger

	once    sync.Once
	done    chan struct{}
	model   ports.PredictiveModel
	loadErr error

	// OnLoad is called once with the outcome of the load, if set
	OnLoad func(loaded bool)
}

// NewLazyModel creates a lazily-loaded model; a nil source means "no model configured"
func NewLazyModel(source ports.ModelSource, logger *zap.Logger) *LazyModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LazyModel{source: source, logger: logger, done: make(chan struct{})}
}

// Warm forces the load now instead of on the first prediction
func (m *LazyModel) Warm(ctx context.Context) error {
	m.load(ctx)
	return m.loadErr
}

func (m *LazyModel) load(ctx context.Context) {
	m.once.Do(func() {
		defer close(m.done)

		if m.source == nil {
			m.loadErr = fmt.Errorf("no model source configured")
		} else {
			loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
			defer cancel()

			start := time.Now()
			m.model, m.loadErr = m.source.Load(loadCtx)
			if m.loadErr != nil {
				m.logger.Warn("failed to load model, continuing without it",
					zap.String("source", m.source.Describe()),
					zap.Error(m.loadErr))
			} else {
				m.logger.Info("model loaded",
					zap.String("source", m.source.Describe()),
					zap.String("kind", kindOf(m.model)),
					zap.Duration("duration", time.Since(start)))
			}
		}

		if m.OnLoad != nil {
			m.OnLoad(m.loadErr == nil)
		}
	})
}

// Predict loads the model if needed and delegates to it
func (m *LazyModel) Predict(ctx context.Context, features []float64) (float64, error) {
	m.load(ctx)
	if m.loadErr != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrModelUnavailable, m.loadErr)
	}
	return m.model.Predict(ctx, features)
}

// Info reports load status without triggering a load
func (m *LazyModel) Info() ports.ModelInfo {
	info := ports.ModelInfo{
		Source:        "none",
		LayoutVersion: domain.FeatureLayoutVersion,
		FeatureNames:  domain.FeatureNames,
	}
	if m.source != nil {
		info.Source = m.source.Describe()
	}

	select {
	case <-m.done:
	default:
		return info
	}

	if m.loadErr != nil {
		info.LoadError = m.loadErr.Error()
		return info
	}
	info.Loaded = true
	info.Kind = kindOf(m.model)
	return info
}

func kindOf(m ports.PredictiveModel) string {
	if k, ok := m.(interface{ Kind() string }); ok {
		return k.Kind()
	}
	return "unknown"
}

var (
	_ ports.PredictiveModel = (*LazyModel)(nil)
	_ ports.ModelInspector  = (*LazyModel)(nil)
	_ ports.PredictiveModel = (*Forest)(nil)
	_ ports.PredictiveModel = (*LinearModel)(nil)
)
