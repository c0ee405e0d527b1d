package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/IANDYI/longevity-service/internal/adapters/model"
	"github.com/IANDYI/longevity-service/internal/core/ports"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// ErrArtifactNotFound means the registry has no artifact under the configured name
var ErrArtifactNotFound = errors.New("model artifact not found")

// BreakerSettings configures the circuit breakers of the adapters
type BreakerSettings struct {
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
}

// DefaultBreakerSettings matches the service defaults
var DefaultBreakerSettings = BreakerSettings{
	MaxRequests: 5,
	Interval:    60 * time.Second,
	Timeout:     30 * time.Second,
}

func newBreaker(name string, s BreakerSettings) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})
}

// SQLModelSource loads the newest model artifact for a name from PostgreSQL
// Includes retry logic and circuit breaker for resilience
type SQLModelSource struct {
	db         *sql.DB
	name       string
	cb         *gobreaker.CircuitBreaker
	maxRetries int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewSQLModelSource creates a registry-backed model source
func NewSQLModelSource(db *sql.DB, name string, settings BreakerSettings, logger *zap.Logger) *SQLModelSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLModelSource{
		db:         db,
		name:       name,
		cb:         newBreaker("model-registry", settings),
		maxRetries: 3,
		retryDelay: 1 * time.Second,
		logger:     logger,
	}
}

// WithRetry overrides the retry policy
func (s *SQLModelSource) WithRetry(maxRetries int, delay time.Duration) *SQLModelSource {
	if maxRetries > 0 {
		s.maxRetries = maxRetries
	}
	s.retryDelay = delay
	return s
}

// executeWithRetry executes a database operation with retry logic
func (s *SQLModelSource) executeWithRetry(ctx context.Context, operation func() error) error {
	var lastErr error
	for i := 0; i < s.maxRetries; i++ {
		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err
		// not transient
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		s.logger.Warn("model registry query failed",
			zap.Int("attempt", i+1), zap.Int("max_attempts", s.maxRetries), zap.Error(err))
		if i < s.maxRetries-1 {
			select {
			case <-time.After(s.retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return fmt.Errorf("operation failed after %d retries: %w", s.maxRetries, lastErr)
}

// Load fetches and parses the newest artifact
func (s *SQLModelSource) Load(ctx context.Context) (ports.PredictiveModel, error) {
	result, err := s.cb.Execute(func() (interface{}, error) {
		var artifact []byte
		err := s.executeWithRetry(ctx, func() error {
			query := `SELECT artifact FROM model_artifacts WHERE name = $1 ORDER BY created_at DESC LIMIT 1`
			return s.db.QueryRowContext(ctx, query, s.name).Scan(&artifact)
		})
		if err != nil {
			return nil, err
		}
		return artifact, nil
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, s.name)
		}
		return nil, fmt.Errorf("failed to load model artifact: %w", err)
	}

	m, err := model.ParseArtifact(result.([]byte))
	if err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", s.name, err)
	}
	return m, nil
}

// Describe returns "postgres:" + artifact name
func (s *SQLModelSource) Describe() string {
	return "postgres:" + s.name
}

var _ ports.ModelSource = (*SQLModelSource)(nil)
