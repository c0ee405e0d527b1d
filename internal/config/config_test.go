package config_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/IANDYI/longevity-service/internal/config"
	"github.com/IANDYI/longevity-service/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writePublicKey(t *testing.T) string {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "public.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "false")

	cfg := config.Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.AuthEnabled)
	assert.Nil(t, cfg.JWTPublicKey)
	assert.Equal(t, domain.ModeHeuristicOnly, cfg.DefaultMode)
	assert.True(t, cfg.BaselineCacheEnabled)
	assert.False(t, cfg.MessagingEnabled)
	assert.Equal(t, "prediction.requests", cfg.RequestQueueName)
	assert.Equal(t, "prediction.results", cfg.ResultQueueName)
	assert.Equal(t, "le_model", cfg.ModelName)
	assert.Equal(t, uint32(5), cfg.CircuitBreakerMaxRequests)
	assert.Equal(t, 60*time.Second, cfg.CircuitBreakerInterval)
	assert.Equal(t, 30*time.Second, cfg.CircuitBreakerTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("PUBLIC_KEY_PATH", writePublicKey(t))
	t.Setenv("PORT", "9090")
	t.Setenv("MODEL_PATH", "/models/le_model.json")
	t.Setenv("DEFAULT_PREDICTION_MODE", "model")
	t.Setenv("MESSAGING_ENABLED", "true")
	t.Setenv("CIRCUIT_BREAKER_MAX_REQUESTS", "9")
	t.Setenv("CIRCUIT_BREAKER_TIMEOUT", "5s")

	cfg := config.Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.NotNil(t, cfg.JWTPublicKey)
	assert.Equal(t, "/models/le_model.json", cfg.ModelPath)
	assert.Equal(t, domain.ModeModelAssisted, cfg.DefaultMode)
	assert.True(t, cfg.MessagingEnabled)
	assert.Equal(t, uint32(9), cfg.CircuitBreakerMaxRequests)
	assert.Equal(t, 5*time.Second, cfg.CircuitBreakerTimeout)
}

func TestLoad_MissingPublicKeyPanics(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "true")
	t.Setenv("PUBLIC_KEY_PATH", filepath.Join(t.TempDir(), "missing.pem"))

	assert.Panics(t, func() { config.Load() })
}

func TestLoad_InvalidModePanics(t *testing.T) {
	t.Setenv("AUTH_ENABLED", "false")
	t.Setenv("DEFAULT_PREDICTION_MODE", "oracle")

	assert.Panics(t, func() { config.Load() })
}

func TestNewLogger(t *testing.T) {
	logger, err := config.NewLogger("debug", "console", "longevity-service")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = config.NewLogger("warn", "json", "")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
}

func TestInitModelRegistry(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS model_artifacts`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, config.InitModelRegistry(context.Background(), db))
	require.NoError(t, mock.ExpectationsWereMet())
}
