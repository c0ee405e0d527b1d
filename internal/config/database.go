package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// modelRegistrySchema stores exported model artifacts; the newest row per name wins
const modelRegistrySchema = `
CREATE TABLE IF NOT EXISTS model_artifacts (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL,
	artifact JSONB NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_model_artifacts_name_created_at ON model_artifacts(name, created_at DESC);`

// InitModelRegistry creates the model registry table if it does not exist
func InitModelRegistry(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, modelRegistrySchema); err != nil {
		return fmt.Errorf("failed to create model_artifacts table: %w", err)
	}
	return nil
}

// ConnectDatabase establishes a connection to PostgreSQL with retry logic
func ConnectDatabase(databaseURL string, maxRetries int, retryDelay time.Duration, logger *zap.Logger) (*sql.DB, error) {
	var err error

	for i := 0; i < maxRetries; i++ {
		var db *sql.DB
		db, err = sql.Open("postgres", databaseURL)
		if err != nil {
			logger.Warn("failed to open database connection",
				zap.Int("attempt", i+1), zap.Int("max_attempts", maxRetries), zap.Error(err))
			if i < maxRetries-1 {
				time.Sleep(retryDelay)
			}
			continue
		}

		if err = db.Ping(); err != nil {
			logger.Warn("failed to ping database",
				zap.Int("attempt", i+1), zap.Int("max_attempts", maxRetries), zap.Error(err))
			db.Close()
			if i < maxRetries-1 {
				time.Sleep(retryDelay)
			}
			continue
		}

		// Small pool: the registry is read once per process
		db.SetMaxOpenConns(5)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)

		logger.Info("database connection established")
		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}
