package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IANDYI/longevity-service/internal/adapters/handler"
	"github.com/IANDYI/longevity-service/internal/adapters/metrics"
	"github.com/IANDYI/longevity-service/internal/adapters/middleware"
	"github.com/IANDYI/longevity-service/internal/adapters/model"
	"github.com/IANDYI/longevity-service/internal/adapters/repository"
	"github.com/IANDYI/longevity-service/internal/adapters/validation"
	"github.com/IANDYI/longevity-service/internal/config"
	"github.com/IANDYI/longevity-service/internal/core/ports"
	"github.com/IANDYI/longevity-service/internal/core/services"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	metrics.RegisterPredictionMetrics(nil)

	breaker := repository.BreakerSettings{
		MaxRequests: cfg.CircuitBreakerMaxRequests,
		Interval:    cfg.CircuitBreakerInterval,
		Timeout:     cfg.CircuitBreakerTimeout,
	}
	readiness := map[string]handler.ReadinessCheck{}

	// Model source: a file artifact wins over the registry; neither means heuristic only
	var db *sql.DB
	var source ports.ModelSource
	switch {
	case cfg.ModelPath != "":
		source = model.NewFileSource(cfg.ModelPath)
	case cfg.ModelDatabaseURL != "":
		db, err = config.ConnectDatabase(cfg.ModelDatabaseURL, 5, 2*time.Second, logger)
		if err != nil {
			logger.Fatal("failed to connect to model registry", zap.Error(err))
		}
		defer db.Close()
		if err := config.InitModelRegistry(context.Background(), db); err != nil {
			logger.Fatal("failed to initialize model registry", zap.Error(err))
		}
		source = repository.NewSQLModelSource(db, cfg.ModelName, breaker, logger)
		readiness["database"] = db.PingContext
	}

	var predictive ports.PredictiveModel
	var inspector ports.ModelInspector
	if source != nil {
		lazy := model.NewLazyModel(source, logger)
		lazy.OnLoad = metrics.SetModelLoaded
		if cfg.ModelEagerLoad {
			// a missing model is not fatal, predictions degrade to the heuristic
			_ = lazy.Warm(context.Background())
		}
		predictive = lazy
		inspector = lazy
		logger.Info("model source configured",
			zap.String("source", source.Describe()), zap.Bool("eager", cfg.ModelEagerLoad))
	} else {
		logger.Info("no model source configured, serving heuristic predictions only")
	}

	var baseline services.BaselineEstimator = services.BaselineFunc(services.Baseline)
	if cfg.BaselineCacheEnabled {
		baseline = services.NewMemoizedBaseline(baseline)
	}
	predictionService := services.NewPredictionService(services.NewHeuristicPredictor(baseline), predictive, logger)

	validator, err := validation.NewInputValidator()
	if err != nil {
		logger.Fatal("failed to compile input schema", zap.Error(err))
	}

	// Optional RabbitMQ request/result pipeline
	consumerCtx, consumerCancel := context.WithCancel(context.Background())
	defer consumerCancel()
	if cfg.MessagingEnabled {
		publisher, err := repository.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.ResultQueueName, breaker, logger)
		if err != nil {
			logger.Fatal("failed to initialize RabbitMQ publisher", zap.Error(err))
		}
		defer publisher.Close()
		readiness["rabbitmq"] = func(context.Context) error {
			if !publisher.IsConnected() {
				return errors.New("not connected")
			}
			return nil
		}

		consumer, err := repository.NewPredictionConsumer(
			cfg.RabbitMQURL, cfg.RequestQueueName, validator, predictionService, publisher, cfg.DefaultMode, logger)
		if err != nil {
			logger.Fatal("failed to initialize RabbitMQ consumer", zap.Error(err))
		}
		defer consumer.Close()

		go func() {
			if err := consumer.StartConsuming(consumerCtx); err != nil {
				logger.Error("prediction consumer error", zap.Error(err))
			}
		}()
	}

	predictionHandler := handler.NewPredictionHandler(predictionService, validator, inspector, cfg.DefaultMode, logger)
	healthHandler := handler.NewHealthHandler(readiness)

	requireAuth := func(next http.HandlerFunc) http.HandlerFunc { return next }
	requireAdmin := requireAuth
	if cfg.AuthEnabled {
		authMiddleware := middleware.NewAuthMiddleware(cfg.JWTPublicKey, logger)
		defer authMiddleware.Stop()
		requireAuth = authMiddleware.RequireAuth
		requireAdmin = func(next http.HandlerFunc) http.HandlerFunc {
			return authMiddleware.RequireRole(middleware.RoleAdmin, next)
		}
	} else {
		logger.Warn("authentication disabled")
	}

	mux := http.NewServeMux()

	// Health endpoints (OpenShift compatible, no auth required)
	mux.HandleFunc("GET /metrics", handler.Metrics)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /health/ready", healthHandler.Ready)
	mux.HandleFunc("GET /health/live", healthHandler.Live)

	mux.HandleFunc("POST /predictions", requireAuth(predictionHandler.CreatePrediction))
	mux.HandleFunc("GET /model", requireAdmin(predictionHandler.GetModel))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      middleware.MetricsMiddleware(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting longevity service", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Stop taking queue work before draining HTTP
	consumerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
