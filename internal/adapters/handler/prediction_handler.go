package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/IANDYI/longevity-service/internal/adapters/metrics"
	"github.com/IANDYI/longevity-service/internal/adapters/validation"
	"github.com/IANDYI/longevity-service/internal/core/domain"
	"github.com/IANDYI/longevity-service/internal/core/ports"
	"go.uber.org/zap"
)

// maxRequestBytes bounds a prediction request body
const maxRequestBytes = 64 << 10

// PredictionHandler handles HTTP requests for predictions
type PredictionHandler struct {
	service     ports.PredictionService
	validator   *validation.InputValidator
	inspector   ports.ModelInspector
	defaultMode domain.PredictionMode
	logger      *zap.Logger
}

// NewPredictionHandler creates a new prediction handler
// inspector may be nil when no model source is configured.
func NewPredictionHandler(
	service ports.PredictionService,
	validator *validation.InputValidator,
	inspector ports.ModelInspector,
	defaultMode domain.PredictionMode,
	logger *zap.Logger,
) *PredictionHandler {
	if defaultMode == "" {
		defaultMode = domain.ModeHeuristicOnly
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PredictionHandler{
		service:     service,
		validator:   validator,
		inspector:   inspector,
		defaultMode: defaultMode,
		logger:      logger,
	}
}

// PredictionResponse wraps a result with its request ID and the disclaimer
type PredictionResponse struct {
	RequestID  string                   `json:"request_id"`
	Result     *domain.PredictionResult `json:"result"`
	Disclaimer string                   `json:"disclaimer"`
}

// CreatePrediction handles POST /predictions
// Out-of-range input is 422; a model-assisted request without a usable model still succeeds with a notice.
func (h *PredictionHandler) CreatePrediction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := requestID(r)
	w.Header().Set(RequestIDHeader, reqID)

	fail := func(status int, resp ErrorResponse, err error) {
		resp.RequestID = reqID
		writeJSON(w, status, resp)
		logRequest(h.logger, reqID, r, status, time.Since(start), zap.Error(err))
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		fail(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"}, err)
		return
	}

	in, err := h.validator.Validate(data)
	if err != nil {
		var rangeErr *domain.InputOutOfRangeError
		if errors.As(err, &rangeErr) {
			fail(http.StatusUnprocessableEntity, ErrorResponse{
				Error:      "input out of range",
				Violations: rangeErr.Violations,
			}, err)
			return
		}
		fail(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"}, err)
		return
	}

	mode, ok := domain.ParsePredictionMode(in.Mode, h.defaultMode)
	if !ok {
		fail(http.StatusUnprocessableEntity, ErrorResponse{Error: "unknown prediction mode"}, nil)
		return
	}

	body, history, err := in.ToRecords()
	if err != nil {
		fail(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()}, err)
		return
	}

	result := h.service.Run(r.Context(), mode, body, history)
	metrics.ObservePrediction(metrics.SourceHTTP, result)

	writeJSON(w, http.StatusOK, PredictionResponse{
		RequestID:  reqID,
		Result:     result,
		Disclaimer: domain.Disclaimer,
	})
	logRequest(h.logger, reqID, r, http.StatusOK, time.Since(start),
		zap.String("mode", string(mode)),
		zap.String("prediction_method", string(result.PredictionMethod)))
}

// GetModel handles GET /model
// Reports load status and the expected feature layout without forcing a load.
func (h *PredictionHandler) GetModel(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := requestID(r)

	info := ports.ModelInfo{
		Source:        "none",
		LayoutVersion: domain.FeatureLayoutVersion,
		FeatureNames:  domain.FeatureNames,
	}
	if h.inspector != nil {
		info = h.inspector.Info()
	}

	writeJSON(w, http.StatusOK, info)
	logRequest(h.logger, reqID, r, http.StatusOK, time.Since(start))
}
