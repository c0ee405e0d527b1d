package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries a caller-supplied request ID through the service
const RequestIDHeader = "X-Request-ID"

// requestID reuses a well-formed caller ID or generates a new one for tracing
func requestID(r *http.Request) string {
	if id := r.Header.Get(RequestIDHeader); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	return uuid.NewString()
}

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error      string      `json:"error"`
	RequestID  string      `json:"request_id,omitempty"`
	Violations interface{} `json:"violations,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// logRequest logs one structured line per handled request
func logRequest(logger *zap.Logger, requestID string, r *http.Request, statusCode int, duration time.Duration, fields ...zap.Field) {
	fields = append([]zap.Field{
		zap.String("request_id", requestID),
		zap.String("method", r.Method),
		zap.String("endpoint", r.URL.Path),
		zap.Int("status_code", statusCode),
		zap.Int64("duration_ms", duration.Milliseconds()),
	}, fields...)

	switch {
	case statusCode >= 500:
		logger.Error("request failed", fields...)
	case statusCode >= 400:
		logger.Warn("request rejected", fields...)
	default:
		logger.Info("request handled", fields...)
	}
}
