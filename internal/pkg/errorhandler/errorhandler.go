package errorhandler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pestguard/pestguard-web/internal/pkg/logger"
	"github.com/pestguard/pestguard-web/internal/pkg/response"
)

// HandleError logs the error with request context and sends the error envelope
func HandleError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	event := logger.FromContext(ctx).Error().
		Str("error_code", code).
		Str("error_message", message).
		Int("status_code", status)

	if err != nil {
		event.Err(err)
	}

	event.Msg("Request error")

	response.Error(w, status, code, message)
}

// LogValidationError logs validation errors with details
func LogValidationError(ctx context.Context, fieldErrors map[string]string) {
	errJSON, _ := json.Marshal(fieldErrors)
	logger.FromContext(ctx).Warn().
		RawJSON("validation_errors", errJSON).
		Msg("Validation error")
}

// LogExternalServiceError logs errors from marketplace API calls
func LogExternalServiceError(ctx context.Context, service string, endpoint string, statusCode int, err error) {
	logger.FromContext(ctx).Error().
		Str("external_service", service).
		Str("endpoint", endpoint).
		Int("status_code", statusCode).
		Err(err).
		Msg("External service error")
}
