package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"studyhub/internal/config"
	"studyhub/internal/llm"
	"studyhub/internal/model"
	"studyhub/internal/service"
)

const (
	msgRetryGeneration = "the generated content was not in the expected format, please try again"
	msgInternal        = "internal server error"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// errorStatus maps a service error to its status and user-facing body.
func errorStatus(err error) (int, ErrorResponse) {
	var (
		verr      *model.ValidationError
		schemaErr *llm.SchemaError
		missing   *config.MissingError
		ext       *model.ExternalError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, ErrorResponse{Error: "validation failed", Fields: verr.Fields}
	case errors.Is(err, model.ErrUnauthorized), errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, ErrorResponse{Error: err.Error()}
	case errors.Is(err, model.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Error: model.ErrForbidden.Error()}
	case errors.Is(err, model.ErrNoMatch):
		return http.StatusNotFound, ErrorResponse{Error: model.ErrNoMatch.Error()}
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "not found"}
	case errors.Is(err, model.ErrInFlight), errors.Is(err, model.ErrSessionNotActive), errors.Is(err, model.ErrInvalidTransition):
		return http.StatusConflict, ErrorResponse{Error: err.Error()}
	case errors.As(err, &schemaErr):
		return http.StatusBadGateway, ErrorResponse{Error: msgRetryGeneration}
	case errors.As(err, &missing):
		return http.StatusServiceUnavailable, ErrorResponse{Error: missing.Error()}
	case errors.Is(err, model.ErrPermissionDenied):
		return http.StatusServiceUnavailable, ErrorResponse{Error: model.ErrPermissionDenied.Error()}
	case errors.As(err, &ext):
		return http.StatusBadGateway, ErrorResponse{Error: ext.Error()}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: msgInternal}
}

// writeServiceError writes err with its mapped status. Server-side failures are logged.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error) {
	status, body := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, body)
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.NewValidationError("body", "invalid request body")
	}
	return nil
}
