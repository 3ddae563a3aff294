package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"studyhub/internal/config"
	"studyhub/internal/game"
	"studyhub/internal/llm"
	"studyhub/internal/model"
	"studyhub/internal/service"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", model.NewValidationError("topic", "is required"), http.StatusBadRequest, "validation failed"},
		{"unauthorized", model.ErrUnauthorized, http.StatusUnauthorized, ""},
		{"bad token", service.ErrInvalidToken, http.StatusUnauthorized, ""},
		{"forbidden", fmt.Errorf("wrapped: %w", model.ErrForbidden), http.StatusForbidden, ""},
		{"not found", fmt.Errorf("failed to get session: %w", model.ErrNotFound), http.StatusNotFound, "not found"},
		{"no match", model.ErrNoMatch, http.StatusNotFound, "no suitable tutor found, please try again"},
		{"in flight", model.ErrInFlight, http.StatusConflict, ""},
		{"not active", model.ErrSessionNotActive, http.StatusConflict, ""},
		{"board busy", game.ErrBoardBusy, http.StatusConflict, ""},
		{"schema", fmt.Errorf("x: %w", &llm.SchemaError{Schema: "quiz", Reason: "bad"}), http.StatusBadGateway, msgRetryGeneration},
		{"external", &model.ExternalError{Service: "meeting provider", Err: errors.New("timeout")}, http.StatusBadGateway, ""},
		{"permission", fmt.Errorf("failed to list sessions: %w", model.ErrPermissionDenied), http.StatusServiceUnavailable, "permission denied reading data"},
		{"not configured", &config.MissingError{Feature: "tutor matching", Keys: []string{"GEMINI_API_KEY"}}, http.StatusServiceUnavailable, ""},
		{"generic", errors.New("boom"), http.StatusInternalServerError, msgInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := errorStatus(tc.err)
			assert.Equal(t, tc.status, status)
			assert.NotEmpty(t, body.Error)
			if tc.msg != "" {
				assert.Equal(t, tc.msg, body.Error)
			}
		})
	}
}

func TestPermissionAndGenericFailuresDiffer(t *testing.T) {
	_, denied := errorStatus(model.ErrPermissionDenied)
	_, generic := errorStatus(errors.New("connection reset"))
	assert.NotEqual(t, denied.Error, generic.Error)
}
