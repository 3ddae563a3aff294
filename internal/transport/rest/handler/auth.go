package handler

import (
	"net/http"

	"go.uber.org/zap"

	"studyhub/internal/service"
	"studyhub/internal/transport/rest/middleware"
)

// AuthHandler serves the signed-in user's identity
type AuthHandler struct {
	profileSvc *service.ProfileService
	log        *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(profileSvc *service.ProfileService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{profileSvc: profileSvc, log: log}
}

// Me handles GET /v1/me
//
// @Summary  Current user profile
// @Tags     users
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} model.UserProfile
// @Failure  401 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	me, err := h.profileSvc.Me(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, me)
}
