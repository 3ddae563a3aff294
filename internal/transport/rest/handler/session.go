package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"studyhub/internal/model"
	"studyhub/internal/service"
	"studyhub/internal/transport/rest/middleware"
)

// SessionHandler handles session endpoints
type SessionHandler struct {
	sessionSvc *service.SessionService
	meetingSvc *service.MeetingService
	log        *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessionSvc *service.SessionService, meetingSvc *service.MeetingService, log *zap.Logger) *SessionHandler {
	return &SessionHandler{
		sessionSvc: sessionSvc,
		meetingSvc: meetingSvc,
		log:        log,
	}
}

// Create handles POST /v1/sessions
//
// @Summary  Book a session with a tutor
// @Tags     sessions
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body     service.CreateSessionInput true "booking"
// @Success  201  {object} model.SessionView
// @Failure  400  {object} ErrorResponse
// @Router   /sessions [post]
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateSessionInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	session, err := h.sessionSvc.CreateSession(r.Context(), middleware.GetPrincipal(r.Context()), &in)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, model.SessionView{Session: session, Status: session.StatusAt(h.sessionSvc.Now())})
}

// List handles GET /v1/sessions
//
// @Summary  The caller's sessions grouped by status
// @Tags     sessions
// @Produce  json
// @Security BearerAuth
// @Success  200 {object} model.SessionBuckets
// @Failure  503 {object} ErrorResponse
// @Router   /sessions [get]
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	buckets, err := h.sessionSvc.Buckets(r.Context(), middleware.GetPrincipal(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}

// Get handles GET /v1/sessions/{id}
//
// @Summary  One session the caller participates in
// @Tags     sessions
// @Produce  json
// @Security BearerAuth
// @Param    id  path     string true "session id"
// @Success  200 {object} model.SessionView
// @Failure  403 {object} ErrorResponse
// @Failure  404 {object} ErrorResponse
// @Router   /sessions/{id} [get]
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	session, err := h.sessionSvc.GetSession(r.Context(), id, middleware.GetPrincipal(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, model.SessionView{Session: session, Status: session.StatusAt(h.sessionSvc.Now())})
}

// Join handles POST /v1/sessions/{id}/join. A token is optional.
//
// @Summary  Join an active session's meeting
// @Tags     sessions
// @Produce  json
// @Param    id  path     string true "session id"
// @Success  200 {object} model.JoinInfo
// @Failure  409 {object} ErrorResponse "session is not active"
// @Failure  502 {object} ErrorResponse
// @Router   /sessions/{id}/join [post]
func (h *SessionHandler) Join(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	info, err := h.meetingSvc.JoinMeeting(r.Context(), id, middleware.GetPrincipal(r.Context()))
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
