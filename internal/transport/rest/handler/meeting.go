package handler

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"studyhub/internal/model"
	"studyhub/internal/service"
)

// MeetingHandler serves the meeting relay endpoints. They keep their original
// contract: 200 with the result, or 500 with an error message.
type MeetingHandler struct {
	meetingSvc *service.MeetingService
	log        *zap.Logger
}

// NewMeetingHandler creates a new meeting handler
func NewMeetingHandler(meetingSvc *service.MeetingService, log *zap.Logger) *MeetingHandler {
	return &MeetingHandler{meetingSvc: meetingSvc, log: log}
}

// CreateMeetingRequest is the body of POST /api/create-zoom-meeting.
type CreateMeetingRequest struct {
	Topic     string `json:"topic"`
	StartTime string `json:"start_time"`
	Duration  int    `json:"duration"`
	Timezone  string `json:"timezone"`
}

// SignatureResponse carries an SDK join signature.
type SignatureResponse struct {
	Signature string `json:"signature"`
}

// CreateMeeting handles POST /api/create-zoom-meeting
//
// @Summary  Create a scheduled meeting
// @Tags     meetings
// @Accept   json
// @Produce  json
// @Param    body body     CreateMeetingRequest true "meeting"
// @Success  200  {object} model.Meeting
// @Failure  500  {object} ErrorResponse
// @Router   /api/create-zoom-meeting [post]
func (h *MeetingHandler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	var body CreateMeetingRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	req, err := body.toModel()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	meeting, err := h.meetingSvc.CreateMeeting(r.Context(), req)
	if err != nil {
		h.log.Warn("meeting relay failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, meeting)
}

// Signature handles POST /api/zoom-signature
//
// @Summary  Sign an SDK join request
// @Tags     meetings
// @Accept   json
// @Produce  json
// @Param    body body     service.SignatureRequest true "meeting number and role (0 attendee, 1 host)"
// @Success  200  {object} SignatureResponse
// @Failure  500  {object} ErrorResponse
// @Router   /api/zoom-signature [post]
func (h *MeetingHandler) Signature(w http.ResponseWriter, r *http.Request) {
	var req service.SignatureRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sig, err := h.meetingSvc.Signature(&req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, SignatureResponse{Signature: sig})
}

// toModel parses start_time as RFC 3339, or as a local wall time in the request's
// timezone when it carries no offset.
func (b *CreateMeetingRequest) toModel() (*model.MeetingRequest, error) {
	req := &model.MeetingRequest{
		Topic:    strings.TrimSpace(b.Topic),
		Duration: b.Duration,
		Timezone: b.Timezone,
	}
	if b.StartTime == "" {
		return req, nil // reported by validation
	}
	if t, err := time.Parse(time.RFC3339, b.StartTime); err == nil {
		req.StartTime = t
		return req, nil
	}

	loc := time.UTC
	if b.Timezone != "" {
		l, err := time.LoadLocation(b.Timezone)
		if err != nil {
			return nil, model.NewValidationError("timezone", "unknown timezone "+b.Timezone)
		}
		loc = l
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, b.StartTime, loc); err == nil {
			req.StartTime = t
			return req, nil
		}
	}
	return nil, model.NewValidationError("start_time", "must be an ISO-8601 date-time")
}
