package handler

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"studyhub/internal/model"
	"studyhub/internal/service"
	"studyhub/internal/transport/rest/middleware"
)

// TutorHandler serves the tutor directory and the matching advisor
type TutorHandler struct {
	profileSvc  *service.ProfileService
	matchingSvc *service.MatchingService
	log         *zap.Logger
}

// NewTutorHandler creates a new tutor handler
func NewTutorHandler(profileSvc *service.ProfileService, matchingSvc *service.MatchingService, log *zap.Logger) *TutorHandler {
	return &TutorHandler{
		profileSvc:  profileSvc,
		matchingSvc: matchingSvc,
		log:         log,
	}
}

// MatchRequest optionally narrows matching to one subject.
type MatchRequest struct {
	Subject string `json:"subject,omitempty"`
}

// Search handles GET /v1/tutors
//
// @Summary  Search tutors
// @Tags     tutors
// @Produce  json
// @Param    subject   query    string false "subject taught"
// @Param    day       query    string false "day available"
// @Param    minRating query    number false "minimum rating"
// @Param    sort      query    string false "rating or name"
// @Success  200       {array}  model.TutorProfile
// @Router   /tutors [get]
func (h *TutorHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := service.TutorFilter{
		Subject: q.Get("subject"),
		Day:     q.Get("day"),
		SortBy:  q.Get("sort"),
	}
	if v := q.Get("minRating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeServiceError(w, h.log, model.NewValidationError("minRating", "must be a number"))
			return
		}
		f.MinRating = rating
	}
	if f.SortBy != "" && f.SortBy != "rating" && f.SortBy != "name" {
		writeServiceError(w, h.log, model.NewValidationError("sort", "must be one of: rating name"))
		return
	}

	tutors, err := h.profileSvc.SearchTutors(r.Context(), f)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, tutors)
}

// Match handles POST /v1/match
//
// @Summary  Ask the advisor for the best tutor
// @Tags     tutors
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    body body     MatchRequest false "optional subject"
// @Success  200  {object} service.Match
// @Failure  404  {object} ErrorResponse "no suitable tutor, try again"
// @Router   /match [post]
func (h *TutorHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeServiceError(w, h.log, err)
			return
		}
	}

	match, err := h.matchingSvc.MatchForUser(r.Context(), middleware.GetPrincipal(r.Context()), req.Subject)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}
