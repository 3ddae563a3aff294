package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"studyhub/internal/game"
	"studyhub/internal/service"
	"studyhub/internal/transport/rest/middleware"
)

// GameHandler handles mini-game endpoints
type GameHandler struct {
	gameSvc *service.GameService
	log     *zap.Logger
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameSvc *service.GameService, log *zap.Logger) *GameHandler {
	return &GameHandler{gameSvc: gameSvc, log: log}
}

// FlipRequest turns one card.
type FlipRequest struct {
	Card *int `json:"card"`
}

// FlipResponse is the board after a flip.
type FlipResponse struct {
	Game   *game.View      `json:"game"`
	Result game.FlipResult `json:"result"`
}

// ChooseRequest picks one of the current scene's choices.
type ChooseRequest struct {
	Choice *int `json:"choice"`
}

// SubmitRequest maps question index to the selected option text.
type SubmitRequest struct {
	Answers map[int]string `json:"answers"`
}

// GameErrorResponse carries the game state alongside a failure, so a game left idle
// by a failed generation can be retried.
type GameErrorResponse struct {
	ErrorResponse
	Game *game.View `json:"game,omitempty"`
}

// Start handles POST /v1/games/{kind}
//
// @Summary  Start a mini-game
// @Tags     games
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    kind path     string                  true "matching, rpg or quiz"
// @Param    body body     service.StartGameInput  true "topic"
// @Success  201  {object} game.View
// @Failure  502  {object} GameErrorResponse
// @Router   /games/{kind} [post]
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	kind, err := game.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	var in service.StartGameInput
	if err := decodeJSON(r, &in); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	view, err := h.gameSvc.Start(r.Context(), middleware.GetPrincipal(r.Context()), kind, &in)
	if err != nil {
		h.writeGameError(w, view, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// Reload handles POST /v1/games/{id}/reload
//
// @Summary  Retry content generation for an idle game
// @Tags     games
// @Produce  json
// @Security BearerAuth
// @Param    id  path     string true "game id"
// @Success  200 {object} game.View
// @Failure  409 {object} ErrorResponse
// @Router   /games/{id}/reload [post]
func (h *GameHandler) Reload(w http.ResponseWriter, r *http.Request) {
	view, err := h.gameSvc.Reload(r.Context(), middleware.GetPrincipal(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		h.writeGameError(w, view, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Get handles GET /v1/games/{id}
//
// @Summary  Current state of a game
// @Tags     games
// @Produce  json
// @Security BearerAuth
// @Param    id  path     string true "game id"
// @Success  200 {object} game.View
// @Failure  404 {object} ErrorResponse
// @Router   /games/{id} [get]
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.gameSvc.Get(r.Context(), middleware.GetPrincipal(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Flip handles POST /v1/games/matching/{id}/flip
//
// @Summary  Flip a card
// @Tags     games
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path     string      true "game id"
// @Param    body body     FlipRequest true "card id"
// @Success  200  {object} FlipResponse
// @Failure  409  {object} ErrorResponse
// @Router   /games/matching/{id}/flip [post]
func (h *GameHandler) Flip(w http.ResponseWriter, r *http.Request) {
	var req FlipRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if req.Card == nil {
		writeError(w, http.StatusBadRequest, "card is required")
		return
	}

	view, res, err := h.gameSvc.Flip(r.Context(), middleware.GetPrincipal(r.Context()), mux.Vars(r)["id"], *req.Card)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, FlipResponse{Game: view, Result: res})
}

// Choose handles POST /v1/games/rpg/{id}/choose
//
// @Summary  Take a story branch
// @Tags     games
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path     string        true "game id"
// @Param    body body     ChooseRequest true "choice index"
// @Success  200  {object} game.View
// @Failure  502  {object} GameErrorResponse
// @Router   /games/rpg/{id}/choose [post]
func (h *GameHandler) Choose(w http.ResponseWriter, r *http.Request) {
	var req ChooseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	if req.Choice == nil {
		writeError(w, http.StatusBadRequest, "choice is required")
		return
	}

	view, err := h.gameSvc.Choose(r.Context(), middleware.GetPrincipal(r.Context()), mux.Vars(r)["id"], *req.Choice)
	if err != nil {
		h.writeGameError(w, view, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Finish handles POST /v1/games/rpg/{id}/finish
//
// @Summary  End an adventure
// @Tags     games
// @Produce  json
// @Security BearerAuth
// @Param    id  path     string true "game id"
// @Success  200 {object} game.View
// @Router   /games/rpg/{id}/finish [post]
func (h *GameHandler) Finish(w http.ResponseWriter, r *http.Request) {
	view, err := h.gameSvc.Finish(r.Context(), middleware.GetPrincipal(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Submit handles POST /v1/games/quiz/{id}/submit
//
// @Summary  Submit quiz answers
// @Tags     games
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id   path     string        true "game id"
// @Param    body body     SubmitRequest true "answers by question index"
// @Success  200  {object} game.View
// @Router   /games/quiz/{id}/submit [post]
func (h *GameHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, h.log, err)
		return
	}

	view, err := h.gameSvc.Submit(r.Context(), middleware.GetPrincipal(r.Context()), mux.Vars(r)["id"], req.Answers)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Leaderboard handles GET /v1/games/leaderboard/{kind}
//
// @Summary  Best scores for a game kind
// @Tags     games
// @Produce  json
// @Param    kind  path    string true  "matching, rpg or quiz"
// @Param    limit query   int    false "entries (default 10)"
// @Success  200   {object} service.Standings
// @Router   /games/leaderboard/{kind} [get]
func (h *GameHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	kind, err := game.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	standings, err := h.gameSvc.Leaderboard(r.Context(), middleware.GetPrincipal(r.Context()), kind, limit)
	if err != nil {
		writeServiceError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}

func (h *GameHandler) writeGameError(w http.ResponseWriter, view *game.View, err error) {
	if view == nil {
		writeServiceError(w, h.log, err)
		return
	}
	status, body := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Warn("game request failed", zap.String("game", view.ID), zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, GameErrorResponse{ErrorResponse: body, Game: view})
}
