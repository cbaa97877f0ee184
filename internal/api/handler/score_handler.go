package handler

import (
	"ctf_arena/internal/api/middleware"
	"ctf_arena/internal/app/service"
	"ctf_arena/internal/common"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ScoreHandler is the read boundary for scores: it recomputes on every
// request rather than pushing computed values.
type ScoreHandler struct {
	scoreService *service.ScoreService
}

func NewScoreHandler(scoreService *service.ScoreService) *ScoreHandler {
	return &ScoreHandler{scoreService: scoreService}
}

func (h *ScoreHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/game", h.gameScore)
	r.Get("/me", h.playerScore)
	r.Get("/team/{teamname}", h.teamScore)
	r.Get("/challenge/{challengeName}", h.challengeScore)
	r.Get("/challenge/{challengeName}/breakthrough", h.breakthrough)
}

func (h *ScoreHandler) gameScore(w http.ResponseWriter, r *http.Request) {
	game, err := h.scoreService.GameScore(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, game)
}

func (h *ScoreHandler) playerScore(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	score, err := h.scoreService.PlayerScore(r.Context(), identity.Username, identity.Teamname)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, score)
}

func (h *ScoreHandler) teamScore(w http.ResponseWriter, r *http.Request) {
	score, err := h.scoreService.TeamScore(r.Context(), chi.URLParam(r, "teamname"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, score)
}

func (h *ScoreHandler) challengeScore(w http.ResponseWriter, r *http.Request) {
	score, err := h.scoreService.ChallengeScore(r.Context(), chi.URLParam(r, "challengeName"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, score)
}

func (h *ScoreHandler) breakthrough(w http.ResponseWriter, r *http.Request) {
	achievement, err := h.scoreService.Breakthrough(r.Context(), chi.URLParam(r, "challengeName"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, achievement)
}
