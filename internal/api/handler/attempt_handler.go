package handler

import (
	"ctf_arena/internal/api/middleware"
	"ctf_arena/internal/common"
	"ctf_arena/internal/domain/repository"
	"ctf_arena/internal/platform/config"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// AttemptHandler exposes the raw submission ledger to administrators.
type AttemptHandler struct {
	attemptRepo repository.AttemptRepository
}

func NewAttemptHandler(attemptRepo repository.AttemptRepository) *AttemptHandler {
	return &AttemptHandler{attemptRepo: attemptRepo}
}

func (h *AttemptHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.AdminOnly)
	r.Get("/", h.listRecent)
	r.Get("/team/{teamname}", h.listByTeam)
	r.Get("/challenge/{challengeName}", h.listByChallenge)
	r.Get("/user/{username}", h.listByUser)
}

func (h *AttemptHandler) listRecent(w http.ResponseWriter, r *http.Request) {
	limit := config.AppConfig.AttemptListLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= config.AppConfig.AttemptListLimit {
			limit = parsed
		}
	}

	attempts, err := h.attemptRepo.ListRecent(r.Context(), limit)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, attempts)
}

func (h *AttemptHandler) listByTeam(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.attemptRepo.ListByTeam(r.Context(), chi.URLParam(r, "teamname"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, attempts)
}

func (h *AttemptHandler) listByChallenge(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.attemptRepo.ListByChallenge(r.Context(), chi.URLParam(r, "challengeName"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, attempts)
}

func (h *AttemptHandler) listByUser(w http.ResponseWriter, r *http.Request) {
	attempts, err := h.attemptRepo.ListByUser(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, attempts)
}
