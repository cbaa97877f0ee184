package handler

import (
	"ctf_arena/internal/api/middleware"
	"ctf_arena/internal/common"
	"ctf_arena/internal/domain/repository"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type AchievementHandler struct {
	achievementRepo repository.AchievementRepository
}

func NewAchievementHandler(achievementRepo repository.AchievementRepository) *AchievementHandler {
	return &AchievementHandler{achievementRepo: achievementRepo}
}

func (h *AchievementHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.list)
	r.Get("/team/{teamname}", h.listByTeam)
	r.Get("/challenge/{challengeName}", h.listByChallenge)

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Delete("/{teamname}/{challengeName}", h.revoke)
		adminRouter.Delete("/team/{teamname}", h.revokeAllForTeam)
	})
}

func (h *AchievementHandler) list(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.achievementRepo.List(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, achievements)
}

func (h *AchievementHandler) listByTeam(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.achievementRepo.ListByTeam(r.Context(), chi.URLParam(r, "teamname"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, achievements)
}

func (h *AchievementHandler) listByChallenge(w http.ResponseWriter, r *http.Request) {
	achievements, err := h.achievementRepo.ListByChallenge(r.Context(), chi.URLParam(r, "challengeName"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, achievements)
}

// revoke undoes a mistaken grant. The attempt ledger keeps its record.
func (h *AchievementHandler) revoke(w http.ResponseWriter, r *http.Request) {
	removed, err := h.achievementRepo.Revoke(r.Context(), chi.URLParam(r, "teamname"), chi.URLParam(r, "challengeName"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, removed)
}

func (h *AchievementHandler) revokeAllForTeam(w http.ResponseWriter, r *http.Request) {
	teamname := chi.URLParam(r, "teamname")
	if err := h.achievementRepo.RevokeAllForTeam(r.Context(), teamname); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"revoked_team": teamname})
}
