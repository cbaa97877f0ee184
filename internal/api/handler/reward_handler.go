package handler

import (
	"ctf_arena/internal/api/middleware"
	"ctf_arena/internal/common"
	"ctf_arena/internal/domain/repository"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type RewardHandler struct {
	rewardRepo repository.RewardRepository
}

func NewRewardHandler(rewardRepo repository.RewardRepository) *RewardHandler {
	return &RewardHandler{rewardRepo: rewardRepo}
}

func (h *RewardHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/team/{teamname}", h.listByTeam)

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Post("/", h.grant)
	})
}

type grantRewardRequest struct {
	Teamname string `json:"teamname"`
	Label    string `json:"label"`
	Points   int    `json:"points"`
}

func (h *RewardHandler) grant(w http.ResponseWriter, r *http.Request) {
	var req grantRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if req.Teamname == "" || req.Points == 0 {
		common.RespondWithError(w, http.StatusBadRequest, "teamname and points are required")
		return
	}

	reward, err := h.rewardRepo.Grant(r.Context(), req.Teamname, req.Label, req.Points)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, reward)
}

func (h *RewardHandler) listByTeam(w http.ResponseWriter, r *http.Request) {
	rewards, err := h.rewardRepo.ListByTeam(r.Context(), chi.URLParam(r, "teamname"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, rewards)
}
