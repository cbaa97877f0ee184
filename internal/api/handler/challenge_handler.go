package handler

import (
	"ctf_arena/internal/api/middleware"
	"ctf_arena/internal/app/service"
	"ctf_arena/internal/common"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type ChallengeHandler struct {
	challengeService *service.ChallengeService
	broadcast        *service.BroadcastService
}

func NewChallengeHandler(cs *service.ChallengeService, bs *service.BroadcastService) *ChallengeHandler {
	return &ChallengeHandler{challengeService: cs, broadcast: bs}
}

// RegisterRoutes assumes the caller already applied the Authenticator
// middleware on the router.
func (h *ChallengeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listChallenges)

	r.Group(func(adminRouter chi.Router) {
		adminRouter.Use(middleware.AdminOnly)
		adminRouter.Post("/", h.createChallenge)
		adminRouter.Put("/{challengeName}", h.updateChallenge)
		adminRouter.Delete("/{challengeName}", h.removeChallenge)
		adminRouter.Patch("/{challengeName}/open", h.setOpen)
		adminRouter.Patch("/{challengeName}/broken", h.setBroken)
		adminRouter.Post("/open-all", h.openAll)
		adminRouter.Post("/close-all", h.closeAll)
	})
}

func (h *ChallengeHandler) listChallenges(w http.ResponseWriter, r *http.Request) {
	challenges, err := h.challengeService.List(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, challenges)
}

func (h *ChallengeHandler) createChallenge(w http.ResponseWriter, r *http.Request) {
	var req service.CreateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	challenge, err := h.challengeService.Create(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, challenge)
}

func (h *ChallengeHandler) updateChallenge(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "challengeName")

	var req service.UpdateChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	challenge, err := h.challengeService.Update(r.Context(), name, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, challenge)
}

func (h *ChallengeHandler) removeChallenge(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "challengeName")
	if err := h.challengeService.Remove(r.Context(), name); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"removed": name})
}

type setStateRequest struct {
	Value bool `json:"value"`
}

func (h *ChallengeHandler) setOpen(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "challengeName")

	var req setStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	if err := h.challengeService.SetOpen(r.Context(), name, req.Value); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	h.broadcastState(r, name)
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"name": name, "is_open": req.Value})
}

func (h *ChallengeHandler) setBroken(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "challengeName")

	var req setStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	if err := h.challengeService.SetBroken(r.Context(), name, req.Value); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	h.broadcastState(r, name)
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"name": name, "is_broken": req.Value})
}

func (h *ChallengeHandler) openAll(w http.ResponseWriter, r *http.Request) {
	if err := h.challengeService.OpenAll(r.Context()); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	h.broadcastAll(r)
	common.RespondWithJSON(w, http.StatusOK, map[string]bool{"open": true})
}

func (h *ChallengeHandler) closeAll(w http.ResponseWriter, r *http.Request) {
	if err := h.challengeService.CloseAll(r.Context()); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	h.broadcastAll(r)
	common.RespondWithJSON(w, http.StatusOK, map[string]bool{"open": false})
}

func (h *ChallengeHandler) broadcastState(r *http.Request, name string) {
	challenge, err := h.challengeService.Get(r.Context(), name)
	if err != nil {
		log.Printf("failed to load challenge %s for broadcast: %v", name, err)
		return
	}
	if err := h.broadcast.ChallengeStateChanged(r.Context(), challenge.Name, challenge.IsOpen, challenge.IsBroken); err != nil {
		log.Printf("broadcast of challenge state %s failed: %v", name, err)
	}
}

func (h *ChallengeHandler) broadcastAll(r *http.Request) {
	challenges, err := h.challengeService.List(r.Context())
	if err != nil {
		log.Printf("failed to list challenges for broadcast: %v", err)
		return
	}
	for _, c := range challenges {
		if err := h.broadcast.ChallengeStateChanged(r.Context(), c.Name, c.IsOpen, c.IsBroken); err != nil {
			log.Printf("broadcast of challenge state %s failed: %v", c.Name, err)
		}
	}
}
