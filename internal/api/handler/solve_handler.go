package handler

import (
	"ctf_arena/internal/api/middleware"
	"ctf_arena/internal/app/service"
	"ctf_arena/internal/common"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

type SolveHandler struct {
	solveService *service.SolveService
}

func NewSolveHandler(ss *service.SolveService) *SolveHandler {
	return &SolveHandler{solveService: ss}
}

// RegisterRoutes assumes the caller already applied the Authenticator
// middleware on the router.
func (h *SolveHandler) RegisterRoutes(r chi.Router) {
	r.Post("/{challengeName}/submit", h.submitFlag)
}

type submitFlagRequest struct {
	Flag string `json:"flag"`
}

func (h *SolveHandler) submitFlag(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req submitFlagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.solveService.Submit(r.Context(), identity, chi.URLParam(r, "challengeName"), req.Flag)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	// Every terminal outcome is a structured result, not an HTTP error:
	// the submitter can tell a wrong flag from a cooldown or a closed
	// challenge.
	common.RespondWithJSON(w, http.StatusOK, result)
}
