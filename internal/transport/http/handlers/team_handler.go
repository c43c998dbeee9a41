package handlers

import (
	"errors"
	"net/http"

	"github.com/vedran77/pokehire/internal/logging"
	"github.com/vedran77/pokehire/internal/service"
	"github.com/vedran77/pokehire/internal/transport/http/middleware"
	"github.com/vedran77/pokehire/pkg/validator"
)

type TeamHandler struct {
	teamService *service.TeamService
	log         logging.Logger
}

func NewTeamHandler(teamService *service.TeamService, log logging.Logger) *TeamHandler {
	return &TeamHandler{teamService: teamService, log: log}
}

type saveTeamsInput struct {
	Teams *[]service.TeamInput `json:"teams"`
}

func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	teams, err := h.teamService.ListForUser(r.Context(), userID)
	if err != nil {
		writeInternal(w, r, h.log, "list teams", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"teams": teams})
}

// Save replaces all of the caller's teams. An explicit empty list clears
// them; a missing "teams" field is rejected.
func (h *TeamHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input saveTeamsInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if input.Teams == nil {
		errs := make(validator.ValidationErrors)
		errs.Add("teams", "Teams are required")
		writeValidationErrors(w, errs)
		return
	}

	if _, err := h.teamService.ReplaceAll(r.Context(), userID, *input.Teams); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			writeValidationErrors(w, verrs)
		} else {
			writeInternal(w, r, h.log, "save teams", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
