package handlers

import (
	"net/http"

	"github.com/vedran77/pokehire/internal/logging"
	"github.com/vedran77/pokehire/internal/service"
)

type UserHandler struct {
	profileService *service.ProfileService
	log            logging.Logger
}

func NewUserHandler(profileService *service.ProfileService, log logging.Logger) *UserHandler {
	return &UserHandler{profileService: profileService, log: log}
}

func (h *UserHandler) ListContractors(w http.ResponseWriter, r *http.Request) {
	contractors, err := h.profileService.ListContractors(r.Context())
	if err != nil {
		writeInternal(w, r, h.log, "list contractors", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"contractors": contractors})
}
