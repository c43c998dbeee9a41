package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/pokehire/internal/domain"
	"github.com/vedran77/pokehire/internal/logging"
	"github.com/vedran77/pokehire/internal/service"
	"github.com/vedran77/pokehire/internal/transport/http/middleware"
	"github.com/vedran77/pokehire/pkg/validator"
)

type ContractHandler struct {
	contractService *service.ContractService
	log             logging.Logger
}

func NewContractHandler(contractService *service.ContractService, log logging.Logger) *ContractHandler {
	return &ContractHandler{contractService: contractService, log: log}
}

type contractActionInput struct {
	ContractID string `json:"contractId"`
}

type contractResponse struct {
	Contract *domain.Contract `json:"contract"`
}

func (h *ContractHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.CreateContractInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if errs := validator.ValidateContract(input.ContractorID, input.Title, input.Amount); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	c, err := h.contractService.Create(r.Context(), userID, input)
	if err != nil {
		h.writeContractError(w, r, "create contract", err)
		return
	}

	writeJSON(w, http.StatusCreated, contractResponse{Contract: c})
}

func (h *ContractHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	contracts, err := h.contractService.ListForUser(r.Context(), userID)
	if err != nil {
		writeInternal(w, r, h.log, "list contracts", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"contracts": contracts})
}

func (h *ContractHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, "accept contract", h.contractService.Accept)
}

func (h *ContractHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, "reject contract", h.contractService.Reject)
}

func (h *ContractHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.action(w, r, "complete contract", h.contractService.Complete)
}

type contractAction func(ctx context.Context, userID, contractID uuid.UUID) (*domain.Contract, error)

func (h *ContractHandler) action(w http.ResponseWriter, r *http.Request, op string, fn contractAction) {
	userID := middleware.GetUserID(r.Context())

	var input contractActionInput
	if err := decodeJSON(w, r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	contractID, err := uuid.Parse(input.ContractID)
	if err != nil {
		errs := make(validator.ValidationErrors)
		errs.Add("contractId", "Contract ID must be a valid UUID")
		writeValidationErrors(w, errs)
		return
	}

	c, err := fn(r.Context(), userID, contractID)
	if err != nil {
		h.writeContractError(w, r, op, err)
		return
	}

	writeJSON(w, http.StatusOK, contractResponse{Contract: c})
}

func (h *ContractHandler) writeContractError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrContractNotFound):
		writeError(w, http.StatusNotFound, "CONTRACT_NOT_FOUND", "Contract not found")
	case errors.Is(err, service.ErrNotContractor):
		writeError(w, http.StatusForbidden, "FORBIDDEN", "Only the contractor can perform this action")
	case errors.Is(err, service.ErrInvalidContractState):
		writeError(w, http.StatusBadRequest, "INVALID_STATE", "Contract status does not allow this action")
	case errors.Is(err, service.ErrInsufficientFunds):
		writeError(w, http.StatusBadRequest, "INSUFFICIENT_FUNDS", "Client has insufficient balance")
	case errors.Is(err, service.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "PROFILE_NOT_FOUND", "Contract party has no profile")
	case errors.Is(err, service.ErrContractConflict):
		writeError(w, http.StatusConflict, "CONFLICT", "Contract was modified concurrently, retry")
	case errors.Is(err, service.ErrInvalidContractor):
		writeError(w, http.StatusBadRequest, "INVALID_CONTRACTOR", "Contractor not found")
	case errors.Is(err, service.ErrSelfContract):
		writeError(w, http.StatusBadRequest, "INVALID_CONTRACTOR", "Cannot create a contract with yourself")
	default:
		writeInternal(w, r, h.log, op, err)
	}
}
