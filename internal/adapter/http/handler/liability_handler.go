package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/kakeibo/internal/adapter/http/dto"
	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/usecase"
)

// LiabilityService defines the behavior needed by LiabilityHandler.
type LiabilityService interface {
	CreateLiability(ctx context.Context, input usecase.CreateLiabilityInput) (*domain.Liability, error)
	ListLiabilities(ctx context.Context) ([]*domain.Liability, error)
	UpdateLiability(ctx context.Context, id string, patch domain.LiabilityPatch) (*domain.Liability, error)
	DeleteLiability(ctx context.Context, id string) error
}

// LiabilityHandler handles liability-related HTTP requests.
type LiabilityHandler struct {
	liabilityUC LiabilityService
}

// NewLiabilityHandler creates a new LiabilityHandler.
func NewLiabilityHandler(liabilityUC LiabilityService) *LiabilityHandler {
	return &LiabilityHandler{liabilityUC: liabilityUC}
}

// List lists liabilities.
func (h *LiabilityHandler) List(w http.ResponseWriter, r *http.Request) {
	liabilities, err := h.liabilityUC.ListLiabilities(r.Context())
	if err != nil {
		respondError(w, err, "failed to list liabilities")
		return
	}

	writeJSON(w, http.StatusOK, dto.LiabilitiesFromDomain(liabilities))
}

// Create creates a new liability.
func (h *LiabilityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLiabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err, "invalid request body")
		return
	}

	liability, err := h.liabilityUC.CreateLiability(r.Context(), req.ToUseCaseInput())
	if err != nil {
		respondError(w, err, "failed to create liability")
		return
	}

	writeJSON(w, http.StatusCreated, dto.LiabilityFromDomain(liability))
}

// Update applies a partial update to a liability.
func (h *LiabilityHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateLiabilityRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err, "invalid request body")
		return
	}
	patch, err := req.ToPatch()
	if err != nil {
		respondError(w, err, "invalid request body")
		return
	}

	liability, err := h.liabilityUC.UpdateLiability(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		respondError(w, err, "failed to update liability")
		return
	}

	writeJSON(w, http.StatusOK, dto.LiabilityFromDomain(liability))
}

// Delete removes a liability.
func (h *LiabilityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.liabilityUC.DeleteLiability(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err, "failed to delete liability")
		return
	}

	writeJSON(w, http.StatusOK, dto.StatusResponse{Status: "ok"})
}
