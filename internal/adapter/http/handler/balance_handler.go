package handler

import (
	"context"
	"net/http"

	"github.com/iho/kakeibo/internal/adapter/http/dto"
	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/usecase"
)

// BalanceService defines the behavior needed by BalanceHandler.
type BalanceService interface {
	ListBalances(ctx context.Context, period domain.Period) ([]*domain.MonthlyBalance, error)
	UpsertBalance(ctx context.Context, period domain.Period, input usecase.BalanceInput) (*domain.MonthlyBalance, error)
	SaveAll(ctx context.Context, period domain.Period, inputs []usecase.BalanceInput) ([]*domain.MonthlyBalance, error)
}

// BalanceHandler handles opening balance requests.
type BalanceHandler struct {
	balanceUC BalanceService
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC}
}

// List lists a month's opening balances.
func (h *BalanceHandler) List(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		respondError(w, err, "invalid period")
		return
	}

	balances, err := h.balanceUC.ListBalances(r.Context(), period)
	if err != nil {
		respondError(w, err, "failed to list balances")
		return
	}

	writeJSON(w, http.StatusOK, dto.MonthlyBalancesFromDomain(balances))
}

// Upsert sets the opening balance of a single account.
func (h *BalanceHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		respondError(w, err, "invalid period")
		return
	}

	var req dto.MonthlyBalanceRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err, "invalid request body")
		return
	}

	balance, err := h.balanceUC.UpsertBalance(r.Context(), period, req.ToUseCaseInput())
	if err != nil {
		respondError(w, err, "failed to save balance")
		return
	}

	writeJSON(w, http.StatusOK, dto.MonthlyBalanceFromDomain(balance))
}

// SaveAll sets several opening balances atomically.
func (h *BalanceHandler) SaveAll(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		respondError(w, err, "invalid period")
		return
	}

	var req dto.SaveBalancesRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err, "invalid request body")
		return
	}

	balances, err := h.balanceUC.SaveAll(r.Context(), period, req.ToUseCaseInput())
	if err != nil {
		respondError(w, err, "failed to save balances")
		return
	}

	writeJSON(w, http.StatusOK, dto.MonthlyBalancesFromDomain(balances))
}
