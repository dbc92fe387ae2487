package handler

import (
	"context"
	"net/http"

	"github.com/iho/kakeibo/internal/adapter/http/dto"
	"github.com/iho/kakeibo/internal/domain"
)

// LockService defines the behavior needed by LockHandler.
type LockService interface {
	IsLocked(ctx context.Context, period domain.Period) (bool, error)
	SetLock(ctx context.Context, period domain.Period, locked bool) (*domain.MonthlyLock, error)
}

// LockHandler reads and toggles month locks.
type LockHandler struct {
	lockUC LockService
}

// NewLockHandler creates a new LockHandler.
func NewLockHandler(lockUC LockService) *LockHandler {
	return &LockHandler{lockUC: lockUC}
}

// Get reports whether a month is locked. Months never toggled are unlocked.
func (h *LockHandler) Get(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		respondError(w, err, "invalid period")
		return
	}

	locked, err := h.lockUC.IsLocked(r.Context(), period)
	if err != nil {
		respondError(w, err, "failed to read month lock")
		return
	}

	writeJSON(w, http.StatusOK, dto.MonthLockResponse{
		Year:     period.Year,
		Month:    period.Month,
		IsLocked: locked,
	})
}

// Set locks or unlocks a month.
func (h *LockHandler) Set(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		respondError(w, err, "invalid period")
		return
	}

	var req dto.MonthLockRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err, "invalid request body")
		return
	}

	lock, err := h.lockUC.SetLock(r.Context(), period, req.IsLocked)
	if err != nil {
		respondError(w, err, "failed to set month lock")
		return
	}

	writeJSON(w, http.StatusOK, dto.MonthLockResponse{
		Year:     lock.Year,
		Month:    lock.Month,
		IsLocked: lock.IsLocked,
	})
}
