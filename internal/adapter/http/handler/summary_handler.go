package handler

import (
	"context"
	"net/http"

	"github.com/iho/kakeibo/internal/adapter/http/dto"
	"github.com/iho/kakeibo/internal/domain"
)

// SummaryService defines the behavior needed by SummaryHandler.
type SummaryService interface {
	YearSummary(ctx context.Context, year int) (domain.YearSummary, error)
	MonthSummary(ctx context.Context, period domain.Period) (domain.MonthSummary, error)
}

// SummaryHandler serves yearly and monthly totals.
type SummaryHandler struct {
	summaryUC SummaryService
}

// NewSummaryHandler creates a new SummaryHandler.
func NewSummaryHandler(summaryUC SummaryService) *SummaryHandler {
	return &SummaryHandler{summaryUC: summaryUC}
}

// Year returns the totals of a calendar year.
func (h *SummaryHandler) Year(w http.ResponseWriter, r *http.Request) {
	year, err := intParam(r, "year")
	if err != nil {
		respondError(w, err, "invalid year")
		return
	}

	summary, err := h.summaryUC.YearSummary(r.Context(), year)
	if err != nil {
		respondError(w, err, "failed to summarize year")
		return
	}

	writeJSON(w, http.StatusOK, dto.YearSummaryResponse{Year: year, YearSummary: summary})
}

// Month returns the totals of a single month.
func (h *SummaryHandler) Month(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		respondError(w, err, "invalid period")
		return
	}

	summary, err := h.summaryUC.MonthSummary(r.Context(), period)
	if err != nil {
		respondError(w, err, "failed to summarize month")
		return
	}

	writeJSON(w, http.StatusOK, dto.MonthSummaryResponse{
		Year:         period.Year,
		Month:        period.Month,
		MonthSummary: summary,
	})
}
