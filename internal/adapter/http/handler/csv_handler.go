package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/iho/kakeibo/internal/adapter/http/dto"
	"github.com/iho/kakeibo/internal/domain"
	"github.com/iho/kakeibo/internal/usecase"
)

// maxUploadBytes bounds CSV uploads.
const maxUploadBytes = 10 << 20

// CSVService defines the behavior needed by CSVHandler.
type CSVService interface {
	Export(ctx context.Context, w io.Writer, filter usecase.ExportFilter) error
	ImportChecked(ctx context.Context, r io.Reader) (int, error)
}

// CSVHandler exports and imports transactions as CSV.
type CSVHandler struct {
	csvUC CSVService
}

// NewCSVHandler creates a new CSVHandler.
func NewCSVHandler(csvUC CSVService) *CSVHandler {
	return &CSVHandler{csvUC: csvUC}
}

// Export streams the owner's transactions, optionally restricted by the
// year and month query parameters.
func (h *CSVHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter := usecase.ExportFilter{
		Year:  parseIntQuery(r, "year", 0),
		Month: parseIntQuery(r, "month", 0),
	}
	if filter.Month != 0 {
		if _, err := domain.NewPeriod(filter.Year, filter.Month); err != nil {
			respondError(w, err, "invalid period")
			return
		}
	}

	// Buffer so a failure can still be reported as an error status.
	var buf bytes.Buffer
	if err := h.csvUC.Export(r.Context(), &buf, filter); err != nil {
		respondError(w, err, "failed to export transactions")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": exportFilename(filter),
	}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Import reads a CSV file from the multipart field "file" or, failing
// that, from the raw request body.
func (h *CSVHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var src io.Reader = r.Body
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			respondError(w, fmt.Errorf("%w: %w", domain.ErrMalformedInput, err), "missing file")
			return
		}
		defer file.Close()
		src = file
	}

	imported, err := h.csvUC.ImportChecked(r.Context(), src)
	if err != nil {
		respondError(w, err, "failed to import transactions")
		return
	}

	writeJSON(w, http.StatusOK, dto.ImportResponse{Imported: imported})
}

func exportFilename(filter usecase.ExportFilter) string {
	switch {
	case filter.Year != 0 && filter.Month != 0:
		return fmt.Sprintf("transactions-%04d-%02d.csv", filter.Year, filter.Month)
	case filter.Year != 0:
		return fmt.Sprintf("transactions-%04d.csv", filter.Year)
	default:
		return "transactions.csv"
	}
}
