package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iho/kakeibo/internal/adapter/http/dto"
	"github.com/iho/kakeibo/internal/domain"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// respondError maps err to a status and writes it. Internal errors are not
// echoed to the client.
func respondError(w http.ResponseWriter, err error, message string) {
	status := mapDomainError(err)
	details := err.Error()
	if status == http.StatusInternalServerError {
		details = ""
	}
	writeError(w, status, message, details)
}

// mapDomainError maps domain error categories to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	// CSV row errors also wrap a field validation error; malformed input wins.
	case errors.Is(err, domain.ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPeriodLocked):
		return http.StatusLocked
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes the request body into dst. Failures wrap
// domain.ErrMalformedInput.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, domain.ErrMalformedInput) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrMalformedInput, err)
	}
	return nil
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// intParam parses a required integer URL or query parameter.
func intParam(r *http.Request, key string) (int, error) {
	val := chi.URLParam(r, key)
	if val == "" {
		val = r.URL.Query().Get(key)
	}
	if val == "" {
		return 0, fmt.Errorf("%w: %s is required", domain.ErrValidation, key)
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrMalformedInput, key)
	}
	return i, nil
}

// periodParam reads the year and month parameters and validates the month.
func periodParam(r *http.Request) (domain.Period, error) {
	year, err := intParam(r, "year")
	if err != nil {
		return domain.Period{}, err
	}
	month, err := intParam(r, "month")
	if err != nil {
		return domain.Period{}, err
	}
	return domain.NewPeriod(year, month)
}
