package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"spendtrack/internal/core"
	"spendtrack/internal/store"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

var validationErrors = []error{
	core.ErrInvalidDate,
	core.ErrInvalidAmount,
	core.ErrEmptyDescription,
	core.ErrMissingCategory,
	core.ErrUnknownCurrency,
	core.ErrUnknownPaymentStatus,
	core.ErrNegativeItemCount,
	core.ErrEmptyName,
}

func isValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// writeMutationError maps store errors onto statuses: invalid input is 422,
// a missing id is 404, anything else is a failed remote write.
func writeMutationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case isValidationError(err):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "entity not found")
	default:
		slog.ErrorContext(r.Context(), "Mutation failed", "error", err, "method", r.Method, "url", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "persistence failure, change not applied")
	}
}
