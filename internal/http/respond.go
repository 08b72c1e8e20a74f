package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fairsplit/fairsplit/internal/apperr"
	"github.com/fairsplit/fairsplit/internal/money"
)

// writeJSON encodes v with the given status. Encoding failures are logged;
// the status line has already gone out by then.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// writeError maps the service error taxonomy onto HTTP statuses. Unclassified
// errors become 500 with a generic body so internals never leak.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case apperr.IsValidation(err):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotMember):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
	default:
		slog.Error("internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

// decodeJSON parses a request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Validationf("invalid request body: %s", err.Error())
	}
	return nil
}

// parseAmount converts a boundary decimal string to cents, reporting
// failures as validation errors.
func parseAmount(field, raw string) (money.Cents, error) {
	amount, err := money.ParseDecimal(raw)
	if err != nil {
		return 0, apperr.Validationf("%s: %q is not a positive decimal amount", field, raw)
	}
	return amount, nil
}
