// Package httpapi exposes the HTTP API layer of the service.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/storefront-intake/internal/auth"
	"github.com/fairyhunter13/storefront-intake/internal/intake"
	"github.com/fairyhunter13/storefront-intake/internal/ledger"
	"github.com/fairyhunter13/storefront-intake/internal/obs"
	"github.com/fairyhunter13/storefront-intake/internal/store"
)

// jsonError represents a JSON error payload.
type jsonError struct {
	Error     string   `json:"error"`
	Details   string   `json:"details,omitempty"`
	Fields    []string `json:"fields,omitempty"`
	Requested *int     `json:"requested,omitempty"`
	Available *int     `json:"available,omitempty"`
}

// WriteJSONError writes a JSON error payload with the given status code.
func WriteJSONError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, jsonError{Error: message, Details: details})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeDomainError maps intake, ledger, store and auth errors to a status
// code and a message meant to be shown to the end user as is.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve  *intake.ValidationError
		ise *ledger.InsufficientStockError
		upe *ledger.UnknownProductError
		iqe *ledger.InvalidQuantityError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, jsonError{Error: "validation_error", Details: ve.Error(), Fields: ve.Fields})
	case errors.As(err, &ise):
		writeJSON(w, http.StatusConflict, jsonError{
			Error:     "insufficient_stock",
			Details:   ise.Error(),
			Requested: &ise.Requested,
			Available: &ise.Available,
		})
	case errors.As(err, &upe):
		writeJSON(w, http.StatusNotFound, jsonError{Error: "unknown_product", Details: upe.Error()})
	case errors.As(err, &iqe):
		writeJSON(w, http.StatusBadRequest, jsonError{Error: "invalid_quantity", Details: iqe.Error()})
	case errors.Is(err, store.ErrOrderNotFound):
		WriteJSONError(w, http.StatusNotFound, "not_found", "order not found")
	case errors.Is(err, auth.ErrInvalidCredentials):
		WriteJSONError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials, try again")
	case errors.Is(err, store.ErrPersistence):
		obs.Logger.Error("persistence_error", "error", err, "request_id", RequestIDFromContext(r.Context()))
		WriteJSONError(w, http.StatusInternalServerError, "persistence_error", "the order could not be saved, nothing was charged against stock")
	default:
		obs.Logger.Error("internal_error", "error", err, "request_id", RequestIDFromContext(r.Context()))
		WriteJSONError(w, http.StatusInternalServerError, "internal_error", "")
	}
}
