package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/knassar/mc-wallet-ledger/internal/apperrors"
)

// ErrorResponse is the common error payload.
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	// example: insufficient funds
	Error string `json:"error"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the core's closed error kinds to HTTP status codes. The
// cause of a persistence failure stays in the logs; the client sees an
// opaque message.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	switch appErr.Kind {
	case apperrors.KindValidation:
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: appErr.Message})
	case apperrors.KindNotFound, apperrors.KindRateUnavailable:
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: appErr.Message})
	case apperrors.KindInsufficientFunds:
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: appErr.Message})
	case apperrors.KindContention:
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "operation contended, retry"})
	default:
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}
