package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/knassar/mc-wallet-ledger/internal/jwt"
	"github.com/knassar/mc-wallet-ledger/internal/logger"
	"github.com/knassar/mc-wallet-ledger/internal/services"
)

// AdminCreditTokener defines only the methods needed by this handler.
type AdminCreditTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// AdminCreditor defines the interface that the ledger service must implement.
type AdminCreditor interface {
	AdminCredit(ctx context.Context, target services.AdminCreditTarget, amount decimal.Decimal, note string) (*services.CreditResult, error)
}

// AdminCreditRequest represents the JSON body for crediting a wallet
// swagger:model AdminCreditRequest
type AdminCreditRequest struct {
	// Wallet to credit; mutually exclusive with user_id + currency
	WalletID *uuid.UUID `json:"wallet_id,omitempty"`

	// User whose wallet is credited, created if absent
	UserID uuid.UUID `json:"user_id,omitempty"`

	// Currency of the wallet to credit
	// example: USD
	Currency string `json:"currency,omitempty"`

	// Amount to credit
	// required: true
	// example: 500.00
	Amount decimal.Decimal `json:"amount"`

	// Optional note
	// example: promo credit
	Note string `json:"note"`
}

// AdminCreditResponse represents a successful credit response
// swagger:model AdminCreditResponse
type AdminCreditResponse struct {
	// Success message
	// example: Credit applied
	Message string `json:"message"`

	// Ledger transaction id
	TransactionID uuid.UUID `json:"transaction_id"`

	// Credited wallet id
	WalletID uuid.UUID `json:"wallet_id"`

	// Wallet balance after the credit
	NewBalance decimal.Decimal `json:"new_balance"`
}

// NewAdminCreditHandler returns an HTTP handler that mints funds into a
// wallet. Callers must hold the admin role.
// @Summary Credit a wallet
// @Description Credits a wallet without a matching debit. Target either an explicit wallet id, or a user and currency to create the wallet on demand.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body handlers.AdminCreditRequest true "Credit Request"
// @Success 200 {object} handlers.AdminCreditResponse "Credit applied"
// @Failure 400 {object} handlers.ErrorResponse "Invalid target or amount"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Admin role required"
// @Failure 404 {object} handlers.ErrorResponse "Wallet not found"
// @Router /admin/credit [post]
// @Security BearerAuth
func NewAdminCreditHandler(svc AdminCreditor, tokenGetter AdminCreditTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, ok := claimsFromRequest(ctx, w, r, tokenGetter)
		if !ok {
			return
		}
		if !claims.IsAdmin {
			writeJSON(w, http.StatusForbidden, ErrorResponse{Error: "admin role required"})
			return
		}

		var req AdminCreditRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode admin credit request", "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}

		res, err := svc.AdminCredit(ctx, services.AdminCreditTarget{
			WalletID: req.WalletID,
			UserID:   req.UserID,
			Currency: req.Currency,
		}, req.Amount, req.Note)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, AdminCreditResponse{
			Message:       "Credit applied",
			TransactionID: res.TransactionID,
			WalletID:      res.WalletID,
			NewBalance:    res.NewBalance,
		})
	}
}
