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

// TopUpTokener defines only the methods needed by this handler.
type TopUpTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// TopUpper defines the interface that the ledger service must implement.
type TopUpper interface {
	TopUp(ctx context.Context, userID uuid.UUID, currency string, amount decimal.Decimal, note string) (*services.CreditResult, error)
}

// TopUpRequest represents the JSON body for topping up a wallet
// swagger:model TopUpRequest
type TopUpRequest struct {
	// Currency
	// required: true
	// example: USD
	Currency string `json:"currency"`

	// Amount to deposit
	// required: true
	// example: 100.00
	Amount decimal.Decimal `json:"amount"`

	// Optional note
	// example: card deposit
	Note string `json:"note"`
}

// TopUpResponse represents a successful top-up response
// swagger:model TopUpResponse
type TopUpResponse struct {
	// Success message
	// example: Account topped up successfully
	Message string `json:"message"`

	// Ledger transaction id
	TransactionID uuid.UUID `json:"transaction_id"`

	// Wallet balance after the deposit
	NewBalance decimal.Decimal `json:"new_balance"`
}

// NewTopUpHandler returns an HTTP handler for depositing funds into the
// authenticated user's wallet, creating the wallet if needed.
// @Summary Top up wallet
// @Description Deposit funds into the authenticated user's wallet in the given currency.
// @Tags wallet
// @Accept json
// @Produce json
// @Param request body handlers.TopUpRequest true "Top-Up Request"
// @Success 200 {object} handlers.TopUpResponse "Top-up successful"
// @Failure 400 {object} handlers.ErrorResponse "Invalid amount or currency"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Router /wallet/topup [post]
// @Security BearerAuth
func NewTopUpHandler(svc TopUpper, tokenGetter TopUpTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, ok := claimsFromRequest(ctx, w, r, tokenGetter)
		if !ok {
			return
		}

		var req TopUpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode top-up request", "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}

		res, err := svc.TopUp(ctx, claims.UserID, req.Currency, req.Amount, req.Note)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, TopUpResponse{
			Message:       "Account topped up successfully",
			TransactionID: res.TransactionID,
			NewBalance:    res.NewBalance,
		})
	}
}
