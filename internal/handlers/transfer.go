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

// TransferTokener defines only the methods needed by this handler.
type TransferTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// Transferrer defines the interface that the ledger service must implement.
type Transferrer interface {
	Transfer(ctx context.Context, userID uuid.UUID, recipientEmail, currency string, amount decimal.Decimal, note string) (*services.TransferResult, error)
}

// TransferRequest represents the JSON body for transferring funds
// swagger:model TransferRequest
type TransferRequest struct {
	// Recipient email
	// required: true
	// example: jane@example.com
	Recipient string `json:"recipient"`

	// Currency
	// required: true
	// example: USD
	Currency string `json:"currency"`

	// Amount to transfer
	// required: true
	// example: 40.00
	Amount decimal.Decimal `json:"amount"`

	// Optional note
	// example: dinner
	Note string `json:"note"`
}

// TransferResponse represents a successful transfer response
// swagger:model TransferResponse
type TransferResponse struct {
	// Success message
	// example: Transfer successful
	Message string `json:"message"`

	// Ledger transaction id
	TransactionID uuid.UUID `json:"transaction_id"`

	// Sender's balance after the transfer
	NewBalance decimal.Decimal `json:"new_balance"`
}

// NewTransferHandler returns an HTTP handler for transferring funds to another user.
// @Summary Transfer funds
// @Description Move funds from the authenticated user's wallet to another user's wallet in the same currency.
// @Tags wallet
// @Accept json
// @Produce json
// @Param request body handlers.TransferRequest true "Transfer Request"
// @Success 200 {object} handlers.TransferResponse "Transfer successful"
// @Failure 400 {object} handlers.ErrorResponse "Invalid amount, currency or recipient"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Recipient or wallet not found"
// @Failure 409 {object} handlers.ErrorResponse "Insufficient funds"
// @Router /wallet/transfer [post]
// @Security BearerAuth
func NewTransferHandler(svc Transferrer, tokenGetter TransferTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, ok := claimsFromRequest(ctx, w, r, tokenGetter)
		if !ok {
			return
		}

		var req TransferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode transfer request", "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}

		res, err := svc.Transfer(ctx, claims.UserID, req.Recipient, req.Currency, req.Amount, req.Note)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, TransferResponse{
			Message:       "Transfer successful",
			TransactionID: res.TransactionID,
			NewBalance:    res.NewSourceBalance,
		})
	}
}
