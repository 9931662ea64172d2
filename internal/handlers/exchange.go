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

// ExchangeTokener defines only the methods needed by this handler.
type ExchangeTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// Exchanger defines the interface that the ledger service must implement.
type Exchanger interface {
	Exchange(ctx context.Context, userID uuid.UUID, fromCurrency, toCurrency string, amount decimal.Decimal, note string) (*services.ExchangeResult, error)
}

// ExchangeRequest represents the JSON body for currency exchange
// swagger:model ExchangeRequest
type ExchangeRequest struct {
	// Source currency
	// required: true
	// example: USD
	FromCurrency string `json:"from_currency"`

	// Target currency
	// required: true
	// example: EUR
	ToCurrency string `json:"to_currency"`

	// Amount in the source currency
	// required: true
	// example: 50.00
	Amount decimal.Decimal `json:"amount"`

	// Optional note
	// example: trip budget
	Note string `json:"note"`
}

// ExchangeResponse represents a successful exchange response
// swagger:model ExchangeResponse
type ExchangeResponse struct {
	// Success message
	// example: Exchange successful
	Message string `json:"message"`

	// Ledger transaction id
	TransactionID uuid.UUID `json:"transaction_id"`

	// Amount debited from the source wallet
	ExchangedAmount decimal.Decimal `json:"exchanged_amount"`

	// Amount credited to the target wallet
	ReceivedAmount decimal.Decimal `json:"received_amount"`

	// Rate applied to the conversion
	Rate decimal.Decimal `json:"rate"`

	// Balances of both wallets after the exchange
	NewBalance map[string]decimal.Decimal `json:"new_balance"`
}

// NewExchangeHandler returns an HTTP handler for converting funds between two
// of the authenticated user's wallets.
// @Summary Exchange currency
// @Description Convert funds between two of the authenticated user's wallets at the current rate.
// @Tags exchange
// @Accept json
// @Produce json
// @Param request body handlers.ExchangeRequest true "Exchange Request"
// @Success 200 {object} handlers.ExchangeResponse "Exchange successful"
// @Failure 400 {object} handlers.ErrorResponse "Invalid amount or currency pair"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Wallet or rate not found"
// @Failure 409 {object} handlers.ErrorResponse "Insufficient funds"
// @Router /exchange [post]
// @Security BearerAuth
func NewExchangeHandler(svc Exchanger, tokenGetter ExchangeTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, ok := claimsFromRequest(ctx, w, r, tokenGetter)
		if !ok {
			return
		}

		var req ExchangeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode exchange request", "error", err)
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
			return
		}

		res, err := svc.Exchange(ctx, claims.UserID, req.FromCurrency, req.ToCurrency, req.Amount, req.Note)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ExchangeResponse{
			Message:         "Exchange successful",
			TransactionID:   res.TransactionID,
			ExchangedAmount: res.SourceAmount,
			ReceivedAmount:  res.TargetAmount,
			Rate:            res.Rate,
			NewBalance: map[string]decimal.Decimal{
				req.FromCurrency: res.NewSourceBalance,
				req.ToCurrency:   res.NewTargetBalance,
			},
		})
	}
}
