package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/knassar/mc-wallet-ledger/internal/jwt"
)

// BalanceTokener defines only the methods needed by this handler.
type BalanceTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// BalanceGetter defines the interface that the balance service must implement.
type BalanceGetter interface {
	GetBalances(ctx context.Context, userID uuid.UUID) (map[string]decimal.Decimal, error)
}

// BalanceResponse represents the user's balances per currency
// swagger:model BalanceResponse
type BalanceResponse struct {
	// Balances keyed by currency code
	// example: {"USD": "120.50", "EUR": "0.00"}
	Balance map[string]decimal.Decimal `json:"balance"`
}

// NewBalanceHandler returns an HTTP handler that reports the authenticated
// user's balance across all active wallets.
// @Summary Get balances
// @Description Returns the authenticated user's balance in every currency they hold.
// @Tags wallet
// @Produce json
// @Success 200 {object} handlers.BalanceResponse "Balances"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Router /balance [get]
// @Security BearerAuth
func NewBalanceHandler(svc BalanceGetter, tokenGetter BalanceTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, ok := claimsFromRequest(ctx, w, r, tokenGetter)
		if !ok {
			return
		}

		balances, err := svc.GetBalances(ctx, claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, BalanceResponse{Balance: balances})
	}
}
