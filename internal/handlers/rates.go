package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/knassar/mc-wallet-ledger/internal/jwt"
	"github.com/knassar/mc-wallet-ledger/internal/models"
)

// RatesTokener defines only the methods needed by this handler.
type RatesTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// RatesGetter defines the interface that the rate service must implement.
type RatesGetter interface {
	GetRatesForBase(ctx context.Context, base string) ([]models.RateQuote, error)
}

// RatesResponse represents the rates available from one base currency
// swagger:model RatesResponse
type RatesResponse struct {
	// Base currency the rates are quoted from
	// example: USD
	Base string `json:"base"`

	// Rates keyed by quote currency
	// example: {"EUR": "0.92", "GBP": "0.79"}
	Rates map[string]decimal.Decimal `json:"rates"`
}

// NewRatesHandler returns an HTTP handler listing the latest known exchange
// rates from a base currency.
// @Summary Get exchange rates
// @Description Returns the latest known exchange rate from the base currency to every quoted currency.
// @Tags exchange
// @Produce json
// @Param base query string true "Base currency code" example(USD)
// @Success 200 {object} handlers.RatesResponse "Rates"
// @Failure 400 {object} handlers.ErrorResponse "Invalid base currency"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Router /exchange/rates [get]
// @Security BearerAuth
func NewRatesHandler(svc RatesGetter, tokenGetter RatesTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if _, ok := claimsFromRequest(ctx, w, r, tokenGetter); !ok {
			return
		}

		base := strings.ToUpper(r.URL.Query().Get("base"))
		if !models.ValidCurrencyCode(base) {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid base currency"})
			return
		}

		quotes, err := svc.GetRatesForBase(ctx, base)
		if err != nil {
			writeError(w, err)
			return
		}

		rates := make(map[string]decimal.Decimal, len(quotes))
		for _, q := range quotes {
			rates[q.QuoteCurrency] = q.Rate
		}

		writeJSON(w, http.StatusOK, RatesResponse{Base: base, Rates: rates})
	}
}
