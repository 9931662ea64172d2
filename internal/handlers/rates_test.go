package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/knassar/mc-wallet-ledger/internal/jwt"
	"github.com/knassar/mc-wallet-ledger/internal/models"
)

type mockRatesGetter struct{ mock.Mock }

func (m *mockRatesGetter) GetRatesForBase(ctx context.Context, base string) ([]models.RateQuote, error) {
	args := m.Called(ctx, base)
	if res := args.Get(0); res != nil {
		return res.([]models.RateQuote), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestRatesHandler(t *testing.T) {
	claims := &jwt.Claims{UserID: uuid.New()}

	t.Run("success", func(t *testing.T) {
		svc := new(mockRatesGetter)
		svc.On("GetRatesForBase", mock.Anything, "USD").Return([]models.RateQuote{
			{BaseCurrency: "USD", QuoteCurrency: "EUR", Rate: decimal.RequireFromString("0.92")},
			{BaseCurrency: "USD", QuoteCurrency: "GBP", Rate: decimal.RequireFromString("0.79")},
		}, nil)
		handler := NewRatesHandler(svc, &stubTokener{claims: claims})

		req := httptest.NewRequest(http.MethodGet, "/exchange/rates?base=USD", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp RatesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "USD", resp.Base)
		assert.Len(t, resp.Rates, 2)
		assert.True(t, resp.Rates["EUR"].Equal(decimal.RequireFromString("0.92")))
		svc.AssertExpectations(t)
	})

	t.Run("base is uppercased", func(t *testing.T) {
		svc := new(mockRatesGetter)
		svc.On("GetRatesForBase", mock.Anything, "USD").Return([]models.RateQuote{}, nil)
		handler := NewRatesHandler(svc, &stubTokener{claims: claims})

		req := httptest.NewRequest(http.MethodGet, "/exchange/rates?base=usd", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("missing or malformed base", func(t *testing.T) {
		handler := NewRatesHandler(new(mockRatesGetter), &stubTokener{claims: claims})

		for _, target := range []string{"/exchange/rates", "/exchange/rates?base=US", "/exchange/rates?base=US1"} {
			req := httptest.NewRequest(http.MethodGet, target, nil)
			rec := httptest.NewRecorder()
			handler(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		}
	})

	t.Run("unauthorized", func(t *testing.T) {
		handler := NewRatesHandler(new(mockRatesGetter), &stubTokener{err: assert.AnError})

		req := httptest.NewRequest(http.MethodGet, "/exchange/rates?base=USD", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
