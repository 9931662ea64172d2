package handlers

import (
	"bytes"
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

	"github.com/knassar/mc-wallet-ledger/internal/apperrors"
	"github.com/knassar/mc-wallet-ledger/internal/jwt"
	"github.com/knassar/mc-wallet-ledger/internal/services"
)

type mockExchanger struct{ mock.Mock }

func (m *mockExchanger) Exchange(ctx context.Context, userID uuid.UUID, fromCurrency, toCurrency string, amount decimal.Decimal, note string) (*services.ExchangeResult, error) {
	args := m.Called(ctx, userID, fromCurrency, toCurrency, amount, note)
	if res := args.Get(0); res != nil {
		return res.(*services.ExchangeResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestExchangeHandler(t *testing.T) {
	userID := uuid.New()
	txnID := uuid.New()
	claims := &jwt.Claims{UserID: userID}

	t.Run("success", func(t *testing.T) {
		svc := new(mockExchanger)
		svc.On("Exchange", mock.Anything, userID, "USD", "EUR", mock.Anything, "").
			Return(&services.ExchangeResult{
				TransactionID:    txnID,
				SourceAmount:     decimal.RequireFromString("50.00"),
				TargetAmount:     decimal.RequireFromString("46.00"),
				Rate:             decimal.RequireFromString("0.92"),
				NewSourceBalance: decimal.RequireFromString("50.00"),
				NewTargetBalance: decimal.RequireFromString("46.00"),
			}, nil)
		handler := NewExchangeHandler(svc, &stubTokener{claims: claims})

		data, _ := json.Marshal(ExchangeRequest{
			FromCurrency: "USD", ToCurrency: "EUR", Amount: decimal.RequireFromString("50.00"),
		})
		req := httptest.NewRequest(http.MethodPost, "/exchange", bytes.NewBuffer(data))
		rec := httptest.NewRecorder()
		handler(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp ExchangeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, txnID, resp.TransactionID)
		assert.True(t, resp.ReceivedAmount.Equal(decimal.RequireFromString("46.00")))
		assert.True(t, resp.Rate.Equal(decimal.RequireFromString("0.92")))
		assert.True(t, resp.NewBalance["USD"].Equal(decimal.RequireFromString("50.00")))
		assert.True(t, resp.NewBalance["EUR"].Equal(decimal.RequireFromString("46.00")))
		svc.AssertExpectations(t)
	})

	t.Run("rate unavailable maps to 404", func(t *testing.T) {
		svc := new(mockExchanger)
		svc.On("Exchange", mock.Anything, userID, "USD", "XXX", mock.Anything, "").
			Return(nil, apperrors.RateUnavailable("no rate recorded for USD/XXX"))
		handler := NewExchangeHandler(svc, &stubTokener{claims: claims})

		data, _ := json.Marshal(ExchangeRequest{
			FromCurrency: "USD", ToCurrency: "XXX", Amount: decimal.RequireFromString("1.00"),
		})
		req := httptest.NewRequest(http.MethodPost, "/exchange", bytes.NewBuffer(data))
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("same currency maps to 400", func(t *testing.T) {
		svc := new(mockExchanger)
		svc.On("Exchange", mock.Anything, userID, "USD", "USD", mock.Anything, "").
			Return(nil, apperrors.Validation("source and target currency must differ"))
		handler := NewExchangeHandler(svc, &stubTokener{claims: claims})

		data, _ := json.Marshal(ExchangeRequest{
			FromCurrency: "USD", ToCurrency: "USD", Amount: decimal.RequireFromString("1.00"),
		})
		req := httptest.NewRequest(http.MethodPost, "/exchange", bytes.NewBuffer(data))
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unauthorized", func(t *testing.T) {
		handler := NewExchangeHandler(new(mockExchanger), &stubTokener{err: assert.AnError})

		req := httptest.NewRequest(http.MethodPost, "/exchange", bytes.NewBufferString("{}"))
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
