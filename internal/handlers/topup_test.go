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

type mockTopUpper struct{ mock.Mock }

func (m *mockTopUpper) TopUp(ctx context.Context, userID uuid.UUID, currency string, amount decimal.Decimal, note string) (*services.CreditResult, error) {
	args := m.Called(ctx, userID, currency, amount, note)
	if res := args.Get(0); res != nil {
		return res.(*services.CreditResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestTopUpHandler(t *testing.T) {
	userID := uuid.New()
	txnID := uuid.New()
	walletID := uuid.New()
	claims := &jwt.Claims{UserID: userID}

	t.Run("success", func(t *testing.T) {
		svc := new(mockTopUpper)
		svc.On("TopUp", mock.Anything, userID, "USD", mock.Anything, "card deposit").
			Return(&services.CreditResult{
				TransactionID: txnID,
				WalletID:      walletID,
				NewBalance:    decimal.RequireFromString("100.00"),
			}, nil)
		handler := NewTopUpHandler(svc, &stubTokener{claims: claims})

		data, _ := json.Marshal(TopUpRequest{Currency: "USD", Amount: decimal.RequireFromString("100.00"), Note: "card deposit"})
		req := httptest.NewRequest(http.MethodPost, "/wallet/topup", bytes.NewBuffer(data))
		rec := httptest.NewRecorder()
		handler(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp TopUpResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, txnID, resp.TransactionID)
		assert.True(t, resp.NewBalance.Equal(decimal.RequireFromString("100.00")))
		svc.AssertExpectations(t)
	})

	t.Run("invalid amount maps to 400", func(t *testing.T) {
		svc := new(mockTopUpper)
		svc.On("TopUp", mock.Anything, userID, "USD", mock.Anything, "").
			Return(nil, apperrors.Validation("amount must be positive"))
		handler := NewTopUpHandler(svc, &stubTokener{claims: claims})

		data, _ := json.Marshal(TopUpRequest{Currency: "USD", Amount: decimal.Zero})
		req := httptest.NewRequest(http.MethodPost, "/wallet/topup", bytes.NewBuffer(data))
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unauthorized", func(t *testing.T) {
		handler := NewTopUpHandler(new(mockTopUpper), &stubTokener{err: assert.AnError})

		req := httptest.NewRequest(http.MethodPost, "/wallet/topup", bytes.NewBufferString("{}"))
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
