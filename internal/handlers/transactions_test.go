package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/knassar/mc-wallet-ledger/internal/jwt"
	"github.com/knassar/mc-wallet-ledger/internal/models"
)

type mockHistoryGetter struct{ mock.Mock }

func (m *mockHistoryGetter) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	if res := args.Get(0); res != nil {
		return res.([]models.Transaction), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestTransactionsHandler(t *testing.T) {
	userID := uuid.New()
	claims := &jwt.Claims{UserID: userID}

	t.Run("success with explicit paging", func(t *testing.T) {
		svc := new(mockHistoryGetter)
		svc.On("History", mock.Anything, userID, 10, 20).Return([]models.Transaction{
			{TransactionID: uuid.New(), UserID: userID, Type: models.TransactionTransfer},
		}, nil)
		handler := NewTransactionsHandler(svc, &stubTokener{claims: claims})

		req := httptest.NewRequest(http.MethodGet, "/transactions?limit=10&offset=20", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp TransactionsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Transactions, 1)
		svc.AssertExpectations(t)
	})

	t.Run("defaults applied for missing or bogus paging", func(t *testing.T) {
		for _, target := range []string{"/transactions", "/transactions?limit=0&offset=-3", "/transactions?limit=9999", "/transactions?limit=abc"} {
			svc := new(mockHistoryGetter)
			svc.On("History", mock.Anything, userID, defaultHistoryLimit, 0).Return([]models.Transaction{}, nil)
			handler := NewTransactionsHandler(svc, &stubTokener{claims: claims})

			req := httptest.NewRequest(http.MethodGet, target, nil)
			rec := httptest.NewRecorder()
			handler(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code, target)
			svc.AssertExpectations(t)
		}
	})

	t.Run("unauthorized", func(t *testing.T) {
		handler := NewTransactionsHandler(new(mockHistoryGetter), &stubTokener{err: assert.AnError})

		req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
