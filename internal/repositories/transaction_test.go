package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knassar/mc-wallet-ledger/internal/models"
)

func TestTransactionRepositories(t *testing.T) {
	db, teardown := setupPostgres(t)
	defer teardown()

	ctx := context.Background()
	writer := NewTransactionWriterRepository(db)
	reader := NewTransactionReaderRepository(db)
	walletRepo := NewWalletWriterRepository(db)

	aliceID := insertTestUser(t, db, "alice")
	bobID := insertTestUser(t, db, "bob")

	aliceUSD, err := walletRepo.GetOrCreate(ctx, aliceID, "USD")
	require.NoError(t, err)
	bobUSD, err := walletRepo.GetOrCreate(ctx, bobID, "USD")
	require.NoError(t, err)

	one := decimal.NewFromInt(1)
	for i := 0; i < 3; i++ {
		sourceID := aliceUSD.WalletID
		err := writer.Save(ctx, &models.Transaction{
			TransactionID:  uuid.New(),
			UserID:         aliceID,
			Type:           models.TransactionTransfer,
			SourceWalletID: &sourceID,
			TargetWalletID: bobUSD.WalletID,
			SourceCurrency: "USD",
			TargetCurrency: "USD",
			SourceAmount:   decimal.NewFromInt(int64(10 * (i + 1))),
			TargetAmount:   decimal.NewFromInt(int64(10 * (i + 1))),
			Rate:           one,
			Fee:            decimal.Zero,
			Note:           "test",
		})
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond) // distinct created_at for ordering
	}

	err = writer.Save(ctx, &models.Transaction{
		TransactionID:  uuid.New(),
		UserID:         bobID,
		Type:           models.TransactionTopUp,
		TargetWalletID: bobUSD.WalletID,
		SourceCurrency: "USD",
		TargetCurrency: "USD",
		SourceAmount:   one,
		TargetAmount:   one,
		Rate:           one,
		Fee:            decimal.Zero,
	})
	require.NoError(t, err)

	t.Run("newest first, scoped to user", func(t *testing.T) {
		txns, err := reader.ListByUserID(ctx, aliceID, 10, 0)
		require.NoError(t, err)
		require.Len(t, txns, 3)
		assert.True(t, txns[0].SourceAmount.Equal(decimal.NewFromInt(30)))
		for _, txn := range txns {
			assert.Equal(t, aliceID, txn.UserID)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		page, err := reader.ListByUserID(ctx, aliceID, 2, 0)
		require.NoError(t, err)
		assert.Len(t, page, 2)

		rest, err := reader.ListByUserID(ctx, aliceID, 2, 2)
		require.NoError(t, err)
		require.Len(t, rest, 1)
		assert.True(t, rest[0].SourceAmount.Equal(decimal.NewFromInt(10)))
	})

	t.Run("nil source wallet survives the round trip", func(t *testing.T) {
		txns, err := reader.ListByUserID(ctx, bobID, 10, 0)
		require.NoError(t, err)
		require.Len(t, txns, 1)
		assert.Nil(t, txns[0].SourceWalletID)
		assert.Equal(t, models.TransactionTopUp, txns[0].Type)
	})
}
