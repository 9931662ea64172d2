package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertQuote(t *testing.T, db *sqlx.DB, base, quote, rate string, observedAt time.Time) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO exchange_rates (rate_id, base_currency, quote_currency, rate, observed_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
	`, base, quote, rate, observedAt)
	require.NoError(t, err)
}

func TestExchangeRateReaderRepository(t *testing.T) {
	db, teardown := setupPostgres(t)
	defer teardown()

	repo := NewExchangeRateReaderRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	insertQuote(t, db, "USD", "EUR", "0.90", now.Add(-2*time.Hour))
	insertQuote(t, db, "USD", "EUR", "0.92", now)
	insertQuote(t, db, "USD", "GBP", "0.79", now)
	insertQuote(t, db, "EUR", "GBP", "0.86", now)

	t.Run("GetLatest picks the most recent observation", func(t *testing.T) {
		q, err := repo.GetLatest(ctx, "USD", "EUR")
		require.NoError(t, err)
		require.NotNil(t, q)
		assert.True(t, q.Rate.Equal(decimal.RequireFromString("0.92")))
		assert.WithinDuration(t, now, q.ObservedAt, time.Second)
	})

	t.Run("GetLatest returns nil when never recorded", func(t *testing.T) {
		q, err := repo.GetLatest(ctx, "USD", "JPY")
		require.NoError(t, err)
		assert.Nil(t, q)
	})

	t.Run("GetLatestForBase returns one quote per currency", func(t *testing.T) {
		quotes, err := repo.GetLatestForBase(ctx, "USD")
		require.NoError(t, err)
		require.Len(t, quotes, 2)

		byQuote := make(map[string]decimal.Decimal, len(quotes))
		for _, q := range quotes {
			byQuote[q.QuoteCurrency] = q.Rate
		}
		assert.True(t, byQuote["EUR"].Equal(decimal.RequireFromString("0.92")))
		assert.True(t, byQuote["GBP"].Equal(decimal.RequireFromString("0.79")))
	})
}
