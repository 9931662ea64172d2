package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/knassar/mc-wallet-ledger/internal/logger"
	"github.com/knassar/mc-wallet-ledger/internal/models"
)

// ExchangeRateReaderRepository reads observed FX quotes. The quote table is
// an external input to the ledger; this repository never writes it.
type ExchangeRateReaderRepository struct {
	db *sqlx.DB
}

func NewExchangeRateReaderRepository(db *sqlx.DB) *ExchangeRateReaderRepository {
	return &ExchangeRateReaderRepository{db: db}
}

// GetLatest returns the most recently observed quote for the exact
// (base, quote) pair, or (nil, nil) when none was ever recorded.
func (r *ExchangeRateReaderRepository) GetLatest(ctx context.Context, base, quote string) (*models.RateQuote, error) {
	const query = `
		SELECT base_currency, quote_currency, rate, observed_at
		FROM exchange_rates
		WHERE base_currency = $1 AND quote_currency = $2
		ORDER BY observed_at DESC
		LIMIT 1
	`

	var q models.RateQuote
	err := r.db.GetContext(ctx, &q, query, base, quote)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{base, quote},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// GetLatestForBase returns the latest quote per quoted currency for the
// given base.
func (r *ExchangeRateReaderRepository) GetLatestForBase(ctx context.Context, base string) ([]models.RateQuote, error) {
	const query = `
		SELECT DISTINCT ON (quote_currency)
		       base_currency, quote_currency, rate, observed_at
		FROM exchange_rates
		WHERE base_currency = $1
		ORDER BY quote_currency, observed_at DESC
	`

	var quotes []models.RateQuote
	err := r.db.SelectContext(ctx, &quotes, query, base)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{base},
		"result", len(quotes),
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return quotes, nil
}
