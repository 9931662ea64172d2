package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/knassar/mc-wallet-ledger/internal/apperrors"
	"github.com/knassar/mc-wallet-ledger/internal/logger"
	"github.com/knassar/mc-wallet-ledger/internal/models"
)

// RateQuoteReader reads observed FX quotes from the rate table.
type RateQuoteReader interface {
	GetLatest(ctx context.Context, base, quote string) (*models.RateQuote, error)
	GetLatestForBase(ctx context.Context, base string) ([]models.RateQuote, error)
}

// RateQuoteCache caches resolved quotes.
type RateQuoteCache interface {
	GetRate(ctx context.Context, base, quote string) (*models.RateQuote, error)
	SetRate(ctx context.Context, base, quote string, q *models.RateQuote) error
}

// RateService resolves exchange rates. When only the reverse pair was
// recorded it synthesizes the multiplicative inverse, keeping the inverse
// quote's own observed-at timestamp as provenance.
type RateService struct {
	reader RateQuoteReader
	cache  RateQuoteCache
}

// NewRateService creates a RateService. cache may be nil.
func NewRateService(reader RateQuoteReader, cache RateQuoteCache) *RateService {
	return &RateService{reader: reader, cache: cache}
}

// GetRate returns the latest known rate from base to quote, or a
// rate-unavailable error when neither the direct nor the inverse pair was
// ever recorded.
func (s *RateService) GetRate(ctx context.Context, base, quote string) (*models.RateQuote, error) {
	if s.cache != nil {
		cached, err := s.cache.GetRate(ctx, base, quote)
		if err != nil {
			logger.Log.Errorw("rate cache read failed", "base", base, "quote", quote, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	resolved, err := s.resolve(ctx, base, quote)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetRate(ctx, base, quote, resolved); err != nil {
			logger.Log.Errorw("rate cache write failed", "base", base, "quote", quote, "error", err)
		}
	}
	return resolved, nil
}

func (s *RateService) resolve(ctx context.Context, base, quote string) (*models.RateQuote, error) {
	direct, err := s.reader.GetLatest(ctx, base, quote)
	if err != nil {
		return nil, apperrors.Persistence("read rate quote", err)
	}
	if direct != nil {
		return direct, nil
	}

	inverse, err := s.reader.GetLatest(ctx, quote, base)
	if err != nil {
		return nil, apperrors.Persistence("read inverse rate quote", err)
	}
	if inverse != nil && !inverse.Rate.IsZero() {
		return &models.RateQuote{
			BaseCurrency:  base,
			QuoteCurrency: quote,
			Rate:          decimal.NewFromInt(1).Div(inverse.Rate),
			ObservedAt:    inverse.ObservedAt,
		}, nil
	}

	return nil, apperrors.RateUnavailable("no rate recorded for %s/%s", base, quote)
}

// GetRatesForBase returns the latest quotes for every currency quoted
// against the given base.
func (s *RateService) GetRatesForBase(ctx context.Context, base string) ([]models.RateQuote, error) {
	quotes, err := s.reader.GetLatestForBase(ctx, base)
	if err != nil {
		return nil, apperrors.Persistence("read rate quotes", err)
	}
	return quotes, nil
}
