package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/knassar/mc-wallet-ledger/internal/logger"
	"github.com/knassar/mc-wallet-ledger/internal/models"
)

// ExchangeRateCacheRepository caches resolved rate quotes in Redis. Cached
// entries keep the quote's provenance timestamp, so an inverse-synthesized
// rate stays attributable to the quote it came from. Only rates are cached,
// never balances.
type ExchangeRateCacheRepository struct {
	client *redis.Client
	exp    time.Duration
}

// NewExchangeRateCacheRepository creates a cache with the given entry TTL.
func NewExchangeRateCacheRepository(client *redis.Client, expiration time.Duration) *ExchangeRateCacheRepository {
	return &ExchangeRateCacheRepository{client: client, exp: expiration}
}

func rateCacheKey(base, quote string) string {
	return fmt.Sprintf("exchange_rate:%s:%s", base, quote)
}

// GetRate fetches a cached quote. Returns (nil, nil) on a cache miss.
func (r *ExchangeRateCacheRepository) GetRate(ctx context.Context, base, quote string) (*models.RateQuote, error) {
	key := rateCacheKey(base, quote)

	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		logger.Log.Infow(
			"key", key,
			"error", err,
		)
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var q models.RateQuote
	if err := json.Unmarshal([]byte(val), &q); err != nil {
		logger.Log.Errorw("corrupt cached rate", "key", key, "value", val, "error", err)
		return nil, nil
	}

	logger.Log.Infow(
		"key", key,
		"result", q.Rate,
		"error", nil,
	)
	return &q, nil
}

// SetRate caches a resolved quote with the configured TTL.
func (r *ExchangeRateCacheRepository) SetRate(ctx context.Context, base, quote string, q *models.RateQuote) error {
	key := rateCacheKey(base, quote)

	data, err := json.Marshal(q)
	if err != nil {
		return err
	}
	err = r.client.Set(ctx, key, data, r.exp).Err()

	logger.Log.Infow(
		"key", key,
		"rate", q.Rate,
		"error", err,
	)
	return err
}
