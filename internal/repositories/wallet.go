package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/knassar/mc-wallet-ledger/internal/logger"
	"github.com/knassar/mc-wallet-ledger/internal/models"
)

// WalletWriterRepository handles wallet row locking and balance mutation.
// Mutating methods must run inside a TxRunner transaction; they pick the
// transaction up from the context.
type WalletWriterRepository struct {
	db *sqlx.DB
}

func NewWalletWriterRepository(db *sqlx.DB) *WalletWriterRepository {
	return &WalletWriterRepository{db: db}
}

// LockByUserAndCurrency acquires an exclusive row lock on the active wallet
// for (userID, currency) for the duration of the enclosing transaction.
// Returns (nil, nil) when no such wallet exists.
func (r *WalletWriterRepository) LockByUserAndCurrency(ctx context.Context, userID uuid.UUID, currency string) (*models.Wallet, error) {
	const query = `
		SELECT wallet_id, user_id, currency_code, balance, status, address, created_at, updated_at
		FROM wallets
		WHERE user_id = $1 AND currency_code = $2 AND status = 'active'
		FOR UPDATE
	`

	var wallet models.Wallet
	err := sqlx.GetContext(ctx, executor(ctx, r.db), &wallet, query, userID, currency)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID, currency},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// LockPair locks the user's wallets for both currencies in ascending
// wallet_id order so that two concurrent exchanges in opposite directions
// cannot form a lock cycle. Returns only the wallets that exist.
func (r *WalletWriterRepository) LockPair(ctx context.Context, userID uuid.UUID, first, second string) ([]models.Wallet, error) {
	const query = `
		SELECT wallet_id, user_id, currency_code, balance, status, address, created_at, updated_at
		FROM wallets
		WHERE user_id = $1 AND currency_code IN ($2, $3) AND status = 'active'
		ORDER BY wallet_id
		FOR UPDATE
	`

	var wallets []models.Wallet
	err := sqlx.SelectContext(ctx, executor(ctx, r.db), &wallets, query, userID, first, second)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID, first, second},
		"result", len(wallets),
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return wallets, nil
}

// LockByID acquires an exclusive row lock on the active wallet with the
// given id. Returns (nil, nil) when no such wallet exists.
func (r *WalletWriterRepository) LockByID(ctx context.Context, walletID uuid.UUID) (*models.Wallet, error) {
	const query = `
		SELECT wallet_id, user_id, currency_code, balance, status, address, created_at, updated_at
		FROM wallets
		WHERE wallet_id = $1 AND status = 'active'
		FOR UPDATE
	`

	var wallet models.Wallet
	err := sqlx.GetContext(ctx, executor(ctx, r.db), &wallet, query, walletID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{walletID},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// GetOrCreate returns the active wallet for (userID, currency), locked,
// creating it with balance 0 and a fresh display address if absent. The
// insert is idempotent under concurrent calls: the unique constraint on
// (user_id, currency_code) makes a race loser fall through to the read.
func (r *WalletWriterRepository) GetOrCreate(ctx context.Context, userID uuid.UUID, currency string) (*models.Wallet, error) {
	const insert = `
		INSERT INTO wallets (wallet_id, user_id, currency_code, balance, status, address, created_at, updated_at)
		VALUES ($1, $2, $3, 0, 'active', $4, NOW(), NOW())
		ON CONFLICT (user_id, currency_code) WHERE status = 'active' DO NOTHING
	`

	ex := executor(ctx, r.db)
	_, err := ex.ExecContext(ctx, insert, uuid.New(), userID, currency, newWalletAddress())

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(insert), " "),
		"args", []any{userID, currency},
		"error", err,
	)

	if err != nil && !isUniqueViolation(err) {
		return nil, err
	}

	wallet, err := r.LockByUserAndCurrency(ctx, userID, currency)
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, sql.ErrNoRows
	}
	return wallet, nil
}

// AdjustBalance applies balance += delta and returns the new balance.
// Callers must have read the current balance under lock and validated that
// it covers any debit; the adjustment itself does not re-check.
func (r *WalletWriterRepository) AdjustBalance(ctx context.Context, walletID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	const query = `
		UPDATE wallets
		SET balance = balance + $2, updated_at = NOW()
		WHERE wallet_id = $1
		RETURNING balance
	`

	var balance decimal.Decimal
	err := sqlx.GetContext(ctx, executor(ctx, r.db), &balance, query, walletID, delta)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{walletID, delta},
		"result", balance,
		"error", err,
	)

	return balance, err
}

// newWalletAddress generates an opaque display address for a new wallet.
func newWalletAddress() string {
	return "wlt_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// WalletReaderRepository handles wallet read operations outside the
// mutation path.
type WalletReaderRepository struct {
	db *sqlx.DB
}

func NewWalletReaderRepository(db *sqlx.DB) *WalletReaderRepository {
	return &WalletReaderRepository{db: db}
}

// GetBalancesByUserID retrieves all active wallet balances for a user as a
// map[currency]balance.
func (r *WalletReaderRepository) GetBalancesByUserID(ctx context.Context, userID uuid.UUID) (map[string]decimal.Decimal, error) {
	const query = `
		SELECT currency_code, balance
		FROM wallets
		WHERE user_id = $1 AND status = 'active'
	`

	var wallets []struct {
		CurrencyCode string          `db:"currency_code"`
		Balance      decimal.Decimal `db:"balance"`
	}

	err := r.db.SelectContext(ctx, &wallets, query, userID)

	balances := make(map[string]decimal.Decimal, len(wallets))
	for _, w := range wallets {
		balances[w.CurrencyCode] = w.Balance
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID},
		"result", len(balances),
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return balances, nil
}
