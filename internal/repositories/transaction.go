package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/knassar/mc-wallet-ledger/internal/logger"
	"github.com/knassar/mc-wallet-ledger/internal/models"
)

// TransactionWriterRepository appends rows to the transaction log. The log
// is append-only: rows are never updated or deleted.
type TransactionWriterRepository struct {
	db *sqlx.DB
}

func NewTransactionWriterRepository(db *sqlx.DB) *TransactionWriterRepository {
	return &TransactionWriterRepository{db: db}
}

// Save inserts one transaction row. Must run inside the same database
// transaction as the balance mutations it records.
func (r *TransactionWriterRepository) Save(ctx context.Context, txn *models.Transaction) error {
	const query = `
		INSERT INTO transactions (
			transaction_id, user_id, type,
			source_wallet_id, target_wallet_id,
			source_currency, target_currency,
			source_amount, target_amount,
			rate, fee, note, created_at
		) VALUES (
			:transaction_id, :user_id, :type,
			:source_wallet_id, :target_wallet_id,
			:source_currency, :target_currency,
			:source_amount, :target_amount,
			:rate, :fee, :note, NOW()
		)
	`

	var err error
	if tx := TxFromContext(ctx); tx != nil {
		_, err = tx.NamedExecContext(ctx, query, txn)
	} else {
		_, err = r.db.NamedExecContext(ctx, query, txn)
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{txn.TransactionID, txn.UserID, txn.Type},
		"error", err,
	)

	return err
}

// TransactionReaderRepository serves transaction history queries.
type TransactionReaderRepository struct {
	db *sqlx.DB
}

func NewTransactionReaderRepository(db *sqlx.DB) *TransactionReaderRepository {
	return &TransactionReaderRepository{db: db}
}

// ListByUserID returns the user's transactions, newest first.
func (r *TransactionReaderRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	const query = `
		SELECT transaction_id, user_id, type,
		       source_wallet_id, target_wallet_id,
		       source_currency, target_currency,
		       source_amount, target_amount,
		       rate, fee, note, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	var txns []models.Transaction
	err := r.db.SelectContext(ctx, &txns, query, userID, limit, offset)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{userID, limit, offset},
		"result", len(txns),
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return txns, nil
}
