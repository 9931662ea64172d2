package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType enumerates the balance-affecting event types.
type TransactionType string

const (
	TransactionTransfer    TransactionType = "transfer"
	TransactionExchange    TransactionType = "exchange"
	TransactionAdminCredit TransactionType = "admin_credit"
	TransactionTopUp       TransactionType = "topup"
)

// Transaction is an immutable ledger entry, created atomically with the
// balance mutations it represents and never updated or deleted.
// SourceWalletID is nil for pure credits (admin_credit, topup).
type Transaction struct {
	TransactionID  uuid.UUID       `db:"transaction_id" json:"transaction_id"`
	UserID         uuid.UUID       `db:"user_id" json:"user_id"`
	Type           TransactionType `db:"type" json:"type"`
	SourceWalletID *uuid.UUID      `db:"source_wallet_id" json:"source_wallet_id,omitempty"`
	TargetWalletID uuid.UUID       `db:"target_wallet_id" json:"target_wallet_id"`
	SourceCurrency string          `db:"source_currency" json:"source_currency"`
	TargetCurrency string          `db:"target_currency" json:"target_currency"`
	SourceAmount   decimal.Decimal `db:"source_amount" json:"source_amount"`
	TargetAmount   decimal.Decimal `db:"target_amount" json:"target_amount"`
	Rate           decimal.Decimal `db:"rate" json:"rate"`
	Fee            decimal.Decimal `db:"fee" json:"fee"`
	Note           string          `db:"note" json:"note,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}
