package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet statuses. Wallets are never hard-deleted while transactions
// reference them; deactivation is a status change.
const (
	WalletStatusActive = "active"
	WalletStatusClosed = "closed"
)

// Wallet is one (user, currency) balance record. At most one active wallet
// exists per pair; the balance of a committed wallet is never negative.
type Wallet struct {
	WalletID     uuid.UUID       `db:"wallet_id"`
	UserID       uuid.UUID       `db:"user_id"`
	CurrencyCode string          `db:"currency_code"`
	Balance      decimal.Decimal `db:"balance"`
	Status       string          `db:"status"`
	Address      string          `db:"address"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}
