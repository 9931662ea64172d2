package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/knassar/mc-wallet-ledger/internal/apperrors"
)

// BalanceReader reads wallet balances without locking.
type BalanceReader interface {
	GetBalancesByUserID(ctx context.Context, userID uuid.UUID) (map[string]decimal.Decimal, error)
}

// WalletService serves read-only wallet queries.
type WalletService struct {
	balances BalanceReader
}

func NewWalletService(balances BalanceReader) *WalletService {
	return &WalletService{balances: balances}
}

// GetBalances returns the user's balance in every active wallet, keyed by
// currency code. A user with no wallets gets an empty map.
func (s *WalletService) GetBalances(ctx context.Context, userID uuid.UUID) (map[string]decimal.Decimal, error) {
	balances, err := s.balances.GetBalancesByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.Persistence("failed to read balances", err)
	}
	return balances, nil
}
