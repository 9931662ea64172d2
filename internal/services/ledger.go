package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/knassar/mc-wallet-ledger/internal/apperrors"
	"github.com/knassar/mc-wallet-ledger/internal/logger"
	"github.com/knassar/mc-wallet-ledger/internal/models"
	"github.com/knassar/mc-wallet-ledger/internal/notify"
)

// WalletStore provides lock-based access to wallet rows. Locking and
// mutating methods take effect within the transaction carried by the
// context; locks are held until that transaction ends.
type WalletStore interface {
	LockByUserAndCurrency(ctx context.Context, userID uuid.UUID, currency string) (*models.Wallet, error)
	LockPair(ctx context.Context, userID uuid.UUID, first, second string) ([]models.Wallet, error)
	LockByID(ctx context.Context, walletID uuid.UUID) (*models.Wallet, error)
	GetOrCreate(ctx context.Context, userID uuid.UUID, currency string) (*models.Wallet, error)
	AdjustBalance(ctx context.Context, walletID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error)
}

// TransactionWriter appends ledger entries.
type TransactionWriter interface {
	Save(ctx context.Context, txn *models.Transaction) error
}

// TransactionReader serves history queries.
type TransactionReader interface {
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error)
}

// RecipientReader resolves users by public identifier.
type RecipientReader interface {
	GetByUsernameOrEmail(ctx context.Context, username, email *string) (*models.User, error)
}

// RateGetter resolves FX rates.
type RateGetter interface {
	GetRate(ctx context.Context, base, quote string) (*models.RateQuote, error)
}

// TxRunner runs a function inside one atomic unit of work.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// KafkaWriter defines a Kafka writer abstraction for the committed-
// transaction event stream.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// LedgerService is the single writer of balance changes: it validates
// inputs, locks the involved wallets, applies balance deltas, and writes
// the immutable transaction record, all in one database transaction.
// Notification events and the Kafka transaction stream are emitted strictly
// after commit and are best effort.
type LedgerService struct {
	wallets      WalletStore
	transactions TransactionWriter
	history      TransactionReader
	users        RecipientReader
	rates        RateGetter
	runner       TxRunner
	notifier     notify.Notifier
	kafkaWriter  KafkaWriter
}

// NewLedgerService creates a LedgerService. notifier and kafkaWriter may be
// nil; the corresponding post-commit emissions are then skipped.
func NewLedgerService(
	wallets WalletStore,
	transactions TransactionWriter,
	history TransactionReader,
	users RecipientReader,
	rates RateGetter,
	runner TxRunner,
	notifier notify.Notifier,
	kafkaWriter KafkaWriter,
) *LedgerService {
	return &LedgerService{
		wallets:      wallets,
		transactions: transactions,
		history:      history,
		users:        users,
		rates:        rates,
		runner:       runner,
		notifier:     notifier,
		kafkaWriter:  kafkaWriter,
	}
}

// TransferResult reports a committed transfer.
type TransferResult struct {
	TransactionID    uuid.UUID
	NewSourceBalance decimal.Decimal
}

// ExchangeResult reports a committed exchange.
type ExchangeResult struct {
	TransactionID    uuid.UUID
	SourceAmount     decimal.Decimal
	TargetAmount     decimal.Decimal
	Rate             decimal.Decimal
	NewSourceBalance decimal.Decimal
	NewTargetBalance decimal.Decimal
}

// CreditResult reports a committed admin credit or top-up.
type CreditResult struct {
	TransactionID uuid.UUID
	WalletID      uuid.UUID
	NewBalance    decimal.Decimal
}

// AdminCreditTarget selects the wallet to credit: either an explicit wallet
// id, or (UserID, Currency) which creates the wallet when absent. An
// explicit wallet id must already exist.
type AdminCreditTarget struct {
	WalletID *uuid.UUID
	UserID   uuid.UUID
	Currency string
}

// Transfer moves amount from the acting user's wallet to the recipient's
// wallet in the same currency, creating the recipient wallet if needed.
func (s *LedgerService) Transfer(ctx context.Context, userID uuid.UUID, recipientEmail, currency string, amount decimal.Decimal, note string) (*TransferResult, error) {
	if err := validateAmount(amount, currency); err != nil {
		return nil, err
	}
	if recipientEmail == "" {
		return nil, apperrors.Validation("recipient is required")
	}

	recipient, err := s.users.GetByUsernameOrEmail(ctx, nil, &recipientEmail)
	if err != nil {
		return nil, apperrors.Persistence("resolve recipient", err)
	}
	if recipient == nil {
		return nil, apperrors.NotFound("recipient %s not found", recipientEmail)
	}
	if recipient.UserID == userID {
		return nil, apperrors.Validation("cannot transfer to yourself")
	}

	var (
		txn              *models.Transaction
		newSourceBalance decimal.Decimal
	)
	err = s.runner.RunInTx(ctx, func(ctx context.Context) error {
		source, err := s.wallets.LockByUserAndCurrency(ctx, userID, currency)
		if err != nil {
			return err
		}
		if source == nil {
			return apperrors.NotFound("sender has no active %s wallet", currency)
		}
		// The lock is held from this check through the debit below.
		if source.Balance.LessThan(amount) {
			return apperrors.InsufficientFunds("balance %s is below %s %s", source.Balance, amount, currency)
		}

		target, err := s.wallets.GetOrCreate(ctx, recipient.UserID, currency)
		if err != nil {
			return err
		}

		newSourceBalance, err = s.wallets.AdjustBalance(ctx, source.WalletID, amount.Neg())
		if err != nil {
			return err
		}
		if _, err := s.wallets.AdjustBalance(ctx, target.WalletID, amount); err != nil {
			return err
		}

		sourceID := source.WalletID
		txn = &models.Transaction{
			TransactionID:  uuid.New(),
			UserID:         userID,
			Type:           models.TransactionTransfer,
			SourceWalletID: &sourceID,
			TargetWalletID: target.WalletID,
			SourceCurrency: currency,
			TargetCurrency: currency,
			SourceAmount:   amount,
			TargetAmount:   amount,
			Rate:           decimal.NewFromInt(1),
			Fee:            decimal.Zero,
			Note:           note,
		}
		return s.transactions.Save(ctx, txn)
	})
	if err != nil {
		return nil, ledgerError("transfer", err)
	}

	s.publishTransaction(ctx, txn)
	s.emit(ctx, notify.Event{
		UserID: userID,
		Type:   notify.TypeDebit,
		Title:  "Transfer sent",
		Body:   fmt.Sprintf("You sent %s %s to %s", amount, currency, recipientEmail),
	})
	s.emit(ctx, notify.Event{
		UserID: recipient.UserID,
		Type:   notify.TypeCredit,
		Title:  "Funds received",
		Body:   fmt.Sprintf("You received %s %s", amount, currency),
	})

	return &TransferResult{
		TransactionID:    txn.TransactionID,
		NewSourceBalance: newSourceBalance,
	}, nil
}

// Exchange converts amount from the user's source-currency wallet into
// their target-currency wallet at the latest known rate. Both wallets must
// already exist; exchange never creates wallets.
func (s *LedgerService) Exchange(ctx context.Context, userID uuid.UUID, fromCurrency, toCurrency string, amount decimal.Decimal, note string) (*ExchangeResult, error) {
	if err := validateAmount(amount, fromCurrency); err != nil {
		return nil, err
	}
	if !models.ValidCurrencyCode(toCurrency) {
		return nil, apperrors.Validation("invalid currency code %q", toCurrency)
	}
	if fromCurrency == toCurrency {
		return nil, apperrors.Validation("source and target currency must differ")
	}

	var (
		txn *models.Transaction
		res ExchangeResult
	)
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		wallets, err := s.wallets.LockPair(ctx, userID, fromCurrency, toCurrency)
		if err != nil {
			return err
		}
		var source, target *models.Wallet
		for i := range wallets {
			switch wallets[i].CurrencyCode {
			case fromCurrency:
				source = &wallets[i]
			case toCurrency:
				target = &wallets[i]
			}
		}
		if source == nil {
			return apperrors.NotFound("no active %s wallet", fromCurrency)
		}
		if target == nil {
			return apperrors.NotFound("no active %s wallet", toCurrency)
		}
		if source.Balance.LessThan(amount) {
			return apperrors.InsufficientFunds("balance %s is below %s %s", source.Balance, amount, fromCurrency)
		}

		quote, err := s.rates.GetRate(ctx, fromCurrency, toCurrency)
		if err != nil {
			return err
		}

		fee := decimal.Zero
		targetAmount := amount.Mul(quote.Rate).Round(models.MinorUnits(toCurrency))

		newSourceBalance, err := s.wallets.AdjustBalance(ctx, source.WalletID, amount.Add(fee).Neg())
		if err != nil {
			return err
		}
		newTargetBalance, err := s.wallets.AdjustBalance(ctx, target.WalletID, targetAmount)
		if err != nil {
			return err
		}

		sourceID := source.WalletID
		txn = &models.Transaction{
			TransactionID:  uuid.New(),
			UserID:         userID,
			Type:           models.TransactionExchange,
			SourceWalletID: &sourceID,
			TargetWalletID: target.WalletID,
			SourceCurrency: fromCurrency,
			TargetCurrency: toCurrency,
			SourceAmount:   amount,
			TargetAmount:   targetAmount,
			Rate:           quote.Rate,
			Fee:            fee,
			Note:           note,
		}
		if err := s.transactions.Save(ctx, txn); err != nil {
			return err
		}

		res = ExchangeResult{
			TransactionID:    txn.TransactionID,
			SourceAmount:     amount,
			TargetAmount:     targetAmount,
			Rate:             quote.Rate,
			NewSourceBalance: newSourceBalance,
			NewTargetBalance: newTargetBalance,
		}
		return nil
	})
	if err != nil {
		return nil, ledgerError("exchange", err)
	}

	s.publishTransaction(ctx, txn)
	s.emit(ctx, notify.Event{
		UserID: userID,
		Type:   notify.TypeExchange,
		Title:  "Exchange completed",
		Body:   fmt.Sprintf("Exchanged %s %s into %s %s", res.SourceAmount, fromCurrency, res.TargetAmount, toCurrency),
	})

	return &res, nil
}

// AdminCredit credits a wallet without a matching debit elsewhere, the sole
// legitimate source of new money. Caller authorization is the transport
// layer's concern.
func (s *LedgerService) AdminCredit(ctx context.Context, target AdminCreditTarget, amount decimal.Decimal, note string) (*CreditResult, error) {
	if !amount.IsPositive() {
		return nil, apperrors.Validation("amount must be positive")
	}
	if target.WalletID == nil {
		if target.UserID == uuid.Nil {
			return nil, apperrors.Validation("target wallet or user is required")
		}
		if !models.ValidCurrencyCode(target.Currency) {
			return nil, apperrors.Validation("invalid currency code %q", target.Currency)
		}
	}

	var (
		txn    *models.Transaction
		wallet *models.Wallet
		res    CreditResult
	)
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if target.WalletID != nil {
			wallet, err = s.wallets.LockByID(ctx, *target.WalletID)
			if err != nil {
				return err
			}
			if wallet == nil {
				return apperrors.NotFound("wallet %s not found", *target.WalletID)
			}
		} else {
			wallet, err = s.wallets.GetOrCreate(ctx, target.UserID, target.Currency)
			if err != nil {
				return err
			}
		}

		if !models.AmountFitsCurrency(amount, wallet.CurrencyCode) {
			return apperrors.Validation("amount %s exceeds %s precision", amount, wallet.CurrencyCode)
		}

		newBalance, err := s.wallets.AdjustBalance(ctx, wallet.WalletID, amount)
		if err != nil {
			return err
		}

		txn = creditTransaction(models.TransactionAdminCredit, wallet, amount, note)
		if err := s.transactions.Save(ctx, txn); err != nil {
			return err
		}

		res = CreditResult{
			TransactionID: txn.TransactionID,
			WalletID:      wallet.WalletID,
			NewBalance:    newBalance,
		}
		return nil
	})
	if err != nil {
		return nil, ledgerError("admin credit", err)
	}

	s.publishTransaction(ctx, txn)
	s.emit(ctx, notify.Event{
		UserID: wallet.UserID,
		Type:   notify.TypeBalanceRefresh,
		Title:  "Account credited",
		Body:   fmt.Sprintf("Your %s wallet was credited with %s", wallet.CurrencyCode, amount),
	})

	return &res, nil
}

// TopUp credits the acting user's own wallet for an externally settled
// payment, creating the wallet if the user never held that currency.
func (s *LedgerService) TopUp(ctx context.Context, userID uuid.UUID, currency string, amount decimal.Decimal, note string) (*CreditResult, error) {
	if err := validateAmount(amount, currency); err != nil {
		return nil, err
	}

	var (
		txn *models.Transaction
		res CreditResult
	)
	err := s.runner.RunInTx(ctx, func(ctx context.Context) error {
		wallet, err := s.wallets.GetOrCreate(ctx, userID, currency)
		if err != nil {
			return err
		}

		newBalance, err := s.wallets.AdjustBalance(ctx, wallet.WalletID, amount)
		if err != nil {
			return err
		}

		txn = creditTransaction(models.TransactionTopUp, wallet, amount, note)
		if err := s.transactions.Save(ctx, txn); err != nil {
			return err
		}

		res = CreditResult{
			TransactionID: txn.TransactionID,
			WalletID:      wallet.WalletID,
			NewBalance:    newBalance,
		}
		return nil
	})
	if err != nil {
		return nil, ledgerError("topup", err)
	}

	s.publishTransaction(ctx, txn)
	s.emit(ctx, notify.Event{
		UserID: userID,
		Type:   notify.TypeCredit,
		Title:  "Top-up successful",
		Body:   fmt.Sprintf("Your %s wallet was topped up with %s", currency, amount),
	})

	return &res, nil
}

// History returns the user's transactions, newest first.
func (s *LedgerService) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Transaction, error) {
	txns, err := s.history.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, apperrors.Persistence("list transactions", err)
	}
	return txns, nil
}

// creditTransaction builds a pure-credit ledger entry: no source wallet,
// rate 1, fee 0.
func creditTransaction(txnType models.TransactionType, wallet *models.Wallet, amount decimal.Decimal, note string) *models.Transaction {
	return &models.Transaction{
		TransactionID:  uuid.New(),
		UserID:         wallet.UserID,
		Type:           txnType,
		SourceWalletID: nil,
		TargetWalletID: wallet.WalletID,
		SourceCurrency: wallet.CurrencyCode,
		TargetCurrency: wallet.CurrencyCode,
		SourceAmount:   amount,
		TargetAmount:   amount,
		Rate:           decimal.NewFromInt(1),
		Fee:            decimal.Zero,
		Note:           note,
	}
}

// validateAmount checks the amount is positive and exactly representable at
// the currency's minor-unit precision.
func validateAmount(amount decimal.Decimal, currency string) error {
	if !models.ValidCurrencyCode(currency) {
		return apperrors.Validation("invalid currency code %q", currency)
	}
	if !amount.IsPositive() {
		return apperrors.Validation("amount must be positive")
	}
	if !models.AmountFitsCurrency(amount, currency) {
		return apperrors.Validation("amount %s exceeds %s precision", amount, currency)
	}
	return nil
}

// ledgerError passes tagged errors through and wraps anything else as an
// opaque persistence failure, logged in detail here.
func ledgerError(op string, err error) error {
	if apperrors.KindOf(err) != "" {
		return err
	}
	logger.Log.Errorw("ledger operation failed", "op", op, "error", err)
	return apperrors.Persistence(op, err)
}

// publishTransaction publishes a committed transaction to Kafka. Best
// effort: failures are logged and never reverse the commit.
func (s *LedgerService) publishTransaction(ctx context.Context, txn *models.Transaction) {
	if s.kafkaWriter == nil {
		logger.Log.Warnw("kafka writer not configured, skipping publishing", "transaction_id", txn.TransactionID)
		return
	}

	data, err := json.Marshal(txn)
	if err != nil {
		logger.Log.Errorw("failed to marshal transaction for kafka", "transaction_id", txn.TransactionID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(txn.TransactionID.String()),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("failed to publish transaction to kafka", "transaction_id", txn.TransactionID, "error", err)
	}
}

// emit hands one notification event to the sink. Best effort: failures are
// logged and swallowed.
func (s *LedgerService) emit(ctx context.Context, event notify.Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, event); err != nil {
		logger.Log.Errorw("notification delivery failed", "user_id", event.UserID, "type", event.Type, "error", err)
	}
}
