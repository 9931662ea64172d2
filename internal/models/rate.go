package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateQuote is one observed exchange rate for a (base, quote) pair. Only the
// most recently observed quote per pair is authoritative. When a rate is
// synthesized from the inverse pair, ObservedAt keeps the inverse quote's
// own timestamp as provenance.
type RateQuote struct {
	BaseCurrency  string          `db:"base_currency" json:"base_currency"`
	QuoteCurrency string          `db:"quote_currency" json:"quote_currency"`
	Rate          decimal.Decimal `db:"rate" json:"rate"`
	ObservedAt    time.Time       `db:"observed_at" json:"observed_at"`
}
