package models

import "github.com/shopspring/decimal"

// minorUnits lists currencies whose minor-unit count differs from the
// ISO-4217 default of 2.
var minorUnits = map[string]int32{
	"JPY": 0,
	"KRW": 0,
	"VND": 0,
	"BHD": 3,
	"KWD": 3,
	"OMR": 3,
	"TND": 3,
}

// ValidCurrencyCode reports whether code looks like an ISO-4217 code:
// exactly three uppercase ASCII letters.
func ValidCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for i := 0; i < 3; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

// MinorUnits returns the number of decimal places amounts in the given
// currency may carry.
func MinorUnits(code string) int32 {
	if units, ok := minorUnits[code]; ok {
		return units
	}
	return 2
}

// AmountFitsCurrency reports whether amount is exactly representable at the
// currency's minor-unit precision. Amounts that would lose precision are
// rejected rather than silently rounded.
func AmountFitsCurrency(amount decimal.Decimal, code string) bool {
	units := MinorUnits(code)
	return amount.Equal(amount.Truncate(units))
}
