package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var centsFactor = decimal.NewFromInt(100)

// ParseMoney converts a decimal amount (e.g. "19.99") into integer cents.
// Amounts with sub-cent precision are rejected rather than rounded.
func ParseMoney(amount decimal.Decimal) (int, error) {
	cents := amount.Mul(centsFactor)
	if !cents.IsInteger() {
		return 0, fmt.Errorf("amount %s has sub-cent precision", amount.String())
	}
	if !cents.BigInt().IsInt64() {
		return 0, fmt.Errorf("amount %s out of range", amount.String())
	}
	return int(cents.IntPart()), nil
}

// FormatMoney renders integer cents as a two-decimal amount.
func FormatMoney(cents int) decimal.Decimal {
	return decimal.NewFromInt(int64(cents)).Div(centsFactor)
}
