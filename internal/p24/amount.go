package p24

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred       = decimal.NewFromInt(100)
	maxMinorUnits = decimal.NewFromInt(math.MaxInt64)
)

// MinorUnits converts a decimal amount string ("29.95") into grosze (2995).
// A blank amount normalizes to 0.
func MinorUnits(amount string) (int64, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return 0, nil
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, amount)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative value %q", ErrInvalidAmount, amount)
	}

	return MinorUnitsOf(d)
}

// MinorUnitsOf rounds to two places before scaling so both signing paths
// agree on the same integer. Results outside int64 are rejected.
func MinorUnitsOf(d decimal.Decimal) (int64, error) {
	scaled := d.Round(2).Mul(hundred)
	if scaled.IsNegative() {
		return 0, fmt.Errorf("%w: negative value %s", ErrInvalidAmount, d)
	}
	if scaled.GreaterThan(maxMinorUnits) {
		return 0, fmt.Errorf("%w: %s exceeds the largest representable amount", ErrInvalidAmount, d)
	}
	return scaled.IntPart(), nil
}
