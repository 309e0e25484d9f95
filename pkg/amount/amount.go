// Package amount converts between user-facing decimal strings and atomic
// integer amounts. Settlement math never touches floating point; display
// conversion happens in one place so rounding cannot drift between what is
// shown and what is settled.
package amount

import (
	"fmt"

	"github.com/shopspring/decimal"

	"solpay/pkg/types"
)

// DisplayPlaces is the precision used when showing an estimated amount.
const DisplayPlaces = 6

// ToAtomic parses a user-entered decimal amount into the asset's smallest
// unit. The result must be a positive integer that fits in uint64.
func ToAtomic(ui string, decimals int32) (uint64, error) {
	d, err := decimal.NewFromString(ui)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", types.ErrInvalidAmount, ui)
	}
	if d.Sign() <= 0 {
		return 0, fmt.Errorf("%w: amount must be greater than zero", types.ErrInvalidAmount)
	}

	atomic := d.Shift(decimals)
	if !atomic.IsInteger() {
		return 0, fmt.Errorf("%w: %q has more than %d decimal places", types.ErrInvalidAmount, ui, decimals)
	}
	if !atomic.BigInt().IsUint64() {
		return 0, fmt.Errorf("%w: %q is too large", types.ErrInvalidAmount, ui)
	}

	return atomic.BigInt().Uint64(), nil
}

// FromAtomic converts an atomic amount back into a decimal quantity.
func FromAtomic(atomic uint64, decimals int32) decimal.Decimal {
	return decimal.NewFromUint64(atomic).Shift(-decimals)
}

// Format renders an atomic amount for display with a fixed number of
// fractional digits, e.g. 7000000 lamports -> "0.007000".
func Format(atomic uint64, decimals int32) string {
	return FromAtomic(atomic, decimals).StringFixed(DisplayPlaces)
}

// CheckPositive validates an already-atomic output amount before the
// pipeline makes any network call.
func CheckPositive(atomic uint64) error {
	if atomic == 0 {
		return fmt.Errorf("%w: amount must be greater than zero", types.ErrInvalidAmount)
	}
	return nil
}
