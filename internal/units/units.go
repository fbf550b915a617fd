// Package units converts between human decimal amounts ("0.1") and the
// integer base units a contract works with. All arithmetic is exact.
package units

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultDecimals is the precision of the native currency on every EVM chain
// in the registry.
const DefaultDecimals int32 = 18

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrTooPrecise     = errors.New("amount has more fractional digits than the token precision")
)

// ToBase converts a human decimal string into base units.
func ToBase(human string, decimals int32) (*big.Int, error) {
	s := strings.TrimSpace(human)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAmount, human)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrNegativeAmount, human)
	}
	if !d.Equal(d.Truncate(decimals)) {
		return nil, fmt.Errorf("%w: %s (max %d)", ErrTooPrecise, human, decimals)
	}
	return d.Shift(decimals).BigInt(), nil
}

// MustToBase is ToBase for constants known to be valid.
func MustToBase(human string, decimals int32) *big.Int {
	v, err := ToBase(human, decimals)
	if err != nil {
		panic(err)
	}
	return v
}

// FromBase renders base units as the shortest exact decimal string.
// A nil amount renders as "0".
func FromBase(amount *big.Int, decimals int32) string {
	if amount == nil {
		return "0"
	}
	return decimal.NewFromBigInt(amount, -decimals).String()
}

// FromBaseFixed renders base units with exactly places fractional digits,
// rounding half away from zero. Display only.
func FromBaseFixed(amount *big.Int, decimals, places int32) string {
	if amount == nil {
		amount = new(big.Int)
	}
	return decimal.NewFromBigInt(amount, -decimals).StringFixed(places)
}

// Percent returns floor(amount * pct / 100), the share the contract transfers
// for a percentage.
func Percent(amount *big.Int, pct uint8) *big.Int {
	out := new(big.Int).Mul(amount, big.NewInt(int64(pct)))
	return out.Quo(out, big.NewInt(100))
}
