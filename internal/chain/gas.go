package chain

import (
	"math/big"

	"github.com/Mohsinsiddi/w3raffle/internal/units"
)

// GweiDecimals is the base-unit exponent of one gwei.
const GweiDecimals int32 = 9

// FeeCaps derives EIP-1559 caps from the node's suggestions: the fee cap is
// twice the suggested gas price and the tip never exceeds it.
func FeeCaps(tip, gasPrice *big.Int) (tipCap, feeCap *big.Int) {
	feeCap = new(big.Int).Mul(gasPrice, big.NewInt(2))
	tipCap = new(big.Int).Set(tip)
	if tipCap.Cmp(feeCap) > 0 {
		tipCap.Set(feeCap)
	}
	return tipCap, feeCap
}

// PadGas scales a gas estimate by pct percent (120 adds a 20% margin).
// Values below 100 leave the estimate unchanged.
func PadGas(estimate uint64, pct uint64) uint64 {
	if pct <= 100 {
		return estimate
	}
	padded := new(big.Int).Mul(new(big.Int).SetUint64(estimate), new(big.Int).SetUint64(pct))
	padded.Quo(padded, big.NewInt(100))
	if !padded.IsUint64() {
		return estimate
	}
	return padded.Uint64()
}

// FormatGwei renders a wei amount in gwei without float rounding.
func FormatGwei(wei *big.Int) string {
	return units.FromBase(wei, GweiDecimals)
}

// MaxCost is the upper bound a transaction can spend: gas * feeCap + value.
func MaxCost(gas uint64, feeCap, value *big.Int) *big.Int {
	cost := new(big.Int).Mul(new(big.Int).SetUint64(gas), feeCap)
	if value != nil {
		cost.Add(cost, value)
	}
	return cost
}
