package fees

import (
	"github.com/holiman/uint256"
	"lukechampine.com/uint128"

	"github.com/launchkit/go-bonding-curve-toolkit/pkg/primitives"
)

// variableFeeScale divides the squared volatility term; the +1 rounding is
// folded in as a ceiling add.
const variableFeeScale uint64 = 100_000_000_000

// DynamicFeeConfig parameterises the volatility-indexed fee component.
type DynamicFeeConfig struct {
	Initialized              bool
	BinStep                  uint16
	BinStepU128              uint128.Uint128
	FilterPeriod             uint16
	DecayPeriod              uint16
	ReductionFactor          uint16
	VariableFeeControl       uint32
	MaxVolatilityAccumulator uint32
}

// VolatilityTracker is the runtime side of the dynamic fee: it follows the
// pool's √price and accumulates volatility between trades.
type VolatilityTracker struct {
	LastUpdateTimestamp   uint64
	SqrtPriceReference    uint128.Uint128
	VolatilityAccumulator uint128.Uint128
	VolatilityReference   uint128.Uint128
}

// VariableFeeNumerator returns the dynamic fee numerator for the tracked
// volatility:
//
//	⌈(volatilityAccumulator · binStep)² · variableFeeControl / 10^11⌉
//
// Zero when the dynamic fee is not initialised or switched off.
func (c DynamicFeeConfig) VariableFeeNumerator(tracker VolatilityTracker) (uint64, error) {
	if !c.Initialized || c.VariableFeeControl == 0 {
		return 0, nil
	}
	step, overflow := new(uint256.Int).MulOverflow(
		primitives.U256(tracker.VolatilityAccumulator),
		primitives.U256From64(uint64(c.BinStep)),
	)
	if overflow {
		return 0, primitives.ErrMathOverflow
	}
	square, overflow := new(uint256.Int).MulOverflow(step, step)
	if overflow {
		return 0, primitives.ErrMathOverflow
	}
	scaled, overflow := new(uint256.Int).MulOverflow(square, primitives.U256From64(uint64(c.VariableFeeControl)))
	if overflow {
		return 0, primitives.ErrMathOverflow
	}
	scaled.AddUint64(scaled, variableFeeScale-1)
	scaled.Div(scaled, primitives.U256From64(variableFeeScale))
	return primitives.ToU64(scaled)
}
