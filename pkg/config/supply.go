package config

import (
	"errors"

	"github.com/holiman/uint256"
	"lukechampine.com/uint128"

	"github.com/launchkit/go-bonding-curve-toolkit/pkg/curve"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/primitives"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/vesting"
)

// swapBufferPercent pads the swap base amount so rounding during live
// trading can never leave the pool short.
const swapBufferPercent = 25

// ErrCurveExhausted indicates a quote threshold the curve cannot absorb.
var ErrCurveExhausted = errors.New("curve cannot absorb quote threshold")

// MigrationBaseToken returns the base-token amount that seeds the migrated
// pool at the migration √price for the given quote threshold.
//
// DAMM v1 deposits at the spot price: ⌈threshold·2^128 / √P²⌉. DAMM v2
// seeds a concentrated position from the minimum price, so the deposit is
// the δ-base of that position's liquidity up to the top of the grid.
func MigrationBaseToken(quoteThreshold uint64, sqrtMigrationPrice uint128.Uint128, option MigrationOption) (uint64, error) {
	switch option {
	case MigrationDammV1:
		price, overflow := new(uint256.Int).MulOverflow(
			primitives.U256(sqrtMigrationPrice), primitives.U256(sqrtMigrationPrice))
		if overflow {
			return 0, primitives.ErrMathOverflow
		}
		numer := new(uint256.Int).Lsh(primitives.U256From64(quoteThreshold), 128)
		rem := new(uint256.Int)
		quot := new(uint256.Int)
		quot.DivMod(numer, price, rem)
		if !rem.IsZero() {
			quot.AddUint64(quot, 1)
		}
		return primitives.ToU64(quot)
	case MigrationDammV2:
		liquidity, err := curve.InitialLiquidityFromDeltaQuote(quoteThreshold, curve.MinSqrtPrice, sqrtMigrationPrice)
		if err != nil {
			return 0, err
		}
		base, err := curve.DeltaBase(sqrtMigrationPrice, curve.MaxSqrtPrice, liquidity, primitives.RoundUp)
		if err != nil {
			return 0, err
		}
		if base.Hi != 0 {
			return 0, primitives.ErrMathOverflow
		}
		return base.Lo, nil
	default:
		return 0, ErrInvalidMigrationAndTokenType
	}
}

// BaseTokenForSwap integrates δ-base over the curve between two √prices,
// rounding each segment up so the reserved amount always covers the swaps.
func BaseTokenForSwap(sqrtStartPrice, sqrtMigrationPrice uint128.Uint128, points []curve.Point) (uint128.Uint128, error) {
	total := uint128.Zero
	lower := sqrtStartPrice
	for i := range points {
		upper := points[i].SqrtPrice
		if upper.Cmp(sqrtMigrationPrice) > 0 {
			upper = sqrtMigrationPrice
		}
		if upper.Cmp(lower) <= 0 {
			continue
		}
		amount, err := curve.DeltaBase(lower, upper, points[i].Liquidity, primitives.RoundUp)
		if err != nil {
			return uint128.Zero, err
		}
		var addErr error
		total, addErr = primitives.CheckedAdd(total, amount)
		if addErr != nil {
			return uint128.Zero, addErr
		}
		lower = upper
		if upper.Cmp(sqrtMigrationPrice) == 0 {
			break
		}
	}
	return total, nil
}

// MigrationThresholdPrice walks the curve upward from the start price and
// returns the √price at which the accumulated quote reaches the threshold.
func MigrationThresholdPrice(quoteThreshold uint64, sqrtStartPrice uint128.Uint128, points []curve.Point) (uint128.Uint128, error) {
	left := uint128.From64(quoteThreshold)
	current := sqrtStartPrice
	for i := range points {
		if points[i].SqrtPrice.Cmp(current) <= 0 {
			continue
		}
		maxQuote, err := curve.DeltaQuote(current, points[i].SqrtPrice, points[i].Liquidity, primitives.RoundUp)
		if err != nil {
			return uint128.Zero, err
		}
		if left.Cmp(maxQuote) <= 0 {
			if left.Hi != 0 {
				return uint128.Zero, primitives.ErrMathOverflow
			}
			return curve.NextSqrtPriceFromInput(current, points[i].Liquidity, left.Lo, false)
		}
		left = left.Sub(maxQuote)
		current = points[i].SqrtPrice
	}
	return uint128.Zero, ErrCurveExhausted
}

// SwapAmountWithBuffer pads the swap base amount by swapBufferPercent,
// capped at the maximum base the curve can hold from the start price to the
// top of the grid.
func SwapAmountWithBuffer(swapBaseAmount, sqrtStartPrice uint128.Uint128, points []curve.Point) (uint128.Uint128, error) {
	pad, err := primitives.MulDivU128(swapBaseAmount, uint128.From64(swapBufferPercent), uint128.From64(100), primitives.RoundDown)
	if err != nil {
		return uint128.Zero, err
	}
	buffered, err := primitives.CheckedAdd(swapBaseAmount, pad)
	if err != nil {
		return uint128.Zero, err
	}
	maxOnCurve, err := BaseTokenForSwap(sqrtStartPrice, curve.MaxSqrtPrice, points)
	if err != nil {
		return uint128.Zero, err
	}
	if buffered.Cmp(maxOnCurve) > 0 {
		return maxOnCurve, nil
	}
	return buffered, nil
}

// MinimumBaseSupply returns the least base supply that backs the curve:
// swap amount (optionally buffered), migration deposit, and vesting.
func MinimumBaseSupply(
	quoteThreshold uint64,
	sqrtStartPrice uint128.Uint128,
	points []curve.Point,
	lockedVesting vesting.LockedVesting,
	option MigrationOption,
	buffered bool,
) (uint128.Uint128, error) {
	sqrtMigrationPrice, err := MigrationThresholdPrice(quoteThreshold, sqrtStartPrice, points)
	if err != nil {
		return uint128.Zero, err
	}
	swapBase, err := BaseTokenForSwap(sqrtStartPrice, sqrtMigrationPrice, points)
	if err != nil {
		return uint128.Zero, err
	}
	if buffered {
		swapBase, err = SwapAmountWithBuffer(swapBase, sqrtStartPrice, points)
		if err != nil {
			return uint128.Zero, err
		}
	}
	migrationBase, err := MigrationBaseToken(quoteThreshold, sqrtMigrationPrice, option)
	if err != nil {
		return uint128.Zero, err
	}
	total, err := primitives.CheckedAdd(swapBase, uint128.From64(migrationBase))
	if err != nil {
		return uint128.Zero, err
	}
	return primitives.CheckedAdd(total, vesting.GetTotalVestingAmount(lockedVesting))
}

// TotalSupplyFromCurve returns the buffered minimum base supply for the
// configuration: the figure a pre-migration mint must cover.
func TotalSupplyFromCurve(
	quoteThreshold uint64,
	sqrtStartPrice uint128.Uint128,
	points []curve.Point,
	lockedVesting vesting.LockedVesting,
	option MigrationOption,
) (uint128.Uint128, error) {
	return MinimumBaseSupply(quoteThreshold, sqrtStartPrice, points, lockedVesting, option, true)
}
