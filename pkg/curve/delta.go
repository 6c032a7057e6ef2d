package curve

import (
	"math/big"

	"github.com/holiman/uint256"
	"lukechampine.com/uint128"

	"github.com/launchkit/go-bonding-curve-toolkit/pkg/primitives"
)

// DeltaBase returns the base-token amount held between two √prices at the
// given liquidity:
//
//	Δbase = L · (√P_high − √P_low) / (√P_low · √P_high)
//
// Rounding is part of the contract: amounts paid out round down, amounts
// charged round up.
func DeltaBase(lower, upper, liquidity uint128.Uint128, rounding primitives.Rounding) (uint128.Uint128, error) {
	diff, err := primitives.CheckedSub(upper, lower)
	if err != nil {
		return uint128.Zero, err
	}
	denom, overflow := new(uint256.Int).MulOverflow(primitives.U256(lower), primitives.U256(upper))
	if overflow {
		return uint128.Zero, primitives.ErrMathOverflow
	}
	q, err := primitives.MulDiv(primitives.U256(liquidity), primitives.U256(diff), denom, rounding)
	if err != nil {
		return uint128.Zero, err
	}
	return primitives.ToU128(q)
}

// DeltaQuote returns the quote-token amount held between two √prices at the
// given liquidity:
//
//	Δquote = L · (√P_high − √P_low) / 2^128
//
// rounded up when requested and the product is not a multiple of 2^128.
func DeltaQuote(lower, upper, liquidity uint128.Uint128, rounding primitives.Rounding) (uint128.Uint128, error) {
	diff, err := primitives.CheckedSub(upper, lower)
	if err != nil {
		return uint128.Zero, err
	}
	return primitives.MulShr(liquidity, diff, 128, rounding)
}

// NextSqrtPriceFromInput returns the √price reached after swapping amountIn
// into a segment of the given liquidity.
//
// When the input is base (baseForQuote), the price falls:
//
//	√P' = L · √P / (L + Δ·√P)   rounded up
//
// so the pool never pays out more base than the math allows. When the input
// is quote, the price rises linearly:
//
//	√P' = √P + Δ·2^128 / L   rounded down
func NextSqrtPriceFromInput(sqrtPrice, liquidity uint128.Uint128, amountIn uint64, baseForQuote bool) (uint128.Uint128, error) {
	if sqrtPrice.IsZero() || liquidity.IsZero() {
		return uint128.Zero, ErrInvalidSqrtPrice
	}
	if baseForQuote {
		product, overflow := new(uint256.Int).MulOverflow(primitives.U256From64(amountIn), primitives.U256(sqrtPrice))
		if overflow {
			return uint128.Zero, primitives.ErrMathOverflow
		}
		denom := new(uint256.Int).Add(primitives.U256(liquidity), product)
		if denom.Lt(product) {
			return uint128.Zero, primitives.ErrMathOverflow
		}
		q, err := primitives.MulDiv(primitives.U256(liquidity), primitives.U256(sqrtPrice), denom, primitives.RoundUp)
		if err != nil {
			return uint128.Zero, err
		}
		return primitives.ToU128(q)
	}
	step, err := primitives.ShlDiv(uint128.From64(amountIn), 128, liquidity, primitives.RoundDown)
	if err != nil {
		return uint128.Zero, err
	}
	return primitives.CheckedAdd(sqrtPrice, step)
}

// InitialLiquidityFromDeltaBase solves the segment liquidity that locks
// baseAmount of base tokens between two √prices:
//
//	L = Δbase · √P_low · √P_high / (√P_high − √P_low)
//
// For arbitrary 128-bit √prices the three-way product can exceed 256 bits,
// so the computation runs over big integers.
func InitialLiquidityFromDeltaBase(baseAmount uint64, sqrtMaxPrice, sqrtMinPrice uint128.Uint128) (uint128.Uint128, error) {
	diff, err := primitives.CheckedSub(sqrtMaxPrice, sqrtMinPrice)
	if err != nil {
		return uint128.Zero, err
	}
	if diff.IsZero() {
		return uint128.Zero, primitives.ErrDivByZero
	}
	numer := new(big.Int).SetUint64(baseAmount)
	numer.Mul(numer, sqrtMinPrice.Big())
	numer.Mul(numer, sqrtMaxPrice.Big())
	numer.Quo(numer, diff.Big())
	if numer.BitLen() > 128 {
		return uint128.Zero, primitives.ErrMathOverflow
	}
	return uint128.FromBig(numer), nil
}

// InitialLiquidityFromDeltaQuote solves the segment liquidity that absorbs
// quoteAmount of quote tokens between two √prices:
//
//	L = Δquote · 2^128 / (√P − √P_min)
func InitialLiquidityFromDeltaQuote(quoteAmount uint64, sqrtMinPrice, sqrtPrice uint128.Uint128) (uint128.Uint128, error) {
	diff, err := primitives.CheckedSub(sqrtPrice, sqrtMinPrice)
	if err != nil {
		return uint128.Zero, err
	}
	return primitives.ShlDiv(uint128.From64(quoteAmount), 128, diff, primitives.RoundDown)
}
