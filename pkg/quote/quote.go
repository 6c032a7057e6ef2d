// Package quote answers swap quotes against a pool configuration: it walks
// the piecewise curve in either direction, applies the fee schedule in the
// configured collection mode, and reports the resulting amounts and price.
package quote

import (
	"errors"

	"github.com/holiman/uint256"
	"github.com/rs/zerolog/log"
	"lukechampine.com/uint128"

	"github.com/launchkit/go-bonding-curve-toolkit/pkg/config"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/curve"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/fees"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/primitives"
)

// ErrNotEnoughLiquidity indicates an input the curve cannot absorb.
var ErrNotEnoughLiquidity = errors.New("not enough liquidity")

// VirtualPool is the live state a quote is computed against.
type VirtualPool struct {
	SqrtPrice         uint128.Uint128
	BaseReserve       uint64
	QuoteReserve      uint64
	ActivationPoint   uint64
	PoolType          uint8
	VolatilityTracker fees.VolatilityTracker
}

// Result is one computed swap quote.
type Result struct {
	ActualInputAmount uint64
	OutputAmount      uint64
	NextSqrtPrice     uint128.Uint128
	TradingFee        uint64
	ProtocolFee       uint64
	ReferralFee       uint64
}

// SwapQuote quotes a swap of amountIn in the given direction. When the
// input exhausts the curve the remainder is dropped and the partial result
// returned, mirroring the on-chain behaviour; a warning is logged.
func SwapQuote(pool *VirtualPool, cfg *config.PoolConfig, direction fees.TradeDirection, amountIn uint64, hasReferral bool, currentPoint uint64) (Result, error) {
	return swapQuote(pool, cfg, direction, amountIn, hasReferral, currentPoint, false)
}

// SwapQuoteExact is the strict variant: an input the curve cannot fully
// absorb fails with ErrNotEnoughLiquidity.
func SwapQuoteExact(pool *VirtualPool, cfg *config.PoolConfig, direction fees.TradeDirection, amountIn uint64, hasReferral bool, currentPoint uint64) (Result, error) {
	return swapQuote(pool, cfg, direction, amountIn, hasReferral, currentPoint, true)
}

func swapQuote(pool *VirtualPool, cfg *config.PoolConfig, direction fees.TradeDirection, amountIn uint64, hasReferral bool, currentPoint uint64, strict bool) (Result, error) {
	if len(cfg.Curve) == 0 {
		return Result{}, curve.ErrInvalidCurve
	}
	feeMode, err := fees.GetFeeMode(cfg.CollectFeeMode, direction)
	if err != nil {
		return Result{}, err
	}

	var result Result
	amountAfterFee := amountIn
	if feeMode.FeesOnInput {
		charged, err := cfg.PoolFees.FeeOnAmount(amountIn, pool.VolatilityTracker, hasReferral, currentPoint, pool.ActivationPoint, direction)
		if err != nil {
			return Result{}, err
		}
		amountAfterFee = charged.Amount
		result.TradingFee = charged.TradingFee
		result.ProtocolFee = charged.ProtocolFee
		result.ReferralFee = charged.ReferralFee
	}

	var output uint64
	var next uint128.Uint128
	var leftover uint64
	switch direction {
	case fees.DirectionQuoteToBase:
		output, next, leftover, err = swapQuoteToBase(cfg.Curve, pool.SqrtPrice, amountAfterFee)
	case fees.DirectionBaseToQuote:
		output, next, leftover, err = swapBaseToQuote(cfg.Curve, cfg.SqrtStartPrice, pool.SqrtPrice, amountAfterFee)
	default:
		return Result{}, fees.ErrInvalidFeeMode
	}
	if err != nil {
		return Result{}, err
	}
	if leftover > 0 {
		if strict {
			return Result{}, ErrNotEnoughLiquidity
		}
		log.Warn().
			Uint64("amount_in", amountIn).
			Uint64("leftover", leftover).
			Msg("curve exhausted, returning partial quote")
	}

	if !feeMode.FeesOnInput {
		charged, err := cfg.PoolFees.FeeOnAmount(output, pool.VolatilityTracker, hasReferral, currentPoint, pool.ActivationPoint, direction)
		if err != nil {
			return Result{}, err
		}
		output = charged.Amount
		result.TradingFee = charged.TradingFee
		result.ProtocolFee = charged.ProtocolFee
		result.ReferralFee = charged.ReferralFee
	}

	result.ActualInputAmount = amountIn - leftover
	result.OutputAmount = output
	result.NextSqrtPrice = next
	return result, nil
}

// swapQuoteToBase walks the curve upward. Inside the final segment the
// output is Δbase with the exact (unrounded) Δ√price substituted:
// amountIn·2^128 / (√P·√P_next), rounded down.
func swapQuoteToBase(points []curve.Point, sqrtPrice uint128.Uint128, amountIn uint64) (uint64, uint128.Uint128, uint64, error) {
	total := uint128.Zero
	current := sqrtPrice
	left := amountIn
	for i := 0; i < len(points) && left > 0; i++ {
		if points[i].SqrtPrice.Cmp(current) <= 0 {
			continue
		}
		liquidity := points[i].Liquidity
		maxIn, err := curve.DeltaQuote(current, points[i].SqrtPrice, liquidity, primitives.RoundUp)
		if err != nil {
			return 0, uint128.Zero, 0, err
		}
		if uint128.From64(left).Cmp(maxIn) < 0 {
			next, err := curve.NextSqrtPriceFromInput(current, liquidity, left, false)
			if err != nil {
				return 0, uint128.Zero, 0, err
			}
			out, err := partialBaseOut(left, current, next)
			if err != nil {
				return 0, uint128.Zero, 0, err
			}
			total, err = primitives.CheckedAdd(total, out)
			if err != nil {
				return 0, uint128.Zero, 0, err
			}
			current = next
			left = 0
			break
		}
		out, err := curve.DeltaBase(current, points[i].SqrtPrice, liquidity, primitives.RoundDown)
		if err != nil {
			return 0, uint128.Zero, 0, err
		}
		total, err = primitives.CheckedAdd(total, out)
		if err != nil {
			return 0, uint128.Zero, 0, err
		}
		left -= maxIn.Lo
		current = points[i].SqrtPrice
	}
	if total.Hi != 0 {
		return 0, uint128.Zero, 0, primitives.ErrMathOverflow
	}
	return total.Lo, current, left, nil
}

func partialBaseOut(amountIn uint64, sqrtPrice, nextSqrtPrice uint128.Uint128) (uint128.Uint128, error) {
	denom, overflow := new(uint256.Int).MulOverflow(primitives.U256(sqrtPrice), primitives.U256(nextSqrtPrice))
	if overflow {
		return uint128.Zero, primitives.ErrMathOverflow
	}
	numer := new(uint256.Int).Lsh(primitives.U256From64(amountIn), 128)
	out := new(uint256.Int).Div(numer, denom)
	return primitives.ToU128(out)
}

// swapBaseToQuote walks the curve downward from the current price. Below
// the start price the first segment's liquidity absorbs any remainder, so
// a base→quote quote always consumes its full input.
func swapBaseToQuote(points []curve.Point, sqrtStartPrice, sqrtPrice uint128.Uint128, amountIn uint64) (uint64, uint128.Uint128, uint64, error) {
	total := uint128.Zero
	current := sqrtPrice
	left := amountIn

	// active segment: the lowest one whose upper bound covers the price
	active := len(points) - 1
	for i := range points {
		if current.Cmp(points[i].SqrtPrice) <= 0 {
			active = i
			break
		}
	}

	for i := active; i >= 0 && left > 0; i-- {
		lower := sqrtStartPrice
		if i > 0 {
			lower = points[i-1].SqrtPrice
		}
		liquidity := points[i].Liquidity
		if lower.Cmp(current) >= 0 {
			continue
		}
		maxIn, err := curve.DeltaBase(lower, current, liquidity, primitives.RoundUp)
		if err != nil {
			return 0, uint128.Zero, 0, err
		}
		if uint128.From64(left).Cmp(maxIn) < 0 {
			next, err := curve.NextSqrtPriceFromInput(current, liquidity, left, true)
			if err != nil {
				return 0, uint128.Zero, 0, err
			}
			out, err := curve.DeltaQuote(next, current, liquidity, primitives.RoundDown)
			if err != nil {
				return 0, uint128.Zero, 0, err
			}
			total, err = primitives.CheckedAdd(total, out)
			if err != nil {
				return 0, uint128.Zero, 0, err
			}
			current = next
			left = 0
			break
		}
		out, err := curve.DeltaQuote(lower, current, liquidity, primitives.RoundDown)
		if err != nil {
			return 0, uint128.Zero, 0, err
		}
		total, err = primitives.CheckedAdd(total, out)
		if err != nil {
			return 0, uint128.Zero, 0, err
		}
		left -= maxIn.Lo
		current = lower
	}

	if left > 0 {
		// below the start price the first segment's liquidity takes over
		next, err := curve.NextSqrtPriceFromInput(current, points[0].Liquidity, left, true)
		if err != nil {
			return 0, uint128.Zero, 0, err
		}
		out, err := curve.DeltaQuote(next, current, points[0].Liquidity, primitives.RoundDown)
		if err != nil {
			return 0, uint128.Zero, 0, err
		}
		total, err = primitives.CheckedAdd(total, out)
		if err != nil {
			return 0, uint128.Zero, 0, err
		}
		current = next
		left = 0
	}

	if total.Hi != 0 {
		return 0, uint128.Zero, 0, primitives.ErrMathOverflow
	}
	return total.Lo, current, left, nil
}
