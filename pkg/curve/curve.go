// Package curve implements the concentrated-liquidity price math for a
// piecewise-constant-liquidity bonding curve on a Q64.64 √price grid.
//
// Within one segment of constant liquidity L the usual identities hold:
//
//	Δquote = L · Δ√P / 2^128
//	Δbase  = L · Δ√P / (√P_low · √P_high)
//
// so a quote input moves √price linearly in the input amount, while a base
// input moves 1/√price linearly.
package curve

import (
	"errors"

	"lukechampine.com/uint128"
)

// Price-grid bounds for the Q64.64 √price domain.
var (
	// MinSqrtPrice is the lowest representable √price.
	MinSqrtPrice = uint128.From64(4295048016)
	// MaxSqrtPrice is the highest representable √price, just under 2^96.
	MaxSqrtPrice = uint128.New(9537527425331189659, 4294886577) // 79226673521066979257578248091
)

var (
	// ErrInvalidSqrtPrice indicates a √price outside [MinSqrtPrice, MaxSqrtPrice].
	ErrInvalidSqrtPrice = errors.New("sqrt price out of range")
	// ErrInvalidCurve indicates an empty, oversized, unordered, or
	// zero-liquidity curve.
	ErrInvalidCurve = errors.New("invalid curve")
)

// Point is one segment boundary of the piecewise curve. Segment i spans
// (curve[i-1].SqrtPrice, curve[i].SqrtPrice] with liquidity
// curve[i].Liquidity; segment 0 starts at the pool's start √price.
type Point struct {
	SqrtPrice uint128.Uint128
	Liquidity uint128.Uint128
}
