// Package primitives provides the checked fixed-point arithmetic used by
// every other layer: 128-bit unsigned values, multiply-divide through a
// 256-bit intermediate with explicit rounding, and the Q64.64 √price
// conversions. All curve and fee math is expressed in terms of these
// helpers so that rounding direction is always stated at the call site.
package primitives

import (
	"errors"

	"github.com/holiman/uint256"
	"lukechampine.com/uint128"
)

var (
	// ErrMathOverflow indicates a result that does not fit the target width.
	ErrMathOverflow = errors.New("math overflow")
	// ErrMathUnderflow indicates a subtraction with b > a.
	ErrMathUnderflow = errors.New("math underflow")
	// ErrDivByZero indicates a division with a zero denominator.
	ErrDivByZero = errors.New("division by zero")
	// ErrInvalidShift indicates a shift amount above 127 bits.
	ErrInvalidShift = errors.New("shift amount exceeds 127 bits")
	// ErrInvalidPrice indicates a non-positive price input.
	ErrInvalidPrice = errors.New("price must be positive")
)

// Rounding selects the direction a division truncates toward.
// Output amounts round down, amounts charged to the user round up.
type Rounding int

const (
	// RoundDown truncates toward zero.
	RoundDown Rounding = iota
	// RoundUp rounds away from zero when the division is inexact.
	RoundUp
)

// U256 widens a 128-bit value to a 256-bit one.
func U256(x uint128.Uint128) *uint256.Int {
	return &uint256.Int{x.Lo, x.Hi, 0, 0}
}

// U256From64 widens a 64-bit value to a 256-bit one.
func U256From64(x uint64) *uint256.Int {
	return new(uint256.Int).SetUint64(x)
}

// ToU128 narrows a 256-bit value, failing with ErrMathOverflow when the
// value needs more than 128 bits.
func ToU128(x *uint256.Int) (uint128.Uint128, error) {
	if x[2] != 0 || x[3] != 0 {
		return uint128.Zero, ErrMathOverflow
	}
	return uint128.New(x[0], x[1]), nil
}

// ToU64 narrows a 256-bit value, failing with ErrMathOverflow when the
// value needs more than 64 bits.
func ToU64(x *uint256.Int) (uint64, error) {
	if !x.IsUint64() {
		return 0, ErrMathOverflow
	}
	return x.Uint64(), nil
}

// CheckedAdd returns a+b or ErrMathOverflow.
func CheckedAdd(a, b uint128.Uint128) (uint128.Uint128, error) {
	sum := a.AddWrap(b)
	if sum.Cmp(a) < 0 {
		return uint128.Zero, ErrMathOverflow
	}
	return sum, nil
}

// CheckedSub returns a-b or ErrMathUnderflow when b > a.
func CheckedSub(a, b uint128.Uint128) (uint128.Uint128, error) {
	if b.Cmp(a) > 0 {
		return uint128.Zero, ErrMathUnderflow
	}
	return a.Sub(b), nil
}

// CheckedMul returns a*b or ErrMathOverflow.
func CheckedMul(a, b uint128.Uint128) (uint128.Uint128, error) {
	p, overflow := new(uint256.Int).MulOverflow(U256(a), U256(b))
	if overflow {
		return uint128.Zero, ErrMathOverflow
	}
	return ToU128(p)
}

// CheckedDiv returns ⌊a/b⌋ or ErrDivByZero.
func CheckedDiv(a, b uint128.Uint128) (uint128.Uint128, error) {
	if b.IsZero() {
		return uint128.Zero, ErrDivByZero
	}
	return a.Div(b), nil
}

// CheckedMod returns a mod b or ErrDivByZero.
func CheckedMod(a, b uint128.Uint128) (uint128.Uint128, error) {
	if b.IsZero() {
		return uint128.Zero, ErrDivByZero
	}
	return a.Mod(b), nil
}

// Shl shifts a left by bits, failing when bits > 127 or when set bits
// would be shifted out of the 128-bit range.
func Shl(a uint128.Uint128, bits uint) (uint128.Uint128, error) {
	if bits > 127 {
		return uint128.Zero, ErrInvalidShift
	}
	shifted := a.Lsh(bits)
	if shifted.Rsh(bits) != a {
		return uint128.Zero, ErrMathOverflow
	}
	return shifted, nil
}

// Shr shifts a right by bits, failing when bits > 127.
func Shr(a uint128.Uint128, bits uint) (uint128.Uint128, error) {
	if bits > 127 {
		return uint128.Zero, ErrInvalidShift
	}
	return a.Rsh(bits), nil
}

// MulDiv computes x*y/denom with the requested rounding. The product is
// carried in 256 bits; the call fails with ErrMathOverflow when x*y does
// not fit 256 bits and with ErrDivByZero when denom is zero.
func MulDiv(x, y, denom *uint256.Int, rounding Rounding) (*uint256.Int, error) {
	if denom.IsZero() {
		return nil, ErrDivByZero
	}
	product, overflow := new(uint256.Int).MulOverflow(x, y)
	if overflow {
		return nil, ErrMathOverflow
	}
	rem := new(uint256.Int)
	quot := new(uint256.Int)
	quot.DivMod(product, denom, rem)
	if rounding == RoundUp && !rem.IsZero() {
		quot.AddUint64(quot, 1)
	}
	return quot, nil
}

// MulDivU128 is MulDiv over 128-bit operands with a 128-bit result.
func MulDivU128(x, y, denom uint128.Uint128, rounding Rounding) (uint128.Uint128, error) {
	q, err := MulDiv(U256(x), U256(y), U256(denom), rounding)
	if err != nil {
		return uint128.Zero, err
	}
	return ToU128(q)
}

// SafeMulDivU64 is MulDiv over 64-bit operands, failing with
// ErrMathOverflow when the result exceeds the 64-bit range.
func SafeMulDivU64(x, y, denom uint64, rounding Rounding) (uint64, error) {
	q, err := MulDiv(U256From64(x), U256From64(y), U256From64(denom), rounding)
	if err != nil {
		return 0, err
	}
	return ToU64(q)
}

// MulShr computes (x*y)>>offset with the requested rounding.
func MulShr(x, y uint128.Uint128, offset uint, rounding Rounding) (uint128.Uint128, error) {
	if offset > 255 {
		return uint128.Zero, ErrInvalidShift
	}
	product, overflow := new(uint256.Int).MulOverflow(U256(x), U256(y))
	if overflow {
		return uint128.Zero, ErrMathOverflow
	}
	shifted := new(uint256.Int).Rsh(product, offset)
	if rounding == RoundUp {
		back := new(uint256.Int).Lsh(shifted, offset)
		if !back.Eq(product) {
			shifted.AddUint64(shifted, 1)
		}
	}
	return ToU128(shifted)
}

// ShlDiv computes (x<<offset)/denom with the requested rounding.
func ShlDiv(x uint128.Uint128, offset uint, denom uint128.Uint128, rounding Rounding) (uint128.Uint128, error) {
	if offset > 128 {
		return uint128.Zero, ErrInvalidShift
	}
	if denom.IsZero() {
		return uint128.Zero, ErrDivByZero
	}
	numer := new(uint256.Int).Lsh(U256(x), offset)
	rem := new(uint256.Int)
	quot := new(uint256.Int)
	quot.DivMod(numer, U256(denom), rem)
	if rounding == RoundUp && !rem.IsZero() {
		quot.AddUint64(quot, 1)
	}
	return ToU128(quot)
}
