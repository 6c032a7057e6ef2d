package primitives

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/shopspring/decimal"
	"lukechampine.com/uint128"
)

// pricePrecision is the number of fractional digits carried when dividing
// back out of the Q64.64 domain. Round-trips hold to well past 15 decimals.
const pricePrecision = 40

// SqrtPriceFromPrice converts a human-readable price (quote tokens per base
// token) into a Q64.64 √price over atomic units:
//
//	⌊√(price · 10^(quoteDecimal−baseDecimal)) · 2^64⌋
//
// The conversion is exact: the scaled price is widened to an integer with a
// 2^128 factor and the floor integer square root is taken, so no binary
// floating point is involved.
func SqrtPriceFromPrice(price decimal.Decimal, baseDecimal, quoteDecimal uint8) (uint128.Uint128, error) {
	if price.Sign() <= 0 {
		return uint128.Zero, ErrInvalidPrice
	}
	scaled := price.Shift(int32(quoteDecimal) - int32(baseDecimal))
	widened := scaled.Mul(decimal.NewFromBigInt(math.BigPow(2, 128), 0)).BigInt()
	root := new(big.Int).Sqrt(widened)
	if root.BitLen() > 128 {
		return uint128.Zero, ErrMathOverflow
	}
	return uint128.FromBig(root), nil
}

// PriceFromSqrtPrice inverts SqrtPriceFromPrice, returning the
// human-readable price for a Q64.64 atomic √price.
func PriceFromSqrtPrice(sqrtPrice uint128.Uint128, baseDecimal, quoteDecimal uint8) decimal.Decimal {
	q64 := decimal.NewFromBigInt(math.BigPow(2, 64), 0)
	ratio := decimal.NewFromBigInt(sqrtPrice.Big(), 0).DivRound(q64, pricePrecision)
	return ratio.Mul(ratio).Shift(int32(baseDecimal) - int32(quoteDecimal))
}
