// Package fees implements the trading-fee curves of the launchpad: the
// decaying base-fee scheduler, the size-based rate limiter, the
// volatility-indexed dynamic fee, and the protocol/referral split.
package fees

import (
	"errors"
)

// Fee arithmetic constants. Numerators are expressed against
// FeeDenominator; MaxFeeNumerator is a hard 50% cap.
const (
	FeeDenominator  uint64 = 1_000_000_000
	MaxFeeNumerator uint64 = 500_000_000
	BasisPointMax   uint64 = 10_000
)

var (
	// ErrInvalidFeeMode indicates an unknown fee-collection mode.
	ErrInvalidFeeMode = errors.New("invalid fee mode")
	// ErrInvalidFeeScheduler indicates a malformed fee-scheduler config.
	ErrInvalidFeeScheduler = errors.New("invalid fee scheduler")
	// ErrRateLimiterInvalid indicates a malformed rate-limiter config.
	ErrRateLimiterInvalid = errors.New("invalid rate limiter")
)

// TradeDirection identifies which side of the pair is being sold.
type TradeDirection uint8

const (
	// DirectionBaseToQuote sells base tokens for quote tokens.
	DirectionBaseToQuote TradeDirection = iota
	// DirectionQuoteToBase sells quote tokens for base tokens.
	DirectionQuoteToBase
)

// CollectFeeMode selects the token(s) fees are collected in.
type CollectFeeMode uint8

const (
	// CollectFeeQuoteOnly collects fees in the quote token only.
	CollectFeeQuoteOnly CollectFeeMode = iota
	// CollectFeeBoth collects fees in the output token of the trade.
	CollectFeeBoth
)

// BpsToFeeNumerator converts basis points to a fee numerator.
func BpsToFeeNumerator(bps uint64) uint64 {
	return bps * FeeDenominator / BasisPointMax
}

// FeeMode resolves where fees are taken for one trade.
type FeeMode struct {
	FeesOnInput     bool
	FeesOnBaseToken bool
}

// GetFeeMode maps (collect mode, direction) onto a FeeMode.
//
//	QuoteOnly base→quote: fees on output (quote)
//	QuoteOnly quote→base: fees on input  (quote)
//	Both      base→quote: fees on output (quote)
//	Both      quote→base: fees on output (base)
func GetFeeMode(mode CollectFeeMode, direction TradeDirection) (FeeMode, error) {
	switch mode {
	case CollectFeeQuoteOnly:
		if direction == DirectionQuoteToBase {
			return FeeMode{FeesOnInput: true, FeesOnBaseToken: false}, nil
		}
		return FeeMode{}, nil
	case CollectFeeBoth:
		if direction == DirectionQuoteToBase {
			return FeeMode{FeesOnInput: false, FeesOnBaseToken: true}, nil
		}
		return FeeMode{}, nil
	default:
		return FeeMode{}, ErrInvalidFeeMode
	}
}
