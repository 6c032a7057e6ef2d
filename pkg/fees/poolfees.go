package fees

import (
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/primitives"
)

// PoolFees is the full fee configuration of one pool.
type PoolFees struct {
	BaseFee            BaseFeeConfig
	DynamicFee         DynamicFeeConfig
	ProtocolFeePercent uint8
	ReferralFeePercent uint8
}

// FeeOnAmountResult splits one charged trading fee. TradingFee is the LP
// share after the protocol and referral cuts; Amount is what remains of the
// traded amount.
type FeeOnAmountResult struct {
	Amount      uint64
	TradingFee  uint64
	ProtocolFee uint64
	ReferralFee uint64
}

// FeeOnAmount charges the trading fee on amount and splits it between LPs,
// the protocol, and an optional referral. The gross fee rounds up; the
// protocol and referral cuts round down.
func (p PoolFees) FeeOnAmount(
	amount uint64,
	tracker VolatilityTracker,
	hasReferral bool,
	currentPoint, activationPoint uint64,
	direction TradeDirection,
) (FeeOnAmountResult, error) {
	var totalFee uint64
	var err error

	if p.BaseFee.IsRateLimiterApplied(currentPoint, activationPoint, direction) {
		totalFee, err = p.BaseFee.RateLimiterFee(amount)
		if err != nil {
			return FeeOnAmountResult{}, err
		}
	} else {
		numerator, err := p.BaseFee.FeeNumerator(currentPoint, activationPoint)
		if err != nil {
			return FeeOnAmountResult{}, err
		}
		variable, err := p.DynamicFee.VariableFeeNumerator(tracker)
		if err != nil {
			return FeeOnAmountResult{}, err
		}
		if variable > MaxFeeNumerator {
			variable = MaxFeeNumerator
		}
		numerator += variable
		if numerator > MaxFeeNumerator {
			numerator = MaxFeeNumerator
		}
		totalFee, err = primitives.SafeMulDivU64(amount, numerator, FeeDenominator, primitives.RoundUp)
		if err != nil {
			return FeeOnAmountResult{}, err
		}
	}

	// the 50% cap holds regardless of which curve produced the fee
	feeCap, err := primitives.SafeMulDivU64(amount, MaxFeeNumerator, FeeDenominator, primitives.RoundUp)
	if err != nil {
		return FeeOnAmountResult{}, err
	}
	if totalFee > feeCap {
		totalFee = feeCap
	}

	protocolFee, err := primitives.SafeMulDivU64(totalFee, uint64(p.ProtocolFeePercent), 100, primitives.RoundDown)
	if err != nil {
		return FeeOnAmountResult{}, err
	}
	tradingFee := totalFee - protocolFee

	var referralFee uint64
	if hasReferral {
		referralFee, err = primitives.SafeMulDivU64(protocolFee, uint64(p.ReferralFeePercent), 100, primitives.RoundDown)
		if err != nil {
			return FeeOnAmountResult{}, err
		}
		protocolFee -= referralFee
	}

	return FeeOnAmountResult{
		Amount:      amount - totalFee,
		TradingFee:  tradingFee,
		ProtocolFee: protocolFee,
		ReferralFee: referralFee,
	}, nil
}
