package fees

import (
	"fmt"

	"github.com/holiman/uint256"
	"lukechampine.com/uint128"

	"github.com/launchkit/go-bonding-curve-toolkit/pkg/primitives"
)

// BaseFeeMode selects the base-fee curve variant.
type BaseFeeMode uint8

const (
	// FeeSchedulerLinear reduces the fee by a fixed amount per period.
	FeeSchedulerLinear BaseFeeMode = iota
	// FeeSchedulerExponential reduces the fee by a fixed ratio per period.
	FeeSchedulerExponential
	// FeeRateLimiter raises the fee with trade size above a reference amount.
	FeeRateLimiter
)

// BaseFeeConfig is the on-chain base-fee layout: a cliff numerator and
// three generic factors whose meaning depends on the mode.
//
// Scheduler:   FirstFactor = numberOfPeriod, SecondFactor = periodFrequency,
// ThirdFactor = reductionFactor.
// RateLimiter: FirstFactor = feeIncrementBps, SecondFactor = maxLimiterDuration,
// ThirdFactor = referenceAmount.
type BaseFeeConfig struct {
	CliffFeeNumerator uint64
	Mode              BaseFeeMode
	FirstFactor       uint16
	SecondFactor      uint64
	ThirdFactor       uint128.Uint128
}

// NewFeeScheduler builds a linear or exponential fee-scheduler config.
func NewFeeScheduler(mode BaseFeeMode, cliffFeeNumerator uint64, numberOfPeriod uint16, periodFrequency, reductionFactor uint64) BaseFeeConfig {
	return BaseFeeConfig{
		CliffFeeNumerator: cliffFeeNumerator,
		Mode:              mode,
		FirstFactor:       numberOfPeriod,
		SecondFactor:      periodFrequency,
		ThirdFactor:       uint128.From64(reductionFactor),
	}
}

// NewRateLimiter builds a rate-limiter config.
func NewRateLimiter(cliffFeeNumerator uint64, feeIncrementBps uint16, maxLimiterDuration, referenceAmount uint64) BaseFeeConfig {
	return BaseFeeConfig{
		CliffFeeNumerator: cliffFeeNumerator,
		Mode:              FeeRateLimiter,
		FirstFactor:       feeIncrementBps,
		SecondFactor:      maxLimiterDuration,
		ThirdFactor:       uint128.From64(referenceAmount),
	}
}

// Validate checks the config against its mode's invariants.
func (c BaseFeeConfig) Validate() error {
	if c.CliffFeeNumerator == 0 {
		return fmt.Errorf("%w: cliff fee numerator is zero", ErrInvalidFeeScheduler)
	}
	if c.CliffFeeNumerator > MaxFeeNumerator {
		return fmt.Errorf("%w: cliff fee numerator above cap", ErrInvalidFeeScheduler)
	}
	switch c.Mode {
	case FeeSchedulerLinear:
		return nil
	case FeeSchedulerExponential:
		if r := c.ThirdFactor; !r.IsZero() && r.Cmp(uint128.From64(BasisPointMax)) >= 0 {
			return fmt.Errorf("%w: reduction factor above basis-point max", ErrInvalidFeeScheduler)
		}
		return nil
	case FeeRateLimiter:
		increment := BpsToFeeNumerator(uint64(c.FirstFactor))
		switch {
		case increment == 0:
			return fmt.Errorf("%w: fee increment is zero", ErrRateLimiterInvalid)
		case c.CliffFeeNumerator >= MaxFeeNumerator:
			return fmt.Errorf("%w: base fee not below max fee", ErrRateLimiterInvalid)
		case c.ThirdFactor.IsZero():
			return fmt.Errorf("%w: reference amount is zero", ErrRateLimiterInvalid)
		case c.SecondFactor == 0:
			return fmt.Errorf("%w: max limiter duration is zero", ErrRateLimiterInvalid)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidFeeScheduler, c.Mode)
	}
}

// currentPeriod maps the elapsed time since activation onto a scheduler
// period. Before activation the final (minimum-fee) period applies.
func (c BaseFeeConfig) currentPeriod(currentPoint, activationPoint uint64) uint64 {
	periods := uint64(c.FirstFactor)
	if currentPoint < activationPoint {
		return periods
	}
	if c.SecondFactor == 0 {
		return 0
	}
	elapsed := (currentPoint - activationPoint) / c.SecondFactor
	if elapsed < periods {
		return elapsed
	}
	return periods
}

// FeeNumerator returns the scheduler fee numerator at the given point. For
// a rate limiter it returns the cliff numerator; the size-dependent part is
// applied by RateLimiterFee.
func (c BaseFeeConfig) FeeNumerator(currentPoint, activationPoint uint64) (uint64, error) {
	if c.Mode == FeeRateLimiter {
		return c.CliffFeeNumerator, nil
	}
	period := c.currentPeriod(currentPoint, activationPoint)
	switch c.Mode {
	case FeeSchedulerLinear:
		reduction := new(uint256.Int).Mul(primitives.U256(c.ThirdFactor), primitives.U256From64(period))
		cliff := primitives.U256From64(c.CliffFeeNumerator)
		if reduction.Cmp(cliff) >= 0 {
			return 0, nil
		}
		return new(uint256.Int).Sub(cliff, reduction).Uint64(), nil
	case FeeSchedulerExponential:
		reduction := c.ThirdFactor
		if reduction.Cmp(uint128.From64(BasisPointMax)) >= 0 {
			return 0, fmt.Errorf("%w: reduction factor above basis-point max", ErrInvalidFeeScheduler)
		}
		fee := c.CliffFeeNumerator
		keep := BasisPointMax - reduction.Lo
		for i := uint64(0); i < period && fee > 0; i++ {
			fee = fee * keep / BasisPointMax
		}
		return fee, nil
	default:
		return 0, fmt.Errorf("%w: unknown mode %d", ErrInvalidFeeScheduler, c.Mode)
	}
}

// IsRateLimiterApplied reports whether the size-based tariff is active for
// the trade: only quote→base trades inside the limiter window pay it.
func (c BaseFeeConfig) IsRateLimiterApplied(currentPoint, activationPoint uint64, direction TradeDirection) bool {
	if c.Mode != FeeRateLimiter || direction != DirectionQuoteToBase {
		return false
	}
	if currentPoint < activationPoint {
		return false
	}
	return currentPoint-activationPoint <= c.SecondFactor
}

// RateLimiterFee returns the absolute fee charged on inputAmount under the
// triangular tariff. Below the reference amount the cliff rate applies;
// above it each further reference-sized slice pays one increment more,
// with the marginal rate capped at MaxFeeNumerator.
func (c BaseFeeConfig) RateLimiterFee(inputAmount uint64) (uint64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	reference := c.ThirdFactor.Lo
	cliff := c.CliffFeeNumerator
	increment := BpsToFeeNumerator(uint64(c.FirstFactor))
	maxIndex := (MaxFeeNumerator - cliff) / increment

	if inputAmount <= reference {
		return primitives.SafeMulDivU64(inputAmount, cliff, FeeDenominator, primitives.RoundDown)
	}

	x0 := primitives.U256From64(reference)
	c256 := primitives.U256From64(cliff)
	i256 := primitives.U256From64(increment)
	a := (inputAmount - reference) / reference
	b := (inputAmount - reference) % reference

	numer := new(uint256.Int)
	if a < maxIndex {
		// x0·(c + c·a + i·a·(a+1)/2) + b·(c + i·(a+1))
		half := new(uint256.Int).Mul(primitives.U256From64(a), primitives.U256From64(a+1))
		half.Rsh(half, 1)
		tri := new(uint256.Int).Mul(i256, half)
		perSlice := new(uint256.Int).Mul(c256, primitives.U256From64(a+1))
		perSlice.Add(perSlice, tri)
		numer.Mul(x0, perSlice)
		marginal := new(uint256.Int).Mul(i256, primitives.U256From64(a+1))
		marginal.Add(marginal, c256)
		marginal.Mul(marginal, primitives.U256From64(b))
		numer.Add(numer, marginal)
	} else {
		// saturated: remaining input pays the max rate
		d := a - maxIndex
		tri := new(uint256.Int).Mul(i256, primitives.U256From64(maxIndex*(maxIndex+1)/2))
		perSlice := new(uint256.Int).Mul(c256, primitives.U256From64(maxIndex+1))
		perSlice.Add(perSlice, tri)
		numer.Mul(x0, perSlice)
		rest := new(uint256.Int).Mul(primitives.U256From64(d), x0)
		rest.AddUint64(rest, b)
		rest.Mul(rest, primitives.U256From64(MaxFeeNumerator))
		numer.Add(numer, rest)
	}
	fee := new(uint256.Int).Div(numer, primitives.U256From64(FeeDenominator))
	return primitives.ToU64(fee)
}
