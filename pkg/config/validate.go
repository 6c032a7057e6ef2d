package config

import (
	"fmt"

	"lukechampine.com/uint128"

	"github.com/launchkit/go-bonding-curve-toolkit/pkg/curve"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/fees"
)

// Validate rejects configurations that would be unsafe on-chain. Checks run
// in a fixed order and the first violation is returned, keeping diagnostics
// deterministic.
func Validate(c *PoolConfig) error {
	// fee schedule
	if err := c.PoolFees.BaseFee.Validate(); err != nil {
		return err
	}
	// the size tariff is charged on the quote input, so it only composes
	// with quote-only collection
	if c.PoolFees.BaseFee.Mode == fees.FeeRateLimiter && c.CollectFeeMode != fees.CollectFeeQuoteOnly {
		return fees.ErrRateLimiterInvalid
	}

	// enumerated fields
	if c.CollectFeeMode != fees.CollectFeeQuoteOnly && c.CollectFeeMode != fees.CollectFeeBoth {
		return fees.ErrInvalidFeeMode
	}
	if c.ActivationType != ActivationSlot && c.ActivationType != ActivationTimestamp {
		return ErrInvalidActivationType
	}
	if c.TokenDecimal < MinTokenDecimal || c.TokenDecimal > MaxTokenDecimal {
		return ErrInvalidTokenDecimal
	}
	if c.MigrationFeeOption.Bps() == 0 {
		return ErrInvalidMigrationFeeOption
	}

	// migration venue / token standard compatibility
	switch c.MigrationOption {
	case MigrationDammV1:
		if c.TokenType != TokenSPL {
			return ErrInvalidMigrationAndTokenType
		}
	case MigrationDammV2:
	default:
		return ErrInvalidMigrationAndTokenType
	}

	// LP split
	lpSum := uint16(c.LpDistribution.PartnerLpPercentage) +
		uint16(c.LpDistribution.PartnerLockedLpPercentage) +
		uint16(c.LpDistribution.CreatorLpPercentage) +
		uint16(c.LpDistribution.CreatorLockedLpPercentage)
	if lpSum != 100 {
		return ErrInvalidLpPercentageSum
	}

	// migration threshold and price bounds
	if c.MigrationQuoteThreshold == 0 {
		return ErrInvalidQuoteThreshold
	}
	if c.SqrtStartPrice.Cmp(curve.MinSqrtPrice) < 0 || c.SqrtStartPrice.Cmp(curve.MaxSqrtPrice) >= 0 {
		return curve.ErrInvalidSqrtPrice
	}

	// curve shape
	if err := validateCurve(c.SqrtStartPrice, c.Curve); err != nil {
		return err
	}

	// vesting
	if err := c.LockedVesting.Validate(); err != nil {
		return err
	}

	// supply bounds
	return validateTokenSupply(c)
}

func validateCurve(sqrtStartPrice uint128.Uint128, points []curve.Point) error {
	if len(points) == 0 {
		return fmt.Errorf("%w: empty curve", curve.ErrInvalidCurve)
	}
	if len(points) > MaxCurvePoint {
		return fmt.Errorf("%w: %d points exceeds %d", curve.ErrInvalidCurve, len(points), MaxCurvePoint)
	}
	if points[0].SqrtPrice.Cmp(sqrtStartPrice) <= 0 {
		return fmt.Errorf("%w: first point not above start price", curve.ErrInvalidCurve)
	}
	for i := range points {
		if points[i].Liquidity.IsZero() {
			return fmt.Errorf("%w: zero liquidity at point %d", curve.ErrInvalidCurve, i)
		}
		if i > 0 && points[i].SqrtPrice.Cmp(points[i-1].SqrtPrice) <= 0 {
			return fmt.Errorf("%w: sqrt prices not strictly increasing at point %d", curve.ErrInvalidCurve, i)
		}
	}
	if points[len(points)-1].SqrtPrice.Cmp(curve.MaxSqrtPrice) > 0 {
		return fmt.Errorf("%w: last point above max sqrt price", curve.ErrInvalidCurve)
	}
	return nil
}

func validateTokenSupply(c *PoolConfig) error {
	if c.TokenSupply.PreMigrationTokenSupply < c.TokenSupply.PostMigrationTokenSupply {
		return fmt.Errorf("%w: pre-migration supply below post-migration supply", ErrInvalidTokenSupply)
	}
	minPost, err := MinimumBaseSupply(
		c.MigrationQuoteThreshold, c.SqrtStartPrice, c.Curve, c.LockedVesting, c.MigrationOption, false)
	if err != nil {
		return err
	}
	if minPost.Cmp(uint128.From64(c.TokenSupply.PostMigrationTokenSupply)) > 0 {
		return fmt.Errorf("%w: post-migration supply below curve minimum", ErrInvalidTokenSupply)
	}
	minPre, err := MinimumBaseSupply(
		c.MigrationQuoteThreshold, c.SqrtStartPrice, c.Curve, c.LockedVesting, c.MigrationOption, true)
	if err != nil {
		return err
	}
	if minPre.Cmp(uint128.From64(c.TokenSupply.PreMigrationTokenSupply)) > 0 {
		return fmt.Errorf("%w: pre-migration supply below buffered minimum", ErrInvalidTokenSupply)
	}
	return nil
}
