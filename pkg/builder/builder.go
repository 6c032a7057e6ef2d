package builder

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"lukechampine.com/uint128"

	"github.com/launchkit/go-bonding-curve-toolkit/pkg/config"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/curve"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/primitives"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/vesting"
)

// BuildCurve builds a configuration from an explicit migration percentage
// and quote threshold. The migration √price follows from their ratio, a
// single constant-liquidity segment carries the swap supply up to it, and
// any remaining supply becomes a terminal segment to the top of the grid.
func BuildCurve(param BuildCurveParam) (*config.PoolConfig, error) {
	if param.PercentageSupplyOnMigration.Sign() <= 0 || param.PercentageSupplyOnMigration.Cmp(decimal.NewFromInt(100)) >= 0 {
		return nil, fmt.Errorf("%w: percentage supply on migration out of (0, 100)", ErrInvalidParam)
	}
	if param.MigrationQuoteThreshold.Sign() <= 0 {
		return nil, fmt.Errorf("%w: migration quote threshold not positive", ErrInvalidParam)
	}

	locked, err := vesting.GetLockedVestingParams(
		param.LockedVesting.TotalLockedVestingAmount,
		param.LockedVesting.NumberOfVestingPeriod,
		param.LockedVesting.CliffUnlockAmount,
		param.LockedVesting.TotalVestingDuration,
		param.LockedVesting.CliffDurationFromMigrationTime,
		param.TokenBaseDecimal,
	)
	if err != nil {
		return nil, err
	}

	totalSupplyAtoms, err := tokensToAtoms(param.TotalTokenSupply, param.TokenBaseDecimal)
	if err != nil {
		return nil, err
	}
	thresholdAtoms, err := decimalToAtoms(param.MigrationQuoteThreshold, param.TokenQuoteDecimal)
	if err != nil {
		return nil, err
	}

	// migration price from the threshold / migration-supply ratio
	migrationBaseSupply := decimalFromUint64(param.TotalTokenSupply).
		Mul(param.PercentageSupplyOnMigration).
		Div(hundred)
	migrationPrice := param.MigrationQuoteThreshold.DivRound(migrationBaseSupply, 40)
	sqrtMigrationPrice, err := primitives.SqrtPriceFromPrice(migrationPrice, param.TokenBaseDecimal, param.TokenQuoteDecimal)
	if err != nil {
		return nil, err
	}

	migrationBase, err := config.MigrationBaseToken(thresholdAtoms, sqrtMigrationPrice, param.MigrationOption)
	if err != nil {
		return nil, err
	}
	vestingAtoms := vesting.GetTotalVestingAmount(locked)

	swapAmount, err := swapAllocation(totalSupplyAtoms, migrationBase, vestingAtoms)
	if err != nil {
		return nil, err
	}

	sqrtStartPrice, points, err := firstCurve(sqrtMigrationPrice, migrationBase, swapAmount, thresholdAtoms)
	if err != nil {
		return nil, err
	}

	points, err = appendRemainder(points, sqrtStartPrice, sqrtMigrationPrice, totalSupplyAtoms, migrationBase, vestingAtoms)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("sqrt_start_price", sqrtStartPrice.String()).
		Str("sqrt_migration_price", sqrtMigrationPrice.String()).
		Uint64("migration_base", migrationBase).
		Uint64("swap_amount", swapAmount).
		Int("curve_points", len(points)).
		Msg("built curve")

	return finalise(param.BaseParam, sqrtStartPrice, points, thresholdAtoms, locked, totalSupplyAtoms), nil
}

// firstCurve solves the start price and segment liquidity so the segment
// up to the migration price holds exactly swapAmount base while absorbing
// quoteThreshold quote:
//
//	√P_start = √P_migrate · migrationBase / swapAmount
//	L        = quoteThreshold · 2^128 / (√P_migrate − √P_start)
func firstCurve(sqrtMigrationPrice uint128.Uint128, migrationBase, swapAmount, quoteThreshold uint64) (uint128.Uint128, []curve.Point, error) {
	if swapAmount == 0 {
		return uint128.Zero, nil, fmt.Errorf("%w: no supply left for the swap curve", config.ErrInvalidTokenSupply)
	}
	sqrtStartPrice, err := primitives.MulDivU128(
		sqrtMigrationPrice, uint128.From64(migrationBase), uint128.From64(swapAmount), primitives.RoundDown)
	if err != nil {
		return uint128.Zero, nil, err
	}
	diff, err := primitives.CheckedSub(sqrtMigrationPrice, sqrtStartPrice)
	if err != nil || diff.IsZero() {
		return uint128.Zero, nil, fmt.Errorf("%w: migration price not above start price", curve.ErrInvalidCurve)
	}
	liquidity, err := primitives.ShlDiv(uint128.From64(quoteThreshold), 128, diff, primitives.RoundDown)
	if err != nil {
		return uint128.Zero, nil, err
	}
	return sqrtStartPrice, []curve.Point{{SqrtPrice: sqrtMigrationPrice, Liquidity: liquidity}}, nil
}

// appendRemainder adds a terminal segment at the top of the grid holding
// whatever supply the swap curve, migration deposit, and vesting leave
// unallocated.
func appendRemainder(points []curve.Point, sqrtStartPrice, sqrtMigrationPrice uint128.Uint128, totalSupplyAtoms uint64, migrationBase uint64, vestingAtoms uint128.Uint128) ([]curve.Point, error) {
	swapFromCurve, err := config.BaseTokenForSwap(sqrtStartPrice, sqrtMigrationPrice, points)
	if err != nil {
		return nil, err
	}
	used, err := primitives.CheckedAdd(swapFromCurve, uint128.From64(migrationBase))
	if err != nil {
		return nil, err
	}
	used, err = primitives.CheckedAdd(used, vestingAtoms)
	if err != nil {
		return nil, err
	}
	total := uint128.From64(totalSupplyAtoms)
	if used.Cmp(total) >= 0 {
		return points, nil
	}
	remainder := total.Sub(used)
	if remainder.Hi != 0 {
		return nil, primitives.ErrMathOverflow
	}
	top := points[len(points)-1].SqrtPrice
	if top.Cmp(curve.MaxSqrtPrice) >= 0 {
		return points, nil
	}
	liquidity, err := curve.InitialLiquidityFromDeltaBase(remainder.Lo, curve.MaxSqrtPrice, top)
	if err != nil {
		return nil, err
	}
	if liquidity.IsZero() {
		return points, nil
	}
	if len(points)+1 > config.MaxCurvePoint {
		return nil, fmt.Errorf("%w: curve capacity exceeded", curve.ErrInvalidCurve)
	}
	return append(points, curve.Point{SqrtPrice: curve.MaxSqrtPrice, Liquidity: liquidity}), nil
}

// finalise is the shared emit step: every builder funnels its derived curve
// through here to produce the configuration value.
func finalise(base BaseParam, sqrtStartPrice uint128.Uint128, points []curve.Point, thresholdAtoms uint64, locked vesting.LockedVesting, totalSupplyAtoms uint64) *config.PoolConfig {
	cfg := &config.PoolConfig{
		CollectFeeMode:          base.CollectFeeMode,
		MigrationOption:         base.MigrationOption,
		TokenType:               base.TokenType,
		ActivationType:          base.ActivationType,
		TokenDecimal:            base.TokenBaseDecimal,
		MigrationFeeOption:      base.MigrationFeeOption,
		MigrationQuoteThreshold: thresholdAtoms,
		LpDistribution:          base.LpDistribution,
		SqrtStartPrice:          sqrtStartPrice,
		LockedVesting:           locked,
		TokenSupply: config.TokenSupply{
			PreMigrationTokenSupply:  totalSupplyAtoms,
			PostMigrationTokenSupply: totalSupplyAtoms,
		},
		Curve: points,
	}
	cfg.PoolFees.BaseFee = base.BaseFee
	cfg.PoolFees.DynamicFee = base.DynamicFee
	cfg.PoolFees.ProtocolFeePercent = base.ProtocolFeePercent
	cfg.PoolFees.ReferralFeePercent = base.ReferralFeePercent
	return cfg
}

// swapAllocation returns the base atoms left for the bonding curve after
// the migration deposit and vesting reserve.
func swapAllocation(totalSupplyAtoms, migrationBase uint64, vestingAtoms uint128.Uint128) (uint64, error) {
	reserved, err := primitives.CheckedAdd(uint128.From64(migrationBase), vestingAtoms)
	if err != nil {
		return 0, err
	}
	left, err := primitives.CheckedSub(uint128.From64(totalSupplyAtoms), reserved)
	if err != nil {
		return 0, fmt.Errorf("%w: migration and vesting exceed total supply", config.ErrInvalidTokenSupply)
	}
	if left.Hi != 0 {
		return 0, primitives.ErrMathOverflow
	}
	return left.Lo, nil
}

// tokensToAtoms scales a whole-token amount into atoms.
func tokensToAtoms(tokens uint64, tokenDecimal uint8) (uint64, error) {
	scale := math.BigPow(10, int64(tokenDecimal))
	atoms := new(big.Int).Mul(new(big.Int).SetUint64(tokens), scale)
	if !atoms.IsUint64() {
		return 0, primitives.ErrMathOverflow
	}
	return atoms.Uint64(), nil
}

// decimalToAtoms scales a fractional token amount into atoms, truncating.
func decimalToAtoms(amount decimal.Decimal, tokenDecimal uint8) (uint64, error) {
	atoms := amount.Shift(int32(tokenDecimal)).BigInt()
	if atoms.Sign() < 0 || !atoms.IsUint64() {
		return 0, primitives.ErrMathOverflow
	}
	return atoms.Uint64(), nil
}

// decimalFromUint64 lifts a uint64 into a decimal without a signed cast.
func decimalFromUint64(x uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(x), 0)
}

// decimalSqrt returns √d at 40 fractional digits via an exact integer
// square root; shopspring decimals carry no square root of their own.
func decimalSqrt(d decimal.Decimal) decimal.Decimal {
	if d.Sign() <= 0 {
		return decimal.Zero
	}
	widened := d.Shift(80).BigInt()
	root := new(big.Int).Sqrt(widened)
	return decimal.NewFromBigInt(root, -40)
}
