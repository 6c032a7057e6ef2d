package builder

import (
	"fmt"

	"github.com/launchkit/go-bonding-curve-toolkit/pkg/config"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/primitives"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/vesting"
)

// BuildCurveWithTwoSegments fixes the migration √price directly from the
// migration market cap and reaches it with one constant-liquidity segment
// holding the requested supply share; the rest of the supply sits in a
// terminal segment up to the top of the grid.
func BuildCurveWithTwoSegments(param BuildCurveWithTwoSegmentsParam) (*config.PoolConfig, error) {
	if param.PercentageSupplyOnMigration.Sign() <= 0 || param.PercentageSupplyOnMigration.Cmp(hundred) >= 0 {
		return nil, fmt.Errorf("%w: percentage supply on migration out of (0, 100)", ErrInvalidParam)
	}
	if param.MigrationMarketCap.Sign() <= 0 {
		return nil, fmt.Errorf("%w: migration market cap must be positive", ErrInvalidParam)
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

	// the migration price is the cap price; the threshold follows from the
	// supply share priced at it
	migrationPrice := param.MigrationMarketCap.DivRound(decimalFromUint64(param.TotalTokenSupply), 40)
	sqrtMigrationPrice, err := primitives.SqrtPriceFromPrice(migrationPrice, param.TokenBaseDecimal, param.TokenQuoteDecimal)
	if err != nil {
		return nil, err
	}
	threshold := param.MigrationMarketCap.Mul(param.PercentageSupplyOnMigration).Div(hundred)
	thresholdAtoms, err := decimalToAtoms(threshold, param.TokenQuoteDecimal)
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

	return finalise(param.BaseParam, sqrtStartPrice, points, thresholdAtoms, locked, totalSupplyAtoms), nil
}
