package builder

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/launchkit/go-bonding-curve-toolkit/pkg/config"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/vesting"
)

var hundred = decimal.NewFromInt(100)

// BuildCurveByMarketCap derives the migration percentage and quote
// threshold from the starting and migration market caps, then delegates to
// BuildCurve.
func BuildCurveByMarketCap(param BuildCurveByMarketCapParam) (*config.PoolConfig, error) {
	if param.InitialMarketCap.Sign() <= 0 || param.MigrationMarketCap.Sign() <= 0 {
		return nil, fmt.Errorf("%w: market caps must be positive", ErrInvalidParam)
	}
	if param.InitialMarketCap.Cmp(param.MigrationMarketCap) >= 0 {
		return nil, fmt.Errorf("%w: initial market cap not below migration market cap", ErrInvalidParam)
	}

	percentage, err := getPercentageSupplyOnMigration(
		param.InitialMarketCap, param.MigrationMarketCap, param.LockedVesting, param.TotalTokenSupply, param.TokenBaseDecimal)
	if err != nil {
		return nil, err
	}
	threshold := param.MigrationMarketCap.Mul(percentage).Div(hundred)

	return BuildCurve(BuildCurveParam{
		BaseParam:                   param.BaseParam,
		PercentageSupplyOnMigration: percentage,
		MigrationQuoteThreshold:     threshold,
	})
}

// getPercentageSupplyOnMigration is the closed form behind the market-cap
// intent. With k = √(initialMC/migrationMC) a single constant-liquidity
// segment between the two cap prices sells 1/k times the migration deposit,
// so the deposit share of the non-vested supply is k/(1+k):
//
//	percentage = k · (100 − vestingPercentage) / (1 + k)
func getPercentageSupplyOnMigration(
	initialMarketCap, migrationMarketCap decimal.Decimal,
	lockedVesting LockedVestingParam,
	totalTokenSupply uint64,
	baseDecimal uint8,
) (decimal.Decimal, error) {
	k := decimalSqrt(initialMarketCap.DivRound(migrationMarketCap, 40))
	if k.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: degenerate market cap ratio", ErrInvalidParam)
	}

	vestingPercentage := decimal.Zero
	if lockedVesting.TotalLockedVestingAmount > 0 {
		locked, err := vesting.GetLockedVestingParams(
			lockedVesting.TotalLockedVestingAmount,
			lockedVesting.NumberOfVestingPeriod,
			lockedVesting.CliffUnlockAmount,
			lockedVesting.TotalVestingDuration,
			lockedVesting.CliffDurationFromMigrationTime,
			baseDecimal,
		)
		if err != nil {
			return decimal.Zero, err
		}
		totalAtoms := decimalFromUint64(totalTokenSupply).Shift(int32(baseDecimal))
		vestedAtoms := decimal.NewFromBigInt(vesting.GetTotalVestingAmount(locked).Big(), 0)
		vestingPercentage = vestedAtoms.Mul(hundred).DivRound(totalAtoms, 40)
		if vestingPercentage.Cmp(hundred) >= 0 {
			return decimal.Zero, fmt.Errorf("%w: vesting consumes the entire supply", ErrInvalidParam)
		}
	}

	return k.Mul(hundred.Sub(vestingPercentage)).DivRound(decimal.NewFromInt(1).Add(k), 40), nil
}
