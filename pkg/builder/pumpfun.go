package builder

import (
	"github.com/shopspring/decimal"

	"github.com/launchkit/go-bonding-curve-toolkit/pkg/config"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/fees"
)

// The pump-fun recipe: one billion tokens at six decimals against a
// nine-decimal quote, a 1% flat fee collected in quote, and the familiar
// virtual-reserve schedule (30 quote / 1.073B tokens at launch, migration
// once 85 quote tokens are raised) expressed as market caps.
var (
	pumpFunInitialMarketCap   = decimal.RequireFromString("27.959926")
	pumpFunMigrationMarketCap = decimal.RequireFromString("410.852460")
)

const (
	pumpFunTotalSupply       uint64 = 1_000_000_000
	pumpFunCliffFeeNumerator uint64 = 10_000_000 // 1%
	pumpFunVestingAmount     uint64 = 100_000_000
	pumpFunVestingPeriods    uint64 = 365
	pumpFunVestingDuration   uint64 = 365 * 24 * 3600
)

func pumpFunBaseParam() BaseParam {
	return BaseParam{
		TotalTokenSupply:   pumpFunTotalSupply,
		MigrationOption:    config.MigrationDammV2,
		TokenBaseDecimal:   6,
		TokenQuoteDecimal:  9,
		BaseFee:            fees.NewFeeScheduler(fees.FeeSchedulerLinear, pumpFunCliffFeeNumerator, 0, 0, 0),
		ActivationType:     config.ActivationSlot,
		CollectFeeMode:     fees.CollectFeeQuoteOnly,
		MigrationFeeOption: config.MigrationFee25Bps,
		TokenType:          config.TokenSPL,
		LpDistribution: config.LpDistribution{
			PartnerLockedLpPercentage: 100,
		},
	}
}

// DesignPumpFunCurve builds the fixed pump-fun launch schedule with ten
// percent of the supply vesting linearly over a year after migration.
func DesignPumpFunCurve() (*config.PoolConfig, error) {
	base := pumpFunBaseParam()
	base.LockedVesting = LockedVestingParam{
		TotalLockedVestingAmount: pumpFunVestingAmount,
		NumberOfVestingPeriod:    pumpFunVestingPeriods,
		TotalVestingDuration:     pumpFunVestingDuration,
	}
	return BuildCurveByMarketCap(BuildCurveByMarketCapParam{
		BaseParam:          base,
		InitialMarketCap:   pumpFunInitialMarketCap,
		MigrationMarketCap: pumpFunMigrationMarketCap,
	})
}

// DesignPumpFunCurveWithoutLockVesting is the same schedule with the whole
// supply liquid at migration.
func DesignPumpFunCurveWithoutLockVesting() (*config.PoolConfig, error) {
	return BuildCurveByMarketCap(BuildCurveByMarketCapParam{
		BaseParam:          pumpFunBaseParam(),
		InitialMarketCap:   pumpFunInitialMarketCap,
		MigrationMarketCap: pumpFunMigrationMarketCap,
	})
}
