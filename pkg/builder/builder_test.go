package builder_test

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"

	"github.com/launchkit/go-bonding-curve-toolkit/pkg/builder"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/config"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/fees"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/primitives"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/quote"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/vesting"
)

func baseParam() builder.BaseParam {
	return builder.BaseParam{
		TotalTokenSupply:   1_000_000_000,
		MigrationOption:    config.MigrationDammV1,
		TokenBaseDecimal:   6,
		TokenQuoteDecimal:  9,
		BaseFee:            fees.NewFeeScheduler(fees.FeeSchedulerLinear, 2_500_000, 0, 0, 0),
		ActivationType:     config.ActivationSlot,
		CollectFeeMode:     fees.CollectFeeBoth,
		MigrationFeeOption: config.MigrationFee25Bps,
		TokenType:          config.TokenSPL,
		LpDistribution:     config.LpDistribution{CreatorLpPercentage: 100},
	}
}

// assertCurveInvariants checks the builder-output properties every
// configuration must satisfy: strictly increasing prices, positive
// liquidity, first point above the start price, and a passing validator.
func assertCurveInvariants(t *testing.T, cfg *config.PoolConfig) {
	t.Helper()
	require.NotEmpty(t, cfg.Curve)
	require.LessOrEqual(t, len(cfg.Curve), config.MaxCurvePoint)
	assert.True(t, cfg.Curve[0].SqrtPrice.Cmp(cfg.SqrtStartPrice) > 0, "first point not above start price")
	for i := range cfg.Curve {
		assert.False(t, cfg.Curve[i].Liquidity.IsZero(), "zero liquidity at %d", i)
		if i > 0 {
			assert.True(t, cfg.Curve[i].SqrtPrice.Cmp(cfg.Curve[i-1].SqrtPrice) > 0, "prices not increasing at %d", i)
		}
	}
	assert.NoError(t, config.Validate(cfg))

	// the supply backing the curve never exceeds the minted supply
	minimum, err := config.TotalSupplyFromCurve(
		cfg.MigrationQuoteThreshold, cfg.SqrtStartPrice, cfg.Curve, cfg.LockedVesting, cfg.MigrationOption)
	require.NoError(t, err)
	assert.True(t, minimum.Cmp(uint128.From64(cfg.TokenSupply.PreMigrationTokenSupply)) <= 0, "curve needs more than the minted supply")
}

// The explicit-intent scenario: a billion-token launch migrating just
// under 3% of supply at a ~95.08 quote threshold.
func TestBuildCurveExplicitIntent(t *testing.T) {
	cfg, err := builder.BuildCurve(builder.BuildCurveParam{
		BaseParam:                   baseParam(),
		PercentageSupplyOnMigration: decimal.RequireFromString("2.983257229832572"),
		MigrationQuoteThreshold:     decimal.RequireFromString("95.07640791476408"),
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(95_076_407_914), cfg.MigrationQuoteThreshold)
	assert.Equal(t, uint128.From64(32022465501351374), cfg.SqrtStartPrice)

	require.Len(t, cfg.Curve, 1)
	assert.Equal(t, uint128.From64(1041383648506654343), cfg.Curve[0].SqrtPrice)
	wantLiquidity, err := uint128.FromString("32052773247122770201717444077298")
	require.NoError(t, err)
	assert.Equal(t, wantLiquidity, cfg.Curve[0].Liquidity)

	assert.Equal(t, uint64(1_000_000_000_000_000), cfg.TokenSupply.PreMigrationTokenSupply)
	assert.Equal(t, uint64(1_000_000_000_000_000), cfg.TokenSupply.PostMigrationTokenSupply)
	assertCurveInvariants(t, cfg)

	// migration threshold stays below the non-vested share of the supply
	threshold := decimal.NewFromBigInt(new(big.Int).SetUint64(cfg.MigrationQuoteThreshold), 0)
	supply := decimal.NewFromBigInt(new(big.Int).SetUint64(cfg.TokenSupply.PreMigrationTokenSupply), 0)
	assert.True(t, threshold.Div(supply).Cmp(decimal.NewFromInt(1)) < 0)
}

// The market-cap intent round-trips through the explicit one: feeding the
// caps implied by the explicit scenario back through the closed form lands
// on the same threshold to within one atom.
func TestBuildCurveByMarketCapMatchesExplicitIntent(t *testing.T) {
	sqrtStartPrice := uint128.From64(32022465501351374)
	sqrtMigrationPrice := uint128.From64(1041383648506654343)
	supply := decimal.NewFromInt(1_000_000_000)

	initialMarketCap := primitives.PriceFromSqrtPrice(sqrtStartPrice, 6, 9).Mul(supply)
	migrationMarketCap := primitives.PriceFromSqrtPrice(sqrtMigrationPrice, 6, 9).Mul(supply)

	cfg, err := builder.BuildCurveByMarketCap(builder.BuildCurveByMarketCapParam{
		BaseParam:          baseParam(),
		InitialMarketCap:   initialMarketCap,
		MigrationMarketCap: migrationMarketCap,
	})
	require.NoError(t, err)
	assert.InDelta(t, 95_076_407_914, float64(cfg.MigrationQuoteThreshold), 1)
	assertCurveInvariants(t, cfg)
}

func TestBuildCurveByMarketCapWithVesting(t *testing.T) {
	param := builder.BuildCurveByMarketCapParam{
		BaseParam:          baseParam(),
		InitialMarketCap:   decimal.RequireFromString("23.5"),
		MigrationMarketCap: decimal.RequireFromString("405.882352941"),
	}
	param.LockedVesting = builder.LockedVestingParam{
		TotalLockedVestingAmount: 100_000_000, // 10% of supply
		NumberOfVestingPeriod:    365,
		TotalVestingDuration:     365 * 24 * 3600,
	}
	cfg, err := builder.BuildCurveByMarketCap(param)
	require.NoError(t, err)
	assertCurveInvariants(t, cfg)

	assert.False(t, cfg.LockedVesting.IsDefault())
	vested := vesting.GetTotalVestingAmount(cfg.LockedVesting)
	assert.Equal(t, uint128.From64(100_000_000_000_000), vested)

	// vesting shrinks the migration allocation: same caps without vesting
	// migrate a larger share
	noVesting := param
	noVesting.LockedVesting = builder.LockedVestingParam{}
	cfgNoVesting, err := builder.BuildCurveByMarketCap(noVesting)
	require.NoError(t, err)
	assert.Greater(t, cfgNoVesting.MigrationQuoteThreshold, cfg.MigrationQuoteThreshold)
}

func TestBuildCurveRejectsDegenerateIntents(t *testing.T) {
	param := builder.BuildCurveParam{
		BaseParam:                   baseParam(),
		PercentageSupplyOnMigration: decimal.NewFromInt(0),
		MigrationQuoteThreshold:     decimal.NewFromInt(100),
	}
	_, err := builder.BuildCurve(param)
	assert.ErrorIs(t, err, builder.ErrInvalidParam)

	param.PercentageSupplyOnMigration = decimal.NewFromInt(100)
	_, err = builder.BuildCurve(param)
	assert.ErrorIs(t, err, builder.ErrInvalidParam)

	mc := builder.BuildCurveByMarketCapParam{
		BaseParam:          baseParam(),
		InitialMarketCap:   decimal.NewFromInt(500),
		MigrationMarketCap: decimal.NewFromInt(400),
	}
	_, err = builder.BuildCurveByMarketCap(mc)
	assert.ErrorIs(t, err, builder.ErrInvalidParam)
}

func TestBuildCurveWithTwoSegments(t *testing.T) {
	cfg, err := builder.BuildCurveWithTwoSegments(builder.BuildCurveWithTwoSegmentsParam{
		BaseParam:                   baseParam(),
		MigrationMarketCap:          decimal.RequireFromString("405.882352941"),
		PercentageSupplyOnMigration: decimal.NewFromInt(20),
	})
	require.NoError(t, err)
	assertCurveInvariants(t, cfg)

	// a fifth of the supply priced at the cap
	assert.InDelta(t, 81_176_470_588, float64(cfg.MigrationQuoteThreshold), 1)
}

func uniformWeights() []decimal.Decimal {
	weights := make([]decimal.Decimal, 16)
	for i := range weights {
		weights[i] = decimal.NewFromInt(1)
	}
	return weights
}

func TestBuildCurveWithLiquidityWeights(t *testing.T) {
	cfg, err := builder.BuildCurveWithLiquidityWeights(builder.BuildCurveWithLiquidityWeightsParam{
		BaseParam:          baseParam(),
		InitialMarketCap:   decimal.NewFromInt(30),
		MigrationMarketCap: decimal.NewFromInt(300),
		LiquidityWeights:   uniformWeights(),
	})
	require.NoError(t, err)
	assertCurveInvariants(t, cfg)
	assert.GreaterOrEqual(t, len(cfg.Curve), 16)
}

func TestBuildCurveWithRisingLiquidityWeights(t *testing.T) {
	weights := make([]decimal.Decimal, 16)
	for i := range weights {
		weights[i] = decimal.NewFromInt(int64(i + 1))
	}
	cfg, err := builder.BuildCurveWithLiquidityWeights(builder.BuildCurveWithLiquidityWeightsParam{
		BaseParam:          baseParam(),
		InitialMarketCap:   decimal.NewFromInt(30),
		MigrationMarketCap: decimal.NewFromInt(300),
		LiquidityWeights:   weights,
	})
	require.NoError(t, err)
	assertCurveInvariants(t, cfg)

	// weights carry through: each later segment holds more liquidity
	for i := 1; i < 16; i++ {
		assert.True(t, cfg.Curve[i].Liquidity.Cmp(cfg.Curve[i-1].Liquidity) > 0, "liquidity not rising at %d", i)
	}
}

func TestBuildCurveWithLiquidityWeightsRejectsBadWeights(t *testing.T) {
	param := builder.BuildCurveWithLiquidityWeightsParam{
		BaseParam:          baseParam(),
		InitialMarketCap:   decimal.NewFromInt(30),
		MigrationMarketCap: decimal.NewFromInt(300),
		LiquidityWeights:   uniformWeights()[:7],
	}
	_, err := builder.BuildCurveWithLiquidityWeights(param)
	assert.ErrorIs(t, err, builder.ErrInvalidParam)

	param.LiquidityWeights = uniformWeights()
	param.LiquidityWeights[3] = decimal.Zero
	_, err = builder.BuildCurveWithLiquidityWeights(param)
	assert.ErrorIs(t, err, builder.ErrInvalidParam)
}

func TestBuildCurveWithCreatorFirstBuy(t *testing.T) {
	firstBuy := builder.FirstBuyParam{
		QuoteAmount: 1_000_000_000,      // one whole quote token
		BaseAmount:  33_000_000_000_000, // ~3.3% of supply in atoms
	}
	cfg, err := builder.BuildCurveWithCreatorFirstBuy(builder.BuildCurveWithCreatorFirstBuyParam{
		BuildCurveWithLiquidityWeightsParam: builder.BuildCurveWithLiquidityWeightsParam{
			BaseParam:          baseParam(),
			InitialMarketCap:   decimal.NewFromInt(30),
			MigrationMarketCap: decimal.NewFromInt(300),
			LiquidityWeights:   uniformWeights(),
		},
		FirstBuy: firstBuy,
	})
	require.NoError(t, err)
	assertCurveInvariants(t, cfg)

	// the opening swap, fee-free, returns the pinned base amount
	probe := *cfg
	probe.PoolFees.BaseFee = fees.NewFeeScheduler(fees.FeeSchedulerLinear, 0, 0, 0, 0)
	pool := &quote.VirtualPool{SqrtPrice: probe.SqrtStartPrice}
	res, err := quote.SwapQuote(pool, &probe, fees.DirectionQuoteToBase, firstBuy.QuoteAmount, false, 0)
	require.NoError(t, err)
	assert.InDelta(t, float64(firstBuy.BaseAmount), float64(res.OutputAmount), 3)
}

func TestDesignPumpFunCurves(t *testing.T) {
	withVesting, err := builder.DesignPumpFunCurve()
	require.NoError(t, err)
	assertCurveInvariants(t, withVesting)
	assert.False(t, withVesting.LockedVesting.IsDefault())

	without, err := builder.DesignPumpFunCurveWithoutLockVesting()
	require.NoError(t, err)
	assertCurveInvariants(t, without)
	assert.True(t, without.LockedVesting.IsDefault())

	// the classic schedule graduates around 85 quote tokens raised
	assert.InDelta(t, 85_000_000_000, float64(without.MigrationQuoteThreshold), 100_000_000)
	assert.Less(t, withVesting.MigrationQuoteThreshold, without.MigrationQuoteThreshold)

	// quoting against the fresh pool works end to end
	pool := &quote.VirtualPool{SqrtPrice: without.SqrtStartPrice}
	res, err := quote.SwapQuoteExact(pool, without, fees.DirectionQuoteToBase, 1_000_000_000, false, 0)
	require.NoError(t, err)
	assert.NotZero(t, res.OutputAmount)
	assert.True(t, res.NextSqrtPrice.Cmp(without.SqrtStartPrice) > 0)
}
