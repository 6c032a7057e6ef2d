package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"

	"github.com/launchkit/go-bonding-curve-toolkit/pkg/config"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/curve"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/fees"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/vesting"
)

// validConfig is a hand-checked single-segment configuration: one billion
// tokens at 6/9 decimals selling ~97% of supply up to a ~95.08 quote
// threshold, the remainder seeding the migration pool.
func validConfig() *config.PoolConfig {
	liquidity, err := uint128.FromString("32052773247122770201717444077298")
	if err != nil {
		panic(err)
	}
	cfg := &config.PoolConfig{
		CollectFeeMode:          fees.CollectFeeBoth,
		MigrationOption:         config.MigrationDammV1,
		TokenType:               config.TokenSPL,
		ActivationType:          config.ActivationSlot,
		TokenDecimal:            6,
		MigrationFeeOption:      config.MigrationFee25Bps,
		MigrationQuoteThreshold: 95_076_407_914,
		LpDistribution:          config.LpDistribution{CreatorLpPercentage: 100},
		SqrtStartPrice:          uint128.From64(32022465501351374),
		TokenSupply: config.TokenSupply{
			PreMigrationTokenSupply:  1_000_000_000_000_000,
			PostMigrationTokenSupply: 1_000_000_000_000_000,
		},
		Curve: []curve.Point{
			{SqrtPrice: uint128.From64(1041383648506654343), Liquidity: liquidity},
		},
	}
	cfg.PoolFees.BaseFee = fees.NewFeeScheduler(fees.FeeSchedulerLinear, 2_500_000, 0, 0, 0)
	return cfg
}

func TestValidateAcceptsReferenceConfig(t *testing.T) {
	require.NoError(t, config.Validate(validConfig()))
}

// Every validated field has a counterexample rejected with its own error
// kind.
func TestValidateCounterexamples(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.PoolConfig)
		wantErr error
	}{
		{"zero cliff fee", func(c *config.PoolConfig) { c.PoolFees.BaseFee.CliffFeeNumerator = 0 }, fees.ErrInvalidFeeScheduler},
		{"rate limiter zero reference", func(c *config.PoolConfig) {
			c.PoolFees.BaseFee = fees.NewRateLimiter(10_000_000, 100, 1000, 0)
		}, fees.ErrRateLimiterInvalid},
		{"unknown collect fee mode", func(c *config.PoolConfig) { c.CollectFeeMode = 7 }, fees.ErrInvalidFeeMode},
		{"unknown activation type", func(c *config.PoolConfig) { c.ActivationType = 9 }, config.ErrInvalidActivationType},
		{"token decimal too low", func(c *config.PoolConfig) { c.TokenDecimal = 5 }, config.ErrInvalidTokenDecimal},
		{"token decimal too high", func(c *config.PoolConfig) { c.TokenDecimal = 10 }, config.ErrInvalidTokenDecimal},
		{"unknown migration fee option", func(c *config.PoolConfig) { c.MigrationFeeOption = 9 }, config.ErrInvalidMigrationFeeOption},
		{"damm v1 with token-2022", func(c *config.PoolConfig) { c.TokenType = config.TokenToken2022 }, config.ErrInvalidMigrationAndTokenType},
		{"lp split short of 100", func(c *config.PoolConfig) { c.LpDistribution.CreatorLpPercentage = 99 }, config.ErrInvalidLpPercentageSum},
		{"zero quote threshold", func(c *config.PoolConfig) { c.MigrationQuoteThreshold = 0 }, config.ErrInvalidQuoteThreshold},
		{"start price below minimum", func(c *config.PoolConfig) { c.SqrtStartPrice = uint128.From64(1) }, curve.ErrInvalidSqrtPrice},
		{"start price at maximum", func(c *config.PoolConfig) { c.SqrtStartPrice = curve.MaxSqrtPrice }, curve.ErrInvalidSqrtPrice},
		{"empty curve", func(c *config.PoolConfig) { c.Curve = nil }, curve.ErrInvalidCurve},
		{"oversized curve", func(c *config.PoolConfig) {
			point := c.Curve[0]
			c.Curve = nil
			for i := 0; i < config.MaxCurvePoint+1; i++ {
				c.Curve = append(c.Curve, point)
			}
		}, curve.ErrInvalidCurve},
		{"non-increasing prices", func(c *config.PoolConfig) {
			c.Curve = append(c.Curve, c.Curve[0])
		}, curve.ErrInvalidCurve},
		{"zero liquidity", func(c *config.PoolConfig) { c.Curve[0].Liquidity = uint128.Zero }, curve.ErrInvalidCurve},
		{"first point not above start", func(c *config.PoolConfig) { c.SqrtStartPrice = c.Curve[0].SqrtPrice }, curve.ErrInvalidCurve},
		{"vesting zero frequency", func(c *config.PoolConfig) {
			c.LockedVesting = vesting.LockedVesting{NumberOfPeriod: 10, AmountPerPeriod: 5}
		}, vesting.ErrInvalidVesting},
		{"pre below post", func(c *config.PoolConfig) { c.TokenSupply.PreMigrationTokenSupply = 1 }, config.ErrInvalidTokenSupply},
		{"post below curve minimum", func(c *config.PoolConfig) {
			c.TokenSupply.PostMigrationTokenSupply = 1
			c.TokenSupply.PreMigrationTokenSupply = 1
		}, config.ErrInvalidTokenSupply},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := config.Validate(cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMigrationBaseToken(t *testing.T) {
	sqrtMigrationPrice := uint128.From64(1041383648506654343)

	v1, err := config.MigrationBaseToken(95_076_407_914, sqrtMigrationPrice, config.MigrationDammV1)
	require.NoError(t, err)
	assert.Equal(t, uint64(29_832_572_298_086), v1)

	// the v2 deposit seeds a range position and stays within a few parts
	// per million of the spot deposit
	v2, err := config.MigrationBaseToken(95_076_407_914, sqrtMigrationPrice, config.MigrationDammV2)
	require.NoError(t, err)
	assert.InEpsilon(t, float64(v1), float64(v2), 1e-4)
}

func TestMinimumBaseSupplyMatchesReferenceConfig(t *testing.T) {
	cfg := validConfig()
	minPost, err := config.MinimumBaseSupply(
		cfg.MigrationQuoteThreshold, cfg.SqrtStartPrice, cfg.Curve, cfg.LockedVesting, cfg.MigrationOption, false)
	require.NoError(t, err)
	// swap base + migration deposit account for the entire supply
	assert.Equal(t, uint128.From64(1_000_000_000_000_000), minPost)

	minPre, err := config.MinimumBaseSupply(
		cfg.MigrationQuoteThreshold, cfg.SqrtStartPrice, cfg.Curve, cfg.LockedVesting, cfg.MigrationOption, true)
	require.NoError(t, err)
	// the 25% buffer is capped by the curve itself here
	assert.Equal(t, minPost, minPre)
}

func TestWireRoundTrip(t *testing.T) {
	cfg := validConfig()
	cfg.LockedVesting = vesting.LockedVesting{
		AmountPerPeriod:   10_000_000_000,
		Frequency:         31536,
		NumberOfPeriod:    1000,
		CliffUnlockAmount: 3,
	}

	raw, err := cfg.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, raw, 800, "wire layout size changed")

	var back config.PoolConfig
	require.NoError(t, back.UnmarshalBinary(raw))
	assert.Equal(t, cfg.PoolFees, back.PoolFees)
	assert.Equal(t, cfg.MigrationQuoteThreshold, back.MigrationQuoteThreshold)
	assert.Equal(t, cfg.SqrtStartPrice, back.SqrtStartPrice)
	assert.Equal(t, cfg.LockedVesting, back.LockedVesting)
	assert.Equal(t, cfg.TokenSupply, back.TokenSupply)
	assert.Equal(t, cfg.Curve, back.Curve)
}

func TestMarshalRejectsOversizedCurve(t *testing.T) {
	cfg := validConfig()
	for i := 0; i < config.MaxCurvePoint; i++ {
		cfg.Curve = append(cfg.Curve, cfg.Curve[0])
	}
	_, err := cfg.MarshalBinary()
	assert.ErrorIs(t, err, curve.ErrInvalidCurve)
}
