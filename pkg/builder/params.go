// Package builder turns market-shaped launch intents (market caps, supply
// percentages, fee schedules, vesting plans, liquidity weights) into
// fully-formed pool configurations ready for on-chain submission.
package builder

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/launchkit/go-bonding-curve-toolkit/pkg/config"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/fees"
)

var (
	// ErrInvalidParam indicates an intent record the builders cannot honour.
	ErrInvalidParam = errors.New("invalid builder parameter")
)

// LockedVestingParam is the human-level vesting intent, amounts in whole
// tokens. A zero TotalLockedVestingAmount means no vesting.
type LockedVestingParam struct {
	TotalLockedVestingAmount       uint64
	NumberOfVestingPeriod          uint64
	CliffUnlockAmount              uint64
	TotalVestingDuration           uint64
	CliffDurationFromMigrationTime uint64
}

// BaseParam carries the intent fields shared by every builder.
type BaseParam struct {
	TotalTokenSupply   uint64 // whole base tokens
	MigrationOption    config.MigrationOption
	TokenBaseDecimal   uint8
	TokenQuoteDecimal  uint8
	LockedVesting      LockedVestingParam
	BaseFee            fees.BaseFeeConfig
	DynamicFee         fees.DynamicFeeConfig
	ProtocolFeePercent uint8
	ReferralFeePercent uint8
	ActivationType     config.ActivationType
	CollectFeeMode     fees.CollectFeeMode
	MigrationFeeOption config.MigrationFeeOption
	TokenType          config.TokenType
	LpDistribution     config.LpDistribution
}

// BuildCurveParam is the explicit intent: the migration percentage and the
// quote threshold are given directly.
type BuildCurveParam struct {
	BaseParam
	PercentageSupplyOnMigration decimal.Decimal
	MigrationQuoteThreshold     decimal.Decimal // quote tokens
}

// BuildCurveByMarketCapParam derives percentage and threshold from the
// starting and migration market caps.
type BuildCurveByMarketCapParam struct {
	BaseParam
	InitialMarketCap   decimal.Decimal // quote tokens
	MigrationMarketCap decimal.Decimal // quote tokens
}

// liquidityWeightCount is the fixed segment count of the weighted builder.
const liquidityWeightCount = 16

// BuildCurveWithLiquidityWeightsParam shapes the pre-migration range as 16
// geometric segments whose liquidity follows the given weights.
type BuildCurveWithLiquidityWeightsParam struct {
	BaseParam
	InitialMarketCap   decimal.Decimal
	MigrationMarketCap decimal.Decimal
	LiquidityWeights   []decimal.Decimal // exactly 16 positive weights
}

// BuildCurveWithTwoSegmentsParam fixes the first-segment slope via the
// migration market cap and supply percentage, with a terminal segment
// soaking up the remaining supply.
type BuildCurveWithTwoSegmentsParam struct {
	BaseParam
	MigrationMarketCap          decimal.Decimal
	PercentageSupplyOnMigration decimal.Decimal
}

// FirstBuyParam pins the creator's first fill: swapping QuoteAmount right
// after launch returns BaseAmount, up to integer rounding of a few atoms.
type FirstBuyParam struct {
	QuoteAmount uint64 // quote atoms
	BaseAmount  uint64 // base atoms
}

// BuildCurveWithCreatorFirstBuyParam is the weighted builder with the start
// price offset to honour the creator's first buy.
type BuildCurveWithCreatorFirstBuyParam struct {
	BuildCurveWithLiquidityWeightsParam
	FirstBuy FirstBuyParam
}
