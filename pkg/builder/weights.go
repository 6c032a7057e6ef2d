package builder

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"lukechampine.com/uint128"

	"github.com/launchkit/go-bonding-curve-toolkit/pkg/config"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/curve"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/primitives"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/vesting"
)

// BuildCurveWithLiquidityWeights shapes the pre-migration range as sixteen
// geometric √price segments between the two cap prices, each segment's
// liquidity scaled by its weight and the whole curve normalised so the
// integrated quote reaches the migration threshold.
func BuildCurveWithLiquidityWeights(param BuildCurveWithLiquidityWeightsParam) (*config.PoolConfig, error) {
	sqrtStartPrice, points, thresholdAtoms, locked, totalSupplyAtoms, migrationBase, vestingAtoms, err := weightedCurve(param)
	if err != nil {
		return nil, err
	}
	sqrtMigrationPrice := points[len(points)-1].SqrtPrice
	points, err = appendRemainder(points, sqrtStartPrice, sqrtMigrationPrice, totalSupplyAtoms, migrationBase, vestingAtoms)
	if err != nil {
		return nil, err
	}
	return finalise(param.BaseParam, sqrtStartPrice, points, thresholdAtoms, locked, totalSupplyAtoms), nil
}

// BuildCurveWithCreatorFirstBuy is the weighted builder with the start
// price offset so that the creator's opening swap of QuoteAmount returns
// BaseAmount. The offset is solved in closed form with truncating integer
// division, so the fill matches BaseAmount to within a few atoms, not
// necessarily exactly.
func BuildCurveWithCreatorFirstBuy(param BuildCurveWithCreatorFirstBuyParam) (*config.PoolConfig, error) {
	if param.FirstBuy.QuoteAmount == 0 || param.FirstBuy.BaseAmount == 0 {
		return nil, fmt.Errorf("%w: first buy amounts must be positive", ErrInvalidParam)
	}
	sqrtStartPrice, points, thresholdAtoms, locked, totalSupplyAtoms, migrationBase, vestingAtoms, err := weightedCurve(param.BuildCurveWithLiquidityWeightsParam)
	if err != nil {
		return nil, err
	}

	offset, err := firstBuyStartPrice(param.FirstBuy, points[0].Liquidity)
	if err != nil {
		return nil, err
	}
	if offset.Cmp(curve.MinSqrtPrice) < 0 || offset.Cmp(points[0].SqrtPrice) >= 0 {
		return nil, fmt.Errorf("%w: first buy does not fit the first segment", ErrInvalidParam)
	}
	sqrtStartPrice = offset

	sqrtMigrationPrice := points[len(points)-1].SqrtPrice
	points, err = appendRemainder(points, sqrtStartPrice, sqrtMigrationPrice, totalSupplyAtoms, migrationBase, vestingAtoms)
	if err != nil {
		return nil, err
	}
	cfg := finalise(param.BaseParam, sqrtStartPrice, points, thresholdAtoms, locked, totalSupplyAtoms)

	// the widened range sells extra base to the creator; mint enough to
	// cover the final curve
	minPost, err := config.MinimumBaseSupply(thresholdAtoms, sqrtStartPrice, points, locked, param.MigrationOption, false)
	if err != nil {
		return nil, err
	}
	minPre, err := config.MinimumBaseSupply(thresholdAtoms, sqrtStartPrice, points, locked, param.MigrationOption, true)
	if err != nil {
		return nil, err
	}
	if minPost.Hi != 0 || minPre.Hi != 0 {
		return nil, primitives.ErrMathOverflow
	}
	if minPost.Lo > cfg.TokenSupply.PostMigrationTokenSupply {
		cfg.TokenSupply.PostMigrationTokenSupply = minPost.Lo
	}
	if minPre.Lo > cfg.TokenSupply.PreMigrationTokenSupply {
		cfg.TokenSupply.PreMigrationTokenSupply = minPre.Lo
	}
	if cfg.TokenSupply.PreMigrationTokenSupply < cfg.TokenSupply.PostMigrationTokenSupply {
		cfg.TokenSupply.PreMigrationTokenSupply = cfg.TokenSupply.PostMigrationTokenSupply
	}
	return cfg, nil
}

// firstBuyStartPrice solves the start √price that makes the opening fill
// exact. With first-segment liquidity L, input Q and target output B:
//
//	√P_next = √P + Q·2^128/L
//	B       = Q·2^128 / (√P·√P_next)
//
// which is the quadratic √P² + Δ·√P − Q·2^128/B = 0, Δ = Q·2^128/L.
func firstBuyStartPrice(firstBuy FirstBuyParam, liquidity uint128.Uint128) (uint128.Uint128, error) {
	if liquidity.IsZero() {
		return uint128.Zero, primitives.ErrDivByZero
	}
	q128 := new(big.Int).Lsh(new(big.Int).SetUint64(firstBuy.QuoteAmount), 128)
	delta := new(big.Int).Quo(q128, liquidity.Big())
	target := new(big.Int).Quo(q128, new(big.Int).SetUint64(firstBuy.BaseAmount))

	// (−Δ + √(Δ² + 4·target)) / 2
	disc := new(big.Int).Mul(delta, delta)
	disc.Add(disc, new(big.Int).Lsh(target, 2))
	disc.Sqrt(disc)
	disc.Sub(disc, delta)
	disc.Rsh(disc, 1)
	if disc.Sign() <= 0 || disc.BitLen() > 128 {
		return uint128.Zero, primitives.ErrMathOverflow
	}
	return uint128.FromBig(disc), nil
}

// weightedCurve builds the sixteen-segment weighted curve shared by the
// weights and creator-first-buy builders.
func weightedCurve(param BuildCurveWithLiquidityWeightsParam) (
	sqrtStartPrice uint128.Uint128,
	points []curve.Point,
	thresholdAtoms uint64,
	locked vesting.LockedVesting,
	totalSupplyAtoms uint64,
	migrationBase uint64,
	vestingAtoms uint128.Uint128,
	err error,
) {
	fail := func(e error) (uint128.Uint128, []curve.Point, uint64, vesting.LockedVesting, uint64, uint64, uint128.Uint128, error) {
		return uint128.Zero, nil, 0, vesting.LockedVesting{}, 0, 0, uint128.Zero, e
	}

	if len(param.LiquidityWeights) != liquidityWeightCount {
		return fail(fmt.Errorf("%w: exactly %d liquidity weights required", ErrInvalidParam, liquidityWeightCount))
	}
	for i, w := range param.LiquidityWeights {
		if w.Sign() <= 0 {
			return fail(fmt.Errorf("%w: liquidity weight %d not positive", ErrInvalidParam, i))
		}
	}
	if param.InitialMarketCap.Sign() <= 0 || param.InitialMarketCap.Cmp(param.MigrationMarketCap) >= 0 {
		return fail(fmt.Errorf("%w: market caps must be positive and increasing", ErrInvalidParam))
	}

	locked, err = vesting.GetLockedVestingParams(
		param.LockedVesting.TotalLockedVestingAmount,
		param.LockedVesting.NumberOfVestingPeriod,
		param.LockedVesting.CliffUnlockAmount,
		param.LockedVesting.TotalVestingDuration,
		param.LockedVesting.CliffDurationFromMigrationTime,
		param.TokenBaseDecimal,
	)
	if err != nil {
		return fail(err)
	}
	vestingAtoms = vesting.GetTotalVestingAmount(locked)

	totalSupplyAtoms, err = tokensToAtoms(param.TotalTokenSupply, param.TokenBaseDecimal)
	if err != nil {
		return fail(err)
	}

	supply := decimalFromUint64(param.TotalTokenSupply)
	sqrtStartPrice, err = primitives.SqrtPriceFromPrice(
		param.InitialMarketCap.DivRound(supply, 40), param.TokenBaseDecimal, param.TokenQuoteDecimal)
	if err != nil {
		return fail(err)
	}
	sqrtMigrationPrice, err := primitives.SqrtPriceFromPrice(
		param.MigrationMarketCap.DivRound(supply, 40), param.TokenBaseDecimal, param.TokenQuoteDecimal)
	if err != nil {
		return fail(err)
	}
	if sqrtStartPrice.Cmp(sqrtMigrationPrice) >= 0 {
		return fail(fmt.Errorf("%w: start price not below migration price", curve.ErrInvalidCurve))
	}

	percentage, err := getPercentageSupplyOnMigration(
		param.InitialMarketCap, param.MigrationMarketCap, param.LockedVesting, param.TotalTokenSupply, param.TokenBaseDecimal)
	if err != nil {
		return fail(err)
	}
	thresholdAtoms, err = decimalToAtoms(
		param.MigrationMarketCap.Mul(percentage).Div(hundred), param.TokenQuoteDecimal)
	if err != nil {
		return fail(err)
	}

	// geometric grid: sixteen equal steps in log √price
	startDec := decimal.NewFromBigInt(sqrtStartPrice.Big(), 0)
	ratio := decimal.NewFromBigInt(sqrtMigrationPrice.Big(), 0).DivRound(startDec, 40)
	step := ratio
	for i := 0; i < 4; i++ { // 16th root by repeated square roots
		step = decimalSqrt(step)
	}

	grid := make([]uint128.Uint128, liquidityWeightCount)
	priceDec := startDec
	for i := 0; i < liquidityWeightCount; i++ {
		priceDec = priceDec.Mul(step)
		grid[i], err = u128FromDecimal(priceDec)
		if err != nil {
			return fail(err)
		}
	}
	grid[liquidityWeightCount-1] = sqrtMigrationPrice

	// normalise: Σ wᵢ·(pᵢ − pᵢ₋₁) · l₀ / 2^128 = threshold
	weightedSpan := decimal.Zero
	lower := sqrtStartPrice
	for i := 0; i < liquidityWeightCount; i++ {
		diff, subErr := primitives.CheckedSub(grid[i], lower)
		if subErr != nil {
			return fail(fmt.Errorf("%w: grid not increasing", curve.ErrInvalidCurve))
		}
		weightedSpan = weightedSpan.Add(param.LiquidityWeights[i].Mul(decimal.NewFromBigInt(diff.Big(), 0)))
		lower = grid[i]
	}
	if weightedSpan.Sign() <= 0 {
		return fail(fmt.Errorf("%w: degenerate price grid", curve.ErrInvalidCurve))
	}
	thresholdWide := decimal.NewFromBigInt(new(big.Int).Lsh(new(big.Int).SetUint64(thresholdAtoms), 128), 0)
	baseLiquidity := thresholdWide.DivRound(weightedSpan, 8)

	points = make([]curve.Point, 0, liquidityWeightCount)
	lower = sqrtStartPrice
	for i := 0; i < liquidityWeightCount; i++ {
		liquidity, convErr := u128FromDecimalCeil(baseLiquidity.Mul(param.LiquidityWeights[i]))
		if convErr != nil {
			return fail(convErr)
		}
		if liquidity.IsZero() || grid[i].Cmp(lower) <= 0 {
			return fail(fmt.Errorf("%w: degenerate segment %d", curve.ErrInvalidCurve, i))
		}
		points = append(points, curve.Point{SqrtPrice: grid[i], Liquidity: liquidity})
		lower = grid[i]
	}

	migrationBase, err = config.MigrationBaseToken(thresholdAtoms, sqrtMigrationPrice, param.MigrationOption)
	if err != nil {
		return fail(err)
	}
	return sqrtStartPrice, points, thresholdAtoms, locked, totalSupplyAtoms, migrationBase, vestingAtoms, nil
}

// u128FromDecimal truncates a non-negative decimal into a u128.
func u128FromDecimal(d decimal.Decimal) (uint128.Uint128, error) {
	i := d.BigInt()
	if i.Sign() < 0 || i.BitLen() > 128 {
		return uint128.Zero, primitives.ErrMathOverflow
	}
	return uint128.FromBig(i), nil
}

// u128FromDecimalCeil rounds a non-negative decimal up into a u128.
func u128FromDecimalCeil(d decimal.Decimal) (uint128.Uint128, error) {
	return u128FromDecimal(d.Ceil())
}
