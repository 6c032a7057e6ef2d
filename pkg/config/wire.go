package config

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"lukechampine.com/uint128"

	"github.com/launchkit/go-bonding-curve-toolkit/pkg/curve"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/fees"
)

// The wire layout mirrors the on-chain account byte for byte: little-endian
// u64/u128 fields in declaration order, with the curve padded to
// MaxCurvePoint entries by {MaxSqrtPrice, 0} sentinels. Padding happens
// here at emit time; in-memory curves stay bounded slices.

func u128ToBin(x uint128.Uint128) bin.Uint128 {
	return bin.Uint128{Lo: x.Lo, Hi: x.Hi}
}

func u128FromBin(x bin.Uint128) uint128.Uint128 {
	return uint128.New(x.Lo, x.Hi)
}

// MarshalBinary serialises the configuration into the on-chain byte layout.
func (c *PoolConfig) MarshalBinary() ([]byte, error) {
	if len(c.Curve) > MaxCurvePoint {
		return nil, fmt.Errorf("%w: %d points exceeds %d", curve.ErrInvalidCurve, len(c.Curve), MaxCurvePoint)
	}
	var buf bytes.Buffer
	enc := bin.NewBorshEncoder(&buf)

	base := c.PoolFees.BaseFee
	if err := enc.WriteUint64(base.CliffFeeNumerator, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteByte(byte(base.Mode)); err != nil {
		return nil, err
	}
	if err := enc.WriteUint16(base.FirstFactor, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(base.SecondFactor, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteUint128(u128ToBin(base.ThirdFactor), binary.LittleEndian); err != nil {
		return nil, err
	}

	dyn := c.PoolFees.DynamicFee
	initialized := byte(0)
	if dyn.Initialized {
		initialized = 1
	}
	if err := enc.WriteByte(initialized); err != nil {
		return nil, err
	}
	if err := enc.WriteUint16(dyn.BinStep, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteUint128(u128ToBin(dyn.BinStepU128), binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteUint16(dyn.FilterPeriod, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteUint16(dyn.DecayPeriod, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteUint16(dyn.ReductionFactor, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteUint32(dyn.VariableFeeControl, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteUint32(dyn.MaxVolatilityAccumulator, binary.LittleEndian); err != nil {
		return nil, err
	}

	scalars := []byte{
		c.PoolFees.ProtocolFeePercent,
		c.PoolFees.ReferralFeePercent,
		byte(c.CollectFeeMode),
		byte(c.MigrationOption),
		byte(c.TokenType),
		byte(c.ActivationType),
		c.TokenDecimal,
		byte(c.MigrationFeeOption),
	}
	for _, b := range scalars {
		if err := enc.WriteByte(b); err != nil {
			return nil, err
		}
	}

	if err := enc.WriteUint64(c.MigrationQuoteThreshold, binary.LittleEndian); err != nil {
		return nil, err
	}
	lp := []byte{
		c.LpDistribution.PartnerLpPercentage,
		c.LpDistribution.PartnerLockedLpPercentage,
		c.LpDistribution.CreatorLpPercentage,
		c.LpDistribution.CreatorLockedLpPercentage,
	}
	for _, b := range lp {
		if err := enc.WriteByte(b); err != nil {
			return nil, err
		}
	}
	if err := enc.WriteUint128(u128ToBin(c.SqrtStartPrice), binary.LittleEndian); err != nil {
		return nil, err
	}

	v := c.LockedVesting
	for _, field := range []uint64{
		v.AmountPerPeriod,
		v.CliffDurationFromMigrationTime,
		v.Frequency,
		v.NumberOfPeriod,
		v.CliffUnlockAmount,
	} {
		if err := enc.WriteUint64(field, binary.LittleEndian); err != nil {
			return nil, err
		}
	}

	if err := enc.WriteUint64(c.TokenSupply.PreMigrationTokenSupply, binary.LittleEndian); err != nil {
		return nil, err
	}
	if err := enc.WriteUint64(c.TokenSupply.PostMigrationTokenSupply, binary.LittleEndian); err != nil {
		return nil, err
	}

	for i := 0; i < MaxCurvePoint; i++ {
		point := curve.Point{SqrtPrice: curve.MaxSqrtPrice}
		if i < len(c.Curve) {
			point = c.Curve[i]
		}
		if err := enc.WriteUint128(u128ToBin(point.SqrtPrice), binary.LittleEndian); err != nil {
			return nil, err
		}
		if err := enc.WriteUint128(u128ToBin(point.Liquidity), binary.LittleEndian); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a configuration from the on-chain byte layout.
// Sentinel padding points are dropped from the in-memory curve.
func (c *PoolConfig) UnmarshalBinary(data []byte) error {
	dec := bin.NewBorshDecoder(data)

	var err error
	if c.PoolFees.BaseFee.CliffFeeNumerator, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	mode, err := dec.ReadByte()
	if err != nil {
		return err
	}
	c.PoolFees.BaseFee.Mode = fees.BaseFeeMode(mode)
	if c.PoolFees.BaseFee.FirstFactor, err = dec.ReadUint16(binary.LittleEndian); err != nil {
		return err
	}
	if c.PoolFees.BaseFee.SecondFactor, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	third, err := dec.ReadUint128(binary.LittleEndian)
	if err != nil {
		return err
	}
	c.PoolFees.BaseFee.ThirdFactor = u128FromBin(third)

	initialized, err := dec.ReadByte()
	if err != nil {
		return err
	}
	c.PoolFees.DynamicFee.Initialized = initialized != 0
	if c.PoolFees.DynamicFee.BinStep, err = dec.ReadUint16(binary.LittleEndian); err != nil {
		return err
	}
	binStep, err := dec.ReadUint128(binary.LittleEndian)
	if err != nil {
		return err
	}
	c.PoolFees.DynamicFee.BinStepU128 = u128FromBin(binStep)
	if c.PoolFees.DynamicFee.FilterPeriod, err = dec.ReadUint16(binary.LittleEndian); err != nil {
		return err
	}
	if c.PoolFees.DynamicFee.DecayPeriod, err = dec.ReadUint16(binary.LittleEndian); err != nil {
		return err
	}
	if c.PoolFees.DynamicFee.ReductionFactor, err = dec.ReadUint16(binary.LittleEndian); err != nil {
		return err
	}
	if c.PoolFees.DynamicFee.VariableFeeControl, err = dec.ReadUint32(binary.LittleEndian); err != nil {
		return err
	}
	if c.PoolFees.DynamicFee.MaxVolatilityAccumulator, err = dec.ReadUint32(binary.LittleEndian); err != nil {
		return err
	}

	scalars := make([]byte, 8)
	for i := range scalars {
		if scalars[i], err = dec.ReadByte(); err != nil {
			return err
		}
	}
	c.PoolFees.ProtocolFeePercent = scalars[0]
	c.PoolFees.ReferralFeePercent = scalars[1]
	c.CollectFeeMode = fees.CollectFeeMode(scalars[2])
	c.MigrationOption = MigrationOption(scalars[3])
	c.TokenType = TokenType(scalars[4])
	c.ActivationType = ActivationType(scalars[5])
	c.TokenDecimal = scalars[6]
	c.MigrationFeeOption = MigrationFeeOption(scalars[7])

	if c.MigrationQuoteThreshold, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	lp := make([]byte, 4)
	for i := range lp {
		if lp[i], err = dec.ReadByte(); err != nil {
			return err
		}
	}
	c.LpDistribution = LpDistribution{lp[0], lp[1], lp[2], lp[3]}

	start, err := dec.ReadUint128(binary.LittleEndian)
	if err != nil {
		return err
	}
	c.SqrtStartPrice = u128FromBin(start)

	vestingFields := make([]uint64, 5)
	for i := range vestingFields {
		if vestingFields[i], err = dec.ReadUint64(binary.LittleEndian); err != nil {
			return err
		}
	}
	c.LockedVesting.AmountPerPeriod = vestingFields[0]
	c.LockedVesting.CliffDurationFromMigrationTime = vestingFields[1]
	c.LockedVesting.Frequency = vestingFields[2]
	c.LockedVesting.NumberOfPeriod = vestingFields[3]
	c.LockedVesting.CliffUnlockAmount = vestingFields[4]

	if c.TokenSupply.PreMigrationTokenSupply, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}
	if c.TokenSupply.PostMigrationTokenSupply, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return err
	}

	c.Curve = c.Curve[:0]
	for i := 0; i < MaxCurvePoint; i++ {
		sqrtPrice, err := dec.ReadUint128(binary.LittleEndian)
		if err != nil {
			return err
		}
		liquidity, err := dec.ReadUint128(binary.LittleEndian)
		if err != nil {
			return err
		}
		point := curve.Point{SqrtPrice: u128FromBin(sqrtPrice), Liquidity: u128FromBin(liquidity)}
		if point.Liquidity.IsZero() {
			continue
		}
		c.Curve = append(c.Curve, point)
	}
	return nil
}
