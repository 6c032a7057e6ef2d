// Package vesting derives locked-vesting schedules for launchpad tokens: a
// cliff unlock some time after migration followed by equal periodic
// releases.
package vesting

import (
	"errors"

	"github.com/ethereum/go-ethereum/common/math"
	"lukechampine.com/uint128"
)

// ErrInvalidVesting indicates a non-default schedule with a zero frequency
// or zero total amount.
var ErrInvalidVesting = errors.New("invalid vesting parameters")

// LockedVesting is the on-chain vesting schedule, amounts in base-token
// atoms. The zero value is the recognised "no vesting" sentinel.
type LockedVesting struct {
	AmountPerPeriod                uint64
	CliffDurationFromMigrationTime uint64
	Frequency                      uint64
	NumberOfPeriod                 uint64
	CliffUnlockAmount              uint64
}

// IsDefault reports whether the schedule is the "no vesting" sentinel.
func (v LockedVesting) IsDefault() bool {
	return v == LockedVesting{}
}

// Validate accepts the default sentinel and otherwise requires a positive
// frequency and a positive total amount.
func (v LockedVesting) Validate() error {
	if v.IsDefault() {
		return nil
	}
	if v.Frequency == 0 || v.TotalAmount().IsZero() {
		return ErrInvalidVesting
	}
	return nil
}

// TotalAmount returns cliffUnlockAmount + amountPerPeriod·numberOfPeriod.
// The result is widened to 128 bits so pathological inputs cannot wrap.
func (v LockedVesting) TotalAmount() uint128.Uint128 {
	periodic := uint128.From64(v.AmountPerPeriod).Mul64(v.NumberOfPeriod)
	return periodic.Add64(v.CliffUnlockAmount)
}

// GetLockedVestingParams converts the human-level vesting intent (whole
// tokens, total duration) into the on-chain schedule in atoms. The division
// remainder of the per-period amount is absorbed into the cliff unlock so
// that the total vested amount is exactly total·10^baseDecimal.
func GetLockedVestingParams(
	totalLockedVestingAmount uint64,
	numberOfVestingPeriod uint64,
	cliffUnlockAmount uint64,
	totalVestingDuration uint64,
	cliffDurationFromMigrationTime uint64,
	baseDecimal uint8,
) (LockedVesting, error) {
	if totalLockedVestingAmount == 0 {
		return LockedVesting{}, nil
	}
	if numberOfVestingPeriod == 0 || totalVestingDuration == 0 {
		return LockedVesting{}, ErrInvalidVesting
	}
	if cliffUnlockAmount > totalLockedVestingAmount {
		return LockedVesting{}, ErrInvalidVesting
	}

	scale := math.BigPow(10, int64(baseDecimal))
	if !scale.IsUint64() {
		return LockedVesting{}, ErrInvalidVesting
	}
	atomScale := scale.Uint64()

	totalAtoms := uint128.From64(totalLockedVestingAmount).Mul64(atomScale)
	cliffAtoms := uint128.From64(cliffUnlockAmount).Mul64(atomScale)

	periodic := totalAtoms.Sub(cliffAtoms)
	amountPerPeriod := periodic.Div64(numberOfVestingPeriod)
	// remainder rolls into the cliff unlock, keeping the total exact
	remainder := periodic.Mod64(numberOfVestingPeriod)
	cliffAtoms = cliffAtoms.Add64(remainder)

	if amountPerPeriod.Hi != 0 || cliffAtoms.Hi != 0 {
		return LockedVesting{}, ErrInvalidVesting
	}

	return LockedVesting{
		AmountPerPeriod:                amountPerPeriod.Lo,
		CliffDurationFromMigrationTime: cliffDurationFromMigrationTime,
		Frequency:                      totalVestingDuration / numberOfVestingPeriod,
		NumberOfPeriod:                 numberOfVestingPeriod,
		CliffUnlockAmount:              cliffAtoms.Lo,
	}, nil
}

// GetTotalVestingAmount returns the total vested amount in atoms.
func GetTotalVestingAmount(v LockedVesting) uint128.Uint128 {
	return v.TotalAmount()
}
