// Package config defines the validated pool configuration emitted by the
// curve builders and consumed by the on-chain program, together with its
// supply accounting, cross-field validation, and wire serialisation.
package config

import (
	"errors"

	"lukechampine.com/uint128"

	"github.com/launchkit/go-bonding-curve-toolkit/pkg/curve"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/fees"
	"github.com/launchkit/go-bonding-curve-toolkit/pkg/vesting"
)

// MaxCurvePoint is the fixed on-wire curve capacity. Builders, the
// validator, and the serialiser all assert against this one constant.
const MaxCurvePoint = 20

// Token decimal bounds accepted by the program.
const (
	MinTokenDecimal uint8 = 6
	MaxTokenDecimal uint8 = 9
)

var (
	// ErrInvalidActivationType indicates an unknown activation type.
	ErrInvalidActivationType = errors.New("invalid activation type")
	// ErrInvalidTokenDecimal indicates a token decimal outside [6, 9].
	ErrInvalidTokenDecimal = errors.New("invalid token decimal")
	// ErrInvalidMigrationFeeOption indicates an unknown migration fee option.
	ErrInvalidMigrationFeeOption = errors.New("invalid migration fee option")
	// ErrInvalidMigrationAndTokenType indicates an unsupported
	// migration-venue / token-standard combination.
	ErrInvalidMigrationAndTokenType = errors.New("invalid migration and token type combination")
	// ErrInvalidLpPercentageSum indicates an LP split that does not sum to 100.
	ErrInvalidLpPercentageSum = errors.New("lp percentages must sum to 100")
	// ErrInvalidQuoteThreshold indicates a zero migration quote threshold.
	ErrInvalidQuoteThreshold = errors.New("migration quote threshold must be positive")
	// ErrInvalidTokenSupply indicates supply bounds that cannot back the curve.
	ErrInvalidTokenSupply = errors.New("invalid token supply")
)

// MigrationOption selects the AMM venue the pool migrates into.
type MigrationOption uint8

const (
	// MigrationDammV1 migrates into the v1 constant-product AMM.
	MigrationDammV1 MigrationOption = iota
	// MigrationDammV2 migrates into the v2 concentrated-liquidity AMM.
	MigrationDammV2
)

// TokenType selects the token standard of the base mint.
type TokenType uint8

const (
	// TokenSPL is the legacy token standard.
	TokenSPL TokenType = iota
	// TokenToken2022 is the extension-bearing token standard.
	TokenToken2022
)

// ActivationType selects the unit of activation points.
type ActivationType uint8

const (
	// ActivationSlot counts activation in slots.
	ActivationSlot ActivationType = iota
	// ActivationTimestamp counts activation in unix seconds.
	ActivationTimestamp
)

// MigrationFeeOption indexes the fee tier of the migrated pool.
type MigrationFeeOption uint8

const (
	MigrationFee25Bps MigrationFeeOption = iota
	MigrationFee30Bps
	MigrationFee100Bps
	MigrationFee200Bps
)

// Bps returns the fee tier in basis points, or 0 for an unknown option.
func (o MigrationFeeOption) Bps() uint16 {
	switch o {
	case MigrationFee25Bps:
		return 25
	case MigrationFee30Bps:
		return 30
	case MigrationFee100Bps:
		return 100
	case MigrationFee200Bps:
		return 200
	default:
		return 0
	}
}

// TokenSupply carries the minted supply around the migration boundary, in
// base-token atoms.
type TokenSupply struct {
	PreMigrationTokenSupply  uint64
	PostMigrationTokenSupply uint64
}

// LpDistribution splits the migrated pool's LP tokens, in whole percent.
// The four shares must sum to 100.
type LpDistribution struct {
	PartnerLpPercentage       uint8
	PartnerLockedLpPercentage uint8
	CreatorLpPercentage       uint8
	CreatorLockedLpPercentage uint8
}

// PoolConfig is the complete, immutable launch configuration: fee schedule,
// migration parameters, vesting, supplies, and the bonding curve itself.
type PoolConfig struct {
	PoolFees                fees.PoolFees
	CollectFeeMode          fees.CollectFeeMode
	MigrationOption         MigrationOption
	TokenType               TokenType
	ActivationType          ActivationType
	TokenDecimal            uint8
	MigrationFeeOption      MigrationFeeOption
	MigrationQuoteThreshold uint64
	LpDistribution          LpDistribution
	SqrtStartPrice          uint128.Uint128
	LockedVesting           vesting.LockedVesting
	TokenSupply             TokenSupply
	Curve                   []curve.Point
}
