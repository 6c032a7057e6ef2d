package primitives

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"lukechampine.com/uint128"
)

func TestMulDivRounding(t *testing.T) {
	tests := []struct {
		name     string
		x, y, d  uint64
		rounding Rounding
		want     uint64
	}{
		{"exact down", 10, 10, 4, RoundDown, 25},
		{"exact up", 10, 10, 4, RoundUp, 25},
		{"inexact down", 10, 10, 3, RoundDown, 33},
		{"inexact up", 10, 10, 3, RoundUp, 34},
		{"zero numerator", 0, 10, 3, RoundUp, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SafeMulDivU64(tt.x, tt.y, tt.d, tt.rounding)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMulDivErrors(t *testing.T) {
	if _, err := SafeMulDivU64(1, 1, 0, RoundDown); !errors.Is(err, ErrDivByZero) {
		t.Errorf("expected ErrDivByZero, got %v", err)
	}
	// u64 overflow of the result
	if _, err := SafeMulDivU64(1<<63, 4, 1, RoundDown); !errors.Is(err, ErrMathOverflow) {
		t.Errorf("expected ErrMathOverflow, got %v", err)
	}
	// 256-bit overflow of the product
	max := uint128.Max
	if _, err := MulDiv(U256(max).Lsh(U256(max), 64), U256(max), U256From64(1), RoundDown); !errors.Is(err, ErrMathOverflow) {
		t.Errorf("expected ErrMathOverflow on wide product, got %v", err)
	}
}

func TestCheckedOps(t *testing.T) {
	if _, err := CheckedSub(uint128.From64(1), uint128.From64(2)); !errors.Is(err, ErrMathUnderflow) {
		t.Errorf("expected ErrMathUnderflow, got %v", err)
	}
	if _, err := CheckedAdd(uint128.Max, uint128.From64(1)); !errors.Is(err, ErrMathOverflow) {
		t.Errorf("expected ErrMathOverflow, got %v", err)
	}
	if _, err := CheckedMul(uint128.Max, uint128.From64(2)); !errors.Is(err, ErrMathOverflow) {
		t.Errorf("expected ErrMathOverflow, got %v", err)
	}
	if _, err := CheckedDiv(uint128.From64(1), uint128.Zero); !errors.Is(err, ErrDivByZero) {
		t.Errorf("expected ErrDivByZero, got %v", err)
	}
	got, err := CheckedSub(uint128.From64(7), uint128.From64(5))
	if err != nil || !got.Equals64(2) {
		t.Errorf("7-5: got %v, %v", got, err)
	}
}

func TestShifts(t *testing.T) {
	if _, err := Shl(uint128.From64(1), 128); !errors.Is(err, ErrInvalidShift) {
		t.Errorf("expected ErrInvalidShift, got %v", err)
	}
	if _, err := Shl(uint128.Max, 1); !errors.Is(err, ErrMathOverflow) {
		t.Errorf("expected ErrMathOverflow, got %v", err)
	}
	got, err := Shl(uint128.From64(3), 64)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != uint128.New(0, 3) {
		t.Errorf("3<<64: got %v", got)
	}
	back, err := Shr(got, 64)
	if err != nil || !back.Equals64(3) {
		t.Errorf("round trip failed: %v, %v", back, err)
	}
}

func TestMulShrCeiling(t *testing.T) {
	// 3·5 = 15; 15>>2 = 3 down, 4 up
	down, err := MulShr(uint128.From64(3), uint128.From64(5), 2, RoundDown)
	if err != nil || !down.Equals64(3) {
		t.Errorf("down: got %v, %v", down, err)
	}
	up, err := MulShr(uint128.From64(3), uint128.From64(5), 2, RoundUp)
	if err != nil || !up.Equals64(4) {
		t.Errorf("up: got %v, %v", up, err)
	}
}

func TestSqrtPriceFromPriceKnownValue(t *testing.T) {
	// the S1 migration price: threshold / migration supply at 6/9 decimals
	threshold := decimal.RequireFromString("95.07640791476408")
	supply := decimal.RequireFromString("29832572.29832572")
	price := threshold.DivRound(supply, 40)
	got, err := SqrtPriceFromPrice(price, 6, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := uint128.From64(1041383648506654343)
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSqrtPriceRoundTrip(t *testing.T) {
	tests := []struct {
		price    string
		baseDec  uint8
		quoteDec uint8
	}{
		{"1", 6, 9},
		{"0.0000000235", 6, 9},
		{"405.882352941", 9, 9},
		{"3187.0000000000003", 6, 6},
		{"0.00000000000047", 6, 9},
	}
	// relative drift bound: one ulp of the floored √price, squared
	tolerance := decimal.New(1, -13)
	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			p := decimal.RequireFromString(tt.price)
			sqrtPrice, err := SqrtPriceFromPrice(p, tt.baseDec, tt.quoteDec)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			back := PriceFromSqrtPrice(sqrtPrice, tt.baseDec, tt.quoteDec)
			diff := back.Sub(p).Abs().DivRound(p, 30)
			if diff.Cmp(tolerance) > 0 {
				t.Errorf("round trip drifted: %s -> %s (rel %s)", p, back, diff)
			}
		})
	}
}

func TestSqrtPriceFromPriceRejectsNonPositive(t *testing.T) {
	if _, err := SqrtPriceFromPrice(decimal.Zero, 6, 9); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("expected ErrInvalidPrice, got %v", err)
	}
	if _, err := SqrtPriceFromPrice(decimal.NewFromInt(-1), 6, 9); !errors.Is(err, ErrInvalidPrice) {
		t.Errorf("expected ErrInvalidPrice, got %v", err)
	}
}
