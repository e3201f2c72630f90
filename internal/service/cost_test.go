package service

import (
	"math"
	"testing"

	"github.com/GoAMM/hookgate/internal/config"
	"github.com/GoAMM/hookgate/internal/model"
)

func testEngine() *DecisionEngine {
	return NewDecisionEngine(NewFixedCostModel(config.CostConfig{
		StandardCost: 150000,
		RelayedCost:  90000,
		UnitSize:     1_000_000,
	}))
}

func TestMagnitudeAbsoluteValue(t *testing.T) {
	e := testEngine()

	cases := []struct {
		in   int64
		want uint64
	}{
		{0, 0},
		{42, 42},
		{-42, 42},
		{math.MaxInt64, uint64(math.MaxInt64)},
		// MinInt64 cannot be negated; it maps to maxPositive + 1
		{math.MinInt64, 1 << 63},
	}
	for _, tc := range cases {
		got := e.Magnitude(model.SwapRequest{Magnitude: tc.in})
		if got != tc.want {
			t.Fatalf("Magnitude(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestEstimateConsidersOnlyLargeSwaps(t *testing.T) {
	e := testEngine()

	// exactly one unit is not enough
	consider, savings := e.Estimate(model.SwapRequest{Magnitude: 1_000_000})
	if consider || savings != 0 {
		t.Fatalf("one-unit swap should not be considered, got (%v, %d)", consider, savings)
	}

	consider, savings = e.Estimate(model.SwapRequest{Magnitude: 1_000_001})
	if !consider {
		t.Fatal("swap above one unit should be considered")
	}
	if savings != 60000 {
		t.Fatalf("savings = %d, want 60000", savings)
	}

	// negative magnitudes count by absolute value
	consider, _ = e.Estimate(model.SwapRequest{Magnitude: -2_000_000})
	if !consider {
		t.Fatal("negative large swap should be considered")
	}
}

func TestDecideThresholdAndOptIn(t *testing.T) {
	e := testEngine()
	req := model.SwapRequest{Magnitude: 2_000_000, OptIn: true}

	relay, savings := e.Decide(req, 50000)
	if !relay || savings != 60000 {
		t.Fatalf("expected relay with savings 60000, got (%v, %d)", relay, savings)
	}

	// savings must strictly exceed the threshold
	relay, _ = e.Decide(req, 60000)
	if relay {
		t.Fatal("savings equal to threshold must not relay")
	}

	// opt-out wins even when the numbers qualify
	req.OptIn = false
	relay, savings = e.Decide(req, 50000)
	if relay {
		t.Fatal("opted-out request must not relay")
	}
	if savings != 60000 {
		t.Fatalf("savings should still be reported, got %d", savings)
	}
}

func TestDecideSmallSwapNeverRelays(t *testing.T) {
	e := testEngine()
	req := model.SwapRequest{Magnitude: 10, OptIn: true}

	// even a zero threshold cannot make a small swap relay
	if relay, _ := e.Decide(req, 0); relay {
		t.Fatal("small swap relayed")
	}
}

func TestIncentiveFee(t *testing.T) {
	e := testEngine()

	if fee := e.IncentiveFee(60000); fee != 600 {
		t.Fatalf("IncentiveFee(60000) = %d, want 600", fee)
	}
	if fee := e.IncentiveFee(0); fee != 0 {
		t.Fatalf("IncentiveFee(0) = %d, want 0", fee)
	}
	// saturates at the fee encoding's maximum
	if fee := e.IncentiveFee(math.MaxUint64); fee != MaxFee {
		t.Fatalf("IncentiveFee(MaxUint64) = %d, want %d", fee, MaxFee)
	}
	if fee := e.IncentiveFee(uint64(MaxFee)*100 + 100); fee != MaxFee {
		t.Fatalf("fee above encoding bound must clamp, got %d", fee)
	}
}

func TestFixedCostModelDefaults(t *testing.T) {
	m := NewFixedCostModel(config.CostConfig{})
	if m.StandardCost() != 150000 || m.RelayedCost() != 90000 {
		t.Fatalf("unexpected defaults: %d/%d", m.StandardCost(), m.RelayedCost())
	}
	if m.UnitSize() != 1_000_000_000_000_000_000 {
		t.Fatalf("unexpected default unit size: %d", m.UnitSize())
	}
}

func TestDecodeOptIn(t *testing.T) {
	if !DecodeOptIn(nil) {
		t.Fatal("absent payload must default to opt-in")
	}
	if !DecodeOptIn([]byte{}) {
		t.Fatal("empty payload must default to opt-in")
	}
	if DecodeOptIn([]byte{0}) {
		t.Fatal("zero byte must decode as opt-out")
	}
	if !DecodeOptIn([]byte{1}) {
		t.Fatal("nonzero byte must decode as opt-in")
	}
	// ABI-style 32-byte bool: last byte decides
	abiFalse := make([]byte, 32)
	if DecodeOptIn(abiFalse) {
		t.Fatal("ABI false must decode as opt-out")
	}
	abiTrue := make([]byte, 32)
	abiTrue[31] = 1
	if !DecodeOptIn(abiTrue) {
		t.Fatal("ABI true must decode as opt-in")
	}
}
