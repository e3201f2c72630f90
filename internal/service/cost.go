package service

import (
	"github.com/GoAMM/hookgate/internal/config"
	"github.com/GoAMM/hookgate/internal/model"
)

// MaxFee is the largest representable value in the host's fee encoding
// (24-bit unsigned). IncentiveFee saturates here instead of failing.
const MaxFee uint32 = 1<<24 - 1

const (
	defaultStandardCost = 150000
	defaultRelayedCost  = 90000
	// One whole unit of the venue base currency, 18 decimals
	defaultUnitSize = 1_000_000_000_000_000_000
)

// CostModel estimates execution expense in abstract cost units. It is a
// swappable strategy so the decision engine stays testable independent of
// real-world cost figures; this service ships only the fixed-constant model.
type CostModel interface {
	StandardCost() uint64
	RelayedCost() uint64
	UnitSize() uint64
}

type FixedCostModel struct {
	standard uint64
	relayed  uint64
	unit     uint64
}

func NewFixedCostModel(cfg config.CostConfig) *FixedCostModel {
	m := &FixedCostModel{
		standard: cfg.StandardCost,
		relayed:  cfg.RelayedCost,
		unit:     cfg.UnitSize,
	}
	if m.standard == 0 {
		m.standard = defaultStandardCost
	}
	if m.relayed == 0 {
		m.relayed = defaultRelayedCost
	}
	if m.unit == 0 {
		m.unit = defaultUnitSize
	}
	return m
}

func (m *FixedCostModel) StandardCost() uint64 { return m.standard }
func (m *FixedCostModel) RelayedCost() uint64  { return m.relayed }
func (m *FixedCostModel) UnitSize() uint64     { return m.unit }

// DecisionEngine 结合成本模型、阈值与用户 opt-in 决定是否转交 relayer
type DecisionEngine struct {
	model CostModel
}

func NewDecisionEngine(model CostModel) *DecisionEngine {
	return &DecisionEngine{model: model}
}

func (e *DecisionEngine) UnitSize() uint64 { return e.model.UnitSize() }

// Magnitude returns the absolute swap magnitude. MinInt64 maps to 1<<63
// rather than being negated (which would overflow).
func (e *DecisionEngine) Magnitude(req model.SwapRequest) uint64 {
	return model.Abs(req.Magnitude)
}

// Estimate reports whether the swap is large enough to be worth deferring
// (strictly more than one base-currency unit) and the projected savings in
// cost units. Total: never fails, returns (false, 0) for small swaps.
func (e *DecisionEngine) Estimate(req model.SwapRequest) (bool, uint64) {
	if e.Magnitude(req) <= e.model.UnitSize() {
		return false, 0
	}
	standard, relayed := e.model.StandardCost(), e.model.RelayedCost()
	if relayed >= standard {
		return true, 0
	}
	return true, standard - relayed
}

// Decide runs the estimate against the effective threshold. The relay only
// triggers when the requester opted in (absent payload defaults opt-in to
// true at the boundary).
func (e *DecisionEngine) Decide(req model.SwapRequest, threshold uint64) (bool, uint64) {
	_, savings := e.Estimate(req)
	shouldRelay := savings > threshold && req.OptIn
	return shouldRelay, savings
}

// IncentiveFee converts savings into the fee credited to the requester:
// 1% of the projected savings, clamped to the fee encoding's maximum.
// Pure and total: it only saturates, never fails.
func (e *DecisionEngine) IncentiveFee(savings uint64) uint32 {
	fee := savings / 100
	if fee > uint64(MaxFee) {
		return MaxFee
	}
	return uint32(fee)
}
