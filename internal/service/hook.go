package service

import (
	"context"
	"sync"
	"time"

	"github.com/GoAMM/hookgate/internal/model"
	"github.com/GoAMM/hookgate/internal/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Notifier is the outbound, append-only event channel consumed by the
// off-chain relayer. Delivery is best-effort and at-most-once per event;
// a missed RelayRequested leaves the pending slot in place until it is
// overwritten or consumed.
type Notifier interface {
	RelayRequested(ctx context.Context, ev model.RelayRequested)
	SwapCompleted(ctx context.Context, ev model.SwapCompleted)
}

// SwapCall is one host lifecycle invocation, decoded at the HTTP boundary.
type SwapCall struct {
	Sender  model.Principal
	Venue   model.VenueID
	Request model.SwapRequest
}

type BeforeSwapResult struct {
	FeeAdjustment uint32
	Deferred      bool // a relay decision opened the pending slot
	Fulfilled     bool // an active slot was consumed by an authorized sender
}

type AfterSwapResult struct {
	WasRelayed bool
	Originator model.Principal
	AmountOut  uint64
}

// HookService 是宿主生命周期调用与核心策略之间的边界适配器
// The host serializes requests; the HTTP surface cannot assume that, so a
// single mutex makes each hook/admin call atomic with respect to the
// others. Authorization checks run before any mutation, which is why an
// Unauthorized abort never leaves partial state behind.
type HookService struct {
	mu       sync.Mutex
	registry *Registry
	policy   *ThresholdPolicy
	engine   *DecisionEngine
	tracker  *PendingTracker
	stats    *Aggregator
	notifier Notifier

	// fulfilled carries the consumed pending entry from the before-swap
	// call to the matching after-swap call of the same host request.
	fulfilled map[model.VenueID]model.PendingEntry
}

func NewHookService(registry *Registry, policy *ThresholdPolicy, engine *DecisionEngine, tracker *PendingTracker, stats *Aggregator, notifier Notifier) *HookService {
	return &HookService{
		registry:  registry,
		policy:    policy,
		engine:    engine,
		tracker:   tracker,
		stats:     stats,
		notifier:  notifier,
		fulfilled: make(map[model.VenueID]model.PendingEntry),
	}
}

// DecodeOptIn interprets the optional hook payload. An absent payload means
// the requester opts in; otherwise the last byte decides, matching the
// ABI-style bool encoding the host uses.
func DecodeOptIn(payload []byte) bool {
	if len(payload) == 0 {
		return true
	}
	return payload[len(payload)-1] != 0
}

// BeforeSwap implements the pre-swap observation point. If the venue's
// pending slot is active and the sender is authorized, the call is the
// relay fulfillment: the slot is consumed and the decision engine does not
// run. Otherwise the decision engine may defer the swap and credit an
// incentive fee.
func (s *HookService) BeforeSwap(ctx context.Context, call SwapCall) BeforeSwapResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.tracker.Peek(ctx, call.Venue); ok && s.registry.IsAuthorized(ctx, call.Sender) {
		if consumed, ok := s.tracker.Consume(ctx, call.Venue); ok {
			entry = consumed
		}
		s.fulfilled[call.Venue] = entry
		logger.Debug("pending slot fulfilled",
			"venue", call.Venue.Hex(), "sender", call.Sender.Hex(), "originator", entry.Requester.Hex())
		return BeforeSwapResult{Fulfilled: true}
	}

	threshold := s.policy.Effective(ctx, call.Venue)
	shouldRelay, savings := s.engine.Decide(call.Request, threshold)
	if !shouldRelay {
		return BeforeSwapResult{}
	}

	if err := s.tracker.Open(ctx, call.Venue, call.Request); err != nil {
		// Could not persist the slot: execute normally rather than risk a
		// fulfillment that nothing recorded.
		logger.LogError(ctx, err, "pending slot open failed", "venue", call.Venue.Hex())
		return BeforeSwapResult{}
	}
	if err := s.stats.OnRelayDecision(ctx, call.Venue); err != nil {
		logger.LogError(ctx, err, "relay metric update failed", "venue", call.Venue.Hex())
	}

	amount := s.engine.Magnitude(call.Request)
	s.notifier.RelayRequested(ctx, model.RelayRequested{
		ID:               uuid.New().String(),
		Originator:       s.originator(call),
		Venue:            call.Venue,
		Amount:           amount,
		AmountUnits:      s.baseUnits(amount),
		Direction:        call.Request.Direction,
		EstimatedSavings: savings,
		CreatedAt:        time.Now().UTC(),
	})

	return BeforeSwapResult{
		FeeAdjustment: s.engine.IncentiveFee(savings),
		Deferred:      true,
	}
}

// AfterSwap implements the post-swap observation point: counts the
// execution, resolves relay attribution from the slot consumed in
// BeforeSwap, and emits the completion notification.
func (s *HookService) AfterSwap(ctx context.Context, call SwapCall, delta model.BalanceDelta, costRemaining uint64) AfterSwapResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, wasRelayed := s.fulfilled[call.Venue]
	if wasRelayed {
		delete(s.fulfilled, call.Venue)
	}

	if err := s.stats.OnSwapExecuted(ctx, call.Venue, wasRelayed); err != nil {
		logger.LogError(ctx, err, "executed metric update failed", "venue", call.Venue.Hex())
	}

	originator := s.originator(call)
	if wasRelayed {
		originator = entry.Requester
	}

	// The output side follows the request direction: zero-for-one swaps
	// pay out on side 1.
	var amountOut uint64
	if call.Request.Direction {
		amountOut = model.Abs(delta.Amount1)
	} else {
		amountOut = model.Abs(delta.Amount0)
	}

	s.notifier.SwapCompleted(ctx, model.SwapCompleted{
		ID:            uuid.New().String(),
		Originator:    originator,
		Venue:         call.Venue,
		Amount:        s.engine.Magnitude(call.Request),
		AmountOut:     amountOut,
		WasRelayed:    wasRelayed,
		CostRemaining: costRemaining,
		CreatedAt:     time.Now().UTC(),
	})

	return AfterSwapResult{
		WasRelayed: wasRelayed,
		Originator: originator,
		AmountOut:  amountOut,
	}
}

// Admin surface. Each call is atomic; the authorization check inside the
// component runs before any mutation.

func (s *HookService) SetAuthorization(ctx context.Context, caller, target model.Principal, value bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registry.SetAuthorization(ctx, caller, target, value)
}

func (s *HookService) SetDefaultThreshold(ctx context.Context, caller model.Principal, value uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy.SetDefault(ctx, caller, value)
}

func (s *HookService) SetVenueThreshold(ctx context.Context, caller model.Principal, venue model.VenueID, value uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.policy.SetVenueThreshold(ctx, caller, venue, value)
}

func (s *HookService) ReportPerformance(ctx context.Context, caller model.Principal, venue model.VenueID, actualSavings uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.ReportPerformance(ctx, caller, venue, actualSavings)
}

// Read surface.

func (s *HookService) GetMetrics(ctx context.Context, venue model.VenueID) model.VenueMetrics {
	return s.stats.Snapshot(ctx, venue)
}

func (s *HookService) GetThreshold(ctx context.Context, venue model.VenueID) (effective, def uint64) {
	return s.policy.Effective(ctx, venue), s.policy.Default(ctx)
}

func (s *HookService) IsAuthorized(ctx context.Context, p model.Principal) bool {
	return s.registry.IsAuthorized(ctx, p)
}

func (s *HookService) Reports(ctx context.Context, venue string, limit int) ([]ReportRow, error) {
	rows, err := s.stats.Reports(ctx, venue, limit)
	if err != nil {
		return nil, err
	}
	out := make([]ReportRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, ReportRow{Venue: r.Venue, Reporter: r.Reporter, Savings: r.Savings, CreatedAt: r.CreatedAt})
	}
	return out, nil
}

func (s *HookService) originator(call SwapCall) model.Principal {
	if call.Request.Requester != (model.Principal{}) {
		return call.Request.Requester
	}
	return call.Sender
}

// baseUnits renders a raw magnitude in whole base-currency units for
// human-facing notification payloads.
func (s *HookService) baseUnits(amount uint64) string {
	unit := s.engine.UnitSize()
	if unit == 0 {
		return decimal.NewFromUint64(amount).String()
	}
	return decimal.NewFromUint64(amount).Div(decimal.NewFromUint64(unit)).String()
}
