package service

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoAMM/hookgate/internal/config"
	"github.com/GoAMM/hookgate/internal/model"
	"github.com/GoAMM/hookgate/internal/repository"
)

// captureNotifier records emitted events for assertions.
type captureNotifier struct {
	relays    []model.RelayRequested
	completed []model.SwapCompleted
}

func (n *captureNotifier) RelayRequested(_ context.Context, ev model.RelayRequested) {
	n.relays = append(n.relays, ev)
}

func (n *captureNotifier) SwapCompleted(_ context.Context, ev model.SwapCompleted) {
	n.completed = append(n.completed, ev)
}

var (
	deployer = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	relayer  = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	trader   = common.HexToAddress("0x00000000000000000000000000000000000000cc")
	stranger = common.HexToAddress("0x00000000000000000000000000000000000000dd")

	venue = model.DeriveVenueID(
		common.HexToAddress("0x0000000000000000000000000000000000000001"),
		common.HexToAddress("0x0000000000000000000000000000000000000002"),
		3000,
	)
)

func newTestService(t *testing.T) (*HookService, *repository.MemoryStore, *captureNotifier) {
	t.Helper()
	store := repository.NewMemoryStore()
	if err := store.Seed(context.Background(), 50000, []model.Principal{deployer, relayer}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	registry := NewRegistry(store)
	policy := NewThresholdPolicy(store, registry)
	engine := NewDecisionEngine(NewFixedCostModel(config.CostConfig{
		StandardCost: 150000,
		RelayedCost:  90000,
		UnitSize:     1_000_000,
	}))
	tracker := NewPendingTracker(store)
	stats := NewAggregator(store, registry, nil)
	notifier := &captureNotifier{}
	return NewHookService(registry, policy, engine, tracker, stats, notifier), store, notifier
}

func largeSwap(requester model.Principal) model.SwapRequest {
	return model.SwapRequest{
		Requester: requester,
		Magnitude: 5_000_000,
		Direction: true,
		OptIn:     true,
	}
}

func TestBeforeSwapDefersQualifyingSwap(t *testing.T) {
	svc, store, notifier := newTestService(t)
	ctx := context.Background()

	res := svc.BeforeSwap(ctx, SwapCall{Sender: trader, Venue: venue, Request: largeSwap(trader)})
	require.True(t, res.Deferred)
	require.False(t, res.Fulfilled)
	// savings 60000 at 1% = fee 600
	assert.Equal(t, uint32(600), res.FeeAdjustment)

	// the pending slot now holds the request
	entry, ok, err := store.Pending(ctx, venue)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, trader, entry.Requester)
	assert.Equal(t, int64(5_000_000), entry.Magnitude)

	// exactly one relay notification, and the counter moved
	require.Len(t, notifier.relays, 1)
	ev := notifier.relays[0]
	assert.Equal(t, trader, ev.Originator)
	assert.Equal(t, venue, ev.Venue)
	assert.Equal(t, uint64(5_000_000), ev.Amount)
	assert.Equal(t, "5", ev.AmountUnits)
	assert.Equal(t, uint64(60000), ev.EstimatedSavings)
	assert.NotEmpty(t, ev.ID)

	m := svc.GetMetrics(ctx, venue)
	assert.Equal(t, uint64(1), m.RelayedCount)
	assert.Equal(t, uint64(0), m.ExecutedCount)
}

func TestBeforeSwapSmallSwapExecutesNormally(t *testing.T) {
	svc, store, notifier := newTestService(t)
	ctx := context.Background()

	req := largeSwap(trader)
	req.Magnitude = 1_000_000 // exactly one unit, not strictly more
	res := svc.BeforeSwap(ctx, SwapCall{Sender: trader, Venue: venue, Request: req})
	assert.False(t, res.Deferred)
	assert.Zero(t, res.FeeAdjustment)
	assert.Empty(t, notifier.relays)

	_, ok, _ := store.Pending(ctx, venue)
	assert.False(t, ok, "no pending slot should be opened")
	assert.Zero(t, svc.GetMetrics(ctx, venue).RelayedCount)
}

func TestBeforeSwapOptOutExecutesNormally(t *testing.T) {
	svc, _, notifier := newTestService(t)

	req := largeSwap(trader)
	req.OptIn = false
	res := svc.BeforeSwap(context.Background(), SwapCall{Sender: trader, Venue: venue, Request: req})
	assert.False(t, res.Deferred)
	assert.Zero(t, res.FeeAdjustment)
	assert.Empty(t, notifier.relays)
}

func TestAuthorizedSenderFulfillsPendingSlot(t *testing.T) {
	svc, store, notifier := newTestService(t)
	ctx := context.Background()

	// trader's swap gets deferred
	res := svc.BeforeSwap(ctx, SwapCall{Sender: trader, Venue: venue, Request: largeSwap(trader)})
	require.True(t, res.Deferred)

	// the relayer replays the swap; the slot is consumed and the decision
	// engine is skipped (no new relay notification, no incentive fee)
	res = svc.BeforeSwap(ctx, SwapCall{Sender: relayer, Venue: venue, Request: largeSwap(trader)})
	require.True(t, res.Fulfilled)
	assert.False(t, res.Deferred)
	assert.Zero(t, res.FeeAdjustment)
	require.Len(t, notifier.relays, 1)

	_, ok, _ := store.Pending(ctx, venue)
	assert.False(t, ok, "slot must be consumed")

	// completion is attributed to the original requester
	after := svc.AfterSwap(ctx, SwapCall{Sender: relayer, Venue: venue, Request: largeSwap(trader)},
		model.BalanceDelta{Amount0: -5_000_000, Amount1: 4_990_000}, 12345)
	assert.True(t, after.WasRelayed)
	assert.Equal(t, trader, after.Originator)
	assert.Equal(t, uint64(4_990_000), after.AmountOut)

	require.Len(t, notifier.completed, 1)
	done := notifier.completed[0]
	assert.True(t, done.WasRelayed)
	assert.Equal(t, trader, done.Originator)
	assert.Equal(t, uint64(12345), done.CostRemaining)

	m := svc.GetMetrics(ctx, venue)
	assert.Equal(t, uint64(1), m.RelayedCount)
	assert.Equal(t, uint64(1), m.ExecutedCount)
}

func TestPendingSlotConsumedExactlyOnce(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	svc.BeforeSwap(ctx, SwapCall{Sender: trader, Venue: venue, Request: largeSwap(trader)})

	first := svc.BeforeSwap(ctx, SwapCall{Sender: relayer, Venue: venue, Request: largeSwap(trader)})
	require.True(t, first.Fulfilled)
	svc.AfterSwap(ctx, SwapCall{Sender: relayer, Venue: venue, Request: largeSwap(trader)},
		model.BalanceDelta{Amount1: 1}, 0)

	// a second authorized swap finds an idle slot: it goes back through the
	// decision engine and gets deferred itself, not fulfilled
	second := svc.BeforeSwap(ctx, SwapCall{Sender: relayer, Venue: venue, Request: largeSwap(relayer)})
	assert.False(t, second.Fulfilled)
	assert.True(t, second.Deferred)
}

func TestUnauthorizedSenderDoesNotFulfill(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	svc.BeforeSwap(ctx, SwapCall{Sender: trader, Venue: venue, Request: largeSwap(trader)})

	// stranger is not authorized, so the slot is untouched; the stranger's
	// own qualifying swap overwrites the slot with a fresh deferral
	res := svc.BeforeSwap(ctx, SwapCall{Sender: stranger, Venue: venue, Request: largeSwap(stranger)})
	assert.False(t, res.Fulfilled)
	assert.True(t, res.Deferred)

	entry, ok, _ := store.Pending(ctx, venue)
	require.True(t, ok)
	assert.Equal(t, stranger, entry.Requester, "slot overwritten, not queued")
}

func TestAfterSwapNormalExecution(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()

	req := largeSwap(trader)
	req.Direction = false
	after := svc.AfterSwap(ctx, SwapCall{Sender: trader, Venue: venue, Request: req},
		model.BalanceDelta{Amount0: -7_000, Amount1: 6_900}, 0)
	assert.False(t, after.WasRelayed)
	assert.Equal(t, trader, after.Originator)
	// one-for-zero swaps pay out on side 0
	assert.Equal(t, uint64(7_000), after.AmountOut)

	require.Len(t, notifier.completed, 1)
	assert.False(t, notifier.completed[0].WasRelayed)
	assert.Equal(t, uint64(1), svc.GetMetrics(ctx, venue).ExecutedCount)
}

func TestAfterSwapAttributesSenderWhenRequesterAbsent(t *testing.T) {
	svc, _, _ := newTestService(t)

	req := model.SwapRequest{Magnitude: 10, Direction: true, OptIn: true}
	after := svc.AfterSwap(context.Background(), SwapCall{Sender: trader, Venue: venue, Request: req},
		model.BalanceDelta{Amount1: 9}, 0)
	assert.Equal(t, trader, after.Originator)
}

func TestSetAuthorizationRequiresAuthorizedCaller(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	err := svc.SetAuthorization(ctx, stranger, stranger, true)
	require.Error(t, err)
	ok, _ := store.Authorized(ctx, stranger)
	assert.False(t, ok, "failed grant must not change state")

	require.NoError(t, svc.SetAuthorization(ctx, deployer, stranger, true))
	assert.True(t, svc.IsAuthorized(ctx, stranger))

	// revocation is the same operation with value=false, and is idempotent
	require.NoError(t, svc.SetAuthorization(ctx, deployer, stranger, false))
	require.NoError(t, svc.SetAuthorization(ctx, deployer, stranger, false))
	assert.False(t, svc.IsAuthorized(ctx, stranger))
}

func TestThresholdFallbackAndOverride(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	effective, def := svc.GetThreshold(ctx, venue)
	assert.Equal(t, uint64(50000), effective)
	assert.Equal(t, uint64(50000), def)

	require.NoError(t, svc.SetVenueThreshold(ctx, deployer, venue, 70000))
	effective, def = svc.GetThreshold(ctx, venue)
	assert.Equal(t, uint64(70000), effective)
	assert.Equal(t, uint64(50000), def)

	// with the venue threshold above the projected savings the swap runs
	// normally again
	res := svc.BeforeSwap(ctx, SwapCall{Sender: trader, Venue: venue, Request: largeSwap(trader)})
	assert.False(t, res.Deferred)

	require.NoError(t, svc.SetDefaultThreshold(ctx, deployer, 10))
	otherVenue := model.DeriveVenueID(
		common.HexToAddress("0x0000000000000000000000000000000000000003"),
		common.HexToAddress("0x0000000000000000000000000000000000000004"),
		500,
	)
	effective, _ = svc.GetThreshold(ctx, otherVenue)
	assert.Equal(t, uint64(10), effective, "venues without an override follow the default")
}

func TestThresholdChangeRejectedForUnauthorizedCaller(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.Error(t, svc.SetDefaultThreshold(ctx, stranger, 1))
	require.Error(t, svc.SetVenueThreshold(ctx, stranger, venue, 1))

	effective, def := svc.GetThreshold(ctx, venue)
	assert.Equal(t, uint64(50000), effective)
	assert.Equal(t, uint64(50000), def)
}

func TestReportPerformanceAccumulates(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.ReportPerformance(ctx, relayer, venue, 1000))
	require.NoError(t, svc.ReportPerformance(ctx, relayer, venue, 2000))
	assert.Equal(t, uint64(3000), svc.GetMetrics(ctx, venue).CumulativeReportedSavings)

	err := svc.ReportPerformance(ctx, stranger, venue, 999)
	require.Error(t, err)
	assert.Equal(t, uint64(3000), svc.GetMetrics(ctx, venue).CumulativeReportedSavings,
		"rejected report must not change the aggregate")
}

func TestMetricsUnknownVenueIsZero(t *testing.T) {
	svc, _, _ := newTestService(t)

	m := svc.GetMetrics(context.Background(), model.VenueID{})
	assert.Zero(t, m.RelayedCount)
	assert.Zero(t, m.ExecutedCount)
	assert.Zero(t, m.CumulativeReportedSavings)
}
