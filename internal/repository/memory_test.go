package repository

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/GoAMM/hookgate/internal/model"
)

func TestMemoryStoreSeed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	owner := common.HexToAddress("0x00000000000000000000000000000000000000a1")

	if err := store.Seed(ctx, 50000, []model.Principal{owner}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	d, err := store.DefaultThreshold(ctx)
	if err != nil || d != 50000 {
		t.Fatalf("default threshold = %d, err %v", d, err)
	}
	ok, err := store.Authorized(ctx, owner)
	if err != nil || !ok {
		t.Fatalf("seeded principal not authorized: %v %v", ok, err)
	}
	ok, _ = store.Authorized(ctx, common.HexToAddress("0x00000000000000000000000000000000000000a2"))
	if ok {
		t.Fatal("unknown principal must not be authorized")
	}
}

func TestMemoryStorePendingSlot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	v := model.VenueID(common.HexToHash("0x0a"))

	if _, ok, _ := store.Pending(ctx, v); ok {
		t.Fatal("fresh venue has no pending entry")
	}

	entry := model.PendingEntry{
		Requester: common.HexToAddress("0x00000000000000000000000000000000000000a3"),
		Magnitude: 7,
		Active:    true,
	}
	if err := store.PutPending(ctx, v, entry); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, ok, err := store.Pending(ctx, v)
	if err != nil || !ok || got != entry {
		t.Fatalf("pending = %+v ok=%v err=%v", got, ok, err)
	}

	if err := store.ClearPending(ctx, v); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := store.Pending(ctx, v); ok {
		t.Fatal("cleared slot still reported active")
	}

	// an inactive entry behaves like an idle slot
	entry.Active = false
	_ = store.PutPending(ctx, v, entry)
	if _, ok, _ := store.Pending(ctx, v); ok {
		t.Fatal("inactive entry must not be visible")
	}
}

func TestMemoryStoreMetricsAccumulate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	v := model.VenueID(common.HexToHash("0x0b"))

	_ = store.IncrRelayed(ctx, v)
	_ = store.IncrExecuted(ctx, v)
	_ = store.IncrExecuted(ctx, v)
	_ = store.AddReportedSavings(ctx, v, 1000)
	_ = store.AddReportedSavings(ctx, v, 2000)

	m, err := store.Metrics(ctx, v)
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	if m.RelayedCount != 1 || m.ExecutedCount != 2 || m.CumulativeReportedSavings != 3000 {
		t.Fatalf("unexpected metrics: %+v", m)
	}

	// reported savings are unbounded; a delta above 1<<63 must still add
	_ = store.AddReportedSavings(ctx, v, 1<<63)
	m, _ = store.Metrics(ctx, v)
	if m.CumulativeReportedSavings != 3000+uint64(1)<<63 {
		t.Fatalf("large savings mishandled: %d", m.CumulativeReportedSavings)
	}

	// other venues stay untouched
	other, _ := store.Metrics(ctx, model.VenueID(common.HexToHash("0x0c")))
	if other != (model.VenueMetrics{}) {
		t.Fatalf("unrelated venue has metrics: %+v", other)
	}
}

func TestMemoryStoreVenueThresholdDefaultsToZero(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	v := model.VenueID(common.HexToHash("0x0d"))

	got, err := store.VenueThreshold(ctx, v)
	if err != nil || got != 0 {
		t.Fatalf("unset venue threshold = %d, err %v", got, err)
	}
	if err := store.SetVenueThreshold(ctx, v, 88); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, _ = store.VenueThreshold(ctx, v)
	if got != 88 {
		t.Fatalf("venue threshold = %d, want 88", got)
	}
}
