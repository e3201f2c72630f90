package service

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/GoAMM/hookgate/internal/model"
	"github.com/GoAMM/hookgate/internal/repository"
)

func TestPendingTrackerLifecycle(t *testing.T) {
	ctx := context.Background()
	tracker := NewPendingTracker(repository.NewMemoryStore())
	v := model.DeriveVenueID(
		common.HexToAddress("0x0000000000000000000000000000000000000010"),
		common.HexToAddress("0x0000000000000000000000000000000000000011"),
		3000,
	)

	// idle slot
	if _, ok := tracker.Peek(ctx, v); ok {
		t.Fatal("fresh venue must have an idle slot")
	}
	if _, ok := tracker.Consume(ctx, v); ok {
		t.Fatal("consuming an idle slot must report false")
	}

	first := model.SwapRequest{Requester: trader, Magnitude: 100, Direction: true}
	if err := tracker.Open(ctx, v, first); err != nil {
		t.Fatalf("open: %v", err)
	}
	entry, ok := tracker.Peek(ctx, v)
	if !ok || entry.Requester != trader || entry.Magnitude != 100 || !entry.Active {
		t.Fatalf("unexpected entry after open: %+v ok=%v", entry, ok)
	}

	// a second open overwrites, it does not queue
	second := model.SwapRequest{Requester: stranger, Magnitude: -200, Direction: false}
	if err := tracker.Open(ctx, v, second); err != nil {
		t.Fatalf("open: %v", err)
	}
	entry, ok = tracker.Peek(ctx, v)
	if !ok || entry.Requester != stranger || entry.Magnitude != -200 {
		t.Fatalf("slot was not overwritten: %+v ok=%v", entry, ok)
	}

	consumed, ok := tracker.Consume(ctx, v)
	if !ok || consumed.Requester != stranger {
		t.Fatalf("consume returned %+v ok=%v", consumed, ok)
	}
	if _, ok := tracker.Consume(ctx, v); ok {
		t.Fatal("slot must be idle after a consume")
	}
}

func TestPendingTrackerVenueIsolation(t *testing.T) {
	ctx := context.Background()
	tracker := NewPendingTracker(repository.NewMemoryStore())

	a := model.VenueID(common.HexToHash("0x01"))
	b := model.VenueID(common.HexToHash("0x02"))

	if err := tracker.Open(ctx, a, model.SwapRequest{Requester: trader, Magnitude: 1}); err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := tracker.Peek(ctx, b); ok {
		t.Fatal("venue b must not see venue a's slot")
	}
	if _, ok := tracker.Consume(ctx, a); !ok {
		t.Fatal("venue a slot missing")
	}
}
