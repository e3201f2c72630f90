package service

import (
	"context"

	"github.com/GoAMM/hookgate/internal/model"
	"github.com/GoAMM/hookgate/internal/pkg/logger"
)

// PendingTracker 每个场所一个挂起槽：Idle ↔ Pending，覆盖写而非排队
// The single slot bounds memory to O(#venues) and guarantees that repeated
// relay decisions without fulfillment overwrite rather than accumulate.
type PendingTracker struct {
	store PendingStore
}

func NewPendingTracker(store PendingStore) *PendingTracker {
	return &PendingTracker{store: store}
}

// Open transitions the venue slot to Pending, overwriting any previous
// entry for that venue.
func (t *PendingTracker) Open(ctx context.Context, venue model.VenueID, req model.SwapRequest) error {
	return t.store.PutPending(ctx, venue, model.PendingEntry{
		Requester: req.Requester,
		Magnitude: req.Magnitude,
		Direction: req.Direction,
		Active:    true,
	})
}

// Peek reports the active entry without consuming it.
func (t *PendingTracker) Peek(ctx context.Context, venue model.VenueID) (model.PendingEntry, bool) {
	entry, ok, err := t.store.Pending(ctx, venue)
	if err != nil {
		logger.LogError(ctx, err, "pending slot lookup failed", "venue", venue.Hex())
		return model.PendingEntry{}, false
	}
	return entry, ok
}

// Consume transitions Pending → Idle and returns the stored entry, whose
// requester is the attributed originator downstream. Fulfillment does not
// re-validate magnitude/direction against the stored entry; any authorized
// principal's swap on the venue consumes the slot.
func (t *PendingTracker) Consume(ctx context.Context, venue model.VenueID) (model.PendingEntry, bool) {
	entry, ok := t.Peek(ctx, venue)
	if !ok {
		return model.PendingEntry{}, false
	}
	if err := t.store.ClearPending(ctx, venue); err != nil {
		logger.LogError(ctx, err, "pending slot clear failed", "venue", venue.Hex())
		return model.PendingEntry{}, false
	}
	return entry, true
}
