package service

import (
	"context"

	"github.com/GoAMM/hookgate/internal/model"
)

// The keyed policy state is owned by the hook service and reached only
// through these narrow interfaces. Tests inject repository.MemoryStore;
// production wires repository.RedisStore.

type AuthStore interface {
	Authorized(ctx context.Context, p model.Principal) (bool, error)
	SetAuthorized(ctx context.Context, p model.Principal, v bool) error
}

type ThresholdStore interface {
	DefaultThreshold(ctx context.Context) (uint64, error)
	SetDefaultThreshold(ctx context.Context, v uint64) error
	VenueThreshold(ctx context.Context, venue model.VenueID) (uint64, error)
	SetVenueThreshold(ctx context.Context, venue model.VenueID, v uint64) error
}

type PendingStore interface {
	Pending(ctx context.Context, venue model.VenueID) (model.PendingEntry, bool, error)
	PutPending(ctx context.Context, venue model.VenueID, entry model.PendingEntry) error
	ClearPending(ctx context.Context, venue model.VenueID) error
}

type MetricsStore interface {
	IncrRelayed(ctx context.Context, venue model.VenueID) error
	IncrExecuted(ctx context.Context, venue model.VenueID) error
	AddReportedSavings(ctx context.Context, venue model.VenueID, amount uint64) error
	Metrics(ctx context.Context, venue model.VenueID) (model.VenueMetrics, error)
}

// StateStore is the full surface a backing store must provide.
// repository.MemoryStore and repository.RedisStore both satisfy it.
type StateStore interface {
	AuthStore
	ThresholdStore
	PendingStore
	MetricsStore
	Seed(ctx context.Context, defaultThreshold uint64, authorized []model.Principal) error
}
