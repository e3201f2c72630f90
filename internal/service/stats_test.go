package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoAMM/hookgate/internal/model"
	"github.com/GoAMM/hookgate/internal/repository"
)

type fakeHistory struct {
	rows      []repository.RelayReport
	insertErr error
}

func (h *fakeHistory) Insert(_ context.Context, r *repository.RelayReport) error {
	if h.insertErr != nil {
		return h.insertErr
	}
	h.rows = append(h.rows, *r)
	return nil
}

func (h *fakeHistory) ListByVenue(_ context.Context, venue string, limit int) ([]repository.RelayReport, error) {
	var out []repository.RelayReport
	for _, r := range h.rows {
		if venue == "" || r.Venue == venue {
			out = append(out, r)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func newTestAggregator(t *testing.T, history ReportHistory) *Aggregator {
	t.Helper()
	store := repository.NewMemoryStore()
	if err := store.Seed(context.Background(), 50000, []model.Principal{relayer}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return NewAggregator(store, NewRegistry(store), history)
}

func TestAggregatorCountersAreMonotonic(t *testing.T) {
	agg := newTestAggregator(t, nil)
	ctx := context.Background()

	require.NoError(t, agg.OnRelayDecision(ctx, venue))
	require.NoError(t, agg.OnSwapExecuted(ctx, venue, true))
	require.NoError(t, agg.OnSwapExecuted(ctx, venue, false))

	m := agg.Snapshot(ctx, venue)
	assert.Equal(t, uint64(1), m.RelayedCount)
	assert.Equal(t, uint64(2), m.ExecutedCount)
}

func TestReportPerformanceWritesHistory(t *testing.T) {
	history := &fakeHistory{}
	agg := newTestAggregator(t, history)
	ctx := context.Background()

	require.NoError(t, agg.ReportPerformance(ctx, relayer, venue, 4200))
	require.Len(t, history.rows, 1)
	assert.Equal(t, venue.Hex(), history.rows[0].Venue)
	assert.Equal(t, relayer.Hex(), history.rows[0].Reporter)
	assert.Equal(t, uint64(4200), history.rows[0].Savings)

	rows, err := agg.Reports(ctx, venue.Hex(), 10)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestReportPerformanceHistoryFailureIsBestEffort(t *testing.T) {
	history := &fakeHistory{insertErr: errors.New("db down")}
	agg := newTestAggregator(t, history)
	ctx := context.Background()

	// the aggregate advances even when the history insert fails
	require.NoError(t, agg.ReportPerformance(ctx, relayer, venue, 500))
	assert.Equal(t, uint64(500), agg.Snapshot(ctx, venue).CumulativeReportedSavings)
}

func TestReportsWithoutHistoryBackend(t *testing.T) {
	agg := newTestAggregator(t, nil)

	rows, err := agg.Reports(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Nil(t, rows)
}
