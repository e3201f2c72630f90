package service

import (
	"context"
	"strconv"
	"time"

	"github.com/GoAMM/hookgate/internal/model"
	"github.com/GoAMM/hookgate/internal/pkg/apperrors"
	"github.com/GoAMM/hookgate/internal/pkg/logger"
	"github.com/GoAMM/hookgate/internal/pkg/metrics"
	"github.com/GoAMM/hookgate/internal/repository"
)

// ReportRow is the read-side view of one performance report.
type ReportRow struct {
	Venue     string    `json:"venue"`
	Reporter  string    `json:"reporter"`
	Savings   uint64    `json:"savings"`
	CreatedAt time.Time `json:"created_at"`
}

// ReportHistory keeps the per-call record of performance reports. Optional;
// the aggregate counter in the state store is authoritative.
type ReportHistory interface {
	Insert(ctx context.Context, report *repository.RelayReport) error
	ListByVenue(ctx context.Context, venue string, limit int) ([]repository.RelayReport, error)
}

// Aggregator 场所维度的累计指标：转交数、执行数、上报节省
// All counters are monotonically non-decreasing; nothing exposed here
// resets them.
type Aggregator struct {
	store    MetricsStore
	registry *Registry
	history  ReportHistory // nil-safe
}

func NewAggregator(store MetricsStore, registry *Registry, history ReportHistory) *Aggregator {
	return &Aggregator{store: store, registry: registry, history: history}
}

// OnRelayDecision is invoked once per successful Idle → Pending transition.
func (a *Aggregator) OnRelayDecision(ctx context.Context, venue model.VenueID) error {
	metrics.RelaysTotal.WithLabelValues(venue.Hex()).Inc()
	return a.store.IncrRelayed(ctx, venue)
}

// OnSwapExecuted is invoked once per completed swap, relayed or not.
func (a *Aggregator) OnSwapExecuted(ctx context.Context, venue model.VenueID, relayed bool) error {
	metrics.SwapsExecutedTotal.WithLabelValues(venue.Hex(), strconv.FormatBool(relayed)).Inc()
	return a.store.IncrExecuted(ctx, venue)
}

// ReportPerformance adds the caller-supplied realized savings to the venue
// aggregate. Additive only, no overwrite, no upper bound. The reporter is
// trusted because it had to be authorized.
func (a *Aggregator) ReportPerformance(ctx context.Context, caller model.Principal, venue model.VenueID, actualSavings uint64) error {
	if !a.registry.IsAuthorized(ctx, caller) {
		metrics.UnauthorizedTotal.WithLabelValues("report_performance").Inc()
		return apperrors.NewUnauthorized("caller is not authorized to report performance")
	}
	if err := a.store.AddReportedSavings(ctx, venue, actualSavings); err != nil {
		return err
	}
	if a.history != nil {
		err := a.history.Insert(ctx, &repository.RelayReport{
			Venue:     venue.Hex(),
			Reporter:  caller.Hex(),
			Savings:   actualSavings,
			CreatedAt: time.Now().UTC(),
		})
		// history is best-effort; the aggregate already advanced
		logger.LogError(ctx, err, "relay report history insert failed", "venue", venue.Hex())
	}
	return nil
}

// Snapshot is a total, read-only view; unknown venues yield zero metrics.
func (a *Aggregator) Snapshot(ctx context.Context, venue model.VenueID) model.VenueMetrics {
	m, err := a.store.Metrics(ctx, venue)
	if err != nil {
		logger.LogError(ctx, err, "metrics snapshot failed", "venue", venue.Hex())
		return model.VenueMetrics{}
	}
	return m
}

func (a *Aggregator) Reports(ctx context.Context, venue string, limit int) ([]repository.RelayReport, error) {
	if a.history == nil {
		return nil, nil
	}
	return a.history.ListByVenue(ctx, venue, limit)
}
