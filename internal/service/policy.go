package service

import (
	"context"

	"github.com/GoAMM/hookgate/internal/model"
	"github.com/GoAMM/hookgate/internal/pkg/apperrors"
	"github.com/GoAMM/hookgate/internal/pkg/logger"
	"github.com/GoAMM/hookgate/internal/pkg/metrics"
)

// ThresholdPolicy 维护全局默认阈值与场所级阈值（0 = 未设置，回落到默认）
type ThresholdPolicy struct {
	store    ThresholdStore
	registry *Registry
}

func NewThresholdPolicy(store ThresholdStore, registry *Registry) *ThresholdPolicy {
	return &ThresholdPolicy{store: store, registry: registry}
}

// Effective returns the venue threshold if one is set, else the default.
// Store failures are logged and fall back to the default, then to zero; a
// policy read must never block the swap itself.
func (p *ThresholdPolicy) Effective(ctx context.Context, venue model.VenueID) uint64 {
	v, err := p.store.VenueThreshold(ctx, venue)
	if err != nil {
		logger.LogError(ctx, err, "venue threshold lookup failed", "venue", venue.Hex())
	}
	if v != 0 {
		return v
	}
	d, err := p.store.DefaultThreshold(ctx)
	if err != nil {
		logger.LogError(ctx, err, "default threshold lookup failed")
		return 0
	}
	return d
}

func (p *ThresholdPolicy) Default(ctx context.Context) uint64 {
	d, err := p.store.DefaultThreshold(ctx)
	if err != nil {
		logger.LogError(ctx, err, "default threshold lookup failed")
		return 0
	}
	return d
}

// SetDefault accepts any value; there is no upper bound on thresholds.
func (p *ThresholdPolicy) SetDefault(ctx context.Context, caller model.Principal, value uint64) error {
	if !p.registry.IsAuthorized(ctx, caller) {
		metrics.UnauthorizedTotal.WithLabelValues("set_default_threshold").Inc()
		return apperrors.NewUnauthorized("caller is not authorized to change thresholds")
	}
	return p.store.SetDefaultThreshold(ctx, value)
}

func (p *ThresholdPolicy) SetVenueThreshold(ctx context.Context, caller model.Principal, venue model.VenueID, value uint64) error {
	if !p.registry.IsAuthorized(ctx, caller) {
		metrics.UnauthorizedTotal.WithLabelValues("set_venue_threshold").Inc()
		return apperrors.NewUnauthorized("caller is not authorized to change thresholds")
	}
	return p.store.SetVenueThreshold(ctx, venue, value)
}
