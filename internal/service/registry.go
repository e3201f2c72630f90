package service

import (
	"context"

	"github.com/GoAMM/hookgate/internal/model"
	"github.com/GoAMM/hookgate/internal/pkg/apperrors"
	"github.com/GoAMM/hookgate/internal/pkg/logger"
	"github.com/GoAMM/hookgate/internal/pkg/metrics"
)

// Registry 维护允许变更策略的主体集合（扁平 ACL，无角色层级）
type Registry struct {
	store AuthStore
}

func NewRegistry(store AuthStore) *Registry {
	return &Registry{store: store}
}

// IsAuthorized is a pure lookup; unknown principals are not authorized.
// A store failure is logged and treated as not authorized.
func (r *Registry) IsAuthorized(ctx context.Context, p model.Principal) bool {
	ok, err := r.store.Authorized(ctx, p)
	if err != nil {
		logger.LogError(ctx, err, "authorization lookup failed", "principal", p.Hex())
		return false
	}
	return ok
}

// SetAuthorization grants or revokes target's flag. Idempotent. The caller
// must already be authorized; the check happens before any mutation so an
// Unauthorized abort leaves no partial state.
func (r *Registry) SetAuthorization(ctx context.Context, caller, target model.Principal, value bool) error {
	if !r.IsAuthorized(ctx, caller) {
		metrics.UnauthorizedTotal.WithLabelValues("set_authorization").Inc()
		return apperrors.NewUnauthorized("caller is not authorized to change authorization")
	}
	return r.store.SetAuthorized(ctx, target, value)
}
