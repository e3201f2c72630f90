package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/GoAMM/hookgate/internal/model"
	"github.com/redis/go-redis/v9"
)

// RedisAuditRepo keeps a bounded recent-history list of audit entries when
// Postgres is not configured.
type RedisAuditRepo struct {
	client  *redis.Client
	listKey string
	listMax int64
}

func NewRedisAuditRepo(client *redis.Client, listKey string, listMax int64) *RedisAuditRepo {
	if listKey == "" {
		listKey = "hookgate:audit"
	}
	if listMax <= 0 {
		listMax = 10000
	}
	return &RedisAuditRepo{
		client:  client,
		listKey: listKey,
		listMax: listMax,
	}
}

func (r *RedisAuditRepo) Insert(ctx context.Context, entry *model.AuditLog) error {
	if entry == nil {
		return nil
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := r.client.LPush(ctx, r.listKey, payload).Err(); err != nil {
		return err
	}
	return r.client.LTrim(ctx, r.listKey, 0, r.listMax-1).Err()
}

func (r *RedisAuditRepo) List(ctx context.Context, principal string, limit int, from, to *time.Time) ([]*model.AuditLog, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	fetch := int64(limit * 5)
	if fetch < 100 {
		fetch = 100
	}
	if fetch > r.listMax {
		fetch = r.listMax
	}
	items, err := r.client.LRange(ctx, r.listKey, 0, fetch-1).Result()
	if err != nil {
		return nil, err
	}
	results := make([]*model.AuditLog, 0, limit)
	for _, raw := range items {
		var entry model.AuditLog
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			continue
		}
		if principal != "" && entry.Principal != principal {
			continue
		}
		if from != nil && entry.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && entry.CreatedAt.After(*to) {
			continue
		}
		results = append(results, &entry)
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}
