package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/GoAMM/hookgate/internal/config"
	"github.com/GoAMM/hookgate/internal/model"
	"github.com/redis/go-redis/v9"
)

// RedisStore persists the policy state across restarts. Counters rely on
// HINCRBY so they stay monotonic under concurrent writers; the pending slot
// is a plain overwrite-or-delete key per venue.
type RedisStore struct {
	Client *redis.Client
	prefix string
}

func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := cfg.Redis.KeyPrefix
	if prefix == "" {
		prefix = "hookgate"
	}
	return &RedisStore{Client: rdb, prefix: prefix}, nil
}

// Seed installs bootstrap state without clobbering existing values, so a
// restarted gate keeps whatever an authorized admin configured meanwhile.
func (r *RedisStore) Seed(ctx context.Context, defaultThreshold uint64, authorized []model.Principal) error {
	if err := r.Client.SetNX(ctx, r.key("threshold:default"), strconv.FormatUint(defaultThreshold, 10), 0).Err(); err != nil {
		return err
	}
	for _, p := range authorized {
		if err := r.Client.HSetNX(ctx, r.key("auth"), p.Hex(), "1").Err(); err != nil {
			return err
		}
	}
	return nil
}

func (r *RedisStore) Authorized(ctx context.Context, p model.Principal) (bool, error) {
	val, err := r.Client.HGet(ctx, r.key("auth"), p.Hex()).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == "1", nil
}

func (r *RedisStore) SetAuthorized(ctx context.Context, p model.Principal, v bool) error {
	val := "0"
	if v {
		val = "1"
	}
	return r.Client.HSet(ctx, r.key("auth"), p.Hex(), val).Err()
}

func (r *RedisStore) DefaultThreshold(ctx context.Context) (uint64, error) {
	val, err := r.Client.Get(ctx, r.key("threshold:default")).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(val, 10, 64)
}

func (r *RedisStore) SetDefaultThreshold(ctx context.Context, v uint64) error {
	return r.Client.Set(ctx, r.key("threshold:default"), strconv.FormatUint(v, 10), 0).Err()
}

func (r *RedisStore) VenueThreshold(ctx context.Context, venue model.VenueID) (uint64, error) {
	val, err := r.Client.HGet(ctx, r.key("threshold:venues"), venue.Hex()).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(val, 10, 64)
}

func (r *RedisStore) SetVenueThreshold(ctx context.Context, venue model.VenueID, v uint64) error {
	return r.Client.HSet(ctx, r.key("threshold:venues"), venue.Hex(), strconv.FormatUint(v, 10)).Err()
}

func (r *RedisStore) Pending(ctx context.Context, venue model.VenueID) (model.PendingEntry, bool, error) {
	val, err := r.Client.Get(ctx, r.pendingKey(venue)).Result()
	if err == redis.Nil {
		return model.PendingEntry{}, false, nil
	}
	if err != nil {
		return model.PendingEntry{}, false, err
	}
	var entry model.PendingEntry
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		return model.PendingEntry{}, false, err
	}
	if !entry.Active {
		return model.PendingEntry{}, false, nil
	}
	return entry, true, nil
}

func (r *RedisStore) PutPending(ctx context.Context, venue model.VenueID, entry model.PendingEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, r.pendingKey(venue), payload, 0).Err()
}

func (r *RedisStore) ClearPending(ctx context.Context, venue model.VenueID) error {
	return r.Client.Del(ctx, r.pendingKey(venue)).Err()
}

func (r *RedisStore) IncrRelayed(ctx context.Context, venue model.VenueID) error {
	return r.Client.HIncrBy(ctx, r.metricsKey(venue), "relayed", 1).Err()
}

func (r *RedisStore) IncrExecuted(ctx context.Context, venue model.VenueID) error {
	return r.Client.HIncrBy(ctx, r.metricsKey(venue), "executed", 1).Err()
}

// AddReportedSavings keeps the savings field monotonic for the full uint64
// range. HINCRBY takes a signed delta, so a naive int64(amount) cast would
// flip negative for amounts >= 1<<63 and decrement the counter; the delta is
// applied in positive chunks instead, and the field saturates at MaxInt64
// (the largest value HINCRBY can hold) rather than erroring.
func (r *RedisStore) AddReportedSavings(ctx context.Context, venue model.VenueID, amount uint64) error {
	key := r.metricsKey(venue)
	for _, step := range savingsChunks(amount) {
		if err := r.Client.HIncrBy(ctx, key, "savings", step).Err(); err != nil {
			if isRedisOverflow(err) {
				return r.Client.HSet(ctx, key, "savings", strconv.FormatInt(math.MaxInt64, 10)).Err()
			}
			return err
		}
	}
	return nil
}

func (r *RedisStore) Metrics(ctx context.Context, venue model.VenueID) (model.VenueMetrics, error) {
	fields, err := r.Client.HGetAll(ctx, r.metricsKey(venue)).Result()
	if err != nil {
		return model.VenueMetrics{}, err
	}
	return parseMetrics(fields)
}

// savingsChunks splits a uint64 delta into positive int64 increments.
func savingsChunks(amount uint64) []int64 {
	var chunks []int64
	for amount > 0 {
		step := amount
		if step > math.MaxInt64 {
			step = math.MaxInt64
		}
		chunks = append(chunks, int64(step))
		amount -= step
	}
	return chunks
}

func isRedisOverflow(err error) bool {
	return err != nil && strings.Contains(err.Error(), "increment or decrement would overflow")
}

// parseMetrics fails loudly on corrupt fields instead of reporting zero for
// a counter that has actually advanced.
func parseMetrics(fields map[string]string) (model.VenueMetrics, error) {
	var m model.VenueMetrics
	var err error
	if v, ok := fields["relayed"]; ok {
		if m.RelayedCount, err = strconv.ParseUint(v, 10, 64); err != nil {
			return model.VenueMetrics{}, fmt.Errorf("corrupt relayed counter %q: %w", v, err)
		}
	}
	if v, ok := fields["executed"]; ok {
		if m.ExecutedCount, err = strconv.ParseUint(v, 10, 64); err != nil {
			return model.VenueMetrics{}, fmt.Errorf("corrupt executed counter %q: %w", v, err)
		}
	}
	if v, ok := fields["savings"]; ok {
		if m.CumulativeReportedSavings, err = strconv.ParseUint(v, 10, 64); err != nil {
			return model.VenueMetrics{}, fmt.Errorf("corrupt savings counter %q: %w", v, err)
		}
	}
	return m, nil
}

func (r *RedisStore) key(suffix string) string {
	return r.prefix + ":" + suffix
}

func (r *RedisStore) pendingKey(venue model.VenueID) string {
	return fmt.Sprintf("%s:pending:%s", r.prefix, venue.Hex())
}

func (r *RedisStore) metricsKey(venue model.VenueID) string {
	return fmt.Sprintf("%s:metrics:%s", r.prefix, venue.Hex())
}
