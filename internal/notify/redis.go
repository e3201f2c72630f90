package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSink publishes events on a Pub/Sub channel for live consumers and
// appends them to a capped stream so a relayer that reconnects can catch up.
type RedisSink struct {
	rdb       *redis.Client
	channel   string
	stream    string
	streamMax int64
}

func NewRedisSink(rdb *redis.Client, channel, stream string, streamMax int64) *RedisSink {
	if channel == "" {
		channel = "hookgate:events"
	}
	if stream == "" {
		stream = "hookgate:events:stream"
	}
	if streamMax <= 0 {
		streamMax = 10000
	}
	return &RedisSink{rdb: rdb, channel: channel, stream: stream, streamMax: streamMax}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Publish(ctx context.Context, event string, payload []byte) error {
	if err := s.rdb.Publish(ctx, s.channel, payload).Err(); err != nil {
		return fmt.Errorf("redis: publish %s: %w", s.channel, err)
	}
	args := &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.streamMax,
		Approx: true,
		Values: map[string]interface{}{
			"event":   event,
			"payload": payload,
		},
	}
	if err := s.rdb.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("redis: stream append %s: %w", s.stream, err)
	}
	return nil
}
