package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/faciam-dev/crudkit/internal/logger"
)

// DefaultChannel is where settings followers listen unless told otherwise.
const DefaultChannel = "crud:settings:events"

// RedisSink publishes each event on a Pub/Sub channel.
type RedisSink struct {
	rdb     redis.UniversalClient
	channel string
}

// NewRedisSink dials the DSN in c. It returns nil, nil when no DSN is set.
func NewRedisSink(c RedisConfig) (*RedisSink, error) {
	if c.DSN == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(c.DSN)
	if err != nil {
		return nil, fmt.Errorf("events: redis dsn: %w", err)
	}
	return RedisSinkFor(redis.NewClient(opt), c.Channel), nil
}

// RedisSinkFor publishes through rdb, which the sink then owns.
func RedisSinkFor(rdb redis.UniversalClient, channel string) *RedisSink {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisSink{rdb: rdb, channel: channel}
}

func (s *RedisSink) Channel() string { return s.channel }

func (s *RedisSink) Close() error { return s.rdb.Close() }

func (s *RedisSink) Emit(ctx context.Context, e Event) error {
	payload, err := Encode(e)
	if err != nil {
		return err
	}
	n, err := s.rdb.Publish(ctx, s.channel, payload).Result()
	if err != nil {
		return fmt.Errorf("events: publish %s: %w", e.Name, err)
	}
	if n == 0 {
		logger.L.Debug("no subscribers", "channel", s.channel, "event", e.Name)
	}
	return nil
}
