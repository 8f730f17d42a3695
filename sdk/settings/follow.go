package settings

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/faciam-dev/crudkit/internal/events"
)

// Follower purges a cache when another process reports a setting change on a
// Redis Pub/Sub channel.
type Follower struct {
	RDB     *redis.Client
	Channel string
	Cache   *Cache
	// Backoff bounds the delay between reconnect attempts.
	Backoff    time.Duration
	BackoffMax time.Duration
	// Ready, when set, is called each time the subscription is confirmed.
	Ready func()
}

// Start consumes events in a background goroutine until stop is called or
// ctx ends.
func (f *Follower) Start(ctx context.Context) (stop func()) {
	ctx, cancel := context.WithCancel(ctx)
	channel := f.Channel
	if channel == "" {
		channel = events.DefaultChannel
	}
	delay := newRetryDelay(f.Backoff, f.BackoffMax)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if err := f.loop(ctx, channel, delay.reset); err != nil {
				f.Cache.log.Warnw("settings follower", "channel", channel, "error", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay.next()):
			}
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// retryDelay doubles from base up to limit between reconnect attempts.
type retryDelay struct {
	base, limit, cur time.Duration
}

func newRetryDelay(base, limit time.Duration) *retryDelay {
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	if limit <= 0 {
		limit = max(30*time.Second, base)
	}
	limit = max(limit, base)
	return &retryDelay{base: base, limit: limit, cur: base}
}

func (r *retryDelay) next() time.Duration {
	d := r.cur
	r.cur = min(r.cur*2, r.limit)
	return d
}

func (r *retryDelay) reset() { r.cur = r.base }

func (f *Follower) loop(ctx context.Context, channel string, subscribed func()) error {
	sub := f.RDB.Subscribe(ctx, channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	subscribed()
	if f.Ready != nil {
		f.Ready()
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return context.Canceled
			}
			change, ok, err := events.DecodeSettingChange([]byte(msg.Payload))
			if err != nil {
				f.Cache.log.Warnw("invalid settings event", "payload", msg.Payload, "error", err)
				continue
			}
			if !ok {
				continue
			}
			if err := f.Cache.Purge(ctx); err != nil {
				f.Cache.log.Warnw("purge settings cache", "key", change.Key, "error", err)
				continue
			}
			f.Cache.log.Debugw("settings cache purged", "key", change.Key, "by", change.User)
		}
	}
}
