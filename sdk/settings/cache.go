// Package settings caches backend settings for the lifetime of a session.
package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/faciam-dev/crudkit/internal/metrics"
	"github.com/faciam-dev/crudkit/sdk"
	"github.com/faciam-dev/crudkit/sdk/session"
)

// ErrReadOnly is returned by Set when the fetcher cannot write settings.
var ErrReadOnly = errors.New("settings source is read only")

// Fetcher loads a single setting. *client.HTTP implements it.
type Fetcher interface {
	Setting(ctx context.Context, key string) (sdk.Setting, error)
}

// Writer is implemented by fetchers that can store settings.
type Writer interface {
	SetSetting(ctx context.Context, s sdk.Setting) error
}

// BatchFetcher is implemented by fetchers that can load several settings in
// one request.
type BatchFetcher interface {
	SettingsByKey(ctx context.Context, keys []string) ([]sdk.Setting, error)
}

// Store keeps fetched settings.
type Store interface {
	Get(ctx context.Context, key string) (sdk.Setting, bool, error)
	Put(ctx context.Context, key string, s sdk.Setting) error
	Purge(ctx context.Context) error
}

// Cache serves settings from its store and fetches each missing key once,
// even under concurrent callers.
type Cache struct {
	fetcher Fetcher
	store   Store
	group   singleflight.Group
	log     *zap.SugaredLogger

	mu  sync.Mutex
	gen uint64
}

type Option func(*Cache)

// WithStore replaces the default in-memory store.
func WithStore(s Store) Option {
	return func(c *Cache) { c.store = s }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// New returns a cache over f.
func New(f Fetcher, opts ...Option) *Cache {
	c := &Cache{fetcher: f, log: zap.NewNop().Sugar()}
	for _, o := range opts {
		o(c)
	}
	if c.store == nil {
		c.store = NewMemoryStore()
	}
	return c
}

// Get returns the setting for key, fetching it on a miss.
func (c *Cache) Get(ctx context.Context, key string) (sdk.Setting, error) {
	if s, ok := c.lookup(ctx, key); ok {
		metrics.SettingsCacheHits.Inc()
		return s, nil
	}
	metrics.SettingsCacheMisses.Inc()
	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent caller may have filled the entry since our lookup.
		if s, ok := c.lookup(ctx, key); ok {
			return s, nil
		}
		gen := c.generation()
		s, err := c.fetcher.Setting(ctx, key)
		if err != nil {
			return nil, err
		}
		c.put(ctx, gen, key, s)
		return s, nil
	})
	if err != nil {
		return sdk.Setting{}, fmt.Errorf("setting %s: %w", key, err)
	}
	return v.(sdk.Setting), nil
}

// Warm loads keys that are not cached yet, in one request when the fetcher
// supports batches.
func (c *Cache) Warm(ctx context.Context, keys ...string) error {
	var missing []string
	for _, k := range keys {
		if _, ok := c.lookup(ctx, k); !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	bf, ok := c.fetcher.(BatchFetcher)
	if !ok {
		for _, k := range missing {
			if _, err := c.Get(ctx, k); err != nil {
				return err
			}
		}
		return nil
	}
	gen := c.generation()
	list, err := bf.SettingsByKey(ctx, missing)
	if err != nil {
		return fmt.Errorf("settings %v: %w", missing, err)
	}
	for _, s := range list {
		c.put(ctx, gen, s.Key, s)
	}
	return nil
}

// Set writes s through to the backend and refreshes the cached entry.
func (c *Cache) Set(ctx context.Context, s sdk.Setting) error {
	w, ok := c.fetcher.(Writer)
	if !ok {
		return ErrReadOnly
	}
	gen := c.generation()
	if err := w.SetSetting(ctx, s); err != nil {
		return fmt.Errorf("set setting %s: %w", s.Key, err)
	}
	c.put(ctx, gen, s.Key, s)
	return nil
}

// Purge drops every cached setting. Fetches in flight when Purge is called
// do not repopulate the cache.
func (c *Cache) Purge(ctx context.Context) error {
	c.mu.Lock()
	c.gen++
	c.mu.Unlock()
	return c.store.Purge(ctx)
}

// Bind purges the cache whenever the session becomes unauthenticated or
// fails to refresh, scoping cached settings to one session.
func (c *Cache) Bind(s *session.Store) (unbind func()) {
	return s.Subscribe(func(st session.State) {
		switch st.Status {
		case session.StatusNotAuthenticated, session.StatusFetchError:
			if err := c.Purge(context.Background()); err != nil {
				c.log.Warnw("purge settings cache", "status", st.Status, "error", err)
			}
		}
	})
}

func (c *Cache) lookup(ctx context.Context, key string) (sdk.Setting, bool) {
	s, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.log.Warnw("settings store read", "key", key, "error", err)
		return sdk.Setting{}, false
	}
	return s, ok
}

func (c *Cache) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *Cache) put(ctx context.Context, gen uint64, key string, s sdk.Setting) {
	if c.generation() != gen {
		return
	}
	if err := c.store.Put(ctx, key, s); err != nil {
		c.log.Warnw("settings store write", "key", key, "error", err)
	}
}
