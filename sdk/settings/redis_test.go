package settings

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"

	"github.com/faciam-dev/crudkit/sdk"
)

func TestRedisStore(t *testing.T) {
	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
	store := NewRedisStore(rc, "", time.Minute)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "theme"); ok || err != nil {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}
	want := sdk.Setting{Key: "theme", LongName: "Theme", Value: sdk.SettingValue{Type: sdk.SettingTextVec, Data: []string{"dark", "light"}}}
	if err := store.Put(ctx, "theme", want); err != nil {
		t.Fatalf("put: %v", err)
	}
	if !s.Exists(DefaultRedisPrefix + "theme") {
		t.Fatalf("key not written under prefix")
	}
	if ttl := s.TTL(DefaultRedisPrefix + "theme"); ttl != time.Minute {
		t.Fatalf("ttl=%v", ttl)
	}
	got, ok, err := store.Get(ctx, "theme")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}

	if err := s.Set("unrelated", "x"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.Purge(ctx); err != nil {
		t.Fatalf("purge: %v", err)
	}
	if s.Exists(DefaultRedisPrefix+"theme") || !s.Exists("unrelated") {
		t.Fatalf("purge touched the wrong keys: %v", s.Keys())
	}
}

func TestCacheOverRedis(t *testing.T) {
	s := miniredis.RunT(t)
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: s.Addr()}), "test:", 0)
	f := newFakeFetcher()
	ctx := context.Background()

	a := New(f, WithStore(store))
	if _, err := a.Get(ctx, "theme"); err != nil {
		t.Fatalf("get: %v", err)
	}
	// A second process sharing the store is served without fetching.
	b := New(f, WithStore(store))
	if _, err := b.Get(ctx, "theme"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if n := f.count("theme"); n != 1 {
		t.Fatalf("fetches=%d want 1", n)
	}
}

func TestOpenRedisStoreWithoutDSN(t *testing.T) {
	st, err := OpenRedisStore(RedisConfig{})
	if st != nil || err != nil {
		t.Fatalf("store=%v err=%v", st, err)
	}
}
