package settings

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/faciam-dev/crudkit/sdk"
)

// DefaultRedisPrefix namespaces cached settings.
const DefaultRedisPrefix = "crud:settings:"

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	DSN    string        `yaml:"dsn" env:"CRUD_SETTINGS_REDIS_URL"`
	Prefix string        `yaml:"prefix" env:"CRUD_SETTINGS_REDIS_PREFIX"`
	TTL    time.Duration `yaml:"ttl" env:"CRUD_SETTINGS_REDIS_TTL"`
}

// RedisStore keeps settings as JSON values in Redis so several processes can
// share one session's cache.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore wraps client. A zero ttl keeps entries until purged.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

// OpenRedisStore dials the DSN in c. It returns nil when no DSN is set.
func OpenRedisStore(c RedisConfig) (*RedisStore, error) {
	if c.DSN == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(c.DSN)
	if err != nil {
		return nil, err
	}
	return NewRedisStore(redis.NewClient(opt), c.Prefix, c.TTL), nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (sdk.Setting, bool, error) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return sdk.Setting{}, false, nil
	}
	if err != nil {
		return sdk.Setting{}, false, err
	}
	var s sdk.Setting
	if err := json.Unmarshal(b, &s); err != nil {
		return sdk.Setting{}, false, err
	}
	return s, true, nil
}

func (r *RedisStore) Put(ctx context.Context, key string, s sdk.Setting) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+key, b, r.ttl).Err()
}

// Purge deletes every key under the store prefix.
func (r *RedisStore) Purge(ctx context.Context) error {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisStore) Close() error { return r.client.Close() }
