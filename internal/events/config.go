package events

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config selects the sinks. Every sink is off unless its address is set.
type Config struct {
	Redis   RedisConfig   `yaml:"redis" envPrefix:"CRUD_EVENTS_REDIS_"`
	Webhook WebhookConfig `yaml:"webhook" envPrefix:"CRUD_EVENTS_WEBHOOK_"`
	Retry   RetryConfig   `yaml:"retry" envPrefix:"CRUD_EVENTS_RETRY_"`
}

type RedisConfig struct {
	DSN     string `yaml:"dsn" env:"DSN"`
	Channel string `yaml:"channel" env:"CHANNEL"`
}

type WebhookConfig struct {
	Endpoint string        `yaml:"endpoint" env:"ENDPOINT"`
	Secret   string        `yaml:"secret" env:"SECRET"`
	Timeout  time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

type RetryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts" env:"MAX_ATTEMPTS"`
	InitialDelay time.Duration `yaml:"initial_delay" env:"INITIAL_DELAY"`
}

// LoadConfig reads YAML from path. An empty path yields the zero value.
func LoadConfig(path string) (Config, error) {
	var c Config
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return c, err
	}
	err = yaml.Unmarshal(data, &c)
	return c, err
}

// Build opens the configured sinks and returns a dispatcher over them, along
// with a function releasing their connections.
func Build(c Config) (*Dispatcher, func(), error) {
	rs, err := NewRedisSink(c.Redis)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {}
	var sinks []Sink
	if rs != nil {
		sinks = append(sinks, rs)
		closeFn = func() { _ = rs.Close() }
	}
	if wh := NewWebhookSink(c.Webhook); wh != nil {
		sinks = append(sinks, wh)
	}
	return NewDispatcher(c.Retry, sinks...), closeFn, nil
}
