package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/faciam-dev/crudkit/internal/devserver"
	"github.com/faciam-dev/crudkit/internal/events"
	"github.com/faciam-dev/crudkit/internal/logger"
)

type devEnv struct {
	Secret     string        `env:"CRUD_DEV_SECRET"`
	Users      string        `env:"CRUD_DEV_USERS" envDefault:"admin:admin:settings"`
	Origins    []string      `env:"CRUD_DEV_ORIGINS" envSeparator:","`
	SessionTTL time.Duration `env:"CRUD_DEV_SESSION_TTL" envDefault:"24h"`
	LoginEvery time.Duration `env:"CRUD_DEV_LOGIN_EVERY" envDefault:"2s"`
	LoginBurst int           `env:"CRUD_DEV_LOGIN_BURST" envDefault:"5"`
	LogLevel   string        `env:"CRUD_LOG_LEVEL" envDefault:"info"`
	LogFormat  string        `env:"CRUD_LOG_FORMAT" envDefault:"text"`

	Events events.Config
}

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	prefix := flag.String("prefix", devserver.DefaultPrefix, "API path prefix")
	secure := flag.Bool("secure-cookie", false, "mark the session cookie Secure")
	openapi := flag.String("openapi", "", "write OpenAPI JSON and exit")
	flag.Parse()

	_ = godotenv.Load()
	var e devEnv
	if err := env.Parse(&e); err != nil {
		logger.L.Error("parse env", "err", err)
		os.Exit(1)
	}
	logger.Set(logger.New(os.Stdout, e.LogLevel, e.LogFormat))

	if e.Secret == "" {
		e.Secret = uuid.NewString()
		logger.L.Warn("CRUD_DEV_SECRET not set, sessions will not survive a restart")
	}
	users := devserver.NewUsers(0)
	if err := users.AddFromSpec(e.Users); err != nil {
		logger.L.Error("users", "err", err)
		os.Exit(1)
	}

	dispatcher, closeEvents, err := events.Build(e.Events)
	if err != nil {
		logger.L.Error("events", "err", err)
		os.Exit(1)
	}
	defer closeEvents()

	revoked := devserver.NewRevocations()
	api := devserver.New(devserver.Config{
		Prefix:         *prefix,
		Secret:         e.Secret,
		SessionTTL:     e.SessionTTL,
		AllowedOrigins: e.Origins,
		SecureCookie:   *secure,
		Revoked:        revoked,
		Events:         dispatcher,
		LoginEvery:     e.LoginEvery,
		LoginBurst:     e.LoginBurst,
	}, users, nil)

	if *openapi != "" {
		data, err := json.MarshalIndent(api.OpenAPI(), "", "  ")
		if err != nil {
			logger.L.Error("marshal openapi", "err", err)
			os.Exit(1)
		}
		p := filepath.Clean(*openapi)
		if err := os.WriteFile(p, data, 0o600); err != nil {
			logger.L.Error("write openapi", "err", err)
			os.Exit(1)
		}
		return
	}

	s := gocron.NewScheduler(time.UTC)
	if err := revoked.SchedulePrune(s, 10*time.Minute); err != nil {
		logger.L.Error("schedule revocation prune", "err", err)
	}
	s.StartAsync()
	defer s.Stop()

	logger.L.Info("listening", "addr", *addr, "prefix", *prefix)
	srv := &http.Server{
		Addr:         *addr,
		Handler:      api.Adapter(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.L.Error("server error", "err", err)
		os.Exit(1)
	}
}
