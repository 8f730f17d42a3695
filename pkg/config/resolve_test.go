package config

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func newRoot() *cobra.Command {
	cmd := &cobra.Command{Use: "root"}
	cmd.PersistentFlags().String("api-url", "", "")
	cmd.PersistentFlags().String("origin", "", "")
	cmd.PersistentFlags().String("profile", "", "")
	return cmd
}

func TestResolvePrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("CRUD_API_URL", "")
	t.Setenv("CRUD_ORIGIN", "")
	t.Setenv("CRUD_PROFILE", "")

	cfg := &File{Active: "default", Profiles: map[string]Profile{"default": {Name: "default", APIURL: "http://cfg/api"}}, Version: 1}
	if err := Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	t.Run("config", func(t *testing.T) {
		r, err := Resolve(newRoot())
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if r.APIURL != "http://cfg/api/" || r.Profile != "default" {
			t.Fatalf("unexpected %+v", r)
		}
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("CRUD_API_URL", "http://env/api/")
		r, err := Resolve(newRoot())
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if r.APIURL != "http://env/api/" {
			t.Fatalf("unexpected %+v", r)
		}
	})

	t.Run("flag", func(t *testing.T) {
		t.Setenv("CRUD_API_URL", "http://env/api/")
		root := newRoot()
		if err := root.PersistentFlags().Set("api-url", "http://flag/api/"); err != nil {
			t.Fatalf("set api-url: %v", err)
		}
		r, err := Resolve(root)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if r.APIURL != "http://flag/api/" {
			t.Fatalf("unexpected %+v", r)
		}
	})

	t.Run("origin fallback", func(t *testing.T) {
		cfg.Profiles["p2"] = Profile{Name: "p2", Origin: "https://shop.example", Cookies: []Cookie{{Name: "auth_info", Value: "x"}}}
		if err := Save(cfg); err != nil {
			t.Fatalf("save: %v", err)
		}
		root := newRoot()
		if err := root.PersistentFlags().Set("profile", "p2"); err != nil {
			t.Fatalf("set profile: %v", err)
		}
		r, err := Resolve(root)
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if r.APIURL != "https://shop.example/api/" || r.Profile != "p2" || len(r.Cookies) != 1 {
			t.Fatalf("unexpected %+v", r)
		}
	})

	t.Run("env profile", func(t *testing.T) {
		t.Setenv("CRUD_PROFILE", "p2")
		r, err := Resolve(newRoot())
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if r.Profile != "p2" {
			t.Fatalf("unexpected %+v", r)
		}
	})
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("CRUD_LOG_LEVEL", "debug")
	t.Setenv("CRUD_SETTINGS_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("CRUD_SETTINGS_REDIS_TTL", "90s")
	e, err := LoadEnv()
	if err != nil {
		t.Fatalf("load env: %v", err)
	}
	if e.LogLevel != "debug" || e.LogFormat != "text" {
		t.Fatalf("log env=%+v", e)
	}
	if e.SettingsRedis.DSN != "redis://localhost:6379/0" || e.SettingsRedis.TTL != 90*time.Second {
		t.Fatalf("redis env=%+v", e.SettingsRedis)
	}
}
