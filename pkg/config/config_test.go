package config

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/faciam-dev/crudkit/pkg/crypto"
)

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	cfg := &File{
		Active: "p1",
		Profiles: map[string]Profile{
			"p1": {Name: "p1", APIURL: "http://api/", Cookies: []Cookie{{Name: "auth_info", Value: "jwt"}}},
		},
		Version: 1,
	}
	if err := Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	p, err := Path()
	if err != nil {
		t.Fatalf("path: %v", err)
	}
	info, err := os.Stat(p)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("perm = %v", info.Mode().Perm())
	}
	loaded, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff(cfg, loaded); diff != "" {
		t.Fatalf("cfg diff (-want +got)\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	f, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.Active != "default" || f.Version != 1 || f.Profiles == nil {
		t.Fatalf("defaults=%+v", f)
	}
}

func TestProfileCookies(t *testing.T) {
	var p Profile
	p.SetCookies([]*http.Cookie{{Name: "auth_info", Value: "abc", Path: "/"}})
	got := p.HTTPCookies()
	if len(got) != 1 || got[0].Name != "auth_info" || got[0].Value != "abc" {
		t.Fatalf("cookies=%v", got)
	}
	p.SetCookies(nil)
	if p.Cookies != nil {
		t.Fatalf("cookies not cleared: %v", p.Cookies)
	}
}

func TestSealedCookies(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(crypto.KeyEnv, "0123456789abcdef")

	cfg := &File{Active: "p", Version: 1, Profiles: map[string]Profile{
		"p": {Name: "p", Cookies: []Cookie{{Name: "auth_info", Value: "jwt"}}},
	}}
	if err := Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	if cfg.Profiles["p"].Cookies[0].Value != "jwt" {
		t.Fatal("save mutated the caller's cookies")
	}
	p, _ := Path()
	raw, err := os.ReadFile(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(raw), `"jwt"`) {
		t.Fatalf("cookie stored in clear:\n%s", raw)
	}
	loaded, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := loaded.Profiles["p"].Cookies[0].Value; got != "jwt" {
		t.Fatalf("cookie=%q", got)
	}

	t.Setenv(crypto.KeyEnv, "")
	if _, err := Load(); !errors.Is(err, crypto.ErrNoKey) {
		t.Fatalf("want ErrNoKey, got %v", err)
	}
}
