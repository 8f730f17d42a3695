package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/faciam-dev/crudkit/internal/devserver"
	"github.com/faciam-dev/crudkit/pkg/config"
	"github.com/faciam-dev/crudkit/pkg/validate"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"CRUD_API_URL", "CRUD_ORIGIN", "CRUD_PROFILE", "CRUD_USERNAME", "CRUD_PASSWORD", "CRUD_SETTINGS_REDIS_URL", "CRUD_CONFIG_KEY"} {
		t.Setenv(k, "")
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func newDevServer(t *testing.T) string {
	t.Helper()
	users := devserver.NewUsers(bcrypt.MinCost)
	if err := users.Add("alice", "secret", devserver.SettingsPermission); err != nil {
		t.Fatalf("add user: %v", err)
	}
	api := devserver.New(devserver.Config{Secret: "test", SessionTTL: time.Hour}, users, nil)
	srv := httptest.NewServer(api.Adapter())
	t.Cleanup(srv.Close)
	return srv.URL + devserver.DefaultPrefix
}

func TestSessionCommands(t *testing.T) {
	isolate(t)
	base := newDevServer(t)

	out, err := run(t, "login", "--api-url", base, "--username", "alice", "--non-interactive")
	if err == nil || !strings.Contains(err.Error(), "required") {
		t.Fatalf("login without password: out=%q err=%v", out, err)
	}

	t.Setenv("CRUD_PASSWORD", "wrong")
	out, err = run(t, "login", "--api-url", base, "--username", "alice", "--non-interactive")
	if err == nil || !strings.Contains(out, "INCORRECT_CREDENTIALS") {
		t.Fatalf("bad login: out=%q err=%v", out, err)
	}

	t.Setenv("CRUD_PASSWORD", "secret")
	out, err = run(t, "login", "--api-url", base, "--username", "alice", "--non-interactive")
	if err != nil || !strings.Contains(out, "SUCCESS") {
		t.Fatalf("login: out=%q err=%v", out, err)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if p := cfg.Profiles["default"]; p.APIURL != base || len(p.Cookies) == 0 {
		t.Fatalf("profile not saved: %+v", p)
	}

	// The saved profile is used from here on.
	out, err = run(t, "status", "--output", "json")
	if err != nil || !strings.Contains(out, `"AUTHENTICATED"`) || !strings.Contains(out, `"alice"`) {
		t.Fatalf("status: out=%q err=%v", out, err)
	}

	out, err = run(t, "settings", "get", "theme_color", "theme_color", "--output", "json")
	if err != nil || strings.Count(out, `"theme_color"`) != 2 {
		t.Fatalf("settings get: out=%q err=%v", out, err)
	}

	out, err = run(t, "logout")
	if err != nil || !strings.Contains(out, "NOT_AUTHENTICATED -> /login") {
		t.Fatalf("logout: out=%q err=%v", out, err)
	}

	out, err = run(t, "status", "--return-to", "/orders")
	if err != nil || !strings.Contains(out, "NOT_AUTHENTICATED") || !strings.Contains(out, "/login?redirect=%2Forders") {
		t.Fatalf("status after logout: out=%q err=%v", out, err)
	}
}

func TestLogoutEndsSessionWhenBackendFails(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	err := config.Save(&config.File{Active: "default", Version: 1, Profiles: map[string]config.Profile{
		"default": {Name: "default", APIURL: srv.URL + "/api/", Cookies: []config.Cookie{{Name: "auth_info", Value: "tok"}}},
	}})
	if err != nil {
		t.Fatalf("save config: %v", err)
	}

	out, err := run(t, "logout")
	if err == nil {
		t.Fatal("expected the backend failure to be reported")
	}
	if !strings.Contains(out, "NOT_AUTHENTICATED -> /login") {
		t.Fatalf("logout: out=%q err=%v", out, err)
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if p := cfg.Profiles["default"]; len(p.Cookies) != 0 || p.APIURL == "" {
		t.Fatalf("cookies kept after logout: %+v", p)
	}
}

func TestStatusUnreachable(t *testing.T) {
	isolate(t)
	srv := httptest.NewServer(nil)
	base := srv.URL + "/api/"
	srv.Close()
	if _, err := run(t, "status", "--api-url", base); err == nil {
		t.Fatal("expected error for unreachable backend")
	}
}

const productsYAML = `version: 1.0.0
table: products
columns:
  - api_name: id
    display_name: ID
    type:
      type: number
      data:
        integer: true
    edit: false
  - api_name: qty
    display_name: Quantity
    type:
      type: number
      data:
        integer: true
        range: [0, 100]
    edit: true
  - api_name: name
    display_name: Name
    type:
      type: string
      data:
        length_range: [1, 10]
    edit: true
    searchable: true
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestColumnsCommands(t *testing.T) {
	isolate(t)
	f := writeFile(t, "products.yaml", productsYAML)

	if out, err := run(t, "columns", "validate", "--file", f); err != nil || out != "ok\n" {
		t.Fatalf("validate: out=%q err=%v", out, err)
	}

	out, err := run(t, "columns", "list", "--file", f)
	if err != nil || !strings.Contains(out, "Quantity") {
		t.Fatalf("list: out=%q err=%v", out, err)
	}
	for _, widget := range []string{"plugin://number-input", "plugin://text-input"} {
		if !strings.Contains(out, widget) {
			t.Fatalf("list: missing widget %s in %q", widget, out)
		}
	}

	if _, err := run(t, "columns", "check", "--file", f, "--column", "qty", "--value", "1.5"); !errors.Is(err, validate.ErrNotInteger) {
		t.Fatalf("check 1.5: %v", err)
	}
	if _, err := run(t, "columns", "check", "--file", f, "--column", "qty", "--value", "7"); err != nil {
		t.Fatalf("check 7: %v", err)
	}
	if _, err := run(t, "columns", "check", "--file", f, "--column", "name", "--value", "12345678901"); !errors.Is(err, validate.ErrLengthOutOfRange) {
		t.Fatalf("check long name: %v", err)
	}
	if _, err := run(t, "columns", "check", "--file", f, "--column", "id", "--value", "3"); !errors.Is(err, validate.ErrEditNotPermitted) {
		t.Fatalf("check id: %v", err)
	}

	bad := writeFile(t, "bad.yaml", "version: 2.0.0\ntable: x\ncolumns: []\n")
	if _, err := run(t, "columns", "validate", "--file", bad); err == nil {
		t.Fatal("expected unsupported version error")
	}
}

func TestColumnsDiff(t *testing.T) {
	isolate(t)
	code := 0
	exitFunc = func(c int) { code = c }
	defer func() { exitFunc = os.Exit }()

	a := writeFile(t, "a.yaml", productsYAML)
	b := writeFile(t, "b.yaml", strings.Replace(productsYAML, "Quantity", "Qty", 1))

	out, err := run(t, "columns", "diff", a, a, "--fail-on-change")
	if err != nil || out != "No changes.\n" || code != 0 {
		t.Fatalf("same file: out=%q err=%v code=%d", out, err, code)
	}
	out, err = run(t, "columns", "diff", a, b, "--fail-on-change")
	if err != nil || !strings.Contains(out, "-    display_name: Quantity") || !strings.Contains(out, "+    display_name: Qty") {
		t.Fatalf("diff: out=%q err=%v", out, err)
	}
	if code != 2 {
		t.Fatalf("expected exit 2 got %d", code)
	}
}

func TestColumnsScaffold(t *testing.T) {
	isolate(t)
	out, err := run(t, "columns", "scaffold", "--src", "../../internal/generator/testdata/*.go")
	if err != nil || !strings.Contains(out, "table: products") || !strings.Contains(out, "api_name: created_at") {
		t.Fatalf("scaffold: out=%q err=%v", out, err)
	}
}

func TestConfigCommands(t *testing.T) {
	isolate(t)
	cfg := &config.File{Active: "a", Version: 1, Profiles: map[string]config.Profile{
		"a": {Name: "a", APIURL: "http://a/api/"},
		"b": {Name: "b", APIURL: "http://b/api/", Cookies: []config.Cookie{{Name: "auth_info", Value: "x"}}},
	}}
	if err := config.Save(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := run(t, "config", "use", "missing"); err == nil {
		t.Fatal("expected error for unknown profile")
	}
	if _, err := run(t, "config", "use", "b"); err != nil {
		t.Fatalf("use: %v", err)
	}
	out, err := run(t, "config", "list")
	if err != nil || !strings.Contains(out, "* b\thttp://b/api/") {
		t.Fatalf("list: out=%q err=%v", out, err)
	}
	out, err = run(t, "config", "get", "--output", "json")
	if err != nil || !strings.Contains(out, `"hasSession": true`) {
		t.Fatalf("get: out=%q err=%v", out, err)
	}
}
