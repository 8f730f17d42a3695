// Package devserver is an in-memory stand-in for the admin backend. It
// serves the auth and settings endpoints with the same cookie session the
// real backend uses.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/faciam-dev/crudkit/internal/events"
	"github.com/faciam-dev/crudkit/internal/logger"
	"github.com/faciam-dev/crudkit/sdk"
)

const (
	DefaultPrefix      = "/api/"
	SettingsPermission = "settings"
	// CookieName must match the cookie tags on the input structs.
	CookieName = "auth_info"
)

// Config configures the dev server.
type Config struct {
	Prefix         string
	Secret         string
	SessionTTL     time.Duration
	AllowedOrigins []string
	SecureCookie   bool
	// Revoked holds logged-out sessions. New creates one when nil.
	Revoked *Revocations
	// Events receives a SettingUpdated event per stored setting. May be nil.
	Events *events.Dispatcher
	// LoginEvery and LoginBurst rate limit login attempts per user name.
	// A zero LoginEvery disables the limit.
	LoginEvery time.Duration
	LoginBurst int
}

type server struct {
	cfg      Config
	throttle *throttle
	jwt      *JWT
	users    *Users
	settings *Settings
}

// New builds the API. Login and status are public; settings/set needs the
// settings permission.
func New(cfg Config, users *Users, settings *Settings) huma.API {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:5173"}
	}
	if settings == nil {
		settings = NewSettings()
	}
	if cfg.Revoked == nil {
		cfg.Revoked = NewRevocations()
	}
	s := &server{cfg: cfg, throttle: newThrottle(cfg.LoginEvery, cfg.LoginBurst), jwt: NewJWT(cfg.Secret, cfg.SessionTTL), users: users, settings: settings}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
	}))
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	api := humachi.New(r, huma.DefaultConfig("CRUD dev API", "1.0.0"))
	api.UseMiddleware(MetricsMW)
	s.register(api)
	return api
}

func (s *server) path(p string) string {
	return strings.TrimSuffix(s.cfg.Prefix, "/") + "/" + p
}

func (s *server) register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        s.path("auth/login"),
		Summary:     "Login",
		Tags:        []string{"Auth"},
	}, s.login)
	huma.Register(api, huma.Operation{
		OperationID: "authStatus",
		Method:      http.MethodGet,
		Path:        s.path("auth/status"),
		Summary:     "Current principal",
		Tags:        []string{"Auth"},
	}, s.status)
	huma.Register(api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        s.path("auth/logout"),
		Summary:     "Logout",
		Tags:        []string{"Auth"},
	}, s.logout)
	huma.Register(api, huma.Operation{
		OperationID: "getSetting",
		Method:      http.MethodGet,
		Path:        s.path("settings/get_one/{key}"),
		Summary:     "Get one setting",
		Tags:        []string{"Settings"},
	}, s.getOne)
	huma.Register(api, huma.Operation{
		OperationID: "getAllSettings",
		Method:      http.MethodGet,
		Path:        s.path("settings/get_all"),
		Summary:     "Get all settings",
		Tags:        []string{"Settings"},
	}, s.getAll)
	huma.Register(api, huma.Operation{
		OperationID: "getMultipleSettings",
		Method:      http.MethodPost,
		Path:        s.path("settings/get_multiple"),
		Summary:     "Get settings by key",
		Tags:        []string{"Settings"},
	}, s.getMultiple)
	huma.Register(api, huma.Operation{
		OperationID: "setSetting",
		Method:      http.MethodPost,
		Path:        s.path("settings/set"),
		Summary:     "Set a setting",
		Tags:        []string{"Settings"},
	}, s.set)
}

type loginInput struct {
	Body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
}

type cookieOutput struct {
	SetCookie string `header:"Set-Cookie"`
}

type sessionInput struct {
	Session string `cookie:"auth_info"`
}

type statusOutput struct {
	Body sdk.AuthInfo
}

func (s *server) cookie(value string, maxAge int) string {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	return c.String()
}

func (s *server) login(ctx context.Context, in *loginInput) (*cookieOutput, error) {
	if !s.throttle.allow(in.Body.Username) {
		logger.L.Warn("login throttled", "user", in.Body.Username)
		return nil, huma.Error429TooManyRequests("too many login attempts")
	}
	u, err := s.users.Authenticate(in.Body.Username, in.Body.Password)
	if err != nil {
		logger.L.Info("login rejected", "user", in.Body.Username)
		return nil, huma.Error401Unauthorized("invalid credentials")
	}
	tok, err := s.jwt.Generate(u.Username, u.Permissions)
	if err != nil {
		return nil, huma.Error500InternalServerError("sign session", err)
	}
	logger.L.Info("login", "user", u.Username)
	return &cookieOutput{SetCookie: s.cookie(tok, int(s.cfg.SessionTTL.Seconds()))}, nil
}

// principal resolves the session cookie.
func (s *server) principal(session string) (*sdk.AuthInfo, error) {
	if session == "" {
		return nil, huma.Error401Unauthorized("not logged in")
	}
	claims, err := s.jwt.Validate(session)
	if err != nil || s.cfg.Revoked.Revoked(claims.ID) {
		return nil, huma.Error401Unauthorized("invalid session")
	}
	return &sdk.AuthInfo{Username: claims.Subject, Permissions: claims.Permissions}, nil
}

func (s *server) status(ctx context.Context, in *sessionInput) (*statusOutput, error) {
	p, err := s.principal(in.Session)
	if err != nil {
		return nil, err
	}
	if p.Permissions == nil {
		p.Permissions = []string{}
	}
	return &statusOutput{Body: *p}, nil
}

func (s *server) logout(ctx context.Context, in *sessionInput) (*cookieOutput, error) {
	if claims, err := s.jwt.Validate(in.Session); err == nil && claims.ExpiresAt != nil {
		s.cfg.Revoked.Revoke(claims.ID, claims.ExpiresAt.Time)
		logger.L.Info("logout", "user", claims.Subject)
	}
	return &cookieOutput{SetCookie: s.cookie("", -1)}, nil
}

type keyInput struct {
	Key string `path:"key"`
}

type settingOutput struct {
	Body sdk.Setting
}

type settingsOutput struct {
	Body []sdk.Setting
}

func (s *server) getOne(ctx context.Context, in *keyInput) (*settingOutput, error) {
	v, ok := s.settings.Get(in.Key)
	if !ok {
		return nil, huma.Error404NotFound("Setting not found")
	}
	return &settingOutput{Body: v}, nil
}

func (s *server) getAll(ctx context.Context, _ *struct{}) (*settingsOutput, error) {
	return &settingsOutput{Body: s.settings.All()}, nil
}

type multipleInput struct {
	Body struct {
		Keys []string `json:"keys"`
	}
}

func (s *server) getMultiple(ctx context.Context, in *multipleInput) (*settingsOutput, error) {
	return &settingsOutput{Body: s.settings.Many(in.Body.Keys)}, nil
}

type setInput struct {
	Session string `cookie:"auth_info"`
	RawBody []byte
}

func (s *server) set(ctx context.Context, in *setInput) (*struct{}, error) {
	p, err := s.principal(in.Session)
	if err != nil {
		return nil, err
	}
	if !p.HasPermission(SettingsPermission) {
		return nil, huma.Error403Forbidden("missing permission " + SettingsPermission)
	}
	var v sdk.Setting
	if err := json.Unmarshal(in.RawBody, &v); err != nil {
		return nil, huma.Error400BadRequest("invalid setting", err)
	}
	if err := s.settings.Set(v); err != nil {
		if errors.Is(err, ErrSettingNotFound) {
			return nil, huma.Error404NotFound(err.Error())
		}
		return nil, huma.Error422UnprocessableEntity(err.Error())
	}
	logger.L.Info("setting updated", "user", p.Username, "key", v.Key)
	s.cfg.Events.Dispatch(ctx, events.New(events.SettingUpdated, events.SettingChange{Key: v.Key, User: p.Username}))
	return nil, nil
}
