package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/faciam-dev/crudkit/sdk"
)

// DefaultAPIPrefix is appended to the page origin when no API URL is set.
const DefaultAPIPrefix = "/api/"

// HTTP is the backend gateway. Every request carries the client's cookies so
// the session cookie set by auth/login authenticates later calls.
type HTTP struct {
	base string
	http *resty.Client
}

type options struct {
	hc    *http.Client
	jar   http.CookieJar
	ua    string
	debug bool
}

type Option func(*options)

// WithHTTPClient uses hc for transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.hc = hc }
}

// WithCookieJar replaces the default in-memory cookie jar.
func WithCookieJar(jar http.CookieJar) Option {
	return func(o *options) { o.jar = jar }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.ua = ua }
}

// WithDebug logs requests and responses through resty.
func WithDebug(on bool) Option {
	return func(o *options) { o.debug = on }
}

// NewHTTP returns a gateway for the API rooted at base, for example
// "https://shop.example/api/".
func NewHTTP(base string, opts ...Option) *HTTP {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	var rc *resty.Client
	if o.hc != nil {
		rc = resty.NewWithClient(o.hc)
	} else {
		rc = resty.New()
	}
	jar := o.jar
	if jar == nil && rc.GetClient().Jar == nil {
		jar, _ = cookiejar.New(nil)
	}
	if jar != nil {
		rc.SetCookieJar(jar)
	}
	rc.SetHeader("Accept", "application/json")
	if o.ua != "" {
		rc.SetHeader("User-Agent", o.ua)
	}
	rc.SetDebug(o.debug)
	rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if r.Header.Get("X-Request-ID") == "" {
			r.SetHeader("X-Request-ID", uuid.NewString())
		}
		return nil
	})
	return &HTTP{base: withSlash(base), http: rc}
}

// Base returns the API root with a trailing slash.
func (c *HTTP) Base() string { return c.base }

func (c *HTTP) get(ctx context.Context, path string, out any) error {
	resp, err := c.http.R().SetContext(ctx).Get(c.base + path)
	if err != nil {
		return transportErr("GET "+path, err)
	}
	return decode("GET "+path, resp, out)
}

func (c *HTTP) post(ctx context.Context, path string, body, out any) error {
	req := c.http.R().SetContext(ctx).SetHeader("Content-Type", "application/json")
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Post(c.base + path)
	if err != nil {
		return transportErr("POST "+path, err)
	}
	return decode("POST "+path, resp, out)
}

// decode reads a JSON body into out whatever Content-Type the backend sent.
// A 2xx reply whose body is not JSON is an error, never an empty value.
func decode(op string, resp *resty.Response, out any) error {
	if resp.IsError() {
		return restyErr(resp)
	}
	if out == nil {
		return nil
	}
	body := resp.Body()
	if len(body) == 0 {
		return fmt.Errorf("%s: %w: empty body", op, ErrInvalidResponse)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidResponse, err)
	}
	return nil
}

// Login submits credentials. Success only means the backend accepted them;
// the session cookie is stored in the jar.
func (c *HTTP) Login(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	return c.post(ctx, "auth/login", body, nil)
}

// Status returns the principal of the current session.
func (c *HTTP) Status(ctx context.Context) (sdk.AuthInfo, error) {
	var out sdk.AuthInfo
	if err := c.get(ctx, "auth/status", &out); err != nil {
		return sdk.AuthInfo{}, err
	}
	if out.Username == "" {
		return sdk.AuthInfo{}, fmt.Errorf("GET auth/status: %w: principal has no username", ErrInvalidResponse)
	}
	return out, nil
}

func (c *HTTP) Logout(ctx context.Context) error {
	return c.post(ctx, "auth/logout", nil, nil)
}

// Setting fetches one setting by key.
func (c *HTTP) Setting(ctx context.Context, key string) (sdk.Setting, error) {
	var out sdk.Setting
	if err := c.get(ctx, "settings/get_one/"+url.PathEscape(key), &out); err != nil {
		return sdk.Setting{}, err
	}
	if out.Key == "" {
		return sdk.Setting{}, fmt.Errorf("GET settings/get_one/%s: %w: setting has no key", key, ErrInvalidResponse)
	}
	return out, nil
}

func (c *HTTP) Settings(ctx context.Context) ([]sdk.Setting, error) {
	var out []sdk.Setting
	if err := c.get(ctx, "settings/get_all", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SettingsByKey fetches several settings in one request. Unknown keys are
// omitted by the backend.
func (c *HTTP) SettingsByKey(ctx context.Context, keys []string) ([]sdk.Setting, error) {
	var out []sdk.Setting
	if err := c.post(ctx, "settings/get_multiple", map[string][]string{"keys": keys}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetSetting stores s. The session needs the settings permission.
func (c *HTTP) SetSetting(ctx context.Context, s sdk.Setting) error {
	return c.post(ctx, "settings/set", s, nil)
}

// Cookies returns the cookies the jar would send to the API.
func (c *HTTP) Cookies() []*http.Cookie {
	u, err := url.Parse(c.base)
	if err != nil || c.http.GetClient().Jar == nil {
		return nil
	}
	return c.http.GetClient().Jar.Cookies(u)
}

// SetCookies restores previously saved session cookies.
func (c *HTTP) SetCookies(cookies []*http.Cookie) {
	u, err := url.Parse(c.base)
	if err != nil || c.http.GetClient().Jar == nil {
		return
	}
	c.http.GetClient().Jar.SetCookies(u, cookies)
}

// ResolveBase picks the API root: the configured URL when set, otherwise the
// origin with DefaultAPIPrefix appended.
func ResolveBase(configured, origin string) (string, error) {
	if s := strings.TrimSpace(configured); s != "" {
		return withSlash(s), nil
	}
	if s := strings.TrimRight(strings.TrimSpace(origin), "/"); s != "" {
		return s + DefaultAPIPrefix, nil
	}
	return "", ErrNoBaseURL
}

func withSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}
