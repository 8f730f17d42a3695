package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/faciam-dev/crudkit/internal/metrics"
	"github.com/faciam-dev/crudkit/sdk"
	"github.com/faciam-dev/crudkit/sdk/client"
)

// DefaultLoginPath is where unauthenticated users are sent.
const DefaultLoginPath = "/login"

// Gateway is the part of the backend the session needs. *client.HTTP
// implements it.
type Gateway interface {
	Login(ctx context.Context, username, password string) error
	Status(ctx context.Context) (sdk.AuthInfo, error)
	Logout(ctx context.Context) error
}

// Manager drives the session state machine.
type Manager struct {
	gw        Gateway
	store     *Store
	log       *zap.SugaredLogger
	location  func() string
	loginPath string
}

type Option func(*Manager)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithLocation sets the function reporting the current page path, captured
// as the return target of login redirects.
func WithLocation(fn func() string) Option {
	return func(m *Manager) { m.location = fn }
}

func WithLoginPath(p string) Option {
	return func(m *Manager) { m.loginPath = p }
}

// WithStore shares an existing store.
func WithStore(s *Store) Option {
	return func(m *Manager) { m.store = s }
}

// NewManager returns a manager for gw.
func NewManager(gw Gateway, opts ...Option) *Manager {
	m := &Manager{
		gw:        gw,
		log:       zap.NewNop().Sugar(),
		location:  func() string { return "" },
		loginPath: DefaultLoginPath,
	}
	for _, o := range opts {
		o(m)
	}
	if m.store == nil {
		m.store = NewStore()
	}
	return m
}

// Store returns the state container the manager writes to.
func (m *Manager) Store() *Store { return m.store }

// Login checks the credentials and, when accepted, refreshes the session.
// A rejected attempt leaves the store untouched.
func (m *Manager) Login(ctx context.Context, username, password string) (LoginResult, error) {
	res, err := m.login(ctx, username, password)
	metrics.LoginResults.WithLabelValues(res.String()).Inc()
	if err != nil {
		m.log.Warnw("login failed", "user", username, "result", res.String(), "error", err)
	} else {
		m.log.Infow("login succeeded", "user", username)
	}
	return res, err
}

func (m *Manager) login(ctx context.Context, username, password string) (LoginResult, error) {
	if err := m.gw.Login(ctx, username, password); err != nil {
		code, ok := client.StatusCode(err)
		switch {
		case ok && code == http.StatusUnauthorized:
			return LoginIncorrectCredentials, fmt.Errorf("%w: %w", ErrIncorrectCredentials, err)
		case ok && code == http.StatusInternalServerError:
			return LoginServerError, fmt.Errorf("%w: %w", ErrServerError, err)
		default:
			return LoginFailedToReachServer, fmt.Errorf("%w: %w", ErrUnreachableServer, err)
		}
	}
	// A superseded refresh still counts: a newer one owns the store.
	if _, err := m.Refresh(ctx); err != nil {
		if errors.Is(err, ErrRefreshFailed) {
			return LoginFailedToRefreshStatus, err
		}
		return LoginFailedToRefreshStatus, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	return LoginSuccess, nil
}

// Refresh asks the backend who is signed in. The store moves to LOADING
// immediately and settles on AUTHENTICATED, NOT_AUTHENTICATED or
// FETCH_ERROR. Failures carry a redirect to the login page that returns to
// the path current when Refresh was called. If a newer Refresh starts before
// this one returns, the response is discarded and Superseded is set.
func (m *Manager) Refresh(ctx context.Context) (Transition, error) {
	returnTo := m.location()
	tok := m.store.begin()
	m.observe(StatusLoading)

	info, err := m.gw.Status(ctx)
	var (
		next State
		tr   Transition
	)
	switch code, answered := client.StatusCode(err); {
	case err == nil:
		next = State{Status: StatusAuthenticated, Principal: &info}
	case answered && code == http.StatusUnauthorized:
		next = State{Status: StatusNotAuthenticated}
		err = fmt.Errorf("%w: %w", ErrNotAuthenticated, err)
	case answered, errors.Is(err, client.ErrInvalidResponse):
		next = State{Status: StatusFetchError}
		err = fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	default:
		next = State{Status: StatusFetchError}
		err = fmt.Errorf("%w: %w: %w", ErrRefreshFailed, ErrUnreachableServer, err)
	}
	tr.Status = next.Status
	if next.Status != StatusAuthenticated {
		tr.Redirect = &Redirect{Path: m.loginPath, ReturnTo: returnTo}
	}

	if !m.store.settle(tok, next) {
		tr.Superseded = true
		m.log.Debugw("discarding stale auth status", "status", next.Status)
		return tr, err
	}
	m.observe(next.Status)
	if err != nil {
		m.log.Warnw("auth status refresh", "status", next.Status, "error", err)
	}
	return tr, err
}

// Logout ends the session. The store is cleared only when the backend
// confirms; either way the transition carries a hard redirect to the login
// page.
func (m *Manager) Logout(ctx context.Context) (Transition, error) {
	tr := Transition{Redirect: &Redirect{Path: m.loginPath, Hard: true}}
	if err := m.gw.Logout(ctx); err != nil {
		m.log.Errorw("failed to logout", "error", err)
		tr.Status = m.store.Get().Status
		if errors.Is(err, client.ErrUnreachable) {
			return tr, fmt.Errorf("logout: %w: %w", ErrUnreachableServer, err)
		}
		return tr, fmt.Errorf("logout: %w", err)
	}
	m.store.reset(State{Status: StatusNotAuthenticated})
	m.observe(StatusNotAuthenticated)
	tr.Status = StatusNotAuthenticated
	return tr, nil
}

func (m *Manager) observe(s Status) {
	metrics.SessionTransitions.WithLabelValues(string(s)).Inc()
}
