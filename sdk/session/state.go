// Package session tracks whether the user is signed in to the backend.
package session

import (
	"net/url"
	"slices"

	"github.com/faciam-dev/crudkit/sdk"
)

// Status is the lifecycle state of the session.
type Status string

const (
	StatusLoading          Status = "LOADING"
	StatusAuthenticated    Status = "AUTHENTICATED"
	StatusNotAuthenticated Status = "NOT_AUTHENTICATED"
	StatusFetchError       Status = "FETCH_ERROR"
)

// State is a snapshot of the session. Principal is nil unless the session is
// authenticated or a refresh is in flight from an authenticated state.
type State struct {
	Status    Status
	Principal *sdk.AuthInfo
}

func (s State) clone() State {
	if s.Principal != nil {
		p := *s.Principal
		p.Permissions = slices.Clone(p.Permissions)
		s.Principal = &p
	}
	return s
}

// LoginResult classifies a login attempt.
type LoginResult int

const (
	LoginSuccess LoginResult = iota
	LoginIncorrectCredentials
	LoginServerError
	LoginFailedToReachServer
	LoginFailedToRefreshStatus
)

func (r LoginResult) String() string {
	switch r {
	case LoginSuccess:
		return "SUCCESS"
	case LoginIncorrectCredentials:
		return "INCORRECT_CREDENTIALS"
	case LoginServerError:
		return "SERVER_ERROR"
	case LoginFailedToReachServer:
		return "FAILED_TO_REACH_SERVER"
	case LoginFailedToRefreshStatus:
		return "FAILED_TO_REFRESH_STATUS"
	default:
		return "UNKNOWN"
	}
}

// Redirect asks the caller to navigate to the login page. The manager never
// navigates itself.
type Redirect struct {
	Path     string
	ReturnTo string
	// Hard means the current view must be discarded, as after logout.
	Hard bool
}

// URL renders the redirect target, e.g. /login?redirect=%2Forders.
func (r Redirect) URL() string {
	if r.ReturnTo == "" {
		return r.Path
	}
	return r.Path + "?redirect=" + url.QueryEscape(r.ReturnTo)
}

// Transition reports the outcome of Refresh or Logout.
type Transition struct {
	Status   Status
	Redirect *Redirect
	// Superseded is set when a newer refresh started before this one
	// finished; the store was left untouched.
	Superseded bool
}
