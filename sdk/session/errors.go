package session

import "errors"

var (
	ErrIncorrectCredentials = errors.New("incorrect credentials")
	ErrServerError          = errors.New("server error")
	ErrUnreachableServer    = errors.New("failed to reach server")
	ErrRefreshFailed        = errors.New("failed to refresh auth status")
	ErrNotAuthenticated     = errors.New("not authenticated")
)
