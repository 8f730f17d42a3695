package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrUnreachable wraps transport failures: the request never produced a
	// response.
	ErrUnreachable = errors.New("backend unreachable")
	ErrNoBaseURL   = errors.New("no API base URL configured")

	// ErrInvalidResponse means the backend answered 2xx with a body that is
	// not the expected JSON.
	ErrInvalidResponse = errors.New("invalid response body")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return e.Status
	}
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("%s: %s", e.Status, body)
}

// StatusCode extracts the HTTP status from err when the backend answered.
func StatusCode(err error) (int, bool) {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code, true
	}
	return 0, false
}

func restyErr(resp *resty.Response) error {
	status := resp.Status()
	if status == "" {
		status = fmt.Sprintf("%d", resp.StatusCode())
	}
	return &StatusError{Code: resp.StatusCode(), Status: status, Body: resp.String()}
}

func transportErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnreachable, err)
}
