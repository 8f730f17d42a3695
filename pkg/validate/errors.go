package validate

import (
	"errors"
	"fmt"

	"github.com/faciam-dev/crudkit/pkg/column"
)

var (
	ErrLengthOutOfRange = errors.New("length out of range")
	ErrPatternMismatch  = errors.New("pattern mismatch")
	ErrRangeViolation   = errors.New("range violation")
	ErrNotInteger       = errors.New("not an integer")
	ErrStepMismatch     = errors.New("step mismatch")
	ErrNotAnOption      = errors.New("not an option")
	ErrTypeMismatch     = errors.New("type mismatch")
	// ErrEditNotPermitted is shared with the column package so schema checks
	// and value checks report the same condition.
	ErrEditNotPermitted = column.ErrEditNotPermitted
)

// Error is a field level validation failure. It unwraps to one of the
// package sentinels.
type Error struct {
	Column string
	Err    error
	Detail string
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Column != "" {
		return e.Column + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Kind returns a short stable name for the failure, used as a metric label.
func (e *Error) Kind() string {
	switch e.Err {
	case ErrLengthOutOfRange:
		return "length_out_of_range"
	case ErrPatternMismatch:
		return "pattern_mismatch"
	case ErrRangeViolation:
		return "range_violation"
	case ErrNotInteger:
		return "not_integer"
	case ErrStepMismatch:
		return "step_mismatch"
	case ErrNotAnOption:
		return "not_an_option"
	case ErrTypeMismatch:
		return "type_mismatch"
	case ErrEditNotPermitted:
		return "edit_not_permitted"
	default:
		return "other"
	}
}

func fail(err error, format string, args ...any) *Error {
	return &Error{Err: err, Detail: fmt.Sprintf(format, args...)}
}
