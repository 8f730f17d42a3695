// Package validate checks candidate values against column value types before
// they are submitted. All functions are pure apart from metrics.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/faciam-dev/crudkit/internal/metrics"
	"github.com/faciam-dev/crudkit/pkg/column"
)

const stepEpsilon = 1e-9

var patterns sync.Map // string -> *regexp.Regexp

// Value validates v against t. Tags without intrinsic constraints accept any
// value.
func Value(t column.ValueType, v any) error {
	err := value(t, v)
	if err != nil {
		observe(err)
	}
	return err
}

func value(t column.ValueType, v any) error {
	switch t := t.(type) {
	case column.String:
		return text(t.Regex, t.Length, v)
	case column.Textarea:
		return text(t.Regex, t.Length, v)
	case column.Number:
		return number(t, v)
	case column.Select:
		return option(t.Options, v)
	case column.DisplayOnly:
		return fail(ErrEditNotPermitted, "%s values are display only", column.TagDisplayOnly)
	case column.Currency, column.Checkbox, column.Date, column.Time, column.DateTime,
		column.File, column.Image, column.Password, column.Hidden:
		return nil
	case nil:
		return fail(ErrTypeMismatch, "column has no value type")
	default:
		return fail(ErrTypeMismatch, "unsupported value type %T", t)
	}
}

// Column validates v as a new value for c. Columns that are not editable
// reject every value.
func Column(c column.Column, v any) error {
	var err error
	if !c.Edit {
		err = fail(ErrEditNotPermitted, "column is not editable")
		observe(err)
	} else {
		err = Value(c.Type, v)
	}
	var ve *Error
	if errors.As(err, &ve) {
		ve.Column = c.APIName
	}
	return err
}

// Record validates every submittable column present in record and returns
// all failures joined.
func Record(cols []column.Column, record map[string]any) error {
	var errs []error
	for _, c := range cols {
		if !c.Submittable() {
			continue
		}
		v, ok := record[c.APIName]
		if !ok {
			continue
		}
		if err := Column(c, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Submission filters record down to its submittable payload and validates it.
// On failure no payload is returned, so nothing reaches the backend.
func Submission(t *column.Table, record map[string]any) (map[string]any, error) {
	payload := t.Payload(record)
	if err := Record(t.Columns(), payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func text(pattern string, l column.LengthRange, v any) error {
	s, ok := v.(string)
	if !ok {
		return fail(ErrTypeMismatch, "want string, got %T", v)
	}
	n := utf8.RuneCountInString(s)
	if n < l.Min || (l.Max != nil && n > *l.Max) {
		return fail(ErrLengthOutOfRange, "length %d not in %s", n, rangeString(l))
	}
	if pattern == "" {
		return nil
	}
	rx, err := compile(pattern)
	if err != nil {
		return fail(ErrPatternMismatch, "invalid pattern %q: %v", pattern, err)
	}
	if !rx.MatchString(s) {
		return fail(ErrPatternMismatch, "value does not match %q", pattern)
	}
	return nil
}

func compile(pattern string) (*regexp.Regexp, error) {
	if rx, ok := patterns.Load(pattern); ok {
		return rx.(*regexp.Regexp), nil
	}
	rx, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patterns.Store(pattern, rx)
	return rx, nil
}

func rangeString(l column.LengthRange) string {
	if l.Max == nil {
		return fmt.Sprintf("[%d, ∞)", l.Min)
	}
	return fmt.Sprintf("[%d, %d]", l.Min, *l.Max)
}

func number(t column.Number, v any) error {
	f, ok := toFloat(v)
	if !ok {
		return fail(ErrTypeMismatch, "want number, got %T", v)
	}
	if t.Integer && math.Trunc(f) != f {
		return fail(ErrNotInteger, "%v has a fractional part", f)
	}
	if (t.Min != nil && f < *t.Min) || (t.Max != nil && f > *t.Max) {
		return fail(ErrRangeViolation, "%v not in [%s, %s]", f, bound(t.Min, "-∞"), bound(t.Max, "∞"))
	}
	if t.Step > 0 {
		base := 0.0
		if t.Min != nil {
			base = *t.Min
		}
		q := (f - base) / t.Step
		if math.Abs(q-math.Round(q)) > stepEpsilon {
			return fail(ErrStepMismatch, "%v is not %v + k*%v", f, base, t.Step)
		}
	}
	return nil
}

func bound(b *float64, inf string) string {
	if b == nil {
		return inf
	}
	return strconv.FormatFloat(*b, 'f', -1, 64)
}

// toFloat accepts Go numeric kinds, json.Number and numeric strings.
func toFloat(v any) (float64, bool) {
	if f, ok := numeric(v); ok {
		return f, true
	}
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return finite(float64(n))
	case float64:
		return finite(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return finite(f)
	}
	return 0, false
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func option(options []any, v any) error {
	for _, o := range options {
		if sameOption(o, v) {
			return nil
		}
	}
	return fail(ErrNotAnOption, "%v is not one of %v", v, options)
}

func sameOption(a, b any) bool {
	fa, okA := numeric(a)
	fb, okB := numeric(b)
	if okA && okB {
		return fa == fb
	}
	if okA != okB {
		return false
	}
	return reflect.DeepEqual(a, b)
}

func observe(err error) {
	var ve *Error
	if errors.As(err, &ve) {
		metrics.ValidationFailures.WithLabelValues(ve.Kind()).Inc()
	}
}
