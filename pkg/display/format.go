// Package display renders column values for read-only views.
package display

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/faciam-dev/crudkit/pkg/column"
)

const (
	DefaultDateTimeFormat = "yyyy-mm-dd HH:MM:ss"
	DefaultDateFormat     = "yyyy-mm-dd"
	DefaultTimeFormat     = "HH:MM:ss"
	passwordMask          = "••••••••"
)

// Options controls locale dependent formatting.
type Options struct {
	Language language.Tag
	// Currency is an ISO 4217 code.
	Currency string
	// DecimalPlaces applies to non-integer numbers; negative means as many
	// as needed.
	DecimalPlaces int
	// DateTimeFormat overrides the column format when the column has none.
	DateTimeFormat string
	Location       *time.Location
}

// DefaultOptions formats in English with two decimals and US dollars.
func DefaultOptions() Options {
	return Options{Language: language.English, Currency: "USD", DecimalPlaces: 2, Location: time.UTC}
}

// Format renders v as the read view of column c. A display map function
// always takes precedence over the value type.
func Format(c column.Column, v any, opts Options) string {
	if c.DisplayMapFn != nil {
		return c.DisplayMapFn(v)
	}
	if v == nil {
		return ""
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	p := message.NewPrinter(opts.Language)
	switch t := c.Type.(type) {
	case column.Number:
		f, ok := toFloat(v)
		if !ok {
			return fmt.Sprint(v)
		}
		if t.Integer {
			return p.Sprint(number.Decimal(math.Round(f), number.MaxFractionDigits(0)))
		}
		return decimal(p, f, opts.DecimalPlaces)
	case column.Currency:
		f, ok := toFloat(v)
		if !ok {
			return fmt.Sprint(v)
		}
		return money(p, f, opts.Currency)
	case column.DateTime:
		ts, ok := toTime(v, opts.Location)
		if !ok {
			return fmt.Sprint(v)
		}
		format := t.Format
		if format == "" {
			format = opts.DateTimeFormat
		}
		if format == "" {
			format = DefaultDateTimeFormat
		}
		return FormatTime(Truncate(ts, t.Accuracy), format)
	case column.Date:
		ts, ok := toTime(v, opts.Location)
		if !ok {
			return fmt.Sprint(v)
		}
		return FormatTime(ts, DefaultDateFormat)
	case column.Time:
		if s, ok := v.(string); ok {
			for _, l := range []string{"15:04:05", "15:04"} {
				if ts, err := time.Parse(l, s); err == nil {
					return FormatTime(ts, DefaultTimeFormat)
				}
			}
			return s
		}
		if ts, ok := v.(time.Time); ok {
			return FormatTime(ts.In(opts.Location), DefaultTimeFormat)
		}
		return fmt.Sprint(v)
	case column.Checkbox:
		if b, ok := v.(bool); ok {
			if b {
				return "Yes"
			}
			return "No"
		}
		return fmt.Sprint(v)
	case column.Password:
		return passwordMask
	case column.Hidden:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func decimal(p *message.Printer, f float64, places int) string {
	if places < 0 {
		return p.Sprint(number.Decimal(f, number.MaxFractionDigits(15)))
	}
	return p.Sprint(number.Decimal(f, number.MinFractionDigits(places), number.MaxFractionDigits(places)))
}

func money(p *message.Printer, f float64, code string) string {
	if code == "" {
		code = "USD"
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return decimal(p, f, 2) + " " + strings.ToUpper(code)
	}
	scale, _ := currency.Standard.Rounding(unit)
	sym := p.Sprint(currency.Symbol(unit))
	if f < 0 {
		return "-" + sym + decimal(p, -f, scale)
	}
	return sym + decimal(p, f, scale)
}

// Truncate drops the components of ts finer than a. An empty accuracy keeps
// seconds.
func Truncate(ts time.Time, a column.Accuracy) time.Time {
	y, m, d := ts.Date()
	switch a {
	case column.AccuracyDay:
		return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
	case column.AccuracyHour:
		return time.Date(y, m, d, ts.Hour(), 0, 0, 0, ts.Location())
	case column.AccuracyMinute:
		return time.Date(y, m, d, ts.Hour(), ts.Minute(), 0, 0, ts.Location())
	default:
		return time.Date(y, m, d, ts.Hour(), ts.Minute(), ts.Second(), 0, ts.Location())
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func toTime(v any, loc *time.Location) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t.In(loc), true
	case string:
		for _, l := range timeLayouts {
			if ts, err := time.ParseInLocation(l, t, loc); err == nil {
				return ts.In(loc), true
			}
		}
		return time.Time{}, false
	}
	if f, ok := toFloat(v); ok {
		return time.Unix(int64(f), 0).In(loc), true
	}
	return time.Time{}, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
