package display

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/text/language"

	"github.com/faciam-dev/crudkit/pkg/column"
)

func TestLayout(t *testing.T) {
	tests := []struct {
		in  string
		out string
	}{
		{"dd/mm/yy hh:MM tt", "02/01/06 03:04 PM"},
		{DefaultDateTimeFormat, "2006-01-02 15:04:05"},
		{"yyyy.mm.dd", "2006.01.02"},
	}
	for _, tt := range tests {
		if got := Layout(tt.in); got != tt.out {
			t.Fatalf("Layout(%q)=%q want %q", tt.in, got, tt.out)
		}
	}
}

func TestFormatTimeKeepsLiterals(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)
	tests := []struct {
		format string
		want   string
	}{
		{"Mon dd Jan yyyy, day 2 at HH:MM MST", "Mon 05 Jan 2024, day 2 at 14:07 MST"},
		{"hh:MM tt", "02:07 PM"},
		{"yyyy-mm-dd HH:MM:ss", "2024-03-05 14:07:09"},
		{"no tokens", "no tokens"},
	}
	for _, tt := range tests {
		if got := FormatTime(ts, tt.format); got != tt.want {
			t.Fatalf("FormatTime(%q)=%q want %q", tt.format, got, tt.want)
		}
	}
}

func TestFormatNumbers(t *testing.T) {
	opts := DefaultOptions()
	col := column.Column{APIName: "price", Type: column.Number{}}
	if got := Format(col, 1234.5, opts); got != "1,234.50" {
		t.Fatalf("decimal=%q", got)
	}
	col.Type = column.Number{Integer: true}
	if got := Format(col, 1234.6, opts); got != "1,235" {
		t.Fatalf("integer=%q", got)
	}
	opts.Language = language.German
	col.Type = column.Number{}
	if got := Format(col, 1234.5, opts); got != "1.234,50" {
		t.Fatalf("german=%q", got)
	}
}

func TestFormatCurrency(t *testing.T) {
	col := column.Column{APIName: "total", Type: column.Currency{}}
	got := Format(col, 12.5, DefaultOptions())
	if !strings.Contains(got, "$") || !strings.HasSuffix(got, "12.50") {
		t.Fatalf("currency=%q", got)
	}
}

func TestFormatDateTimeAccuracy(t *testing.T) {
	col := column.Column{APIName: "at", Type: column.DateTime{Accuracy: column.AccuracyMinute, Format: "dd/mm/yy hh:MM tt"}}
	if got := Format(col, "2024-03-05T14:07:59Z", DefaultOptions()); got != "05/03/24 02:07 PM" {
		t.Fatalf("datetime=%q", got)
	}
	col.Type = column.DateTime{Accuracy: column.AccuracyDay}
	ts := time.Date(2024, 3, 5, 14, 7, 59, 0, time.UTC)
	if got := Format(col, ts, DefaultOptions()); got != "2024-03-05 00:00:00" {
		t.Fatalf("day accuracy=%q", got)
	}
}

func TestDisplayMapWins(t *testing.T) {
	col := column.Column{APIName: "status", Type: column.DisplayOnly{}}.WithDisplayMap(map[string]string{"1": "Closed"})
	if got := Format(col, 1, DefaultOptions()); got != "Closed" {
		t.Fatalf("display map=%q", got)
	}
	col = column.Column{APIName: "n", Type: column.Number{}, DisplayMapFn: func(any) string { return "custom" }}
	if got := Format(col, 3, DefaultOptions()); got != "custom" {
		t.Fatalf("fn=%q", got)
	}
}

func TestFormatMisc(t *testing.T) {
	opts := DefaultOptions()
	if got := Format(column.Column{Type: column.Checkbox{}}, true, opts); got != "Yes" {
		t.Fatalf("checkbox=%q", got)
	}
	if got := Format(column.Column{Type: column.Password{}}, "secret", opts); strings.Contains(got, "secret") {
		t.Fatalf("password leaked: %q", got)
	}
	if got := Format(column.Column{Type: column.String{}}, nil, opts); got != "" {
		t.Fatalf("nil=%q", got)
	}
	if got := Format(column.Column{Type: column.Time{}}, "09:30", opts); got != "09:30:00" {
		t.Fatalf("time=%q", got)
	}
}
