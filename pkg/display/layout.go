package display

import (
	"strings"
	"time"
)

// token order matters: longer tokens are tried first.
var layoutTokens = []struct{ from, to string }{
	{"yyyy", "2006"},
	{"yy", "06"},
	{"mm", "01"},
	{"dd", "02"},
	{"HH", "15"},
	{"hh", "03"},
	{"MM", "04"},
	{"ss", "05"},
	{"tt", "PM"},
}

// Layout converts a user date format such as "dd/mm/yy hh:MM tt" into a Go
// time layout. mm is the month and MM the minute. Other characters are copied
// unchanged, so literal text that happens to be a Go layout element ("Jan",
// "Mon", "PM", digits) is reinterpreted by time.Format. Use FormatTime to
// render formats containing such text.
func Layout(format string) string {
	var b strings.Builder
	walk(format, func(tok string) { b.WriteString(tok) }, func(lit string) { b.WriteString(lit) })
	return b.String()
}

// FormatTime renders ts with a user date format. Only the tokens are passed
// through time.Format; everything else is written verbatim.
func FormatTime(ts time.Time, format string) string {
	var b strings.Builder
	walk(format, func(tok string) { b.WriteString(ts.Format(tok)) }, func(lit string) { b.WriteString(lit) })
	return b.String()
}

// walk splits format into tokens, reported as their Go layout, and runs of
// literal text.
func walk(format string, token, literal func(string)) {
	start := 0
	for i := 0; i < len(format); {
		matched := false
		for _, tok := range layoutTokens {
			if strings.HasPrefix(format[i:], tok.from) {
				if start < i {
					literal(format[start:i])
				}
				token(tok.to)
				i += len(tok.from)
				start = i
				matched = true
				break
			}
		}
		if !matched {
			i++
		}
	}
	if start < len(format) {
		literal(format[start:])
	}
}
