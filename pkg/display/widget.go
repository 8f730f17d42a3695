package display

import (
	"strings"

	"github.com/faciam-dev/crudkit/pkg/column"
)

// WidgetID returns the fully qualified widget used to edit values of t.
// Columns that cannot be edited render through "core://display".
func WidgetID(t column.ValueType) string {
	if t == nil {
		return "core://auto"
	}
	switch t.(type) {
	case column.DisplayOnly:
		return "core://display"
	case column.Hidden:
		return "core://hidden"
	}
	return CanonicalizeWidgetID(string(t.Tag()))
}

// CanonicalizeWidgetID converts shorthand or legacy widget identifiers into
// fully qualified IDs. Unknown names become plugin IDs and empty input yields
// "core://auto".
func CanonicalizeWidgetID(raw string) string {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return "core://auto"
	}
	if strings.Contains(s, "://") {
		return s
	}
	switch s {
	case "string", "text", "textinput", "text-input":
		return "plugin://text-input"
	case "number", "number-input", "numeric":
		return "plugin://number-input"
	case "currency", "currency-input", "money":
		return "plugin://currency-input"
	case "textarea":
		return "plugin://textarea"
	case "checkbox", "bool":
		return "plugin://checkbox"
	case "date", "date-input":
		return "plugin://date-input"
	case "time", "time-input":
		return "plugin://time-input"
	case "datetime", "datetime-input":
		return "plugin://datetime-input"
	case "select":
		return "plugin://select"
	case "password", "password-input":
		return "plugin://password-input"
	case "file", "file-input":
		return "plugin://file-input"
	case "image", "image-input":
		return "plugin://image-input"
	case "hidden":
		return "core://hidden"
	case string(column.TagDisplayOnly), "display":
		return "core://display"
	default:
		return "plugin://" + s
	}
}
