package column

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// SortOrder is the direction of the active sort. Wire values match the
// backend list request ("Asc", "Desc").
type SortOrder string

const (
	Asc  SortOrder = "Asc"
	Desc SortOrder = "Desc"
)

// Align is a horizontal alignment hint for renderers.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

var (
	// ErrEditNotPermitted marks an edit of a display only value.
	ErrEditNotPermitted = errors.New("edit not permitted")
	// ErrMissingDisplayMap is returned for display only columns without a
	// display map function.
	ErrMissingDisplayMap = errors.New("display map function required")
	// ErrMultipleSorts is returned when more than one column holds a sort.
	ErrMultipleSorts = errors.New("more than one column is sorted")
	// ErrInvalidType is returned for an inconsistent value type payload.
	ErrInvalidType = errors.New("invalid value type")
	// ErrDuplicateColumn is returned when api names collide.
	ErrDuplicateColumn = errors.New("duplicate column")
	// ErrUnknownColumn is returned by table lookups.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrNotSearchable is returned when searching a column without Searchable.
	ErrNotSearchable = errors.New("column is not searchable")
)

// Column describes one field of an entity: how it is shown, sorted, searched
// and edited. Columns are static configuration; only CurrentSort changes and
// only through a Table.
type Column struct {
	APIName        string
	APIRequestName *string
	DisplayName    *string
	// DisplayMapFn, when set, is the only read display path. It must be pure.
	DisplayMapFn func(any) string
	CurrentSort  *SortOrder
	Type         ValueType
	Edit         bool
	Readonly     bool
	Searchable   bool
	SearchNested *string
	Align        *Align

	labels map[string]string
}

// WithDisplayMap returns a copy of c whose DisplayMapFn looks values up in
// labels by their fmt.Sprint form. Unknown values render unchanged.
func (c Column) WithDisplayMap(labels map[string]string) Column {
	c.labels = copyLabels(labels)
	m := c.labels
	c.DisplayMapFn = func(v any) string {
		s := fmt.Sprint(v)
		if l, ok := m[s]; ok {
			return l
		}
		return s
	}
	return c
}

func copyLabels(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// RequestName is the name used when building list, sort and search requests.
func (c Column) RequestName() string {
	if c.APIRequestName != nil && *c.APIRequestName != "" {
		return *c.APIRequestName
	}
	return c.APIName
}

// Visible reports whether the column appears in the table view.
func (c Column) Visible() bool { return c.DisplayName != nil }

// Submittable reports whether the column value is sent on submission.
func (c Column) Submittable() bool { return c.Edit && !c.Readonly }

func (c Column) MarshalJSON() ([]byte, error) {
	return json.Marshal(SpecOf(c))
}

func (c *Column) UnmarshalJSON(b []byte) error {
	var s Spec
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	col, err := s.Build()
	if err != nil {
		return err
	}
	*c = col
	return nil
}

// Check validates a column set at load time and returns every problem found.
func Check(cols []Column) error {
	var errs []error
	seen := make(map[string]struct{}, len(cols))
	sorted := 0
	for i, c := range cols {
		if c.APIName == "" {
			errs = append(errs, fmt.Errorf("column %d: empty api_name", i))
		} else if _, ok := seen[c.APIName]; ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateColumn, c.APIName))
		}
		seen[c.APIName] = struct{}{}
		if c.CurrentSort != nil {
			sorted++
		}
		if err := checkType(c); err != nil {
			errs = append(errs, fmt.Errorf("column %s: %w", c.APIName, err))
		}
	}
	if sorted > 1 {
		errs = append(errs, fmt.Errorf("%w: %d columns", ErrMultipleSorts, sorted))
	}
	return errors.Join(errs...)
}

func checkType(c Column) error {
	switch t := c.Type.(type) {
	case nil:
		return fmt.Errorf("%w: missing type", ErrInvalidType)
	case String:
		return checkText(t.Regex, t.Length)
	case Textarea:
		if t.Resize != "" && !t.Resize.Valid() {
			return fmt.Errorf("%w: resize %q", ErrInvalidType, t.Resize)
		}
		return checkText(t.Regex, t.Length)
	case Number:
		if t.Min != nil && t.Max != nil && *t.Min > *t.Max {
			return fmt.Errorf("%w: range min %v > max %v", ErrInvalidType, *t.Min, *t.Max)
		}
		if t.Step < 0 {
			return fmt.Errorf("%w: negative step", ErrInvalidType)
		}
	case Select:
		if len(t.Options) == 0 {
			return fmt.Errorf("%w: select without options", ErrInvalidType)
		}
	case DateTime:
		if t.Accuracy != "" && !t.Accuracy.Valid() {
			return fmt.Errorf("%w: accuracy %q", ErrInvalidType, t.Accuracy)
		}
	case DisplayOnly:
		if c.Edit {
			return fmt.Errorf("%w: %s columns cannot set edit", ErrEditNotPermitted, TagDisplayOnly)
		}
		if c.DisplayMapFn == nil {
			return ErrMissingDisplayMap
		}
	}
	return nil
}

func checkText(regex string, l LengthRange) error {
	if l.Min < 0 {
		return fmt.Errorf("%w: negative length min", ErrInvalidType)
	}
	if l.Max != nil && *l.Max < l.Min {
		return fmt.Errorf("%w: length max %d < min %d", ErrInvalidType, *l.Max, l.Min)
	}
	if regex != "" {
		if _, err := regexp.Compile(regex); err != nil {
			return fmt.Errorf("%w: regex: %v", ErrInvalidType, err)
		}
	}
	return nil
}
