package column

import (
	"fmt"
)

// Spec is the serialised form of a Column shared by JSON payloads and YAML
// definition files.
type Spec struct {
	APIName        string            `json:"api_name" yaml:"api_name"`
	APIRequestName *string           `json:"api_request_name,omitempty" yaml:"api_request_name,omitempty"`
	DisplayName    *string           `json:"display_name" yaml:"display_name,omitempty"`
	DisplayMap     map[string]string `json:"display_map,omitempty" yaml:"display_map,omitempty"`
	CurrentSort    *SortOrder        `json:"current_sort" yaml:"current_sort,omitempty"`
	Type           TypeSpec          `json:"type" yaml:"type"`
	Edit           bool              `json:"edit" yaml:"edit"`
	Readonly       bool              `json:"readonly" yaml:"readonly,omitempty"`
	Searchable     bool              `json:"searchable" yaml:"searchable,omitempty"`
	SearchNested   *string           `json:"search_nested,omitempty" yaml:"search_nested,omitempty"`
	Align          *Align            `json:"align,omitempty" yaml:"align,omitempty"`
}

// TypeSpec is the tagged wire form of a ValueType: {"type": tag, "data": {...}}.
type TypeSpec struct {
	Type Tag       `json:"type" yaml:"type"`
	Data *TypeData `json:"data,omitempty" yaml:"data,omitempty"`
}

// TypeData carries the union of all per-tag payload keys. Which keys are read
// depends on the tag.
type TypeData struct {
	Regex       *string    `json:"regex,omitempty" yaml:"regex,omitempty"`
	LengthRange []*int     `json:"length_range,omitempty" yaml:"length_range,omitempty,flow"`
	Range       []*float64 `json:"range,omitempty" yaml:"range,omitempty,flow"`
	Integer     bool       `json:"integer,omitempty" yaml:"integer,omitempty"`
	Step        float64    `json:"step,omitempty" yaml:"step,omitempty"`
	Options     []any      `json:"options,omitempty" yaml:"options,omitempty"`
	Accuracy    Accuracy   `json:"accuracy,omitempty" yaml:"accuracy,omitempty"`
	Format      string     `json:"format,omitempty" yaml:"format,omitempty"`
	Resize      Resize     `json:"resize,omitempty" yaml:"resize,omitempty"`
}

// Build converts the spec into a Column. A display_map becomes a lookup
// DisplayMapFn.
func (s Spec) Build() (Column, error) {
	vt, err := s.Type.Build()
	if err != nil {
		return Column{}, fmt.Errorf("column %s: %w", s.APIName, err)
	}
	c := Column{
		APIName:        s.APIName,
		APIRequestName: s.APIRequestName,
		DisplayName:    s.DisplayName,
		CurrentSort:    s.CurrentSort,
		Type:           vt,
		Edit:           s.Edit,
		Readonly:       s.Readonly,
		Searchable:     s.Searchable,
		SearchNested:   s.SearchNested,
		Align:          s.Align,
	}
	if s.CurrentSort != nil && *s.CurrentSort != Asc && *s.CurrentSort != Desc {
		return Column{}, fmt.Errorf("column %s: %w: sort %q", s.APIName, ErrInvalidType, *s.CurrentSort)
	}
	if len(s.DisplayMap) > 0 {
		c = c.WithDisplayMap(s.DisplayMap)
	}
	return c, nil
}

// SpecOf returns the serialised form of c. Display map functions built from a
// display_map round trip; arbitrary functions are not serialisable and are
// dropped.
func SpecOf(c Column) Spec {
	s := Spec{
		APIName:        c.APIName,
		APIRequestName: c.APIRequestName,
		DisplayName:    c.DisplayName,
		CurrentSort:    c.CurrentSort,
		Type:           TypeSpecOf(c.Type),
		Edit:           c.Edit,
		Readonly:       c.Readonly,
		Searchable:     c.Searchable,
		SearchNested:   c.SearchNested,
		Align:          c.Align,
	}
	if c.DisplayMapFn != nil && len(c.labels) > 0 {
		s.DisplayMap = copyLabels(c.labels)
	}
	return s
}

// Build converts the tagged wire form into a ValueType.
func (t TypeSpec) Build() (ValueType, error) {
	d := TypeData{}
	if t.Data != nil {
		d = *t.Data
	}
	switch t.Type {
	case TagString:
		l, err := lengthRange(d.LengthRange)
		if err != nil {
			return nil, err
		}
		return String{Regex: deref(d.Regex), Length: l}, nil
	case TagTextarea:
		l, err := lengthRange(d.LengthRange)
		if err != nil {
			return nil, err
		}
		r := d.Resize
		if r == "" {
			r = ResizeVertical
		}
		return Textarea{Regex: deref(d.Regex), Length: l, Resize: r}, nil
	case TagNumber:
		n := Number{Integer: d.Integer, Step: d.Step}
		switch len(d.Range) {
		case 0:
		case 2:
			n.Min, n.Max = d.Range[0], d.Range[1]
		default:
			return nil, fmt.Errorf("%w: range needs 2 elements, got %d", ErrInvalidType, len(d.Range))
		}
		return n, nil
	case TagCurrency:
		return Currency{}, nil
	case TagSelect:
		return Select{Options: d.Options}, nil
	case TagCheckbox:
		return Checkbox{}, nil
	case TagDate:
		return Date{}, nil
	case TagTime:
		return Time{}, nil
	case TagDateTime:
		return DateTime{Accuracy: d.Accuracy, Format: d.Format}, nil
	case TagFile:
		return File{}, nil
	case TagImage:
		return Image{}, nil
	case TagPassword:
		return Password{}, nil
	case TagHidden:
		return Hidden{}, nil
	case TagDisplayOnly:
		return DisplayOnly{}, nil
	case "":
		return nil, fmt.Errorf("%w: missing type tag", ErrInvalidType)
	default:
		return nil, fmt.Errorf("%w: unknown tag %q", ErrInvalidType, t.Type)
	}
}

// TypeSpecOf returns the tagged wire form of vt.
func TypeSpecOf(vt ValueType) TypeSpec {
	switch t := vt.(type) {
	case nil:
		return TypeSpec{}
	case String:
		return TypeSpec{Type: TagString, Data: &TypeData{Regex: optString(t.Regex), LengthRange: []*int{Ptr(t.Length.Min), t.Length.Max}}}
	case Textarea:
		return TypeSpec{Type: TagTextarea, Data: &TypeData{Regex: optString(t.Regex), LengthRange: []*int{Ptr(t.Length.Min), t.Length.Max}, Resize: t.Resize}}
	case Number:
		return TypeSpec{Type: TagNumber, Data: &TypeData{Range: []*float64{t.Min, t.Max}, Integer: t.Integer, Step: t.Step}}
	case Select:
		return TypeSpec{Type: TagSelect, Data: &TypeData{Options: t.Options}}
	case DateTime:
		if t.Accuracy == "" && t.Format == "" {
			return TypeSpec{Type: TagDateTime}
		}
		return TypeSpec{Type: TagDateTime, Data: &TypeData{Accuracy: t.Accuracy, Format: t.Format}}
	default:
		return TypeSpec{Type: vt.Tag()}
	}
}

func lengthRange(r []*int) (LengthRange, error) {
	switch len(r) {
	case 0:
		return LengthRange{}, nil
	case 2:
		l := LengthRange{Max: r[1]}
		if r[0] != nil {
			l.Min = *r[0]
		}
		return l, nil
	default:
		return LengthRange{}, fmt.Errorf("%w: length_range needs 2 elements, got %d", ErrInvalidType, len(r))
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
