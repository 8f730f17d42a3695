package column

// Tag is the wire name of a ValueType variant.
type Tag string

const (
	TagString      Tag = "string"
	TagNumber      Tag = "number"
	TagCurrency    Tag = "currency"
	TagSelect      Tag = "select"
	TagCheckbox    Tag = "checkbox"
	TagDate        Tag = "date"
	TagTime        Tag = "time"
	TagDateTime    Tag = "datetime"
	TagFile        Tag = "file"
	TagImage       Tag = "image"
	TagPassword    Tag = "password"
	TagHidden      Tag = "hidden"
	TagTextarea    Tag = "textarea"
	TagDisplayOnly Tag = "use_display_map_fn_and_no_edit"
)

// Tags lists every known tag in declaration order.
func Tags() []Tag {
	return []Tag{
		TagString, TagNumber, TagCurrency, TagSelect, TagCheckbox, TagDate, TagTime,
		TagDateTime, TagFile, TagImage, TagPassword, TagHidden, TagTextarea, TagDisplayOnly,
	}
}

// ValueType describes how a column value is displayed, validated and edited.
// The set of implementations is closed; switch on the concrete type.
type ValueType interface {
	Tag() Tag
	valueType()
}

// LengthRange bounds a text length. Min is inclusive; Max is inclusive and nil
// means unbounded. A Min of 0 makes the field optional.
type LengthRange struct {
	Min int
	Max *int
}

// String is a single line text input.
type String struct {
	Regex  string
	Length LengthRange
}

// Number is a numeric input. Integer overrides any decimal place formatting.
// A Step of 0 disables the step constraint.
type Number struct {
	Min     *float64
	Max     *float64
	Integer bool
	Step    float64
}

// Currency is a number displayed with currency formatting.
type Currency struct{}

// Select restricts the value to one of Options.
type Select struct {
	Options []any
}

type Checkbox struct{}

type Date struct{}

type Time struct{}

// Accuracy truncates datetime precision before formatting.
type Accuracy string

const (
	AccuracyDay    Accuracy = "day"
	AccuracyHour   Accuracy = "hour"
	AccuracyMinute Accuracy = "minute"
	AccuracySecond Accuracy = "second"
)

// Valid reports whether a is a known accuracy.
func (a Accuracy) Valid() bool {
	switch a {
	case AccuracyDay, AccuracyHour, AccuracyMinute, AccuracySecond:
		return true
	}
	return false
}

// DateTime is a date and time input. Format uses the tokens understood by
// display.Layout; empty means the default layout.
type DateTime struct {
	Accuracy Accuracy
	Format   string
}

type File struct{}

type Image struct{}

type Password struct{}

// Hidden values travel with the form but are never shown.
type Hidden struct{}

// Resize controls how a textarea may be resized.
type Resize string

const (
	ResizeNone       Resize = "none"
	ResizeBoth       Resize = "both"
	ResizeHorizontal Resize = "horizontal"
	ResizeVertical   Resize = "vertical"
)

// Valid reports whether r is a known resize mode.
func (r Resize) Valid() bool {
	switch r {
	case ResizeNone, ResizeBoth, ResizeHorizontal, ResizeVertical:
		return true
	}
	return false
}

// Textarea is a multi line text input with the same length semantics as String.
type Textarea struct {
	Regex  string
	Length LengthRange
	Resize Resize
}

// DisplayOnly columns are rendered through their display map function and can
// never be edited.
type DisplayOnly struct{}

func (String) Tag() Tag      { return TagString }
func (Number) Tag() Tag      { return TagNumber }
func (Currency) Tag() Tag    { return TagCurrency }
func (Select) Tag() Tag      { return TagSelect }
func (Checkbox) Tag() Tag    { return TagCheckbox }
func (Date) Tag() Tag        { return TagDate }
func (Time) Tag() Tag        { return TagTime }
func (DateTime) Tag() Tag    { return TagDateTime }
func (File) Tag() Tag        { return TagFile }
func (Image) Tag() Tag       { return TagImage }
func (Password) Tag() Tag    { return TagPassword }
func (Hidden) Tag() Tag      { return TagHidden }
func (Textarea) Tag() Tag    { return TagTextarea }
func (DisplayOnly) Tag() Tag { return TagDisplayOnly }

func (String) valueType()      {}
func (Number) valueType()      {}
func (Currency) valueType()    {}
func (Select) valueType()      {}
func (Checkbox) valueType()    {}
func (Date) valueType()        {}
func (Time) valueType()        {}
func (DateTime) valueType()    {}
func (File) valueType()        {}
func (Image) valueType()       {}
func (Password) valueType()    {}
func (Hidden) valueType()      {}
func (Textarea) valueType()    {}
func (DisplayOnly) valueType() {}

// Ptr returns a pointer to v. It keeps optional bounds readable in literals.
func Ptr[T any](v T) *T { return &v }
