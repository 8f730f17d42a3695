package generator

import "github.com/faciam-dev/crudkit/pkg/column"

// GoToType maps Go field types to the value type a scaffolded column gets
// when its tag names none.
var GoToType = map[string]column.ValueType{
	"string":     column.String{},
	"*string":    column.String{},
	"int":        column.Number{Integer: true},
	"*int":       column.Number{Integer: true},
	"int32":      column.Number{Integer: true},
	"int64":      column.Number{Integer: true},
	"*int64":     column.Number{Integer: true},
	"uint":       column.Number{Min: column.Ptr(0.0), Integer: true},
	"uint32":     column.Number{Min: column.Ptr(0.0), Integer: true},
	"uint64":     column.Number{Min: column.Ptr(0.0), Integer: true},
	"float32":    column.Number{},
	"float64":    column.Number{},
	"*float64":   column.Number{},
	"bool":       column.Checkbox{},
	"*bool":      column.Checkbox{},
	"time.Time":  column.DateTime{Accuracy: column.AccuracySecond},
	"*time.Time": column.DateTime{Accuracy: column.AccuracySecond},
	"[]byte":     column.File{},
}
