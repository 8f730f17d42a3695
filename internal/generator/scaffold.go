package generator

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/faciam-dev/crudkit/pkg/column"
	"github.com/faciam-dev/crudkit/pkg/column/codec"
)

// ScaffoldOptions selects the Go sources to scan.
type ScaffoldOptions struct {
	Srcs []string
	// Struct picks one struct by name; empty means the first tagged struct.
	Struct   string
	Merge    bool
	Existing []byte
}

type scanned struct {
	name string
	cols []column.Column
}

var title = cases.Title(language.English)

// ScaffoldYAML scans Go structs whose fields carry crud:"api_name,opts" tags
// and emits a table definition. Options are edit, readonly, search, hidden,
// type=<tag> and options=a|b|c.
func ScaffoldYAML(opts ScaffoldOptions) ([]byte, error) {
	tbl, err := Scaffold(opts)
	if err != nil {
		return nil, err
	}
	return codec.EncodeYAML(tbl)
}

// Scaffold is ScaffoldYAML without the encoding step.
func Scaffold(opts ScaffoldOptions) (*column.Table, error) {
	var found []scanned
	for _, src := range opts.Srcs {
		matches, err := filepath.Glob(src)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if err := parseStructs(m, &found); err != nil {
				return nil, err
			}
		}
	}
	var pick *scanned
	for i := range found {
		if opts.Struct == "" || found[i].name == opts.Struct {
			pick = &found[i]
			break
		}
	}
	if pick == nil {
		if opts.Struct != "" {
			return nil, fmt.Errorf("struct %s not found or has no crud tags", opts.Struct)
		}
		return nil, fmt.Errorf("no struct with crud tags in %v", opts.Srcs)
	}
	name := strcase.ToSnake(inflection.Plural(pick.name))
	cols := pick.cols
	if opts.Merge && len(opts.Existing) > 0 {
		existing, err := codec.DecodeYAML(opts.Existing)
		if err != nil {
			return nil, err
		}
		cols = mergeColumns(existing.Columns(), cols)
		name = existing.Name
	}
	return column.NewTable(name, cols)
}

func parseStructs(file string, out *[]scanned) error {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, file, nil, parser.ParseComments)
	if err != nil {
		return err
	}
	for _, decl := range f.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok {
				continue
			}
			var cols []column.Column
			for _, fld := range st.Fields.List {
				if fld.Tag == nil || len(fld.Names) == 0 {
					continue
				}
				tag := reflect.StructTag(strings.Trim(fld.Tag.Value, "`")).Get("crud")
				if tag == "" || tag == "-" {
					continue
				}
				c, err := columnFromTag(tag, exprString(fld.Type))
				if err != nil {
					return fmt.Errorf("%s.%s: %w", ts.Name.Name, fld.Names[0].Name, err)
				}
				cols = append(cols, c)
			}
			if len(cols) > 0 {
				*out = append(*out, scanned{name: ts.Name.Name, cols: cols})
			}
		}
	}
	return nil
}

func columnFromTag(tag, goType string) (column.Column, error) {
	parts := strings.Split(tag, ",")
	c := column.Column{APIName: strings.TrimSpace(parts[0])}
	var (
		typeTag string
		options []any
		hidden  bool
	)
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		switch {
		case p == "edit":
			c.Edit = true
		case p == "readonly":
			c.Readonly = true
		case p == "search":
			c.Searchable = true
		case p == "hidden":
			hidden = true
		case strings.HasPrefix(p, "type="):
			typeTag = strings.TrimPrefix(p, "type=")
		case strings.HasPrefix(p, "options="):
			for _, o := range strings.Split(strings.TrimPrefix(p, "options="), "|") {
				options = append(options, o)
			}
		case p == "":
		default:
			return column.Column{}, fmt.Errorf("unknown crud tag option %q", p)
		}
	}
	if !hidden {
		c.DisplayName = column.Ptr(DisplayName(c.APIName))
	}
	if typeTag != "" {
		vt, err := column.TypeSpec{Type: column.Tag(typeTag), Data: &column.TypeData{Options: options}}.Build()
		if err != nil {
			return column.Column{}, err
		}
		c.Type = vt
		return c, nil
	}
	vt, ok := GoToType[goType]
	if !ok {
		vt = column.String{}
	}
	c.Type = vt
	return c, nil
}

// DisplayName turns an api name such as created_at into "Created At".
func DisplayName(apiName string) string {
	return title.String(strcase.ToDelimited(apiName, ' '))
}

func exprString(e ast.Expr) string {
	switch t := e.(type) {
	case *ast.StarExpr:
		return "*" + exprString(t.X)
	case *ast.SelectorExpr:
		return exprString(t.X) + "." + t.Sel.Name
	case *ast.ArrayType:
		if t.Len == nil {
			return "[]" + exprString(t.Elt)
		}
		return ""
	case *ast.Ident:
		return t.Name
	default:
		return ""
	}
}

// mergeColumns keeps existing columns unchanged and appends scanned columns
// that are new.
func mergeColumns(old, scanned []column.Column) []column.Column {
	seen := make(map[string]bool, len(old))
	out := make([]column.Column, 0, len(old)+len(scanned))
	for _, c := range old {
		seen[c.APIName] = true
		out = append(out, c)
	}
	for _, c := range scanned {
		if !seen[c.APIName] {
			out = append(out, c)
		}
	}
	return out
}
