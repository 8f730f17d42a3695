package codec

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"

	"github.com/faciam-dev/crudkit/pkg/column"
)

const currentVersion = "1.0.0"

var supported = mustConstraint("^1")

func mustConstraint(s string) *semver.Constraints {
	c, err := semver.NewConstraint(s)
	if err != nil {
		panic(err)
	}
	return c
}

type definitionFile struct {
	Version string        `yaml:"version"`
	Table   string        `yaml:"table"`
	Columns []column.Spec `yaml:"columns"`
}

// EncodeYAML writes the table definition as YAML.
func EncodeYAML(t *column.Table) ([]byte, error) {
	cols := t.Columns()
	df := definitionFile{Version: currentVersion, Table: t.Name, Columns: make([]column.Spec, len(cols))}
	for i, c := range cols {
		df.Columns[i] = column.SpecOf(c)
	}
	return yaml.Marshal(df)
}

// DecodeYAML reads a table definition and checks its columns. Files without a
// version are read as 1.0.0.
func DecodeYAML(b []byte) (*column.Table, error) {
	var df definitionFile
	if err := yaml.Unmarshal(b, &df); err != nil {
		return nil, err
	}
	if err := checkVersion(df.Version); err != nil {
		return nil, err
	}
	cols := make([]column.Column, 0, len(df.Columns))
	for _, s := range df.Columns {
		c, err := s.Build()
		if err != nil {
			return nil, err
		}
		cols = append(cols, c)
	}
	return column.NewTable(df.Table, cols)
}

func checkVersion(v string) error {
	if v == "" {
		return nil
	}
	ver, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("definition version %q: %w", v, err)
	}
	if !supported.Check(ver) {
		return fmt.Errorf("definition version %s is not supported (want %s)", ver, supported)
	}
	return nil
}

// UnifiedDiff returns a unified diff of two encoded definitions.
func UnifiedDiff(a, b []byte, fromName, toName string) string {
	d := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: fromName,
		ToFile:   toName,
		Context:  3,
	}
	out, _ := difflib.GetUnifiedDiffString(d)
	return out
}
