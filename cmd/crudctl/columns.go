package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/faciam-dev/crudkit/internal/generator"
	"github.com/faciam-dev/crudkit/pkg/column"
	"github.com/faciam-dev/crudkit/pkg/column/codec"
	"github.com/faciam-dev/crudkit/pkg/column/watch"
	"github.com/faciam-dev/crudkit/pkg/display"
	"github.com/faciam-dev/crudkit/pkg/validate"
)

var exitFunc = os.Exit

func newColumnsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "columns", Short: "Work with column definition files"}
	cmd.AddCommand(newColumnsValidateCmd())
	cmd.AddCommand(newColumnsListCmd())
	cmd.AddCommand(newColumnsCheckCmd())
	cmd.AddCommand(newColumnsDiffCmd())
	cmd.AddCommand(newColumnsScaffoldCmd())
	return cmd
}

func readTable(file string) (*column.Table, []byte, error) {
	if file == "" {
		return nil, nil, errors.New("--file is required")
	}
	data, err := os.ReadFile(filepath.Clean(file)) // #nosec G304 -- file path cleaned
	if err != nil {
		return nil, nil, err
	}
	tbl, err := codec.DecodeYAML(data)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", file, err)
	}
	return tbl, data, nil
}

func newColumnsValidateCmd() *cobra.Command {
	var (
		file   string
		follow bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a column definition file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if follow {
				return watchFile(cmd, file)
			}
			if _, _, err := readTable(file); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "columns.yaml", "definition file")
	cmd.Flags().BoolVarP(&follow, "watch", "w", false, "revalidate whenever the file changes")
	return cmd
}

// watchFile reports the validity of file after each change until interrupted.
func watchFile(cmd *cobra.Command, file string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	out := cmd.OutOrStdout()
	w := watch.New(file, 0, func(tbl *column.Table, err error) {
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", file, err)
			return
		}
		fmt.Fprintf(out, "%s: ok (%d columns)\n", file, len(tbl.Columns()))
	})
	cancel, err := w.Start(ctx)
	if err != nil {
		return err
	}
	defer cancel()
	<-ctx.Done()
	return nil
}

func newColumnsListCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the columns of a definition file",
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, _, err := readTable(file)
			if err != nil {
				return err
			}
			cols := tbl.Columns()
			specs := make([]column.Spec, 0, len(cols))
			rows := make([][]string, 0, len(cols))
			for _, c := range cols {
				specs = append(specs, column.SpecOf(c))
				name := "-"
				if c.DisplayName != nil {
					name = *c.DisplayName
				}
				sort := ""
				if c.CurrentSort != nil {
					sort = string(*c.CurrentSort)
				}
				rows = append(rows, []string{
					c.APIName, name, string(c.Type.Tag()), display.WidgetID(c.Type),
					strconv.FormatBool(c.Submittable()), strconv.FormatBool(c.Searchable), sort,
				})
			}
			return printOutput(cmd, specs, []string{"API Name", "Display", "Type", "Widget", "Submit", "Search", "Sort"}, rows)
		},
	}
	cmd.Flags().StringVar(&file, "file", "columns.yaml", "definition file")
	return cmd
}

func newColumnsCheckCmd() *cobra.Command {
	var file, col, raw string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a value against a column",
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, _, err := readTable(file)
			if err != nil {
				return err
			}
			c, ok := tbl.Column(col)
			if !ok {
				return fmt.Errorf("%w: %s", column.ErrUnknownColumn, col)
			}
			if err := validate.Column(c, parseValue(c.Type, raw)); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "columns.yaml", "definition file")
	cmd.Flags().StringVar(&col, "column", "", "column api name")
	cmd.Flags().StringVar(&raw, "value", "", "candidate value (JSON for non-text columns)")
	mustFlag(cmd, "column")
	return cmd
}

// parseValue reads raw as JSON unless the column holds text.
func parseValue(t column.ValueType, raw string) any {
	switch t.(type) {
	case column.String, column.Textarea:
		return raw
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return raw
	}
	return v
}

func newColumnsDiffCmd() *cobra.Command {
	var fail bool
	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Show the difference between two definition files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var data [2][]byte
			for i, f := range args {
				_, b, err := readTable(f)
				if err != nil {
					return err
				}
				data[i] = b
			}
			d := codec.UnifiedDiff(data[0], data[1], args[0], args[1])
			if d == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No changes.")
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), d)
			if fail {
				exitFunc(2)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fail, "fail-on-change", false, "exit 2 if the files differ")
	return cmd
}

func newColumnsScaffoldCmd() *cobra.Command {
	var (
		srcs   []string
		name   string
		merge  string
		output string
	)
	cmd := &cobra.Command{
		Use:   "scaffold",
		Short: "Generate a definition file from Go structs with crud tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := generator.ScaffoldOptions{Srcs: srcs, Struct: name}
			if merge != "" {
				b, err := os.ReadFile(filepath.Clean(merge)) // #nosec G304 -- file path cleaned
				if err != nil && !errors.Is(err, os.ErrNotExist) {
					return err
				}
				opts.Merge, opts.Existing = true, b
			}
			out, err := generator.ScaffoldYAML(opts)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			return os.WriteFile(filepath.Clean(output), out, 0o644)
		},
	}
	cmd.Flags().StringSliceVar(&srcs, "src", nil, "Go source globs")
	cmd.Flags().StringVar(&name, "struct", "", "struct name (default: first tagged struct)")
	cmd.Flags().StringVar(&merge, "merge", "", "existing definition file to merge with")
	cmd.Flags().StringVarP(&output, "out", "o", "", "output file (default stdout)")
	mustFlag(cmd, "src")
	return cmd
}

// mustFlag marks a flag as required and panics on error.
func mustFlag(cmd *cobra.Command, name string) {
	cobra.CheckErr(cmd.MarkFlagRequired(name))
}
