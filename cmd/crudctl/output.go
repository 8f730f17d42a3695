package main

import (
	"encoding/json"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// printOutput writes v as JSON when --output=json, otherwise as a table of
// rows under header.
func printOutput(cmd *cobra.Command, v any, header []string, rows [][]string) error {
	format, err := cmd.Root().PersistentFlags().GetString("output")
	if err != nil {
		return err
	}
	switch format {
	case "json":
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
	case "table", "":
		tw := tablewriter.NewWriter(cmd.OutOrStdout())
		tw.SetHeader(header)
		tw.SetAutoWrapText(false)
		tw.AppendBulk(rows)
		tw.Render()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
	return nil
}
