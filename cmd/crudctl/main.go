package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/faciam-dev/crudkit/internal/logger"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "crudctl",
		Short:         "Work with CRUD column definitions and the admin backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("api-url", "", "API base URL (e.g. https://host/api/)")
	root.PersistentFlags().String("origin", "", "site origin; the API is assumed at <origin>/api/")
	root.PersistentFlags().String("profile", "", "Profile name in config (overrides active)")
	root.PersistentFlags().String("output", "table", "Output format (table|json)")

	root.AddCommand(newLoginCmd())
	root.AddCommand(newLogoutCmd())
	root.AddCommand(newStatusCmd())
	root.AddCommand(newSettingsCmd())
	root.AddCommand(newColumnsCmd())
	root.AddCommand(newConfigCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.L.Error("crudctl", "err", err)
		os.Exit(1)
	}
}
