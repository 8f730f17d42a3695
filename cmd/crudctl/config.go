package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/faciam-dev/crudkit/pkg/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Manage crudctl configuration"}
	cmd.AddCommand(newConfigUseCmd())
	cmd.AddCommand(newConfigListCmd())
	cmd.AddCommand(newConfigGetCmd())
	return cmd
}

func newConfigUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use <profile>",
		Short: "Set active profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			prof := args[0]
			if _, ok := cfg.Profiles[prof]; !ok {
				return fmt.Errorf("profile %q not found", prof)
			}
			cfg.Active = prof
			if err := config.Save(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Switched to profile %q\n", prof)
			return nil
		},
	}
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			names := make([]string, 0, len(cfg.Profiles))
			for name := range cfg.Profiles {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				mark := " "
				if name == cfg.Active {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\n", mark, name, cfg.Profiles[name].APIURL)
			}
			return nil
		},
	}
}

type profileView struct {
	Active     string `json:"active"`
	APIURL     string `json:"apiUrl"`
	Origin     string `json:"origin,omitempty"`
	HasSession bool   `json:"hasSession"`
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show active profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			p := cfg.Profiles[cfg.Active]
			v := profileView{Active: cfg.Active, APIURL: p.APIURL, Origin: p.Origin, HasSession: len(p.Cookies) > 0}
			return printOutput(cmd, v, []string{"Active", "API URL", "Origin", "Session"}, [][]string{
				{v.Active, v.APIURL, v.Origin, fmt.Sprint(v.HasSession)},
			})
		},
	}
}
