package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/faciam-dev/crudkit/sdk"
	"github.com/faciam-dev/crudkit/sdk/settings"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "settings", Short: "Read application settings"}
	cmd.AddCommand(newSettingsGetCmd())
	cmd.AddCommand(newSettingsListCmd())
	return cmd
}

// newCache builds the settings cache, backed by Redis when
// CRUD_SETTINGS_REDIS_URL is set.
func (b *backend) newCache() (*settings.Cache, func(), error) {
	opts := []settings.Option{settings.WithLogger(b.log)}
	closeFn := func() {}
	rs, err := settings.OpenRedisStore(b.res.Env.SettingsRedis)
	if err != nil {
		return nil, nil, err
	}
	if rs != nil {
		opts = append(opts, settings.WithStore(rs))
		closeFn = func() { _ = rs.Close() }
	}
	return settings.New(b.gw, opts...), closeFn, nil
}

func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>...",
		Short: "Get settings by key",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBackend(cmd)
			if err != nil {
				return err
			}
			cache, closeFn, err := b.newCache()
			if err != nil {
				return err
			}
			defer closeFn()
			unbind := cache.Bind(b.mgr.Store())
			defer unbind()

			out := make([]sdk.Setting, 0, len(args))
			for _, k := range args {
				s, err := cache.Get(cmd.Context(), k)
				if err != nil {
					return err
				}
				out = append(out, s)
			}
			return printSettings(cmd, out)
		},
	}
}

func newSettingsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBackend(cmd)
			if err != nil {
				return err
			}
			all, err := b.gw.Settings(cmd.Context())
			if err != nil {
				return err
			}
			return printSettings(cmd, all)
		},
	}
}

func printSettings(cmd *cobra.Command, ss []sdk.Setting) error {
	rows := make([][]string, 0, len(ss))
	for _, s := range ss {
		rows = append(rows, []string{s.Key, string(s.Value.Type), settingText(s.Value), s.LongName})
	}
	return printOutput(cmd, ss, []string{"Key", "Type", "Value", "Name"}, rows)
}

func settingText(v sdk.SettingValue) string {
	if ss, ok := v.Strings(); ok {
		return strings.Join(ss, ", ")
	}
	s := fmt.Sprint(v.Data)
	if v.Type == sdk.SettingImageBase64URI && len(s) > 40 {
		s = s[:37] + "..."
	}
	return s
}
