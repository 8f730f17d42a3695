package config

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/faciam-dev/crudkit/sdk/client"
)

type Resolved struct {
	// APIURL is the API root with a trailing slash.
	APIURL  string
	Origin  string
	Profile string
	Cookies []Cookie
	Env     Env
}

// Resolve picks the API location with precedence flag > env > profile. The
// origin is only used when no API URL is set anywhere.
func Resolve(cmd *cobra.Command) (Resolved, error) {
	flagURL, _ := cmd.Root().PersistentFlags().GetString("api-url")
	flagOrigin, _ := cmd.Root().PersistentFlags().GetString("origin")

	e, err := LoadEnv()
	if err != nil {
		return Resolved{}, err
	}

	cfg, err := Load()
	if err != nil {
		return Resolved{}, err
	}
	prof := firstNonEmpty(e.Profile, cfg.Active)
	if p, _ := cmd.Root().PersistentFlags().GetString("profile"); p != "" {
		prof = p
	}
	cp := cfg.Profiles[prof]

	origin := firstNonEmpty(flagOrigin, e.Origin, cp.Origin)
	base, err := client.ResolveBase(firstNonEmpty(flagURL, e.APIURL, cp.APIURL), origin)
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{
		APIURL:  base,
		Origin:  origin,
		Profile: prof,
		Cookies: cp.Cookies,
		Env:     e,
	}, nil
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
