package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/faciam-dev/crudkit/pkg/config"
	"github.com/faciam-dev/crudkit/sdk/session"
)

func newLoginCmd() *cobra.Command {
	var (
		username       string
		nonInteractive bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and save the session into ~/.crudctl/config.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBackend(cmd)
			if err != nil {
				return err
			}
			if username == "" {
				username = b.res.Env.Username
			}
			password := b.res.Env.Password
			if !nonInteractive {
				if username == "" {
					username = prompt(cmd, "Username")
				}
				if password == "" {
					password = promptSecret(cmd, "Password")
				}
			}
			if username == "" || password == "" {
				return errors.New("username and password are required (use flags, CRUD_USERNAME/CRUD_PASSWORD or interactive mode)")
			}

			res, err := b.mgr.Login(cmd.Context(), username, password)
			fmt.Fprintln(cmd.OutOrStdout(), res)
			if err != nil {
				return err
			}
			if err := b.saveSession(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s. Active profile: %s\n", username, b.res.Profile)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "user name")
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "Fail instead of prompting")
	return cmd
}

func prompt(cmd *cobra.Command, label string) string {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", label)
	s, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	return strings.TrimSpace(s)
}

func promptSecret(cmd *cobra.Command, label string) string {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: ", label)
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(cmd, "")
	}
	b, _ := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	return strings.TrimSpace(string(b))
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and forget the saved cookies",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBackend(cmd)
			if err != nil {
				return err
			}
			// The session ends locally even when the backend fails to confirm.
			tr, logoutErr := b.mgr.Logout(cmd.Context())
			cfg, err := config.Load()
			if err != nil {
				return errors.Join(logoutErr, err)
			}
			cp := cfg.Profiles[b.res.Profile]
			cp.Name = b.res.Profile
			cp.SetCookies(nil)
			cfg.Profiles[b.res.Profile] = cp
			if err := config.Save(cfg); err != nil {
				return errors.Join(logoutErr, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", session.StatusNotAuthenticated, tr.Redirect.URL())
			return logoutErr
		},
	}
}

type statusView struct {
	Status      session.Status `json:"status"`
	Username    string         `json:"username,omitempty"`
	Permissions []string       `json:"permissions,omitempty"`
	Redirect    string         `json:"redirect,omitempty"`
}

func newStatusCmd() *cobra.Command {
	var returnTo string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Ask the backend who is signed in",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := newBackend(cmd)
			if err != nil {
				return err
			}
			mgr := session.NewManager(b.gw, session.WithLogger(b.log), session.WithLocation(func() string { return returnTo }))
			tr, rerr := mgr.Refresh(cmd.Context())
			v := statusView{Status: tr.Status}
			if st := mgr.Store().Get(); st.Principal != nil {
				v.Username = st.Principal.Username
				v.Permissions = st.Principal.Permissions
			}
			if tr.Redirect != nil {
				v.Redirect = tr.Redirect.URL()
			}
			if err := printOutput(cmd, v, []string{"Status", "User", "Permissions", "Redirect"}, [][]string{
				{string(v.Status), v.Username, strings.Join(v.Permissions, ","), v.Redirect},
			}); err != nil {
				return err
			}
			// Not being signed in is a normal answer; only report failures to
			// reach or read the backend.
			if errors.Is(rerr, session.ErrNotAuthenticated) {
				return nil
			}
			return rerr
		},
	}
	cmd.Flags().StringVar(&returnTo, "return-to", "/", "path to return to after login")
	return cmd
}
