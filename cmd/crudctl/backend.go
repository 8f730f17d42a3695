package main

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/faciam-dev/crudkit/internal/logger"
	"github.com/faciam-dev/crudkit/pkg/config"
	"github.com/faciam-dev/crudkit/sdk/client"
	"github.com/faciam-dev/crudkit/sdk/session"
)

// backend bundles what the session commands need.
type backend struct {
	res config.Resolved
	gw  *client.HTTP
	mgr *session.Manager
	log *zap.SugaredLogger
}

func newBackend(cmd *cobra.Command) (*backend, error) {
	res, err := config.Resolve(cmd)
	if err != nil {
		return nil, err
	}
	logger.Set(logger.New(cmd.ErrOrStderr(), res.Env.LogLevel, res.Env.LogFormat))
	zl, err := zapLogger(cmd.ErrOrStderr(), res.Env.LogLevel)
	if err != nil {
		return nil, err
	}
	gw := client.NewHTTP(res.APIURL, client.WithUserAgent("crudctl"))
	gw.SetCookies(config.Profile{Cookies: res.Cookies}.HTTPCookies())
	mgr := session.NewManager(gw, session.WithLogger(zl))
	return &backend{res: res, gw: gw, mgr: mgr, log: zl}, nil
}

func zapLogger(w io.Writer, level string) (*zap.SugaredLogger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.AddSync(w), lvl)
	return zap.New(core).Sugar(), nil
}

// saveSession stores the jar's cookies in the resolved profile and makes it
// active.
func (b *backend) saveSession() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cp := cfg.Profiles[b.res.Profile]
	cp.Name = b.res.Profile
	cp.APIURL = b.res.APIURL
	if b.res.Origin != "" {
		cp.Origin = b.res.Origin
	}
	cp.SetCookies(b.gw.Cookies())
	cfg.Profiles[b.res.Profile] = cp
	cfg.Active = b.res.Profile
	return config.Save(cfg)
}
