package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tjaksic234/tabletap/internal/auth"
	"github.com/tjaksic234/tabletap/internal/history"
	"github.com/tjaksic234/tabletap/internal/tabletap"
	"github.com/tjaksic234/tabletap/internal/web"
)

func newServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Run the web gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			d, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Ping(ctx); err != nil {
				return fmt.Errorf("db ping: %w", err)
			}

			hashKey, blockKey, err := cfg.CookieKeys()
			if err != nil {
				return err
			}
			vault, err := newVault(cfg, d)
			if err != nil {
				return err
			}

			srv := &web.Server{
				Auth:     auth.NewStore(d, hashKey, blockKey),
				Vault:    vault,
				History:  history.NewRepo(d),
				API:      tabletap.New(cfg.APIURL, tabletap.WithLogger(log)),
				Log:      log,
				DevMode:  cfg.DevMode,
				DevToken: cfg.APIToken,
			}
			return web.Start(ctx, cfg.HTTPAddr, srv.Routes(), log)
		},
	}
}
