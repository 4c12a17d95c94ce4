package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tjaksic234/tabletap/internal/tabletap"
)

func newLoginCmd() *cobra.Command {
	var (
		userID   int64
		email    string
		password string
	)

	c := &cobra.Command{
		Use:   "login",
		Short: "Sign in against the TableTap API and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			ctx := context.Background()

			client := tabletap.New(cfg.APIURL, tabletap.WithLogger(log))
			sess, err := client.Login(ctx, email, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			d, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			vault, err := newVault(cfg, d)
			if err != nil {
				return err
			}
			if err := vault.Save(ctx, userID, sess.Email, sess.Token); err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "logged in as %s (session stored for user %d)\n", sess.Email, userID)
			return nil
		},
	}

	c.Flags().Int64Var(&userID, "user-id", 0, "local user id the session belongs to")
	c.Flags().StringVar(&email, "email", "", "TableTap account email")
	c.Flags().StringVar(&password, "password", "", "TableTap account password")
	_ = c.MarkFlagRequired("user-id")
	_ = c.MarkFlagRequired("email")
	_ = c.MarkFlagRequired("password")
	return c
}
