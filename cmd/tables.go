package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newTablesCmd() *cobra.Command {
	var (
		userID       int64
		restaurantID string
	)

	c := &cobra.Command{
		Use:   "tables",
		Short: "List a restaurant's tables and their capacity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			ctx := context.Background()

			client, _, err := apiClient(ctx, cfg, log, userID)
			if err != nil {
				return err
			}
			tables, err := client.Tables(ctx, restaurantID)
			if err != nil {
				return err
			}
			for _, t := range tables {
				fmt.Fprintf(os.Stdout, "id=%s guests=%d-%d\n", t.ID, t.MinGuests, t.MaxGuests)
			}
			return nil
		},
	}

	c.Flags().Int64Var(&userID, "user-id", 0, "local user id (for the stored session)")
	c.Flags().StringVar(&restaurantID, "restaurant-id", "", "restaurant id")
	_ = c.MarkFlagRequired("restaurant-id")
	return c
}
