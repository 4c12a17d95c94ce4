package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tjaksic234/tabletap/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var userID int64

	c := &cobra.Command{
		Use:   "history",
		Short: "List locally recorded reservations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := context.Background()

			d, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer d.Close()

			list, err := history.NewRepo(d).ListByUser(ctx, userID)
			if err != nil {
				return err
			}
			for _, r := range list {
				fmt.Fprintf(os.Stdout, "id=%d restaurant=%s table=%s guests=%d %s - %s\n",
					r.ID, r.RestaurantID, r.TableID, r.Guests,
					r.Start.Format("2006-01-02 15:04"), r.End.Format("15:04"))
			}
			return nil
		},
	}

	c.Flags().Int64Var(&userID, "user-id", 0, "local user id")
	_ = c.MarkFlagRequired("user-id")
	return c
}
