package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tjaksic234/tabletap/internal/catalog"
)

func newRestaurantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restaurants",
		Short: "Browse the restaurant catalog",
	}
	cmd.AddCommand(newRestaurantsListCmd())
	cmd.AddCommand(newRestaurantsShowCmd())
	return cmd
}

func newRestaurantsListCmd() *cobra.Command {
	var (
		userID   int64
		search   string
		cuisines []string
		sortBy   string
	)

	c := &cobra.Command{
		Use:   "list",
		Short: "List restaurants, filtered and sorted locally",
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
			all, err := client.Restaurants(ctx)
			if err != nil {
				return err
			}

			filter := catalog.Filter{Query: search}
			for _, raw := range cuisines {
				c, ok := catalog.ParseCuisine(raw)
				if !ok {
					return fmt.Errorf("unknown cuisine %q (known: %v)", raw, catalog.Cuisines())
				}
				filter.Cuisines = append(filter.Cuisines, c)
			}

			for _, r := range catalog.Apply(all, filter, catalog.SortOrder(sortBy)) {
				tags := make([]string, 0, len(r.CuisineTypes))
				for _, t := range r.CuisineTypes {
					tags = append(tags, string(t))
				}
				fmt.Fprintf(os.Stdout, "id=%s name=%q cuisine=%s\n", r.ID, r.Name, strings.Join(tags, ","))
			}
			return nil
		},
	}

	c.Flags().Int64Var(&userID, "user-id", 0, "local user id (for the stored session)")
	c.Flags().StringVar(&search, "search", "", "match against name and description")
	c.Flags().StringSliceVar(&cuisines, "cuisine", nil, "keep restaurants with any of these cuisines")
	c.Flags().StringVar(&sortBy, "sort", "name", "sort order: name or newest")
	return c
}

func newRestaurantsShowCmd() *cobra.Command {
	var userID int64

	c := &cobra.Command{
		Use:   "show <restaurant-id>",
		Short: "Show one restaurant",
		Args:  cobra.ExactArgs(1),
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
			r, err := client.Restaurant(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "id=%s\nname=%s\ndescription=%s\ncuisine=%v\ncreated=%s\n",
				r.ID, r.Name, r.Description, r.CuisineTypes, r.CreatedAt.Format("2006-01-02"))
			return nil
		},
	}

	c.Flags().Int64Var(&userID, "user-id", 0, "local user id (for the stored session)")
	return c
}
