package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tjaksic234/tabletap/internal/booking"
	"github.com/tjaksic234/tabletap/internal/history"
	"github.com/tjaksic234/tabletap/internal/tabletap"
)

func newReserveCmd() *cobra.Command {
	var (
		userID       int64
		restaurantID string
		tableID      string
		date         string
		start        string
		duration     int
		guests       int
		email        string
	)

	c := &cobra.Command{
		Use:   "reserve",
		Short: "Book a table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			ctx := context.Background()

			client, sessionEmail, err := apiClient(ctx, cfg, log, userID)
			if err != nil {
				return err
			}

			tables, err := client.Tables(ctx, restaurantID)
			if err != nil {
				return err
			}
			var table booking.Table
			found := false
			for _, t := range tables {
				if t.ID == tableID {
					table, found = t, true
					break
				}
			}
			if !found {
				return fmt.Errorf("table %s not found at restaurant %s", tableID, restaurantID)
			}

			flow := booking.NewFlow(table, sessionEmail)
			if err := flow.Update(func(d booking.Draft) booking.Draft {
				if date != "" {
					if day, perr := time.Parse("2006-01-02", date); perr == nil {
						d = d.WithDate(day)
					}
				}
				if start != "" {
					d = d.WithStart(booking.Slot(start))
				}
				if cmd.Flags().Changed("duration") {
					d = d.WithDuration(booking.Duration(duration))
				}
				if guests > 0 {
					d = d.WithGuests(guests)
				}
				if email != "" {
					d = d.WithEmail(email)
				}
				return d
			}); err != nil {
				return err
			}

			req, err := flow.Submit(ctx, time.Now(), client)
			if err != nil {
				var verr *booking.ValidationError
				var rej *tabletap.RejectionError
				switch {
				case errors.As(err, &verr):
					return fmt.Errorf("invalid reservation (%s): %s", verr.Code, verr.Error())
				case errors.As(err, &rej):
					return fmt.Errorf("reservation not accepted, try again: %w", rej)
				default:
					return fmt.Errorf("could not reach the reservation service, try again: %w", err)
				}
			}

			// Best effort: a confirmed booking is worth remembering even
			// if the local store is down.
			if d, derr := openStore(ctx, cfg); derr == nil {
				rec := history.FromRequest(userID, "", req, flow.IdempotencyKey())
				if _, herr := history.NewRepo(d).Create(ctx, rec); herr != nil {
					log.Warn().Err(herr).Msg("could not record reservation locally")
				}
				d.Close()
			} else {
				log.Warn().Err(derr).Msg("could not open local store")
			}

			fmt.Fprintf(os.Stdout, "reservation confirmed: table=%s guests=%d %s - %s\n",
				req.TableID, req.Guests,
				req.Start.Format("2006-01-02 15:04"), req.End.Format("15:04"))
			return nil
		},
	}

	c.Flags().Int64Var(&userID, "user-id", 0, "local user id (for the stored session)")
	c.Flags().StringVar(&restaurantID, "restaurant-id", "", "restaurant id")
	c.Flags().StringVar(&tableID, "table-id", "", "table id")
	c.Flags().StringVar(&date, "date", "", "reservation date YYYY-MM-DD")
	c.Flags().StringVar(&start, "time", "", "start time, one of 17:00-20:00 on the half hour")
	c.Flags().IntVar(&duration, "duration", int(booking.DefaultDuration), "duration in hours (2, 3 or 4)")
	c.Flags().IntVar(&guests, "guests", 0, "party size (defaults to the table's minimum)")
	c.Flags().StringVar(&email, "email", "", "confirmation email (defaults to the session's)")
	_ = c.MarkFlagRequired("restaurant-id")
	_ = c.MarkFlagRequired("table-id")
	_ = c.MarkFlagRequired("date")
	_ = c.MarkFlagRequired("time")
	return c
}
