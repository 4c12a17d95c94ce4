// Package history keeps a local record of reservations the API has
// confirmed. The service remains the source of truth; this exists so the
// CLI and dashboard can show past bookings without another round trip.
package history

import (
	"context"
	"time"

	"github.com/tjaksic234/tabletap/internal/booking"
	"github.com/tjaksic234/tabletap/internal/db"
)

// Reservation is one confirmed booking.
type Reservation struct {
	ID             int64
	UserID         int64
	RestaurantID   string
	RestaurantName string
	TableID        string
	Guests         int
	Start          time.Time
	End            time.Time
	Email          string
	IdempotencyKey string
	CreatedAt      time.Time
}

// FromRequest copies a confirmed request into a history row.
func FromRequest(userID int64, restaurantName string, req booking.Request, idempotencyKey string) Reservation {
	return Reservation{
		UserID:         userID,
		RestaurantID:   req.RestaurantID,
		RestaurantName: restaurantName,
		TableID:        req.TableID,
		Guests:         req.Guests,
		Start:          req.Start,
		End:            req.End,
		Email:          req.Email,
		IdempotencyKey: idempotencyKey,
	}
}

type Repo struct {
	db *db.DB
}

func NewRepo(d *db.DB) *Repo { return &Repo{db: d} }

func (r *Repo) Create(ctx context.Context, res Reservation) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
INSERT INTO reservations(user_id,restaurant_id,restaurant_name,table_id,guests,start_at,end_at,email,idempotency_key)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
RETURNING id`,
		res.UserID, res.RestaurantID, res.RestaurantName, res.TableID,
		res.Guests, res.Start, res.End, res.Email, res.IdempotencyKey,
	).Scan(&id)
	return id, db.WrapNotFound(err)
}

func (r *Repo) ListByUser(ctx context.Context, userID int64) ([]Reservation, error) {
	rows, err := r.db.Query(ctx, `
SELECT id,user_id,restaurant_id,restaurant_name,table_id,guests,start_at,end_at,email,idempotency_key,created_at
FROM reservations
WHERE user_id=$1
ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Reservation
	for rows.Next() {
		var res Reservation
		if err := rows.Scan(
			&res.ID, &res.UserID, &res.RestaurantID, &res.RestaurantName, &res.TableID,
			&res.Guests, &res.Start, &res.End, &res.Email, &res.IdempotencyKey, &res.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}
