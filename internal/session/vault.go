// Package session stores each local user's upstream TableTap session.
// The bearer token is sealed with AES-GCM before it touches the database.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/tjaksic234/tabletap/internal/crypto"
	"github.com/tjaksic234/tabletap/internal/db"
)

// Session is a stored upstream login.
type Session struct {
	UserID    int64
	Email     string
	Token     string
	UpdatedAt time.Time
}

type Vault struct {
	db   *db.DB
	aead *crypto.AEAD
}

func NewVault(d *db.DB, aead *crypto.AEAD) *Vault {
	return &Vault{db: d, aead: aead}
}

// Save upserts the user's upstream session.
func (v *Vault) Save(ctx context.Context, userID int64, email, token string) error {
	sealed, err := v.aead.Seal(token)
	if err != nil {
		return err
	}
	return v.db.Exec(ctx, `
INSERT INTO api_sessions(user_id, email, token_enc, updated_at)
VALUES ($1,$2,$3,now())
ON CONFLICT (user_id) DO UPDATE SET email=$2, token_enc=$3, updated_at=now()`,
		userID, email, sealed)
}

// Load returns the user's upstream session with the token opened.
func (v *Vault) Load(ctx context.Context, userID int64) (Session, error) {
	var s Session
	var sealed string
	err := v.db.QueryRow(ctx, `
SELECT user_id, email, token_enc, updated_at FROM api_sessions WHERE user_id=$1`,
		userID).Scan(&s.UserID, &s.Email, &sealed, &s.UpdatedAt)
	if err != nil {
		return Session{}, db.WrapNotFound(err)
	}
	s.Token, err = v.aead.Open(sealed)
	if err != nil {
		return Session{}, fmt.Errorf("open stored token: %w", err)
	}
	return s, nil
}

// Clear drops the user's upstream session.
func (v *Vault) Clear(ctx context.Context, userID int64) error {
	return v.db.Exec(ctx, `DELETE FROM api_sessions WHERE user_id=$1`, userID)
}
