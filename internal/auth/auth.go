// Package auth owns local user accounts and the web gateway's session
// cookie. In dev mode the gateway verifies credentials against this
// store; in production signin is proxied to the external auth endpoint
// and only the session cookie lives here.
package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/bcrypt"

	"github.com/tjaksic234/tabletap/internal/db"
)

const (
	cookieName    = "tabletap_session"
	sessionMaxAge = 14 * 24 * time.Hour
)

var ErrInvalidCredentials = errors.New("invalid credentials")

var validate = validator.New()

// NewUserInput is what `tabletap user add` collects.
type NewUserInput struct {
	Username string `validate:"required,min=3,max=64"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type Store struct {
	sc *securecookie.SecureCookie
	db *db.DB
}

func NewStore(d *db.DB, hashKey, blockKey []byte) *Store {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(sessionMaxAge.Seconds()))
	return &Store{sc: sc, db: d}
}

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

func (s *Store) CreateUser(ctx context.Context, in NewUserInput) (int64, error) {
	if err := validate.Struct(in); err != nil {
		return 0, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return 0, err
	}
	var id int64
	err = s.db.QueryRow(ctx,
		`INSERT INTO users(username, email, password_bcrypt) VALUES ($1,$2,$3) RETURNING id`,
		in.Username, in.Email, hash).Scan(&id)
	return id, db.WrapNotFound(err)
}

// Authenticate checks a login (username or email) and password against
// the local store.
func (s *Store) Authenticate(ctx context.Context, login, password string) (int64, error) {
	var id int64
	var hash string
	err := s.db.QueryRow(ctx,
		`SELECT id, password_bcrypt FROM users WHERE username=$1 OR email=$1`, login).Scan(&id, &hash)
	if err != nil {
		return 0, db.WrapNotFound(err)
	}
	if !CheckPassword(hash, password) {
		return 0, ErrInvalidCredentials
	}
	return id, nil
}

// UserByEmail resolves the local account matching an upstream email.
func (s *Store) UserByEmail(ctx context.Context, email string) (int64, error) {
	var id int64
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE email=$1`, email).Scan(&id)
	return id, db.WrapNotFound(err)
}

// Session is what the cookie carries: the local user plus the email the
// reserve form pre-seeds its confirmation address from.
type Session struct {
	UserID int64
	Email  string
}

type ctxKey struct{}

func (s *Store) SetSession(w http.ResponseWriter, r *http.Request, sess Session) error {
	val := map[string]any{"uid": sess.UserID, "email": sess.Email, "v": 1}
	encoded, err := s.sc.Encode(cookieName, val)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   int(sessionMaxAge.Seconds()),
	})
	return nil
}

func (s *Store) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

func (s *Store) GetSession(r *http.Request) (Session, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return Session{}, false
	}
	val := map[string]any{}
	if err := s.sc.Decode(cookieName, c.Value, &val); err != nil {
		return Session{}, false
	}
	sess := Session{}
	switch uid := val["uid"].(type) {
	case int64:
		sess.UserID = uid
	case float64:
		sess.UserID = int64(uid)
	}
	if email, ok := val["email"].(string); ok {
		sess.Email = email
	}
	if sess.UserID <= 0 {
		return Session{}, false
	}
	return sess, true
}

// RequireAuth redirects unauthenticated requests to the signin page and
// stashes the session in the request context otherwise.
func (s *Store) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.GetSession(r)
		if !ok {
			http.Redirect(w, r, "/signin", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
	})
}

func SessionFromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(ctxKey{}).(Session)
	return sess, ok
}
