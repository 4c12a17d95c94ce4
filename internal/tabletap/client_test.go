package tabletap

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjaksic234/tabletap/internal/booking"
)

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "john@doe.com", creds["email"])
		assert.Equal(t, "johndoe123", creds["password"])

		json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
	}))
	defer srv.Close()

	sess, err := New(srv.URL).Login(context.Background(), "john@doe.com", "johndoe123")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", sess.Token)
	// Server omitted the email; the client falls back to the one it sent.
	assert.Equal(t, "john@doe.com", sess.Email)
}

func TestLoginRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "bad credentials"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).Login(context.Background(), "john@doe.com", "wrong")
	var rej *RejectionError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, http.StatusUnauthorized, rej.Status)
	assert.Equal(t, "bad credentials", rej.Message)
}

func TestTables(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/tables/r1", r.URL.Path)
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"id":"t1","minGuests":2,"maxGuests":4},{"id":"t2","minGuests":4,"maxGuests":8}]`))
	}))
	defer srv.Close()

	tables, err := New(srv.URL, WithToken("tok-1")).Tables(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, []booking.Table{
		{ID: "t1", RestaurantID: "r1", MinGuests: 2, MaxGuests: 4},
		{ID: "t2", RestaurantID: "r1", MinGuests: 4, MaxGuests: 8},
	}, tables)
}

func TestCreateReservation(t *testing.T) {
	zone := time.FixedZone("TEST", 2*60*60)
	start := time.Date(2025, time.March, 11, 18, 0, 0, 0, zone)
	req := booking.Request{
		RestaurantID: "r1",
		TableID:      "t1",
		Guests:       3,
		Start:        start,
		End:          start.Add(2 * time.Hour),
		Email:        "a@b.com",
	}

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/reservations/create", r.URL.Path)
		require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		require.Equal(t, "key-123", r.Header.Get("Idempotency-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("tok-1"))
	require.NoError(t, c.CreateReservation(context.Background(), req, "key-123"))

	assert.Equal(t, map[string]any{
		"email":        "a@b.com",
		"restaurantID": "r1",
		"tableID":      "t1",
		"numOfGuests":  float64(3),
		"startTime":    "2025-03-11T18:00:00+02:00",
		"endTime":      "2025-03-11T20:00:00+02:00",
	}, got)
}

func TestCreateReservationRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "table already reserved"})
	}))
	defer srv.Close()

	err := New(srv.URL).CreateReservation(context.Background(), booking.Request{}, "")
	var rej *RejectionError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, http.StatusConflict, rej.Status)
	assert.Equal(t, "table already reserved", rej.Message)
}

func TestTransportErrorIsNotRejection(t *testing.T) {
	// Point at a server that is already gone.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := New(srv.URL).CreateReservation(context.Background(), booking.Request{}, "")
	require.Error(t, err)
	var rej *RejectionError
	assert.False(t, errors.As(err, &rej))
}

func TestWithSessionDoesNotMutateBase(t *testing.T) {
	base := New("http://api.example", WithToken("base"))
	bound := base.WithSession("other")

	assert.Equal(t, "base", base.token)
	assert.Equal(t, "other", bound.token)
	assert.Equal(t, base.baseURL, bound.baseURL)
}
