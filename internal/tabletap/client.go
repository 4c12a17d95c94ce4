// Package tabletap is the HTTP client for the external TableTap API.
// Every meaningful computation (availability, conflicts, persistence)
// lives on the other side of these calls.
package tabletap

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tjaksic234/tabletap/internal/booking"
	"github.com/tjaksic234/tabletap/internal/catalog"
)

const defaultTimeout = 10 * time.Second

// Client talks to one TableTap API deployment. The zero value is not
// usable; construct with New.
type Client struct {
	hc      *http.Client
	baseURL string
	token   string
	log     zerolog.Logger
}

// Option tweaks a Client at construction.
type Option func(*Client)

// WithToken sets the bearer token sent on authenticated calls.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient swaps the underlying transport (tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithLogger attaches a request logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		hc:      &http.Client{Timeout: defaultTimeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithSession returns a copy of the client bound to a different token.
func (c *Client) WithSession(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

// RejectionError is a non-success answer to a structurally valid request:
// the service refused it (slot taken, table gone, token expired). Always
// recoverable; the caller keeps the draft and may retry.
type RejectionError struct {
	Status  int
	Message string
}

func (e *RejectionError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("reservation service rejected the request: %s (status=%d)", e.Message, e.Status)
	}
	return fmt.Sprintf("reservation service rejected the request (status=%d)", e.Status)
}

// Session is what a successful login yields.
type Session struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return Session{}, err
	}
	status, respBody, err := c.do(ctx, http.MethodPost, "/auth/login", body, "")
	if err != nil {
		return Session{}, fmt.Errorf("login: %w", err)
	}
	if status < 200 || status >= 300 {
		return Session{}, rejection(status, respBody)
	}
	var s Session
	if err := json.Unmarshal(respBody, &s); err != nil {
		return Session{}, fmt.Errorf("login: decode response: %w", err)
	}
	if s.Email == "" {
		s.Email = email
	}
	return s, nil
}

// Restaurants fetches the full unfiltered listing.
func (c *Client) Restaurants(ctx context.Context) ([]catalog.Restaurant, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/restaurants", nil, "")
	if err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, rejection(status, body)
	}
	var out []catalog.Restaurant
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("list restaurants: decode response: %w", err)
	}
	return out, nil
}

// Restaurant fetches one restaurant by id.
func (c *Client) Restaurant(ctx context.Context, id string) (catalog.Restaurant, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/restaurants/"+id, nil, "")
	if err != nil {
		return catalog.Restaurant{}, fmt.Errorf("get restaurant: %w", err)
	}
	if status < 200 || status >= 300 {
		return catalog.Restaurant{}, rejection(status, body)
	}
	var out catalog.Restaurant
	if err := json.Unmarshal(body, &out); err != nil {
		return catalog.Restaurant{}, fmt.Errorf("get restaurant: decode response: %w", err)
	}
	return out, nil
}

type tableDTO struct {
	ID        string `json:"id"`
	MinGuests int    `json:"minGuests"`
	MaxGuests int    `json:"maxGuests"`
}

// Tables fetches the reservable tables of a restaurant.
func (c *Client) Tables(ctx context.Context, restaurantID string) ([]booking.Table, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/tables/"+restaurantID, nil, "")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	if status < 200 || status >= 300 {
		return nil, rejection(status, body)
	}
	var dtos []tableDTO
	if err := json.Unmarshal(body, &dtos); err != nil {
		return nil, fmt.Errorf("list tables: decode response: %w", err)
	}
	out := make([]booking.Table, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, booking.Table{
			ID:           d.ID,
			RestaurantID: restaurantID,
			MinGuests:    d.MinGuests,
			MaxGuests:    d.MaxGuests,
		})
	}
	return out, nil
}

type reservationPayload struct {
	Email        string `json:"email"`
	RestaurantID string `json:"restaurantID"`
	TableID      string `json:"tableID"`
	NumOfGuests  int    `json:"numOfGuests"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
}

// CreateReservation submits a validated request. The idempotency key, if
// set, rides along so the server can dedupe a forced double submission.
// A non-success status comes back as *RejectionError; transport failures
// pass through for the caller to treat the same way.
func (c *Client) CreateReservation(ctx context.Context, req booking.Request, idempotencyKey string) error {
	payload := reservationPayload{
		Email:        req.Email,
		RestaurantID: req.RestaurantID,
		TableID:      req.TableID,
		NumOfGuests:  req.Guests,
		StartTime:    req.Start.Format(time.RFC3339),
		EndTime:      req.End.Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	status, respBody, err := c.do(ctx, http.MethodPost, "/reservations/create", body, idempotencyKey)
	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}
	if status < 200 || status >= 300 {
		return rejection(status, respBody)
	}
	c.log.Info().
		Str("restaurant_id", req.RestaurantID).
		Str("table_id", req.TableID).
		Int("guests", req.Guests).
		Time("start", req.Start).
		Msg("reservation confirmed")
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, idempotencyKey string) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, err
	}
	c.log.Debug().Str("method", method).Str("path", path).Int("status", res.StatusCode).Msg("api call")
	return res.StatusCode, b, nil
}

// rejection pulls the service's message field out when it sends one.
func rejection(status int, body []byte) error {
	var r struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &r)
	msg := r.Message
	if msg == "" {
		msg = r.Error
	}
	return &RejectionError{Status: status, Message: msg}
}
