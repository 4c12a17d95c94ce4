package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// State is where a booking attempt currently sits. The flow is
// Editing -> Submitting -> Confirmed or Failed; Failed goes back to
// Editing with the draft intact so the user can correct and retry.
type State string

const (
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
	StateConfirmed  State = "confirmed"
	StateFailed     State = "failed"
)

var (
	// ErrNotEditing is returned when Submit is called outside Editing,
	// e.g. while a submission is already in flight or after confirmation.
	ErrNotEditing = errors.New("booking: flow is not editing")

	// ErrFlowDone is returned when a confirmed flow is edited.
	ErrFlowDone = errors.New("booking: flow already confirmed")
)

// Submitter delivers a validated request to the reservation service.
// The idempotency key is fixed per draft so that a retry of the same
// draft cannot create a second reservation on a server that honors it.
type Submitter interface {
	CreateReservation(ctx context.Context, req Request, idempotencyKey string) error
}

// Flow owns one draft from the moment the reserve page opens until it is
// confirmed or abandoned. It is not safe for concurrent use; a draft
// belongs to exactly one booking session.
type Flow struct {
	table Table
	draft Draft
	state State
	key   string
	last  error
}

// NewFlow opens a booking flow for a table, pre-seeding the draft.
func NewFlow(t Table, sessionEmail string) *Flow {
	return &Flow{
		table: t,
		draft: NewDraft(t, sessionEmail),
		state: StateEditing,
	}
}

func (f *Flow) State() State { return f.state }
func (f *Flow) Draft() Draft { return f.draft }
func (f *Flow) Table() Table { return f.table }

// LastError is the error from the most recent failed attempt, nil
// otherwise.
func (f *Flow) LastError() error { return f.last }

// Update applies a field edit. Editing a failed flow moves it back to
// Editing; a confirmed flow is terminal.
func (f *Flow) Update(edit func(Draft) Draft) error {
	switch f.state {
	case StateEditing:
	case StateFailed:
		f.state = StateEditing
	case StateConfirmed, StateSubmitting:
		return ErrFlowDone
	}
	f.draft = edit(f.draft)
	return nil
}

// Submit builds the draft exactly once and, if it validates, delivers it.
// A validation failure never leaves Editing. A rejected or undeliverable
// submission parks the flow in Failed; the draft survives for correction.
func (f *Flow) Submit(ctx context.Context, now time.Time, s Submitter) (Request, error) {
	if f.state != StateEditing {
		return Request{}, ErrNotEditing
	}

	req, err := Build(f.draft, f.table, now)
	if err != nil {
		f.last = err
		return Request{}, err
	}

	f.state = StateSubmitting
	if f.key == "" {
		f.key = uuid.NewString()
	}

	if err := s.CreateReservation(ctx, req, f.key); err != nil {
		f.state = StateFailed
		f.last = err
		return Request{}, err
	}

	f.state = StateConfirmed
	f.last = nil
	return req, nil
}

// IdempotencyKey is the key attached to this draft's submissions, empty
// until the first attempt reaches the network.
func (f *Flow) IdempotencyKey() string { return f.key }
