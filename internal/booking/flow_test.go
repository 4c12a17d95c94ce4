package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubmitter struct {
	calls []string // idempotency key per call
	reqs  []Request
	err   error
}

func (f *fakeSubmitter) CreateReservation(_ context.Context, req Request, key string) error {
	f.calls = append(f.calls, key)
	f.reqs = append(f.reqs, req)
	return f.err
}

func completeDraft(d Draft) Draft {
	day := now.AddDate(0, 0, 1)
	return d.WithDate(day).WithStart(Slot1800).WithGuests(3)
}

func TestFlowHappyPath(t *testing.T) {
	sub := &fakeSubmitter{}
	flow := NewFlow(table24(), "a@b.com")
	require.Equal(t, StateEditing, flow.State())

	require.NoError(t, flow.Update(completeDraft))

	req, err := flow.Submit(context.Background(), now, sub)
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, flow.State())
	assert.Nil(t, flow.LastError())

	require.Len(t, sub.reqs, 1)
	assert.Equal(t, req, sub.reqs[0])
	assert.Equal(t, flow.IdempotencyKey(), sub.calls[0])
	assert.NotEmpty(t, flow.IdempotencyKey())
}

func TestFlowSeedsDraftFromSession(t *testing.T) {
	flow := NewFlow(table24(), "a@b.com")

	d := flow.Draft()
	assert.Equal(t, "a@b.com", d.Email)
	assert.Equal(t, DefaultDuration, d.Duration)
	assert.Nil(t, d.Date)
}

func TestFlowValidationFailureStaysEditing(t *testing.T) {
	sub := &fakeSubmitter{}
	flow := NewFlow(table24(), "a@b.com")
	// Date never set, so the build fails before anything is sent.

	_, err := flow.Submit(context.Background(), now, sub)
	require.ErrorIs(t, err, ErrMissingDate)
	assert.Equal(t, StateEditing, flow.State())
	assert.Empty(t, sub.calls, "invalid draft must not reach the submitter")
	assert.Empty(t, flow.IdempotencyKey(), "no key until an attempt reaches the network")
	assert.ErrorIs(t, flow.LastError(), ErrMissingDate)
}

func TestFlowRejectionThenRetry(t *testing.T) {
	rejected := errors.New("table no longer available")
	sub := &fakeSubmitter{err: rejected}
	flow := NewFlow(table24(), "a@b.com")
	require.NoError(t, flow.Update(completeDraft))

	_, err := flow.Submit(context.Background(), now, sub)
	require.ErrorIs(t, err, rejected)
	assert.Equal(t, StateFailed, flow.State())
	assert.ErrorIs(t, flow.LastError(), rejected)

	// The draft survives the failure.
	before := flow.Draft()
	require.NoError(t, flow.Update(func(d Draft) Draft { return d }))
	assert.Equal(t, StateEditing, flow.State())
	assert.Equal(t, before, flow.Draft())

	// Retry of the same draft reuses the same idempotency key.
	key := flow.IdempotencyKey()
	require.NotEmpty(t, key)
	sub.err = nil
	_, err = flow.Submit(context.Background(), now, sub)
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, flow.State())
	require.Len(t, sub.calls, 2)
	assert.Equal(t, key, sub.calls[0])
	assert.Equal(t, key, sub.calls[1])
}

func TestFlowTerminalStates(t *testing.T) {
	sub := &fakeSubmitter{}
	flow := NewFlow(table24(), "a@b.com")
	require.NoError(t, flow.Update(completeDraft))

	_, err := flow.Submit(context.Background(), now, sub)
	require.NoError(t, err)

	// Confirmed is terminal: no more edits, no more submits.
	assert.ErrorIs(t, flow.Update(func(d Draft) Draft { return d }), ErrFlowDone)
	_, err = flow.Submit(context.Background(), now, sub)
	assert.ErrorIs(t, err, ErrNotEditing)
	assert.Len(t, sub.calls, 1)
}

func TestFlowSubmitUsesCallerClock(t *testing.T) {
	sub := &fakeSubmitter{}
	flow := NewFlow(table24(), "a@b.com")

	day := time.Date(2025, time.June, 1, 0, 0, 0, 0, testZone)
	require.NoError(t, flow.Update(func(d Draft) Draft {
		return d.WithDate(day).WithStart(Slot1700).WithGuests(2)
	}))

	// Same draft, two different clocks: in range for one, expired for
	// the other.
	_, err := flow.Submit(context.Background(), time.Date(2025, time.June, 2, 12, 0, 0, 0, testZone), sub)
	require.ErrorIs(t, err, ErrDateOutOfWindow)
	assert.Equal(t, StateEditing, flow.State())

	_, err = flow.Submit(context.Background(), time.Date(2025, time.May, 30, 12, 0, 0, 0, testZone), sub)
	require.NoError(t, err)
}
