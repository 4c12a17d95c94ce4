package web

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tjaksic234/tabletap/internal/booking"
)

func TestDraftFromForm(t *testing.T) {
	base := booking.NewDraft(booking.Table{MinGuests: 2, MaxGuests: 4}, "session@b.com")

	d := draftFromForm(base, url.Values{
		"date":     {"2025-03-11"},
		"start":    {"18:30"},
		"duration": {"3"},
		"guests":   {"4"},
		"email":    {"override@b.com"},
	})

	require.NotNil(t, d.Date)
	assert.Equal(t, time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC), *d.Date)
	assert.Equal(t, booking.Slot1830, d.Start)
	assert.Equal(t, booking.ThreeHours, d.Duration)
	assert.Equal(t, 4, d.Guests)
	assert.Equal(t, "override@b.com", d.Email)
}

func TestDraftFromFormKeepsBaseWhenAbsent(t *testing.T) {
	base := booking.NewDraft(booking.Table{MinGuests: 2, MaxGuests: 4}, "session@b.com")

	d := draftFromForm(base, url.Values{})
	assert.Equal(t, base, d)
}

func TestDraftFromFormMalformedValuesStayInvalid(t *testing.T) {
	base := booking.NewDraft(booking.Table{MinGuests: 2, MaxGuests: 4}, "session@b.com")

	d := draftFromForm(base, url.Values{
		"date":     {"11/03/2025"},
		"start":    {"18:15"},
		"duration": {"banana"},
		"guests":   {"many"},
	})

	// Unparseable date never reaches the draft; the rest pass through
	// as-is for the builder to reject.
	assert.Nil(t, d.Date)
	assert.Equal(t, booking.Slot("18:15"), d.Start)
	assert.Equal(t, booking.Duration(0), d.Duration)
	assert.Equal(t, 0, d.Guests)
}

func TestDraftFromFormEmptyEmailClearsSeed(t *testing.T) {
	base := booking.NewDraft(booking.Table{MinGuests: 2, MaxGuests: 4}, "session@b.com")

	// The field was present but blanked out by the user.
	d := draftFromForm(base, url.Values{"email": {""}})
	assert.Equal(t, "", d.Email)
}
