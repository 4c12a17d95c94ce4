// Package booking turns raw reservation form input into a well-formed
// request for the TableTap API, or a typed validation error. It owns no
// I/O: availability and conflict detection stay with the remote service.
package booking

import "time"

// Table is a reservable unit at a restaurant, read-only to this package.
// MinGuests <= MaxGuests always holds for tables returned by the API.
type Table struct {
	ID           string
	RestaurantID string
	MinGuests    int
	MaxGuests    int
}

// Slot is one of the fixed start times offered for a reservation.
// The zero value means "not selected yet".
type Slot string

const (
	Slot1700 Slot = "17:00"
	Slot1730 Slot = "17:30"
	Slot1800 Slot = "18:00"
	Slot1830 Slot = "18:30"
	Slot1900 Slot = "19:00"
	Slot1930 Slot = "19:30"
	Slot2000 Slot = "20:00"
)

var slotClocks = map[Slot][2]int{
	Slot1700: {17, 0},
	Slot1730: {17, 30},
	Slot1800: {18, 0},
	Slot1830: {18, 30},
	Slot1900: {19, 0},
	Slot1930: {19, 30},
	Slot2000: {20, 0},
}

// Slots returns the offered start times in display order.
func Slots() []Slot {
	return []Slot{Slot1700, Slot1730, Slot1800, Slot1830, Slot1900, Slot1930, Slot2000}
}

// Valid reports whether s is one of the offered start times. Values from
// outside the set behave exactly like an unselected slot; the builder does
// not trust callers to only pass listed values.
func (s Slot) Valid() bool {
	_, ok := slotClocks[s]
	return ok
}

// Clock returns the hour and minute of the slot. Only meaningful when
// Valid() is true.
func (s Slot) Clock() (hour, minute int) {
	c := slotClocks[s]
	return c[0], c[1]
}

// Duration is the reservation length in whole hours.
type Duration int

const (
	TwoHours   Duration = 2
	ThreeHours Duration = 3
	FourHours  Duration = 4

	DefaultDuration = TwoHours
)

// Durations returns the allowed reservation lengths.
func Durations() []Duration {
	return []Duration{TwoHours, ThreeHours, FourHours}
}

func (d Duration) Valid() bool {
	return d == TwoHours || d == ThreeHours || d == FourHours
}

// Draft is the in-progress set of user-chosen field values before
// submission. It is a plain value: every edit returns a new Draft, so a
// failed submission can never corrupt what the user typed.
type Draft struct {
	// Date is the selected calendar day, nil until chosen. Only the
	// year/month/day are meaningful.
	Date *time.Time

	// Start is the selected start slot, empty until chosen.
	Start Slot

	Duration Duration

	// Guests is the selected party size. Zero means "never set" and
	// resolves to the table's minimum at build time.
	Guests int

	// Email receives the confirmation.
	Email string
}

// NewDraft seeds a draft the way the reserve page opens: two hours,
// guest count at the table's minimum, email from the current session.
func NewDraft(t Table, sessionEmail string) Draft {
	return Draft{
		Duration: DefaultDuration,
		Guests:   t.MinGuests,
		Email:    sessionEmail,
	}
}

func (d Draft) WithDate(day time.Time) Draft {
	d.Date = &day
	return d
}

func (d Draft) WithStart(s Slot) Draft {
	d.Start = s
	return d
}

func (d Draft) WithDuration(h Duration) Draft {
	d.Duration = h
	return d
}

func (d Draft) WithGuests(n int) Draft {
	d.Guests = n
	return d
}

func (d Draft) WithEmail(email string) Draft {
	d.Email = email
	return d
}

// Request is a fully validated reservation submission. Only Build
// produces one; End is always Start plus the chosen duration.
type Request struct {
	RestaurantID string
	TableID      string
	Guests       int
	Start        time.Time
	End          time.Time
	Email        string
}
