package booking

import (
	"strings"
	"time"
)

// BookingWindowMonths bounds how far ahead a table can be reserved,
// counted in calendar months from the current moment.
const BookingWindowMonths = 2

// Code identifies why a draft failed validation. Codes are stable and
// safe to key UI messages on.
type Code string

const (
	CodeMissingDate          Code = "missing_date"
	CodeMissingTime          Code = "missing_time"
	CodeMissingEmail         Code = "missing_email"
	CodeInvalidEmailFormat   Code = "invalid_email_format"
	CodeGuestCountOutOfRange Code = "guest_count_out_of_range"
	CodeInvalidDuration      Code = "invalid_duration"
	CodeDateOutOfWindow      Code = "date_out_of_booking_window"
)

// ValidationError is a client-side rejection of a draft. It is detected
// before any network call and always recoverable: the caller keeps the
// draft and lets the user correct the named field.
type ValidationError struct {
	Code Code
	msg  string
}

func (e *ValidationError) Error() string { return e.msg }

// Sentinels for errors.Is. Build only ever returns one of these.
var (
	ErrMissingDate          = &ValidationError{CodeMissingDate, "no date selected"}
	ErrMissingTime          = &ValidationError{CodeMissingTime, "no start time selected"}
	ErrMissingEmail         = &ValidationError{CodeMissingEmail, "confirmation email is required"}
	ErrInvalidEmailFormat   = &ValidationError{CodeInvalidEmailFormat, "confirmation email is not a valid address"}
	ErrGuestCountOutOfRange = &ValidationError{CodeGuestCountOutOfRange, "guest count is outside the table's capacity"}
	ErrInvalidDuration      = &ValidationError{CodeInvalidDuration, "duration must be 2, 3 or 4 hours"}
	ErrDateOutOfWindow      = &ValidationError{CodeDateOutOfWindow, "date is outside the booking window"}
)

// Build validates a draft against the table's constraints and assembles
// the immutable request. Pure: now is injected, and identical inputs
// always produce identical results.
//
// Checks run in a fixed order and the first failure wins, so the surfaced
// message is deterministic for any combination of bad fields. The start
// instant is formed in now's location; the booking window is the closed
// interval [now, now + 2 calendar months].
func Build(d Draft, t Table, now time.Time) (Request, error) {
	if d.Date == nil {
		return Request{}, ErrMissingDate
	}
	if !d.Start.Valid() {
		return Request{}, ErrMissingTime
	}
	email := strings.TrimSpace(d.Email)
	if email == "" {
		return Request{}, ErrMissingEmail
	}
	if !validEmail(email) {
		return Request{}, ErrInvalidEmailFormat
	}
	guests := d.Guests
	if guests == 0 {
		guests = t.MinGuests
	}
	if guests < t.MinGuests || guests > t.MaxGuests {
		return Request{}, ErrGuestCountOutOfRange
	}
	if !d.Duration.Valid() {
		return Request{}, ErrInvalidDuration
	}

	hour, minute := d.Start.Clock()
	year, month, day := d.Date.Date()
	start := time.Date(year, month, day, hour, minute, 0, 0, now.Location())
	end := start.Add(time.Duration(d.Duration) * time.Hour)

	if start.Before(now) || start.After(now.AddDate(0, BookingWindowMonths, 0)) {
		return Request{}, ErrDateOutOfWindow
	}

	return Request{
		RestaurantID: t.RestaurantID,
		TableID:      t.ID,
		Guests:       guests,
		Start:        start,
		End:          end,
		Email:        email,
	}, nil
}

// validEmail checks the minimal shape the reservation service expects:
// a non-empty local part, "@", and a domain containing a dot. Anything
// stricter is the service's call, not ours.
func validEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	if strings.IndexByte(s[at+1:], '@') >= 0 {
		return false
	}
	domain := s[at+1:]
	dot := strings.IndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}
