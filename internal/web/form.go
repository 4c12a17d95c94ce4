package web

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tjaksic234/tabletap/internal/booking"
)

const dateLayout = "2006-01-02"

// draftFromForm folds the reserve form's raw values into a draft.
// Nothing here validates; malformed values are passed through in their
// "unset" shape so the builder reports them in its documented order.
func draftFromForm(base booking.Draft, form url.Values) booking.Draft {
	d := base

	if raw := strings.TrimSpace(form.Get("date")); raw != "" {
		if day, err := time.Parse(dateLayout, raw); err == nil {
			d = d.WithDate(day)
		}
	}
	if raw := strings.TrimSpace(form.Get("start")); raw != "" {
		d = d.WithStart(booking.Slot(raw))
	}
	if raw := strings.TrimSpace(form.Get("duration")); raw != "" {
		hours, _ := strconv.Atoi(raw)
		d = d.WithDuration(booking.Duration(hours))
	}
	if raw := strings.TrimSpace(form.Get("guests")); raw != "" {
		guests, _ := strconv.Atoi(raw)
		d = d.WithGuests(guests)
	}
	if form.Has("email") {
		d = d.WithEmail(form.Get("email"))
	}

	return d
}
