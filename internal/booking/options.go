package booking

import "iter"

// GuestOptions yields the selectable party sizes for a table, from
// MinGuests through MaxGuests inclusive. The sequence is lazy and
// restartable, so it can back both the selector and the builder's own
// range check without materializing a slice.
func GuestOptions(t Table) iter.Seq[int] {
	return func(yield func(int) bool) {
		for n := t.MinGuests; n <= t.MaxGuests; n++ {
			if !yield(n) {
				return
			}
		}
	}
}
