package schedule

import (
	"time"

	"github.com/StadtLandNetz/sln-notion-room-booking/pkg/model"
)

// Overlaps is the half-open interval intersection test. The inequalities
// are strict so that back-to-back bookings sharing an endpoint do not
// conflict.
func Overlaps(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && end1.After(start2)
}

// IsAvailable reports whether the candidate interval is free of overlap
// with every current and upcoming window. A false result is a normal
// booking conflict, not a fault.
func IsAvailable(from, to time.Time, current, upcoming []model.BookingWindow) bool {
	for _, w := range current {
		if Overlaps(from, to, w.From, w.To) {
			return false
		}
	}
	for _, w := range upcoming {
		if Overlaps(from, to, w.From, w.To) {
			return false
		}
	}
	return true
}
