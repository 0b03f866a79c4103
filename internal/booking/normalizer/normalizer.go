// Package normalizer converts raw external records into canonical
// booking windows. It is a pure mapping: no clock, no network, identical
// input yields identical output.
package normalizer

import (
	"strings"
	"time"

	"github.com/StadtLandNetz/sln-notion-room-booking/internal/records"
	"github.com/StadtLandNetz/sln-notion-room-booking/pkg/model"
)

// Normalize maps raw records to booking windows. Records without a
// well-formed interval are silently excluded: the upstream data contains
// legitimately-incomplete rows (templates, half-filled entries), so they
// are not worth an error. Records with from == to are excluded as well;
// they are a known upstream data defect and would otherwise distort the
// availability views with zero-length windows.
func Normalize(raw []records.Record) []model.BookingWindow {
	windows := make([]model.BookingWindow, 0, len(raw))

	for _, rec := range raw {
		if rec.Slot == nil {
			continue
		}
		from, ok := parseInstant(rec.Slot.Start)
		if !ok {
			continue
		}
		to, ok := parseInstant(rec.Slot.End)
		if !ok {
			continue
		}
		if from.Equal(to) {
			continue
		}

		window := model.BookingWindow{
			ID:   rec.ID,
			From: from,
			To:   to,
		}
		if rec.Room != nil {
			window.Room = rec.Room.Name
			window.RoomID = rec.Room.ID
		}
		for _, person := range rec.People {
			if name := strings.TrimSpace(person.Name); name != "" {
				window.Occupants = append(window.Occupants, name)
			}
		}
		if rec.Duration != nil {
			window.DurationText = rec.Duration.String
		}
		window.Label = joinTitle(rec.Title)

		windows = append(windows, window)
	}

	return windows
}

func joinTitle(fragments []records.RichText) string {
	if len(fragments) == 0 {
		return ""
	}
	var b strings.Builder
	for _, fragment := range fragments {
		b.WriteString(fragment.PlainText)
	}
	return strings.TrimSpace(b.String())
}

// parseInstant accepts the two upstream date encodings: a full timestamp
// with offset, or a bare calendar date (interpreted in local time).
func parseInstant(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}
