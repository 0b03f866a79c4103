// Package timeutil formats durations for the scheduling displays.
package timeutil

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// FormatMinutes renders a minute count the way the room panels expect:
// below an hour as "45 min", above as hours rounded to the nearest
// quarter with unicode fraction glyphs ("1½ hrs").
func FormatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}

	quarters := math.Round(float64(minutes) / 15.0)
	wholeHours := int(quarters) / 4

	var b strings.Builder
	if wholeHours > 0 {
		fmt.Fprintf(&b, "%d", wholeHours)
	}
	switch int(quarters) % 4 {
	case 1:
		b.WriteString("¼")
	case 2:
		b.WriteString("½")
	case 3:
		b.WriteString("¾")
	}
	b.WriteString(" hrs")
	return b.String()
}

// FormatTimeDifference renders the span between two instants.
func FormatTimeDifference(from, to time.Time) string {
	return FormatMinutes(int(to.Sub(from) / time.Minute))
}

// FormatRemaining renders the time left until end, floored at zero.
func FormatRemaining(end, now time.Time) string {
	minutes := int(end.Sub(now) / time.Minute)
	return FormatMinutes(max(0, minutes))
}

// FormatUntil renders the time until start, floored at zero.
func FormatUntil(start, now time.Time) string {
	minutes := int(start.Sub(now) / time.Minute)
	return FormatMinutes(max(0, minutes))
}
