// Package schedule holds the pure time-window classification rules. Every
// function takes the evaluation instant as a parameter so behavior at day
// and slack boundaries is testable.
package schedule

import (
	"strings"
	"time"

	"github.com/StadtLandNetz/sln-notion-room-booking/pkg/model"
)

const (
	// CurrentSlack lets a window count as current slightly before its
	// nominal start, so displays flip over smoothly.
	CurrentSlack = 15 * time.Minute

	// UpcomingHorizon bounds the upcoming list to a short lookahead.
	UpcomingHorizon = 12 * time.Hour
)

// ClipOvernight caps each window's end at 00:00 of the calendar day after
// its start, in now's location. A booking is never displayed as spanning
// into a second day; this also defuses pathological multi-day records.
// The input is not mutated and the function is idempotent.
func ClipOvernight(windows []model.BookingWindow, now time.Time) []model.BookingWindow {
	clipped := make([]model.BookingWindow, len(windows))
	copy(clipped, windows)

	loc := now.Location()
	for i := range clipped {
		midnight := midnightAfter(clipped[i].From, loc)
		if !clipped[i].To.Before(midnight) {
			clipped[i].To = midnight
		}
	}
	return clipped
}

func midnightAfter(from time.Time, loc *time.Location) time.Time {
	local := from.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
}

// SelectCurrent returns the windows occupying now, with CurrentSlack of
// forward tolerance on the start bound. Already-ended windows never
// qualify, regardless of slack.
func SelectCurrent(windows []model.BookingWindow, now time.Time) []model.BookingWindow {
	current := make([]model.BookingWindow, 0)
	for _, w := range ClipOvernight(windows, now) {
		if !w.From.After(now.Add(CurrentSlack)) && !now.After(w.To) {
			current = append(current, w)
		}
	}
	return current
}

// SelectUpcomingToday returns windows starting beyond the current slack
// but within the next twelve hours. The lower bound is strictly greater
// than now+CurrentSlack, which keeps this view disjoint from
// SelectCurrent at the same instant.
func SelectUpcomingToday(windows []model.BookingWindow, now time.Time) []model.BookingWindow {
	upcoming := make([]model.BookingWindow, 0)
	for _, w := range windows {
		if w.From.After(now.Add(CurrentSlack)) && !w.From.After(now.Add(UpcomingHorizon)) {
			upcoming = append(upcoming, w)
		}
	}
	return upcoming
}

// FilterByRoom keeps windows whose stable room id matches exactly.
func FilterByRoom(windows []model.BookingWindow, roomID string) []model.BookingWindow {
	filtered := make([]model.BookingWindow, 0)
	for _, w := range windows {
		if w.RoomID == roomID {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

// MatchesRoomKey reports whether a window belongs to the room addressed
// by key. A key is either the stable room id or the current display
// label; labels compare case-insensitively since they come from URLs.
func MatchesRoomKey(w model.BookingWindow, key string) bool {
	return w.RoomID == key || strings.EqualFold(w.Room, key)
}

// FilterByRoomKey keeps windows matching the room key by id or label.
func FilterByRoomKey(windows []model.BookingWindow, key string) []model.BookingWindow {
	filtered := make([]model.BookingWindow, 0)
	for _, w := range windows {
		if MatchesRoomKey(w, key) {
			filtered = append(filtered, w)
		}
	}
	return filtered
}

// DedupeRooms projects windows onto their rooms, first seen wins for the
// label so a renamed room keeps one stable entry per id.
func DedupeRooms(windows []model.BookingWindow) []model.Room {
	rooms := make([]model.Room, 0)
	seen := map[string]bool{}
	for _, w := range windows {
		if w.RoomID == "" || seen[w.RoomID] {
			continue
		}
		seen[w.RoomID] = true
		rooms = append(rooms, model.Room{Room: w.Room, RoomID: w.RoomID})
	}
	return rooms
}

// ResolveRoom finds the room addressed by key among the deduplicated
// rooms of a window collection.
func ResolveRoom(windows []model.BookingWindow, key string) (model.Room, bool) {
	for _, room := range DedupeRooms(windows) {
		if room.RoomID == key || strings.EqualFold(room.Room, key) {
			return room, true
		}
	}
	return model.Room{}, false
}
