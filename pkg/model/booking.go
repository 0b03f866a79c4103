package model

import (
	"time"
)

// BookingWindow is the canonical booking record. RoomID is the durable
// join key across all operations; the Room label is display-only and may
// lag behind a rename upstream.
type BookingWindow struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty"`
	Room         string    `json:"room" bson:"room" validate:"required"`
	RoomID       string    `json:"roomId" bson:"room_id" validate:"required"`
	From         time.Time `json:"from" bson:"from" validate:"required"`
	To           time.Time `json:"to" bson:"to" validate:"required"`
	Occupants    []string  `json:"occupants" bson:"occupants" validate:"omitempty,dive,min=1"`
	Label        string    `json:"label,omitempty" bson:"label,omitempty" validate:"required,min=1,max=200"`
	DurationText string    `json:"durationText,omitempty" bson:"duration_text,omitempty" validate:"omitempty"`
}

// Room is a deduplicated projection of BookingWindow room fields,
// first-seen-wins for the label.
type Room struct {
	Room   string `json:"room"`
	RoomID string `json:"roomId"`
}

// QuickBooking is the request body for the quick-booking flow: a slot of
// DurationMinutes starting shortly, or directly after the current meeting.
type QuickBooking struct {
	DurationMinutes int    `json:"duration" validate:"required,min=5,max=480"`
	Title           string `json:"title" validate:"required,min=1,max=200"`
	AfterCurrent    bool   `json:"afterCurrent"`
}

// EndMeeting is the request body for shortening an open window to end now.
type EndMeeting struct {
	ID        string    `json:"id" validate:"required"`
	StartedAt time.Time `json:"startedAt" validate:"required"`
}
