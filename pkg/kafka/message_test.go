package kafka

import (
	"encoding/json"
	"testing"
)

func TestMessageBuilder(t *testing.T) {
	payload := map[string]string{"room": "Aquarium"}

	msg := NewMessage().
		WithKey("room-1").
		WithEventType("booking.created").
		WithSource("room-booking").
		WithValue(payload).
		Build()

	if msg.Key != "room-1" {
		t.Errorf("expected key room-1, got %q", msg.Key)
	}
	if msg.Headers[HeaderEventType] != "booking.created" {
		t.Errorf("expected event type header, got %q", msg.Headers[HeaderEventType])
	}
	if msg.Headers[HeaderSource] != "room-booking" {
		t.Errorf("expected source header, got %q", msg.Headers[HeaderSource])
	}
	if msg.Headers[HeaderEventID] == "" {
		t.Errorf("expected a generated event id")
	}
	if msg.Timestamp.IsZero() {
		t.Errorf("expected a populated timestamp")
	}

	var decoded map[string]string
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("expected JSON value, got %v", err)
	}
	if decoded["room"] != "Aquarium" {
		t.Errorf("unexpected payload: %v", decoded)
	}
}

func TestMessageBuilder_DistinctEventIDs(t *testing.T) {
	first := NewMessage().WithEventType("booking.created").Build()
	second := NewMessage().WithEventType("booking.created").Build()

	if first.Headers[HeaderEventID] == second.Headers[HeaderEventID] {
		t.Errorf("expected distinct event ids")
	}
}
