package normalizer

import (
	"testing"
	"time"

	"github.com/StadtLandNetz/sln-notion-room-booking/internal/records"
)

func record(id, start, end string) records.Record {
	return records.Record{
		ID:   id,
		Room: &records.Select{ID: "room-1", Name: "Aquarium"},
		Slot: &records.DateRange{Start: start, End: end},
	}
}

func TestNormalize_ValidRecord(t *testing.T) {
	raw := []records.Record{
		{
			ID:       "rec-1",
			Room:     &records.Select{ID: "room-1", Name: "Aquarium"},
			Slot:     &records.DateRange{Start: "2026-03-02T09:00:00+01:00", End: "2026-03-02T10:00:00+01:00"},
			People:   []records.Person{{Name: "Alice"}, {Name: "  "}, {Name: "Bob"}},
			Duration: &records.Formula{String: "1 hr"},
			Title:    []records.RichText{{PlainText: "Weekly "}, {PlainText: "Sync"}},
		},
	}

	windows := Normalize(raw)
	if len(windows) != 1 {
		t.Fatalf("expected 1 window, got %d", len(windows))
	}

	w := windows[0]
	if w.ID != "rec-1" {
		t.Errorf("expected ID rec-1, got %s", w.ID)
	}
	if w.Room != "Aquarium" || w.RoomID != "room-1" {
		t.Errorf("unexpected room mapping: %q / %q", w.Room, w.RoomID)
	}
	if len(w.Occupants) != 2 || w.Occupants[0] != "Alice" || w.Occupants[1] != "Bob" {
		t.Errorf("expected blank occupants dropped, got %v", w.Occupants)
	}
	if w.DurationText != "1 hr" {
		t.Errorf("expected duration text preserved, got %q", w.DurationText)
	}
	if w.Label != "Weekly Sync" {
		t.Errorf("expected concatenated trimmed title, got %q", w.Label)
	}
	if !w.To.After(w.From) {
		t.Errorf("expected From < To, got %v / %v", w.From, w.To)
	}
}

func TestNormalize_ExcludesMalformedRecords(t *testing.T) {
	tests := []struct {
		name string
		rec  records.Record
	}{
		{
			name: "missing slot",
			rec:  records.Record{ID: "r1", Room: &records.Select{Name: "A"}},
		},
		{
			name: "missing end",
			rec:  record("r2", "2026-03-02T09:00:00+01:00", ""),
		},
		{
			name: "missing start",
			rec:  record("r3", "", "2026-03-02T10:00:00+01:00"),
		},
		{
			name: "unparseable start",
			rec:  record("r4", "not-a-date", "2026-03-02T10:00:00+01:00"),
		},
		{
			name: "zero length interval",
			rec:  record("r5", "2026-03-02T09:00:00+01:00", "2026-03-02T09:00:00+01:00"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows := Normalize([]records.Record{tt.rec})
			if len(windows) != 0 {
				t.Errorf("expected record to be excluded, got %d windows", len(windows))
			}
		})
	}
}

func TestNormalize_MissingRoomKept(t *testing.T) {
	raw := []records.Record{
		{
			ID:   "rec-1",
			Slot: &records.DateRange{Start: "2026-03-02T09:00:00+01:00", End: "2026-03-02T09:30:00+01:00"},
		},
	}

	windows := Normalize(raw)
	if len(windows) != 1 {
		t.Fatalf("expected window without room to survive, got %d", len(windows))
	}
	if windows[0].Room != "" || windows[0].RoomID != "" {
		t.Errorf("expected empty room fields, got %q / %q", windows[0].Room, windows[0].RoomID)
	}
}

func TestNormalize_DateOnlyBounds(t *testing.T) {
	raw := []records.Record{record("rec-1", "2026-03-02", "2026-03-03")}

	windows := Normalize(raw)
	if len(windows) != 1 {
		t.Fatalf("expected date-only bounds to parse, got %d windows", len(windows))
	}

	wantFrom := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)
	if !windows[0].From.Equal(wantFrom) {
		t.Errorf("expected local midnight %v, got %v", wantFrom, windows[0].From)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	raw := []records.Record{
		record("a", "2026-03-02T09:00:00+01:00", "2026-03-02T10:00:00+01:00"),
		record("b", "2026-03-02T11:00:00+01:00", "2026-03-02T12:00:00+01:00"),
	}

	first := Normalize(raw)
	second := Normalize(raw)
	if len(first) != len(second) {
		t.Fatalf("expected identical output length, got %d / %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID || !first[i].From.Equal(second[i].From) {
			t.Errorf("expected identical output at %d", i)
		}
	}
}
