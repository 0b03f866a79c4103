package records

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/StadtLandNetz/sln-notion-room-booking/pkg/logger"
)

func notionTestLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.FormatText,
		Service: "notion-test",
	})
}

const queryResponse = `{
	"results": [
		{
			"object": "page",
			"id": "page-1",
			"properties": {
				"Room": {"type": "select", "select": {"id": "room-1", "name": "Aquarium"}},
				"Slot": {"type": "date", "date": {"start": "2026-03-02T09:00:00+01:00", "end": "2026-03-02T10:00:00+01:00"}},
				"Person": {"type": "people", "people": [{"name": "Alice"}]},
				"Duration": {"type": "formula", "formula": {"type": "string", "string": "1 hrs"}},
				"Title": {"type": "title", "title": [{"plain_text": "Weekly Sync"}]}
			}
		},
		{
			"object": "page",
			"id": "page-2",
			"properties": {
				"Room": {"type": "number"},
				"Slot": {"type": "date", "date": null},
				"Duration": {"type": "formula", "formula": {"type": "number"}}
			}
		}
	],
	"has_more": true,
	"next_cursor": "cursor-1"
}`

func TestNotionStore_Query(t *testing.T) {
	var gotBody map[string]any
	var gotAuth, gotVersion string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/databases/db-1/query" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("Notion-Version")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(queryResponse)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer server.Close()

	store := NewNotionStore(server.URL, "secret-token", "db-1", notionTestLogger())

	after := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	before := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	page, err := store.Query(context.Background(), Query{
		Filter:   Filter{StartOnOrAfter: &after, StartOnOrBefore: &before},
		PageSize: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer secret-token" {
		t.Errorf("expected bearer auth header, got %q", gotAuth)
	}
	if gotVersion != notionVersion {
		t.Errorf("expected version header %q, got %q", notionVersion, gotVersion)
	}
	if gotBody["page_size"] != float64(50) {
		t.Errorf("expected page_size 50, got %v", gotBody["page_size"])
	}
	if _, ok := gotBody["filter"].(map[string]any)["and"]; !ok {
		t.Errorf("expected two date conditions joined with and, got %v", gotBody["filter"])
	}

	if !page.HasMore || page.NextCursor != "cursor-1" {
		t.Errorf("expected pagination fields carried through, got %+v", page)
	}
	if len(page.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(page.Records))
	}

	full := page.Records[0]
	if full.Room == nil || full.Room.ID != "room-1" || full.Room.Name != "Aquarium" {
		t.Errorf("unexpected room decode: %+v", full.Room)
	}
	if full.Slot == nil || full.Slot.Start != "2026-03-02T09:00:00+01:00" {
		t.Errorf("unexpected slot decode: %+v", full.Slot)
	}
	if len(full.People) != 1 || full.People[0].Name != "Alice" {
		t.Errorf("unexpected people decode: %+v", full.People)
	}
	if full.Duration == nil || full.Duration.String != "1 hrs" {
		t.Errorf("unexpected duration decode: %+v", full.Duration)
	}
	if len(full.Title) != 1 || full.Title[0].PlainText != "Weekly Sync" {
		t.Errorf("unexpected title decode: %+v", full.Title)
	}

	// Mismatched property kinds decode to nil, not an error.
	sparse := page.Records[1]
	if sparse.Room != nil || sparse.Slot != nil || sparse.Duration != nil {
		t.Errorf("expected mismatched properties to decode to nil, got %+v", sparse)
	}
}

func TestNotionStore_QuerySingleFilterCondition(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"results": [], "has_more": false}`)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer server.Close()

	store := NewNotionStore(server.URL, "secret-token", "db-1", notionTestLogger())
	if _, err := store.Query(context.Background(), Query{Filter: Filter{RoomLabel: "Aquarium"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	filter, ok := gotBody["filter"].(map[string]any)
	if !ok {
		t.Fatalf("expected filter in request body, got %v", gotBody)
	}
	if _, hasAnd := filter["and"]; hasAnd {
		t.Errorf("expected a single bare condition, got %v", filter)
	}
	if filter["property"] != "Room" {
		t.Errorf("expected Room condition, got %v", filter)
	}
}

func TestNotionStore_QueryErrorSurfacesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		if _, err := w.Write([]byte(`{"code": "validation_error", "message": "bad filter"}`)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer server.Close()

	store := NewNotionStore(server.URL, "secret-token", "db-1", notionTestLogger())
	_, err := store.Query(context.Background(), Query{})
	if err == nil {
		t.Fatalf("expected error for 400 response")
	}
}

func TestNotionStore_Create(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/pages" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{
			"object": "page",
			"id": "created-1",
			"properties": {
				"Duration": {"type": "formula", "formula": {"type": "string", "string": "½ hrs"}}
			}
		}`)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer server.Close()

	store := NewNotionStore(server.URL, "secret-token", "db-1", notionTestLogger())

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	created, err := store.Create(context.Background(), NewRecord{
		RoomLabel: "Aquarium",
		RoomID:    "room-1",
		Start:     start,
		End:       start.Add(30 * time.Minute),
		Title:     "Standup",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "created-1" {
		t.Errorf("expected created id decoded, got %q", created.ID)
	}
	if created.Duration == nil || created.Duration.String != "½ hrs" {
		t.Errorf("expected duration formula decoded, got %+v", created.Duration)
	}

	parent, ok := gotBody["parent"].(map[string]any)
	if !ok || parent["database_id"] != "db-1" {
		t.Errorf("expected parent database id, got %v", gotBody["parent"])
	}
}

func TestNotionStore_UpdateSlot(t *testing.T) {
	var gotPath, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"object": "page", "id": "page-1", "properties": {}}`)); err != nil {
			t.Errorf("failed to write response: %v", err)
		}
	}))
	defer server.Close()

	store := NewNotionStore(server.URL, "secret-token", "db-1", notionTestLogger())

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	updated, err := store.UpdateSlot(context.Background(), "page-1", start, start.Add(time.Minute))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotMethod != http.MethodPatch || gotPath != "/v1/pages/page-1" {
		t.Errorf("unexpected request: %s %s", gotMethod, gotPath)
	}
	if updated.ID != "page-1" {
		t.Errorf("expected updated id, got %q", updated.ID)
	}
}
