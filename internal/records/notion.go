package records

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/StadtLandNetz/sln-notion-room-booking/pkg/client"
	"github.com/StadtLandNetz/sln-notion-room-booking/pkg/logger"
)

const notionVersion = "2022-06-28"

// Property names of the booking database.
const (
	propRoom     = "Room"
	propSlot     = "Slot"
	propPerson   = "Person"
	propDuration = "Duration"
	propTitle    = "Title"
)

// NotionStore reads and writes booking rows through the Notion API.
type NotionStore struct {
	client     *client.HttpClient
	databaseID string
	log        *logger.Logger
}

func NewNotionStore(baseURL, token, databaseID string, log *logger.Logger) *NotionStore {
	return &NotionStore{
		client: client.NewHttpClient(baseURL, map[string]string{
			"Authorization":  "Bearer " + token,
			"Notion-Version": notionVersion,
		}),
		databaseID: databaseID,
		log:        log,
	}
}

// --- wire shapes ---

type notionSelect struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type notionDate struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type notionPerson struct {
	Name string `json:"name"`
}

type notionFormula struct {
	Type   string `json:"type"`
	String string `json:"string"`
}

type notionRichText struct {
	PlainText string `json:"plain_text"`
}

type notionProperty struct {
	Type    string           `json:"type"`
	Select  *notionSelect    `json:"select"`
	Date    *notionDate      `json:"date"`
	People  []notionPerson   `json:"people"`
	Formula *notionFormula   `json:"formula"`
	Title   []notionRichText `json:"title"`
}

type notionPage struct {
	Object     string                    `json:"object"`
	ID         string                    `json:"id"`
	Properties map[string]notionProperty `json:"properties"`
}

type notionQueryResponse struct {
	Results    []notionPage `json:"results"`
	HasMore    bool         `json:"has_more"`
	NextCursor string       `json:"next_cursor"`
}

type notionError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// decodePage maps the loosely-typed property bag onto the strict Record
// shape. Properties of an unexpected kind decode to nil rather than
// failing the whole page.
func decodePage(page notionPage) Record {
	rec := Record{ID: page.ID}

	if p, ok := page.Properties[propRoom]; ok && p.Type == "select" && p.Select != nil {
		rec.Room = &Select{ID: p.Select.ID, Name: p.Select.Name}
	}
	if p, ok := page.Properties[propSlot]; ok && p.Type == "date" && p.Date != nil {
		rec.Slot = &DateRange{Start: p.Date.Start, End: p.Date.End}
	}
	if p, ok := page.Properties[propPerson]; ok && p.Type == "people" {
		for _, person := range p.People {
			rec.People = append(rec.People, Person{Name: person.Name})
		}
	}
	if p, ok := page.Properties[propDuration]; ok && p.Type == "formula" && p.Formula != nil {
		if p.Formula.Type == "string" {
			rec.Duration = &Formula{String: p.Formula.String}
		}
	}
	if p, ok := page.Properties[propTitle]; ok && p.Type == "title" {
		for _, fragment := range p.Title {
			rec.Title = append(rec.Title, RichText{PlainText: fragment.PlainText})
		}
	}

	return rec
}

func (s *NotionStore) Query(ctx context.Context, q Query) (*Page, error) {
	body := map[string]any{
		"sorts": []map[string]string{
			{"property": propSlot, "direction": "ascending"},
		},
	}
	if q.PageSize > 0 {
		body["page_size"] = q.PageSize
	}
	if q.StartCursor != "" {
		body["start_cursor"] = q.StartCursor
	}
	if filter := buildNotionFilter(q.Filter); filter != nil {
		body["filter"] = filter
	}

	resp, err := s.client.POST(ctx, fmt.Sprintf("/v1/databases/%s/query", s.databaseID), body)
	if err != nil {
		return nil, fmt.Errorf("notion query failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, notionStatusError("query", resp)
	}

	var decoded notionQueryResponse
	if err := resp.DecodeJSON(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode notion query response: %w", err)
	}

	page := &Page{
		HasMore:    decoded.HasMore,
		NextCursor: decoded.NextCursor,
	}
	for _, result := range decoded.Results {
		if result.Object != "page" {
			continue
		}
		page.Records = append(page.Records, decodePage(result))
	}

	return page, nil
}

func buildNotionFilter(f Filter) any {
	var conditions []map[string]any

	if f.RoomLabel != "" {
		conditions = append(conditions, map[string]any{
			"property": propRoom,
			"select":   map[string]string{"equals": f.RoomLabel},
		})
	}
	if f.StartOnOrAfter != nil {
		conditions = append(conditions, map[string]any{
			"property": propSlot,
			"date":     map[string]string{"on_or_after": f.StartOnOrAfter.Format(time.RFC3339)},
		})
	}
	if f.StartOnOrBefore != nil {
		conditions = append(conditions, map[string]any{
			"property": propSlot,
			"date":     map[string]string{"on_or_before": f.StartOnOrBefore.Format(time.RFC3339)},
		})
	}

	switch len(conditions) {
	case 0:
		return nil
	case 1:
		return conditions[0]
	default:
		return map[string]any{"and": conditions}
	}
}

func (s *NotionStore) Create(ctx context.Context, rec NewRecord) (*Record, error) {
	// People references need upstream user ids, which the booking flow
	// does not have; occupants are only decoded on the read path.
	body := map[string]any{
		"parent": map[string]string{"database_id": s.databaseID},
		"properties": map[string]any{
			propRoom: map[string]any{
				"select": map[string]string{"name": rec.RoomLabel},
			},
			propSlot: map[string]any{
				"date": notionDate{
					Start: rec.Start.Format(time.RFC3339),
					End:   rec.End.Format(time.RFC3339),
				},
			},
			propTitle: map[string]any{
				"title": []map[string]any{
					{"text": map[string]string{"content": rec.Title}},
				},
			},
		},
	}

	resp, err := s.client.POST(ctx, "/v1/pages", body)
	if err != nil {
		return nil, fmt.Errorf("notion create failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, notionStatusError("create", resp)
	}

	var page notionPage
	if err := resp.DecodeJSON(&page); err != nil {
		return nil, fmt.Errorf("failed to decode notion create response: %w", err)
	}
	created := decodePage(page)
	return &created, nil
}

func (s *NotionStore) UpdateSlot(ctx context.Context, id string, start, end time.Time) (*Record, error) {
	body := map[string]any{
		"properties": map[string]any{
			propSlot: map[string]any{
				"date": notionDate{
					Start: start.Format(time.RFC3339),
					End:   end.Format(time.RFC3339),
				},
			},
		},
	}

	resp, err := s.client.PATCH(ctx, "/v1/pages/"+id, body)
	if err != nil {
		return nil, fmt.Errorf("notion update failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, notionStatusError("update", resp)
	}

	var page notionPage
	if err := resp.DecodeJSON(&page); err != nil {
		return nil, fmt.Errorf("failed to decode notion update response: %w", err)
	}
	updated := decodePage(page)
	return &updated, nil
}

func (s *NotionStore) Ping(ctx context.Context) error {
	resp, err := s.client.GET(ctx, "/v1/databases/"+s.databaseID)
	if err != nil {
		return fmt.Errorf("notion ping failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return notionStatusError("ping", resp)
	}
	return nil
}

func notionStatusError(op string, resp *client.Response) error {
	var apiErr notionError
	if err := resp.DecodeJSON(&apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("notion %s returned %d: %s", op, resp.StatusCode, apiErr.Message)
	}
	return fmt.Errorf("notion %s returned %d", op, resp.StatusCode)
}
