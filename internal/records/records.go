// Package records wraps the external document store holding the raw
// booking rows. The engine consumes it as a plain "fetch records by
// filter" capability; the two backends (Notion API, MongoDB) hide their
// query mechanics behind the Store interface.
package records

import (
	"context"
	"time"
)

// Select is a decoded select-style property: a display label plus the
// stable option id behind it.
type Select struct {
	ID   string
	Name string
}

// DateRange carries the raw start/end strings of a date property.
// Parsing is deferred to the normalizer so that rows with missing or
// malformed bounds can be excluded there instead of failing the fetch.
type DateRange struct {
	Start string
	End   string
}

// Person is a people-property entry; Name may be empty when the upstream
// user reference carries no display name.
type Person struct {
	Name string
}

// Formula is a decoded formula property result. Only string results are
// consumed here (the precomputed duration text).
type Formula struct {
	String string
}

// RichText is a single rich-text fragment of a title property.
type RichText struct {
	PlainText string
}

// Record is the decoded external row. Each field is the strict decode of
// one property kind; a nil field means the property was absent or of an
// unexpected kind.
type Record struct {
	ID       string
	Room     *Select
	Slot     *DateRange
	People   []Person
	Duration *Formula
	Title    []RichText
}

// Filter narrows a query. The zero value matches everything.
type Filter struct {
	// RoomLabel filters on exact equality of the room select label.
	RoomLabel string
	// StartOnOrAfter / StartOnOrBefore bound the slot start instant.
	// The upstream filter cannot evaluate slot end dates.
	StartOnOrAfter  *time.Time
	StartOnOrBefore *time.Time
}

// Query is one paged read against the store.
type Query struct {
	Filter      Filter
	PageSize    int
	StartCursor string
}

// Page is the result of one Query call. The caller keeps issuing queries
// with NextCursor while HasMore is true.
type Page struct {
	Records    []Record
	HasMore    bool
	NextCursor string
}

// NewRecord is the write shape for booking creation.
type NewRecord struct {
	RoomLabel string
	RoomID    string
	Start     time.Time
	End       time.Time
	Title     string
	Occupants []string
}

// Store is the document-store capability the engine depends on.
type Store interface {
	Query(ctx context.Context, q Query) (*Page, error)
	Create(ctx context.Context, rec NewRecord) (*Record, error)
	// UpdateSlot rewrites the interval bounds of an existing record.
	UpdateSlot(ctx context.Context, id string, start, end time.Time) (*Record, error)
	Ping(ctx context.Context) error
}

const DefaultPageSize = 100
