package records

import (
	"context"
	"errors"
	"fmt"
)

// ErrStaleCursor signals a pagination cursor that repeats or goes empty
// while the store still reports more pages. Continuing would loop, so
// the whole fetch is abandoned.
var ErrStaleCursor = errors.New("inconsistent pagination cursor")

// QueryAll drains a paged query, concatenating results in response order.
// The loop is bounded by the store's own HasMore signal; a cursor that
// repeats while HasMore is still set would loop forever, so it aborts the
// fetch instead.
func QueryAll(ctx context.Context, store Store, q Query) ([]Record, error) {
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}

	var all []Record
	seen := map[string]bool{}

	for {
		page, err := store.Query(ctx, q)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Records...)

		if !page.HasMore {
			return all, nil
		}
		if page.NextCursor == "" || seen[page.NextCursor] {
			return nil, fmt.Errorf("%w: cursor %q after %d records", ErrStaleCursor, page.NextCursor, len(all))
		}
		seen[page.NextCursor] = true
		q.StartCursor = page.NextCursor
	}
}
