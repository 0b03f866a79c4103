// Package cache provides the time-boxed window cache in front of the
// record store. It is an explicit service object with internal locking;
// request handlers share one instance.
package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	bookingerrors "github.com/StadtLandNetz/sln-notion-room-booking/internal/booking/errors"
	"github.com/StadtLandNetz/sln-notion-room-booking/internal/booking/normalizer"
	"github.com/StadtLandNetz/sln-notion-room-booking/internal/booking/schedule"
	"github.com/StadtLandNetz/sln-notion-room-booking/internal/records"
	"github.com/StadtLandNetz/sln-notion-room-booking/pkg/logger"
	"github.com/StadtLandNetz/sln-notion-room-booking/pkg/model"
)

const DefaultTTL = 10 * time.Second

// entry is one populated cache slot. Entries are replaced, never mutated,
// so readers holding a slice from a superseded entry stay consistent.
type entry struct {
	data       []model.BookingWindow
	capturedAt time.Time
}

// call is one in-flight global fetch. Concurrent readers await done and
// share the result instead of issuing duplicate upstream queries.
type call struct {
	done chan struct{}
	data []model.BookingWindow
	err  error
}

type Cache struct {
	store records.Store
	ttl   time.Duration
	log   *logger.Logger
	now   func() time.Time

	mu       sync.Mutex
	global   *entry
	inflight *call
	byRoom   map[string]*entry
}

func New(store records.Store, ttl time.Duration, log *logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		store:  store,
		ttl:    ttl,
		log:    log,
		now:    time.Now,
		byRoom: make(map[string]*entry),
	}
}

func (c *Cache) fresh(e *entry) bool {
	return e != nil && c.now().Sub(e.capturedAt) <= c.ttl
}

// GetAll returns the normalized windows of the bounded fetch horizon,
// from cache when fresh. At most one upstream fetch sequence runs at a
// time; latecomers await its result.
func (c *Cache) GetAll(ctx context.Context) ([]model.BookingWindow, error) {
	c.mu.Lock()
	if c.fresh(c.global) {
		data := c.global.data
		c.mu.Unlock()
		return data, nil
	}
	if fl := c.inflight; fl != nil {
		c.mu.Unlock()
		<-fl.done
		return fl.data, fl.err
	}
	fl := &call{done: make(chan struct{})}
	c.inflight = fl
	c.mu.Unlock()

	data, err := c.fetchAll(ctx)

	c.mu.Lock()
	fl.data, fl.err = data, err
	// Invalidate may have detached this call; only a still-current fetch
	// populates the slot. The marker is cleared even on failure so a
	// broken fetch cannot wedge future attempts.
	if c.inflight == fl {
		if err == nil {
			c.global = &entry{data: data, capturedAt: c.now()}
		}
		c.inflight = nil
	}
	c.mu.Unlock()
	close(fl.done)

	return data, err
}

// fetchAll pages through the upstream horizon query and normalizes the
// result. The horizon spans one calendar day either side of now, which
// bounds upstream I/O to the rows any view can ever show.
func (c *Cache) fetchAll(ctx context.Context) ([]model.BookingWindow, error) {
	now := c.now()
	horizonStart := now.AddDate(0, 0, -1)
	horizonEnd := now.AddDate(0, 0, 1)

	raw, err := records.QueryAll(ctx, c.store, records.Query{
		Filter: records.Filter{
			StartOnOrAfter:  &horizonStart,
			StartOnOrBefore: &horizonEnd,
		},
		PageSize: records.DefaultPageSize,
	})
	if err != nil {
		c.log.Error("Upstream fetch failed", "error", err)
		return nil, err
	}

	windows := normalizer.Normalize(raw)
	sort.SliceStable(windows, func(i, j int) bool {
		if windows[i].From.Equal(windows[j].From) {
			return windows[i].To.Before(windows[j].To)
		}
		return windows[i].From.Before(windows[j].From)
	})

	c.log.Debug("Upstream fetch completed", "records", len(raw), "windows", len(windows))
	return windows, nil
}

// GetByRoom returns the windows of one room within the fetch horizon.
// Each room key is its own cache slot; slots are filled under both the
// requested key and the resolved label, so either addressing form hits.
func (c *Cache) GetByRoom(ctx context.Context, roomKey string) ([]model.BookingWindow, error) {
	key := cacheKey(roomKey)

	c.mu.Lock()
	if e := c.byRoom[key]; c.fresh(e) {
		data := e.data
		c.mu.Unlock()
		return data, nil
	}
	c.mu.Unlock()

	windows, room, err := c.fetchRoom(ctx, roomKey)
	if err != nil {
		return nil, err
	}

	e := &entry{data: windows, capturedAt: c.now()}
	c.mu.Lock()
	c.byRoom[key] = e
	if label := cacheKey(room.Room); label != "" && label != key {
		c.byRoom[label] = e
	}
	c.mu.Unlock()

	return windows, nil
}

func (c *Cache) fetchRoom(ctx context.Context, roomKey string) ([]model.BookingWindow, model.Room, error) {
	// The upstream filter only understands the label, so the key is
	// resolved against the (typically cached) global view first.
	all, err := c.GetAll(ctx)
	if err != nil {
		return nil, model.Room{}, err
	}
	room, ok := schedule.ResolveRoom(all, roomKey)
	if !ok {
		return nil, model.Room{}, bookingerrors.ErrRoomNotFound
	}

	raw, err := records.QueryAll(ctx, c.store, records.Query{
		Filter:   records.Filter{RoomLabel: room.Room},
		PageSize: records.DefaultPageSize,
	})
	if err != nil {
		c.log.Error("Upstream room fetch failed", "room", room.Room, "error", err)
		return nil, model.Room{}, err
	}

	// The label query cannot bound slot end dates upstream, so the
	// horizon is applied here: keep windows overlapping [now-1d, now+1d].
	now := c.now()
	horizonStart := now.AddDate(0, 0, -1)
	horizonEnd := now.AddDate(0, 0, 1)

	windows := make([]model.BookingWindow, 0)
	for _, w := range normalizer.Normalize(raw) {
		if !w.To.Before(horizonStart) && !w.From.After(horizonEnd) {
			windows = append(windows, w)
		}
	}

	return windows, room, nil
}

// Invalidate drops cache state. Without arguments it clears the global
// slot, every room slot and the in-flight marker; with keys it clears
// only the slots addressable from those keys (the raw key and any alias
// sharing its entry). Writers call this after every successful mutation.
func (c *Cache) Invalidate(roomKeys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(roomKeys) == 0 {
		c.global = nil
		c.inflight = nil
		c.byRoom = make(map[string]*entry)
		return
	}

	for _, roomKey := range roomKeys {
		key := cacheKey(roomKey)
		e, ok := c.byRoom[key]
		if !ok {
			continue
		}
		for k, v := range c.byRoom {
			if v == e {
				delete(c.byRoom, k)
			}
		}
	}
}

// cacheKey folds room keys so that label lookups are case-insensitive,
// matching the route parameter handling of the UI.
func cacheKey(roomKey string) string {
	return strings.ToLower(strings.TrimSpace(roomKey))
}
