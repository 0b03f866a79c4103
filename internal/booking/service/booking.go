package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/StadtLandNetz/sln-notion-room-booking/internal/booking/cache"
	bookingerrors "github.com/StadtLandNetz/sln-notion-room-booking/internal/booking/errors"
	"github.com/StadtLandNetz/sln-notion-room-booking/internal/booking/schedule"
	"github.com/StadtLandNetz/sln-notion-room-booking/internal/booking/validator"
	"github.com/StadtLandNetz/sln-notion-room-booking/internal/records"
	apperrors "github.com/StadtLandNetz/sln-notion-room-booking/pkg/errors"
	"github.com/StadtLandNetz/sln-notion-room-booking/pkg/kafka"
	"github.com/StadtLandNetz/sln-notion-room-booking/pkg/logger"
	"github.com/StadtLandNetz/sln-notion-room-booking/pkg/model"
)

const (
	// QuickBookLeadTime pads an immediate quick booking so the slot does
	// not start in the past by the time it is persisted.
	QuickBookLeadTime = 2 * time.Minute

	EventBookingCreated = "booking.created"
	EventMeetingEnded   = "meeting.ended"
)

// EventPublisher publishes booking lifecycle events. A nil publisher
// disables eventing.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type BookingService interface {
	GetAll(ctx context.Context) ([]model.BookingWindow, error)
	GetRooms(ctx context.Context) ([]model.Room, error)
	GetRoomWindows(ctx context.Context, roomKey string) ([]model.BookingWindow, error)
	// GetCurrent and GetUpcoming evaluate the classifier; an empty
	// roomKey selects the global view.
	GetCurrent(ctx context.Context, roomKey string) ([]model.BookingWindow, error)
	GetUpcoming(ctx context.Context, roomKey string) ([]model.BookingWindow, error)
	Create(ctx context.Context, window *model.BookingWindow) (*model.BookingWindow, error)
	QuickBook(ctx context.Context, roomKey string, quick *model.QuickBooking) (*model.BookingWindow, error)
	EndMeeting(ctx context.Context, end *model.EndMeeting) error
}

type bookingService struct {
	cache     *cache.Cache
	store     records.Store
	validator *validator.BookingValidator
	events    EventPublisher
	log       *logger.Logger
	now       func() time.Time
}

func NewBookingService(
	windowCache *cache.Cache,
	store records.Store,
	bookingValidator *validator.BookingValidator,
	events EventPublisher,
	log *logger.Logger,
) BookingService {
	return &bookingService{
		cache:     windowCache,
		store:     store,
		validator: bookingValidator,
		events:    events,
		log:       log,
		now:       time.Now,
	}
}

func (s *bookingService) GetAll(ctx context.Context) ([]model.BookingWindow, error) {
	windows, err := s.cache.GetAll(ctx)
	if err != nil {
		return nil, apperrors.Upstream("Failed to fetch bookings", err)
	}
	return windows, nil
}

func (s *bookingService) GetRooms(ctx context.Context) ([]model.Room, error) {
	windows, err := s.cache.GetAll(ctx)
	if err != nil {
		return nil, apperrors.Upstream("Failed to fetch bookings", err)
	}
	return schedule.DedupeRooms(windows), nil
}

func (s *bookingService) GetRoomWindows(ctx context.Context, roomKey string) ([]model.BookingWindow, error) {
	return s.roomWindows(ctx, roomKey)
}

func (s *bookingService) GetCurrent(ctx context.Context, roomKey string) ([]model.BookingWindow, error) {
	windows, err := s.windows(ctx, roomKey)
	if err != nil {
		return nil, err
	}
	return schedule.SelectCurrent(windows, s.now()), nil
}

func (s *bookingService) GetUpcoming(ctx context.Context, roomKey string) ([]model.BookingWindow, error) {
	windows, err := s.windows(ctx, roomKey)
	if err != nil {
		return nil, err
	}
	return schedule.SelectUpcomingToday(windows, s.now()), nil
}

func (s *bookingService) windows(ctx context.Context, roomKey string) ([]model.BookingWindow, error) {
	if roomKey == "" {
		return s.GetAll(ctx)
	}
	return s.roomWindows(ctx, roomKey)
}

func (s *bookingService) roomWindows(ctx context.Context, roomKey string) ([]model.BookingWindow, error) {
	windows, err := s.cache.GetByRoom(ctx, roomKey)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrRoomNotFound) {
			return nil, apperrors.NotFoundWithKey("Room", roomKey)
		}
		return nil, apperrors.Upstream("Failed to fetch bookings", err)
	}
	return windows, nil
}

// Create validates and persists a new booking window. Validation and the
// overlap gate run before any upstream write; success invalidates the
// global cache since room resolution for the new record is not
// guaranteed cached.
func (s *bookingService) Create(ctx context.Context, window *model.BookingWindow) (*model.BookingWindow, error) {
	if err := s.validator.Validate(window); err != nil {
		s.log.Warn("Booking validation failed", "error", err)
		return nil, apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.checkAvailability(ctx, window); err != nil {
		return nil, err
	}

	created, err := s.store.Create(ctx, records.NewRecord{
		RoomLabel: window.Room,
		RoomID:    window.RoomID,
		Start:     window.From,
		End:       window.To,
		Title:     window.Label,
		Occupants: window.Occupants,
	})
	if err != nil {
		s.log.Error("Failed to create booking", "room", window.Room, "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.cache.Invalidate()

	persisted := *window
	persisted.ID = created.ID
	if created.Duration != nil {
		persisted.DurationText = created.Duration.String
	}

	s.publishEvent(ctx, EventBookingCreated, &persisted)
	s.log.Info("Booking created",
		"id", persisted.ID,
		"room", persisted.Room,
		"room_id", persisted.RoomID,
		"from", persisted.From,
		"to", persisted.To,
	)
	return &persisted, nil
}

// checkAvailability gates a write against the room's current and
// upcoming windows. An unknown room id passes: the record may belong to
// a room that has no bookings inside the fetch horizon yet.
func (s *bookingService) checkAvailability(ctx context.Context, window *model.BookingWindow) error {
	roomWindows, err := s.cache.GetByRoom(ctx, window.RoomID)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrRoomNotFound) {
			return nil
		}
		return apperrors.Upstream("Failed to check availability", err)
	}

	now := s.now()
	current := schedule.SelectCurrent(roomWindows, now)
	upcoming := schedule.SelectUpcomingToday(roomWindows, now)
	if !schedule.IsAvailable(window.From, window.To, current, upcoming) {
		return apperrors.Conflict(fmt.Sprintf(
			"Booking time overlaps with an existing booking in %s", window.Room,
		))
	}
	return nil
}

// QuickBook books a slot of the requested length starting shortly, or
// directly after the current meeting ends.
func (s *bookingService) QuickBook(ctx context.Context, roomKey string, quick *model.QuickBooking) (*model.BookingWindow, error) {
	if err := s.validator.ValidateQuickBooking(quick); err != nil {
		s.log.Warn("Quick booking validation failed", "room_key", roomKey, "error", err)
		return nil, apperrors.Validation("Quick booking validation failed", map[string]any{"error": err.Error()})
	}

	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	room, ok := schedule.ResolveRoom(all, roomKey)
	if !ok {
		return nil, apperrors.NotFoundWithKey("Room", roomKey)
	}

	roomWindows, err := s.roomWindows(ctx, roomKey)
	if err != nil {
		return nil, err
	}

	now := s.now()
	current := schedule.SelectCurrent(roomWindows, now)
	upcoming := schedule.SelectUpcomingToday(roomWindows, now)

	var start time.Time
	if quick.AfterCurrent && len(current) > 0 {
		start = current[0].To
	} else {
		start = now.Add(QuickBookLeadTime)
	}
	end := start.Add(time.Duration(quick.DurationMinutes) * time.Minute)

	// Chaining after the current meeting only needs to clear upcoming
	// windows; the current one ends exactly where the new slot begins.
	gate := current
	if quick.AfterCurrent {
		gate = nil
	}
	if !schedule.IsAvailable(start, end, gate, upcoming) {
		return nil, apperrors.Conflict(fmt.Sprintf(
			"%s is not available for %d minutes", room.Room, quick.DurationMinutes,
		))
	}

	window := &model.BookingWindow{
		Room:      room.Room,
		RoomID:    room.RoomID,
		From:      start,
		To:        end,
		Occupants: []string{"Quick Booking"},
		Label:     quick.Title,
	}
	return s.Create(ctx, window)
}

// EndMeeting shortens an open window to end now. A clock running behind
// the recorded start still yields a strictly positive duration: the end
// instant is floored at one minute past the start.
func (s *bookingService) EndMeeting(ctx context.Context, end *model.EndMeeting) error {
	if err := s.validator.ValidateEndMeeting(end); err != nil {
		s.log.Warn("End meeting validation failed", "error", err)
		return apperrors.InvalidInput("id and startedAt are required")
	}

	endAt := s.now()
	if endAt.Before(end.StartedAt) {
		endAt = end.StartedAt.Add(time.Minute)
	}

	updated, err := s.store.UpdateSlot(ctx, end.ID, end.StartedAt, endAt)
	if err != nil {
		s.log.Error("Failed to end meeting", "id", end.ID, "error", err)
		return apperrors.Internal("Failed to end meeting", err)
	}

	s.cache.Invalidate()

	s.publishEndEvent(ctx, updated, end.StartedAt, endAt)
	s.log.Info("Meeting ended", "id", end.ID, "ended_at", endAt)
	return nil
}

type bookingEvent struct {
	ID     string    `json:"id"`
	Room   string    `json:"room"`
	RoomID string    `json:"roomId"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Label  string    `json:"label,omitempty"`
}

func (s *bookingService) publishEvent(ctx context.Context, eventType string, window *model.BookingWindow) {
	if s.events == nil {
		return
	}

	msg := kafka.NewMessage().
		WithKey(window.RoomID).
		WithEventType(eventType).
		WithSource("room-booking").
		WithValue(bookingEvent{
			ID:     window.ID,
			Room:   window.Room,
			RoomID: window.RoomID,
			From:   window.From,
			To:     window.To,
			Label:  window.Label,
		}).
		Build()

	if err := s.events.Publish(ctx, msg); err != nil {
		// Events are advisory; a publish failure never fails the write.
		s.log.Warn("Failed to publish booking event", "event_type", eventType, "error", err)
	}
}

func (s *bookingService) publishEndEvent(ctx context.Context, updated *records.Record, startedAt, endedAt time.Time) {
	if s.events == nil || updated == nil {
		return
	}

	window := model.BookingWindow{ID: updated.ID, From: startedAt, To: endedAt}
	if updated.Room != nil {
		window.Room = updated.Room.Name
		window.RoomID = updated.Room.ID
	}
	if window.RoomID == "" {
		window.RoomID = updated.ID
	}
	s.publishEvent(ctx, EventMeetingEnded, &window)
}
