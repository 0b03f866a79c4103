package validator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/StadtLandNetz/sln-notion-room-booking/pkg/logger"
	"github.com/StadtLandNetz/sln-notion-room-booking/pkg/model"
)

func newTestValidator() *BookingValidator {
	return NewBookingValidator(logger.New(logger.Config{
		Level:   "error",
		Format:  logger.FormatText,
		Service: "validator-test",
	}))
}

func validWindow() *model.BookingWindow {
	from := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return &model.BookingWindow{
		Room:   "Aquarium",
		RoomID: "room-1",
		From:   from,
		To:     from.Add(time.Hour),
		Label:  "Planning",
	}
}

func TestValidate_ValidWindow(t *testing.T) {
	if err := newTestValidator().Validate(validWindow()); err != nil {
		t.Fatalf("expected valid window to pass, got %v", err)
	}
}

func TestValidate_MissingFields(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(w *model.BookingWindow)
		wantMsg string
	}{
		{name: "missing room", mutate: func(w *model.BookingWindow) { w.Room = "" }, wantMsg: "Room is required"},
		{name: "missing room id", mutate: func(w *model.BookingWindow) { w.RoomID = "" }, wantMsg: "RoomID is required"},
		{name: "missing from", mutate: func(w *model.BookingWindow) { w.From = time.Time{} }, wantMsg: "From is required"},
		{name: "missing to", mutate: func(w *model.BookingWindow) { w.To = time.Time{} }, wantMsg: "To is required"},
		{name: "missing label", mutate: func(w *model.BookingWindow) { w.Label = "" }, wantMsg: "Label is required"},
	}

	v := newTestValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := validWindow()
			tt.mutate(w)

			err := v.Validate(w)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("expected message containing %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestValidate_FromMustPrecedeTo(t *testing.T) {
	v := newTestValidator()

	w := validWindow()
	w.To = w.From
	err := v.Validate(w)
	if err == nil {
		t.Fatalf("expected error for from == to")
	}

	var validationErrs ValidationErrors
	if !errors.As(err, &validationErrs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	if len(validationErrs) != 1 || validationErrs[0].Message != "from must precede to" {
		t.Errorf("unexpected errors: %v", validationErrs)
	}

	w = validWindow()
	w.To = w.From.Add(-time.Hour)
	if err := v.Validate(w); err == nil {
		t.Errorf("expected error for reversed interval")
	}
}

func TestValidateQuickBooking(t *testing.T) {
	v := newTestValidator()

	valid := &model.QuickBooking{DurationMinutes: 30, Title: "Standup"}
	if err := v.ValidateQuickBooking(valid); err != nil {
		t.Fatalf("expected valid quick booking to pass, got %v", err)
	}

	tests := []struct {
		name  string
		quick model.QuickBooking
	}{
		{name: "too short", quick: model.QuickBooking{DurationMinutes: 4, Title: "Standup"}},
		{name: "too long", quick: model.QuickBooking{DurationMinutes: 481, Title: "Standup"}},
		{name: "missing duration", quick: model.QuickBooking{Title: "Standup"}},
		{name: "missing title", quick: model.QuickBooking{DurationMinutes: 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := v.ValidateQuickBooking(&tt.quick); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestValidateEndMeeting(t *testing.T) {
	v := newTestValidator()

	valid := &model.EndMeeting{ID: "rec-1", StartedAt: time.Now()}
	if err := v.ValidateEndMeeting(valid); err != nil {
		t.Fatalf("expected valid request to pass, got %v", err)
	}

	if err := v.ValidateEndMeeting(&model.EndMeeting{StartedAt: time.Now()}); err == nil {
		t.Errorf("expected error for missing id")
	}
	if err := v.ValidateEndMeeting(&model.EndMeeting{ID: "rec-1"}); err == nil {
		t.Errorf("expected error for missing startedAt")
	}
}
