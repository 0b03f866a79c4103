package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/StadtLandNetz/sln-notion-room-booking/internal/booking/service"
	httputil "github.com/StadtLandNetz/sln-notion-room-booking/pkg/http"
	"github.com/StadtLandNetz/sln-notion-room-booking/pkg/logger"
	"github.com/StadtLandNetz/sln-notion-room-booking/pkg/model"
	"github.com/StadtLandNetz/sln-notion-room-booking/pkg/timeutil"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
	now     func() time.Time
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
		now:     time.Now,
	}
}

// windowView decorates a window with advisory display strings for the
// room panels.
type windowView struct {
	model.BookingWindow
	Remaining string `json:"remaining,omitempty"`
	StartsIn  string `json:"startsIn,omitempty"`
}

func (h *BookingHandler) currentViews(windows []model.BookingWindow) []windowView {
	now := h.now()
	views := make([]windowView, 0, len(windows))
	for _, w := range windows {
		views = append(views, windowView{
			BookingWindow: w,
			Remaining:     timeutil.FormatRemaining(w.To, now),
		})
	}
	return views
}

func (h *BookingHandler) upcomingViews(windows []model.BookingWindow) []windowView {
	now := h.now()
	views := make([]windowView, 0, len(windows))
	for _, w := range windows {
		views = append(views, windowView{
			BookingWindow: w,
			StartsIn:      timeutil.FormatUntil(w.From, now),
		})
	}
	return views
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "error", writeErr)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	windows, err := h.service.GetAll(r.Context())
	if err != nil {
		h.writeError(w, "GetAll", err)
		return
	}
	if err := httputil.WriteSuccess(w, windows); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAll", "error", err)
	}
}

func (h *BookingHandler) GetCurrent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	windows, err := h.service.GetCurrent(r.Context(), "")
	if err != nil {
		h.writeError(w, "GetCurrent", err)
		return
	}
	if err := httputil.WriteSuccess(w, h.currentViews(windows)); err != nil {
		h.log.Error("failed to write success response", "handler", "GetCurrent", "error", err)
	}
}

func (h *BookingHandler) GetUpcoming(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	windows, err := h.service.GetUpcoming(r.Context(), "")
	if err != nil {
		h.writeError(w, "GetUpcoming", err)
		return
	}
	if err := httputil.WriteSuccess(w, h.upcomingViews(windows)); err != nil {
		h.log.Error("failed to write success response", "handler", "GetUpcoming", "error", err)
	}
}

func (h *BookingHandler) GetRooms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	rooms, err := h.service.GetRooms(r.Context())
	if err != nil {
		h.writeError(w, "GetRooms", err)
		return
	}
	if err := httputil.WriteSuccess(w, rooms); err != nil {
		h.log.Error("failed to write success response", "handler", "GetRooms", "error", err)
	}
}

func (h *BookingHandler) GetRoomWindows(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomKey := ps.ByName("room")

	all, err := h.service.GetAll(r.Context())
	if err != nil {
		h.writeError(w, "GetRoomWindows", err)
		return
	}
	filtered, err := h.service.GetRoomWindows(r.Context(), roomKey)
	if err != nil {
		h.writeError(w, "GetRoomWindows", err)
		return
	}
	if err := httputil.WriteRoomItems(w, all, filtered); err != nil {
		h.log.Error("failed to write room items response", "handler", "GetRoomWindows", "error", err)
	}
}

func (h *BookingHandler) GetRoomCurrent(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	windows, err := h.service.GetCurrent(r.Context(), ps.ByName("room"))
	if err != nil {
		h.writeError(w, "GetRoomCurrent", err)
		return
	}
	if err := httputil.WriteSuccess(w, h.currentViews(windows)); err != nil {
		h.log.Error("failed to write success response", "handler", "GetRoomCurrent", "error", err)
	}
}

func (h *BookingHandler) GetRoomUpcoming(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	windows, err := h.service.GetUpcoming(r.Context(), ps.ByName("room"))
	if err != nil {
		h.writeError(w, "GetRoomUpcoming", err)
		return
	}
	if err := httputil.WriteSuccess(w, h.upcomingViews(windows)); err != nil {
		h.log.Error("failed to write success response", "handler", "GetRoomUpcoming", "error", err)
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var window model.BookingWindow
	if err := json.NewDecoder(r.Body).Decode(&window); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "error", writeErr)
		}
		return
	}

	created, err := h.service.Create(r.Context(), &window)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}
	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *BookingHandler) QuickBook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var quick model.QuickBooking
	if err := json.NewDecoder(r.Body).Decode(&quick); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "QuickBook", "error", writeErr)
		}
		return
	}

	created, err := h.service.QuickBook(r.Context(), ps.ByName("room"), &quick)
	if err != nil {
		h.writeError(w, "QuickBook", err)
		return
	}
	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "QuickBook", "error", err)
	}
}

func (h *BookingHandler) EndMeeting(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var end model.EndMeeting
	if err := json.NewDecoder(r.Body).Decode(&end); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "EndMeeting", "error", writeErr)
		}
		return
	}

	if err := h.service.EndMeeting(r.Context(), &end); err != nil {
		h.writeError(w, "EndMeeting", err)
		return
	}
	if err := httputil.WriteMessage(w, "Meeting ended successfully"); err != nil {
		h.log.Error("failed to write message response", "handler", "EndMeeting", "error", err)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/bookings", h.GetAll)
	router.GET("/api/v1/bookings/current", h.GetCurrent)
	router.GET("/api/v1/bookings/upcoming", h.GetUpcoming)
	router.POST("/api/v1/bookings", h.Create)
	router.POST("/api/v1/bookings/end", h.EndMeeting)

	router.GET("/api/v1/rooms", h.GetRooms)
	router.GET("/api/v1/rooms/:room", h.GetRoomWindows)
	router.GET("/api/v1/rooms/:room/current", h.GetRoomCurrent)
	router.GET("/api/v1/rooms/:room/upcoming", h.GetRoomUpcoming)
	router.POST("/api/v1/rooms/:room/quickbook", h.QuickBook)
}
