package handler

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/StadtLandNetz/sln-notion-room-booking/internal/records"
	httputil "github.com/StadtLandNetz/sln-notion-room-booking/pkg/http"
	"github.com/StadtLandNetz/sln-notion-room-booking/pkg/logger"
)

type HealthHandler struct {
	store records.Store
	log   *logger.Logger
}

func NewHealthHandler(store records.Store, log *logger.Logger) *HealthHandler {
	return &HealthHandler{store: store, log: log}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		h.log.Error("failed to write health response", "error", err)
	}
}

// Ready reports readiness only when the records backend answers.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.log.Warn("readiness probe failed", "error", err)
		if writeErr := httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
		}); writeErr != nil {
			h.log.Error("failed to write readiness response", "error", writeErr)
		}
		return
	}
	if err := httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"}); err != nil {
		h.log.Error("failed to write readiness response", "error", err)
	}
}

func (h *HealthHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
}
