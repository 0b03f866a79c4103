package http

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/StadtLandNetz/sln-notion-room-booking/pkg/errors"
)

// Envelope shapes consumed by the scheduling UI.

type SuccessResponse struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

type RoomItemsResponse struct {
	Success       bool `json:"success"`
	AllItems      any  `json:"allItems,omitempty"`
	FilteredItems any  `json:"filteredItems"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Success bool           `json:"success"`
	Error   string         `json:"error"`
	Details map[string]any `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

func WriteSuccess(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Success: true, Data: data})
}

func WriteCreated(w http.ResponseWriter, data any) error {
	return WriteJSON(w, http.StatusCreated, SuccessResponse{Success: true, Data: data})
}

func WriteMessage(w http.ResponseWriter, message string) error {
	return WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: message})
}

func WriteRoomItems(w http.ResponseWriter, allItems, filteredItems any) error {
	return WriteJSON(w, http.StatusOK, RoomItemsResponse{
		Success:       true,
		AllItems:      allItems,
		FilteredItems: filteredItems,
	})
}

func WriteError(w http.ResponseWriter, err error) error {
	appErr := apperrors.AsAppError(err)

	statusCode := appErr.HTTPStatus
	if statusCode == 0 {
		statusCode = http.StatusInternalServerError
	}

	return WriteJSON(w, statusCode, ErrorResponse{
		Success: false,
		Error:   appErr.Message,
		Details: appErr.Details,
	})
}
