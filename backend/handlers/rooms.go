// ABOUTME: Handlers for watched rooms and the background image setting
// ABOUTME: Reads and edits the persisted settings store

package handlers

import (
	"net/http"
	"strconv"

	"github.com/markalston/live-lottery/backend/models"
)

func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.settings.Rooms())
}

func (h *Handler) AddRoom(w http.ResponseWriter, r *http.Request) {
	var req models.AddRoomRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := h.settings.AddRoom(req.RoomID); err != nil {
		h.writeServiceError(w, err, "Failed to add room")
		return
	}
	h.writeJSON(w, http.StatusCreated, h.settings.Rooms())
}

func (h *Handler) RemoveRoom(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeError(w, "Room id must be a number", http.StatusBadRequest)
		return
	}
	if err := h.settings.RemoveRoom(id); err != nil {
		h.writeServiceError(w, err, "Failed to remove room")
		return
	}
	h.writeJSON(w, http.StatusOK, h.settings.Rooms())
}

func (h *Handler) GetBackground(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, models.BackgroundRequest{Image: h.settings.BackgroundImage()})
}

func (h *Handler) SetBackground(w http.ResponseWriter, r *http.Request) {
	var req models.BackgroundRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := h.settings.SetBackgroundImage(req.Image); err != nil {
		h.writeServiceError(w, err, "Failed to save background image")
		return
	}
	h.writeJSON(w, http.StatusOK, req)
}
