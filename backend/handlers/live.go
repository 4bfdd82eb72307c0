// ABOUTME: Handlers for live room connections and lottery collection
// ABOUTME: Connect, start, stop, status, participant count and winner draw

package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/markalston/live-lottery/backend/models"
	"github.com/markalston/live-lottery/backend/services"
)

const connectTimeout = 30 * time.Second

// ConnectLive connects the requested rooms, or the watched rooms when the
// request names none.
func (h *Handler) ConnectLive(w http.ResponseWriter, r *http.Request) {
	var req models.ConnectRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	rooms := req.Rooms
	if len(rooms) == 0 {
		rooms = h.settings.Rooms()
	}

	ctx, cancel := context.WithTimeout(r.Context(), connectTimeout)
	defer cancel()

	if err := h.live.Connect(ctx, rooms); err != nil {
		if errors.Is(err, services.ErrNoRooms) || errors.Is(err, services.ErrConnectInterrupted) {
			h.writeServiceError(w, err, "")
			return
		}
		h.writeJSON(w, http.StatusBadGateway, models.ErrorResponse{
			Error:   "Failed to connect live rooms",
			Details: err.Error(),
			Code:    http.StatusBadGateway,
		})
		return
	}
	h.writeJSON(w, http.StatusOK, map[string][]int64{"rooms": h.live.ConnectedRooms()})
}

func (h *Handler) StartCollection(w http.ResponseWriter, r *http.Request) {
	var req models.StartCollectionRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if err := h.live.Start(req.Keyword); err != nil {
		h.writeServiceError(w, err, "Failed to start collection")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]bool{"running": true})
}

// StopCollection stops the run and closes room connections. Participants
// stay available for drawing.
func (h *Handler) StopCollection(w http.ResponseWriter, r *http.Request) {
	h.live.Stop()
	h.writeJSON(w, http.StatusOK, map[string]bool{"running": false})
}

func (h *Handler) CollectionStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]bool{"running": h.live.IsRunning()})
}

func (h *Handler) ParticipantCount(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]int{"count": h.live.ParticipantCount()})
}

// Draw picks winners from the current participants. A count of zero or
// less draws everyone.
func (h *Handler) Draw(w http.ResponseWriter, r *http.Request) {
	var req models.DrawRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	h.writeJSON(w, http.StatusOK, h.live.Draw(req.Count))
}
