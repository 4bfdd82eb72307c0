// ABOUTME: HTTP handler for the health endpoint
// ABOUTME: Reports login, watched rooms and collection state

package handlers

import (
	"net/http"

	"github.com/markalston/live-lottery/backend/models"
)

// Health summarises backend state for status checks.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:       "ok",
		LoggedIn:     h.accounts.IsLoggedIn(),
		WatchedRooms: len(h.settings.Rooms()),
		Collecting:   h.live.IsRunning(),
	})
}
