// ABOUTME: HTTP handlers for the live lottery API
// ABOUTME: Shared JSON helpers and service error mapping

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/markalston/live-lottery/backend/models"
	"github.com/markalston/live-lottery/backend/services"
)

// maxRequestBodySize bounds JSON request bodies; cookies are the largest input.
const maxRequestBodySize = 64 << 10

type Handler struct {
	passport *services.PassportClient
	accounts *services.AccountService
	settings *services.SettingsStore
	live     *services.LiveService
}

func NewHandler(passport *services.PassportClient, accounts *services.AccountService, settings *services.SettingsStore, live *services.LiveService) *Handler {
	return &Handler{
		passport: passport,
		accounts: accounts,
		settings: settings,
		live:     live,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	h.writeJSON(w, code, models.ErrorResponse{Error: message, Code: code})
}

// decodeJSON reads a bounded JSON body into v, writing a 400 on failure.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, "Request body too large", http.StatusBadRequest)
			return false
		}
		h.writeError(w, "Invalid JSON", http.StatusBadRequest)
		return false
	}
	return true
}

// writeServiceError maps service errors to status codes. Unrecognised
// errors are logged and reported with the fallback message.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	var validationErr *services.ValidationError
	var platformErr *services.PlatformError

	switch {
	case errors.As(err, &validationErr),
		errors.Is(err, services.ErrEmptyCookie),
		errors.Is(err, services.ErrDuplicateRoom),
		errors.Is(err, services.ErrNoRooms):
		h.writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrNotLoggedIn):
		h.writeError(w, "Not logged in", http.StatusUnauthorized)
	case errors.Is(err, services.ErrRoomNotWatched):
		h.writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrNotConnected), errors.Is(err, services.ErrConnectInterrupted):
		h.writeError(w, err.Error(), http.StatusConflict)
	case errors.As(err, &platformErr), errors.Is(err, services.ErrInvalidPlatformResponse):
		slog.Warn(fallback, "error", err)
		h.writeJSON(w, http.StatusBadGateway, models.ErrorResponse{
			Error:   fallback,
			Details: err.Error(),
			Code:    http.StatusBadGateway,
		})
	case errors.Is(err, context.DeadlineExceeded):
		slog.Warn(fallback, "error", err)
		h.writeError(w, fallback+": platform timed out", http.StatusGatewayTimeout)
	default:
		slog.Error(fallback, "error", err)
		h.writeError(w, fallback, http.StatusInternalServerError)
	}
}
