// ABOUTME: Auth handlers for cookie and QR code login
// ABOUTME: Proxies passport QR calls and manages the stored platform session

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/markalston/live-lottery/backend/models"
)

// CookieLogin validates a pasted browser cookie and stores it.
func (h *Handler) CookieLogin(w http.ResponseWriter, r *http.Request) {
	var req models.CookieLoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	account, err := h.accounts.CookieLogin(r.Context(), req.Cookie)
	if err != nil {
		h.writeServiceError(w, err, "Cookie login failed")
		return
	}
	h.writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Logged in as " + account.Name})
}

func (h *Handler) AuthStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]bool{"logged_in": h.accounts.IsLoggedIn()})
}

// Account returns the logged-in account's profile.
func (h *Handler) Account(w http.ResponseWriter, r *http.Request) {
	account, err := h.accounts.Account(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "Failed to fetch account info")
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}

// IssueQRCode starts a QR login and returns the code to display.
func (h *Handler) IssueQRCode(w http.ResponseWriter, r *http.Request) {
	qr, err := h.passport.GenerateQRCode(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "Failed to issue QR code")
		return
	}
	h.writeJSON(w, http.StatusOK, qr)
}

// QRCodeStatus reports the scan state of a QR key. The platform status is
// passed through; the client decides what each inner code means.
func (h *Handler) QRCodeStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.passport.PollQRCode(r.Context(), r.URL.Query().Get("key"))
	if err != nil {
		h.writeServiceError(w, err, "Failed to check QR code status")
		return
	}
	h.writeJSON(w, http.StatusOK, status)
}

// ConfirmQRLogin completes a scanned QR login from its redirect URL.
func (h *Handler) ConfirmQRLogin(w http.ResponseWriter, r *http.Request) {
	var req models.ConfirmQRRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	account, err := h.accounts.ConfirmQRLogin(r.Context(), req.URL)
	if err != nil {
		h.writeServiceError(w, err, "QR login failed")
		return
	}
	h.writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Logged in as " + account.Name})
}

// Logout ends the session and stops any live collection.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.accounts.Logout(); err != nil {
		slog.Error("Failed to clear stored cookie", "error", err)
		h.writeError(w, "Logged out, but the stored cookie could not be cleared", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, models.MessageResponse{Message: "Logged out"})
}
