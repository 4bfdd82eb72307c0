// ABOUTME: Data models for accounts, live rooms, participants and API payloads
// ABOUTME: JSON-serializable structures shared by services and handlers

package models

import (
	"fmt"
	"net"
	"strconv"
)

// Account is the identity of the logged-in platform user
type Account struct {
	ID        int64  `json:"uid"`
	Name      string `json:"name"`
	AvatarURL string `json:"face"`
}

// QRCode is a freshly issued passport login code
type QRCode struct {
	URL string `json:"url"`
	Key string `json:"qrcode_key"`
}

// QRStatus is the passport poll result, passed through as the platform sends it.
// Code is the request status; Data.Code is the scan state.
type QRStatus struct {
	Code    int          `json:"code"`
	Message string       `json:"message"`
	Data    QRStatusData `json:"data"`
}

// QRStatusData carries the scan state. URL is set once the login is confirmed.
type QRStatusData struct {
	URL          string `json:"url"`
	RefreshToken string `json:"refresh_token"`
	Timestamp    int64  `json:"timestamp"`
	Code         int    `json:"code"`
	Message      string `json:"message"`
}

// Participant is a chat user collected during a lottery run
type Participant struct {
	UID      int64  `json:"uid"`
	Username string `json:"username"`
	Count    int    `json:"count"`
}

// Settings is the persisted backend state
type Settings struct {
	Cookie          string  `json:"cookie,omitempty"`
	Rooms           []int64 `json:"rooms"`
	BackgroundImage string  `json:"background_image,omitempty"`
}

// Room is a live room resolved for a danmaku connection
type Room struct {
	RoomID     int64         `json:"room_id"`
	ShortID    int64         `json:"short_id"`
	UID        int64         `json:"uid"`
	Title      string        `json:"title"`
	LiveStatus int           `json:"live_status"`
	Token      string        `json:"-"`
	Hosts      []DanmakuHost `json:"hosts"`
}

// DanmakuHost is one chat broadcast server
type DanmakuHost struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// WebSocketURL is the secure websocket endpoint for the host.
// Port 2243 is the raw TCP port and maps to 443.
func (h DanmakuHost) WebSocketURL() string {
	port := h.Port
	if port == 0 || port == 2243 {
		port = 443
	}
	return fmt.Sprintf("wss://%s/sub", net.JoinHostPort(h.Host, strconv.Itoa(port)))
}

// HealthResponse is the /api/v1/health body
type HealthResponse struct {
	Status       string `json:"status"`
	LoggedIn     bool   `json:"logged_in"`
	WatchedRooms int    `json:"watched_rooms"`
	Collecting   bool   `json:"collecting"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    int    `json:"code"`
}

// MessageResponse is a human-readable success message
type MessageResponse struct {
	Message string `json:"message"`
}

type CookieLoginRequest struct {
	Cookie string `json:"cookie"`
}

type ConfirmQRRequest struct {
	URL string `json:"url"`
}

type AddRoomRequest struct {
	RoomID int64 `json:"room_id"`
}

type BackgroundRequest struct {
	Image string `json:"image"`
}

type ConnectRequest struct {
	Rooms []int64 `json:"rooms"`
}

type StartCollectionRequest struct {
	Keyword string `json:"keyword"`
}

type DrawRequest struct {
	Count int `json:"count"`
}
