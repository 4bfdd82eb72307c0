// ABOUTME: HTTP client for the live-lottery backend API
// ABOUTME: Decodes every boundary payload once into typed results with user-facing errors

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is the API client for the live-lottery backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client with the given base URL
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// BaseURL returns the backend URL this client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HealthResponse represents the /api/v1/health endpoint response
type HealthResponse struct {
	Status       string `json:"status"`
	LoggedIn     bool   `json:"logged_in"`
	WatchedRooms int    `json:"watched_rooms"`
	Collecting   bool   `json:"collecting"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
	Code    int    `json:"code"`
}

// Account is the identity of the logged-in platform user
type Account struct {
	ID        int64  `json:"uid"`
	Name      string `json:"name"`
	AvatarURL string `json:"face"`
}

// QRCode is an issued login QR code
type QRCode struct {
	URL string `json:"url"`
	Key string `json:"qrcode_key"`
}

// QRStatus is the nested scan status of a QR code.
// Code is the outer request status; Inner carries the scan state.
type QRStatus struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Inner   QRInnerStatus `json:"data"`
}

// QRInnerStatus is the scan state of a QR code
type QRInnerStatus struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
}

// Winner is one drawn participant
type Winner struct {
	ID           int64  `json:"uid"`
	Name         string `json:"username"`
	MessageCount int    `json:"count"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Health calls GET /api/v1/health
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// CookieLogin calls POST /api/v1/auth/cookie
func (c *Client) CookieLogin(ctx context.Context, cookie string) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/cookie", map[string]string{"cookie": cookie}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// IsLoggedIn calls GET /api/v1/auth/status
func (c *Client) IsLoggedIn(ctx context.Context) (bool, error) {
	var resp struct {
		LoggedIn *bool `json:"logged_in"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/status", nil, &resp); err != nil {
		return false, err
	}
	if resp.LoggedIn == nil {
		return false, errors.New("invalid response from backend: missing logged_in")
	}
	return *resp.LoggedIn, nil
}

// AccountInfo calls GET /api/v1/auth/account
func (c *Client) AccountInfo(ctx context.Context) (*Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodGet, "/api/v1/auth/account", nil, &account); err != nil {
		return nil, err
	}
	if account.ID <= 0 {
		return nil, errors.New("invalid response from backend: missing account id")
	}
	return &account, nil
}

// IssueQRCode calls POST /api/v1/auth/qrcode
func (c *Client) IssueQRCode(ctx context.Context) (*QRCode, error) {
	var qr QRCode
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/qrcode", nil, &qr); err != nil {
		return nil, err
	}
	if qr.URL == "" || qr.Key == "" {
		return nil, errors.New("invalid response from backend: incomplete QR code")
	}
	return &qr, nil
}

// CheckQRStatus calls GET /api/v1/auth/qrcode/status
func (c *Client) CheckQRStatus(ctx context.Context, key string) (*QRStatus, error) {
	var raw struct {
		Code    *int           `json:"code"`
		Message string         `json:"message"`
		Data    *QRInnerStatus `json:"data"`
	}
	path := "/api/v1/auth/qrcode/status?key=" + url.QueryEscape(key)
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	if raw.Code == nil || raw.Data == nil {
		return nil, errors.New("invalid response from backend: malformed QR status")
	}
	return &QRStatus{Code: *raw.Code, Message: raw.Message, Inner: *raw.Data}, nil
}

// ConfirmQRLogin calls POST /api/v1/auth/qrcode/confirm
func (c *Client) ConfirmQRLogin(ctx context.Context, loginURL string) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/qrcode/confirm", map[string]string{"url": loginURL}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Logout calls POST /api/v1/auth/logout
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil)
}

// WatchedRooms calls GET /api/v1/rooms
func (c *Client) WatchedRooms(ctx context.Context) ([]int64, error) {
	var rooms []int64
	if err := c.do(ctx, http.MethodGet, "/api/v1/rooms", nil, &rooms); err != nil {
		return nil, err
	}
	if rooms == nil {
		rooms = []int64{}
	}
	return rooms, nil
}

// AddWatchedRoom calls POST /api/v1/rooms
func (c *Client) AddWatchedRoom(ctx context.Context, roomID int64) error {
	return c.do(ctx, http.MethodPost, "/api/v1/rooms", map[string]int64{"room_id": roomID}, nil)
}

// RemoveWatchedRoom calls DELETE /api/v1/rooms/{id}
func (c *Client) RemoveWatchedRoom(ctx context.Context, roomID int64) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/rooms/"+strconv.FormatInt(roomID, 10), nil, nil)
}

// BackgroundImage calls GET /api/v1/settings/background
func (c *Client) BackgroundImage(ctx context.Context) (string, error) {
	var resp struct {
		Image string `json:"image"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/settings/background", nil, &resp); err != nil {
		return "", err
	}
	return resp.Image, nil
}

// SetBackgroundImage calls PUT /api/v1/settings/background
func (c *Client) SetBackgroundImage(ctx context.Context, image string) error {
	return c.do(ctx, http.MethodPut, "/api/v1/settings/background", map[string]string{"image": image}, nil)
}

// ConnectLiveRooms calls POST /api/v1/live/connect
func (c *Client) ConnectLiveRooms(ctx context.Context, rooms []int64) error {
	return c.do(ctx, http.MethodPost, "/api/v1/live/connect", map[string][]int64{"rooms": rooms}, nil)
}

// StartCollection calls POST /api/v1/live/collection/start
func (c *Client) StartCollection(ctx context.Context, keyword string) error {
	return c.do(ctx, http.MethodPost, "/api/v1/live/collection/start", map[string]string{"keyword": keyword}, nil)
}

// StopCollection calls POST /api/v1/live/collection/stop
func (c *Client) StopCollection(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/v1/live/collection/stop", nil, nil)
}

// IsCollectionRunning calls GET /api/v1/live/collection
func (c *Client) IsCollectionRunning(ctx context.Context) (bool, error) {
	var resp struct {
		Running *bool `json:"running"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/live/collection", nil, &resp); err != nil {
		return false, err
	}
	if resp.Running == nil {
		return false, errors.New("invalid response from backend: missing running")
	}
	return *resp.Running, nil
}

// ParticipantCount calls GET /api/v1/live/participants/count
func (c *Client) ParticipantCount(ctx context.Context) (int, error) {
	var resp struct {
		Count *int `json:"count"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/live/participants/count", nil, &resp); err != nil {
		return 0, err
	}
	if resp.Count == nil || *resp.Count < 0 {
		return 0, errors.New("invalid response from backend: bad participant count")
	}
	return *resp.Count, nil
}

// DrawWinners calls POST /api/v1/live/draw
func (c *Client) DrawWinners(ctx context.Context, count int) ([]Winner, error) {
	var winners []Winner
	if err := c.do(ctx, http.MethodPost, "/api/v1/live/draw", map[string]int{"count": count}, &winners); err != nil {
		return nil, err
	}
	if winners == nil {
		winners = []Winner{}
	}
	return winners, nil
}

// do sends a JSON request and decodes a JSON response into out (if non-nil)
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal input: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.handleRequestError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

// handleRequestError converts context errors to user-friendly messages
func (c *Client) handleRequestError(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled {
		return fmt.Errorf("request canceled")
	}
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("request timed out")
	}
	return fmt.Errorf("cannot connect to backend at %s: %w", c.baseURL, err)
}

// handleErrorResponse parses API error responses
func (c *Client) handleErrorResponse(resp *http.Response) error {
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil || errResp.Error == "" {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	if errResp.Details != "" {
		return fmt.Errorf("backend error: %s: %s", errResp.Error, errResp.Details)
	}
	return fmt.Errorf("backend error: %s", errResp.Error)
}
