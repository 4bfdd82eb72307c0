// ABOUTME: Tests for the live-lottery API client
// ABOUTME: Uses httptest to mock backend responses, including malformed payloads

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHealth_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/health" {
			t.Errorf("expected path /api/v1/health, got %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(HealthResponse{Status: "ok", LoggedIn: true, WatchedRooms: 2})
	}))
	defer server.Close()

	c := New(server.URL)
	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.LoggedIn || resp.WatchedRooms != 2 {
		t.Errorf("unexpected health response: %+v", resp)
	}
}

func TestHealth_ConnectionError(t *testing.T) {
	c := New("http://localhost:99999")
	_, err := c.Health(context.Background())
	if err == nil {
		t.Error("expected connection error, got nil")
	}
}

func TestBackendErrorIsSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "cookie is invalid", Code: 400})
	}))
	defer server.Close()

	c := New(server.URL)
	_, err := c.CookieLogin(context.Background(), "SESSDATA=x")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "backend error: cookie is invalid" {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestBackendErrorDetailsAreKept(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error:   "Failed to connect live rooms",
			Details: "no live room connected: room 999: room not found",
			Code:    502,
		})
	}))
	defer server.Close()

	c := New(server.URL)
	err := c.ConnectLiveRooms(context.Background(), []int64{999})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	want := "backend error: Failed to connect live rooms: no live room connected: room 999: room not found"
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}

func TestNonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer server.Close()

	c := New(server.URL)
	err := c.StopCollection(context.Background())
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Errorf("expected status 502 error, got %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]bool{"running": true})
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	c := New(server.URL)
	_, err := c.IsCollectionRunning(ctx)
	if err == nil || err.Error() != "request timed out" {
		t.Errorf("expected timeout error, got %v", err)
	}
}

func TestIssueQRCode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"complete", `{"url":"https://x","qrcode_key":"k1"}`, false},
		{"missing key", `{"url":"https://x"}`, true},
		{"malformed", `{"url":`, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			qr, err := New(server.URL).IssueQRCode(context.Background())
			if tc.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if qr.URL != "https://x" || qr.Key != "k1" {
				t.Errorf("unexpected QR code: %+v", qr)
			}
		})
	}
}

func TestCheckQRStatus(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantErr   bool
		wantInner int
		wantURL   string
	}{
		{"success", `{"code":0,"data":{"code":0,"url":"https://confirm"}}`, false, 0, "https://confirm"},
		{"expired", `{"code":0,"data":{"code":86038,"message":"expired"}}`, false, 86038, ""},
		{"missing data", `{"code":0}`, true, 0, ""},
		{"missing code", `{"data":{"code":0}}`, true, 0, ""},
		{"not json", `oops`, true, 0, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if got := r.URL.Query().Get("key"); got != "k 1" {
					t.Errorf("expected key 'k 1', got %q", got)
				}
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			status, err := New(server.URL).CheckQRStatus(context.Background(), "k 1")
			if tc.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if status.Inner.Code != tc.wantInner || status.Inner.URL != tc.wantURL {
				t.Errorf("unexpected status: %+v", status)
			}
		})
	}
}

func TestAccountInfoRequiresID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":"nobody"}`))
	}))
	defer server.Close()

	if _, err := New(server.URL).AccountInfo(context.Background()); err == nil {
		t.Error("expected error for account without id")
	}
}

func TestConnectLiveRoomsSendsRooms(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/live/connect" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body struct {
			Rooms []int64 `json:"rooms"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if len(body.Rooms) != 2 || body.Rooms[0] != 123 || body.Rooms[1] != 456 {
			t.Errorf("unexpected rooms %v", body.Rooms)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	if err := New(server.URL).ConnectLiveRooms(context.Background(), []int64{123, 456}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParticipantCount(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{"count", `{"count":5}`, 5, false},
		{"negative", `{"count":-1}`, 0, true},
		{"missing", `{}`, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			got, err := New(server.URL).ParticipantCount(context.Background())
			if (err != nil) != tc.wantErr {
				t.Fatalf("wantErr=%v, got %v", tc.wantErr, err)
			}
			if got != tc.want {
				t.Errorf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestDrawWinners(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Count int `json:"count"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		if body.Count != 5 {
			t.Errorf("expected count 5, got %d", body.Count)
		}
		w.Write([]byte(`[{"uid":1,"username":"a","count":3},{"uid":2,"username":"b","count":1}]`))
	}))
	defer server.Close()

	winners, err := New(server.URL).DrawWinners(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(winners) != 2 {
		t.Fatalf("expected 2 winners, got %d", len(winners))
	}
	if winners[0].ID != 1 || winners[0].Name != "a" || winners[0].MessageCount != 3 {
		t.Errorf("unexpected first winner %+v", winners[0])
	}
}

func TestWatchedRoomsNullIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))
	defer server.Close()

	rooms, err := New(server.URL).WatchedRooms(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rooms == nil || len(rooms) != 0 {
		t.Errorf("expected empty rooms, got %v", rooms)
	}
}

func TestRemoveWatchedRoomPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/v1/rooms/123" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	if err := New(server.URL).RemoveWatchedRoom(context.Background(), 123); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
