// ABOUTME: Tests for the passport client
// ABOUTME: Uses httptest servers standing in for the platform APIs

package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func platformServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.URL.Path]
		if !ok {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestPassport(server *httptest.Server) *PassportClient {
	return NewPassportClient(server.URL, server.URL, "test-agent", nil)
}

func TestPassport_GenerateQRCode(t *testing.T) {
	server := platformServer(t, map[string]string{
		"/x/passport-login/web/qrcode/generate": `{"code":0,"message":"0","data":{"url":"https://passport.example/h5?qrcode_key=abc","qrcode_key":"abc"}}`,
	})

	qr, err := newTestPassport(server).GenerateQRCode(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if qr.Key != "abc" || qr.URL == "" {
		t.Errorf("unexpected QR code %+v", qr)
	}
}

func TestPassport_GenerateQRCode_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"platform code", `{"code":-412,"message":"request blocked"}`},
		{"missing key", `{"code":0,"data":{"url":"https://x"}}`},
		{"not json", `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := platformServer(t, map[string]string{
				"/x/passport-login/web/qrcode/generate": tt.body,
			})
			if _, err := newTestPassport(server).GenerateQRCode(context.Background()); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestPassport_PollQRCode(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("qrcode_key")
		w.Write([]byte(`{"code":0,"message":"0","data":{"url":"","refresh_token":"","timestamp":0,"code":86090,"message":"scanned"}}`))
	}))
	defer server.Close()

	status, err := newTestPassport(server).PollQRCode(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotKey != "abc123" {
		t.Errorf("expected key in query, got %q", gotKey)
	}
	if status.Code != 0 || status.Data.Code != 86090 || status.Data.Message != "scanned" {
		t.Errorf("unexpected status %+v", status)
	}
}

func TestPassport_PollQRCode_RejectsBadKey(t *testing.T) {
	client := NewPassportClient("http://127.0.0.1:1", "http://127.0.0.1:1", "ua", nil)

	if _, err := client.PollQRCode(context.Background(), "a&b"); err == nil {
		t.Error("expected validation error")
	}
}

func TestPassport_PollQRCode_MissingInnerCode(t *testing.T) {
	server := platformServer(t, map[string]string{
		"/x/passport-login/web/qrcode/poll": `{"code":0,"data":{}}`,
	})

	_, err := newTestPassport(server).PollQRCode(context.Background(), "abc")
	if !errors.Is(err, ErrInvalidPlatformResponse) {
		t.Errorf("expected invalid response error, got %v", err)
	}
}

func TestPassport_Nav(t *testing.T) {
	var gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("expected user agent header, got %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(`{"code":0,"data":{"isLogin":true,"mid":42,"uname":"alice","face":"https://img/a.jpg"}}`))
	}))
	defer server.Close()

	account, err := newTestPassport(server).Nav(context.Background(), "SESSDATA=x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCookie != "SESSDATA=x" {
		t.Errorf("expected cookie forwarded, got %q", gotCookie)
	}
	if account.ID != 42 || account.Name != "alice" || account.AvatarURL != "https://img/a.jpg" {
		t.Errorf("unexpected account %+v", account)
	}
}

func TestPassport_Nav_NotLoggedIn(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"code -101", `{"code":-101,"message":"not logged in","data":{"isLogin":false}}`},
		{"isLogin false", `{"code":0,"data":{"isLogin":false}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := platformServer(t, map[string]string{"/x/web-interface/nav": tt.body})

			_, err := newTestPassport(server).Nav(context.Background(), "SESSDATA=bad")
			if !errors.Is(err, ErrNotLoggedIn) {
				t.Errorf("expected ErrNotLoggedIn, got %v", err)
			}
		})
	}
}

func TestPassport_Nav_PlatformError(t *testing.T) {
	server := platformServer(t, map[string]string{
		"/x/web-interface/nav": `{"code":-412,"message":"blocked"}`,
	})

	_, err := newTestPassport(server).Nav(context.Background(), "c")
	var pe *PlatformError
	if !errors.As(err, &pe) || pe.Code != -412 {
		t.Errorf("expected PlatformError -412, got %v", err)
	}
}
