// ABOUTME: Tests for request logging middleware
// ABOUTME: Verifies request ids, the completion record and that paths cannot forge log lines

package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

// captureLogs routes the default logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestSanitizePath(t *testing.T) {
	tests := map[string]string{
		"/api/v1/rooms\nWinners drawn for attacker": "/api/v1/roomsWinners drawn for attacker",
		"/api/v1/live/draw\x1b[31m":                 "/api/v1/live/draw[31m",
		"/api/v1/rooms/12\x00\x7f\t":                "/api/v1/rooms/12",
		"/api/v1/auth/qrcode/status?key=a%2Fb":      "/api/v1/auth/qrcode/status?key=a%2Fb",
	}

	for input, want := range tests {
		if got := sanitizePath(input); got != want {
			t.Errorf("sanitizePath(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestLogRequest_SetsRequestID(t *testing.T) {
	captureLogs(t)
	var seen string
	handler := LogRequest(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	requestID := rec.Header().Get("X-Request-ID")
	if _, err := uuid.Parse(requestID); err != nil {
		t.Errorf("X-Request-ID %q is not a UUID: %v", requestID, err)
	}
	if seen != requestID {
		t.Errorf("RequestID in handler = %q, header = %q", seen, requestID)
	}
}

func TestRequestID_MissingOutsideMiddleware(t *testing.T) {
	if got := RequestID(httptest.NewRequest(http.MethodGet, "/", nil)); got != "" {
		t.Errorf("expected empty request id, got %q", got)
	}
}

func TestLogRequest_ServerErrorsLogAtErrorLevel(t *testing.T) {
	logs := captureLogs(t)
	handler := LogRequest(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/v1/live/connect", nil))

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadGateway)
	}
	out := logs.String()
	for _, want := range []string{"level=ERROR", "status=502", "path=/api/v1/live/connect", rec.Header().Get("X-Request-ID")} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log to contain %q, got %s", want, out)
		}
	}
}
