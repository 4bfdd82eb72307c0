// ABOUTME: Tests for the fixed-window rate limiter and its middleware
// ABOUTME: Covers quotas, window reset, key extraction and 429 responses

package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/markalston/live-lottery/backend/models"
)

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if allowed, _ := rl.Allow("k"); !allowed {
			t.Fatalf("Request %d should be allowed", i+1)
		}
	}
}

func TestRateLimiter_RejectsOverLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	rl.Allow("k")
	rl.Allow("k")

	allowed, retryAfter := rl.Allow("k")
	if allowed {
		t.Fatal("Third request should be rejected")
	}
	if retryAfter <= 0 || retryAfter > time.Minute {
		t.Errorf("Expected retryAfter within the window, got %v", retryAfter)
	}
}

func TestRateLimiter_SeparateKeys(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	if allowed, _ := rl.Allow("a"); !allowed {
		t.Fatal("First request for a should be allowed")
	}
	if allowed, _ := rl.Allow("b"); !allowed {
		t.Fatal("First request for b should be allowed")
	}
	if allowed, _ := rl.Allow("a"); allowed {
		t.Fatal("Second request for a should be rejected")
	}
}

func TestRateLimiter_WindowReset(t *testing.T) {
	rl := NewRateLimiter(1, 50*time.Millisecond)
	rl.Allow("k")

	if allowed, _ := rl.Allow("k"); allowed {
		t.Fatal("Second request should be rejected")
	}

	time.Sleep(60 * time.Millisecond)

	if allowed, _ := rl.Allow("k"); !allowed {
		t.Fatal("Request after window reset should be allowed")
	}
}

func TestRateLimiter_SweepsExpiredWindows(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)
	for i := 0; i < 5; i++ {
		rl.Allow(fmt.Sprintf("key-%d", i))
	}

	time.Sleep(30 * time.Millisecond)
	rl.Allow("fresh")

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if len(rl.windows) != 1 {
		t.Errorf("Expected only the fresh window after sweep, got %d", len(rl.windows))
	}
}

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	rl := NewRateLimiter(100, time.Minute)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if allowed, _ := rl.Allow("shared"); allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowedCount != 100 {
		t.Errorf("Expected exactly 100 allowed requests, got %d", allowedCount)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name     string
		xff      string
		remote   string
		expected string
	}{
		{name: "single IP", xff: "203.0.113.1", expected: "ip:203.0.113.1"},
		{name: "multiple IPs takes leftmost", xff: "203.0.113.1, 10.0.0.1", expected: "ip:203.0.113.1"},
		{name: "spaces trimmed", xff: "  203.0.113.1 , 10.0.0.1 ", expected: "ip:203.0.113.1"},
		{name: "garbage XFF falls back", xff: "not-an-ip", remote: "10.0.0.5:9999", expected: "ip:10.0.0.5"},
		{name: "no XFF uses RemoteAddr", remote: "192.168.1.1:12345", expected: "ip:192.168.1.1"},
		{name: "RemoteAddr without port", remote: "192.168.1.1", expected: "ip:192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.remote != "" {
				r.RemoteAddr = tt.remote
			}

			if got := ClientIP(r); got != tt.expected {
				t.Errorf("ClientIP() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestRateLimitMiddleware_Disabled(t *testing.T) {
	called := false
	wrapped := RateLimit(nil, ClientIP)(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	wrapped(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Fatal("Handler should be called when limiter is nil")
	}
}

func TestRateLimitMiddleware_EmptyKeyPassesThrough(t *testing.T) {
	calls := 0
	rl := NewRateLimiter(1, time.Minute)
	wrapped := RateLimit(rl, func(*http.Request) string { return "" })(func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	for i := 0; i < 3; i++ {
		wrapped(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls with an empty key, got %d", calls)
	}
}

func TestRateLimitMiddleware_Returns429(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	wrapped := RateLimit(rl, ClientIP)(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	send := func() *httptest.ResponseRecorder {
		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/qrcode", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		wrapped(w, r)
		return w
	}

	if w := send(); w.Code != http.StatusOK {
		t.Fatalf("First request should be 200, got %d", w.Code)
	}

	w := send()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Second request should be 429, got %d", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Error("Expected Retry-After header")
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected JSON content type, got %q", ct)
	}

	var body models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode body: %v", err)
	}
	if body.Error != "Rate limit exceeded" || body.Code != http.StatusTooManyRequests {
		t.Errorf("Unexpected body %+v", body)
	}
}
