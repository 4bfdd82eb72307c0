// ABOUTME: Tests for the logout command
// ABOUTME: Validates the backend call and the confirmation prompt

package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/markalston/live-lottery/cli/internal/client"
)

func logoutServer(t *testing.T, calls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/logout" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		*calls++
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestRunLogout(t *testing.T) {
	var calls int
	server := logoutServer(t, &calls)
	defer server.Close()

	var out bytes.Buffer
	if err := runLogout(context.Background(), client.New(server.URL), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected one logout call, got %d", calls)
	}
	if !strings.Contains(out.String(), "Logged out") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestLogoutCommand_DeclinedSkipsBackend(t *testing.T) {
	var calls int
	server := logoutServer(t, &calls)
	defer server.Close()
	t.Setenv("LUCKYDRAW_API_URL", server.URL)

	orig := confirmLogout
	defer func() { confirmLogout = orig }()
	confirmLogout = func() (bool, error) { return false, nil }

	logoutYes = false
	if err := logoutCmd.RunE(logoutCmd, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no logout call, got %d", calls)
	}
}

func TestLogoutCommand_YesSkipsPrompt(t *testing.T) {
	var calls int
	server := logoutServer(t, &calls)
	defer server.Close()
	t.Setenv("LUCKYDRAW_API_URL", server.URL)

	orig := confirmLogout
	defer func() { confirmLogout = orig }()
	confirmLogout = func() (bool, error) {
		t.Error("prompt should not run with --yes")
		return false, nil
	}

	logoutYes = true
	defer func() { logoutYes = false }()
	if err := logoutCmd.RunE(logoutCmd, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected one logout call, got %d", calls)
	}
}
