// ABOUTME: Tests for the watched-room commands
// ABOUTME: Validates list output, add/remove requests and backend errors

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/markalston/live-lottery/cli/internal/client"
)

func TestRoomsList_Human(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]int64{7, 8})
	}))
	defer server.Close()

	var out bytes.Buffer
	if err := runRoomsList(context.Background(), client.New(server.URL), &out, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "7\n8\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRoomsList_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	var out bytes.Buffer
	if err := runRoomsList(context.Background(), client.New(server.URL), &out, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "No watched rooms") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRoomsList_JSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]int64{7})
	}))
	defer server.Close()

	var out bytes.Buffer
	if err := runRoomsList(context.Background(), client.New(server.URL), &out, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var rooms []int64
	if err := json.Unmarshal(out.Bytes(), &rooms); err != nil || len(rooms) != 1 || rooms[0] != 7 {
		t.Errorf("unexpected JSON %q (%v)", out.String(), err)
	}
}

func TestRoomsAdd(t *testing.T) {
	var got map[string]int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/rooms" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	var out bytes.Buffer
	if err := runRoomsAdd(context.Background(), client.New(server.URL), &out, 99); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["room_id"] != 99 {
		t.Errorf("expected room_id 99, got %v", got)
	}
	if !strings.Contains(out.String(), "Added room 99") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRoomsAdd_Duplicate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(client.ErrorResponse{Error: "room 99 is already watched", Code: 400})
	}))
	defer server.Close()

	var out bytes.Buffer
	err := runRoomsAdd(context.Background(), client.New(server.URL), &out, 99)
	if err == nil || !strings.Contains(err.Error(), "already watched") {
		t.Errorf("expected duplicate error, got %v", err)
	}
}

func TestRoomsRemove(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/v1/rooms/5" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	var out bytes.Buffer
	if err := runRoomsRemove(context.Background(), client.New(server.URL), &out, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Removed room 5") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRoomsAddCommand_Prompt(t *testing.T) {
	var added int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]int64
		json.NewDecoder(r.Body).Decode(&body)
		added = body["room_id"]
	}))
	defer server.Close()

	apiURL = server.URL
	defer func() { apiURL = "" }()

	orig := promptRoomID
	promptRoomID = func() (string, error) { return " 321 ", nil }
	defer func() { promptRoomID = orig }()

	if err := roomsAddCmd.RunE(roomsAddCmd, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if added != 321 {
		t.Errorf("expected prompted room 321, got %d", added)
	}
}
