// ABOUTME: Tests for the shared session object
// ABOUTME: Verifies readers cannot mutate the owner's state through returned values

package session

import (
	"testing"

	"github.com/markalston/live-lottery/cli/internal/client"
)

func TestWatchedRoomsReturnsCopy(t *testing.T) {
	s := New()
	s.SetWatchedRooms([]int64{1, 2, 3})

	rooms := s.WatchedRooms()
	rooms[0] = 99

	if got := s.WatchedRooms()[0]; got != 1 {
		t.Errorf("expected owner's list unchanged, got first room %d", got)
	}
}

func TestSetWatchedRoomsCopiesInput(t *testing.T) {
	s := New()
	in := []int64{5}
	s.SetWatchedRooms(in)
	in[0] = 6

	if got := s.WatchedRooms()[0]; got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
}

func TestAccountReturnsCopy(t *testing.T) {
	s := New()
	s.SetAccount(&client.Account{ID: 1, Name: "a"})

	a := s.Account()
	a.Name = "b"

	if s.Account().Name != "a" {
		t.Error("expected account unchanged by reader")
	}
}

func TestClear(t *testing.T) {
	s := New()
	s.SetAccount(&client.Account{ID: 1})
	s.SetWatchedRooms([]int64{1})
	s.SetBackgroundImage("bg.png")

	s.Clear()

	if s.Account() != nil || len(s.WatchedRooms()) != 0 || s.BackgroundImage() != "" {
		t.Error("expected empty session after Clear")
	}
}
