// ABOUTME: Tests for dashboard component
// ABOUTME: Validates lottery run display and the participant trend history

package dashboard

import (
	"strings"
	"testing"
	"time"
)

func TestDashboardView(t *testing.T) {
	d := New(100, 30)
	d.Update(Snapshot{
		Phase:        "collecting",
		Keyword:      "lucky",
		WinnerCount:  3,
		Participants: 1234,
		Rooms:        []int64{123, 456},
		Elapsed:      2 * time.Minute,
	})

	view := d.View()

	for _, expected := range []string{"COLLECTING", "Participants", "1,234", "lucky", "123", "456", "Watched rooms (2)"} {
		if !strings.Contains(view, expected) {
			t.Errorf("expected view to contain %q\nView:\n%s", expected, view)
		}
	}
}

func TestDashboardNoRooms(t *testing.T) {
	d := New(80, 0)
	d.Update(Snapshot{Phase: "idle", WinnerCount: 1})

	view := d.View()
	if !strings.Contains(view, "add one in settings") {
		t.Errorf("expected hint about adding rooms, got:\n%s", view)
	}
	if !strings.Contains(view, "(any message)") {
		t.Error("expected empty keyword placeholder")
	}
}

func TestDashboardShowsLongKeywordInFull(t *testing.T) {
	keyword := "happy-new-year-giveaway"
	d := New(80, 0)
	d.Update(Snapshot{Phase: "collecting", Keyword: keyword, WinnerCount: 2})

	view := d.View()
	if !strings.Contains(view, keyword) {
		t.Errorf("expected full keyword %q in view:\n%s", keyword, view)
	}
	if strings.Contains(view, "...") {
		t.Errorf("expected nothing truncated at 80 columns:\n%s", view)
	}
}

func TestDashboardDrawingIndicator(t *testing.T) {
	d := New(80, 0)
	d.Update(Snapshot{Phase: "collecting", Drawing: true})

	if !strings.Contains(d.View(), "drawing...") {
		t.Error("expected drawing indicator")
	}
}

func TestHistoryTracksChangesPerRun(t *testing.T) {
	d := New(80, 24)

	d.Update(Snapshot{Phase: "connecting"})
	for _, n := range []int{0, 0, 2, 2, 5} {
		d.Update(Snapshot{Phase: "collecting", Participants: n})
	}
	if got := d.history.Values(); len(got) != 3 {
		t.Errorf("expected samples for 0, 2 and 5, got %v", got)
	}
	if d.previous != 2 {
		t.Errorf("expected previous count 2, got %d", d.previous)
	}

	d.Update(Snapshot{Phase: "drawn", Participants: 5})
	if len(d.history.Values()) != 3 {
		t.Error("expected history kept after the draw")
	}

	d.Update(Snapshot{Phase: "connecting"})
	if len(d.history.Values()) != 0 {
		t.Error("expected history reset for a new run")
	}
}
