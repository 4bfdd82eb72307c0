// ABOUTME: Tests for the winners results view
// ABOUTME: Validates ranking, shortfall marking and empty draws

package results

import (
	"strings"
	"testing"

	"github.com/markalston/live-lottery/cli/internal/client"
)

func TestResultsView(t *testing.T) {
	winners := []client.Winner{
		{ID: 1, Name: "alice", MessageCount: 1200},
		{ID: 2, Name: "bob", MessageCount: 3},
	}

	view := New(winners, 2, 60).View()

	for _, expected := range []string{"Winners", "1st", "2nd", "alice", "bob", "1,200", "2 of 2 requested"} {
		if !strings.Contains(view, expected) {
			t.Errorf("expected view to contain %q\nView:\n%s", expected, view)
		}
	}
	if strings.Contains(view, "not enough participants") {
		t.Error("did not expect shortfall marker")
	}
}

func TestResultsShortfall(t *testing.T) {
	winners := []client.Winner{{ID: 1, Name: "alice"}}

	view := New(winners, 5, 60).View()

	if !strings.Contains(view, "1 of 5 requested") || !strings.Contains(view, "not enough participants") {
		t.Errorf("expected shortfall summary, got:\n%s", view)
	}
}

func TestResultsEmpty(t *testing.T) {
	view := New(nil, 3, 60).View()

	if !strings.Contains(view, "No participants") {
		t.Errorf("expected empty message, got:\n%s", view)
	}
}

func TestResultsNamelessWinner(t *testing.T) {
	view := New([]client.Winner{{ID: 77}}, 1, 60).View()

	if !strings.Contains(view, "uid 77") {
		t.Errorf("expected uid fallback, got:\n%s", view)
	}
}
