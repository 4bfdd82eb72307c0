// ABOUTME: Test to verify header/footer width alignment
// ABOUTME: Ensures frame renders at correct terminal width on every screen

package tui

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/markalston/live-lottery/cli/internal/tui/auth"
	"github.com/markalston/live-lottery/cli/internal/tui/schedule"
	"github.com/markalston/live-lottery/cli/internal/tui/tuitest"
)

func TestFrameAlignment(t *testing.T) {
	widths := []int{60, 80, 100, 120}

	for _, targetWidth := range widths {
		t.Run(fmt.Sprintf("width-%d", targetWidth), func(t *testing.T) {
			app := newApp(&fakeBackend{}, "", schedule.New(schedule.WithTicker(tuitest.NeverTicker)))

			model, _ := app.Update(tea.WindowSizeMsg{Width: targetWidth, Height: 30})
			app = model.(*App)

			// The frame clamps to a minimum of 80 for usability
			expectedWidth := max(targetWidth, minTerminalWidth)

			lines := strings.Split(app.View(), "\n")
			header := lines[0]
			footer := lines[len(lines)-1]

			if !strings.Contains(header, "╭") {
				t.Fatalf("header not on first line: %q", header)
			}
			if w := lipgloss.Width(header); w != expectedWidth {
				t.Errorf("header width mismatch at width %d: expected %d, got %d", targetWidth, expectedWidth, w)
			}
			if !strings.Contains(footer, "╰") {
				t.Fatalf("footer not on last line: %q", footer)
			}
			if w := lipgloss.Width(footer); w != expectedWidth {
				t.Errorf("footer width mismatch at width %d: expected %d, got %d", targetWidth, expectedWidth, w)
			}
		})
	}
}

func TestToastLineRendersAboveFooter(t *testing.T) {
	app := newTestApp(&fakeBackend{}, "")
	drive(t, app, auth.LoggedOutMsg{})

	lines := strings.Split(app.View(), "\n")
	toast := lines[len(lines)-2]
	if !strings.Contains(toast, "Logged out") {
		t.Errorf("expected toast above footer, got %q", toast)
	}
}
