// ABOUTME: Results view listing the winners of the last draw
// ABOUTME: Renders a ranked table beside the dashboard once a draw completes

package results

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/markalston/live-lottery/cli/internal/client"
	"github.com/markalston/live-lottery/cli/internal/tui/icons"
	"github.com/markalston/live-lottery/cli/internal/tui/styles"
)

// Results displays drawn winners
type Results struct {
	winners   []client.Winner
	requested int
	width     int
}

// New creates a results view. requested is the winner count asked for.
func New(winners []client.Winner, requested, width int) *Results {
	return &Results{
		winners:   winners,
		requested: requested,
		width:     width,
	}
}

// SetWidth updates the rendering width
func (r *Results) SetWidth(width int) {
	r.width = width
}

// View renders the winners table
func (r *Results) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Trophy.String() + " Winners"))
	sb.WriteString("\n")

	if len(r.winners) == 0 {
		sb.WriteString(styles.StatusWarning.Render("No participants matched the keyword"))
		sb.WriteString("\n")
		return lipgloss.NewStyle().Width(r.width).Render(sb.String())
	}

	summary := fmt.Sprintf("%d of %d requested", len(r.winners), r.requested)
	if len(r.winners) < r.requested {
		summary = styles.StatusWarning.Render(summary + " (not enough participants)")
	}
	sb.WriteString(styles.Subtitle.Render(summary))
	sb.WriteString("\n")

	nameWidth := max(8, r.width-24)
	header := fmt.Sprintf("%-5s %-*s %12s", "#", nameWidth, "Viewer", "Messages")
	sb.WriteString(styles.KeyStyle.Render(header))
	sb.WriteString("\n")

	for i, w := range r.winners {
		rank := humanize.Ordinal(i + 1)
		name := w.Name
		if name == "" {
			name = fmt.Sprintf("uid %d", w.ID)
		}
		if lipgloss.Width(name) > nameWidth {
			name = string([]rune(name)[:nameWidth-1]) + "…"
		}
		sb.WriteString(fmt.Sprintf("%-5s %s %12s\n",
			rank,
			styles.ValueStyle.Render(name)+strings.Repeat(" ", max(0, nameWidth-lipgloss.Width(name))),
			humanize.Comma(int64(w.MessageCount)),
		))
	}

	return lipgloss.NewStyle().Width(r.width).Render(sb.String())
}
