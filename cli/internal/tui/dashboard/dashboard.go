// ABOUTME: Dashboard component displaying the live lottery run
// ABOUTME: Shows phase, keyword, participant trend and watched rooms in the left pane

package dashboard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/markalston/live-lottery/cli/internal/tui/icons"
	"github.com/markalston/live-lottery/cli/internal/tui/styles"
	"github.com/markalston/live-lottery/cli/internal/tui/widgets"
)

// historyLimit bounds the participant trend to the last minute of polls
const historyLimit = 60

// Snapshot is the lottery state the dashboard renders
type Snapshot struct {
	Phase        string
	Keyword      string
	WinnerCount  int
	Participants int
	Rooms        []int64
	Elapsed      time.Duration
	Drawing      bool
}

// Dashboard displays the current lottery run
type Dashboard struct {
	snap     Snapshot
	history  *widgets.History
	previous int
	width    int
	height   int
}

// New creates an empty dashboard
func New(width, height int) *Dashboard {
	return &Dashboard{
		history: widgets.NewHistory(historyLimit),
		width:   width,
		height:  height,
	}
}

// Update records a new snapshot. The participant trend gains a sample
// each time the count changes while collecting and restarts with each run.
func (d *Dashboard) Update(snap Snapshot) {
	switch snap.Phase {
	case "connecting":
		d.history.Reset()
		d.previous = 0
	case "collecting":
		empty := len(d.history.Values()) == 0
		if empty || snap.Participants != int(d.history.Last()) {
			d.previous = int(d.history.Last())
			d.history.Add(float64(snap.Participants))
		}
	}
	d.snap = snap
}

// SetSize updates the dashboard dimensions
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// View renders the dashboard
func (d *Dashboard) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Live.String() + " Live Lottery"))
	sb.WriteString("\n")
	phase := widgets.PhaseBadge(d.snap.Phase)
	if d.snap.Drawing {
		phase += " " + styles.StatusWarning.Render("drawing...")
	}
	sb.WriteString(phase)
	sb.WriteString("\n\n")

	config := widgets.DefaultMetricBlockConfig()
	participants := widgets.MetricBlockWithSparkline(
		icons.Users, "Participants",
		humanize.Comma(int64(d.snap.Participants))+" "+widgets.TrendIndicator(d.snap.Participants, d.previous),
		d.history.Values(),
		d.elapsedLabel(),
		config,
	)
	winners := widgets.MetricBlock(icons.Trophy, "Winners", strconv.Itoa(d.snap.WinnerCount), "per draw", config)

	if d.width >= 2*config.Width+2 {
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, participants, "  ", winners))
	} else {
		sb.WriteString(participants)
		sb.WriteString("\n")
		sb.WriteString(winners)
	}
	sb.WriteString("\n\n")

	// The keyword gets its own line so the metric blocks never cut it short
	keyword := d.snap.Keyword
	if keyword == "" {
		keyword = "(any message)"
	}
	sb.WriteString(styles.KeyStyle.Render("Keyword: ") + styles.ValueStyle.Render(keyword))
	sb.WriteString("\n\n")

	sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("%s Watched rooms (%d)", icons.Room.String(), len(d.snap.Rooms))))
	sb.WriteString("\n")
	if len(d.snap.Rooms) == 0 {
		sb.WriteString(styles.StatusWarning.Render("  none, add one in settings"))
		sb.WriteString("\n")
	}
	for _, room := range d.snap.Rooms {
		sb.WriteString(fmt.Sprintf("  %d\n", room))
	}

	style := lipgloss.NewStyle().Width(d.width)
	if d.height > 0 {
		style = style.MaxHeight(d.height)
	}
	return style.Render(sb.String())
}

func (d *Dashboard) elapsedLabel() string {
	if d.snap.Phase != "collecting" || d.snap.Elapsed <= 0 {
		return "not collecting"
	}
	started := time.Now().Add(-d.snap.Elapsed)
	return "since " + humanize.Time(started)
}
