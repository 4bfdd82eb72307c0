// ABOUTME: One-shot notification channel shared by the session controllers
// ABOUTME: Shows a single transient message that hides, then clears, on its own

package notify

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/live-lottery/cli/internal/tui/schedule"
)

const (
	// VisibleDuration is how long a message stays on screen
	VisibleDuration = 3 * time.Second
	// ExitDelay separates hiding a message from clearing its text
	ExitDelay = 300 * time.Millisecond
)

// EmitMsg asks the channel to display text
type EmitMsg struct {
	Text string
}

// DismissMsg asks the channel to hide the current message early
type DismissMsg struct{}

type hideMsg struct{ seq uint64 }

type clearMsg struct{ seq uint64 }

// Emit returns a command that publishes text to the channel.
// Controllers return it from Update; the root model routes it here.
func Emit(text string) tea.Cmd {
	return func() tea.Msg {
		return EmitMsg{Text: text}
	}
}

// Channel holds at most one notification
type Channel struct {
	sched   *schedule.Scheduler
	text    string
	visible bool
	seq     uint64
}

// New creates an empty channel
func New(sched *schedule.Scheduler) *Channel {
	return &Channel{sched: sched}
}

// Text returns the current message, which may be set while hidden during exit
func (c *Channel) Text() string {
	return c.text
}

// Visible reports whether the current message is showing
func (c *Channel) Visible() bool {
	return c.visible
}

// Seq returns the sequence id of the current message
func (c *Channel) Seq() uint64 {
	return c.seq
}

// Emit replaces whatever is displayed. Timers armed for earlier messages
// carry a stale sequence id and are ignored when they fire.
func (c *Channel) Emit(text string) tea.Cmd {
	c.seq++
	c.text = text
	c.visible = true
	return c.sched.After(VisibleDuration, hideMsg{seq: c.seq})
}

// Dismiss hides the current message now and clears it after ExitDelay
func (c *Channel) Dismiss() tea.Cmd {
	if !c.visible {
		return nil
	}
	return c.hide(c.seq)
}

func (c *Channel) hide(seq uint64) tea.Cmd {
	c.visible = false
	return c.sched.After(ExitDelay, clearMsg{seq: seq})
}

// Update handles channel messages and ignores everything else
func (c *Channel) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case EmitMsg:
		return c.Emit(msg.Text)
	case DismissMsg:
		return c.Dismiss()
	case hideMsg:
		if msg.seq != c.seq || !c.visible {
			return nil
		}
		return c.hide(msg.seq)
	case clearMsg:
		if msg.seq != c.seq || c.visible {
			return nil
		}
		c.text = ""
	}
	return nil
}
