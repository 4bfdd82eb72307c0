// ABOUTME: Lottery session controller for collecting chat participants and drawing winners
// ABOUTME: Runs connect/collect/draw against the backend and mirrors its running state by polling

package lottery

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/markalston/live-lottery/cli/internal/client"
	"github.com/markalston/live-lottery/cli/internal/tui/debuglog"
	"github.com/markalston/live-lottery/cli/internal/tui/notify"
	"github.com/markalston/live-lottery/cli/internal/tui/schedule"
)

// State is the phase of the current lottery run
type State int

const (
	Idle State = iota
	Connecting
	Collecting
	Drawn
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Connecting:
		return "connecting"
	case Collecting:
		return "collecting"
	case Drawn:
		return "drawn"
	default:
		return "unknown"
	}
}

// PollInterval is the delay between collection status checks
const PollInterval = time.Second

const (
	startTimeout  = 30 * time.Second
	drawTimeout   = 15 * time.Second
	statusTimeout = 3 * time.Second
	stopTimeout   = 10 * time.Second
)

// Backend is the slice of the API client the controller calls
type Backend interface {
	ConnectLiveRooms(ctx context.Context, rooms []int64) error
	StartCollection(ctx context.Context, keyword string) error
	StopCollection(ctx context.Context) error
	IsCollectionRunning(ctx context.Context) (bool, error)
	ParticipantCount(ctx context.Context) (int, error)
	DrawWinners(ctx context.Context, count int) ([]client.Winner, error)
}

// RoomSource provides the watched rooms. The controller never modifies them.
type RoomSource interface {
	WatchedRooms() []int64
}

type startedMsg struct {
	epoch uint64
	err   error
	// connected is set when rooms connected but the collection did not start
	connected bool
}

type drawnMsg struct {
	epoch   uint64
	winners []client.Winner
	err     error
}

type statusMsg struct {
	epoch    uint64
	running  bool
	count    int
	err      error
	countErr error
}

type stoppedMsg struct {
	err error
}

// Controller is the lottery session state machine
type Controller struct {
	backend Backend
	rooms   RoomSource
	sched   *schedule.Scheduler
	now     func() time.Time

	state        State
	keyword      string
	winnerCount  int
	participants int
	winners      []client.Winner
	startedAt    time.Time

	poll *schedule.Task
	// drawing is set while stop+draw is in flight
	drawing bool
	// epoch is bumped on every explicit transition; poll results from an
	// earlier epoch are discarded
	epoch uint64
}

// New creates an idle controller. Call Init to start the status poll.
func New(backend Backend, rooms RoomSource, sched *schedule.Scheduler) *Controller {
	return &Controller{
		backend:     backend,
		rooms:       rooms,
		sched:       sched,
		now:         time.Now,
		winnerCount: 1,
	}
}

// Init starts the status poll, which runs until Stop
func (c *Controller) Init() tea.Cmd {
	if c.poll != nil && !c.poll.Canceled() {
		return nil
	}
	c.poll = c.sched.Every("collection-status", PollInterval)
	return c.poll.Next()
}

// Stop cancels the status poll and discards results still in flight
func (c *Controller) Stop() {
	c.poll.Cancel()
	c.epoch++
}

// State returns the current phase
func (c *Controller) State() State { return c.state }

// Keyword returns the chat keyword participants must send
func (c *Controller) Keyword() string { return c.keyword }

// WinnerCount returns how many winners the next draw requests
func (c *Controller) WinnerCount() int { return c.winnerCount }

// ParticipantCount returns the last participant count reported by the backend
func (c *Controller) ParticipantCount() int { return c.participants }

// Drawing reports whether stop+draw is in flight
func (c *Controller) Drawing() bool { return c.drawing }

// Winners returns a copy of the drawn winners
func (c *Controller) Winners() []client.Winner {
	out := make([]client.Winner, len(c.winners))
	copy(out, c.winners)
	return out
}

// Elapsed returns how long the current collection has been running
func (c *Controller) Elapsed() time.Duration {
	if c.state != Collecting {
		return 0
	}
	return c.now().Sub(c.startedAt)
}

// SetKeyword sets the keyword used by the next start
func (c *Controller) SetKeyword(keyword string) {
	c.keyword = keyword
}

// SetWinnerCount sets how many winners to draw. Values below 1 become 1.
func (c *Controller) SetWinnerCount(n int) {
	if n < 1 {
		n = 1
	}
	c.winnerCount = n
}

// Toggle starts a run from Idle or Drawn and stops and draws from Collecting.
// It does nothing while connecting or while a draw is in flight.
func (c *Controller) Toggle() tea.Cmd {
	switch c.state {
	case Idle, Drawn:
		return c.start()
	case Collecting:
		return c.stop()
	}
	return nil
}

func (c *Controller) start() tea.Cmd {
	rooms := c.rooms.WatchedRooms()
	if len(rooms) == 0 {
		return notify.Emit("Please add a live room in settings first")
	}

	c.epoch++
	c.state = Connecting
	c.participants = 0
	c.winners = nil

	epoch := c.epoch
	keyword := c.keyword
	backend := c.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
		defer cancel()
		if err := backend.ConnectLiveRooms(ctx, rooms); err != nil {
			return startedMsg{epoch: epoch, err: err}
		}
		if err := backend.StartCollection(ctx, keyword); err != nil {
			return startedMsg{epoch: epoch, err: err, connected: true}
		}
		return startedMsg{epoch: epoch}
	}
}

func (c *Controller) stop() tea.Cmd {
	if c.drawing {
		return nil
	}
	c.drawing = true
	c.epoch++

	epoch := c.epoch
	count := c.winnerCount
	backend := c.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), drawTimeout)
		defer cancel()
		if err := backend.StopCollection(ctx); err != nil {
			return drawnMsg{epoch: epoch, err: err}
		}
		winners, err := backend.DrawWinners(ctx, count)
		return drawnMsg{epoch: epoch, winners: winners, err: err}
	}
}

// Reset clears a finished draw and returns to Idle
func (c *Controller) Reset() {
	if c.state != Drawn {
		return
	}
	c.epoch++
	c.state = Idle
	c.winners = nil
	c.participants = 0
}

// Update handles the controller's own messages and ignores everything else
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case schedule.FireMsg:
		return c.handleTick(msg)
	case startedMsg:
		return c.handleStarted(msg)
	case drawnMsg:
		return c.handleDrawn(msg)
	case statusMsg:
		c.handleStatus(msg)
	case stoppedMsg:
		debuglog.Error("best-effort stop collection", msg.err)
	}
	return nil
}

func (c *Controller) handleStarted(msg startedMsg) tea.Cmd {
	if msg.epoch != c.epoch || c.state != Connecting {
		return nil
	}
	if msg.err != nil {
		c.state = Idle
		emit := notify.Emit("Failed to start: " + msg.err.Error())
		if msg.connected {
			return tea.Batch(emit, c.stopCollection())
		}
		return emit
	}

	c.epoch++
	c.state = Collecting
	c.winners = nil
	c.startedAt = c.now()
	return notify.Emit("Starting to collect danmaku...")
}

func (c *Controller) handleDrawn(msg drawnMsg) tea.Cmd {
	if msg.epoch != c.epoch || !c.drawing {
		return nil
	}
	c.drawing = false
	c.epoch++

	if msg.err != nil {
		c.state = Idle
		c.winners = nil
		return tea.Batch(
			notify.Emit("Lottery failed: "+msg.err.Error()),
			c.stopCollection(),
		)
	}

	c.state = Drawn
	c.winners = msg.winners
	return notify.Emit(fmt.Sprintf("Lottery completed! Drawn %d winners", len(msg.winners)))
}

// stopCollection releases backend room connections after a failed start or draw
func (c *Controller) stopCollection() tea.Cmd {
	backend := c.backend
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		return stoppedMsg{err: backend.StopCollection(ctx)}
	}
}

func (c *Controller) handleTick(msg schedule.FireMsg) tea.Cmd {
	if !c.poll.Owns(msg) {
		return nil
	}

	epoch := c.epoch
	backend := c.backend
	return tea.Batch(c.poll.Next(), func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
		defer cancel()
		running, err := backend.IsCollectionRunning(ctx)
		if err != nil || !running {
			return statusMsg{epoch: epoch, running: running, err: err}
		}
		count, err := backend.ParticipantCount(ctx)
		return statusMsg{epoch: epoch, running: true, count: count, countErr: err}
	})
}

// handleStatus mirrors backend truth. It only refreshes the participant
// count and notices runs that stopped outside this controller.
func (c *Controller) handleStatus(msg statusMsg) {
	if msg.epoch != c.epoch {
		return
	}
	if msg.err != nil {
		debuglog.Warn("collection status check failed", "error", msg.err)
		return
	}
	if c.state != Collecting || c.drawing {
		return
	}

	if !msg.running {
		debuglog.Info("collection stopped outside this session")
		c.epoch++
		c.state = Idle
		c.participants = 0
		return
	}
	if msg.countErr != nil {
		debuglog.Warn("participant count failed", "error", msg.countErr)
		return
	}
	c.participants = msg.count
}
