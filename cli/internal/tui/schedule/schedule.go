// ABOUTME: Cancelable scheduled tasks for bubbletea polling loops
// ABOUTME: A cancelled task never fires again and its in-flight ticks are ignored

package schedule

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickFunc schedules fn to produce a message after d. tea.Tick satisfies it.
type TickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// FireMsg is delivered each time a repeating task's interval elapses
type FireMsg struct {
	Task *Task
	At   time.Time
}

// Scheduler hands out tasks that share one tick source
type Scheduler struct {
	tick TickFunc
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithTicker replaces the tick source. Tests use it to fire ticks without waiting.
func WithTicker(tick TickFunc) Option {
	return func(s *Scheduler) {
		s.tick = tick
	}
}

// New creates a scheduler backed by tea.Tick
func New(opts ...Option) *Scheduler {
	s := &Scheduler{tick: tea.Tick}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Every creates a repeating task. Nothing is scheduled until Next is called.
func (s *Scheduler) Every(name string, interval time.Duration) *Task {
	return &Task{name: name, interval: interval, sched: s}
}

// After delivers msg once after d
func (s *Scheduler) After(d time.Duration, msg tea.Msg) tea.Cmd {
	return s.tick(d, func(time.Time) tea.Msg {
		return msg
	})
}

// Task is a repeating timer owned by the controller that created it
type Task struct {
	name     string
	interval time.Duration
	sched    *Scheduler
	canceled bool
	fired    int
}

// Name returns the task's name
func (t *Task) Name() string {
	return t.name
}

// Interval returns the delay between ticks
func (t *Task) Interval() time.Duration {
	return t.interval
}

// Next arms the next tick. Returns nil once the task is cancelled.
func (t *Task) Next() tea.Cmd {
	if t == nil || t.canceled {
		return nil
	}
	return t.sched.tick(t.interval, func(at time.Time) tea.Msg {
		return FireMsg{Task: t, At: at}
	})
}

// Cancel stops the task. Ticks already in flight are dropped by Owns.
func (t *Task) Cancel() {
	if t != nil {
		t.canceled = true
	}
}

// Canceled reports whether Cancel has been called
func (t *Task) Canceled() bool {
	return t == nil || t.canceled
}

// Fired returns how many ticks the owner has accepted
func (t *Task) Fired() int {
	if t == nil {
		return 0
	}
	return t.fired
}

// Owns reports whether msg is a live tick of t and counts it.
// Controllers call it at the top of every tick handler.
func (t *Task) Owns(msg FireMsg) bool {
	if t == nil || msg.Task != t || t.canceled {
		return false
	}
	t.fired++
	return true
}
