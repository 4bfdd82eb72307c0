// ABOUTME: Shared helpers for driving bubbletea models in tests
// ABOUTME: Fires scheduled ticks immediately and flattens batched commands

package tuitest

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ImmediateTicker is a schedule.TickFunc that fires without waiting
func ImmediateTicker(_ time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return fn(time.Now())
	}
}

// NeverTicker is a schedule.TickFunc whose ticks never fire. Root model
// tests use it so polls and toast timers stay quiet.
func NeverTicker(time.Duration, func(time.Time) tea.Msg) tea.Cmd {
	return nil
}

// Run executes cmd and returns the messages it produced.
// Batches are expanded one level at a time; nil commands produce nothing.
func Run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if msg == nil {
		return nil
	}
	switch m := msg.(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range m {
			out = append(out, Run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// Find returns the first message of type T in msgs
func Find[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Count returns how many messages of type T are in msgs
func Count[T any](msgs []tea.Msg) int {
	n := 0
	for _, m := range msgs {
		if _, ok := m.(T); ok {
			n++
		}
	}
	return n
}
