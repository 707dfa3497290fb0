package ui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/okx-trader/internal/bot"
	"github.com/rovshanmuradov/okx-trader/internal/monitor"
)

// Tea message types for UI communication

// RouterMsg represents navigation between screens
type RouterMsg struct {
	To Route
}

// SnapshotMsg carries one poll result into the update loop.
type SnapshotMsg struct {
	Snapshot monitor.Snapshot
}

// FeedClosedMsg is delivered once the poller has stopped and closed its channel.
type FeedClosedMsg struct{}

// OutcomeMsg is the result of a trading command sent through the bus.
type OutcomeMsg struct {
	Command string
	Target  string
	Outcome bot.Outcome
	Err     error
}

// IsValidation reports whether the command was rejected before any request
// was made.
func (m OutcomeMsg) IsValidation() bool {
	var vErr *bot.ValidationError
	return errors.As(m.Err, &vErr)
}

// Text is the one-line notification for the outcome.
func (m OutcomeMsg) Text() string {
	if m.Outcome.Message != "" {
		return m.Outcome.Message
	}
	if m.Err != nil {
		return m.Err.Error()
	}
	return m.Command + " done"
}

// Succeeded is true only for a successful outcome without an error.
func (m OutcomeMsg) Succeeded() bool {
	return m.Err == nil && m.Outcome.Success
}

// WaitForSnapshot blocks on the feed and turns the next snapshot into a
// message. Re-issue it after every SnapshotMsg.
func WaitForSnapshot(updates <-chan monitor.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return FeedClosedMsg{}
		}
		return SnapshotMsg{Snapshot: snap}
	}
}

// QuitMsg asks the front-end to stop the poller and exit.
type QuitMsg struct{}

// Quit requests a clean shutdown.
func Quit() tea.Msg {
	return QuitMsg{}
}

// Navigate requests a screen change.
func Navigate(route Route) tea.Cmd {
	return func() tea.Msg {
		return RouterMsg{To: route}
	}
}

// Route represents different screens in the application
type Route int

const (
	RouteMainMenu Route = iota
	RouteTrade
	RoutePositions
	RouteLogs
)

// String returns the string representation of the route
func (r Route) String() string {
	switch r {
	case RouteMainMenu:
		return "main_menu"
	case RouteTrade:
		return "trade"
	case RoutePositions:
		return "positions"
	case RouteLogs:
		return "logs"
	default:
		return "unknown"
	}
}
