package ui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines keyboard shortcuts for the application
type KeyMap struct {
	// Global navigation
	Quit key.Binding
	Back key.Binding

	// Navigation
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Enter key.Binding
	Tab   key.Binding

	// Menu shortcuts
	Trade     key.Binding
	Positions key.Binding
	Logs      key.Binding

	// Trading
	Search  key.Binding
	Manual  key.Binding
	Buy     key.Binding
	Sell    key.Binding
	Presets key.Binding
	Refresh key.Binding

	// Positions
	Close    key.Binding
	CloseAll key.Binding

	// Confirmation
	Yes key.Binding
	No  key.Binding

	// Logs
	FilterInfo  key.Binding
	FilterWarn  key.Binding
	FilterError key.Binding
	FilterDebug key.Binding
	ClearLogs   key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),

		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "leverage down"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "leverage up"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next"),
		),

		Trade: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "trade"),
		),
		Positions: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "positions"),
		),
		Logs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "logs"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Manual: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "amount"),
		),
		Buy: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "buy"),
		),
		Sell: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "sell"),
		),
		Presets: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6"),
			key.WithHelp("1-6", "presets"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r", "f5"),
			key.WithHelp("r/F5", "refresh"),
		),

		Close: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "close"),
		),
		CloseAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "close all"),
		),

		Yes: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		No: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n/esc", "no"),
		),

		FilterInfo: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "info"),
		),
		FilterWarn: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("F2", "warn"),
		),
		FilterError: key.NewBinding(
			key.WithKeys("f3"),
			key.WithHelp("F3", "error"),
		),
		FilterDebug: key.NewBinding(
			key.WithKeys("f4"),
			key.WithHelp("F4", "debug"),
		),
		ClearLogs: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "clear logs"),
		),
	}
}

// ShortHelp returns key help text for the current context
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Back, k.Quit}
}

// ContextualHelp returns help text based on the current route
func (k KeyMap) ContextualHelp(route Route) []key.Binding {
	switch route {
	case RouteMainMenu:
		return []key.Binding{k.Up, k.Down, k.Enter, k.Trade, k.Positions, k.Logs, k.Quit}
	case RouteTrade:
		return []key.Binding{k.Search, k.Up, k.Down, k.Enter, k.Presets, k.Manual, k.Left, k.Right, k.Buy, k.Sell, k.Back, k.Quit}
	case RoutePositions:
		return []key.Binding{k.Up, k.Down, k.Close, k.CloseAll, k.Refresh, k.Back, k.Quit}
	case RouteLogs:
		return []key.Binding{k.Up, k.Down, k.FilterInfo, k.FilterWarn, k.FilterError, k.FilterDebug, k.ClearLogs, k.Back, k.Quit}
	default:
		return k.ShortHelp()
	}
}

// ConfirmHelp is shown while a yes/no prompt is open.
func (k KeyMap) ConfirmHelp() []key.Binding {
	return []key.Binding{k.Yes, k.No}
}
