package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/okx-trader/internal/ui"
	"github.com/rovshanmuradov/okx-trader/internal/ui/router"
	"github.com/rovshanmuradov/okx-trader/internal/ui/screen"
)

// AppModel represents the main TUI application model
type AppModel struct {
	session *ui.Session
	router  *router.Router
	width   int
	height  int
}

// NewAppModel creates the dashboard with the main menu as its root screen.
func NewAppModel(session *ui.Session) *AppModel {
	return &AppModel{
		session: session,
		router:  router.New(screen.NewMainMenuScreen(session)),
	}
}

// Init starts the positions poller together with the window.
func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.router.Init(),
		m.session.StartFeed(),
	)
}

// Update handles application-level updates
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}

	case ui.QuitMsg:
		return m, m.quit()

	case ui.RouterMsg:
		return m, m.handleNavigation(msg.To)

	case ui.SnapshotMsg:
		cmds = append(cmds, m.session.Apply(msg))

	case ui.OutcomeMsg:
		m.session.Report(msg)

	case ui.FeedClosedMsg:
		return m, nil
	}

	updatedRouter, cmd := m.router.Update(msg)
	m.router = updatedRouter.(*router.Router)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// quit stops the poller before the program exits.
func (m *AppModel) quit() tea.Cmd {
	m.session.StopFeed()
	return tea.Quit
}

// handleNavigation handles navigation to different screens
func (m *AppModel) handleNavigation(route ui.Route) tea.Cmd {
	var newScreen router.Screen

	switch route {
	case ui.RouteMainMenu:
		return m.router.Clear()
	case ui.RouteTrade:
		newScreen = screen.NewTradeScreen(m.session)
	case ui.RoutePositions:
		newScreen = screen.NewPositionsScreen(m.session)
	case ui.RouteLogs:
		newScreen = screen.NewLogsScreen(m.session)
	default:
		return nil
	}

	return m.router.Push(newScreen)
}

// View renders the application
func (m *AppModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	return m.router.View()
}
