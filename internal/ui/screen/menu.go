package screen

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/okx-trader/internal/ui"
	"github.com/rovshanmuradov/okx-trader/internal/ui/router"
	"github.com/rovshanmuradov/okx-trader/internal/ui/style"
)

// MenuItem represents a menu item
type MenuItem struct {
	Label       string
	Description string
	Route       ui.Route
}

// MainMenuScreen is the dashboard home.
type MainMenuScreen struct {
	chrome

	selectedIndex int
	menuItems     []MenuItem

	menuItemStyle    lipgloss.Style
	selectedStyle    lipgloss.Style
	descriptionStyle lipgloss.Style
	menuStyle        lipgloss.Style
}

// NewMainMenuScreen creates a new main menu screen
func NewMainMenuScreen(session *ui.Session) *MainMenuScreen {
	palette := style.DefaultPalette()

	return &MainMenuScreen{
		chrome: newChrome(session, ui.RouteMainMenu),
		menuItems: []MenuItem{
			{Label: "Trade", Description: "Search pairs and place market orders", Route: ui.RouteTrade},
			{Label: "Positions", Description: "Open positions, PnL and closing", Route: ui.RoutePositions},
			{Label: "Logs", Description: "Recent activity and errors", Route: ui.RouteLogs},
		},

		menuItemStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 2),

		selectedStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 2).
			Bold(true),

		descriptionStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Padding(0, 4).
			Italic(true),

		menuStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary).
			Padding(1, 4),
	}
}

func (m *MainMenuScreen) Init() tea.Cmd {
	return nil
}

// Update handles screen updates
func (m *MainMenuScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			return m, ui.Quit
		case key.Matches(msg, m.keyMap.Up):
			m.moveUp()
		case key.Matches(msg, m.keyMap.Down):
			m.moveDown()
		case key.Matches(msg, m.keyMap.Enter):
			return m, ui.Navigate(m.GetSelectedRoute())
		case key.Matches(msg, m.keyMap.Trade):
			return m, ui.Navigate(ui.RouteTrade)
		case key.Matches(msg, m.keyMap.Positions):
			return m, ui.Navigate(ui.RoutePositions)
		case key.Matches(msg, m.keyMap.Logs):
			return m, ui.Navigate(ui.RouteLogs)
		}
	}
	return m, nil
}

func (m *MainMenuScreen) View() string {
	return m.render("Main menu", m.renderMenu())
}

// SetSize sets the screen dimensions
func (m *MainMenuScreen) SetSize(width, height int) {
	m.setSize(width, height)
}

func (m *MainMenuScreen) renderMenu() string {
	var items []string
	for i, item := range m.menuItems {
		if i == m.selectedIndex {
			items = append(items, m.selectedStyle.Render(item.Label))
			items = append(items, m.descriptionStyle.Render(item.Description))
			continue
		}
		items = append(items, m.menuItemStyle.Render(item.Label))
	}
	return m.menuStyle.Render(strings.Join(items, "\n"))
}

func (m *MainMenuScreen) moveUp() {
	if m.selectedIndex > 0 {
		m.selectedIndex--
	} else {
		m.selectedIndex = len(m.menuItems) - 1
	}
}

func (m *MainMenuScreen) moveDown() {
	if m.selectedIndex < len(m.menuItems)-1 {
		m.selectedIndex++
	} else {
		m.selectedIndex = 0
	}
}

// GetSelectedRoute returns the currently selected route
func (m *MainMenuScreen) GetSelectedRoute() ui.Route {
	if m.selectedIndex < len(m.menuItems) {
		return m.menuItems[m.selectedIndex].Route
	}
	return ui.RouteMainMenu
}
