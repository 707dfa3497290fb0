package screen

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/okx-trader/internal/ui"
	"github.com/rovshanmuradov/okx-trader/internal/ui/component"
	"github.com/rovshanmuradov/okx-trader/internal/ui/router"
	"github.com/rovshanmuradov/okx-trader/internal/ui/style"
)

const logsRefreshInterval = time.Second

// RefreshLogsMsg redraws the log panel while the logs screen is open.
type RefreshLogsMsg struct {
	Generation int
}

// LogsScreen shows the in-memory log ring with level filters.
type LogsScreen struct {
	chrome

	panel      *component.LogPanel
	generation int
}

// NewLogsScreen creates a new logs screen
func NewLogsScreen(session *ui.Session) *LogsScreen {
	panel := component.NewLogPanel(session.Logs(), "Logs")
	panel.SetShowFields(true)
	return &LogsScreen{
		chrome: newChrome(session, ui.RouteLogs),
		panel:  panel,
	}
}

// Init starts the redraw ticker. Each Init starts a new generation so a
// ticker left from an earlier visit dies out.
func (s *LogsScreen) Init() tea.Cmd {
	s.generation++
	s.panel.Refresh()
	return s.tick()
}

func (s *LogsScreen) tick() tea.Cmd {
	gen := s.generation
	return tea.Tick(logsRefreshInterval, func(time.Time) tea.Msg {
		return RefreshLogsMsg{Generation: gen}
	})
}

// Update handles screen updates
func (s *LogsScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case RefreshLogsMsg:
		if msg.Generation != s.generation {
			return s, nil
		}
		s.panel.Refresh()
		return s, s.tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Quit):
			return s, ui.Quit
		case key.Matches(msg, s.keyMap.FilterInfo):
			s.panel.ToggleLogLevel("info")
		case key.Matches(msg, s.keyMap.FilterWarn):
			s.panel.ToggleLogLevel("warn")
		case key.Matches(msg, s.keyMap.FilterError):
			s.panel.ToggleLogLevel("error")
		case key.Matches(msg, s.keyMap.FilterDebug):
			s.panel.ToggleLogLevel("debug")
		case key.Matches(msg, s.keyMap.ClearLogs):
			if logs := s.session.Logs(); logs != nil {
				logs.Clear()
			}
			s.panel.Refresh()
		default:
			return s, s.panel.Update(msg)
		}
	}
	return s, nil
}

func (s *LogsScreen) View() string {
	return s.render(s.renderFilters(), s.panel.View())
}

func (s *LogsScreen) renderFilters() string {
	f := s.panel.Filter()
	flags := []struct {
		name string
		on   bool
	}{
		{"info", f.ShowInfo},
		{"warn", f.ShowWarning},
		{"error", f.ShowError},
		{"debug", f.ShowDebug},
	}

	parts := make([]string, len(flags))
	for i, flag := range flags {
		label := fmt.Sprintf("F%d %s", i+1, flag.name)
		if flag.on {
			parts[i] = style.SuccessStyle.Render("● " + label)
		} else {
			parts[i] = style.MutedStyle.Render("○ " + label)
		}
	}
	return "Logs  " + strings.Join(parts, "  ")
}

// Panel exposes the log panel.
func (s *LogsScreen) Panel() *component.LogPanel {
	return s.panel
}

// SetSize sets the screen dimensions
func (s *LogsScreen) SetSize(width, height int) {
	s.setSize(width, height)
	s.panel.SetSize(width, s.bodyHeight())
}
