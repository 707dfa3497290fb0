package component

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/okx-trader/internal/logger"
	"github.com/rovshanmuradov/okx-trader/internal/ui/style"
)

// LogFilter defines what log levels to show
type LogFilter struct {
	ShowError   bool
	ShowWarning bool
	ShowInfo    bool
	ShowDebug   bool
}

// DefaultLogFilter hides debug entries.
func DefaultLogFilter() LogFilter {
	return LogFilter{ShowError: true, ShowWarning: true, ShowInfo: true}
}

// LogPanel renders the entries held by a LogBuffer in a scrollable viewport.
// It follows new entries until the user scrolls up.
type LogPanel struct {
	buffer     *logger.LogBuffer
	viewport   viewport.Model
	filter     LogFilter
	style      style.LogStyles
	title      string
	showFields bool
	follow     bool
	shown      int
}

// NewLogPanel creates a log panel over buffer.
func NewLogPanel(buffer *logger.LogBuffer, title string) *LogPanel {
	return &LogPanel{
		buffer:   buffer,
		viewport: viewport.New(50, 4),
		filter:   DefaultLogFilter(),
		style:    style.NewLogStyles(style.DefaultPalette()),
		title:    title,
		follow:   true,
	}
}

// SetSize sets the outer dimensions including border and title.
func (lp *LogPanel) SetSize(width, height int) {
	lp.style.Container = lp.style.Container.Width(width - 2)

	viewportWidth := width - 4
	viewportHeight := height - 3
	if viewportWidth < 10 {
		viewportWidth = 10
	}
	if viewportHeight < 2 {
		viewportHeight = 2
	}
	lp.viewport.Width = viewportWidth
	lp.viewport.Height = viewportHeight
	lp.Refresh()
}

// SetShowFields toggles rendering of structured fields after the message.
func (lp *LogPanel) SetShowFields(show bool) {
	lp.showFields = show
}

func (lp *LogPanel) Filter() LogFilter {
	return lp.filter
}

// ToggleLogLevel toggles a specific log level
func (lp *LogPanel) ToggleLogLevel(level string) {
	switch level {
	case "error":
		lp.filter.ShowError = !lp.filter.ShowError
	case "warn":
		lp.filter.ShowWarning = !lp.filter.ShowWarning
	case "info":
		lp.filter.ShowInfo = !lp.filter.ShowInfo
	case "debug":
		lp.filter.ShowDebug = !lp.filter.ShowDebug
	}
	lp.Refresh()
}

// Shown is the number of entries that passed the filter at the last refresh.
func (lp *LogPanel) Shown() int {
	return lp.shown
}

// Update scrolls the viewport.
func (lp *LogPanel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	lp.viewport, cmd = lp.viewport.Update(msg)
	lp.follow = lp.viewport.AtBottom()
	return cmd
}

// View renders the panel
func (lp *LogPanel) View() string {
	lp.Refresh()

	title := fmt.Sprintf("%s (%d)", lp.title, lp.shown)
	content := lipgloss.JoinVertical(
		lipgloss.Left,
		lp.style.Title.Render(title),
		lp.viewport.View(),
	)
	return lp.style.Container.Render(content)
}

// Refresh rebuilds the viewport content from the buffer.
func (lp *LogPanel) Refresh() {
	lp.shown = 0
	if lp.buffer == nil {
		lp.viewport.SetContent("No log buffer available")
		return
	}

	var lines []string
	for _, entry := range lp.buffer.GetRecentLogs(0) {
		if lp.shouldShowEntry(entry) {
			lines = append(lines, lp.formatLogEntry(entry))
		}
	}
	lp.shown = len(lines)

	if len(lines) == 0 {
		lp.viewport.SetContent("No logs match current filter")
		return
	}

	lp.viewport.SetContent(strings.Join(lines, "\n"))
	if lp.follow {
		lp.viewport.GotoBottom()
	}
}

func (lp *LogPanel) shouldShowEntry(entry logger.LogEntry) bool {
	switch strings.ToLower(entry.Level) {
	case "error", "dpanic", "panic", "fatal":
		return lp.filter.ShowError
	case "warning", "warn":
		return lp.filter.ShowWarning
	case "debug":
		return lp.filter.ShowDebug
	default:
		return lp.filter.ShowInfo
	}
}

func (lp *LogPanel) formatLogEntry(entry logger.LogEntry) string {
	timestamp := lp.style.Timestamp.Render(entry.Timestamp.Format("15:04:05"))
	level := strings.ToUpper(entry.Level)

	var levelStyle lipgloss.Style
	switch strings.ToLower(entry.Level) {
	case "error", "dpanic", "panic", "fatal":
		levelStyle = lp.style.Error
	case "warning", "warn":
		levelStyle = lp.style.Warning
	case "debug":
		levelStyle = lp.style.Debug
	default:
		levelStyle = lp.style.Info
	}

	line := fmt.Sprintf("%s %s %s", timestamp, levelStyle.Render(fmt.Sprintf("%-5s", level)), levelStyle.Render(entry.Message))
	if lp.showFields && len(entry.Fields) > 0 {
		line += " " + lp.style.Fields.Render(formatFields(entry.Fields))
	}
	return line
}

func formatFields(fields map[string]interface{}) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, fields[k])
	}
	return strings.Join(parts, " ")
}
