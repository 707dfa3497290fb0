package style

import (
	"github.com/charmbracelet/lipgloss"
)

// HeaderStyles provides styling for the account header
type HeaderStyles struct {
	Container   lipgloss.Style
	Title       lipgloss.Style
	Label       lipgloss.Style
	LiveBadge   lipgloss.Style
	DemoBadge   lipgloss.Style
	PnLPositive lipgloss.Style
	PnLNegative lipgloss.Style
	PnLNeutral  lipgloss.Style
	Stale       lipgloss.Style
}

// NewHeaderStyles creates header styles with the given palette
func NewHeaderStyles(palette Palette) HeaderStyles {
	return HeaderStyles{
		Container: lipgloss.NewStyle().
			Foreground(palette.Text).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Primary).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true),

		Label: lipgloss.NewStyle().
			Foreground(palette.TextSecondary),

		LiveBadge: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Live).
			Padding(0, 1).
			Bold(true),

		DemoBadge: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Demo).
			Padding(0, 1).
			Bold(true),

		PnLPositive: lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true),

		PnLNegative: lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true),

		PnLNeutral: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		Stale: lipgloss.NewStyle().
			Foreground(palette.Warning),
	}
}

// LogStyles provides styling for the log panel
type LogStyles struct {
	Container lipgloss.Style
	Title     lipgloss.Style
	Timestamp lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Info      lipgloss.Style
	Debug     lipgloss.Style
	Fields    lipgloss.Style
}

// NewLogStyles creates log panel styles
func NewLogStyles(palette Palette) LogStyles {
	return LogStyles{
		Container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Info).
			Padding(0, 1),

		Title: lipgloss.NewStyle().
			Foreground(palette.Info).
			Bold(true),

		Timestamp: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		Error: lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true),

		Warning: lipgloss.NewStyle().
			Foreground(palette.Warning).
			Bold(true),

		Info: lipgloss.NewStyle().
			Foreground(palette.Text),

		Debug: lipgloss.NewStyle().
			Foreground(palette.TextMuted),

		Fields: lipgloss.NewStyle().
			Foreground(palette.TextSecondary),
	}
}

// DialogStyles provides styling for confirmation and warning dialogs
type DialogStyles struct {
	Container lipgloss.Style
	Warning   lipgloss.Style
	Title     lipgloss.Style
	Body      lipgloss.Style
	Hint      lipgloss.Style
}

// NewDialogStyles creates dialog styles
func NewDialogStyles(palette Palette) DialogStyles {
	return DialogStyles{
		Container: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(palette.Secondary).
			Padding(1, 2),

		Warning: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(palette.Warning).
			Padding(1, 2),

		Title: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true),

		Body: lipgloss.NewStyle().
			Foreground(palette.Text),

		Hint: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Italic(true),
	}
}
