package style

import (
	"github.com/charmbracelet/lipgloss"
)

var palette = DefaultPalette()

// Header styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Margin(1, 0)

	SubHeaderStyle = lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true)
)

// Layout styles
var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted).
			Padding(0, 1)

	ActivePanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.Primary).
				Padding(0, 1)
)

// Button styles
var (
	BuyButtonStyle = lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Long).
			Padding(0, 1).
			Margin(0, 1, 0, 0).
			Bold(true)

	SellButtonStyle = lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Short).
			Padding(0, 1).
			Margin(0, 1, 0, 0).
			Bold(true)

	ButtonDisabledStyle = lipgloss.NewStyle().
				Foreground(palette.TextMuted).
				Background(palette.BackgroundAlt).
				Padding(0, 1).
				Margin(0, 1, 0, 0)
)

// Status styles
var (
	SuccessStyle = lipgloss.NewStyle().
			Foreground(palette.Success).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(palette.Error).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(palette.Warning).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(palette.Info)

	MutedStyle = lipgloss.NewStyle().
			Foreground(palette.TextMuted)
)

// AdaptiveJoinHorizontal stacks blocks vertically on narrow terminals.
func AdaptiveJoinHorizontal(width int, blocks ...string) string {
	if width < 80 {
		return lipgloss.JoinVertical(lipgloss.Left, blocks...)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blocks...)
}

// AdaptiveWidth returns percentage of width, or nearly all of it on narrow
// terminals.
func AdaptiveWidth(width, percentage int) int {
	if width < 80 {
		return width - 4
	}
	return (width * percentage) / 100
}
