package component

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/okx-trader/internal/okx"
	"github.com/rovshanmuradov/okx-trader/internal/trader"
	"github.com/rovshanmuradov/okx-trader/internal/ui/style"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FocusPane shows the detail of the selected position with a PnL gauge.
type FocusPane struct {
	position *okx.Position
	gauge    *PnLGauge
	style    FocusPaneStyle
	width    int
}

// FocusPaneStyle contains all styling for the focus pane
type FocusPaneStyle struct {
	container lipgloss.Style
	title     lipgloss.Style
	long      lipgloss.Style
	short     lipgloss.Style
	stats     lipgloss.Style
	hotkeys   lipgloss.Style
}

// NewFocusPane creates a new focus pane component
func NewFocusPane() *FocusPane {
	palette := style.DefaultPalette()

	return &FocusPane{
		gauge: NewPnLGauge(20),
		style: FocusPaneStyle{
			container: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(palette.Secondary).
				Padding(0, 2),

			title: lipgloss.NewStyle().
				Foreground(palette.Primary).
				Bold(true),

			long: lipgloss.NewStyle().
				Foreground(palette.Long).
				Bold(true),

			short: lipgloss.NewStyle().
				Foreground(palette.Short).
				Bold(true),

			stats: lipgloss.NewStyle().
				Foreground(palette.Text).
				PaddingRight(2),

			hotkeys: lipgloss.NewStyle().
				Foreground(palette.TextMuted).
				Italic(true),
		},
	}
}

// SetPosition updates the focused position; nil hides the pane.
func (fp *FocusPane) SetPosition(pos *okx.Position) {
	fp.position = pos
	if pos != nil {
		ratio, _ := pos.UplRatio.Mul(hundred).Float64()
		fp.gauge.SetValue(ratio)
	}
}

// SetWidth sets the component width for responsive layout
func (fp *FocusPane) SetWidth(width int) {
	fp.width = width
	fp.style.container = fp.style.container.Width(width - 4)

	gaugeWidth := width - 40
	if gaugeWidth > 30 {
		gaugeWidth = 30
	}
	if gaugeWidth < 10 {
		gaugeWidth = 10
	}
	fp.gauge.SetWidth(gaugeWidth)
}

// View renders the focus pane
func (fp *FocusPane) View() string {
	if fp.position == nil {
		return ""
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		fp.renderTitle(),
		fp.gauge.View(),
		fp.renderStats(),
		fp.style.hotkeys.Render("[c] close  [a] close all  [r] refresh"),
	)
	return fp.style.container.Render(content)
}

func (fp *FocusPane) renderTitle() string {
	side := fp.style.short.Render(trader.DirectionLabel(*fp.position))
	if fp.position.IsLong() {
		side = fp.style.long.Render(trader.DirectionLabel(*fp.position))
	}
	return fp.style.title.Render(fp.position.InstID) + "  " + side
}

func (fp *FocusPane) renderStats() string {
	p := fp.position
	left := lipgloss.JoinVertical(
		lipgloss.Left,
		fmt.Sprintf("Entry: %s", p.AvgPx.String()),
		fmt.Sprintf("Mark:  %s", p.MarkPx.String()),
	)
	right := lipgloss.JoinVertical(
		lipgloss.Left,
		fmt.Sprintf("Margin: %s", trader.FormatCurrency(p.Margin)),
		fmt.Sprintf("Leverage: %sx %s", p.Lever.String(), p.MgnMode),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, fp.style.stats.Render(left), fp.style.stats.Render(right))
}

// GetHeight returns the component height for layout calculations
func (fp *FocusPane) GetHeight() int {
	if fp.position == nil {
		return 0
	}
	return 7
}
