package component

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/okx-trader/internal/ui/style"
)

// gaugeFullScale is the PnL on margin, in percent, that fills the bar.
const gaugeFullScale = 20.0

var gaugeBlocks = []string{"▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// PnLGauge renders PnL on margin as a bar followed by "+12.50% ↗".
type PnLGauge struct {
	value  float64 // percent, 12.5 means +12.5%
	width  int
	strong float64
}

func NewPnLGauge(width int) *PnLGauge {
	return &PnLGauge{width: width, strong: 5.0}
}

// SetValue sets the PnL percentage.
func (p *PnLGauge) SetValue(value float64) *PnLGauge {
	p.value = value
	return p
}

func (p *PnLGauge) SetWidth(width int) *PnLGauge {
	p.width = width
	return p
}

func (p *PnLGauge) View() string {
	palette := style.DefaultPalette()
	color := palette.TextMuted
	sign := ""
	switch {
	case p.value > 0:
		color, sign = palette.Success, "+"
	case p.value < 0:
		color, sign = palette.Error, "-"
	}

	text := fmt.Sprintf("%s%.2f%% %s", sign, math.Abs(p.value), p.arrow())
	return lipgloss.NewStyle().Foreground(color).Render(p.bar()) + " " +
		lipgloss.NewStyle().Foreground(color).Bold(true).Render(text)
}

func (p *PnLGauge) bar() string {
	if p.width <= 0 {
		return ""
	}

	abs := math.Abs(p.value)
	intensity := math.Min(abs/gaugeFullScale, 1.0)
	block := gaugeBlocks[int(intensity*float64(len(gaugeBlocks)-1))]

	filled := int(intensity * float64(p.width))
	if filled < 1 && abs > 0 {
		filled = 1
	}
	return strings.Repeat(block, filled) + strings.Repeat(gaugeBlocks[0], p.width-filled)
}

func (p *PnLGauge) arrow() string {
	switch {
	case p.value >= p.strong:
		return "↗"
	case p.value <= -p.strong:
		return "↘"
	case p.value > 0:
		return "↑"
	case p.value < 0:
		return "↓"
	default:
		return "→"
	}
}
