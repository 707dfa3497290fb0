package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/okx-trader/internal/ui/style"
)

// Sparkline is a one-line graph of the most recent values
type Sparkline struct {
	data     []float64
	width    int
	style    lipgloss.Style
	color    lipgloss.Color
	showText bool
}

// NewSparkline creates a new sparkline component
func NewSparkline(width int) *Sparkline {
	return &Sparkline{
		data:     make([]float64, 0),
		width:    width,
		style:    lipgloss.NewStyle(),
		color:    style.DefaultPalette().Primary,
		showText: false,
	}
}

// SetData sets the data points, keeping the last width of them
func (s *Sparkline) SetData(data []float64) *Sparkline {
	if len(data) > s.width {
		data = data[len(data)-s.width:]
	}
	s.data = make([]float64, len(data))
	copy(s.data, data)
	return s
}

// SetColor sets the color for the sparkline
func (s *Sparkline) SetColor(color lipgloss.Color) *Sparkline {
	s.color = color
	return s
}

// ShowText enables/disables text display alongside the sparkline
func (s *Sparkline) ShowText(show bool) *Sparkline {
	s.showText = show
	return s
}

// View renders the sparkline
func (s *Sparkline) View() string {
	if len(s.data) == 0 {
		return s.style.Render(strings.Repeat("▁", s.width))
	}

	// Create the sparkline characters
	blocks := s.generateSparkBlocks()

	// Apply color styling
	styledBlocks := s.style.Foreground(s.color).Render(blocks)

	if s.showText && len(s.data) > 0 {
		// Add current value and trend information
		current := s.data[len(s.data)-1]
		var trend string
		var trendColor lipgloss.Color

		if len(s.data) >= 2 {
			prev := s.data[len(s.data)-2]
			if current > prev {
				trend = "↗"
				trendColor = style.DefaultPalette().Success
			} else if current < prev {
				trend = "↘"
				trendColor = style.DefaultPalette().Error
			} else {
				trend = "→"
				trendColor = style.DefaultPalette().TextMuted
			}
		}

		trendStyled := lipgloss.NewStyle().Foreground(trendColor).Render(trend)
		return styledBlocks + " " + trendStyled
	}

	return styledBlocks
}

// generateSparkBlocks creates the spark characters based on data
func (s *Sparkline) generateSparkBlocks() string {
	if len(s.data) == 0 {
		return strings.Repeat("▁", s.width)
	}

	// Find min and max values for normalization
	min, max := s.getMinMax()

	// If all values are the same, show a flat line
	if min == max {
		return strings.Repeat("▄", minInt(len(s.data), s.width))
	}

	// Spark characters from lowest to highest
	sparkChars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	var result strings.Builder
	written := 0

	// Generate characters for each data point
	for i, value := range s.data {
		if i >= s.width {
			break
		}

		// Normalize value to 0-7 range for spark characters
		normalized := (value - min) / (max - min)
		index := int(normalized * float64(len(sparkChars)-1))

		// Ensure index is within bounds
		if index < 0 {
			index = 0
		} else if index >= len(sparkChars) {
			index = len(sparkChars) - 1
		}

		result.WriteRune(sparkChars[index])
		written++
	}

	// Pad with spaces if we have fewer data points than width
	for ; written < s.width; written++ {
		result.WriteRune(' ')
	}

	return result.String()
}

// getMinMax finds the minimum and maximum values in the data
func (s *Sparkline) getMinMax() (float64, float64) {
	if len(s.data) == 0 {
		return 0, 0
	}

	min := s.data[0]
	max := s.data[0]

	for _, value := range s.data {
		if value < min {
			min = value
		}
		if value > max {
			max = value
		}
	}

	return min, max
}

// minInt helper function
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
