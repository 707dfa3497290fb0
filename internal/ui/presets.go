package ui

import (
	"fmt"

	"github.com/rovshanmuradov/okx-trader/internal/bot"
	"github.com/rovshanmuradov/okx-trader/internal/okx"
)

const (
	PresetLeverage      = 10
	DefaultManualMargin = "100"
)

// CloseAllWarning is shown before closing every position.
const CloseAllWarning = "Positions are closed one by one at market. " +
	"This is best-effort: failures are reported and there is no rollback."

// Preset is a one-key market order.
type Preset struct {
	Key      string
	Side     okx.Side
	Margin   string
	Leverage int
}

// Label is the button text, e.g. "BUY $300 10x".
func (p Preset) Label() string {
	side := "BUY"
	if p.Side == okx.SideSell {
		side = "SELL"
	}
	return fmt.Sprintf("%s $%s %dx", side, p.Margin, p.Leverage)
}

// Command builds the order for the selected instrument.
func (p Preset) Command(instID string) bot.PlaceOrderCommand {
	return bot.PlaceOrderCommand{
		InstID:    instID,
		Side:      p.Side,
		MarginUSD: p.Margin,
		Leverage:  p.Leverage,
	}
}

// DefaultPresets are bound to keys 1-3 (buy) and 4-6 (sell).
func DefaultPresets() []Preset {
	margins := []string{"300", "500", "1500"}
	presets := make([]Preset, 0, 2*len(margins))
	for i, m := range margins {
		presets = append(presets, Preset{Key: fmt.Sprint(i + 1), Side: okx.SideBuy, Margin: m, Leverage: PresetLeverage})
	}
	for i, m := range margins {
		presets = append(presets, Preset{Key: fmt.Sprint(i + 4), Side: okx.SideSell, Margin: m, Leverage: PresetLeverage})
	}
	return presets
}

// PresetForKey finds the preset bound to key.
func PresetForKey(presets []Preset, key string) (Preset, bool) {
	for _, p := range presets {
		if p.Key == key {
			return p, true
		}
	}
	return Preset{}, false
}

// LeverageIndex returns the position of lev in bot.LeverageChoices, or the
// position of PresetLeverage when lev is not offered.
func LeverageIndex(lev int) int {
	fallback := 0
	for i, choice := range bot.LeverageChoices {
		if choice == lev {
			return i
		}
		if choice == PresetLeverage {
			fallback = i
		}
	}
	return fallback
}
