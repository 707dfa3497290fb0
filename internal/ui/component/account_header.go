package component

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/okx-trader/internal/trader"
	"github.com/rovshanmuradov/okx-trader/internal/ui/state"
	"github.com/rovshanmuradov/okx-trader/internal/ui/style"
	"github.com/shopspring/decimal"
)

const equitySparkWidth = 20

// AccountHeader shows the trading mode, total PnL, equity and the time of
// the last successful refresh.
type AccountHeader struct {
	mode    string
	summary trader.Summary
	equity  decimal.Decimal
	updated time.Time
	loaded  bool
	stale   bool

	spark *Sparkline
	style style.HeaderStyles
	width int
}

// NewAccountHeader creates a header for the given mode label (LIVE or SANDBOX).
func NewAccountHeader(mode string) *AccountHeader {
	palette := style.DefaultPalette()
	return &AccountHeader{
		mode:  mode,
		spark: NewSparkline(equitySparkWidth).SetColor(palette.Info).ShowText(true),
		style: style.NewHeaderStyles(palette),
	}
}

// SetWidth sets the component width for responsive layout
func (h *AccountHeader) SetWidth(width int) {
	h.width = width
	if width > 4 {
		h.style.Container = h.style.Container.Width(width - 2)
	}
}

// Update copies the latest account figures from the store.
func (h *AccountHeader) Update(store *state.Store) {
	h.loaded = store.Loaded()
	h.stale = store.LastError() != nil
	h.summary = store.Summary()
	h.equity = store.Balance().TotalEq
	h.updated = store.UpdatedAt()
	h.spark.SetData(store.EquityHistory())
}

// View renders the header
func (h *AccountHeader) View() string {
	title := h.style.Title.Render("OKX Trader")

	parts := []string{title, h.renderBadge()}
	if !h.loaded {
		parts = append(parts, h.style.Label.Render("Waiting for first update..."))
	} else {
		parts = append(parts,
			h.renderPnL(),
			h.style.Label.Render("Equity: ")+trader.FormatCurrency(h.equity),
			h.spark.View(),
			h.style.Label.Render("Updated "+h.updated.Format("15:04:05")),
		)
	}
	if h.stale {
		parts = append(parts, h.style.Stale.Render("⚠ refresh failed"))
	}

	content := parts[0]
	for _, p := range parts[1:] {
		content = lipgloss.JoinHorizontal(lipgloss.Center, content, "  ", p)
	}
	return h.style.Container.Render(content)
}

func (h *AccountHeader) renderBadge() string {
	if h.mode == "LIVE" {
		return h.style.LiveBadge.Render(h.mode)
	}
	return h.style.DemoBadge.Render(h.mode)
}

func (h *AccountHeader) renderPnL() string {
	renderer := h.style.PnLNeutral
	switch h.summary.TotalUpl.Sign() {
	case 1:
		renderer = h.style.PnLPositive
	case -1:
		renderer = h.style.PnLNegative
	}
	text := fmt.Sprintf("PnL: %s (%s) on %d",
		trader.FormatCurrency(h.summary.TotalUpl),
		trader.FormatPercentage(h.summary.PnLRatio()),
		h.summary.Count)
	return renderer.Render(text)
}

// GetHeight returns the component height for layout calculations
func (h *AccountHeader) GetHeight() int {
	return 3
}
