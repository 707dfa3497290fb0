package component

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/okx-trader/internal/okx"
	"github.com/rovshanmuradov/okx-trader/internal/trader"
	"github.com/rovshanmuradov/okx-trader/internal/ui/style"
)

// PositionHeaders are the positions table columns, in display order.
var PositionHeaders = []string{"Instrument", "Side", "Size", "Entry", "Mark", "PnL", "PnL%"}

// PositionRow renders one position as table cells.
func PositionRow(p okx.Position) []string {
	return []string{
		p.InstID,
		trader.DirectionLabel(p),
		p.Pos.Abs().String(),
		p.AvgPx.String(),
		p.MarkPx.String(),
		trader.FormatCurrency(p.Upl),
		trader.FormatPercentage(p.UplRatio),
	}
}

// NewPositionsTable creates the positions table used by the dashboard.
func NewPositionsTable() *Table {
	widths := []int{18, 7, 10, 12, 12, 14, 9}
	t := NewTable().SetEmptyText("No open positions")
	for i, h := range PositionHeaders {
		align := lipgloss.Right
		if i < 2 {
			align = lipgloss.Left
		}
		t.AddColumn(h, widths[i], align)
	}
	return t
}

// ShowPositions replaces the table rows, colouring each row by PnL sign.
func ShowPositions(t *Table, positions []okx.Position) {
	rows := make([][]string, len(positions))
	for i, p := range positions {
		rows[i] = PositionRow(p)
	}
	t.SetRows(rows)

	palette := style.DefaultPalette()
	base := lipgloss.NewStyle().Padding(0, 1)
	for i, p := range positions {
		t.SetRowStyle(i, base.Foreground(palette.SignColor(p.Upl)))
	}
}

// NewInstrumentsTable lists search results.
func NewInstrumentsTable() *Table {
	return NewTable().
		SetEmptyText("No pairs. Press / to search").
		AddColumn("Instrument", 20, lipgloss.Left).
		AddColumn("Lot", 8, lipgloss.Right).
		AddColumn("Min", 8, lipgloss.Right).
		AddColumn("Tick", 10, lipgloss.Right)
}

// ShowInstruments replaces the table rows with instruments.
func ShowInstruments(t *Table, instruments []okx.Instrument) {
	rows := make([][]string, len(instruments))
	for i, inst := range instruments {
		rows[i] = []string{inst.InstID, inst.LotSz.String(), inst.MinSz.String(), inst.TickSz.String()}
	}
	t.SetRows(rows)
}
