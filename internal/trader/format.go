package trader

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/rovshanmuradov/okx-trader/internal/okx"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// FormatCurrency renders an amount as "$1,234.56".
func FormatCurrency(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return "$" + humanize.FormatFloat("#,###.##", f)
}

// FormatPercentage renders a ratio (0.1234) as a signed percentage ("+12.34%").
func FormatPercentage(ratio decimal.Decimal) string {
	pct := ratio.Mul(hundred)
	sign := ""
	if !pct.IsNegative() {
		sign = "+"
	}
	return fmt.Sprintf("%s%s%%", sign, pct.StringFixed(2))
}

// Summary aggregates unrealized PnL over a positions snapshot.
type Summary struct {
	Count       int
	TotalUpl    decimal.Decimal
	TotalMargin decimal.Decimal
}

// PnLRatio is total PnL over total margin, zero when no margin is reported.
func (s Summary) PnLRatio() decimal.Decimal {
	if !s.TotalMargin.IsPositive() {
		return decimal.Zero
	}
	return s.TotalUpl.Div(s.TotalMargin)
}

func Summarize(positions []okx.Position) Summary {
	s := Summary{Count: len(positions)}
	for _, p := range positions {
		s.TotalUpl = s.TotalUpl.Add(p.Upl)
		s.TotalMargin = s.TotalMargin.Add(p.Margin)
	}
	return s
}

// DirectionLabel is LONG or SHORT per Position.IsLong.
func DirectionLabel(p okx.Position) string {
	if p.IsLong() {
		return "LONG"
	}
	return "SHORT"
}
