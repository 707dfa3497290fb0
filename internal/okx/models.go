package okx

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PositionMode string

const (
	NetMode       PositionMode = "net_mode"
	LongShortMode PositionMode = "long_short_mode"
)

type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

type PosSide string

const (
	PosSideNet   PosSide = "net"
	PosSideLong  PosSide = "long"
	PosSideShort PosSide = "short"
)

const (
	InstTypeSwap  = "SWAP"
	MarginCross   = "cross"
	OrdTypeMarket = "market"
)

// Instrument is a tradable contract and its sizing metadata.
type Instrument struct {
	InstID    string
	InstType  string
	CtVal     decimal.Decimal
	CtValCcy  string
	QuoteCcy  string
	SettleCcy string
	TickSz    decimal.Decimal
	LotSz     decimal.Decimal
	MinSz     decimal.Decimal
	State     string
}

type Ticker struct {
	InstID string
	Last   decimal.Decimal
	Ts     time.Time
}

type AccountConfig struct {
	UID      string
	AcctLv   string
	PosMode  PositionMode
	AutoLoan bool
}

// Position is one open position as reported by the exchange.
type Position struct {
	InstID      string
	PosSide     PosSide
	MgnMode     string
	Pos         decimal.Decimal
	AvgPx       decimal.Decimal
	MarkPx      decimal.Decimal
	Upl         decimal.Decimal
	UplRatio    decimal.Decimal
	NotionalUsd decimal.Decimal
	Lever       decimal.Decimal
	Margin      decimal.Decimal
}

// IsLong reports the position direction. In long/short mode pos is
// unsigned, so posSide decides; in net mode the sign of pos does.
func (p Position) IsLong() bool {
	switch p.PosSide {
	case PosSideLong:
		return true
	case PosSideShort:
		return false
	}
	return p.Pos.IsPositive()
}

type BalanceDetail struct {
	Ccy      string
	Eq       decimal.Decimal
	AvailBal decimal.Decimal
	Upl      decimal.Decimal
}

type Balance struct {
	TotalEq decimal.Decimal
	AvailEq decimal.Decimal
	Upl     decimal.Decimal
	Details []BalanceDetail
}

type Leverage struct {
	InstID  string
	Lever   decimal.Decimal
	MgnMode string
}

// OrderRequest is a single order submission.
type OrderRequest struct {
	InstID  string
	TdMode  string
	Side    Side
	PosSide PosSide
	OrdType string
	Size    string
	ClOrdID string
}

type OrderAck struct {
	OrdID   string
	ClOrdID string
	SCode   string
	SMsg    string
}

// Wire shapes. OKX encodes every number as a string.

type instrumentWire struct {
	InstID    string `json:"instId"`
	InstType  string `json:"instType"`
	CtVal     string `json:"ctVal"`
	CtValCcy  string `json:"ctValCcy"`
	QuoteCcy  string `json:"quoteCcy"`
	SettleCcy string `json:"settleCcy"`
	TickSz    string `json:"tickSz"`
	LotSz     string `json:"lotSz"`
	MinSz     string `json:"minSz"`
	State     string `json:"state"`
}

type tickerWire struct {
	InstID string `json:"instId"`
	Last   string `json:"last"`
	Ts     string `json:"ts"`
}

type accountConfigWire struct {
	UID      string `json:"uid"`
	AcctLv   string `json:"acctLv"`
	PosMode  string `json:"posMode"`
	AutoLoan bool   `json:"autoLoan"`
}

type positionWire struct {
	InstID      string `json:"instId"`
	PosSide     string `json:"posSide"`
	MgnMode     string `json:"mgnMode"`
	Pos         string `json:"pos"`
	AvgPx       string `json:"avgPx"`
	MarkPx      string `json:"markPx"`
	Upl         string `json:"upl"`
	UplRatio    string `json:"uplRatio"`
	NotionalUsd string `json:"notionalUsd"`
	Lever       string `json:"lever"`
	Margin      string `json:"margin"`
	Imr         string `json:"imr"`
}

type balanceWire struct {
	TotalEq string `json:"totalEq"`
	AvailEq string `json:"availEq"`
	Upl     string `json:"upl"`
	Details []struct {
		Ccy      string `json:"ccy"`
		Eq       string `json:"eq"`
		AvailBal string `json:"availBal"`
		Upl      string `json:"upl"`
	} `json:"details"`
}

type leverageWire struct {
	InstID  string `json:"instId"`
	Lever   string `json:"lever"`
	MgnMode string `json:"mgnMode"`
}

type positionModeWire struct {
	PosMode string `json:"posMode"`
}

type orderWire struct {
	InstID  string `json:"instId"`
	TdMode  string `json:"tdMode"`
	Side    string `json:"side"`
	PosSide string `json:"posSide,omitempty"`
	OrdType string `json:"ordType"`
	Sz      string `json:"sz"`
	ClOrdID string `json:"clOrdId,omitempty"`
}

type orderAckWire struct {
	OrdID   string `json:"ordId"`
	ClOrdID string `json:"clOrdId"`
	SCode   string `json:"sCode"`
	SMsg    string `json:"sMsg"`
}

func toInstrument(w instrumentWire) Instrument {
	quote := w.QuoteCcy
	if quote == "" {
		// Swaps leave quoteCcy empty; the id is BASE-QUOTE-SWAP.
		if parts := strings.Split(w.InstID, "-"); len(parts) >= 2 {
			quote = parts[1]
		}
	}
	return Instrument{
		InstID:    w.InstID,
		InstType:  w.InstType,
		CtVal:     dec(w.CtVal),
		CtValCcy:  w.CtValCcy,
		QuoteCcy:  quote,
		SettleCcy: w.SettleCcy,
		TickSz:    dec(w.TickSz),
		LotSz:     dec(w.LotSz),
		MinSz:     dec(w.MinSz),
		State:     w.State,
	}
}

func toTicker(w tickerWire) Ticker {
	return Ticker{
		InstID: w.InstID,
		Last:   dec(w.Last),
		Ts:     time.UnixMilli(parseInt64(w.Ts)),
	}
}

func toAccountConfig(w accountConfigWire) AccountConfig {
	return AccountConfig{
		UID:      w.UID,
		AcctLv:   w.AcctLv,
		PosMode:  PositionMode(w.PosMode),
		AutoLoan: w.AutoLoan,
	}
}

func toPosition(w positionWire) Position {
	margin := dec(w.Margin)
	if margin.IsZero() {
		margin = dec(w.Imr)
	}
	return Position{
		InstID:      w.InstID,
		PosSide:     PosSide(w.PosSide),
		MgnMode:     w.MgnMode,
		Pos:         dec(w.Pos),
		AvgPx:       dec(w.AvgPx),
		MarkPx:      dec(w.MarkPx),
		Upl:         dec(w.Upl),
		UplRatio:    dec(w.UplRatio),
		NotionalUsd: dec(w.NotionalUsd),
		Lever:       dec(w.Lever),
		Margin:      margin,
	}
}

func toBalance(w balanceWire) Balance {
	b := Balance{
		TotalEq: dec(w.TotalEq),
		AvailEq: dec(w.AvailEq),
		Upl:     dec(w.Upl),
	}
	for _, d := range w.Details {
		b.Details = append(b.Details, BalanceDetail{
			Ccy:      d.Ccy,
			Eq:       dec(d.Eq),
			AvailBal: dec(d.AvailBal),
			Upl:      dec(d.Upl),
		})
	}
	return b
}

func toOrderWire(req OrderRequest) orderWire {
	return orderWire{
		InstID:  req.InstID,
		TdMode:  req.TdMode,
		Side:    string(req.Side),
		PosSide: string(req.PosSide),
		OrdType: req.OrdType,
		Sz:      req.Size,
		ClOrdID: req.ClOrdID,
	}
}

func dec(value string) decimal.Decimal {
	if value == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseInt64(v string) int64 {
	n, _ := strconv.ParseInt(v, 10, 64)
	return n
}
