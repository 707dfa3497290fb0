package trader

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rovshanmuradov/okx-trader/internal/okx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type orderReply struct {
	ack okx.OrderAck
	err error
}

// fakeGateway records every call and replays scripted order replies.
type fakeGateway struct {
	mu sync.Mutex

	instruments  []okx.Instrument
	instErr      error
	ticker       okx.Ticker
	tickerErr    error
	config       okx.AccountConfig
	configErr    error
	positions    []okx.Position
	positionsSeq [][]okx.Position
	positionsErr error
	modeErr      error
	replies      []orderReply

	orders       []okx.OrderRequest
	modeSwitches []okx.PositionMode
	leverage     []int
	calls        map[string]int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		config: okx.AccountConfig{PosMode: okx.NetMode},
		calls:  make(map[string]int),
	}
}

func (f *fakeGateway) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeGateway) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeGateway) Instruments(_ context.Context, _, instID string) ([]okx.Instrument, error) {
	f.hit("instruments")
	if f.instErr != nil {
		return nil, f.instErr
	}
	if instID == "" {
		return f.instruments, nil
	}
	for _, inst := range f.instruments {
		if inst.InstID == instID {
			return []okx.Instrument{inst}, nil
		}
	}
	return nil, nil
}

func (f *fakeGateway) Ticker(_ context.Context, _ string) (okx.Ticker, error) {
	f.hit("ticker")
	return f.ticker, f.tickerErr
}

func (f *fakeGateway) AccountConfig(_ context.Context) (okx.AccountConfig, error) {
	f.hit("config")
	return f.config, f.configErr
}

func (f *fakeGateway) SetLeverage(_ context.Context, instID string, lever int, mgnMode string) (okx.Leverage, error) {
	f.hit("leverage")
	f.leverage = append(f.leverage, lever)
	return okx.Leverage{InstID: instID, Lever: decimal.NewFromInt(int64(lever)), MgnMode: mgnMode}, nil
}

func (f *fakeGateway) SetPositionMode(_ context.Context, mode okx.PositionMode) (okx.PositionMode, error) {
	f.hit("mode")
	if f.modeErr != nil {
		return "", f.modeErr
	}
	f.modeSwitches = append(f.modeSwitches, mode)
	return mode, nil
}

func (f *fakeGateway) PlaceOrder(_ context.Context, req okx.OrderRequest) (okx.OrderAck, error) {
	f.hit("order")
	f.orders = append(f.orders, req)
	if len(f.replies) == 0 {
		return okx.OrderAck{OrdID: "ord-" + req.InstID, SCode: "0"}, nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply.ack, reply.err
}

func (f *fakeGateway) Positions(_ context.Context) ([]okx.Position, error) {
	f.hit("positions")
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.positionsSeq) > 0 {
		f.positions = f.positionsSeq[0]
		f.positionsSeq = f.positionsSeq[1:]
	}
	return f.positions, f.positionsErr
}

func (f *fakeGateway) Balance(_ context.Context) (okx.Balance, error) {
	f.hit("balance")
	return okx.Balance{TotalEq: decimal.NewFromInt(1000)}, nil
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func pos(instID string, size string, side okx.PosSide) okx.Position {
	return okx.Position{InstID: instID, Pos: d(size), PosSide: side}
}

func posSideErr() error {
	return &okx.APIError{Code: "1", Msg: "All operations failed", SCode: "51000", SMsg: "Parameter posSide error"}
}

func newTestClient(t *testing.T, gw *fakeGateway) *Client {
	return New(gw, zaptest.NewLogger(t))
}

func TestCalcContracts(t *testing.T) {
	tests := []struct {
		name                    string
		margin, lev, price, lot string
		want                    string
	}{
		{"example from desk", "300", "10", "150", "1", "20"},
		{"floored to one lot", "1", "1", "1000", "1", "1"},
		{"fractional lot", "100", "5", "33", "0.1", "15.2"},
		{"tie rounds to even down", "25", "1", "10", "1", "2"},
		{"tie rounds to even up", "35", "1", "10", "1", "4"},
		{"large lot", "500", "10", "2", "100", "2500"},
		{"just under a tie", "3.49999999999999999", "1", "1", "1", "3"},
		{"just over a tie", "2.50000000000000001", "1", "1", "1", "3"},
		{"tie across price and lot", "7", "1", "4", "0.5", "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CalcContracts(d(tt.margin), d(tt.lev), d(tt.price), d(tt.lot))
			require.True(t, ok)
			assert.True(t, d(tt.want).Equal(got), "got %s want %s", got, tt.want)
		})
	}
}

func TestCalcContractsIsWholeLotsAndAtLeastOne(t *testing.T) {
	margins := []string{"0.01", "1", "7.5", "300", "12345.67"}
	leverages := []string{"1", "3", "10", "100"}
	prices := []string{"0.0001", "0.37", "150", "65000"}
	lots := []string{"0.001", "0.1", "1", "10"}

	for _, m := range margins {
		for _, l := range leverages {
			for _, p := range prices {
				for _, lot := range lots {
					got, ok := CalcContracts(d(m), d(l), d(p), d(lot))
					require.True(t, ok)
					assert.True(t, got.GreaterThanOrEqual(d(lot)), "%s %s %s %s -> %s", m, l, p, lot, got)
					assert.True(t, got.Mod(d(lot)).IsZero(), "%s not a multiple of %s", got, lot)
				}
			}
		}
	}
}

func TestCalcContractsRejectsBadInputs(t *testing.T) {
	_, ok := CalcContracts(d("100"), d("10"), decimal.Zero, d("1"))
	assert.False(t, ok)
	_, ok = CalcContracts(d("100"), d("10"), d("5"), decimal.Zero)
	assert.False(t, ok)
}

func TestSearchPair(t *testing.T) {
	gw := newFakeGateway()
	gw.instruments = []okx.Instrument{
		{InstID: "SOL-USDT-SWAP", QuoteCcy: "USDT"},
		{InstID: "ETH-USDT-SWAP", QuoteCcy: "USDT"},
		{InstID: "SOLANA-USD-SWAP", QuoteCcy: "USD"},
	}
	c := newTestClient(t, gw)

	found, err := c.SearchPair(context.Background(), "sol")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "SOL-USDT-SWAP", found[0].InstID)

	none, err := c.SearchPair(context.Background(), "doge")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestSearchPairBlankQueryMakesNoCall(t *testing.T) {
	gw := newFakeGateway()
	c := newTestClient(t, gw)

	found, err := c.SearchPair(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.Zero(t, gw.total())
}

func TestSearchPairPropagatesError(t *testing.T) {
	gw := newFakeGateway()
	gw.instErr = errors.New("network down")
	c := newTestClient(t, gw)

	_, err := c.SearchPair(context.Background(), "btc")
	assert.EqualError(t, err, "network down")
}

func TestCurrentPrice(t *testing.T) {
	gw := newFakeGateway()
	gw.ticker = okx.Ticker{InstID: "SOL-USDT-SWAP", Last: d("151.25")}
	c := newTestClient(t, gw)

	price, ok := c.CurrentPrice(context.Background(), "SOL-USDT-SWAP")
	require.True(t, ok)
	assert.Equal(t, "151.25", price.String())

	gw.tickerErr = okx.ErrNoData
	_, ok = c.CurrentPrice(context.Background(), "SOL-USDT-SWAP")
	assert.False(t, ok)
}

func TestPositionSize(t *testing.T) {
	gw := newFakeGateway()
	gw.instruments = []okx.Instrument{{InstID: "SOL-USDT-SWAP", QuoteCcy: "USDT", CtVal: d("1"), LotSz: d("1")}}
	c := newTestClient(t, gw)

	size, ok := c.PositionSize(context.Background(), "SOL-USDT-SWAP", d("300"), 10, d("150"))
	require.True(t, ok)
	assert.Equal(t, "20", size.String())

	_, ok = c.PositionSize(context.Background(), "UNKNOWN-USDT-SWAP", d("300"), 10, d("150"))
	assert.False(t, ok)
}

func TestPlaceMarketOrderPosSideByMode(t *testing.T) {
	tests := []struct {
		name      string
		config    okx.AccountConfig
		configErr error
		side      okx.Side
		want      okx.PosSide
	}{
		{"net mode buy", okx.AccountConfig{PosMode: okx.NetMode}, nil, okx.SideBuy, okx.PosSideNet},
		{"long short buy", okx.AccountConfig{PosMode: okx.LongShortMode}, nil, okx.SideBuy, okx.PosSideLong},
		{"long short sell", okx.AccountConfig{PosMode: okx.LongShortMode}, nil, okx.SideSell, okx.PosSideShort},
		{"config unavailable", okx.AccountConfig{}, errors.New("timeout"), okx.SideSell, okx.PosSideNet},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := newFakeGateway()
			gw.config = tt.config
			gw.configErr = tt.configErr
			c := newTestClient(t, gw)

			res := c.PlaceMarketOrder(context.Background(), "SOL-USDT-SWAP", tt.side, "20", 10)
			require.True(t, res.Success, res.Error)
			assert.Equal(t, "ord-SOL-USDT-SWAP", res.OrderID)
			require.Len(t, gw.orders, 1)
			assert.Equal(t, tt.want, gw.orders[0].PosSide)
			assert.Equal(t, okx.MarginCross, gw.orders[0].TdMode)
			assert.Equal(t, okx.OrdTypeMarket, gw.orders[0].OrdType)
			assert.Equal(t, []int{10}, gw.leverage)
		})
	}
}

func TestPlaceMarketOrderWithoutLeverage(t *testing.T) {
	gw := newFakeGateway()
	c := newTestClient(t, gw)

	res := c.PlaceMarketOrder(context.Background(), "SOL-USDT-SWAP", okx.SideBuy, "1", 0)
	assert.True(t, res.Success)
	assert.Zero(t, gw.calls["leverage"])
}

func TestPlaceMarketOrderPosSideRetrySucceeds(t *testing.T) {
	gw := newFakeGateway()
	gw.config = okx.AccountConfig{PosMode: okx.LongShortMode}
	gw.replies = []orderReply{
		{err: posSideErr()},
		{ack: okx.OrderAck{OrdID: "42", SCode: "0"}},
	}
	c := newTestClient(t, gw)

	res := c.PlaceMarketOrder(context.Background(), "SOL-USDT-SWAP", okx.SideBuy, "20", 10)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "42", res.OrderID)
	require.Len(t, gw.orders, 2)
	assert.Equal(t, okx.PosSideLong, gw.orders[0].PosSide)
	assert.Equal(t, okx.PosSideNet, gw.orders[1].PosSide)
	assert.Equal(t, []okx.PositionMode{okx.NetMode}, gw.modeSwitches)
}

func TestPlaceMarketOrderRetriesExactlyOnce(t *testing.T) {
	gw := newFakeGateway()
	gw.config = okx.AccountConfig{PosMode: okx.LongShortMode}
	gw.replies = []orderReply{
		{err: posSideErr()},
		{err: posSideErr()},
		{ack: okx.OrderAck{OrdID: "never"}},
	}
	c := newTestClient(t, gw)

	res := c.PlaceMarketOrder(context.Background(), "SOL-USDT-SWAP", okx.SideSell, "5", 0)
	assert.False(t, res.Success)
	assert.Equal(t, "Parameter posSide error", res.Error)
	assert.Len(t, gw.orders, 2)
	assert.Len(t, gw.modeSwitches, 1)
}

func TestPlaceMarketOrderSecondFailureIsVerbatim(t *testing.T) {
	gw := newFakeGateway()
	gw.replies = []orderReply{
		{err: posSideErr()},
		{err: &okx.APIError{Code: "1", SCode: "51008", SMsg: "Order failed. Insufficient USDT margin in account"}},
	}
	c := newTestClient(t, gw)

	res := c.PlaceMarketOrder(context.Background(), "SOL-USDT-SWAP", okx.SideBuy, "20", 0)
	assert.False(t, res.Success)
	assert.Equal(t, "Order failed. Insufficient USDT margin in account", res.Error)
	assert.Len(t, gw.orders, 2)
}

func TestPlaceMarketOrderOtherErrorsAreNotRetried(t *testing.T) {
	gw := newFakeGateway()
	gw.replies = []orderReply{
		{err: &okx.APIError{Code: "1", SCode: "51001", SMsg: "Instrument ID does not exist"}},
	}
	c := newTestClient(t, gw)

	res := c.PlaceMarketOrder(context.Background(), "NOPE-USDT-SWAP", okx.SideBuy, "1", 0)
	assert.False(t, res.Success)
	assert.Equal(t, "Instrument ID does not exist", res.Error)
	assert.Len(t, gw.orders, 1)
	assert.Zero(t, gw.calls["mode"])
}

func TestPlaceMarketOrderModeSwitchFailure(t *testing.T) {
	gw := newFakeGateway()
	gw.modeErr = errors.New("positions open, cannot switch")
	gw.replies = []orderReply{{err: posSideErr()}}
	c := newTestClient(t, gw)

	res := c.PlaceMarketOrder(context.Background(), "SOL-USDT-SWAP", okx.SideBuy, "1", 0)
	assert.False(t, res.Success)
	assert.Equal(t, "Parameter posSide error", res.Error)
	assert.Len(t, gw.orders, 1)
}

func TestClosePositionNetMode(t *testing.T) {
	tests := []struct {
		size     string
		wantSide okx.Side
		wantSz   string
	}{
		{"3", okx.SideSell, "3"},
		{"-2.5", okx.SideBuy, "2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.size, func(t *testing.T) {
			gw := newFakeGateway()
			gw.positions = []okx.Position{pos("SOL-USDT-SWAP", tt.size, okx.PosSideNet)}
			c := newTestClient(t, gw)

			res := c.ClosePosition(context.Background(), "SOL-USDT-SWAP")
			require.True(t, res.Success, res.Error)
			require.Len(t, gw.orders, 1)
			assert.Equal(t, tt.wantSide, gw.orders[0].Side)
			assert.Equal(t, okx.PosSideNet, gw.orders[0].PosSide)
			assert.Equal(t, tt.wantSz, gw.orders[0].Size)
			assert.Equal(t, okx.MarginCross, gw.orders[0].TdMode)
		})
	}
}

func TestClosePositionLongShortMode(t *testing.T) {
	gw := newFakeGateway()
	gw.config = okx.AccountConfig{PosMode: okx.LongShortMode}
	gw.positions = []okx.Position{
		pos("BTC-USDT-SWAP", "2", okx.PosSideLong),
		pos("ETH-USDT-SWAP", "4", okx.PosSideShort),
	}
	c := newTestClient(t, gw)

	require.True(t, c.ClosePosition(context.Background(), "BTC-USDT-SWAP").Success)
	require.True(t, c.ClosePosition(context.Background(), "ETH-USDT-SWAP").Success)

	require.Len(t, gw.orders, 2)
	assert.Equal(t, okx.SideSell, gw.orders[0].Side)
	assert.Equal(t, okx.PosSideLong, gw.orders[0].PosSide)
	assert.Equal(t, okx.SideBuy, gw.orders[1].Side)
	assert.Equal(t, okx.PosSideShort, gw.orders[1].PosSide)
	assert.Equal(t, 2, gw.calls["config"])
}

func TestClosePositionNotFound(t *testing.T) {
	gw := newFakeGateway()
	gw.positions = []okx.Position{pos("BTC-USDT-SWAP", "0", okx.PosSideNet)}
	c := newTestClient(t, gw)

	res := c.ClosePosition(context.Background(), "BTC-USDT-SWAP")
	assert.False(t, res.Success)
	assert.Equal(t, "position not found", res.Error)
	assert.Empty(t, gw.orders)
}

func TestCloseAllEmptyMakesNoFurtherCalls(t *testing.T) {
	gw := newFakeGateway()
	c := newTestClient(t, gw)

	res := c.CloseAllPositions(context.Background())
	assert.True(t, res.Success)
	assert.Empty(t, res.Results)
	assert.Equal(t, 1, gw.calls["positions"])
	assert.Equal(t, 1, gw.total())
}

func TestCloseAllPartialFailure(t *testing.T) {
	gw := newFakeGateway()
	gw.positions = []okx.Position{
		pos("BTC-USDT-SWAP", "1", okx.PosSideNet),
		pos("ETH-USDT-SWAP", "-3", okx.PosSideNet),
		pos("SOL-USDT-SWAP", "20", okx.PosSideNet),
	}
	gw.replies = []orderReply{
		{ack: okx.OrderAck{OrdID: "1"}},
		{err: &okx.APIError{Code: "1", SCode: "51020", SMsg: "Order amount exceeds limit"}},
		{ack: okx.OrderAck{OrdID: "3"}},
	}
	c := newTestClient(t, gw)

	res := c.CloseAllPositions(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, "Closed positions: 2/3", res.Message)
	require.Len(t, res.Results, 3)
	assert.Len(t, gw.orders, 3)
	assert.Equal(t, 4, gw.calls["positions"])

	failedCloses := res.Failed()
	require.Len(t, failedCloses, 1)
	assert.Equal(t, "ETH-USDT-SWAP", failedCloses[0].InstID)
	assert.Equal(t, "Order amount exceeds limit", failedCloses[0].Error)
	assert.True(t, res.Results[0].Success)
	assert.True(t, res.Results[2].Success)
}

func TestCloseAllUsesLiveSizes(t *testing.T) {
	gw := newFakeGateway()
	gw.positionsSeq = [][]okx.Position{
		{pos("BTC-USDT-SWAP", "3", okx.PosSideNet), pos("ETH-USDT-SWAP", "-2", okx.PosSideNet), pos("SOL-USDT-SWAP", "5", okx.PosSideNet)},
		{pos("BTC-USDT-SWAP", "1", okx.PosSideNet), pos("ETH-USDT-SWAP", "-2", okx.PosSideNet), pos("SOL-USDT-SWAP", "5", okx.PosSideNet)},
		{pos("SOL-USDT-SWAP", "5", okx.PosSideNet)},
		{pos("SOL-USDT-SWAP", "4", okx.PosSideNet)},
	}
	c := newTestClient(t, gw)

	res := c.CloseAllPositions(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, "Closed positions: 2/3", res.Message)

	require.Len(t, gw.orders, 2)
	assert.Equal(t, "BTC-USDT-SWAP", gw.orders[0].InstID)
	assert.Equal(t, "1", gw.orders[0].Size)
	assert.Equal(t, "SOL-USDT-SWAP", gw.orders[1].InstID)
	assert.Equal(t, "4", gw.orders[1].Size)

	failedCloses := res.Failed()
	require.Len(t, failedCloses, 1)
	assert.Equal(t, "ETH-USDT-SWAP", failedCloses[0].InstID)
	assert.Equal(t, "position not found", failedCloses[0].Error)
}

func TestCloseAllHedgeModeClosesBothSides(t *testing.T) {
	gw := newFakeGateway()
	gw.config = okx.AccountConfig{PosMode: okx.LongShortMode}
	gw.positions = []okx.Position{
		pos("BTC-USDT-SWAP", "2", okx.PosSideLong),
		pos("BTC-USDT-SWAP", "3", okx.PosSideShort),
	}
	c := newTestClient(t, gw)

	res := c.CloseAllPositions(context.Background())
	require.True(t, res.Success)
	require.Len(t, gw.orders, 2)
	assert.Equal(t, okx.PosSideLong, gw.orders[0].PosSide)
	assert.Equal(t, "2", gw.orders[0].Size)
	assert.Equal(t, okx.PosSideShort, gw.orders[1].PosSide)
	assert.Equal(t, "3", gw.orders[1].Size)
}

func TestCloseAllSnapshotError(t *testing.T) {
	gw := newFakeGateway()
	gw.positionsErr = errors.New("unauthorized")
	c := newTestClient(t, gw)

	res := c.CloseAllPositions(context.Background())
	assert.False(t, res.Success)
	assert.Equal(t, "unauthorized", res.Message)
}

func TestPositionsFiltersZeroSize(t *testing.T) {
	gw := newFakeGateway()
	gw.positions = []okx.Position{
		pos("BTC-USDT-SWAP", "0", okx.PosSideNet),
		pos("ETH-USDT-SWAP", "-1", okx.PosSideNet),
	}
	c := newTestClient(t, gw)

	open, err := c.Positions(context.Background())
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "ETH-USDT-SWAP", open[0].InstID)
}
