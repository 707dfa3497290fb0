package ui

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rovshanmuradov/okx-trader/internal/bot"
	"github.com/rovshanmuradov/okx-trader/internal/logger"
	"github.com/rovshanmuradov/okx-trader/internal/monitor"
	"github.com/rovshanmuradov/okx-trader/internal/okx"
	"github.com/rovshanmuradov/okx-trader/internal/ui/state"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeSender struct {
	mu   sync.Mutex
	out  bot.Outcome
	err  error
	sent []bot.TradingCommand
}

func (f *fakeSender) Send(_ context.Context, cmd bot.TradingCommand) (bot.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, cmd)
	return f.out, f.err
}

func (f *fakeSender) Sent() []bot.TradingCommand {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bot.TradingCommand(nil), f.sent...)
}

type fakeFeed struct {
	updates  chan monitor.Snapshot
	started  int
	stopped  int
	refresh  int
	startErr error
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{updates: make(chan monitor.Snapshot, 1)}
}

func (f *fakeFeed) Start(context.Context) error {
	f.started++
	return f.startErr
}

func (f *fakeFeed) Updates() <-chan monitor.Snapshot { return f.updates }
func (f *fakeFeed) RefreshNow()                      { f.refresh++ }

func (f *fakeFeed) Stop(time.Duration) error {
	f.stopped++
	return nil
}

func newTestSession(t *testing.T, sender *fakeSender, feed *fakeFeed) (*Session, *logger.LogBuffer) {
	buf, err := logger.NewLogBuffer(100)
	require.NoError(t, err)
	log, err := logger.CreateTUILogger(true, buf, nil)
	require.NoError(t, err)

	var snapshotFeed SnapshotFeed
	if feed != nil {
		snapshotFeed = feed
	}
	return NewSession(SessionConfig{
		Commands: sender,
		Feed:     snapshotFeed,
		Logs:     buf,
		Logger:   log,
		Mode:     "SANDBOX",
	}), buf
}

func TestSessionFeedLifecycle(t *testing.T) {
	feed := newFakeFeed()
	s, _ := newTestSession(t, &fakeSender{}, feed)

	cmd := s.StartFeed()
	require.NotNil(t, cmd)
	assert.Equal(t, 1, feed.started)

	feed.updates <- monitor.Snapshot{Balance: okx.Balance{TotalEq: decimal.NewFromInt(500)}}
	msg, ok := cmd().(SnapshotMsg)
	require.True(t, ok)

	next := s.Apply(msg)
	assert.NotNil(t, next)
	assert.True(t, s.Store().Loaded())
	assert.Equal(t, "500", s.Store().Balance().TotalEq.String())

	s.Refresh()
	assert.Equal(t, 1, feed.refresh)

	s.StopFeed()
	assert.Equal(t, 1, feed.stopped)

	close(feed.updates)
	assert.IsType(t, FeedClosedMsg{}, next())
}

func TestSessionStartFeedFailure(t *testing.T) {
	feed := newFakeFeed()
	feed.startErr = monitor.ErrPollerStopped
	s, _ := newTestSession(t, &fakeSender{}, feed)

	assert.Nil(t, s.StartFeed())

	feed.startErr = monitor.ErrPollerRunning
	assert.NotNil(t, s.StartFeed())
}

func TestSessionWithoutFeed(t *testing.T) {
	s, _ := newTestSession(t, &fakeSender{}, nil)
	assert.Nil(t, s.StartFeed())
	assert.Nil(t, s.Listen())
	s.Refresh()
	s.StopFeed()
}

func TestSessionSendReportsOutcome(t *testing.T) {
	sender := &fakeSender{out: bot.Outcome{
		Success: true,
		Price:   decimal.NewFromInt(150),
		Message: "Order placed: BUY 20 SOL-USDT-SWAP ($300.00 margin, 10x)",
	}}
	s, buf := newTestSession(t, sender, nil)

	cmd := s.Send(DefaultPresets()[0].Command("SOL-USDT-SWAP"))
	require.NotNil(t, cmd)
	assert.True(t, s.Busy())
	assert.Nil(t, s.Send(bot.CloseAllCommand{}), "second action while busy")

	msg := cmd().(OutcomeMsg)
	assert.Equal(t, "place_order", msg.Command)
	assert.Equal(t, "SOL-USDT-SWAP", msg.Target)

	notice := s.Report(msg)
	assert.False(t, s.Busy())
	assert.Equal(t, state.NoticeSuccess, notice.Level)
	assert.Equal(t, notice, s.Store().Notice())

	price, ok := s.Store().Price("SOL-USDT-SWAP")
	require.True(t, ok)
	assert.Equal(t, "150", price)

	logs := buf.GetRecentLogs(10)
	require.NotEmpty(t, logs)
	last := logs[len(logs)-1]
	assert.Equal(t, "info", last.Level)
	assert.Equal(t, "Order placed: BUY 20 SOL-USDT-SWAP ($300.00 margin, 10x)", last.Message)
	assert.Len(t, sender.Sent(), 1)
}

func TestSessionValidationNeverReachesBus(t *testing.T) {
	sender := &fakeSender{}
	s, buf := newTestSession(t, sender, nil)

	cmd := s.Send(bot.PlaceOrderCommand{Side: okx.SideBuy, MarginUSD: "300", Leverage: 10})
	require.NotNil(t, cmd)
	assert.False(t, s.Busy())

	msg := cmd().(OutcomeMsg)
	assert.True(t, msg.IsValidation())
	assert.Equal(t, "please select a trading pair first", msg.Text())

	notice := s.Report(msg)
	assert.Equal(t, state.NoticeWarning, notice.Level)
	assert.Empty(t, sender.Sent())

	logs := buf.GetRecentLogs(1)
	require.Len(t, logs, 1)
	assert.Equal(t, "warn", logs[0].Level)
}

func TestSessionReportsFailures(t *testing.T) {
	sender := &fakeSender{
		out: bot.Outcome{Message: "Search failed: timeout"},
		err: errors.New("timeout"),
	}
	s, buf := newTestSession(t, sender, nil)
	s.Store().SetSearchResults([]okx.Instrument{{InstID: "BTC-USDT-SWAP"}})

	msg := s.Send(bot.SearchCommand{Query: "sol"})().(OutcomeMsg)
	notice := s.Report(msg)

	assert.Equal(t, state.NoticeError, notice.Level)
	assert.Equal(t, "Search failed: timeout", notice.Text)
	assert.Len(t, s.Store().SearchResults(), 1, "failed search keeps previous results")
	assert.Equal(t, "error", buf.GetRecentLogs(1)[0].Level)
}

func TestSessionStoresSearchResults(t *testing.T) {
	sender := &fakeSender{out: bot.Outcome{
		Success:     true,
		Message:     `Found 1 pairs for "SOL"`,
		Instruments: []okx.Instrument{{InstID: "SOL-USDT-SWAP"}},
	}}
	s, _ := newTestSession(t, sender, nil)

	s.Report(s.Send(bot.SearchCommand{Query: "sol"})().(OutcomeMsg))
	results := s.Store().SearchResults()
	require.Len(t, results, 1)
	assert.Equal(t, "SOL-USDT-SWAP", results[0].InstID)
}

func TestSessionDefaults(t *testing.T) {
	s := NewSession(SessionConfig{Logger: zaptest.NewLogger(t)})
	assert.Equal(t, PresetLeverage, s.DefaultLeverage())
	assert.NotNil(t, s.Store())
}

func TestOutcomeMsgText(t *testing.T) {
	assert.Equal(t, "close_all done", OutcomeMsg{Command: "close_all"}.Text())
	assert.Equal(t, "boom", OutcomeMsg{Command: "close_all", Err: errors.New("boom")}.Text())
	assert.False(t, OutcomeMsg{Outcome: bot.Outcome{Success: true}, Err: errors.New("x")}.Succeeded())
}

func TestPresets(t *testing.T) {
	presets := DefaultPresets()
	require.Len(t, presets, 6)
	assert.Equal(t, "BUY $300 10x", presets[0].Label())
	assert.Equal(t, "SELL $1500 10x", presets[5].Label())

	p, ok := PresetForKey(presets, "5")
	require.True(t, ok)
	assert.Equal(t, okx.SideSell, p.Side)
	assert.Equal(t, "500", p.Margin)

	_, ok = PresetForKey(presets, "7")
	assert.False(t, ok)

	cmd := p.Command("BTC-USDT-SWAP")
	assert.NoError(t, cmd.Validate())
}

func TestLeverageIndex(t *testing.T) {
	assert.Equal(t, 0, LeverageIndex(5))
	assert.Equal(t, 4, LeverageIndex(100))
	assert.Equal(t, 1, LeverageIndex(7), "falls back to the preset leverage")
}

func TestRouteString(t *testing.T) {
	assert.Equal(t, "trade", RouteTrade.String())
	assert.Equal(t, "unknown", Route(99).String())
}
