package main

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/okx-trader/internal/bot"
	"github.com/rovshanmuradov/okx-trader/internal/monitor"
	"github.com/rovshanmuradov/okx-trader/internal/okx"
	"github.com/rovshanmuradov/okx-trader/internal/ui"
	"github.com/rovshanmuradov/okx-trader/internal/ui/screen"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubSender struct{}

func (stubSender) Send(context.Context, bot.TradingCommand) (bot.Outcome, error) {
	return bot.Outcome{Success: true, Message: "ok"}, nil
}

type stubFeed struct {
	updates chan monitor.Snapshot
	started int
	stopped int
}

func (f *stubFeed) Start(context.Context) error      { f.started++; return nil }
func (f *stubFeed) Updates() <-chan monitor.Snapshot { return f.updates }
func (f *stubFeed) RefreshNow()                      {}
func (f *stubFeed) Stop(time.Duration) error         { f.stopped++; return nil }

func newTestApp(t *testing.T) (*AppModel, *stubFeed) {
	feed := &stubFeed{updates: make(chan monitor.Snapshot, 1)}
	session := ui.NewSession(ui.SessionConfig{
		Commands: stubSender{},
		Feed:     feed,
		Logger:   zaptest.NewLogger(t),
		Mode:     "SANDBOX",
	})
	app := NewAppModel(session)
	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return app, feed
}

func TestAppStartsFeedOnInit(t *testing.T) {
	app, feed := newTestApp(t)
	require.NotNil(t, app.Init())
	assert.Equal(t, 1, feed.started)
}

func TestAppNavigation(t *testing.T) {
	app, _ := newTestApp(t)

	app.Update(ui.RouterMsg{To: ui.RoutePositions})
	assert.Equal(t, 2, app.router.Depth())
	assert.IsType(t, &screen.PositionsScreen{}, app.router.Current())

	app.Update(ui.RouterMsg{To: ui.RouteMainMenu})
	assert.Equal(t, 1, app.router.Depth())
	assert.IsType(t, &screen.MainMenuScreen{}, app.router.Current())

	app.Update(ui.RouterMsg{To: ui.RouteLogs})
	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, 1, app.router.Depth())
}

func TestAppAppliesSnapshots(t *testing.T) {
	app, _ := newTestApp(t)

	snap := monitor.Snapshot{
		Balance:   okx.Balance{TotalEq: decimal.NewFromInt(1000)},
		Positions: []okx.Position{{InstID: "BTC-USDT-SWAP", Pos: decimal.NewFromInt(1)}},
	}
	_, cmd := app.Update(ui.SnapshotMsg{Snapshot: snap})
	assert.NotNil(t, cmd, "keeps listening for the next snapshot")
	assert.True(t, app.session.Store().Loaded())
	assert.Len(t, app.session.Store().Positions(), 1)
	assert.Contains(t, app.View(), "SANDBOX")
}

func TestAppQuitStopsFeed(t *testing.T) {
	app, feed := newTestApp(t)

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Equal(t, 1, feed.stopped)

	_, cmd = app.Update(ui.QuitMsg{})
	require.NotNil(t, cmd)
	assert.Equal(t, 2, feed.stopped)
}

func TestAppViewBeforeResize(t *testing.T) {
	session := ui.NewSession(ui.SessionConfig{Logger: zaptest.NewLogger(t)})
	assert.Equal(t, "Initializing...", NewAppModel(session).View())
}
