package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/okx-trader/internal/bot"
	"github.com/rovshanmuradov/okx-trader/internal/logger"
	"github.com/rovshanmuradov/okx-trader/internal/monitor"
	"github.com/rovshanmuradov/okx-trader/internal/ui/state"
	"go.uber.org/zap"
)

const feedStopTimeout = 2 * time.Second

// CommandSender executes trading commands.
type CommandSender interface {
	Send(ctx context.Context, cmd bot.TradingCommand) (bot.Outcome, error)
}

// SnapshotFeed is the background positions poller as seen by a front-end.
type SnapshotFeed interface {
	Start(ctx context.Context) error
	Updates() <-chan monitor.Snapshot
	RefreshNow()
	Stop(timeout time.Duration) error
}

// SessionConfig wires a Session.
type SessionConfig struct {
	Context         context.Context
	Commands        CommandSender
	Feed            SnapshotFeed
	Logs            *logger.LogBuffer
	Logger          *zap.Logger
	Store           *state.Store
	Mode            string
	DefaultLeverage int
}

// Session is what every screen of one front-end shares: the command bus,
// the snapshot feed, the log ring and the display store. All methods are
// called from the bubbletea update loop.
type Session struct {
	ctx             context.Context
	commands        CommandSender
	feed            SnapshotFeed
	logs            *logger.LogBuffer
	logger          *zap.Logger
	store           *state.Store
	mode            string
	defaultLeverage int

	pending string
}

func NewSession(cfg SessionConfig) *Session {
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	store := cfg.Store
	if store == nil {
		store = state.NewStore(cfg.Logger)
	}
	lev := cfg.DefaultLeverage
	if lev == 0 {
		lev = PresetLeverage
	}
	return &Session{
		ctx:             ctx,
		commands:        cfg.Commands,
		feed:            cfg.Feed,
		logs:            cfg.Logs,
		logger:          cfg.Logger.Named("ui"),
		store:           store,
		mode:            cfg.Mode,
		defaultLeverage: lev,
	}
}

func (s *Session) Store() *state.Store      { return s.store }
func (s *Session) Logs() *logger.LogBuffer  { return s.logs }
func (s *Session) Mode() string             { return s.mode }
func (s *Session) DefaultLeverage() int     { return s.defaultLeverage }
func (s *Session) Keys() KeyMap             { return DefaultKeyMap() }
func (s *Session) Presets() []Preset        { return DefaultPresets() }
func (s *Session) Busy() bool               { return s.pending != "" }
func (s *Session) Pending() string          { return s.pending }
func (s *Session) Context() context.Context { return s.ctx }

// StartFeed starts the poller and returns the command that waits for its
// first snapshot. Called from the front-end's Init.
func (s *Session) StartFeed() tea.Cmd {
	if s.feed == nil {
		return nil
	}
	if err := s.feed.Start(s.ctx); err != nil && !errors.Is(err, monitor.ErrPollerRunning) {
		s.logger.Error("Failed to start positions poller", zap.Error(err))
		return nil
	}
	return s.Listen()
}

// Listen waits for the next snapshot.
func (s *Session) Listen() tea.Cmd {
	if s.feed == nil {
		return nil
	}
	return WaitForSnapshot(s.feed.Updates())
}

// StopFeed stops the poller and waits briefly for its loop to exit.
func (s *Session) StopFeed() {
	if s.feed == nil {
		return
	}
	if err := s.feed.Stop(feedStopTimeout); err != nil {
		s.logger.Warn("Positions poller did not stop cleanly", zap.Error(err))
	}
}

// Refresh asks the poller for an immediate update.
func (s *Session) Refresh() {
	if s.feed != nil {
		s.feed.RefreshNow()
	}
}

// Apply stores a snapshot and returns the command for the next one.
func (s *Session) Apply(msg SnapshotMsg) tea.Cmd {
	s.store.ApplySnapshot(msg.Snapshot)
	return s.Listen()
}

// Send runs cmd on the bus outside the update loop. While a command is in
// flight further trading actions are ignored.
func (s *Session) Send(cmd bot.TradingCommand) tea.Cmd {
	if s.Busy() {
		s.logger.Debug("Ignoring command while another is in flight",
			zap.String("command", cmd.GetType()),
			zap.String("pending", s.pending))
		return nil
	}
	if err := cmd.Validate(); err != nil {
		vErr := &bot.ValidationError{Err: err}
		return func() tea.Msg {
			return OutcomeMsg{Command: cmd.GetType(), Target: target(cmd), Err: vErr}
		}
	}

	s.pending = cmd.GetType()
	ctx := s.ctx
	commands := s.commands
	return func() tea.Msg {
		out, err := commands.Send(ctx, cmd)
		return OutcomeMsg{Command: cmd.GetType(), Target: target(cmd), Outcome: out, Err: err}
	}
}

func target(cmd bot.TradingCommand) string {
	switch c := cmd.(type) {
	case bot.PlaceOrderCommand:
		return c.InstID
	case bot.ClosePositionCommand:
		return c.InstID
	case bot.PriceCommand:
		return c.InstID
	}
	return ""
}

// Report logs the outcome into the ring and sets the notification line.
func (s *Session) Report(msg OutcomeMsg) state.Notice {
	if msg.Command == s.pending {
		s.pending = ""
	}

	notice := state.Notice{Text: msg.Text(), At: time.Now()}
	switch {
	case msg.IsValidation():
		notice.Level = state.NoticeWarning
		s.logger.Warn(notice.Text, zap.String("command", msg.Command))
	case msg.Succeeded():
		notice.Level = state.NoticeSuccess
		s.logger.Info(notice.Text, zap.String("command", msg.Command))
	default:
		notice.Level = state.NoticeError
		s.logger.Error(notice.Text, zap.String("command", msg.Command), zap.Error(msg.Err))
	}

	switch msg.Command {
	case "search":
		if msg.Err == nil {
			s.store.SetSearchResults(msg.Outcome.Instruments)
		}
	case "price", "place_order":
		if msg.Target != "" && !msg.Outcome.Price.IsZero() {
			s.store.SetPrice(msg.Target, msg.Outcome.Price.String())
		}
	}

	s.store.SetNotice(notice)
	return notice
}
