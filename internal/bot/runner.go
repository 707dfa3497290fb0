// internal/bot/runner.go
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/rovshanmuradov/okx-trader/internal/config"
	"github.com/rovshanmuradov/okx-trader/internal/logger"
	"github.com/rovshanmuradov/okx-trader/internal/monitor"
	"github.com/rovshanmuradov/okx-trader/internal/okx"
	"github.com/rovshanmuradov/okx-trader/internal/trader"
	"go.uber.org/zap"
)

const (
	fileFlushInterval = 2 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Runner is the trading runtime of one front-end: its own log ring, logger,
// exchange client, poller and command service. Two front-ends never share a
// Runner.
type Runner struct {
	config   *config.Config
	logs     *logger.LogBuffer
	logger   *zap.Logger
	trader   *trader.Client
	poller   *monitor.Poller
	alerts   *monitor.AlertManager
	service  *TradingService
	shutdown *ShutdownHandler
}

// NewRunner builds the runtime from cfg. Nothing is started; the front-end
// starts the poller when its window opens.
func NewRunner(cfg *config.Config) (*Runner, error) {
	logs, err := logger.NewLogBuffer(cfg.LogBufferSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create log buffer: %w", err)
	}

	var logFile *logger.SafeFileWriter
	if cfg.LogFile != "" {
		logFile, err = logger.NewSafeFileWriter(cfg.LogFile, fileFlushInterval, zap.NewNop())
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
	}

	appLogger, err := newRuntimeLogger(cfg.DebugLogging, logs, logFile)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		config:   cfg,
		logs:     logs,
		logger:   appLogger,
		shutdown: NewShutdownHandler(appLogger, shutdownTimeout),
	}
	if logFile != nil {
		r.shutdown.Add("log_file", logFile)
	}

	gateway := okx.NewClient(okx.Config{
		APIKey:     cfg.OKX.APIKey,
		SecretKey:  cfg.OKX.SecretKey,
		Passphrase: cfg.OKX.Passphrase,
		Sandbox:    cfg.OKX.Sandbox,
		BaseURL:    cfg.OKX.BaseURL,
		Timeout:    cfg.RequestTimeout(),
	}, appLogger)
	r.trader = trader.New(gateway, appLogger)
	r.poller = monitor.NewPoller(r.trader, cfg.PollInterval(), appLogger)

	alertCfg := monitor.DefaultAlertConfig()
	alertCfg.ProfitTargetPercent = cfg.AlertProfitPercent
	alertCfg.LossLimitPercent = cfg.AlertLossPercent
	r.alerts = monitor.NewAlertManager(alertCfg, appLogger)
	r.poller.OnSnapshot(func(snap monitor.Snapshot) { r.alerts.CheckSnapshot(snap) })

	serviceCfg := &TradingServiceConfig{
		Logger:    appLogger,
		Trader:    r.trader,
		Refresher: r.poller,
	}
	if cfg.TradeJournal != "" {
		journal, err := logger.NewSafeCSVWriter(cfg.TradeJournal, JournalHeader, fileFlushInterval, appLogger)
		if err != nil {
			_ = r.Shutdown(context.Background())
			return nil, fmt.Errorf("failed to open trade journal: %w", err)
		}
		r.shutdown.Add("trade_journal", journal)
		serviceCfg.Journal = journal
	}
	r.service = NewTradingService(serviceCfg)
	r.shutdown.Add("poller", r.poller)

	appLogger.Info("Trading runtime ready",
		zap.String("mode", cfg.ModeLabel()),
		zap.String("api_key", cfg.MaskedAPIKey()),
		zap.Duration("poll_interval", cfg.PollInterval()))
	return r, nil
}

// newRuntimeLogger keeps a nil file out of the tee.
func newRuntimeLogger(debug bool, logs *logger.LogBuffer, file *logger.SafeFileWriter) (*zap.Logger, error) {
	if file == nil {
		return logger.CreateTUILogger(debug, logs, nil)
	}
	return logger.CreateTUILogger(debug, logs, file)
}

func (r *Runner) Config() *config.Config   { return r.config }
func (r *Runner) Logs() *logger.LogBuffer  { return r.logs }
func (r *Runner) Logger() *zap.Logger      { return r.logger }
func (r *Runner) Trader() *trader.Client   { return r.trader }
func (r *Runner) Poller() *monitor.Poller  { return r.poller }
func (r *Runner) Service() *TradingService { return r.service }

func (r *Runner) Alerts() *monitor.AlertManager { return r.alerts }

// Shutdown stops the poller and closes the journal and log file, newest first.
func (r *Runner) Shutdown(ctx context.Context) error {
	err := r.shutdown.Shutdown(ctx)
	_ = r.logger.Sync()
	return err
}
