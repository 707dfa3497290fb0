package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/okx-trader/internal/bot"
	"github.com/rovshanmuradov/okx-trader/internal/config"
	"github.com/rovshanmuradov/okx-trader/internal/ui"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to config file")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	runner, err := bot.NewRunner(cfg)
	if err != nil {
		log.Fatalf("Failed to start trading client: %v", err)
	}
	appLogger := runner.Logger()
	defer func() {
		if err := runner.Shutdown(context.Background()); err != nil {
			log.Printf("Shutdown: %v", err)
		}
	}()

	appLogger.Info("Starting OKX dashboard", zap.String("mode", cfg.ModeLabel()))

	session := ui.NewSession(ui.SessionConfig{
		Context:         rootCtx,
		Commands:        runner.Service(),
		Feed:            runner.Poller(),
		Logs:            runner.Logs(),
		Logger:          appLogger,
		Mode:            cfg.ModeLabel(),
		DefaultLeverage: cfg.DefaultLeverage,
	})

	err = ui.Run(NewAppModel(session), appLogger,
		tea.WithAltScreen(),
		tea.WithContext(rootCtx),
	)
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		appLogger.Error("TUI application failed", zap.Error(err))
		log.Printf("TUI application failed: %v", err)
	}
	appLogger.Info("Dashboard closed")
}
