package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rovshanmuradov/okx-trader/internal/config"
	"github.com/rovshanmuradov/okx-trader/internal/logger"
	"github.com/rovshanmuradov/okx-trader/internal/okx"
	"github.com/rovshanmuradov/okx-trader/internal/trader"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", "configs/config.json", "Path to config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.CreatePrettyLogger(cfg.DebugLogging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gateway := okx.NewClient(okx.Config{
		APIKey:     cfg.OKX.APIKey,
		SecretKey:  cfg.OKX.SecretKey,
		Passphrase: cfg.OKX.Passphrase,
		Sandbox:    cfg.OKX.Sandbox,
		BaseURL:    cfg.OKX.BaseURL,
		Timeout:    cfg.RequestTimeout(),
	}, appLogger)

	checker := NewChecker(trader.New(gateway, appLogger), os.Stdout, cfg.RequestTimeout(), appLogger)
	checker.PrintConfig(cfg)

	if err := checker.Run(ctx); err != nil {
		appLogger.Error("Connection check failed", zap.Error(err))
		_ = appLogger.Sync()
		stop()
		os.Exit(1)
	}
}
