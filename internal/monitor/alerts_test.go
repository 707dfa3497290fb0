package monitor

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rovshanmuradov/okx-trader/internal/okx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func ratioPosition(instID, ratio string) okx.Position {
	return okx.Position{
		InstID:   instID,
		Pos:      decimal.NewFromInt(1),
		UplRatio: decimal.RequireFromString(ratio),
	}
}

func TestAlertManagerConcurrentAccess(t *testing.T) {
	config := DefaultAlertConfig()
	config.CooldownDuration = 0
	alertManager := NewAlertManager(config, zap.NewNop())

	var wg sync.WaitGroup
	numGoroutines := 10

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				pos := ratioPosition(fmt.Sprintf("INST%d-USDT-SWAP", id), fmt.Sprintf("-%d.0", j%2))
				alertManager.CheckPosition(pos)
			}
		}(i)
	}

	wg.Add(5)
	for i := 0; i < 5; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = alertManager.GetRecentAlerts(10)
			}
		}()
	}

	wg.Wait()

	if got := len(alertManager.GetRecentAlerts(0)); got != 100 {
		t.Errorf("Expected alert history capped at 100, got %d", got)
	}
}

func TestAlertTypes(t *testing.T) {
	config := DefaultAlertConfig()
	config.CooldownDuration = 0
	alertManager := NewAlertManager(config, zap.NewNop())

	alerts := alertManager.CheckPosition(ratioPosition("BTC-USDT-SWAP", "0.6"))
	if len(alerts) != 1 || alerts[0].Type != AlertTypeProfitTarget {
		t.Fatalf("Expected profit target alert, got %+v", alerts)
	}
	if alerts[0].Message != "Profit target reached: +60.0% on BTC-USDT-SWAP" {
		t.Errorf("Unexpected message: %s", alerts[0].Message)
	}

	alerts = alertManager.CheckPosition(ratioPosition("ETH-USDT-SWAP", "-0.25"))
	if len(alerts) != 1 || alerts[0].Type != AlertTypeLossLimit {
		t.Fatalf("Expected loss limit alert, got %+v", alerts)
	}
	if alerts[0].Severity != "warning" {
		t.Errorf("Expected warning severity, got %s", alerts[0].Severity)
	}

	if alerts := alertManager.CheckPosition(ratioPosition("SOL-USDT-SWAP", "0.1")); len(alerts) != 0 {
		t.Errorf("Expected no alerts inside the thresholds, got %d", len(alerts))
	}
}

func TestAlertDisabledThresholds(t *testing.T) {
	alertManager := NewAlertManager(AlertConfig{}, zap.NewNop())

	if alerts := alertManager.CheckPosition(ratioPosition("BTC-USDT-SWAP", "5")); len(alerts) != 0 {
		t.Errorf("Expected disabled profit alert, got %d", len(alerts))
	}
	if alerts := alertManager.CheckPosition(ratioPosition("BTC-USDT-SWAP", "-5")); len(alerts) != 0 {
		t.Errorf("Expected disabled loss alert, got %d", len(alerts))
	}
}

func TestAlertCooldown(t *testing.T) {
	config := DefaultAlertConfig()
	config.CooldownDuration = time.Minute
	alertManager := NewAlertManager(config, zap.NewNop())

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	alertManager.now = func() time.Time { return now }

	pos := ratioPosition("BTC-USDT-SWAP", "-0.3")
	if len(alertManager.CheckPosition(pos)) != 1 {
		t.Fatal("Expected first alert")
	}

	now = now.Add(30 * time.Second)
	if len(alertManager.CheckPosition(pos)) != 0 {
		t.Error("Expected alert suppressed during cooldown")
	}
	if len(alertManager.CheckPosition(ratioPosition("ETH-USDT-SWAP", "-0.3"))) != 1 {
		t.Error("Cooldown must be per instrument")
	}

	now = now.Add(time.Minute)
	if len(alertManager.CheckPosition(pos)) != 1 {
		t.Error("Expected alert after cooldown")
	}

	alertManager.ClearHistory()
	if len(alertManager.CheckPosition(pos)) != 1 {
		t.Error("Expected alert after clearing history")
	}
}

func TestAlertCheckSnapshotLogs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	config := DefaultAlertConfig()
	alertManager := NewAlertManager(config, zap.New(core))

	alerts := alertManager.CheckSnapshot(Snapshot{Positions: []okx.Position{
		ratioPosition("BTC-USDT-SWAP", "0.55"),
		ratioPosition("ETH-USDT-SWAP", "-0.21"),
		ratioPosition("SOL-USDT-SWAP", "0"),
	}})
	if len(alerts) != 2 {
		t.Fatalf("Expected 2 alerts, got %d", len(alerts))
	}

	if logs.FilterMessage("Loss limit reached: -21.0% on ETH-USDT-SWAP").FilterLevelExact(zapcore.WarnLevel).Len() != 1 {
		t.Error("Expected loss alert logged as warning")
	}
	if logs.FilterLevelExact(zapcore.InfoLevel).Len() != 1 {
		t.Error("Expected profit alert logged as info")
	}

	if alerts := alertManager.CheckSnapshot(Snapshot{Err: errors.New("timeout")}); alerts != nil {
		t.Error("Expected failed snapshot to be ignored")
	}
}
