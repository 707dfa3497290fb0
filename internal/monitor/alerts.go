package monitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/rovshanmuradov/okx-trader/internal/okx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AlertType represents different types of alerts
type AlertType string

const (
	AlertTypeProfitTarget AlertType = "profit_target"
	AlertTypeLossLimit    AlertType = "loss_limit"
)

// Alert is a triggered PnL threshold on one position.
type Alert struct {
	Type       AlertType
	Timestamp  time.Time
	InstID     string
	Message    string
	Severity   string // "info", "warning"
	PnLPercent float64
	Threshold  float64
}

// AlertConfig holds alert thresholds in percent of position margin. A zero
// threshold disables that alert.
type AlertConfig struct {
	ProfitTargetPercent float64
	LossLimitPercent    float64
	CooldownDuration    time.Duration
}

// DefaultAlertConfig returns default alert configuration
func DefaultAlertConfig() AlertConfig {
	return AlertConfig{
		ProfitTargetPercent: 50.0,
		LossLimitPercent:    20.0,
		CooldownDuration:    5 * time.Minute,
	}
}

// AlertManager checks poll snapshots against PnL thresholds and logs what
// it finds. Each instrument alerts at most once per cooldown.
type AlertManager struct {
	mu     sync.Mutex
	config AlertConfig
	logger *zap.Logger
	now    func() time.Time

	alerts       []Alert
	maxAlerts    int
	alertHistory map[string]time.Time
}

func NewAlertManager(config AlertConfig, logger *zap.Logger) *AlertManager {
	return &AlertManager{
		config:       config,
		logger:       logger.Named("alerts"),
		now:          time.Now,
		maxAlerts:    100,
		alertHistory: make(map[string]time.Time),
	}
}

// CheckSnapshot checks every position of a successful poll. Failed polls
// are ignored.
func (am *AlertManager) CheckSnapshot(snap Snapshot) []Alert {
	if snap.Err != nil {
		return nil
	}
	var triggered []Alert
	for _, pos := range snap.Positions {
		triggered = append(triggered, am.CheckPosition(pos)...)
	}
	return triggered
}

// CheckPosition checks a position for alerts
func (am *AlertManager) CheckPosition(pos okx.Position) []Alert {
	am.mu.Lock()
	defer am.mu.Unlock()

	now := am.now()
	if last, ok := am.alertHistory[pos.InstID]; ok && now.Sub(last) < am.config.CooldownDuration {
		return nil
	}

	pct, _ := pos.UplRatio.Mul(decimal.NewFromInt(100)).Float64()

	var triggered []Alert
	if am.config.ProfitTargetPercent > 0 && pct >= am.config.ProfitTargetPercent {
		triggered = append(triggered, Alert{
			Type:       AlertTypeProfitTarget,
			Timestamp:  now,
			InstID:     pos.InstID,
			Message:    fmt.Sprintf("Profit target reached: +%.1f%% on %s", pct, pos.InstID),
			Severity:   "info",
			PnLPercent: pct,
			Threshold:  am.config.ProfitTargetPercent,
		})
	}
	if am.config.LossLimitPercent > 0 && pct <= -am.config.LossLimitPercent {
		triggered = append(triggered, Alert{
			Type:       AlertTypeLossLimit,
			Timestamp:  now,
			InstID:     pos.InstID,
			Message:    fmt.Sprintf("Loss limit reached: %.1f%% on %s", pct, pos.InstID),
			Severity:   "warning",
			PnLPercent: pct,
			Threshold:  -am.config.LossLimitPercent,
		})
	}

	for _, a := range triggered {
		am.record(a)
	}
	if len(triggered) > 0 {
		am.alertHistory[pos.InstID] = now
	}
	return triggered
}

func (am *AlertManager) record(alert Alert) {
	if len(am.alerts) >= am.maxAlerts {
		am.alerts = am.alerts[1:]
	}
	am.alerts = append(am.alerts, alert)

	fields := []zap.Field{
		zap.String("type", string(alert.Type)),
		zap.String("inst_id", alert.InstID),
		zap.Float64("pnl_percent", alert.PnLPercent),
	}
	if alert.Severity == "warning" {
		am.logger.Warn(alert.Message, fields...)
	} else {
		am.logger.Info(alert.Message, fields...)
	}
}

// GetRecentAlerts returns up to limit alerts, oldest first. A limit of zero
// returns all of them.
func (am *AlertManager) GetRecentAlerts(limit int) []Alert {
	am.mu.Lock()
	defer am.mu.Unlock()

	if limit <= 0 || limit > len(am.alerts) {
		limit = len(am.alerts)
	}
	result := make([]Alert, limit)
	copy(result, am.alerts[len(am.alerts)-limit:])
	return result
}

// ClearHistory resets the cooldowns.
func (am *AlertManager) ClearHistory() {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.alertHistory = make(map[string]time.Time)
}
