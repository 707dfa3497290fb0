// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type OKXConfig struct {
	APIKey     string `mapstructure:"api_key"`
	SecretKey  string `mapstructure:"secret_key"`
	Passphrase string `mapstructure:"passphrase"`
	Sandbox    bool   `mapstructure:"sandbox"`
	BaseURL    string `mapstructure:"base_url"`
}

type Config struct {
	OKX              OKXConfig `mapstructure:"okx"`
	DefaultLeverage  int       `mapstructure:"default_leverage"`
	PollIntervalMs   int       `mapstructure:"poll_interval_ms"`
	RequestTimeoutMs int       `mapstructure:"request_timeout_ms"`
	DebugLogging     bool      `mapstructure:"debug_logging"`
	LogFile          string    `mapstructure:"log_file"`
	TradeJournal     string    `mapstructure:"trade_journal"`
	LogBufferSize    int       `mapstructure:"log_buffer_size"`

	// PnL alert thresholds in percent of margin; zero disables the alert.
	AlertProfitPercent float64 `mapstructure:"alert_profit_percent"`
	AlertLossPercent   float64 `mapstructure:"alert_loss_percent"`
}

const (
	DefaultBaseURL          = "https://www.okx.com"
	DefaultLeverage         = 10
	DefaultPollIntervalMs   = 2000
	DefaultRequestTimeoutMs = 10000
	DefaultLogBufferSize    = 100
	DefaultAlertProfitPct   = 50.0
	DefaultAlertLossPct     = 20.0
	MaxLeverage             = 125

	envPrefix = "OKX_TRADER"
)

// PollInterval returns the positions refresh period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// RequestTimeout returns the per-request HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// MaskedAPIKey returns the first characters of the key for display.
func (c *Config) MaskedAPIKey() string {
	if len(c.OKX.APIKey) <= 10 {
		return c.OKX.APIKey + "..."
	}
	return c.OKX.APIKey[:10] + "..."
}

// ModeLabel is LIVE for real trading and SANDBOX for demo trading.
func (c *Config) ModeLabel() string {
	if c.OKX.Sandbox {
		return "SANDBOX"
	}
	return "LIVE"
}

func LoadConfig(path string) (*Config, error) {
	// A missing .env is not an error; the file only supplies overrides.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"okx.base_url":       DefaultBaseURL,
		"okx.sandbox":        false,
		"default_leverage":   DefaultLeverage,
		"poll_interval_ms":   DefaultPollIntervalMs,
		"request_timeout_ms": DefaultRequestTimeoutMs,
		"log_buffer_size":    DefaultLogBufferSize,

		"alert_profit_percent": DefaultAlertProfitPct,
		"alert_loss_percent":   DefaultAlertLossPct,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.OKX.APIKey == "" {
		return errors.New("missing api_key in configuration")
	}
	if cfg.OKX.SecretKey == "" {
		return errors.New("missing secret_key in configuration")
	}
	if cfg.OKX.Passphrase == "" {
		return errors.New("missing passphrase in configuration")
	}
	parsed, err := url.Parse(cfg.OKX.BaseURL)
	if err != nil || !strings.HasPrefix(parsed.Scheme, "http") || parsed.Host == "" {
		return errors.New("invalid base_url")
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.DefaultLeverage < 1 || cfg.DefaultLeverage > MaxLeverage {
		return fmt.Errorf("invalid default_leverage: %d", cfg.DefaultLeverage)
	}
	if cfg.PollIntervalMs <= 0 {
		return errors.New("invalid poll_interval_ms")
	}
	if cfg.RequestTimeoutMs <= 0 {
		return errors.New("invalid request_timeout_ms")
	}
	if cfg.LogBufferSize < 1 {
		return errors.New("invalid log_buffer_size")
	}
	if cfg.AlertProfitPercent < 0 || cfg.AlertLossPercent < 0 {
		return errors.New("alert thresholds must not be negative")
	}
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.AutomaticEnv()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if key := v.GetString("API_KEY"); key != "" {
		cfg.OKX.APIKey = key
	}
	if secret := v.GetString("SECRET_KEY"); secret != "" {
		cfg.OKX.SecretKey = secret
	}
	if passphrase := v.GetString("PASSPHRASE"); passphrase != "" {
		cfg.OKX.Passphrase = passphrase
	}
	if raw := strings.TrimSpace(v.GetString("SANDBOX")); raw != "" {
		cfg.OKX.Sandbox = v.GetBool("SANDBOX")
	}
}
