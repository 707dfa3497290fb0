package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rovshanmuradov/okx-trader/internal/config"
	"github.com/rovshanmuradov/okx-trader/internal/okx"
	"github.com/rovshanmuradov/okx-trader/internal/trader"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const searchSample = "BTC"

// Exchange is the part of the trading client the self-check exercises.
type Exchange interface {
	Balance(ctx context.Context) (okx.Balance, error)
	AccountConfig(ctx context.Context) (okx.AccountConfig, bool)
	SearchPair(ctx context.Context, query string) ([]okx.Instrument, error)
	CurrentPrice(ctx context.Context, instID string) (decimal.Decimal, bool)
	Positions(ctx context.Context) ([]okx.Position, error)
}

// Checker runs the connection self-check and prints a report to out.
type Checker struct {
	exchange Exchange
	out      io.Writer
	logger   *zap.Logger
	timeout  time.Duration

	firstInstID string
}

func NewChecker(exchange Exchange, out io.Writer, timeout time.Duration, logger *zap.Logger) *Checker {
	return &Checker{
		exchange: exchange,
		out:      out,
		logger:   logger.Named("check"),
		timeout:  timeout,
	}
}

type step struct {
	name string
	run  func(ctx context.Context) error
}

// PrintConfig writes the configuration summary. The API key is masked.
func (c *Checker) PrintConfig(cfg *config.Config) {
	fmt.Fprintln(c.out, "=== OKX connection check ===")
	fmt.Fprintf(c.out, "API key:          %s\n", cfg.MaskedAPIKey())
	fmt.Fprintf(c.out, "Mode:             %s\n", cfg.ModeLabel())
	fmt.Fprintf(c.out, "Default leverage: %dx\n", cfg.DefaultLeverage)
	fmt.Fprintln(c.out)
}

// Run executes every step in order and stops at the first failure.
func (c *Checker) Run(ctx context.Context) error {
	steps := []step{
		{"Balance", c.balance},
		{"Account config", c.accountConfig},
		{"Search " + searchSample, c.search},
		{"Price", c.price},
		{"Positions", c.positions},
	}

	for i, s := range steps {
		fmt.Fprintf(c.out, "[%d/%d] %s\n", i+1, len(steps), s.name)

		stepCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := s.run(stepCtx)
		cancel()

		if err != nil {
			fmt.Fprintf(c.out, "  ✗ %v\n", err)
			c.logger.Error("Check failed", zap.String("step", s.name), zap.Error(err))
			return errors.Wrapf(err, "step %q", s.name)
		}
		c.logger.Debug("Check passed", zap.String("step", s.name))
	}

	fmt.Fprintln(c.out, "\nAll checks passed")
	return nil
}

func (c *Checker) balance(ctx context.Context) error {
	bal, err := c.exchange.Balance(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "  ✓ total equity %s, available %s\n", trader.FormatCurrency(bal.TotalEq), trader.FormatCurrency(bal.AvailEq))
	return nil
}

func (c *Checker) accountConfig(ctx context.Context) error {
	cfg, ok := c.exchange.AccountConfig(ctx)
	if !ok {
		return errors.New("account config unavailable")
	}
	fmt.Fprintf(c.out, "  ✓ account level %s, position mode %s\n", cfg.AcctLv, cfg.PosMode)
	return nil
}

func (c *Checker) search(ctx context.Context) error {
	found, err := c.exchange.SearchPair(ctx, searchSample)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return errors.Errorf("no pairs found for %q", searchSample)
	}
	c.firstInstID = found[0].InstID

	fmt.Fprintf(c.out, "  ✓ %d pairs\n", len(found))
	for i, inst := range found {
		if i == 3 {
			break
		}
		fmt.Fprintf(c.out, "    %s (lot %s, min %s)\n", inst.InstID, inst.LotSz, inst.MinSz)
	}
	return nil
}

func (c *Checker) price(ctx context.Context) error {
	price, ok := c.exchange.CurrentPrice(ctx, c.firstInstID)
	if !ok {
		return errors.Errorf("no price for %s", c.firstInstID)
	}
	fmt.Fprintf(c.out, "  ✓ %s last %s\n", c.firstInstID, price)
	return nil
}

func (c *Checker) positions(ctx context.Context) error {
	positions, err := c.exchange.Positions(ctx)
	if err != nil {
		return err
	}
	if len(positions) == 0 {
		fmt.Fprintln(c.out, "  ✓ no open positions")
		return nil
	}

	fmt.Fprintf(c.out, "  ✓ %d open positions\n", len(positions))
	for _, p := range positions {
		fmt.Fprintf(c.out, "    %s %s %s  PnL %s (%s)\n",
			p.InstID, trader.DirectionLabel(p), p.Pos.Abs(),
			trader.FormatCurrency(p.Upl), trader.FormatPercentage(p.UplRatio))
	}
	summary := trader.Summarize(positions)
	fmt.Fprintf(c.out, "    total PnL %s (%s on margin)\n",
		trader.FormatCurrency(summary.TotalUpl), trader.FormatPercentage(summary.PnLRatio()))
	return nil
}
