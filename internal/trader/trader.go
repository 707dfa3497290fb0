// Package trader implements the trading workflow on top of the OKX gateway:
// pair search, pricing, position sizing, market orders and closing positions.
package trader

import (
	"context"
	"strings"

	"github.com/rovshanmuradov/okx-trader/internal/okx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const quoteUSDT = "USDT"

// Gateway is the subset of the exchange client the trading workflow needs.
type Gateway interface {
	Instruments(ctx context.Context, instType, instID string) ([]okx.Instrument, error)
	Ticker(ctx context.Context, instID string) (okx.Ticker, error)
	AccountConfig(ctx context.Context) (okx.AccountConfig, error)
	SetLeverage(ctx context.Context, instID string, lever int, mgnMode string) (okx.Leverage, error)
	SetPositionMode(ctx context.Context, mode okx.PositionMode) (okx.PositionMode, error)
	PlaceOrder(ctx context.Context, req okx.OrderRequest) (okx.OrderAck, error)
	Positions(ctx context.Context) ([]okx.Position, error)
	Balance(ctx context.Context) (okx.Balance, error)
}

// Client owns the gateway handle. It keeps no state between calls: the
// account configuration is re-read before every order and every close.
type Client struct {
	gw     Gateway
	logger *zap.Logger
}

func New(gw Gateway, logger *zap.Logger) *Client {
	return &Client{
		gw:     gw,
		logger: logger.Named("trader"),
	}
}

// SearchPair returns USDT-quoted perpetual swaps whose id contains query,
// ignoring case. No match is an empty list, not an error.
func (c *Client) SearchPair(ctx context.Context, query string) ([]okx.Instrument, error) {
	needle := strings.ToUpper(strings.TrimSpace(query))
	if needle == "" {
		return nil, nil
	}

	instruments, err := c.gw.Instruments(ctx, okx.InstTypeSwap, "")
	if err != nil {
		c.logger.Error("Instrument search failed", zap.String("query", query), zap.Error(err))
		return nil, err
	}

	found := make([]okx.Instrument, 0)
	for _, inst := range instruments {
		if strings.Contains(inst.InstID, needle) && strings.EqualFold(inst.QuoteCcy, quoteUSDT) {
			found = append(found, inst)
		}
	}

	c.logger.Debug("Instrument search",
		zap.String("query", needle),
		zap.Int("matches", len(found)))
	return found, nil
}

// CurrentPrice returns the last traded price. ok is false when the ticker has no usable price.
func (c *Client) CurrentPrice(ctx context.Context, instID string) (price decimal.Decimal, ok bool) {
	ticker, err := c.gw.Ticker(ctx, instID)
	if err != nil {
		c.logger.Warn("Price unavailable", zap.String("inst_id", instID), zap.Error(err))
		return decimal.Zero, false
	}
	if !ticker.Last.IsPositive() {
		return decimal.Zero, false
	}
	return ticker.Last, true
}

// SetLeverage sets cross-margin leverage for instID.
func (c *Client) SetLeverage(ctx context.Context, instID string, leverage int) error {
	lev, err := c.gw.SetLeverage(ctx, instID, leverage, okx.MarginCross)
	if err != nil {
		c.logger.Warn("Set leverage failed",
			zap.String("inst_id", instID),
			zap.Int("leverage", leverage),
			zap.Error(err))
		return err
	}
	c.logger.Info("Leverage set",
		zap.String("inst_id", lev.InstID),
		zap.String("leverage", lev.Lever.String()))
	return nil
}

// PositionSize converts a margin amount into a contract quantity for instID.
// ok is false when the instrument metadata cannot be fetched.
func (c *Client) PositionSize(ctx context.Context, instID string, marginUSD decimal.Decimal, leverage int, price decimal.Decimal) (size decimal.Decimal, ok bool) {
	instruments, err := c.gw.Instruments(ctx, okx.InstTypeSwap, instID)
	if err != nil || len(instruments) == 0 {
		c.logger.Warn("Instrument metadata unavailable", zap.String("inst_id", instID), zap.Error(err))
		return decimal.Zero, false
	}

	inst := instruments[0]
	contracts, ok := CalcContracts(marginUSD, decimal.NewFromInt(int64(leverage)), price, inst.LotSz)
	if !ok {
		return decimal.Zero, false
	}

	c.logger.Info("Position size calculated",
		zap.String("inst_id", instID),
		zap.String("margin", marginUSD.String()),
		zap.Int("leverage", leverage),
		zap.String("notional", marginUSD.Mul(decimal.NewFromInt(int64(leverage))).StringFixed(2)),
		zap.String("price", price.String()),
		zap.String("lot_size", inst.LotSz.String()),
		zap.String("contracts", contracts.String()))
	return contracts, true
}

// CalcContracts returns margin*leverage/price rounded to a whole number of lots,
// never less than one lot. Ties on the lot count round half to even.
func CalcContracts(margin, leverage, price, lotSz decimal.Decimal) (decimal.Decimal, bool) {
	if !price.IsPositive() || !lotSz.IsPositive() {
		return decimal.Zero, false
	}
	lots := roundHalfEven(margin.Mul(leverage), price.Mul(lotSz))
	contracts := lots.Mul(lotSz)
	if contracts.LessThan(lotSz) {
		contracts = lotSz
	}
	return contracts, true
}

// roundHalfEven divides num by den exactly once and rounds the quotient to
// an integer, ties to even.
func roundHalfEven(num, den decimal.Decimal) decimal.Decimal {
	q, r := num.QuoRem(den, 0)
	switch r.Abs().Mul(decimal.NewFromInt(2)).Cmp(den.Abs()) {
	case 1:
		return q.Add(decimal.NewFromInt(int64(num.Sign() * den.Sign())))
	case 0:
		if !q.Mod(decimal.NewFromInt(2)).IsZero() {
			return q.Add(decimal.NewFromInt(int64(num.Sign() * den.Sign())))
		}
	}
	return q
}

// Positions returns open positions (non-zero size) only.
func (c *Client) Positions(ctx context.Context) ([]okx.Position, error) {
	all, err := c.gw.Positions(ctx)
	if err != nil {
		return nil, err
	}
	open := make([]okx.Position, 0, len(all))
	for _, p := range all {
		if !p.Pos.IsZero() {
			open = append(open, p)
		}
	}
	return open, nil
}

func (c *Client) Balance(ctx context.Context) (okx.Balance, error) {
	return c.gw.Balance(ctx)
}

// AccountConfig returns the account configuration; ok is false when it cannot be read.
func (c *Client) AccountConfig(ctx context.Context) (okx.AccountConfig, bool) {
	cfg, err := c.gw.AccountConfig(ctx)
	if err != nil {
		c.logger.Warn("Account config unavailable", zap.Error(err))
		return okx.AccountConfig{}, false
	}
	return cfg, true
}
