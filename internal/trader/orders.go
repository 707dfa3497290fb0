package trader

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rovshanmuradov/okx-trader/internal/okx"
	"go.uber.org/zap"
)

// ErrPositionNotFound is reported when closing an instrument with no open position.
var ErrPositionNotFound = errors.New("position not found")

// OrderResult is the outcome of one order placement or close.
type OrderResult struct {
	Success bool
	OrderID string
	Error   string
}

func failed(err error) OrderResult {
	return OrderResult{Success: false, Error: err.Error()}
}

type CloseResult struct {
	InstID  string
	Success bool
	Error   string
}

// CloseAllResult itemizes a bulk close. Closes are not rolled back when a later one fails.
type CloseAllResult struct {
	Success bool
	Results []CloseResult
	Message string
}

// Failed returns the results that did not close.
func (r CloseAllResult) Failed() []CloseResult {
	var out []CloseResult
	for _, res := range r.Results {
		if !res.Success {
			out = append(out, res)
		}
	}
	return out
}

// PlaceMarketOrder sets leverage when leverage > 0, picks posSide from the
// account's position mode and submits a cross-margin market order.
//
// If the exchange rejects the order over posSide, the account is switched to
// net mode and the order is resubmitted once with posSide "net". Any other
// failure, or a second failure, is returned as is.
func (c *Client) PlaceMarketOrder(ctx context.Context, instID string, side okx.Side, size string, leverage int) OrderResult {
	if leverage > 0 {
		// Failure is logged by SetLeverage; the order proceeds with the current leverage.
		_ = c.SetLeverage(ctx, instID, leverage)
	}

	req := okx.OrderRequest{
		InstID:  instID,
		TdMode:  okx.MarginCross,
		Side:    side,
		PosSide: c.openingPosSide(ctx, side),
		OrdType: okx.OrdTypeMarket,
		Size:    size,
	}

	var firstErr error
	operation := func() (okx.OrderAck, error) {
		if firstErr != nil {
			if _, err := c.gw.SetPositionMode(ctx, okx.NetMode); err != nil {
				c.logger.Warn("Switch to net mode failed", zap.Error(err))
				return okx.OrderAck{}, backoff.Permanent(firstErr)
			}
			req.PosSide = okx.PosSideNet
		}

		ack, err := c.gw.PlaceOrder(ctx, req)
		if err == nil {
			return ack, nil
		}
		if firstErr == nil && isPosSideError(err) {
			firstErr = err
			return ack, err
		}
		return ack, backoff.Permanent(err)
	}

	notify := func(err error, _ time.Duration) {
		c.logger.Info("posSide rejected, retrying in net mode",
			zap.String("inst_id", instID),
			zap.Error(err))
	}

	ack, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(&backoff.ZeroBackOff{}),
		backoff.WithMaxTries(2),
		backoff.WithNotify(notify))
	if err != nil {
		c.logger.Error("Order rejected",
			zap.String("inst_id", instID),
			zap.String("side", string(side)),
			zap.String("size", size),
			zap.Error(err))
		return failed(err)
	}

	c.logger.Info("Order placed",
		zap.String("inst_id", instID),
		zap.String("side", string(side)),
		zap.String("size", size),
		zap.String("pos_side", string(req.PosSide)),
		zap.String("ord_id", ack.OrdID))
	return OrderResult{Success: true, OrderID: ack.OrdID}
}

func isPosSideError(err error) bool {
	if apiErr, ok := okx.AsAPIError(err); ok {
		return apiErr.Mentions("posSide")
	}
	return strings.Contains(err.Error(), "posSide")
}

// openingPosSide is "net" in net mode or when the mode is unknown, else the
// direction implied by side.
func (c *Client) openingPosSide(ctx context.Context, side okx.Side) okx.PosSide {
	cfg, ok := c.AccountConfig(ctx)
	if !ok || cfg.PosMode != okx.LongShortMode {
		return okx.PosSideNet
	}
	if side == okx.SideBuy {
		return okx.PosSideLong
	}
	return okx.PosSideShort
}

// closingOrder derives side and posSide that offset pos under the given mode.
func closingOrder(pos okx.Position, mode okx.PositionMode) (okx.Side, okx.PosSide) {
	if mode == okx.LongShortMode {
		if pos.PosSide == okx.PosSideLong {
			return okx.SideSell, okx.PosSideLong
		}
		return okx.SideBuy, okx.PosSideShort
	}
	if pos.Pos.IsPositive() {
		return okx.SideSell, okx.PosSideNet
	}
	return okx.SideBuy, okx.PosSideNet
}

// ClosePosition closes the open position on instID with an opposite market order.
func (c *Client) ClosePosition(ctx context.Context, instID string) OrderResult {
	return c.closeLive(ctx, instID, "")
}

// closeLive re-reads positions and closes the one matching instID, and
// posSide when set, at its current size.
func (c *Client) closeLive(ctx context.Context, instID string, posSide okx.PosSide) OrderResult {
	positions, err := c.Positions(ctx)
	if err != nil {
		return failed(err)
	}
	for _, pos := range positions {
		if pos.InstID != instID || pos.Pos.IsZero() {
			continue
		}
		if posSide != "" && pos.PosSide != posSide {
			continue
		}
		return c.closeOne(ctx, pos)
	}
	return failed(ErrPositionNotFound)
}

func (c *Client) closeOne(ctx context.Context, pos okx.Position) OrderResult {
	// Position mode is read right before the close it decides.
	mode := okx.NetMode
	if cfg, ok := c.AccountConfig(ctx); ok && cfg.PosMode != "" {
		mode = cfg.PosMode
	}

	side, posSide := closingOrder(pos, mode)
	size := pos.Pos.Abs().String()

	ack, err := c.gw.PlaceOrder(ctx, okx.OrderRequest{
		InstID:  pos.InstID,
		TdMode:  okx.MarginCross,
		Side:    side,
		PosSide: posSide,
		OrdType: okx.OrdTypeMarket,
		Size:    size,
	})
	if err != nil {
		c.logger.Error("Close rejected",
			zap.String("inst_id", pos.InstID),
			zap.String("side", string(side)),
			zap.String("size", size),
			zap.Error(err))
		return failed(err)
	}

	c.logger.Info("Position closed",
		zap.String("inst_id", pos.InstID),
		zap.String("side", string(side)),
		zap.String("pos_side", string(posSide)),
		zap.String("size", size),
		zap.String("ord_id", ack.OrdID))
	return OrderResult{Success: true, OrderID: ack.OrdID}
}

// CloseAllPositions lists open positions once and closes them one by one,
// re-reading each position right before its close. It is best-effort: a
// failure does not stop or undo the other closes.
func (c *Client) CloseAllPositions(ctx context.Context) CloseAllResult {
	positions, err := c.Positions(ctx)
	if err != nil {
		return CloseAllResult{Success: false, Message: err.Error()}
	}
	if len(positions) == 0 {
		return CloseAllResult{Success: true, Message: "No open positions"}
	}

	results := make([]CloseResult, 0, len(positions))
	closed := 0
	for _, pos := range positions {
		res := c.closeLive(ctx, pos.InstID, pos.PosSide)
		if res.Success {
			closed++
		}
		results = append(results, CloseResult{
			InstID:  pos.InstID,
			Success: res.Success,
			Error:   res.Error,
		})
	}

	out := CloseAllResult{
		Success: closed == len(results),
		Results: results,
		Message: fmt.Sprintf("Closed positions: %d/%d", closed, len(results)),
	}
	c.logger.Info("Close all finished",
		zap.Int("closed", closed),
		zap.Int("total", len(results)))
	return out
}
