// internal/bot/trading_service.go
package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rovshanmuradov/okx-trader/internal/okx"
	"github.com/rovshanmuradov/okx-trader/internal/trader"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Trader is the trading client surface the command handlers drive.
type Trader interface {
	SearchPair(ctx context.Context, query string) ([]okx.Instrument, error)
	CurrentPrice(ctx context.Context, instID string) (decimal.Decimal, bool)
	PositionSize(ctx context.Context, instID string, marginUSD decimal.Decimal, leverage int, price decimal.Decimal) (decimal.Decimal, bool)
	PlaceMarketOrder(ctx context.Context, instID string, side okx.Side, size string, leverage int) trader.OrderResult
	ClosePosition(ctx context.Context, instID string) trader.OrderResult
	CloseAllPositions(ctx context.Context) trader.CloseAllResult
}

// Outcome is what a command produced. Message is the one-line notification
// shown to the user.
type Outcome struct {
	Success     bool
	Message     string
	OrderID     string
	Price       decimal.Decimal
	Size        decimal.Decimal
	Instruments []okx.Instrument
	CloseAll    *trader.CloseAllResult
}

// TradingService wires the command bus to the trading client and publishes
// an event for every action that reached the exchange.
type TradingService struct {
	commandBus *CommandBus
	eventBus   *EventBus
	trader     Trader
	logger     *zap.Logger
	now        func() time.Time
}

type TradingServiceConfig struct {
	Logger *zap.Logger
	Trader Trader
	// Journal receives one CSV record per order or close when set.
	Journal RecordWriter
	// Refresher is asked for an immediate poll after every trade when set.
	Refresher Refresher
}

func NewTradingService(config *TradingServiceConfig) *TradingService {
	service := &TradingService{
		commandBus: NewCommandBus(config.Logger),
		eventBus:   NewEventBus(config.Logger),
		trader:     config.Trader,
		logger:     config.Logger.Named("trading_service"),
		now:        time.Now,
	}

	orders := &OrderHandler{service: service}
	market := &MarketHandler{service: service}
	service.commandBus.RegisterHandler(PlaceOrderCommand{}, orders)
	service.commandBus.RegisterHandler(ClosePositionCommand{}, orders)
	service.commandBus.RegisterHandler(CloseAllCommand{}, orders)
	service.commandBus.RegisterHandler(SearchCommand{}, market)
	service.commandBus.RegisterHandler(PriceCommand{}, market)

	if config.Journal != nil {
		journal := NewJournalHandler(config.Journal)
		service.eventBus.RegisterHandler(OrderPlacedEvent{}, journal)
		service.eventBus.RegisterHandler(PositionClosedEvent{}, journal)
	}
	if config.Refresher != nil {
		service.eventBus.Subscribe(NewRefreshSubscriber(config.Refresher))
	}

	return service
}

func (s *TradingService) GetCommandBus() *CommandBus {
	return s.commandBus
}

func (s *TradingService) GetEventBus() *EventBus {
	return s.eventBus
}

// Send is a shortcut for GetCommandBus().Send.
func (s *TradingService) Send(ctx context.Context, cmd TradingCommand) (Outcome, error) {
	return s.commandBus.Send(ctx, cmd)
}

// OrderHandler opens and closes positions.
type OrderHandler struct {
	service *TradingService
}

func (h *OrderHandler) CanHandle(cmd TradingCommand) bool {
	switch cmd.(type) {
	case PlaceOrderCommand, ClosePositionCommand, CloseAllCommand:
		return true
	}
	return false
}

func (h *OrderHandler) Handle(ctx context.Context, cmd TradingCommand) (Outcome, error) {
	switch c := cmd.(type) {
	case PlaceOrderCommand:
		return h.placeOrder(ctx, c), nil
	case ClosePositionCommand:
		return h.closePosition(ctx, c), nil
	case CloseAllCommand:
		return h.closeAll(ctx), nil
	}
	return Outcome{}, fmt.Errorf("invalid command type for OrderHandler: %s", cmd.GetType())
}

// placeOrder prices the pair, sizes the order from the margin and submits it.
func (h *OrderHandler) placeOrder(ctx context.Context, c PlaceOrderCommand) Outcome {
	s := h.service
	margin, _ := c.Margin()

	price, ok := s.trader.CurrentPrice(ctx, c.InstID)
	if !ok {
		return Outcome{Message: "Failed to get current price for " + c.InstID}
	}

	size, ok := s.trader.PositionSize(ctx, c.InstID, margin, c.Leverage, price)
	if !ok {
		return Outcome{Price: price, Message: "Failed to calculate position size for " + c.InstID}
	}

	res := s.trader.PlaceMarketOrder(ctx, c.InstID, c.Side, size.String(), c.Leverage)
	s.eventBus.Publish(OrderPlacedEvent{
		InstID:    c.InstID,
		Side:      string(c.Side),
		Size:      size.String(),
		Leverage:  c.Leverage,
		OrderID:   res.OrderID,
		Success:   res.Success,
		Error:     res.Error,
		Timestamp: s.now(),
	})

	out := Outcome{Success: res.Success, OrderID: res.OrderID, Price: price, Size: size}
	if res.Success {
		out.Message = fmt.Sprintf("Order placed: %s %s %s (%s margin, %dx)",
			strings.ToUpper(string(c.Side)), size.String(), c.InstID, trader.FormatCurrency(margin), c.Leverage)
	} else {
		out.Message = "Order failed: " + res.Error
	}
	return out
}

func (h *OrderHandler) closePosition(ctx context.Context, c ClosePositionCommand) Outcome {
	s := h.service
	res := s.trader.ClosePosition(ctx, c.InstID)
	s.eventBus.Publish(PositionClosedEvent{
		InstID:    c.InstID,
		OrderID:   res.OrderID,
		Success:   res.Success,
		Error:     res.Error,
		Timestamp: s.now(),
	})

	if !res.Success {
		return Outcome{Message: fmt.Sprintf("Failed to close %s: %s", c.InstID, res.Error)}
	}
	return Outcome{Success: true, OrderID: res.OrderID, Message: "Position closed: " + c.InstID}
}

func (h *OrderHandler) closeAll(ctx context.Context) Outcome {
	s := h.service
	res := s.trader.CloseAllPositions(ctx)

	closed := 0
	for _, r := range res.Results {
		s.eventBus.Publish(PositionClosedEvent{
			InstID:    r.InstID,
			Success:   r.Success,
			Error:     r.Error,
			Timestamp: s.now(),
		})
		if r.Success {
			closed++
		}
	}
	if len(res.Results) > 0 {
		s.eventBus.Publish(CloseAllCompletedEvent{Closed: closed, Total: len(res.Results), Timestamp: s.now()})
	}

	msg := res.Message
	if failed := res.Failed(); len(failed) > 0 {
		parts := make([]string, 0, len(failed))
		for _, f := range failed {
			parts = append(parts, f.InstID+": "+f.Error)
		}
		msg += " (failed: " + strings.Join(parts, "; ") + ")"
	}
	return Outcome{Success: res.Success, Message: msg, CloseAll: &res}
}

// MarketHandler answers read-only market queries.
type MarketHandler struct {
	service *TradingService
}

func (h *MarketHandler) CanHandle(cmd TradingCommand) bool {
	switch cmd.(type) {
	case SearchCommand, PriceCommand:
		return true
	}
	return false
}

func (h *MarketHandler) Handle(ctx context.Context, cmd TradingCommand) (Outcome, error) {
	s := h.service
	switch c := cmd.(type) {
	case SearchCommand:
		found, err := s.trader.SearchPair(ctx, c.Query)
		if err != nil {
			return Outcome{Message: "Search failed: " + err.Error()}, err
		}
		return Outcome{
			Success:     true,
			Instruments: found,
			Message:     fmt.Sprintf("Found %d pairs for %q", len(found), strings.ToUpper(strings.TrimSpace(c.Query))),
		}, nil

	case PriceCommand:
		price, ok := s.trader.CurrentPrice(ctx, c.InstID)
		if !ok {
			return Outcome{Message: "Failed to get current price for " + c.InstID}, nil
		}
		return Outcome{Success: true, Price: price, Message: fmt.Sprintf("%s price: %s", c.InstID, price.String())}, nil
	}
	return Outcome{}, fmt.Errorf("invalid command type for MarketHandler: %s", cmd.GetType())
}
