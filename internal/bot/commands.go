// internal/bot/commands.go
package bot

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/rovshanmuradov/okx-trader/internal/okx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LeverageChoices are the leverages offered for manual orders.
var LeverageChoices = []int{5, 10, 20, 50, 100}

// TradingCommand is a user action routed through the CommandBus.
type TradingCommand interface {
	GetType() string
	Validate() error
}

// PlaceOrderCommand opens a position worth MarginUSD of margin at Leverage.
// MarginUSD is the raw user input.
type PlaceOrderCommand struct {
	InstID    string
	Side      okx.Side
	MarginUSD string
	Leverage  int
}

func (c PlaceOrderCommand) GetType() string {
	return "place_order"
}

func (c PlaceOrderCommand) Validate() error {
	if strings.TrimSpace(c.InstID) == "" {
		return fmt.Errorf("please select a trading pair first")
	}
	if c.Side != okx.SideBuy && c.Side != okx.SideSell {
		return fmt.Errorf("side must be buy or sell, got: %q", c.Side)
	}
	if _, err := c.Margin(); err != nil {
		return err
	}
	if !validLeverage(c.Leverage) {
		return fmt.Errorf("leverage must be one of %v, got: %d", LeverageChoices, c.Leverage)
	}
	return nil
}

// Margin parses MarginUSD.
func (c PlaceOrderCommand) Margin() (decimal.Decimal, error) {
	m, err := decimal.NewFromString(strings.TrimSpace(c.MarginUSD))
	if err != nil || !m.IsPositive() {
		return decimal.Zero, fmt.Errorf("please enter a valid amount")
	}
	return m, nil
}

func validLeverage(lev int) bool {
	for _, l := range LeverageChoices {
		if l == lev {
			return true
		}
	}
	return false
}

type ClosePositionCommand struct {
	InstID string
}

func (c ClosePositionCommand) GetType() string {
	return "close_position"
}

func (c ClosePositionCommand) Validate() error {
	if strings.TrimSpace(c.InstID) == "" {
		return fmt.Errorf("please select a position to close")
	}
	return nil
}

type CloseAllCommand struct{}

func (c CloseAllCommand) GetType() string {
	return "close_all"
}

func (c CloseAllCommand) Validate() error {
	return nil
}

type SearchCommand struct {
	Query string
}

func (c SearchCommand) GetType() string {
	return "search"
}

func (c SearchCommand) Validate() error {
	if strings.TrimSpace(c.Query) == "" {
		return fmt.Errorf("please enter a search query")
	}
	return nil
}

// PriceCommand fetches the last price of a selected pair.
type PriceCommand struct {
	InstID string
}

func (c PriceCommand) GetType() string {
	return "price"
}

func (c PriceCommand) Validate() error {
	if strings.TrimSpace(c.InstID) == "" {
		return fmt.Errorf("please select a trading pair first")
	}
	return nil
}

// CommandHandler executes one family of commands.
type CommandHandler interface {
	Handle(ctx context.Context, cmd TradingCommand) (Outcome, error)
	CanHandle(cmd TradingCommand) bool
}

// CommandBus dispatches commands to handlers by concrete type.
type CommandBus struct {
	handlers map[reflect.Type]CommandHandler
	logger   *zap.Logger
	mu       sync.RWMutex
}

func NewCommandBus(logger *zap.Logger) *CommandBus {
	return &CommandBus{
		handlers: make(map[reflect.Type]CommandHandler),
		logger:   logger.Named("command_bus"),
	}
}

// RegisterHandler registers handler for the concrete type of cmdType.
func (bus *CommandBus) RegisterHandler(cmdType TradingCommand, handler CommandHandler) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	bus.handlers[reflect.TypeOf(cmdType)] = handler

	bus.logger.Debug("Command handler registered",
		zap.String("command_type", cmdType.GetType()),
		zap.String("handler", reflect.TypeOf(handler).String()))
}

// Send validates cmd and runs it on its handler. A validation error is a
// *ValidationError and means nothing was sent to the exchange. Failures are
// returned to the caller, which reports them; the bus logs them at debug.
func (bus *CommandBus) Send(ctx context.Context, cmd TradingCommand) (Outcome, error) {
	if err := cmd.Validate(); err != nil {
		bus.logger.Debug("Command validation failed",
			zap.String("command_type", cmd.GetType()),
			zap.Error(err))
		return Outcome{}, &ValidationError{Err: err}
	}

	bus.mu.RLock()
	handler, exists := bus.handlers[reflect.TypeOf(cmd)]
	bus.mu.RUnlock()

	if !exists || !handler.CanHandle(cmd) {
		bus.logger.Error("No handler for command", zap.String("command_type", cmd.GetType()))
		return Outcome{}, fmt.Errorf("no handler registered for command type: %s", cmd.GetType())
	}

	bus.logger.Debug("Executing command", zap.String("command_type", cmd.GetType()))

	out, err := handler.Handle(ctx, cmd)
	if err != nil {
		bus.logger.Debug("Command execution failed",
			zap.String("command_type", cmd.GetType()),
			zap.Error(err))
		return out, err
	}

	bus.logger.Debug("Command executed",
		zap.String("command_type", cmd.GetType()),
		zap.Bool("success", out.Success))
	return out, nil
}

// GetRegisteredHandlers lists the command types that have a handler.
func (bus *CommandBus) GetRegisteredHandlers() []string {
	bus.mu.RLock()
	defer bus.mu.RUnlock()

	handlers := make([]string, 0, len(bus.handlers))
	for cmdType := range bus.handlers {
		var cmd TradingCommand
		if cmdType.Kind() == reflect.Ptr {
			cmd = reflect.New(cmdType.Elem()).Interface().(TradingCommand)
		} else {
			cmd = reflect.New(cmdType).Elem().Interface().(TradingCommand)
		}
		handlers = append(handlers, cmd.GetType())
	}
	return handlers
}

// ValidationError wraps a user input error caught before any network call.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}
