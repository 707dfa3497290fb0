// internal/bot/events.go
package bot

import (
	"reflect"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TradingEvent is published after an action reached the exchange.
type TradingEvent interface {
	GetType() string
	GetTimestamp() time.Time
}

// OrderPlacedEvent records an opening market order, accepted or not.
type OrderPlacedEvent struct {
	InstID    string
	Side      string
	Size      string
	Leverage  int
	OrderID   string
	Success   bool
	Error     string
	Timestamp time.Time
}

func (e OrderPlacedEvent) GetType() string {
	return "order_placed"
}

func (e OrderPlacedEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

// PositionClosedEvent records one closing order.
type PositionClosedEvent struct {
	InstID    string
	OrderID   string
	Success   bool
	Error     string
	Timestamp time.Time
}

func (e PositionClosedEvent) GetType() string {
	return "position_closed"
}

func (e PositionClosedEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

type CloseAllCompletedEvent struct {
	Closed    int
	Total     int
	Timestamp time.Time
}

func (e CloseAllCompletedEvent) GetType() string {
	return "close_all_completed"
}

func (e CloseAllCompletedEvent) GetTimestamp() time.Time {
	return e.Timestamp
}

// EventHandler reacts to events of one concrete type.
type EventHandler interface {
	Handle(event TradingEvent) error
	CanHandle(event TradingEvent) bool
}

// EventSubscriber reacts to events by type name.
type EventSubscriber interface {
	OnEvent(event TradingEvent)
	GetSubscribedEventTypes() []string
}

// EventBus fans events out to handlers and subscribers on their own goroutines.
type EventBus struct {
	handlers    map[reflect.Type][]EventHandler
	subscribers map[string][]EventSubscriber // event_type -> subscribers
	logger      *zap.Logger
	mu          sync.RWMutex
}

func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		handlers:    make(map[reflect.Type][]EventHandler),
		subscribers: make(map[string][]EventSubscriber),
		logger:      logger.Named("event_bus"),
	}
}

func (bus *EventBus) RegisterHandler(eventType TradingEvent, handler EventHandler) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	eventReflectType := reflect.TypeOf(eventType)
	bus.handlers[eventReflectType] = append(bus.handlers[eventReflectType], handler)

	bus.logger.Debug("Event handler registered",
		zap.String("event_type", eventType.GetType()),
		zap.String("handler", reflect.TypeOf(handler).String()))
}

func (bus *EventBus) Subscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	for _, eventType := range subscriber.GetSubscribedEventTypes() {
		bus.subscribers[eventType] = append(bus.subscribers[eventType], subscriber)
		bus.logger.Debug("Subscriber registered",
			zap.String("event_type", eventType),
			zap.String("subscriber", reflect.TypeOf(subscriber).String()))
	}
}

// Publish never blocks the caller.
func (bus *EventBus) Publish(event TradingEvent) {
	bus.mu.RLock()
	handlers := bus.handlers[reflect.TypeOf(event)]
	subscribers := bus.subscribers[event.GetType()]
	bus.mu.RUnlock()

	bus.logger.Debug("Publishing event",
		zap.String("event_type", event.GetType()),
		zap.Int("handlers", len(handlers)),
		zap.Int("subscribers", len(subscribers)))

	for _, handler := range handlers {
		if handler.CanHandle(event) {
			go func(h EventHandler) {
				if err := h.Handle(event); err != nil {
					bus.logger.Error("Event handler failed",
						zap.String("event_type", event.GetType()),
						zap.String("handler", reflect.TypeOf(h).String()),
						zap.Error(err))
				}
			}(handler)
		}
	}

	for _, subscriber := range subscribers {
		go func(s EventSubscriber) {
			defer func() {
				if r := recover(); r != nil {
					bus.logger.Error("Event subscriber panic",
						zap.String("event_type", event.GetType()),
						zap.String("subscriber", reflect.TypeOf(s).String()),
						zap.Any("panic", r))
				}
			}()
			s.OnEvent(event)
		}(subscriber)
	}
}

func (bus *EventBus) GetSubscriberCount(eventType string) int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subscribers[eventType])
}

func (bus *EventBus) GetHandlerCount(eventType TradingEvent) int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.handlers[reflect.TypeOf(eventType)])
}

// RecordWriter is the CSV sink of the trade journal.
type RecordWriter interface {
	WriteRecord(record []string) error
}

// JournalHeader is the column layout of the trade journal.
var JournalHeader = []string{"timestamp", "action", "inst_id", "side", "size", "leverage", "order_id", "status", "error"}

// JournalHandler appends order and close events to a CSV trade journal.
type JournalHandler struct {
	w RecordWriter
}

func NewJournalHandler(w RecordWriter) *JournalHandler {
	return &JournalHandler{w: w}
}

func (h *JournalHandler) CanHandle(event TradingEvent) bool {
	switch event.(type) {
	case OrderPlacedEvent, PositionClosedEvent:
		return true
	}
	return false
}

func (h *JournalHandler) Handle(event TradingEvent) error {
	ts := event.GetTimestamp().UTC().Format(time.RFC3339)
	switch e := event.(type) {
	case OrderPlacedEvent:
		return h.w.WriteRecord([]string{ts, "open", e.InstID, e.Side, e.Size, strconv.Itoa(e.Leverage), e.OrderID, status(e.Success), e.Error})
	case PositionClosedEvent:
		return h.w.WriteRecord([]string{ts, "close", e.InstID, "", "", "", e.OrderID, status(e.Success), e.Error})
	}
	return nil
}

func status(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}

// Refresher is anything that can poll ahead of schedule.
type Refresher interface {
	RefreshNow()
}

// RefreshSubscriber requests an immediate position refresh after any trade.
type RefreshSubscriber struct {
	r Refresher
}

func NewRefreshSubscriber(r Refresher) *RefreshSubscriber {
	return &RefreshSubscriber{r: r}
}

func (s *RefreshSubscriber) OnEvent(TradingEvent) {
	s.r.RefreshNow()
}

func (s *RefreshSubscriber) GetSubscribedEventTypes() []string {
	return []string{"order_placed", "position_closed", "close_all_completed"}
}
