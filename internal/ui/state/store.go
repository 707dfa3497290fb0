package state

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rovshanmuradov/okx-trader/internal/monitor"
	"github.com/rovshanmuradov/okx-trader/internal/okx"
	"github.com/rovshanmuradov/okx-trader/internal/trader"
	"go.uber.org/zap"
)

// MaxEquityPoints bounds the equity history kept for the header sparkline.
const MaxEquityPoints = 60

type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeSuccess
	NoticeWarning
	NoticeError
)

// Notice is the one-off notification line.
type Notice struct {
	Text  string
	Level NoticeLevel
	At    time.Time
}

// Store holds the display state of one front-end: the latest positions
// snapshot, the selected instrument and the last notification. It is owned
// by the front-end and passed to the screens that read it.
type Store struct {
	mu     sync.RWMutex
	logger *zap.Logger

	positions []okx.Position
	balance   okx.Balance
	summary   trader.Summary
	updatedAt time.Time
	loaded    bool
	lastErr   error

	selected    okx.Instrument
	hasSelected bool
	results     []okx.Instrument
	lastPrice   map[string]string

	equity []float64
	notice Notice

	// Statistics (accessed atomically)
	reads  uint64
	writes uint64
}

// NewStore creates an empty store.
func NewStore(logger *zap.Logger) *Store {
	return &Store{
		logger:    logger,
		lastPrice: make(map[string]string),
	}
}

// ApplySnapshot replaces positions and balance with the poll result. A
// snapshot carrying an error leaves the previous data in place.
func (s *Store) ApplySnapshot(snap monitor.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	atomic.AddUint64(&s.writes, 1)

	if snap.Err != nil {
		s.lastErr = snap.Err
		s.logger.Debug("Keeping previous positions after failed poll", zap.Error(snap.Err))
		return
	}

	s.lastErr = nil
	s.positions = append([]okx.Position(nil), snap.Positions...)
	s.summary = snap.Summary
	s.updatedAt = snap.At
	s.loaded = true

	if snap.BalanceErr != nil {
		return
	}
	s.balance = snap.Balance
	eq, _ := snap.Balance.TotalEq.Float64()
	s.equity = append(s.equity, eq)
	if len(s.equity) > MaxEquityPoints {
		s.equity = s.equity[len(s.equity)-MaxEquityPoints:]
	}
}

// Positions returns a copy of the latest positions.
func (s *Store) Positions() []okx.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()
	atomic.AddUint64(&s.reads, 1)
	return append([]okx.Position(nil), s.positions...)
}

// Position looks up an open position by instrument id.
func (s *Store) Position(instID string) (okx.Position, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	atomic.AddUint64(&s.reads, 1)
	for _, p := range s.positions {
		if p.InstID == instID {
			return p, true
		}
	}
	return okx.Position{}, false
}

func (s *Store) Summary() trader.Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

func (s *Store) Balance() okx.Balance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balance
}

// UpdatedAt is the time of the last successful poll.
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Loaded is false until the first successful poll.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// LastError is the error of the most recent poll, nil after a success.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// EquityHistory returns a copy of the recorded account equity values.
func (s *Store) EquityHistory() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]float64(nil), s.equity...)
}

func (s *Store) SetSearchResults(results []okx.Instrument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	atomic.AddUint64(&s.writes, 1)
	s.results = append([]okx.Instrument(nil), results...)
}

func (s *Store) SearchResults() []okx.Instrument {
	s.mu.RLock()
	defer s.mu.RUnlock()
	atomic.AddUint64(&s.reads, 1)
	return append([]okx.Instrument(nil), s.results...)
}

// Select makes inst the target of order buttons.
func (s *Store) Select(inst okx.Instrument) {
	s.mu.Lock()
	defer s.mu.Unlock()
	atomic.AddUint64(&s.writes, 1)
	s.selected = inst
	s.hasSelected = true
}

func (s *Store) Selected() (okx.Instrument, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected, s.hasSelected
}

// SetPrice records the last fetched price of an instrument.
func (s *Store) SetPrice(instID, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPrice[instID] = price
}

func (s *Store) Price(instID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.lastPrice[instID]
	return p, ok
}

func (s *Store) SetNotice(n Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	atomic.AddUint64(&s.writes, 1)
	s.notice = n
}

func (s *Store) Notice() Notice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notice
}

// GetStats returns store statistics
func (s *Store) GetStats() (positions, reads, writes uint64) {
	s.mu.RLock()
	positions = uint64(len(s.positions))
	s.mu.RUnlock()

	reads = atomic.LoadUint64(&s.reads)
	writes = atomic.LoadUint64(&s.writes)
	return positions, reads, writes
}
