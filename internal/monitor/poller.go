package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rovshanmuradov/okx-trader/internal/okx"
	"github.com/rovshanmuradov/okx-trader/internal/trader"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrPollerRunning = errors.New("poller already running")
	ErrPollerStopped = errors.New("poller stopped")
	ErrStopTimeout   = errors.New("timeout waiting for poll loop to finish")
)

// PositionSource is what the poller reads each cycle.
type PositionSource interface {
	Positions(ctx context.Context) ([]okx.Position, error)
	Balance(ctx context.Context) (okx.Balance, error)
}

// Snapshot is one poll result. When Err is set the other fields are empty
// and consumers keep showing their previous data. BalanceErr only marks
// Balance as missing; the positions are still current.
type Snapshot struct {
	Positions  []okx.Position
	Balance    okx.Balance
	Summary    trader.Summary
	Err        error
	BalanceErr error
	At         time.Time
}

type pollerState int

const (
	stateIdle pollerState = iota
	stateRunning
	stateStopped
)

// Poller fetches positions and balance on a fixed interval and publishes
// snapshots on a single-slot channel. A slow consumer only ever sees the
// newest snapshot. Polls never overlap.
type Poller struct {
	source   PositionSource
	interval time.Duration
	logger   *zap.Logger
	now      func() time.Time

	updates   chan Snapshot
	refresh   chan struct{}
	observers []func(Snapshot)

	mu     sync.Mutex
	state  pollerState
	cancel context.CancelFunc
	done   chan struct{}

	sentUpdates    uint64
	droppedUpdates uint64
}

func NewPoller(source PositionSource, interval time.Duration, logger *zap.Logger) *Poller {
	return &Poller{
		source:   source,
		interval: interval,
		logger:   logger.Named("poller"),
		now:      time.Now,
		updates:  make(chan Snapshot, 1),
		refresh:  make(chan struct{}, 1),
	}
}

// OnSnapshot registers fn to see every snapshot before it is published. It
// runs on the poll goroutine and must be registered before Start.
func (p *Poller) OnSnapshot(fn func(Snapshot)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, fn)
}

// Updates is closed once Stop has waited for the poll loop to exit.
func (p *Poller) Updates() <-chan Snapshot {
	return p.updates
}

// Start launches the poll loop. The first poll runs immediately.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case stateRunning:
		return ErrPollerRunning
	case stateStopped:
		return ErrPollerStopped
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.state = stateRunning

	go p.run(ctx, p.done)

	p.logger.Info("Position polling started", zap.Duration("interval", p.interval))
	return nil
}

// RefreshNow asks for a poll ahead of the next tick. Requests made while one
// is already queued are merged.
func (p *Poller) RefreshNow() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

// Stop cancels the loop and waits up to timeout for it to exit. In-flight
// requests end on their own deadline. It is safe to call more than once.
func (p *Poller) Stop(timeout time.Duration) error {
	p.mu.Lock()
	if p.state != stateRunning {
		p.state = stateStopped
		p.mu.Unlock()
		return nil
	}
	p.state = stateStopped
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	cancel()

	select {
	case <-done:
		close(p.updates)
		sent, dropped := p.GetStats()
		p.logger.Info("Position polling stopped",
			zap.Uint64("sent", sent),
			zap.Uint64("dropped", dropped))
		return nil
	case <-time.After(timeout):
		p.logger.Warn("Timeout waiting for poll loop to finish")
		return ErrStopTimeout
	}
}

// Close implements io.Closer for the shutdown handler.
func (p *Poller) Close() error {
	return p.Stop(5 * time.Second)
}

// GetStats returns how many snapshots were delivered and replaced unread.
func (p *Poller) GetStats() (sent, dropped uint64) {
	return atomic.LoadUint64(&p.sentUpdates), atomic.LoadUint64(&p.droppedUpdates)
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.publish(p.poll(ctx))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-p.refresh:
		}
		snap := p.poll(ctx)
		if ctx.Err() != nil {
			return
		}
		p.publish(snap)
	}
}

func (p *Poller) poll(ctx context.Context) Snapshot {
	var (
		positions  []okx.Position
		balance    okx.Balance
		balanceErr error
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		positions, err = p.source.Positions(ctx)
		return err
	})
	g.Go(func() error {
		balance, balanceErr = p.source.Balance(ctx)
		return nil
	})

	at := p.now()
	if err := g.Wait(); err != nil {
		if ctx.Err() == nil {
			p.logger.Error("Error updating positions", zap.Error(err))
		}
		return Snapshot{Err: err, At: at}
	}
	if balanceErr != nil && ctx.Err() == nil {
		p.logger.Warn("Error updating balance", zap.Error(balanceErr))
	}

	return Snapshot{
		Positions:  positions,
		Balance:    balance,
		Summary:    trader.Summarize(positions),
		BalanceErr: balanceErr,
		At:         at,
	}
}

// publish replaces an unread snapshot rather than blocking the loop.
func (p *Poller) publish(snap Snapshot) {
	for _, fn := range p.observers {
		fn(snap)
	}

	select {
	case p.updates <- snap:
		atomic.AddUint64(&p.sentUpdates, 1)
		return
	default:
	}

	select {
	case <-p.updates:
		atomic.AddUint64(&p.droppedUpdates, 1)
	default:
	}

	select {
	case p.updates <- snap:
		atomic.AddUint64(&p.sentUpdates, 1)
	default:
		atomic.AddUint64(&p.droppedUpdates, 1)
	}
}
