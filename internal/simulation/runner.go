// Package simulation drives the market clock: a runner per portfolio that
// advances the simulated date one day per tick, feeding the event engine and
// the portfolio's price update in order.
package simulation

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"folioman/internal/logger"
	"folioman/internal/market"
)

// DefaultTickInterval is the wall-clock pause between simulated days when a
// runner is started without an explicit interval.
const DefaultTickInterval = 5 * time.Second

// Runner owns one portfolio's simulation loop. Each tick advances the event
// engine first, then the portfolio prices, then the simulated date by one
// day, so an event triggered on a tick already shapes that tick's prices.
//
// The runner can be driven two ways: Start launches a background loop on a
// wall-clock interval, and Step advances exactly one day on demand. Both go
// through the same serialized tick path.
type Runner struct {
	portfolio *market.Portfolio
	engine    *market.EventEngine

	paused atomic.Bool

	// tickMu serializes tick execution between the background loop and
	// manual Step calls.
	tickMu sync.Mutex
	date   time.Time
	ticks  int64

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunner creates a stopped runner over the portfolio, starting the
// simulated clock at the given date. A nil engine gets the default catalog.
func NewRunner(p *market.Portfolio, engine *market.EventEngine, start time.Time) *Runner {
	if engine == nil {
		engine = market.NewEventEngine(p, nil)
	}
	return &Runner{
		portfolio: p,
		engine:    engine,
		date:      start,
	}
}

// Date returns the next simulated date to be ticked.
func (r *Runner) Date() time.Time {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()
	return r.date
}

// Ticks returns how many simulated days have elapsed.
func (r *Runner) Ticks() int64 {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()
	return r.ticks
}

// News returns the current market headline.
func (r *Runner) News() string {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()
	return r.engine.News()
}

// Paused reports whether the background loop is skipping ticks.
func (r *Runner) Paused() bool { return r.paused.Load() }

// Pause makes the background loop skip ticks until Resume. Manual Step calls
// still advance the clock.
func (r *Runner) Pause() { r.paused.Store(true) }

// Resume lets the background loop tick again.
func (r *Runner) Resume() { r.paused.Store(false) }

// Step advances the simulation by exactly one day. Subscriber errors from
// the tick are logged and returned; the clock advances regardless.
func (r *Runner) Step() error {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()

	date := r.date
	r.engine.Tick()
	err := r.portfolio.AdvanceOneTick(date)
	r.date = date.AddDate(0, 0, 1)
	r.ticks++

	if err != nil {
		logger.Get().Warnw("tick completed with subscriber errors",
			"portfolio_id", r.portfolio.ID(),
			"date", date.Format(time.DateOnly),
			"error", err,
		)
	}
	return err
}

// TriggerEvent forces a market event on the next state the engine sees.
func (r *Runner) TriggerEvent(def market.EventDefinition) {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()
	r.engine.Trigger(def)
}

// ForceEndEvent terminates any active market event so asset parameters are
// back to their originals. Call before snapshotting for persistence.
func (r *Runner) ForceEndEvent() {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()
	r.engine.ForceEnd()
}

// EventActive reports whether a market event is currently running.
func (r *Runner) EventActive() bool {
	r.tickMu.Lock()
	defer r.tickMu.Unlock()
	return r.engine.Active()
}

// CriticalDropHandler returns a price-alert subscriber that pauses the
// background loop and logs the alert. Attach it to an asset's OnCriticalDrop
// when a low-price threshold is set.
func (r *Runner) CriticalDropHandler() market.PriceChangeHandler {
	return func(symbol string, price float64, msg string) error {
		r.Pause()
		logger.Get().Warnw("critical price drop, simulation paused",
			"portfolio_id", r.portfolio.ID(),
			"symbol", symbol,
			"price", price,
			"alert", msg,
		)
		return nil
	}
}

// Running reports whether the background loop is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

// Start launches the background tick loop. A non-positive interval falls
// back to DefaultTickInterval. Starting a running runner is a no-op.
func (r *Runner) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.loop(ctx, interval, r.done)
	logger.Get().Infow("simulation started",
		"portfolio_id", r.portfolio.ID(),
		"interval", interval,
	)
}

func (r *Runner) loop(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if r.paused.Load() {
				continue
			}
			// Step logs subscriber errors itself; the loop keeps going.
			_ = r.Step()
		}
	}
}

// Stop terminates the background loop and waits for the in-flight tick to
// finish. Stopping a stopped runner is a no-op.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	logger.Get().Infow("simulation stopped", "portfolio_id", r.portfolio.ID())
}
