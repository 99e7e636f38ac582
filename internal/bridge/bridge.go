// internal/bridge/bridge.go
// Package bridge owns the lifecycle of the analytics engine goroutine. It
// carries parameter updates in and routes results back out through a caller
// supplied delivery callback, so the UI never blocks on computation.
package bridge

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/mwiater/latlens/internal/engine"
	"github.com/mwiater/latlens/internal/filter"
	"github.com/mwiater/latlens/internal/logging"
	"github.com/mwiater/latlens/internal/record"
)

// inboxSize bounds how many updates can queue ahead of the engine. Updates
// are cheap; recomputes are not, so a burst of settings changes queues here.
const inboxSize = 16

// Bridge connects the UI to one long-lived engine goroutine. Create one per
// session with New, then Start it; Stop tears the goroutine down. A stopped
// bridge cannot be restarted; sessions create a fresh bridge instead.
type Bridge struct {
	id      string
	engine  *engine.Engine
	deliver func(engine.Outbound)

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	in      chan engine.Inbound
	stopped bool
	wg      sync.WaitGroup
}

// New returns an unstarted bridge. deliver is invoked from the bridge's
// router goroutine for every engine result; it must hand off to the UI's own
// dispatch mechanism rather than doing heavy work inline.
func New(deliver func(engine.Outbound)) *Bridge {
	return &Bridge{
		id:      uuid.NewString(),
		engine:  engine.New(),
		deliver: deliver,
	}
}

// ID identifies this bridge instance in log output, including across engine
// loop restarts.
func (b *Bridge) ID() string { return b.id }

// Start spins up the engine and router goroutines. Calling Start on a
// started bridge is a no-op.
func (b *Bridge) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.in != nil || b.stopped {
		return
	}

	b.ctx, b.cancel = context.WithCancel(context.Background())
	b.in = make(chan engine.Inbound, inboxSize)
	out := make(chan engine.Outbound, inboxSize)

	b.wg.Add(2)
	go b.runEngine(b.ctx, b.in, out)
	go b.route(out)
	logging.LogEvent("[BRIDGE] %s started", b.id)
}

// runEngine keeps the engine loop alive until the context is cancelled. A
// panic escaping the loop is fatal to that run only: the loop is relaunched
// with the same engine value, which preserves state and sequence
// monotonicity.
func (b *Bridge) runEngine(ctx context.Context, in <-chan engine.Inbound, out chan<- engine.Outbound) {
	defer b.wg.Done()
	defer close(out)
	for ctx.Err() == nil {
		if b.runOnce(ctx, in, out) {
			return
		}
		logging.LogEvent("[BRIDGE] %s engine loop restarted", b.id)
	}
}

// runOnce runs the engine loop until it exits. It reports true on a clean
// exit and false when a panic was recovered and the loop should restart.
func (b *Bridge) runOnce(ctx context.Context, in <-chan engine.Inbound, out chan<- engine.Outbound) (clean bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.LogEvent("[BRIDGE] %s engine loop panic: %v", b.id, r)
			clean = false
		}
	}()
	b.engine.Run(ctx, in, out)
	return true
}

// route forwards engine results to the delivery callback until the engine
// loop closes its output channel.
func (b *Bridge) route(out <-chan engine.Outbound) {
	defer b.wg.Done()
	for msg := range out {
		b.deliver(msg)
	}
}

// Stop tears down the engine goroutine and waits for in-flight delivery to
// finish.
func (b *Bridge) Stop() {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.stopped = true
	if b.cancel != nil {
		b.cancel()
	}
	b.mu.Unlock()

	b.wg.Wait()
	logging.LogEvent("[BRIDGE] %s stopped", b.id)
}

// SendRecords forwards a replaced record set to the engine.
func (b *Bridge) SendRecords(records []record.Record) {
	b.send(engine.LoadMsg{Records: records})
}

// SendFilters forwards a replaced filter spec to the engine.
func (b *Bridge) SendFilters(filters filter.Spec) {
	b.send(engine.SetFiltersMsg{Filters: filters})
}

// SendSort forwards a replaced sort spec to the engine.
func (b *Bridge) SendSort(sort *engine.SortSpec) {
	b.send(engine.SetSortMsg{Sort: sort})
}

// SendSettings forwards replaced display settings to the engine.
func (b *Bridge) SendSettings(settings engine.Settings) {
	b.send(engine.SetSettingsMsg{Settings: settings})
}

// Recompute forces a recompute with unchanged parameters.
func (b *Bridge) Recompute() {
	b.send(engine.RecomputeMsg{})
}

// send queues one inbound message in send order. Sends on a stopped or
// unstarted bridge are dropped; updates are fire-and-forget from the UI's
// perspective.
func (b *Bridge) send(msg engine.Inbound) {
	b.mu.Lock()
	in, ctx, stopped := b.in, b.ctx, b.stopped
	b.mu.Unlock()
	if in == nil || stopped {
		return
	}
	select {
	case in <- msg:
	case <-ctx.Done():
	}
}
