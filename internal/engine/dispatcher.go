package engine

import (
	"context"
	"sync"

	"reentry-engine/internal/models"
)

// Dispatcher serializes closure processing per symbol. Every symbol gets
// one worker goroutine consuming its own ordered queue, so all state
// transitions for a symbol's chains and combinations are linearizable
// with respect to its closure events, while distinct symbols proceed
// fully in parallel.
type Dispatcher struct {
	engine    *Engine
	queueSize int
	sink      func(models.DecisionMessage)

	mu      sync.Mutex
	queues  map[string]chan models.ClosureEvent
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
}

// NewDispatcher creates a dispatcher. sink, when non-nil, receives every
// successfully emitted decision in per-symbol order.
func NewDispatcher(engine *Engine, queueSize int, sink func(models.DecisionMessage)) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		engine:    engine,
		queueSize: queueSize,
		sink:      sink,
		queues:    make(map[string]chan models.ClosureEvent),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Submit routes a closure event to its symbol's worker, creating the
// worker on first sight of the symbol. Returns false when the queue is
// full or the dispatcher has stopped.
func (d *Dispatcher) Submit(ev models.ClosureEvent) bool {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return false
	}
	q, ok := d.queues[ev.Symbol]
	if !ok {
		q = make(chan models.ClosureEvent, d.queueSize)
		d.queues[ev.Symbol] = q
		d.wg.Add(1)
		go d.worker(q)
	}
	d.mu.Unlock()

	select {
	case q <- ev:
		return true
	default:
		return false
	}
}

// worker drains one symbol's queue in order.
func (d *Dispatcher) worker(q chan models.ClosureEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case ev, ok := <-q:
			if !ok {
				return
			}
			msg, err := d.engine.ProcessClosure(d.ctx, ev)
			if err != nil {
				// Typed rejection of this single closure; the worker
				// carries on with the next event.
				continue
			}
			if d.sink != nil {
				d.sink(msg)
			}
		}
	}
}

// Stop drains nothing further and waits for in-flight work to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()

	d.wg.Wait()
	d.cancel()
}
