package eventstream

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"
)

var (
	defaultNumWorkers uint = 3
	defaultQueueSize  uint = 256
)

// PoolConfig is the configuration options for the async publisher pool.
type PoolConfig struct {
	// Publisher is the inner publisher events are delivered to. Required.
	Publisher Publisher

	// NumWorkers is the number of background delivery workers (defaults to 3).
	NumWorkers uint

	// QueueSize is the capacity of the buffered event channel (defaults to 256).
	QueueSize uint

	// Logger is the provided zap logger.
	Logger *zap.Logger
}

// Pool wraps a Publisher with a worker pool so event delivery never blocks
// the caller. Publish enqueues and returns immediately; when the queue is
// full the event is dropped and logged rather than applying backpressure.
type Pool struct {
	inner  Publisher
	queue  chan *Event
	wg     sync.WaitGroup
	logger *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewPool creates a delivery pool around c.Publisher and starts its workers.
func NewPool(c PoolConfig) (*Pool, error) {
	if c.Publisher == nil {
		return nil, fmt.Errorf("event pool: inner publisher is required")
	}
	if c.Logger == nil {
		return nil, fmt.Errorf("event pool: logger is required")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}
	if c.QueueSize == 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("event pool: NumWorkers %d exceeds max int", c.NumWorkers)
	}

	p := &Pool{
		inner:  c.Publisher,
		queue:  make(chan *Event, c.QueueSize),
		logger: c.Logger,
	}

	p.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go p.worker(i)
	}

	return p, nil
}

// Publish submits the event for background delivery. It never blocks: when
// the queue is full the event is dropped, logged, and nil is returned.
func (p *Pool) Publish(_ context.Context, event *Event) error {
	if event == nil {
		return ErrNilEvent
	}

	select {
	case p.queue <- event:
		p.logger.Debug("event queued",
			zap.String("event_type", event.EventType),
			zap.String("event_id", event.EventID),
		)
	default:
		p.logger.Error("event not queued, queue full, event dropped",
			zap.String("event_type", event.EventType),
			zap.String("event_id", event.EventID),
		)
	}

	return nil
}

// Close stops accepting events, waits for queued deliveries to drain, then
// closes the inner publisher. Safe to call more than once.
func (p *Pool) Close() error {
	p.closeOnce.Do(func() {
		close(p.queue)
		p.wg.Wait()
		p.closeErr = p.inner.Close()
	})

	return p.closeErr
}

// worker continuously pulls events off the queue and delivers them.
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("event worker started", zap.Uint("worker_id", id))

	for event := range p.queue {
		if err := p.inner.Publish(context.Background(), event); err != nil {
			p.logger.Error("async event delivery failed",
				zap.String("event_type", event.EventType),
				zap.String("event_id", event.EventID),
				zap.Error(err),
			)
		}
	}

	p.logger.Debug("event worker stopped", zap.Uint("worker_id", id))
}

var _ Publisher = (*Pool)(nil)
