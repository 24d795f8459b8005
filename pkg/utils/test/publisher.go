package testutils

import (
	"context"
	"sync"

	"github.com/engramco/engram/pkg/eventstream"
)

// CapturePublisher records every published event. Safe for concurrent use so
// it can sit behind the async event pool in tests.
type CapturePublisher struct {
	// Err causes Publish to fail when set.
	Err error

	mu     sync.Mutex
	events []*eventstream.Event
	closed bool
}

// NewCapturePublisher creates an empty capture publisher.
func NewCapturePublisher() *CapturePublisher {
	return &CapturePublisher{}
}

func (p *CapturePublisher) Publish(_ context.Context, event *eventstream.Event) error {
	if event == nil {
		return eventstream.ErrNilEvent
	}
	if p.Err != nil {
		return p.Err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)

	return nil
}

// Events returns the captured events in publish order.
func (p *CapturePublisher) Events() []*eventstream.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*eventstream.Event, len(p.events))
	copy(out, p.events)

	return out
}

// Closed reports whether Close was called.
func (p *CapturePublisher) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.closed
}

func (p *CapturePublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true

	return nil
}
