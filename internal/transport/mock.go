package transport

import (
	"context"
	"sync"
)

// Mock is an in-memory Transport used by tests and by "meshexec serve
// --transport=mock" dry runs: Inject feeds synthetic inbound events, Sent
// records every outbound frame in order.
type Mock struct {
	mu     sync.Mutex
	sent   []string
	events chan Event
	errs   chan error
	closed bool
}

// NewMock constructs a Mock with a buffered event channel.
func NewMock() *Mock {
	return &Mock{
		events: make(chan Event, 64),
		errs:   make(chan error, 1),
	}
}

// Inject enqueues an inbound event as if received from the mesh.
func (m *Mock) Inject(evt Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.events <- evt
}

// Fail enqueues a terminal transport error, simulating a dropped stream.
func (m *Mock) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.errs <- err
}

// RecvText implements Transport.
func (m *Mock) RecvText(ctx context.Context) (<-chan Event, <-chan error) {
	return m.events, m.errs
}

// SendText implements Transport, recording the frame for later inspection.
func (m *Mock) SendText(ctx context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, text)
	return nil
}

// Sent returns a copy of every frame sent so far, in order.
func (m *Mock) Sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent))
	copy(out, m.sent)
	return out
}

// Close implements Transport.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.events)
	close(m.errs)
	return nil
}
