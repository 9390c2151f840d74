package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/qrave1/RoomRelay/internal/domain/events"
)

var testEpoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestClock() *clockwork.FakeClock {
	return clockwork.NewFakeClockAt(testEpoch)
}

type stubConn struct {
	id uuid.UUID

	mu     sync.Mutex
	sent   []events.Message
	closed bool
}

func newStubConn() *stubConn {
	return &stubConn{id: uuid.New()}
}

func (c *stubConn) ID() uuid.UUID { return c.id }

func (c *stubConn) Send(msg events.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	c.sent = append(c.sent, msg)
	return true
}

func (c *stubConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
}

func (c *stubConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}
