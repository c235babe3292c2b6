package session

import (
	"fmt"
	"sync"
)

// Sink is the per-seat outbound channel. Session pushes snapshots to it
// while holding its lock, so Push must never block.
type Sink interface {
	// ID identifies the sink; unique per joining call.
	ID() string
	// Push enqueues a snapshot or returns an error if it cannot.
	Push(Snapshot) error
	// Close completes the stream. Must be idempotent.
	Close() error
	// Closed reports whether the sink no longer accepts snapshots.
	Closed() bool
}

// ChannelSink routes snapshots to a buffered Go channel drained by the
// transport's stream goroutine.
type ChannelSink struct {
	id     string
	events chan Snapshot
	mu     sync.Mutex
	closed bool
}

// NewChannelSink creates a ChannelSink with the given buffer size.
//
// Precondition: id must be non-empty.
// Postcondition: Returns a sink with an open events channel.
func NewChannelSink(id string, bufferSize int) *ChannelSink {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &ChannelSink{
		id:     id,
		events: make(chan Snapshot, bufferSize),
	}
}

// ID returns the sink identifier.
func (c *ChannelSink) ID() string {
	return c.id
}

// Push enqueues snap without blocking.
//
// Postcondition: snap is buffered, or an error is returned if the sink is
// closed or its buffer is full.
func (c *ChannelSink) Push(snap Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return fmt.Errorf("sink %s is closed", c.id)
	}
	select {
	case c.events <- snap:
		return nil
	default:
		return fmt.Errorf("sink %s buffer full", c.id)
	}
}

// Events returns the read-only snapshot channel. It is closed by Close
// after any buffered snapshots, so a reader drains and then completes.
func (c *ChannelSink) Events() <-chan Snapshot {
	return c.events
}

// Close marks the sink closed and closes the events channel.
func (c *ChannelSink) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.events)
	}
	return nil
}

// Closed reports whether Close has been called.
func (c *ChannelSink) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
