package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

// fakeClock is a manually advanced clock safe for concurrent reads.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string {
		return fmt.Sprintf("match-%d", n.Add(1))
	}
}

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()
	base := []Option{
		WithLogger(zaptest.NewLogger(t)),
		WithMatchIDs(sequentialIDs()),
	}
	return NewRegistry(append(base, opts...)...)
}

// drain returns every snapshot currently buffered in s without blocking.
func drain(s *ChannelSink) []Snapshot {
	var out []Snapshot
	for {
		select {
		case snap, ok := <-s.Events():
			if !ok {
				return out
			}
			out = append(out, snap)
		default:
			return out
		}
	}
}

func last(snaps []Snapshot) Snapshot {
	if len(snaps) == 0 {
		return Snapshot{}
	}
	return snaps[len(snaps)-1]
}

// flakySink records pushes and fails them on demand.
type flakySink struct {
	id     string
	fail   atomic.Bool
	closed atomic.Bool

	mu     sync.Mutex
	pushed []Snapshot
}

func newFlakySink(id string) *flakySink {
	return &flakySink{id: id}
}

func (f *flakySink) ID() string { return f.id }

func (f *flakySink) Push(snap Snapshot) error {
	if f.closed.Load() {
		return errors.New("closed")
	}
	if f.fail.Load() {
		return errors.New("stream broken")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, snap)
	return nil
}

func (f *flakySink) Close() error {
	f.closed.Store(true)
	return nil
}

func (f *flakySink) Closed() bool { return f.closed.Load() }

func (f *flakySink) Pushed() []Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Snapshot(nil), f.pushed...)
}

// activeSession creates a session with alice (FIRST) and bob (SECOND)
// seated and both sinks drained.
func activeSession(t *testing.T, reg *Registry) (string, *ChannelSink, *ChannelSink) {
	t.Helper()
	id := reg.Create("Alpa")
	alice := NewChannelSink("alice-sink", 64)
	bob := NewChannelSink("bob-sink", 64)
	if _, err := reg.Join(id, "alice", alice); err != nil {
		t.Fatalf("alice join: %v", err)
	}
	if _, err := reg.Join(id, "bob", bob); err != nil {
		t.Fatalf("bob join: %v", err)
	}
	drain(alice)
	drain(bob)
	return id, alice, bob
}
