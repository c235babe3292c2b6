package testutil

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/cory-johannsen/tictactoe/internal/gameserver/tictacv1"
)

// SessionClient is a TicTacToeService test client for integration testing.
type SessionClient struct {
	tictacv1.TicTacToeServiceClient
	t *testing.T
}

// NewSessionClient dials the given target and returns a test client.
// Extra dial options are appended after insecure transport credentials.
//
// Precondition: target must name a listening TicTacToeService.
// Postcondition: Returns a client whose connection closes at test cleanup.
func NewSessionClient(t *testing.T, target string, opts ...grpc.DialOption) *SessionClient {
	t.Helper()
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)
	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		t.Fatalf("dialing %s: %v", target, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &SessionClient{TicTacToeServiceClient: tictacv1.NewTicTacToeServiceClient(conn), t: t}
}

// PlayerStream is one participant's JoinSession stream. Snapshots are read
// in the background so waits can time out.
type PlayerStream struct {
	t      *testing.T
	cancel context.CancelFunc
	states chan *tictacv1.SessionState
	done   chan struct{}
	err    error
}

// Join opens a JoinSession stream for name in sessionID.
//
// Postcondition: The stream is cancelled at test cleanup. A rejected join
// surfaces as the error from the first Next or Err call.
func (c *SessionClient) Join(sessionID, name string) *PlayerStream {
	c.t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	stream, err := c.JoinSession(ctx, &tictacv1.JoinSessionRequest{SessionId: sessionID, PlayerName: name})
	if err != nil {
		cancel()
		c.t.Fatalf("opening stream for %s: %v", name, err)
	}
	ps := &PlayerStream{
		t:      c.t,
		cancel: cancel,
		states: make(chan *tictacv1.SessionState, 64),
		done:   make(chan struct{}),
	}
	go func() {
		defer close(ps.done)
		defer close(ps.states)
		for {
			st, err := stream.Recv()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					ps.err = err
				}
				return
			}
			select {
			case ps.states <- st:
			case <-ctx.Done():
				ps.err = ctx.Err()
				return
			}
		}
	}()
	c.t.Cleanup(ps.Close)
	return ps
}

// Next returns the next snapshot, or nil and the terminal stream error once
// the stream has ended. A stream the server completed cleanly ends with a
// nil error. It fails the test if nothing arrives within timeout.
func (p *PlayerStream) Next(timeout time.Duration) (*tictacv1.SessionState, error) {
	p.t.Helper()
	select {
	case st, ok := <-p.states:
		if !ok {
			return nil, p.err
		}
		return st, nil
	case <-time.After(timeout):
		p.t.Fatalf("no session state within %s", timeout)
		return nil, nil
	}
}

// WaitFor reads snapshots until match returns true and returns that
// snapshot. It fails the test on timeout or stream end.
func (p *PlayerStream) WaitFor(match func(*tictacv1.SessionState) bool, timeout time.Duration) *tictacv1.SessionState {
	p.t.Helper()
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			p.t.Fatalf("condition not met within %s", timeout)
		}
		st, err := p.Next(remaining)
		if st == nil {
			p.t.Fatalf("stream ended before condition was met: %v", err)
		}
		if match(st) {
			return st
		}
	}
}

// Err waits for the stream to end and returns its terminal error.
func (p *PlayerStream) Err(timeout time.Duration) error {
	p.t.Helper()
	for {
		select {
		case _, ok := <-p.states:
			if !ok {
				return p.err
			}
		case <-time.After(timeout):
			p.t.Fatalf("stream still open after %s", timeout)
			return nil
		}
	}
}

// Close cancels the stream and waits for the reader to exit.
func (p *PlayerStream) Close() {
	p.cancel()
	<-p.done
}
