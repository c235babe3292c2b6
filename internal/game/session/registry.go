package session

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tictactoe/internal/game/match"
)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used by the registry and its sessions.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// WithMatchIDs replaces the match identifier generator.
func WithMatchIDs(gen func() string) Option {
	return func(r *Registry) { r.matchIDs = gen }
}

// WithResultObserver registers fn to receive every concluded match.
// fn is called while the session lock is held and must not block.
func WithResultObserver(fn func(Result)) Option {
	return func(r *Registry) { r.onResult = fn }
}

// WithEmptyTTL makes Sweep close sessions that nobody joined within ttl.
// Zero disables expiry.
func WithEmptyTTL(ttl time.Duration) Option {
	return func(r *Registry) { r.emptyTTL = ttl }
}

// Registry maps session identifiers to sessions. Lookups run in parallel;
// a session's own lock is never taken while the map lock is held.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	counter  atomic.Uint64

	logger   *zap.Logger
	now      func() time.Time
	matchIDs func() string
	onResult func(Result)
	emptyTTL time.Duration
}

// NewRegistry creates an empty Registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		sessions: make(map[string]*Session),
		logger:   zap.NewNop(),
		now:      time.Now,
		matchIDs: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create allocates a new empty OPEN session and returns its identifier.
//
// Postcondition: The returned id is unique for the lifetime of the registry.
func (r *Registry) Create(displayName string) string {
	seq := r.counter.Add(1)
	id := fmt.Sprintf("session-%d", seq)
	sess := newSession(id, seq, displayName, deps{
		logger:   r.logger,
		now:      r.now,
		matchIDs: r.matchIDs,
		onResult: r.onResult,
	})

	r.mu.Lock()
	r.sessions[id] = sess
	r.mu.Unlock()

	r.logger.Info("session created",
		zap.String("session_id", id),
		zap.String("display_name", displayName),
	)
	return id
}

// List returns the discoverable sessions in creation order. The view is a
// point-in-time snapshot and may be momentarily stale.
//
// Postcondition: Every returned summary is OPEN with exactly one seat.
func (r *Registry) List() []Summary {
	all := r.all()
	summaries := lo.Map(all, func(s *Session, _ int) Summary { return s.Summary() })
	return lo.Filter(summaries, func(s Summary, _ int) bool { return s.Discoverable() })
}

// Join seats name in session id with sink.
//
// Postcondition: Returns the assigned role, ErrNotFound if id is unknown or
// closed, or the session's own rejection (ErrSessionFull, ErrNameTaken,
// ErrSinkFailed).
func (r *Registry) Join(id, name string, sink Sink) (match.Role, error) {
	sess, ok := r.lookup(id)
	if !ok {
		return match.RoleNone, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	role, err := sess.Join(name, sink)
	if errors.Is(err, ErrSessionClosed) {
		return match.RoleNone, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	r.removeIfClosed(sess)
	return role, err
}

// Move forwards a move to session id. Unknown sessions yield false.
func (r *Registry) Move(id, name string, pos int) bool {
	sess, ok := r.lookup(id)
	if !ok {
		return false
	}
	return sess.Move(name, pos)
}

// Leave removes name from session id and reclaims the session once closed.
// Returns whether a seat was removed.
func (r *Registry) Leave(id, name string) bool {
	sess, ok := r.lookup(id)
	if !ok {
		return false
	}
	left := sess.Leave(name)
	r.removeIfClosed(sess)
	return left
}

// Detach removes the seat bound to sinkID from session id. The transport
// calls this when a participant's stream ends without an explicit leave.
func (r *Registry) Detach(id, sinkID string) bool {
	sess, ok := r.lookup(id)
	if !ok {
		return false
	}
	detached := sess.Detach(sinkID)
	r.removeIfClosed(sess)
	return detached
}

// Sweep prunes seats with broken sinks, expires never-joined sessions past
// the empty TTL, and removes every CLOSED session.
//
// Postcondition: Returns the number of sessions removed.
func (r *Registry) Sweep() int {
	now := r.now()
	removed := 0
	for _, sess := range r.all() {
		if n := sess.Prune(); n > 0 {
			r.logger.Info("pruned broken seats",
				zap.String("session_id", sess.ID()),
				zap.Int("seats", n),
			)
		}
		if r.emptyTTL > 0 {
			sess.ExpireEmpty(now, r.emptyTTL)
		}
		if r.removeIfClosed(sess) {
			removed++
		}
	}
	return removed
}

// Shutdown closes every session, completing all participant streams.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	all := lo.Values(r.sessions)
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, sess := range all {
		sess.Shutdown()
	}
	r.logger.Info("registry shut down", zap.Int("sessions", len(all)))
}

// Count returns the number of sessions currently registered.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) lookup(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	return sess, ok
}

// all returns the registered sessions ordered by creation.
func (r *Registry) all() []*Session {
	r.mu.RLock()
	out := lo.Values(r.sessions)
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Session) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	return out
}

// removeIfClosed deletes sess from the map if it is CLOSED and still the
// session registered under its id.
func (r *Registry) removeIfClosed(sess *Session) bool {
	if sess.Phase() != PhaseClosed {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.sessions[sess.ID()]; ok && cur == sess {
		delete(r.sessions, sess.ID())
		r.logger.Info("session removed", zap.String("session_id", sess.ID()))
		return true
	}
	return false
}
