package session

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tictactoe/internal/game/match"
)

// Result describes a match that reached a terminal outcome.
type Result struct {
	SessionID string
	MatchID   string
	First     string
	Second    string
	Outcome   match.Outcome
	Moves     int
	StartedAt time.Time
	EndedAt   time.Time
}

type seat struct {
	name string
	role match.Role
	sink Sink
}

// deps are the collaborators a Registry hands to every Session it creates.
type deps struct {
	logger   *zap.Logger
	now      func() time.Time
	matchIDs func() string
	onResult func(Result)
}

// Session owns one match's seats and state. All mutations are serialized
// by mu; broadcasts happen while mu is held so every seat observes
// snapshots in the order moves were accepted.
type Session struct {
	id          string
	seq         uint64
	displayName string
	createdAt   time.Time
	deps        deps
	logger      *zap.Logger

	mu      sync.Mutex
	seats   []*seat
	match   *match.Match
	phase   Phase
	version uint64

	// state mirrors phase (high 32 bits) and seat count (low 32 bits) so
	// discovery can read both without taking mu.
	state atomic.Uint64
}

func newSession(id string, seq uint64, displayName string, d deps) *Session {
	s := &Session{
		id:          id,
		seq:         seq,
		displayName: displayName,
		createdAt:   d.now(),
		deps:        d,
		logger:      d.logger.With(zap.String("session_id", id)),
		phase:       PhaseOpen,
	}
	s.syncLocked()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// DisplayName returns the name given at creation.
func (s *Session) DisplayName() string { return s.displayName }

// Phase returns a possibly stale view of the lifecycle phase.
func (s *Session) Phase() Phase {
	p, _ := unpackState(s.state.Load())
	return p
}

// SeatCount returns a possibly stale view of the number of occupied seats.
func (s *Session) SeatCount() int {
	_, n := unpackState(s.state.Load())
	return n
}

// Summary returns a consistent phase/seat-count pair without locking.
func (s *Session) Summary() Summary {
	p, n := unpackState(s.state.Load())
	return Summary{ID: s.id, DisplayName: s.displayName, SeatCount: n, Phase: p}
}

// Join seats name with sink. The first occupant becomes RoleFirst and the
// second RoleSecond; the second join starts a fresh match.
//
// Precondition: name must be non-empty; sink must be open.
// Postcondition: On success the seat has received its initial snapshot and
// the returned role is the seat's current role.
func (s *Session) Join(name string, sink Sink) (match.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.phase == PhaseClosed:
		return match.RoleNone, ErrSessionClosed
	case s.phase != PhaseOpen || len(s.seats) >= MaxSeats:
		return match.RoleNone, ErrSessionFull
	case s.seatByName(name) != nil:
		return match.RoleNone, ErrNameTaken
	}

	role := match.RoleFirst
	if len(s.seats) > 0 {
		role = match.RoleSecond
	}
	joined := &seat{name: name, role: role, sink: sink}
	s.seats = append(s.seats, joined)
	s.logger.Info("player joined",
		zap.String("player", name),
		zap.Stringer("role", role),
		zap.Int("seats", len(s.seats)),
	)

	if len(s.seats) == MaxSeats {
		s.match = match.NewMatch(s.deps.matchIDs(), s.deps.now())
		s.phase = PhaseActive
		s.syncLocked()
		s.logger.Info("match started", zap.String("match_id", s.match.ID))
		s.reconcileLocked(s.broadcastLocked())
	} else {
		s.syncLocked()
		s.reconcileLocked(s.pushLocked(joined))
	}

	current := s.seatBySink(sink.ID())
	if current == nil {
		return match.RoleNone, ErrSinkFailed
	}
	return current.role, nil
}

// Move plays pos for the seat named name. Any rejection returns false
// without mutating state or broadcasting.
func (s *Session) Move(name string, pos int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseActive {
		s.logger.Debug("move rejected",
			zap.String("player", name),
			zap.Int("position", pos),
			zap.Stringer("phase", s.phase),
		)
		return false
	}
	st := s.seatByName(name)
	role := match.RoleNone
	if st != nil {
		role = st.role
	}
	if err := s.match.Play(role, pos); err != nil {
		s.logger.Debug("move rejected",
			zap.String("player", name),
			zap.Int("position", pos),
			zap.Error(err),
		)
		return false
	}
	s.logger.Debug("move accepted",
		zap.String("player", name),
		zap.Stringer("role", role),
		zap.Int("position", pos),
	)

	failed := s.broadcastLocked()
	if s.match.Outcome.Terminal() {
		s.phase = PhaseConcluded
		s.syncLocked()
		s.logger.Info("match concluded",
			zap.String("match_id", s.match.ID),
			zap.Stringer("outcome", s.match.Outcome),
			zap.Int("moves", s.match.Moves),
		)
		s.emitResultLocked()
		failed = append(failed, s.broadcastLocked()...)
	}
	s.reconcileLocked(failed)
	return true
}

// Leave removes the seat named name. Returns false if no such seat exists.
func (s *Session) Leave(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.seatByName(name)
	if st == nil {
		return false
	}
	s.reconcileLocked(s.removeSeatLocked(st, "leave"))
	return true
}

// Detach removes the seat bound to sinkID. It is the implicit leave used
// when a participant's stream ends, and never touches a newer seat that
// reuses the same name.
func (s *Session) Detach(sinkID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.seatBySink(sinkID)
	if st == nil {
		return false
	}
	s.reconcileLocked(s.removeSeatLocked(st, "disconnect"))
	return true
}

// Prune removes every seat whose sink has been closed underneath it.
// Returns the number of seats removed.
func (s *Session) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var broken []Sink
	for _, st := range s.seats {
		if st.sink.Closed() {
			broken = append(broken, st.sink)
		}
	}
	before := len(s.seats)
	s.reconcileLocked(broken)
	return before - len(s.seats)
}

// ExpireEmpty closes a session that has never been occupied and is older
// than ttl. Returns true if the session was closed.
func (s *Session) ExpireEmpty(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseOpen || len(s.seats) != 0 || now.Sub(s.createdAt) < ttl {
		return false
	}
	s.phase = PhaseClosed
	s.syncLocked()
	s.logger.Info("empty session expired", zap.Duration("age", now.Sub(s.createdAt)))
	return true
}

// Shutdown closes every seat's sink and moves the session to PhaseClosed.
func (s *Session) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.seats {
		_ = st.sink.Close()
	}
	s.seats = nil
	s.match = nil
	s.phase = PhaseClosed
	s.syncLocked()
}

// removeSeatLocked applies leave semantics for st and returns the sinks
// that failed during any resulting broadcast.
func (s *Session) removeSeatLocked(st *seat, reason string) []Sink {
	idx := slices.Index(s.seats, st)
	if idx < 0 {
		return nil
	}
	s.seats = slices.Delete(s.seats, idx, idx+1)
	_ = st.sink.Close()
	s.logger.Info("player left",
		zap.String("player", st.name),
		zap.Stringer("role", st.role),
		zap.String("reason", reason),
		zap.Stringer("phase", s.phase),
	)

	if len(s.seats) == 0 {
		s.match = nil
		s.phase = PhaseClosed
		s.syncLocked()
		return nil
	}

	var failed []Sink
	if s.phase == PhaseActive {
		s.phase = PhaseAbandoned
		s.syncLocked()
		failed = s.broadcastLocked()
	}
	if s.phase == PhaseAbandoned || s.phase == PhaseConcluded {
		rest := s.seats[0]
		s.seats[0] = &seat{name: rest.name, role: match.RoleFirst, sink: rest.sink}
		s.match = nil
		s.phase = PhaseOpen
		s.syncLocked()
		s.logger.Info("session reset", zap.String("player", rest.name))
		failed = append(failed, s.broadcastLocked()...)
	}
	return failed
}

// reconcileLocked treats every failed sink as its seat leaving. Leaves
// can broadcast and fail in turn, so this runs until no failures remain.
func (s *Session) reconcileLocked(failed []Sink) {
	for len(failed) > 0 {
		sink := failed[0]
		failed = failed[1:]
		st := s.seatBySink(sink.ID())
		if st == nil {
			continue
		}
		s.logger.Warn("dropping participant after push failure",
			zap.String("player", st.name),
			zap.String("sink", sink.ID()),
		)
		failed = append(failed, s.removeSeatLocked(st, "sink failure")...)
	}
}

func (s *Session) broadcastLocked() []Sink {
	s.version++
	var failed []Sink
	for _, st := range s.seats {
		if err := st.sink.Push(s.snapshotLocked(st)); err != nil {
			s.logger.Warn("push failed", zap.String("player", st.name), zap.Error(err))
			failed = append(failed, st.sink)
		}
	}
	return failed
}

func (s *Session) pushLocked(st *seat) []Sink {
	s.version++
	if err := st.sink.Push(s.snapshotLocked(st)); err != nil {
		s.logger.Warn("push failed", zap.String("player", st.name), zap.Error(err))
		return []Sink{st.sink}
	}
	return nil
}

func (s *Session) snapshotLocked(to *seat) Snapshot {
	snap := Snapshot{
		SessionID:   s.id,
		DisplayName: s.displayName,
		Phase:       s.phase,
		SeatCount:   len(s.seats),
		Role:        to.role,
		Version:     s.version,
	}
	for _, st := range s.seats {
		if st != to {
			snap.Opponent = st.name
		}
	}
	if s.match != nil {
		snap.MatchID = s.match.ID
		snap.Board = s.match.Board
		snap.Mover = s.match.Mover
		snap.Outcome = s.match.Outcome
	}
	return snap
}

func (s *Session) emitResultLocked() {
	if s.deps.onResult == nil {
		return
	}
	res := Result{
		SessionID: s.id,
		MatchID:   s.match.ID,
		Outcome:   s.match.Outcome,
		Moves:     s.match.Moves,
		StartedAt: s.match.StartedAt,
		EndedAt:   s.deps.now(),
	}
	for _, st := range s.seats {
		switch st.role {
		case match.RoleFirst:
			res.First = st.name
		case match.RoleSecond:
			res.Second = st.name
		}
	}
	s.deps.onResult(res)
}

func (s *Session) seatByName(name string) *seat {
	for _, st := range s.seats {
		if st.name == name {
			return st
		}
	}
	return nil
}

func (s *Session) seatBySink(id string) *seat {
	for _, st := range s.seats {
		if st.sink.ID() == id {
			return st
		}
	}
	return nil
}

func (s *Session) syncLocked() {
	s.state.Store(uint64(s.phase)<<32 | uint64(uint32(len(s.seats))))
}

func unpackState(v uint64) (Phase, int) {
	return Phase(v >> 32), int(uint32(v))
}
