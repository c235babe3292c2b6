package match

import (
	"errors"
	"time"
)

var (
	// ErrMatchOver is returned when a move arrives after a terminal outcome.
	ErrMatchOver = errors.New("match is over")
	// ErrOutOfRange is returned for positions outside 0..8.
	ErrOutOfRange = errors.New("position out of range")
	// ErrCellOccupied is returned when the target cell is already marked.
	ErrCellOccupied = errors.New("cell occupied")
	// ErrNotYourTurn is returned when the role is not the current mover.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrUnknownRole is returned when the caller holds no seat role.
	ErrUnknownRole = errors.New("unknown role")
)

// Match is the board state and outcome of one playthrough.
// It is not safe for concurrent use; the owning session serializes access.
type Match struct {
	// ID uniquely identifies this playthrough.
	ID string
	// Board is the current cell state.
	Board Board
	// Mover is the role expected to play next.
	Mover Role
	// Outcome is the current result.
	Outcome Outcome
	// Moves counts accepted moves.
	Moves int
	// StartedAt is when the match was created.
	StartedAt time.Time
}

// NewMatch creates an empty match where RoleFirst moves first.
//
// Precondition: id must be non-empty.
// Postcondition: Returns a match with an empty board and InProgress outcome.
func NewMatch(id string, now time.Time) *Match {
	return &Match{
		ID:        id,
		Mover:     RoleFirst,
		Outcome:   InProgress,
		StartedAt: now,
	}
}

// Check reports why role may not play pos, or nil if the move is legal.
func (m *Match) Check(role Role, pos int) error {
	switch {
	case !role.Valid():
		return ErrUnknownRole
	case m.Outcome.Terminal():
		return ErrMatchOver
	case !InRange(pos):
		return ErrOutOfRange
	case !m.Board.Empty(pos):
		return ErrCellOccupied
	case role != m.Mover:
		return ErrNotYourTurn
	}
	return nil
}

// Play validates and applies a move. The mover flips only while the
// match remains in progress.
//
// Postcondition: On nil error exactly one empty cell becomes role and
// Moves is incremented. On error the match is unchanged.
func (m *Match) Play(role Role, pos int) error {
	if err := m.Check(role, pos); err != nil {
		return err
	}
	m.Board, m.Outcome = Apply(m.Board, role, pos)
	m.Moves++
	if !m.Outcome.Terminal() {
		m.Mover = role.Other()
	}
	return nil
}
