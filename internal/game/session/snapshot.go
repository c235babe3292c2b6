// Package session provides the two-player session lifecycle: seats, turn
// serialization, snapshot broadcast, and the concurrent registry that
// creates, lists, and reclaims sessions.
package session

import (
	"github.com/cory-johannsen/tictactoe/internal/game/match"
)

// Phase is the lifecycle state of a session, distinct from match outcome.
type Phase uint32

const (
	PhaseOpen Phase = iota
	PhaseActive
	PhaseConcluded
	PhaseAbandoned
	PhaseClosed
)

// String returns the enumeration name of the phase.
func (p Phase) String() string {
	switch p {
	case PhaseOpen:
		return "OPEN"
	case PhaseActive:
		return "ACTIVE"
	case PhaseConcluded:
		return "CONCLUDED"
	case PhaseAbandoned:
		return "ABANDONED"
	case PhaseClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// MaxSeats is the number of participants a session holds when full.
const MaxSeats = 2

// Snapshot is the full session view delivered to one seat.
// Role and Opponent are specific to the receiving seat.
type Snapshot struct {
	SessionID   string
	DisplayName string
	Phase       Phase
	MatchID     string
	Board       match.Board
	Mover       match.Role
	Outcome     match.Outcome
	SeatCount   int
	Role        match.Role
	Opponent    string
	// Version increases by one per broadcast within a session.
	Version uint64
}

// Summary is the discovery view of a session returned by Registry.List.
type Summary struct {
	ID          string
	DisplayName string
	SeatCount   int
	Phase       Phase
}

// Discoverable reports whether a session with this summary may be listed:
// open and waiting on exactly one occupant.
func (s Summary) Discoverable() bool {
	return s.Phase == PhaseOpen && s.SeatCount == 1
}
