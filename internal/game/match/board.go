// Package match provides the tic-tac-toe rule engine: board, roles,
// outcome detection, and the per-match state mutated by a session.
package match

import "fmt"

// BoardSize is the number of cells on the board.
const BoardSize = 9

// Role identifies a seat's symbol and turn order.
// RoleNone doubles as the value of an empty cell.
type Role uint8

const (
	RoleNone Role = iota
	RoleFirst
	RoleSecond
)

// String returns the enumeration name of the role.
func (r Role) String() string {
	switch r {
	case RoleFirst:
		return "FIRST"
	case RoleSecond:
		return "SECOND"
	default:
		return "NONE"
	}
}

// Symbol returns the board glyph for the role, or "" for RoleNone.
func (r Role) Symbol() string {
	switch r {
	case RoleFirst:
		return "X"
	case RoleSecond:
		return "O"
	default:
		return ""
	}
}

// Other returns the opposing role. RoleNone maps to itself.
func (r Role) Other() Role {
	switch r {
	case RoleFirst:
		return RoleSecond
	case RoleSecond:
		return RoleFirst
	default:
		return RoleNone
	}
}

// Valid reports whether r is a seat role.
func (r Role) Valid() bool {
	return r == RoleFirst || r == RoleSecond
}

// Outcome is the result state of a match.
type Outcome uint8

const (
	InProgress Outcome = iota
	FirstWon
	SecondWon
	Draw
)

// String returns the enumeration name of the outcome.
func (o Outcome) String() string {
	switch o {
	case FirstWon:
		return "FIRST_WON"
	case SecondWon:
		return "SECOND_WON"
	case Draw:
		return "DRAW"
	default:
		return "IN_PROGRESS"
	}
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, error) {
	switch s {
	case "IN_PROGRESS":
		return InProgress, nil
	case "FIRST_WON":
		return FirstWon, nil
	case "SECOND_WON":
		return SecondWon, nil
	case "DRAW":
		return Draw, nil
	}
	return InProgress, fmt.Errorf("unknown outcome %q", s)
}

// Terminal reports whether no further moves may be played.
func (o Outcome) Terminal() bool {
	return o != InProgress
}

// Winner returns the winning role, or RoleNone for a draw or unfinished match.
func (o Outcome) Winner() Role {
	switch o {
	case FirstWon:
		return RoleFirst
	case SecondWon:
		return RoleSecond
	default:
		return RoleNone
	}
}

// WinnerOf returns the outcome in which role has won.
//
// Precondition: role must be RoleFirst or RoleSecond.
func WinnerOf(role Role) Outcome {
	if role == RoleSecond {
		return SecondWon
	}
	return FirstWon
}

// Lines are the eight winning triples: three rows, three columns, two diagonals.
var Lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Board holds the nine cells in row-major order.
type Board [BoardSize]Role

// InRange reports whether pos addresses a cell.
func InRange(pos int) bool {
	return pos >= 0 && pos < BoardSize
}

// Empty reports whether the cell at pos is unmarked.
//
// Precondition: pos must satisfy InRange.
func (b Board) Empty(pos int) bool {
	return b[pos] == RoleNone
}

// Filled returns the number of marked cells.
func (b Board) Filled() int {
	n := 0
	for _, c := range b {
		if c != RoleNone {
			n++
		}
	}
	return n
}

// Full reports whether every cell is marked.
func (b Board) Full() bool {
	return b.Filled() == BoardSize
}

// Symbols renders the board as glyphs ("", "X", "O").
func (b Board) Symbols() []string {
	out := make([]string, BoardSize)
	for i, c := range b {
		out[i] = c.Symbol()
	}
	return out
}

// Evaluate computes the outcome of a board. The first uniformly marked
// triple in Lines wins; otherwise a full board is a draw.
func Evaluate(b Board) Outcome {
	for _, line := range Lines {
		a := b[line[0]]
		if a != RoleNone && a == b[line[1]] && a == b[line[2]] {
			return WinnerOf(a)
		}
	}
	if b.Full() {
		return Draw
	}
	return InProgress
}

// Apply marks pos for mover and evaluates the result.
// It performs no legality checks; callers validate first.
//
// Precondition: pos must satisfy InRange and mover must be valid.
// Postcondition: Returns a copy of b with pos marked and its outcome.
func Apply(b Board, mover Role, pos int) (Board, Outcome) {
	b[pos] = mover
	return b, Evaluate(b)
}
