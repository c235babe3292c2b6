// Package tictacv1 is the wire contract of the tictactoe.v1.TicTacToeService
// gRPC service: request and response messages, the codec that carries them,
// and the client and server bindings.
package tictacv1

import "time"

// Phase values carried in SessionState.Phase and SessionSummary.Phase.
const (
	PhaseOpen      = "OPEN"
	PhaseActive    = "ACTIVE"
	PhaseConcluded = "CONCLUDED"
	PhaseAbandoned = "ABANDONED"
	PhaseClosed    = "CLOSED"
)

// Outcome values carried in SessionState.Outcome and MatchResult.Outcome.
const (
	OutcomeInProgress = "IN_PROGRESS"
	OutcomeFirstWon   = "FIRST_WON"
	OutcomeSecondWon  = "SECOND_WON"
	OutcomeDraw       = "DRAW"
)

type CreateSessionRequest struct {
	DisplayName string `json:"display_name"`
}

type CreateSessionResponse struct {
	SessionId string `json:"session_id"`
}

type ListSessionsRequest struct{}

type SessionSummary struct {
	SessionId   string `json:"session_id"`
	DisplayName string `json:"display_name"`
	SeatCount   int32  `json:"seat_count"`
	Phase       string `json:"phase"`
}

type ListSessionsResponse struct {
	Sessions []*SessionSummary `json:"sessions"`
}

type JoinSessionRequest struct {
	SessionId  string `json:"session_id"`
	PlayerName string `json:"player_name"`
}

// SessionState is one snapshot of a session as seen by a single participant.
// Board holds nine cells in row-major order, each "", "X" or "O".
type SessionState struct {
	SessionId     string   `json:"session_id"`
	DisplayName   string   `json:"display_name"`
	Phase         string   `json:"phase"`
	Board         []string `json:"board"`
	CurrentPlayer string   `json:"current_player"`
	Outcome       string   `json:"outcome"`
	Status        string   `json:"status"`
	SeatCount     int32    `json:"seat_count"`
	YourRole      string   `json:"your_role"`
	YourSymbol    string   `json:"your_symbol"`
	Opponent      string   `json:"opponent,omitempty"`
	Version       uint64   `json:"version"`
	MatchId       string   `json:"match_id,omitempty"`
}

type MakeMoveRequest struct {
	SessionId  string `json:"session_id"`
	PlayerName string `json:"player_name"`
	Position   int32  `json:"position"`
}

type MakeMoveResponse struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

type LeaveSessionRequest struct {
	SessionId  string `json:"session_id"`
	PlayerName string `json:"player_name"`
}

type LeaveSessionResponse struct {
	Left bool `json:"left"`
}

type ListResultsRequest struct {
	Limit int32 `json:"limit"`
}

type MatchResult struct {
	MatchId      string    `json:"match_id"`
	SessionId    string    `json:"session_id"`
	FirstPlayer  string    `json:"first_player"`
	SecondPlayer string    `json:"second_player"`
	Outcome      string    `json:"outcome"`
	Moves        int32     `json:"moves"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
}

type ListResultsResponse struct {
	Results []*MatchResult `json:"results"`
}
