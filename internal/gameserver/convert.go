package gameserver

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/cory-johannsen/tictactoe/internal/game/match"
	"github.com/cory-johannsen/tictactoe/internal/game/session"
	"github.com/cory-johannsen/tictactoe/internal/gameserver/tictacv1"
)

// statusText renders the one-line status shown to the receiving seat.
func statusText(snap session.Snapshot) string {
	switch snap.Phase {
	case session.PhaseOpen:
		return "Waiting for opponent"
	case session.PhaseActive:
		if snap.Outcome.Terminal() {
			return outcomeText(snap.Outcome, snap.Role)
		}
		if snap.Mover == snap.Role {
			return fmt.Sprintf("Your turn (%s)", snap.Role.Symbol())
		}
		return fmt.Sprintf("Opponent's turn (%s)", snap.Mover.Symbol())
	case session.PhaseConcluded:
		return outcomeText(snap.Outcome, snap.Role)
	case session.PhaseAbandoned:
		return "Opponent left the game"
	case session.PhaseClosed:
		return "Session closed"
	}
	return ""
}

func outcomeText(o match.Outcome, viewer match.Role) string {
	switch {
	case o == match.Draw:
		return "Draw"
	case o.Winner() == viewer:
		return fmt.Sprintf("%s wins - you win", o.Winner().Symbol())
	default:
		return fmt.Sprintf("%s wins", o.Winner().Symbol())
	}
}

func toSessionState(snap session.Snapshot) *tictacv1.SessionState {
	st := &tictacv1.SessionState{
		SessionId:   snap.SessionID,
		DisplayName: snap.DisplayName,
		Phase:       snap.Phase.String(),
		Board:       snap.Board.Symbols(),
		Status:      statusText(snap),
		SeatCount:   int32(snap.SeatCount),
		YourRole:    snap.Role.String(),
		YourSymbol:  snap.Role.Symbol(),
		Opponent:    snap.Opponent,
		Version:     snap.Version,
		MatchId:     snap.MatchID,
		Outcome:     snap.Outcome.String(),
	}
	if snap.Phase == session.PhaseActive && !snap.Outcome.Terminal() {
		st.CurrentPlayer = snap.Mover.Symbol()
	}
	return st
}

func toSummaries(summaries []session.Summary) []*tictacv1.SessionSummary {
	return lo.Map(summaries, func(s session.Summary, _ int) *tictacv1.SessionSummary {
		return &tictacv1.SessionSummary{
			SessionId:   s.ID,
			DisplayName: s.DisplayName,
			SeatCount:   int32(s.SeatCount),
			Phase:       s.Phase.String(),
		}
	})
}

func toMatchResults(results []session.Result) []*tictacv1.MatchResult {
	return lo.Map(results, func(r session.Result, _ int) *tictacv1.MatchResult {
		return &tictacv1.MatchResult{
			MatchId:      r.MatchID,
			SessionId:    r.SessionID,
			FirstPlayer:  r.First,
			SecondPlayer: r.Second,
			Outcome:      r.Outcome.String(),
			Moves:        int32(r.Moves),
			StartedAt:    r.StartedAt,
			EndedAt:      r.EndedAt,
		}
	})
}
