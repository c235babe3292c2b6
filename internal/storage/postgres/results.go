package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/tictactoe/internal/game/match"
	"github.com/cory-johannsen/tictactoe/internal/game/session"
)

// ErrInvalidResult is returned when a result cannot be recorded as given.
var ErrInvalidResult = errors.New("invalid match result")

// ResultRepository appends concluded matches to the match_results table.
type ResultRepository struct {
	db *pgxpool.Pool
}

// NewResultRepository creates a ResultRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewResultRepository(db *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{db: db}
}

// Record inserts res. Recording the same match twice is a no-op.
//
// Precondition: r.MatchID must be a UUID; r.Outcome must be terminal.
// Postcondition: Returns nil once the row exists.
func (r *ResultRepository) Record(ctx context.Context, res session.Result) error {
	if !res.Outcome.Terminal() {
		return fmt.Errorf("%w: outcome %s is not terminal", ErrInvalidResult, res.Outcome)
	}
	if _, err := uuid.Parse(res.MatchID); err != nil {
		return fmt.Errorf("%w: match id %q: %v", ErrInvalidResult, res.MatchID, err)
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO match_results
		   (match_id, session_id, first_player, second_player, outcome, moves, started_at, ended_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (match_id) DO NOTHING`,
		res.MatchID, res.SessionID, res.First, res.Second,
		res.Outcome.String(), res.Moves, res.StartedAt, res.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting match result: %w", err)
	}
	return nil
}

// Recent returns up to limit results, most recently ended first.
//
// Precondition: limit must be > 0.
func (r *ResultRepository) Recent(ctx context.Context, limit int) ([]session.Result, error) {
	rows, err := r.db.Query(ctx,
		`SELECT match_id::text, session_id, first_player, second_player, outcome, moves, started_at, ended_at
		 FROM match_results
		 ORDER BY ended_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying match results: %w", err)
	}
	results, err := pgx.CollectRows(rows, scanResult)
	if err != nil {
		return nil, fmt.Errorf("scanning match results: %w", err)
	}
	return results, nil
}

func scanResult(row pgx.CollectableRow) (session.Result, error) {
	var (
		res     session.Result
		outcome string
	)
	if err := row.Scan(
		&res.MatchID, &res.SessionID, &res.First, &res.Second,
		&outcome, &res.Moves, &res.StartedAt, &res.EndedAt,
	); err != nil {
		return session.Result{}, err
	}
	o, err := match.ParseOutcome(outcome)
	if err != nil {
		return session.Result{}, err
	}
	res.Outcome = o
	return res, nil
}
