package gameserver

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tictactoe/internal/game/session"
)

//go:generate go run go.uber.org/mock/mockgen -source=results.go -destination=mocks/mock_result_store.go -package=mocks

// ResultStore persists concluded matches.
//
// Postcondition: Record returns nil once the result is durable; Recent
// returns at most limit results, most recently ended first.
type ResultStore interface {
	Record(ctx context.Context, res session.Result) error
	Recent(ctx context.Context, limit int) ([]session.Result, error)
}

// recordTimeout bounds a single Record call made by the ResultWriter.
const recordTimeout = 5 * time.Second

// ResultWriter moves concluded-match results off the session lock and into
// a ResultStore on its own goroutine.
type ResultWriter struct {
	store   ResultStore
	queue   chan session.Result
	logger  *zap.Logger
	dropped atomic.Uint64
}

// NewResultWriter returns a writer with room for buffer pending results.
//
// Precondition: store and logger must be non-nil; buffer must be > 0.
func NewResultWriter(store ResultStore, buffer int, logger *zap.Logger) *ResultWriter {
	return &ResultWriter{
		store:  store,
		queue:  make(chan session.Result, buffer),
		logger: logger,
	}
}

// Enqueue schedules res for recording. It never blocks: when the queue is
// full the result is dropped and counted.
func (w *ResultWriter) Enqueue(res session.Result) {
	select {
	case w.queue <- res:
	default:
		n := w.dropped.Add(1)
		w.logger.Warn("result queue full, dropping match result",
			zap.String("match_id", res.MatchID),
			zap.Uint64("dropped_total", n),
		)
	}
}

// Dropped returns the number of results discarded by Enqueue.
func (w *ResultWriter) Dropped() uint64 { return w.dropped.Load() }

// Run records queued results until ctx is cancelled, then flushes whatever
// is still queued before returning.
func (w *ResultWriter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.flush()
			return nil
		case res := <-w.queue:
			w.record(ctx, res)
		}
	}
}

func (w *ResultWriter) flush() {
	for {
		select {
		case res := <-w.queue:
			w.record(context.Background(), res)
		default:
			return
		}
	}
}

func (w *ResultWriter) record(ctx context.Context, res session.Result) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := w.store.Record(ctx, res); err != nil {
		w.logger.Error("recording match result",
			zap.String("match_id", res.MatchID),
			zap.String("session_id", res.SessionID),
			zap.Error(err),
		)
		return
	}
	w.logger.Debug("match result recorded",
		zap.String("match_id", res.MatchID),
		zap.Stringer("outcome", res.Outcome),
	)
}

// MemoryResultStore keeps the most recent results in memory. It backs
// ListResults when no database is configured.
type MemoryResultStore struct {
	mu       sync.Mutex
	capacity int
	results  []session.Result
}

// NewMemoryResultStore retains at most capacity results.
//
// Precondition: capacity must be > 0.
func NewMemoryResultStore(capacity int) *MemoryResultStore {
	return &MemoryResultStore{capacity: capacity}
}

// Record appends res, evicting the oldest result once full.
func (m *MemoryResultStore) Record(_ context.Context, res session.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, res)
	if over := len(m.results) - m.capacity; over > 0 {
		m.results = slices.Delete(m.results, 0, over)
	}
	return nil
}

// Recent returns up to limit results, newest first.
func (m *MemoryResultStore) Recent(_ context.Context, limit int) ([]session.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := slices.Clone(m.results)
	slices.Reverse(out)
	if limit >= 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
