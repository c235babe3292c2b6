package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tictactoe/internal/game/match"
)

// Scenario A: create, two joins, first move.
func TestScenario_CreateJoinMove(t *testing.T) {
	reg := newTestRegistry(t)
	id := reg.Create("Alpa")
	assert.Empty(t, reg.List(), "an unoccupied session must not be discoverable")

	alice := NewChannelSink("a", 16)
	role, err := reg.Join(id, "alice", alice)
	require.NoError(t, err)
	assert.Equal(t, match.RoleFirst, role)

	snaps := drain(alice)
	require.Len(t, snaps, 1)
	assert.Equal(t, PhaseOpen, snaps[0].Phase)
	assert.Equal(t, 1, snaps[0].SeatCount)
	assert.Equal(t, match.RoleFirst, snaps[0].Role)
	assert.Equal(t, "Alpa", snaps[0].DisplayName)

	listed := reg.List()
	require.Len(t, listed, 1)
	assert.Equal(t, id, listed[0].ID)
	assert.Equal(t, 1, listed[0].SeatCount)

	bob := NewChannelSink("b", 16)
	role, err = reg.Join(id, "bob", bob)
	require.NoError(t, err)
	assert.Equal(t, match.RoleSecond, role)

	aliceSnap := last(drain(alice))
	bobSnap := last(drain(bob))
	for _, snap := range []Snapshot{aliceSnap, bobSnap} {
		assert.Equal(t, PhaseActive, snap.Phase)
		assert.Equal(t, match.RoleFirst, snap.Mover)
		assert.Equal(t, 2, snap.SeatCount)
		assert.Equal(t, "match-1", snap.MatchID)
	}
	assert.Equal(t, match.RoleFirst, aliceSnap.Role)
	assert.Equal(t, match.RoleSecond, bobSnap.Role)
	assert.Equal(t, "bob", aliceSnap.Opponent)
	assert.Equal(t, "alice", bobSnap.Opponent)
	assert.Empty(t, reg.List(), "a full session must not be discoverable")

	require.True(t, reg.Move(id, "alice", 4))
	for _, sink := range []*ChannelSink{alice, bob} {
		snap := last(drain(sink))
		assert.Equal(t, match.RoleFirst, snap.Board[4])
		assert.Equal(t, match.RoleSecond, snap.Mover)
		assert.Equal(t, match.InProgress, snap.Outcome)
	}
}

// Scenario B: FIRST completes the top row.
func TestScenario_FirstWins(t *testing.T) {
	var results []Result
	reg := newTestRegistry(t, WithResultObserver(func(r Result) { results = append(results, r) }))
	id, alice, bob := activeSession(t, reg)

	for _, mv := range []struct {
		name string
		pos  int
	}{{"alice", 0}, {"bob", 3}, {"alice", 1}, {"bob", 4}} {
		require.True(t, reg.Move(id, mv.name, mv.pos))
	}
	drain(alice)
	drain(bob)

	require.True(t, reg.Move(id, "alice", 2))
	for _, sink := range []*ChannelSink{alice, bob} {
		snaps := drain(sink)
		require.Len(t, snaps, 2)
		assert.Equal(t, PhaseActive, snaps[0].Phase)
		assert.Equal(t, match.FirstWon, snaps[0].Outcome)
		assert.Equal(t, PhaseConcluded, snaps[1].Phase)
		assert.Equal(t, match.FirstWon, snaps[1].Outcome)
	}

	assert.False(t, reg.Move(id, "bob", 5))
	assert.False(t, reg.Move(id, "alice", 5))
	assert.Empty(t, drain(alice))

	require.Len(t, results, 1)
	assert.Equal(t, "alice", results[0].First)
	assert.Equal(t, "bob", results[0].Second)
	assert.Equal(t, match.FirstWon, results[0].Outcome)
	assert.Equal(t, 5, results[0].Moves)
	assert.Equal(t, "match-1", results[0].MatchID)
}

// Scenario C: nine moves without a line.
func TestScenario_Draw(t *testing.T) {
	reg := newTestRegistry(t)
	id, alice, _ := activeSession(t, reg)

	players := []string{"alice", "bob"}
	for i, pos := range []int{0, 1, 2, 4, 3, 5, 7, 6, 8} {
		require.True(t, reg.Move(id, players[i%2], pos), "move %d", i)
	}
	snap := last(drain(alice))
	assert.Equal(t, match.Draw, snap.Outcome)
	assert.Equal(t, PhaseConcluded, snap.Phase)
	assert.True(t, snap.Board.Full())
}

// Scenario D: a leave during play abandons the match and reopens the session.
func TestScenario_LeaveDuringPlayResets(t *testing.T) {
	reg := newTestRegistry(t)
	id, alice, bob := activeSession(t, reg)
	require.True(t, reg.Move(id, "alice", 0))
	drain(alice)
	drain(bob)

	require.True(t, reg.Leave(id, "bob"))

	snaps := drain(alice)
	require.Len(t, snaps, 2)
	assert.Equal(t, PhaseAbandoned, snaps[0].Phase)
	assert.Equal(t, match.RoleFirst, snaps[0].Board[0], "abandonment snapshot carries the final board")
	assert.Equal(t, 1, snaps[0].SeatCount)
	assert.Equal(t, PhaseOpen, snaps[1].Phase)
	assert.Equal(t, match.RoleFirst, snaps[1].Role)
	assert.Equal(t, 1, snaps[1].SeatCount)
	assert.Empty(t, snaps[1].MatchID)
	assert.Equal(t, match.Board{}, snaps[1].Board)

	assert.True(t, bob.Closed())
	listed := reg.List()
	require.Len(t, listed, 1)
	assert.Equal(t, id, listed[0].ID)

	carol := NewChannelSink("c", 16)
	role, err := reg.Join(id, "carol", carol)
	require.NoError(t, err)
	assert.Equal(t, match.RoleSecond, role)
	snap := last(drain(alice))
	assert.Equal(t, PhaseActive, snap.Phase)
	assert.Equal(t, "match-2", snap.MatchID)
	assert.Equal(t, 0, snap.Board.Filled())
}

// Scenario D variant: when the second seat leaves and the remaining seat
// was SECOND, it is re-seated as FIRST.
func TestLeave_ReseatsRemainingAsFirst(t *testing.T) {
	reg := newTestRegistry(t)
	id, _, bob := activeSession(t, reg)

	require.True(t, reg.Leave(id, "alice"))
	snap := last(drain(bob))
	assert.Equal(t, PhaseOpen, snap.Phase)
	assert.Equal(t, match.RoleFirst, snap.Role)

	dave := NewChannelSink("d", 16)
	role, err := reg.Join(id, "dave", dave)
	require.NoError(t, err)
	assert.Equal(t, match.RoleSecond, role)
	assert.True(t, reg.Move(id, "bob", 0), "re-seated FIRST moves first")
}

// Scenario E: the last occupant leaving closes and removes the session.
func TestScenario_LastLeaveCloses(t *testing.T) {
	reg := newTestRegistry(t)
	id := reg.Create("Alpa")
	alice := NewChannelSink("a", 16)
	_, err := reg.Join(id, "alice", alice)
	require.NoError(t, err)

	require.True(t, reg.Leave(id, "alice"))
	assert.Equal(t, 0, reg.Count())
	assert.True(t, alice.Closed())

	_, err = reg.Join(id, "bob", NewChannelSink("b", 16))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLeave_AfterConclusionResetsWithoutAbandonment(t *testing.T) {
	reg := newTestRegistry(t)
	id, alice, _ := activeSession(t, reg)
	players := []string{"alice", "bob"}
	for i, pos := range []int{0, 3, 1, 4, 2} {
		require.True(t, reg.Move(id, players[i%2], pos))
	}
	drain(alice)

	require.True(t, reg.Leave(id, "bob"))
	snaps := drain(alice)
	require.Len(t, snaps, 1)
	assert.Equal(t, PhaseOpen, snaps[0].Phase)
	assert.Equal(t, 1, snaps[0].SeatCount)
	assert.Len(t, reg.List(), 1)
}

func TestLeave_UnknownPlayerOrSession(t *testing.T) {
	reg := newTestRegistry(t)
	id, alice, _ := activeSession(t, reg)
	assert.False(t, reg.Leave(id, "mallory"))
	assert.False(t, reg.Leave("session-404", "alice"))
	assert.Empty(t, drain(alice))
}

func TestMove_Rejections(t *testing.T) {
	reg := newTestRegistry(t)
	id, alice, bob := activeSession(t, reg)
	require.True(t, reg.Move(id, "alice", 4))
	drain(alice)
	drain(bob)

	cases := []struct {
		name   string
		player string
		pos    int
	}{
		{"unknown player", "mallory", 0},
		{"below range", "bob", -1},
		{"above range", "bob", 9},
		{"occupied cell", "bob", 4},
		{"wrong mover", "alice", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.False(t, reg.Move(id, tc.player, tc.pos))
			assert.Empty(t, drain(alice), "rejected move must not broadcast")
			assert.Empty(t, drain(bob), "rejected move must not broadcast")
		})
	}

	require.True(t, reg.Move(id, "bob", 0))
	snap := last(drain(alice))
	assert.Equal(t, match.RoleSecond, snap.Board[0])
	assert.Equal(t, match.RoleFirst, snap.Board[4])
}

func TestMove_UnknownSessionOrNotActive(t *testing.T) {
	reg := newTestRegistry(t)
	assert.False(t, reg.Move("session-404", "alice", 0))

	id := reg.Create("Alpa")
	alice := NewChannelSink("a", 16)
	_, err := reg.Join(id, "alice", alice)
	require.NoError(t, err)
	drain(alice)
	assert.False(t, reg.Move(id, "alice", 0), "moves are rejected while OPEN")
	assert.Empty(t, drain(alice))
}

func TestJoin_FullSession(t *testing.T) {
	reg := newTestRegistry(t)
	id, alice, bob := activeSession(t, reg)

	_, err := reg.Join(id, "carol", NewChannelSink("c", 16))
	assert.ErrorIs(t, err, ErrSessionFull)
	assert.Empty(t, drain(alice), "a failed join must not affect occupants")
	assert.Empty(t, drain(bob))
}

func TestJoin_NameTaken(t *testing.T) {
	reg := newTestRegistry(t)
	id := reg.Create("Alpa")
	_, err := reg.Join(id, "alice", NewChannelSink("a1", 16))
	require.NoError(t, err)
	_, err = reg.Join(id, "alice", NewChannelSink("a2", 16))
	assert.ErrorIs(t, err, ErrNameTaken)
}

func TestJoin_UnknownSession(t *testing.T) {
	reg := newTestRegistry(t)
	_, err := reg.Join("session-404", "alice", NewChannelSink("a", 16))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJoin_JoinerSinkFailureClosesEmptySession(t *testing.T) {
	reg := newTestRegistry(t)
	id := reg.Create("Alpa")
	broken := newFlakySink("broken")
	broken.fail.Store(true)

	_, err := reg.Join(id, "alice", broken)
	assert.ErrorIs(t, err, ErrSinkFailed)
	assert.True(t, broken.Closed())
	assert.Equal(t, 0, reg.Count())
}

func TestBroadcast_SinkFailureIsTreatedAsLeave(t *testing.T) {
	reg := newTestRegistry(t)
	id := reg.Create("Alpa")
	alice := NewChannelSink("a", 16)
	bob := newFlakySink("b")
	_, err := reg.Join(id, "alice", alice)
	require.NoError(t, err)
	_, err = reg.Join(id, "bob", bob)
	require.NoError(t, err)
	drain(alice)

	bob.fail.Store(true)
	assert.True(t, reg.Move(id, "alice", 0), "a failing sink must not fail the mover")

	snaps := drain(alice)
	require.Len(t, snaps, 3)
	assert.Equal(t, PhaseActive, snaps[0].Phase)
	assert.Equal(t, PhaseAbandoned, snaps[1].Phase)
	assert.Equal(t, PhaseOpen, snaps[2].Phase)
	assert.True(t, bob.Closed())
	require.Len(t, bob.Pushed(), 1)
	assert.Equal(t, PhaseActive, bob.Pushed()[0].Phase)
	assert.Len(t, reg.List(), 1)
}

func TestBroadcast_FullBufferDropsSeat(t *testing.T) {
	reg := newTestRegistry(t)
	id := reg.Create("Alpa")
	alice := NewChannelSink("a", 64)
	slow := NewChannelSink("slow", 1)
	_, err := reg.Join(id, "alice", alice)
	require.NoError(t, err)
	_, err = reg.Join(id, "bob", slow)
	require.NoError(t, err)

	// slow never drains; its single slot is already taken by the activation snapshot.
	assert.True(t, reg.Move(id, "alice", 0))
	assert.True(t, slow.Closed())
	assert.Equal(t, PhaseOpen, last(drain(alice)).Phase)
}

func TestDetach_OnlyRemovesMatchingSink(t *testing.T) {
	reg := newTestRegistry(t)
	id := reg.Create("Alpa")
	first := NewChannelSink("a1", 16)
	_, err := reg.Join(id, "alice", first)
	require.NoError(t, err)
	_, err = reg.Join(id, "bob", NewChannelSink("b", 16))
	require.NoError(t, err)

	require.True(t, reg.Leave(id, "alice"))
	second := NewChannelSink("a2", 16)
	_, err = reg.Join(id, "alice", second)
	require.NoError(t, err)

	assert.False(t, reg.Detach(id, "a1"), "stale stream must not evict the new seat")
	assert.False(t, second.Closed())
	assert.True(t, reg.Detach(id, "a2"))
	assert.True(t, second.Closed())
}

func TestVersions_StrictlyIncreaseAndMatchAcrossSeats(t *testing.T) {
	reg := newTestRegistry(t)
	id, alice, bob := activeSession(t, reg)

	players := []string{"alice", "bob"}
	for i, pos := range []int{4, 0, 8, 2} {
		require.True(t, reg.Move(id, players[i%2], pos))
	}
	a := drain(alice)
	b := drain(bob)
	require.Len(t, a, 4)
	require.Len(t, b, 4)
	for i := range a {
		assert.Equal(t, a[i].Version, b[i].Version)
		assert.Equal(t, a[i].Board, b[i].Board)
		if i > 0 {
			assert.Greater(t, a[i].Version, a[i-1].Version)
		}
	}
}

// Concurrent move attempts from both seats are applied exactly once each
// and observed by both seats in the same order.
func TestConcurrentMoves_TotalOrder(t *testing.T) {
	reg := newTestRegistry(t)
	id, alice, bob := activeSession(t, reg)

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for _, name := range []string{"alice", "bob"} {
		for pos := 0; pos < 9; pos++ {
			wg.Add(1)
			go func(name string, pos int) {
				defer wg.Done()
				if reg.Move(id, name, pos) {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}(name, pos)
		}
	}
	wg.Wait()

	a := drain(alice)
	b := drain(bob)
	require.Equal(t, len(a), len(b))
	require.NotEmpty(t, a)
	final := last(a)
	assert.Equal(t, accepted, final.Board.Filled())

	prev := match.Board{}
	for i := range a {
		assert.Equal(t, a[i].Version, b[i].Version)
		assert.Equal(t, a[i].Board, b[i].Board)
		for c := range prev {
			if prev[c] != match.RoleNone {
				assert.Equal(t, prev[c], a[i].Board[c], "cell %d reverted", c)
			}
		}
		prev = a[i].Board
	}
}

func TestSweep_PrunesBrokenSinks(t *testing.T) {
	reg := newTestRegistry(t)
	id, alice, bob := activeSession(t, reg)

	require.NoError(t, bob.Close())
	assert.Equal(t, 0, reg.Sweep())
	assert.Equal(t, PhaseOpen, last(drain(alice)).Phase)
	assert.Len(t, reg.List(), 1)

	require.NoError(t, alice.Close())
	assert.Equal(t, 1, reg.Sweep())
	assert.Equal(t, 0, reg.Count())
	assert.False(t, reg.Move(id, "alice", 0))
}

func TestSweep_ExpiresNeverJoinedSessions(t *testing.T) {
	clock := newFakeClock()
	reg := newTestRegistry(t, WithClock(clock.Now), WithEmptyTTL(5*time.Minute))
	stale := reg.Create("stale")
	occupied := reg.Create("occupied")
	_, err := reg.Join(occupied, "alice", NewChannelSink("a", 16))
	require.NoError(t, err)

	clock.Advance(time.Minute)
	assert.Equal(t, 0, reg.Sweep())

	clock.Advance(5 * time.Minute)
	assert.Equal(t, 1, reg.Sweep())
	_, err = reg.Join(stale, "bob", NewChannelSink("b", 16))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, reg.Count())
}

func TestShutdown_ClosesAllSinks(t *testing.T) {
	reg := newTestRegistry(t)
	_, alice, bob := activeSession(t, reg)
	reg.Shutdown()
	assert.True(t, alice.Closed())
	assert.True(t, bob.Closed())
	assert.Equal(t, 0, reg.Count())
}
