package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelSink_Push(t *testing.T) {
	s := NewChannelSink("test", 4)
	require.NoError(t, s.Push(Snapshot{SessionID: "session-1", Version: 1}))

	snap := <-s.Events()
	assert.Equal(t, "session-1", snap.SessionID)
	assert.Equal(t, uint64(1), snap.Version)
}

func TestChannelSink_PushClosed(t *testing.T) {
	s := NewChannelSink("test", 4)
	require.NoError(t, s.Close())
	assert.True(t, s.Closed())
	assert.Error(t, s.Push(Snapshot{}))
}

func TestChannelSink_PushFull(t *testing.T) {
	s := NewChannelSink("test", 1)
	require.NoError(t, s.Push(Snapshot{Version: 1}))
	err := s.Push(Snapshot{Version: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "buffer full")
}

func TestChannelSink_CloseIdempotent(t *testing.T) {
	s := NewChannelSink("test", 4)
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	assert.True(t, s.Closed())
}

func TestChannelSink_CloseDrainsBufferedSnapshots(t *testing.T) {
	s := NewChannelSink("test", 4)
	require.NoError(t, s.Push(Snapshot{Version: 1}))
	require.NoError(t, s.Push(Snapshot{Version: 2}))
	require.NoError(t, s.Close())

	var versions []uint64
	for snap := range s.Events() {
		versions = append(versions, snap.Version)
	}
	assert.Equal(t, []uint64{1, 2}, versions)
}

func TestChannelSink_DefaultBuffer(t *testing.T) {
	s := NewChannelSink("test", 0)
	assert.Equal(t, "test", s.ID())
	assert.Equal(t, 16, cap(s.events))
}
