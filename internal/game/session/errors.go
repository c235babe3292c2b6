package session

import "errors"

var (
	// ErrNotFound is returned when a session id is unknown or already closed.
	ErrNotFound = errors.New("session not found")
	// ErrSessionFull is returned when joining a session that is full or in play.
	ErrSessionFull = errors.New("room full or game in progress")
	// ErrNameTaken is returned when a seated participant already uses the name.
	ErrNameTaken = errors.New("player name already seated")
	// ErrSessionClosed is returned by a Session that has reached PhaseClosed.
	ErrSessionClosed = errors.New("session closed")
	// ErrSinkFailed is returned when the joiner's own sink rejects its
	// initial snapshot.
	ErrSinkFailed = errors.New("participant stream unavailable")
)
