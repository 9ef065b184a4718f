package session

import (
	"errors"
	"fmt"
)

var (
	// ErrRoundTimeout is returned when a round does not collect every
	// contribution before its deadline.
	ErrRoundTimeout = errors.New("session: round timed out")
	// ErrUnknownSession is returned by a participant for a session it never
	// committed to.
	ErrUnknownSession = errors.New("session: unknown session")
	// ErrSessionClosed is returned when a finished or aborted session ID is
	// used again.
	ErrSessionClosed = errors.New("session: session already closed")
	// ErrOutOfOrder is returned when a participant is asked for a round it
	// has not reached or has already passed.
	ErrOutOfOrder = errors.New("session: round requested out of order")
	// ErrKeyMismatch is returned when a participant does not find its own
	// key, commitment or nonce where the request places it.
	ErrKeyMismatch = errors.New("session: own contribution not found at its index")
)

// TimeoutError reports which participants did not answer in time.
type TimeoutError struct {
	Round   string
	Missing []int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("session: round %s timed out waiting for participants %v", e.Round, e.Missing)
}

// Is reports whether target is ErrRoundTimeout.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrRoundTimeout
}

// ParticipantError wraps a failure returned by one participant.
type ParticipantError struct {
	Round string
	Index int
	Err   error
}

func (e *ParticipantError) Error() string {
	return fmt.Sprintf("session: round %s: participant %d: %v", e.Round, e.Index, e.Err)
}

func (e *ParticipantError) Unwrap() error {
	return e.Err
}
