package round

import (
	"maps"
	"time"
)

// State is the round lifecycle state.
type State int

const (
	StateIdle State = iota
	StateActive
)

// String returns the state name.
func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "idle"
}

// Snapshot is a point-in-time copy of the round.
type Snapshot struct {
	State State
	// Round is the number of the current or most recent round.
	Round       int64
	Contestants []Identity
	Spectators  []Identity
	// Pending players are being placed for the round and are not contestants
	// yet.
	Pending []Identity
	// Assignments maps each contestant moved by the last swap to the
	// contestant whose position it received.
	Assignments map[Identity]Identity
	StartedAt   time.Time
	LastSwap    time.Time
	// NextDelay is the last drawn swap delay and NextSwapIn the time left on
	// it. Both are zero while no swap timer is armed.
	NextDelay  time.Duration
	NextSwapIn time.Duration
	Swapping   bool
}

func (c *Controller) snapshot() Snapshot {
	s := Snapshot{
		State:       c.state,
		Round:       c.round,
		Contestants: setMembers(c.contestants),
		Spectators:  setMembers(c.spectators),
		Pending:     setMembers(c.pending),
		Assignments: maps.Clone(c.assignments),
		StartedAt:   c.startedAt,
		LastSwap:    c.lastSwap,
		Swapping:    c.swapping,
	}
	if s.Assignments == nil {
		s.Assignments = map[Identity]Identity{}
	}
	if c.state == StateActive && !c.nextSwapAt.IsZero() {
		s.NextDelay = c.nextDelay
		s.NextSwapIn = max(time.Until(c.nextSwapAt), 0)
	}
	return s
}
