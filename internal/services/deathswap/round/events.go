package round

import "github.com/louisbranch/deathswap/internal/services/deathswap/world"

// Requests from the public API.
type (
	startRequest    struct{ reply chan error }
	endRequest      struct{ reply chan error }
	snapshotRequest struct{ reply chan Snapshot }
)

// Host hooks.
type (
	joinEvent   struct{ id Identity }
	joinSettled struct{ id Identity }
	quitEvent   struct{ id Identity }
	deathEvent  struct{ id Identity }
)

// Continuations from timers and relocation goroutines. Each carries the
// round it was issued for.
type (
	joinCheck struct {
		round int64
		id    Identity
		reply chan bool
	}
	joinResult struct {
		round int64
		id    Identity
		err   error
	}
	joinRetry struct {
		round int64
		id    Identity
	}
	graceElapsed struct{ round int64 }
	swapDue      struct{ round int64 }
	swapCheck    struct {
		round int64
		id    Identity
		reply chan bool
	}
	swapBatchDone struct{ round int64 }
	hazardTick    struct{ round int64 }
)

// swapLeg is one relocation in a swap batch.
type swapLeg struct {
	receiver Identity
	owner    Identity
	dest     world.Coord
	notice   string
}
