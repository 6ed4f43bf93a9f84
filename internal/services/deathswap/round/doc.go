// Package round runs the death swap state machine.
//
// A Controller owns all round state on a single goroutine (Run). Public
// methods and host hooks post events to its inbox; relocations, region
// preloads and timers run elsewhere and report back through the same inbox,
// so round state is never touched concurrently. Every continuation re-checks
// the round number and membership before acting, which makes work that
// outlives its round a no-op.
package round
