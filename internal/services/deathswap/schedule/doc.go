// Package schedule holds the timing rules of a round: the weighted swap
// delay, hazard bands derived from time since the last swap, and a group of
// cancellable timers that a round can tear down in one call.
package schedule
