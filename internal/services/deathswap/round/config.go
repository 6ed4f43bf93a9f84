package round

import "time"

const (
	DefaultMaxSwapSeconds = 120
	DefaultSwapWeight     = 2.0
	DefaultGraceDelay     = 3 * time.Second
	DefaultSettleDelay    = 250 * time.Millisecond
	DefaultJoinRetryDelay = 5 * time.Second
	DefaultHazardInterval = time.Second

	minParticipants = 2
)

// Config holds round timing.
type Config struct {
	// MaxSwapSeconds bounds the swap delay, in SwapUnit steps.
	MaxSwapSeconds int
	// SwapWeight biases swap delays toward the upper bound. Values of 1 or
	// less fall back to DefaultSwapWeight.
	SwapWeight float64
	// SwapUnit is the length of one swap delay step. Zero means one second.
	SwapUnit time.Duration
	// GraceDelay separates the round start from the first swap timer.
	GraceDelay time.Duration
	// SettleDelay lets a freshly joined player finish loading before being
	// made a spectator.
	SettleDelay time.Duration
	// JoinRetryDelay spaces attempts to place a contestant whose first
	// placement failed.
	JoinRetryDelay time.Duration
	// HazardInterval is the countdown refresh rate.
	HazardInterval time.Duration
	// HazardAnchor is the elapsed time that reads as a full hazard bar.
	// Zero means MaxSwapSeconds steps.
	HazardAnchor time.Duration
}

func (c Config) normalized() Config {
	if c.MaxSwapSeconds < 1 {
		c.MaxSwapSeconds = DefaultMaxSwapSeconds
	}
	if c.SwapWeight <= 1 {
		c.SwapWeight = DefaultSwapWeight
	}
	if c.SwapUnit <= 0 {
		c.SwapUnit = time.Second
	}
	if c.GraceDelay <= 0 {
		c.GraceDelay = DefaultGraceDelay
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = DefaultSettleDelay
	}
	if c.JoinRetryDelay <= 0 {
		c.JoinRetryDelay = DefaultJoinRetryDelay
	}
	if c.HazardInterval <= 0 {
		c.HazardInterval = DefaultHazardInterval
	}
	if c.HazardAnchor <= 0 {
		c.HazardAnchor = time.Duration(c.MaxSwapSeconds) * c.SwapUnit
	}
	return c
}
