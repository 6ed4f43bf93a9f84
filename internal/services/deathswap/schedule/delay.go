package schedule

import (
	"math"
	"time"
)

// DefaultWeight biases swap delays toward the upper bound.
const DefaultWeight = 2.0

// Float64er is the random source a delay is drawn from.
type Float64er interface {
	Float64() float64
}

// WeightedSeconds draws a swap delay in [1, max] seconds.
//
// With u uniform in [0, 1) the delay is round(u^(1/weight) * (max-1)) + 1.
// A weight above 1 makes long delays more likely than short ones; a weight of
// 1 is uniform. Non-positive weights are treated as 1 and max below 1 as 1.
func WeightedSeconds(rng Float64er, max int, weight float64) int {
	if max < 1 {
		max = 1
	}
	if weight <= 0 {
		weight = 1
	}
	u := rng.Float64()
	return int(math.Round(math.Pow(u, 1/weight)*float64(max-1))) + 1
}

// WeightedDelay is WeightedSeconds scaled by unit.
func WeightedDelay(rng Float64er, max int, weight float64, unit time.Duration) time.Duration {
	if unit <= 0 {
		unit = time.Second
	}
	return time.Duration(WeightedSeconds(rng, max, weight)) * unit
}
