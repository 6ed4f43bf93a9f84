package schedule

import (
	"fmt"
	"time"
)

// Band is a risk tier derived from time since the last swap.
type Band int

const (
	BandSafe Band = iota
	BandUnsafe
	BandDanger
)

// String returns the band label.
func (b Band) String() string {
	switch b {
	case BandSafe:
		return "SAFE"
	case BandUnsafe:
		return "UNSAFE"
	case BandDanger:
		return "DANGER"
	default:
		return "UNKNOWN"
	}
}

const (
	unsafeFrom = 0.5
	dangerFrom = 0.8
)

// BandFor classifies a hazard ratio. Each band starts at its boundary: 0.5
// is already unsafe and 0.8 is already danger, so 60s of a 120s anchor
// reads UNSAFE.
func BandFor(ratio float64) Band {
	switch {
	case ratio >= dangerFrom:
		return BandDanger
	case ratio >= unsafeFrom:
		return BandUnsafe
	default:
		return BandSafe
	}
}

// Hazard is one reading of the countdown shown to contestants.
type Hazard struct {
	Elapsed time.Duration
	Ratio   float64
	Band    Band
}

// Clock formats the elapsed time as mm:ss.
func (h Hazard) Clock() string {
	return FormatClock(h.Elapsed)
}

// Measure computes the hazard for elapsed whole seconds against anchor.
// A non-positive anchor always reads safe.
func Measure(elapsed, anchor time.Duration) Hazard {
	if elapsed < 0 {
		elapsed = 0
	}
	elapsed = elapsed.Truncate(time.Second)
	if anchor <= 0 {
		return Hazard{Elapsed: elapsed, Band: BandSafe}
	}
	ratio := float64(elapsed) / float64(anchor)
	return Hazard{Elapsed: elapsed, Ratio: ratio, Band: BandFor(ratio)}
}

// FormatClock renders d as zero-padded minutes and seconds.
func FormatClock(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
