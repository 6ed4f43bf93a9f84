package locationcache

import "time"

const (
	DefaultTarget           = 10
	DefaultInterval         = 5 * time.Second
	DefaultMaxDistance      = 8000
	DefaultSearchAttempts   = 500
	DefaultFallbackAttempts = 1000
	DefaultOwner            = "deathswap.locationcache"
)

// Config tunes the pool size and search bounds.
type Config struct {
	// Target is the pool capacity.
	Target int
	// Interval is the population cadence.
	Interval time.Duration
	// MaxDistance is the half-width of the square columns are sampled from.
	MaxDistance int
	// SearchAttempts caps one background search.
	SearchAttempts int
	// FallbackAttempts caps the synchronous search Take runs on an empty pool.
	FallbackAttempts int
	// Owner prefixes the reservation owner of every location.
	Owner string
}

func (c Config) normalized() Config {
	if c.Target <= 0 {
		c.Target = DefaultTarget
	}
	if c.Interval <= 0 {
		c.Interval = DefaultInterval
	}
	if c.MaxDistance <= 0 {
		c.MaxDistance = DefaultMaxDistance
	}
	if c.SearchAttempts <= 0 {
		c.SearchAttempts = DefaultSearchAttempts
	}
	if c.FallbackAttempts <= 0 {
		c.FallbackAttempts = DefaultFallbackAttempts
	}
	if c.Owner == "" {
		c.Owner = DefaultOwner
	}
	return c
}
