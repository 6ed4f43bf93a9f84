package locationcache

import (
	"sync"

	"github.com/louisbranch/deathswap/internal/services/deathswap/world"
)

// Location is a validated standing position with a region reservation bound
// to it.
type Location struct {
	Coord  world.Coord
	Region world.Region

	owner   string
	release func()
}

func newLocation(coord world.Coord, owner string, reservations world.Reservations) *Location {
	region := coord.Region()
	reservations.Acquire(region, owner)
	return &Location{
		Coord:   coord,
		Region:  region,
		owner:   owner,
		release: sync.OnceFunc(func() { reservations.Release(region, owner) }),
	}
}

// Release gives the region reservation back. Calls after the first do
// nothing.
func (l *Location) Release() {
	if l == nil || l.release == nil {
		return
	}
	l.release()
}

// Owner returns the reservation owner the location was acquired under.
func (l *Location) Owner() string {
	if l == nil {
		return ""
	}
	return l.owner
}
