package hostsim

import (
	"log"
	"sync"

	"github.com/zyedidia/generic/mapset"

	"github.com/louisbranch/deathswap/internal/services/deathswap/world"
)

// Reservations tracks which owners keep each region resident. A region stays
// held while at least one owner has it.
type Reservations struct {
	mu     sync.Mutex
	owners map[world.Region]mapset.Set[string]
}

// NewReservations returns an empty ledger.
func NewReservations() *Reservations {
	return &Reservations{owners: map[world.Region]mapset.Set[string]{}}
}

// Acquire implements world.Reservations.
func (r *Reservations) Acquire(region world.Region, owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.owners[region]
	if !ok {
		set = mapset.New[string]()
		r.owners[region] = set
	}
	if set.Has(owner) {
		log.Printf("hostsim: %s already holds region %s", owner, region)
		return
	}
	set.Put(owner)
}

// Release implements world.Reservations.
func (r *Reservations) Release(region world.Region, owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.owners[region]
	if !ok || !set.Has(owner) {
		log.Printf("hostsim: %s released region %s it does not hold", owner, region)
		return
	}
	set.Remove(owner)
	if set.Size() == 0 {
		delete(r.owners, region)
	}
}

// Held reports whether any owner holds region.
func (r *Reservations) Held(region world.Region) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.owners[region]
	return ok
}

// Outstanding counts (region, owner) pairs currently held.
func (r *Reservations) Outstanding() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, set := range r.owners {
		n += set.Size()
	}
	return n
}
