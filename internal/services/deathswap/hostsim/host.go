package hostsim

import (
	"fmt"
	"time"

	"github.com/louisbranch/deathswap/internal/platform/random"
)

// Config selects the world and its loading behaviour.
type Config struct {
	// Seed picks the terrain. Zero draws a random seed.
	Seed int64
	// LoadLatency is the simulated time to make a region resident.
	LoadLatency time.Duration
}

// Host bundles the simulated collaborators of one world.
type Host struct {
	Seed         int64
	Terrain      *Terrain
	Players      *Players
	Reservations *Reservations
	Feed         *Feed
	Broadcaster  *Broadcaster
}

// New builds a host with an empty player registry.
func New(cfg Config) (*Host, error) {
	seed := cfg.Seed
	if seed == 0 {
		var err error
		if seed, err = random.NewSeed(); err != nil {
			return nil, fmt.Errorf("hostsim: %w", err)
		}
	}
	terrain := NewTerrain(seed, cfg.LoadLatency)
	players := NewPlayers(terrain.Spawn())
	feed := NewFeed()
	return &Host{
		Seed:         seed,
		Terrain:      terrain,
		Players:      players,
		Reservations: NewReservations(),
		Feed:         feed,
		Broadcaster:  NewBroadcaster(players, feed),
	}, nil
}
