package round

import (
	"context"

	"github.com/google/uuid"

	"github.com/louisbranch/deathswap/internal/services/deathswap/locationcache"
	"github.com/louisbranch/deathswap/internal/services/deathswap/world"
)

// Identity identifies a player for the lifetime of the process.
type Identity = uuid.UUID

// Role is the part a player takes in the current round.
type Role int

const (
	RoleSpectator Role = iota
	RoleContestant
)

// String returns the role name.
func (r Role) String() string {
	if r == RoleContestant {
		return "contestant"
	}
	return "spectator"
}

// PlayerDirectory answers questions about connected players. It must be safe
// for concurrent use.
type PlayerDirectory interface {
	Online() []Identity
	Name(id Identity) string
	Position(id Identity) (world.Coord, bool)
}

// Teleporter moves a player. It reports false when the host refused the
// move.
type Teleporter interface {
	Move(ctx context.Context, id Identity, to world.Coord) (bool, error)
}

// Broadcaster delivers text to players. It must be safe for concurrent use.
type Broadcaster interface {
	SendAll(text string)
	Send(id Identity, text string)
	SendActionBar(id Identity, text string)
	SendOperators(text string)
}

// RoleAssigner applies the host-side effects of a role change, such as game
// mode, health and inventory.
type RoleAssigner interface {
	AssignRole(id Identity, role Role)
}

// Locations hands out validated spawn points.
type Locations interface {
	Take(ctx context.Context) (*locationcache.Location, error)
}

// Preloader makes a destination resident before a move.
type Preloader interface {
	Preload(ctx context.Context, at world.Coord) error
}
