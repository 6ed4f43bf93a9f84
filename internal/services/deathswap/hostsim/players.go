package hostsim

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/louisbranch/deathswap/internal/services/deathswap/round"
	"github.com/louisbranch/deathswap/internal/services/deathswap/world"
)

const maxHealth = 20

var (
	// ErrUnknownPlayer reports an identity that is not online.
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrNameRequired rejects a join without a display name.
	ErrNameRequired = errors.New("player name is required")
)

// Player is a copy of one connected player.
type Player struct {
	ID       round.Identity
	Name     string
	Position world.Coord
	Role     round.Role
	Health   float64
	Alive    bool
}

// Players is the host's player registry. It serves as the directory, the
// teleporter and the role assigner of a round controller.
type Players struct {
	spawn world.Coord

	mu      sync.Mutex
	order   []round.Identity
	players map[round.Identity]*Player
}

// NewPlayers returns an empty registry placing new players at spawn.
func NewPlayers(spawn world.Coord) *Players {
	return &Players{spawn: spawn, players: map[round.Identity]*Player{}}
}

// Join registers a new online player at the spawn point.
func (p *Players) Join(name string) (round.Identity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.Nil, ErrNameRequired
	}
	id := uuid.New()
	p.mu.Lock()
	defer p.mu.Unlock()
	p.players[id] = &Player{
		ID:       id,
		Name:     name,
		Position: p.spawn,
		Role:     round.RoleSpectator,
		Health:   maxHealth,
		Alive:    true,
	}
	p.order = append(p.order, id)
	return id, nil
}

// Leave disconnects id.
func (p *Players) Leave(id round.Identity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.players[id]; !ok {
		return ErrUnknownPlayer
	}
	delete(p.players, id)
	p.order = slices.DeleteFunc(p.order, func(o round.Identity) bool { return o == id })
	return nil
}

// Kill marks id dead. The caller reports the death to the controller.
func (p *Players) Kill(id round.Identity) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	pl, ok := p.players[id]
	if !ok {
		return ErrUnknownPlayer
	}
	pl.Health = 0
	pl.Alive = false
	return nil
}

// Lookup returns a copy of id's state.
func (p *Players) Lookup(id round.Identity) (Player, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pl, ok := p.players[id]
	if !ok {
		return Player{}, false
	}
	return *pl, true
}

// Online implements round.PlayerDirectory.
func (p *Players) Online() []round.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.order)
}

// Name implements round.PlayerDirectory.
func (p *Players) Name(id round.Identity) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pl, ok := p.players[id]; ok {
		return pl.Name
	}
	return ""
}

// Position implements round.PlayerDirectory.
func (p *Players) Position(id round.Identity) (world.Coord, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pl, ok := p.players[id]
	if !ok {
		return world.Coord{}, false
	}
	return pl.Position, true
}

// Move implements round.Teleporter. Offline players cannot be moved.
func (p *Players) Move(ctx context.Context, id round.Identity, to world.Coord) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	pl, ok := p.players[id]
	if !ok {
		return false, nil
	}
	pl.Position = to
	return true, nil
}

// AssignRole implements round.RoleAssigner. Contestants come back healed.
func (p *Players) AssignRole(id round.Identity, role round.Role) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pl, ok := p.players[id]
	if !ok {
		return
	}
	pl.Role = role
	if role == round.RoleContestant {
		pl.Health = maxHealth
		pl.Alive = true
	}
}
