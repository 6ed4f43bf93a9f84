package round

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/louisbranch/deathswap/internal/services/deathswap/journal"
)

// beginJoin places id for round: take a location, preload it, confirm the
// player is still joining, then move. The player becomes a contestant only
// when the move has landed.
func (c *Controller) beginJoin(round int64, id Identity) {
	c.spawn(func(ctx context.Context) {
		loc, err := c.deps.Locations.Take(ctx)
		if err != nil {
			c.notify(joinResult{round: round, id: id, err: fmt.Errorf("take location: %w", err)})
			return
		}
		defer loc.Release()

		if err := c.deps.World.Preload(ctx, loc.Coord); err != nil {
			c.notify(joinResult{round: round, id: id, err: fmt.Errorf("preload %s: %w", loc.Region, err)})
			return
		}
		if !c.ask(ctx, func(reply chan bool) any { return joinCheck{round: round, id: id, reply: reply} }) {
			return
		}
		moved, err := c.deps.Teleporter.Move(ctx, id, loc.Coord)
		if err == nil && !moved {
			err = errMoveRejected
		}
		c.notify(joinResult{round: round, id: id, err: err})
	})
}

func (c *Controller) handleJoinResult(e joinResult) {
	if !c.isCurrent(e.round) || !c.pending.Has(e.id) {
		return
	}
	if e.err != nil {
		log.Printf("round: placing %s failed, retrying in %s: %v", c.name(e.id), c.cfg.JoinRetryDelay, e.err)
		round, id := e.round, e.id
		c.tasks.After(c.cfg.JoinRetryDelay, func() { c.notify(joinRetry{round: round, id: id}) })
		return
	}
	c.pending.Remove(e.id)
	c.contestants.Put(e.id)
	c.deps.Roles.AssignRole(e.id, RoleContestant)
	c.deps.Broadcaster.Send(e.id, c.deps.Messages.StartingLocation())
}

func (c *Controller) handleJoinSettled(id Identity) {
	if c.contestants.Has(id) || c.spectators.Has(id) || c.pending.Has(id) {
		return
	}
	if !c.isOnline(id) {
		return
	}
	c.addSpectator(id)
}

func (c *Controller) addSpectator(id Identity) {
	c.spectators.Put(id)
	c.deps.Roles.AssignRole(id, RoleSpectator)
	if c.state == StateActive {
		c.deps.Broadcaster.Send(id, c.deps.Messages.Spectating())
	}
}

func (c *Controller) handleQuit(id Identity) {
	playing := c.contestants.Has(id) || c.pending.Has(id)
	c.pending.Remove(id)
	c.spectators.Remove(id)
	c.contestants.Remove(id)
	delete(c.assignments, id)
	if playing {
		c.checkAutoEnd()
	}
}

func (c *Controller) handleDeath(id Identity) {
	if c.state != StateActive || !c.contestants.Has(id) {
		return
	}
	owner, attributed := c.assignments[id]
	remaining := c.contestants.Size() - 1
	victimName := c.name(id)
	ownerName := ""
	ownerID := ""
	if attributed {
		ownerName = c.name(owner)
		ownerID = owner.String()
	}
	c.deps.Broadcaster.SendAll(c.deps.Messages.Eliminated(victimName, ownerName, remaining))

	number := c.round
	c.record("elimination", func(ctx context.Context) error {
		return c.deps.Journal.RecordElimination(ctx, journal.Elimination{
			Round:      number,
			VictimID:   id.String(),
			VictimName: victimName,
			OwnerID:    ownerID,
			OwnerName:  ownerName,
			Remaining:  remaining,
			At:         time.Now(),
		})
	})

	c.contestants.Remove(id)
	delete(c.assignments, id)
	c.addSpectator(id)
	c.checkAutoEnd()
}
