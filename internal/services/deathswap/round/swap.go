package round

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/louisbranch/deathswap/internal/services/deathswap/derange"
	"github.com/louisbranch/deathswap/internal/services/deathswap/schedule"
	"github.com/louisbranch/deathswap/internal/services/deathswap/world"
)

func (c *Controller) handleGraceElapsed(round int64) {
	if !c.isCurrent(round) {
		return
	}
	c.lastSwap = time.Now()
	c.tasks.Every(c.cfg.HazardInterval, func() { c.notify(hazardTick{round: round}) })
	c.armSwap(round)
}

func (c *Controller) armSwap(round int64) {
	d := schedule.WeightedDelay(c.deps.Rand, c.cfg.MaxSwapSeconds, c.cfg.SwapWeight, c.cfg.SwapUnit)
	c.nextDelay = d
	c.nextSwapAt = time.Now().Add(d)
	c.tasks.After(d, func() { c.notify(swapDue{round: round}) })
	log.Printf("round: next swap scheduled in %s", d)
}

// handleSwapDue snapshots contestant positions, draws a derangement and
// moves everyone at once. The next timer is armed only after the whole
// batch has landed.
func (c *Controller) handleSwapDue(round int64) {
	if !c.isCurrent(round) || c.swapping {
		return
	}
	c.nextSwapAt = time.Time{}
	c.nextDelay = 0

	// Positions are read once, before any move of this batch is issued.
	positions := make(map[Identity]world.Coord, c.contestants.Size())
	positioned := make([]Identity, 0, c.contestants.Size())
	for _, id := range setMembers(c.contestants) {
		if pos, ok := c.deps.Directory.Position(id); ok {
			positions[id] = pos
			positioned = append(positioned, id)
		}
	}
	if len(positioned) < minParticipants {
		c.armSwap(round)
		return
	}

	order := derange.Derange(c.deps.Rand, positioned)
	c.assignments = make(map[Identity]Identity, len(positioned))
	legs := make([]swapLeg, 0, len(positioned))
	for i, receiver := range positioned {
		owner := order[i]
		c.assignments[receiver] = owner
		legs = append(legs, swapLeg{
			receiver: receiver,
			owner:    owner,
			dest:     positions[owner],
			notice:   c.deps.Messages.SwappingTo(c.name(owner)),
		})
	}
	c.swapping = true

	spanCtx, span := c.deps.Tracer.Start(c.workCtx, "round.swap",
		trace.WithAttributes(
			attribute.Int64("deathswap.round", round),
			attribute.Int("deathswap.contestants", len(legs)),
		))
	c.spawn(func(context.Context) {
		defer span.End()
		var batch errgroup.Group
		for _, leg := range legs {
			batch.Go(func() error {
				c.relocate(spanCtx, round, leg)
				return nil
			})
		}
		_ = batch.Wait()
		c.notify(swapBatchDone{round: round})
	})
}

// relocate runs one leg of a swap. Failures stay inside the leg.
func (c *Controller) relocate(ctx context.Context, round int64, leg swapLeg) {
	if err := c.deps.World.Preload(ctx, leg.dest); err != nil {
		log.Printf("round: preload %s for swap failed: %v", leg.dest, err)
		return
	}
	if !c.ask(ctx, func(reply chan bool) any { return swapCheck{round: round, id: leg.receiver, reply: reply} }) {
		return
	}
	c.deps.Broadcaster.Send(leg.receiver, leg.notice)
	moved, err := c.deps.Teleporter.Move(ctx, leg.receiver, leg.dest)
	switch {
	case err != nil:
		log.Printf("round: swap move for %s failed: %v", leg.receiver, err)
	case !moved:
		log.Printf("round: swap move for %s rejected by host", leg.receiver)
	}
}

func (c *Controller) handleSwapBatchDone(round int64) {
	if !c.isCurrent(round) {
		return
	}
	c.swapping = false
	c.lastSwap = time.Now()
	c.armSwap(round)
}

func (c *Controller) handleHazardTick(round int64) {
	if !c.isCurrent(round) {
		return
	}
	text := c.deps.Messages.Hazard(schedule.Measure(time.Since(c.lastSwap), c.cfg.HazardAnchor))
	for _, id := range setMembers(c.contestants) {
		c.deps.Broadcaster.SendActionBar(id, text)
	}
}
