package round

import (
	"context"
	"log"
	"time"

	"github.com/zyedidia/generic/mapset"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/deathswap/internal/services/deathswap/journal"
)

func (c *Controller) startRound() error {
	if c.state == StateActive {
		return ErrRoundActive
	}
	online := sortIdentities(c.deps.Directory.Online())
	if len(online) < minParticipants {
		c.deps.Broadcaster.SendAll(c.deps.Messages.NotEnoughPlayers())
		return ErrInsufficientParticipants
	}

	_, span := c.deps.Tracer.Start(c.workCtx, "round.start",
		trace.WithAttributes(attribute.Int("deathswap.participants", len(online))))
	defer span.End()

	c.tasks.Cancel()
	c.round++
	c.contestants = mapset.New[Identity]()
	c.spectators = mapset.New[Identity]()
	c.pending = mapset.New[Identity]()
	c.assignments = map[Identity]Identity{}
	now := time.Now()
	c.state = StateActive
	c.startedAt = now
	c.lastSwap = now
	c.nextSwapAt = time.Time{}
	c.nextDelay = 0
	c.swapping = false
	span.SetAttributes(attribute.Int64("deathswap.round", c.round))

	c.deps.Broadcaster.SendAll(c.deps.Messages.RoundStarting())
	number := c.round
	c.record("round started", func(ctx context.Context) error {
		return c.deps.Journal.RecordRoundStarted(ctx, journal.RoundStarted{
			Number:       number,
			StartedAt:    now,
			Participants: len(online),
		})
	})

	for _, id := range online {
		c.pending.Put(id)
		c.beginJoin(number, id)
	}
	c.tasks.After(c.cfg.GraceDelay, func() { c.notify(graceElapsed{round: number}) })
	log.Printf("round: round %d started with %d participants", number, len(online))
	return nil
}

// checkAutoEnd ends the round once at most one contestant is left. Players
// still being placed do not count.
func (c *Controller) checkAutoEnd() {
	if c.state != StateActive {
		return
	}
	if c.contestants.Size() <= 1 {
		c.endRound()
	}
}

func (c *Controller) endRound() {
	_, span := c.deps.Tracer.Start(c.workCtx, "round.end",
		trace.WithAttributes(attribute.Int64("deathswap.round", c.round)))
	defer span.End()

	c.tasks.Cancel()
	c.assignments = map[Identity]Identity{}
	c.swapping = false
	c.nextSwapAt = time.Time{}
	c.nextDelay = 0
	c.state = StateIdle

	ended := journal.RoundEnded{Number: c.round, EndedAt: time.Now(), Outcome: journal.OutcomeTie}
	if c.contestants.Size() == 1 && c.pending.Size() == 0 {
		winner := setMembers(c.contestants)[0]
		name := c.name(winner)
		ended.Outcome = journal.OutcomeWinner
		ended.WinnerID = winner.String()
		ended.WinnerName = name
		c.deps.Broadcaster.SendAll(c.deps.Messages.Winner(name))
		log.Printf("round: round %d won by %s", c.round, name)
	} else {
		c.deps.Broadcaster.SendAll(c.deps.Messages.Tie())
		log.Printf("round: round %d ended in a tie", c.round)
	}
	span.SetAttributes(attribute.String("deathswap.outcome", string(ended.Outcome)))

	remaining := append(setMembers(c.contestants), setMembers(c.pending)...)
	c.contestants = mapset.New[Identity]()
	c.pending = mapset.New[Identity]()
	for _, id := range remaining {
		c.addSpectator(id)
	}
	c.record("round ended", func(ctx context.Context) error {
		return c.deps.Journal.RecordRoundEnded(ctx, ended)
	})
}
