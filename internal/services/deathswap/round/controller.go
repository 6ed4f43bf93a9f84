package round

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zyedidia/generic/mapset"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/deathswap/internal/platform/otel"
	"github.com/louisbranch/deathswap/internal/platform/random"
	"github.com/louisbranch/deathswap/internal/platform/timeouts"
	"github.com/louisbranch/deathswap/internal/services/deathswap/i18n"
	"github.com/louisbranch/deathswap/internal/services/deathswap/journal"
	"github.com/louisbranch/deathswap/internal/services/deathswap/schedule"
)

const inboxSize = 256

// Deps are the collaborators a Controller drives. All are required except
// Rand and Tracer.
type Deps struct {
	Directory   PlayerDirectory
	Teleporter  Teleporter
	Broadcaster Broadcaster
	Roles       RoleAssigner
	Locations   Locations
	World       Preloader
	Messages    *i18n.Messages
	Journal     journal.Recorder
	// Rand draws swap delays and derangements. It is only used from the
	// control goroutine. Nil means a crypto-seeded generator.
	Rand random.Source
	// Tracer records round spans. Nil means the process tracer provider.
	Tracer trace.Tracer
}

func (d Deps) validate() error {
	missing := func(name string) error { return fmt.Errorf("round: %s is required", name) }
	switch {
	case d.Directory == nil:
		return missing("player directory")
	case d.Teleporter == nil:
		return missing("teleporter")
	case d.Broadcaster == nil:
		return missing("broadcaster")
	case d.Roles == nil:
		return missing("role assigner")
	case d.Locations == nil:
		return missing("locations")
	case d.World == nil:
		return missing("preloader")
	case d.Messages == nil:
		return missing("messages")
	case d.Journal == nil:
		return missing("journal")
	}
	return nil
}

// Controller is the round state machine. Create it with New and drive it
// with Run.
type Controller struct {
	cfg  Config
	deps Deps

	inbox    chan any
	quit     chan struct{}
	done     chan struct{}
	quitOnce sync.Once
	running  atomic.Bool
	workers  sync.WaitGroup

	// Owned by the Run goroutine.
	workCtx     context.Context
	state       State
	round       int64
	contestants mapset.Set[Identity]
	spectators  mapset.Set[Identity]
	pending     mapset.Set[Identity]
	assignments map[Identity]Identity
	startedAt   time.Time
	lastSwap    time.Time
	nextSwapAt  time.Time
	nextDelay   time.Duration
	swapping    bool

	// tasks holds the round's timers; hooks holds join settle timers, which
	// outlive rounds.
	tasks *schedule.Group
	hooks *schedule.Group
}

// New validates deps and builds an idle controller.
func New(cfg Config, deps Deps) (*Controller, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.Rand == nil {
		rng, err := random.NewLocked(nil)
		if err != nil {
			return nil, fmt.Errorf("round: %w", err)
		}
		deps.Rand = rng
	}
	if deps.Tracer == nil {
		deps.Tracer = otel.Tracer("round")
	}
	return &Controller{
		cfg:         cfg.normalized(),
		deps:        deps,
		inbox:       make(chan any, inboxSize),
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
		workCtx:     context.Background(),
		contestants: mapset.New[Identity](),
		spectators:  mapset.New[Identity](),
		pending:     mapset.New[Identity](),
		assignments: map[Identity]Identity{},
		tasks:       schedule.NewGroup(),
		hooks:       schedule.NewGroup(),
	}, nil
}

// Run processes events until ctx ends or Stop is called. On return every
// timer is cancelled and every relocation goroutine has finished.
func (c *Controller) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !c.running.CompareAndSwap(false, true) {
		return errors.New("round: controller already running")
	}
	workCtx, cancel := context.WithCancel(ctx)
	c.workCtx = workCtx
	defer close(c.done)
	defer c.shutdown(cancel)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.quit:
			return nil
		case ev := <-c.inbox:
			c.handle(ev)
		}
	}
}

// Stop ends Run. It is safe to call more than once.
func (c *Controller) Stop() {
	c.quitOnce.Do(func() { close(c.quit) })
}

// Done is closed once Run has returned.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

func (c *Controller) shutdown(cancel context.CancelFunc) {
	c.Stop()
	c.tasks.Close()
	c.hooks.Close()
	cancel()
	c.workers.Wait()
	if c.state == StateActive {
		log.Printf("round: controller stopped during round %d", c.round)
	}
	c.state = StateIdle
}

// Start begins a round with every online player.
func (c *Controller) Start(ctx context.Context) error {
	return c.request(ctx, func(reply chan error) any { return startRequest{reply: reply} })
}

// End finishes the active round.
func (c *Controller) End(ctx context.Context) error {
	return c.request(ctx, func(reply chan error) any { return endRequest{reply: reply} })
}

// Snapshot returns a copy of the round state.
func (c *Controller) Snapshot(ctx context.Context) (Snapshot, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	reply := make(chan Snapshot, 1)
	if err := c.post(ctx, snapshotRequest{reply: reply}); err != nil {
		return Snapshot{}, err
	}
	select {
	case s := <-reply:
		return s, nil
	case <-c.quit:
		return Snapshot{}, ErrStopped
	case <-ctx.Done():
		return Snapshot{}, ctx.Err()
	}
}

// OnJoin is called by the host when a player connects.
func (c *Controller) OnJoin(id Identity) { c.notify(joinEvent{id: id}) }

// OnQuit is called by the host when a player disconnects.
func (c *Controller) OnQuit(id Identity) { c.notify(quitEvent{id: id}) }

// OnDeath is called by the host when a player dies.
func (c *Controller) OnDeath(id Identity) { c.notify(deathEvent{id: id}) }

func (c *Controller) request(ctx context.Context, build func(chan error) any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	reply := make(chan error, 1)
	if err := c.post(ctx, build(reply)); err != nil {
		return err
	}
	select {
	case err := <-reply:
		return err
	case <-c.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) post(ctx context.Context, ev any) error {
	select {
	case <-c.quit:
		return ErrStopped
	default:
	}
	select {
	case c.inbox <- ev:
		return nil
	case <-c.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) notify(ev any) {
	_ = c.post(context.Background(), ev)
}

// ask posts a membership check and waits for the answer. Any failure reads
// as "no".
func (c *Controller) ask(ctx context.Context, build func(chan bool) any) bool {
	reply := make(chan bool, 1)
	if err := c.post(ctx, build(reply)); err != nil {
		return false
	}
	select {
	case ok := <-reply:
		return ok
	case <-c.quit:
		return false
	case <-ctx.Done():
		return false
	}
}

func (c *Controller) handle(ev any) {
	switch e := ev.(type) {
	case startRequest:
		e.reply <- c.startRound()
	case endRequest:
		if c.state != StateActive {
			e.reply <- ErrRoundNotActive
			return
		}
		c.endRound()
		e.reply <- nil
	case snapshotRequest:
		e.reply <- c.snapshot()
	case joinEvent:
		id := e.id
		c.hooks.After(c.cfg.SettleDelay, func() { c.notify(joinSettled{id: id}) })
	case joinSettled:
		c.handleJoinSettled(e.id)
	case quitEvent:
		c.handleQuit(e.id)
	case deathEvent:
		c.handleDeath(e.id)
	case joinCheck:
		e.reply <- c.isCurrent(e.round) && c.pending.Has(e.id)
	case joinResult:
		c.handleJoinResult(e)
	case joinRetry:
		if c.isCurrent(e.round) && c.pending.Has(e.id) {
			c.beginJoin(e.round, e.id)
		}
	case graceElapsed:
		c.handleGraceElapsed(e.round)
	case swapDue:
		c.handleSwapDue(e.round)
	case swapCheck:
		e.reply <- c.isCurrent(e.round) && c.contestants.Has(e.id)
	case swapBatchDone:
		c.handleSwapBatchDone(e.round)
	case hazardTick:
		c.handleHazardTick(e.round)
	default:
		log.Printf("round: unknown event %T", ev)
	}
}

func (c *Controller) isCurrent(round int64) bool {
	return c.state == StateActive && c.round == round
}

func (c *Controller) name(id Identity) string {
	if name := c.deps.Directory.Name(id); name != "" {
		return name
	}
	return id.String()
}

func (c *Controller) isOnline(id Identity) bool {
	return slices.Contains(c.deps.Directory.Online(), id)
}

// record writes to the journal without letting a slow or failing store
// affect the round.
func (c *Controller) record(op string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(c.workCtx, timeouts.JournalWrite)
	defer cancel()
	if err := fn(ctx); err != nil {
		log.Printf("round: journal %s: %v", op, err)
	}
}

func (c *Controller) spawn(fn func(ctx context.Context)) {
	ctx := c.workCtx
	c.workers.Add(1)
	go func() {
		defer c.workers.Done()
		fn(ctx)
	}()
}

func sortIdentities(ids []Identity) []Identity {
	out := slices.Clone(ids)
	slices.SortFunc(out, func(a, b Identity) int { return bytes.Compare(a[:], b[:]) })
	return slices.Compact(out)
}

func setMembers(s mapset.Set[Identity]) []Identity {
	out := make([]Identity, 0, s.Size())
	s.Each(func(id Identity) { out = append(out, id) })
	return sortIdentities(out)
}
