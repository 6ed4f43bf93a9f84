package round

import (
	"context"
	"errors"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/louisbranch/deathswap/internal/platform/random"
	"github.com/louisbranch/deathswap/internal/services/deathswap/i18n"
	"github.com/louisbranch/deathswap/internal/services/deathswap/journal"
	"github.com/louisbranch/deathswap/internal/services/deathswap/locationcache"
	"github.com/louisbranch/deathswap/internal/services/deathswap/world"
)

type directory struct {
	mu        sync.Mutex
	online    []Identity
	names     map[Identity]string
	positions map[Identity]world.Coord
}

func newDirectory() *directory {
	return &directory{names: map[Identity]string{}, positions: map[Identity]world.Coord{}}
}

func (d *directory) add(name string, at world.Coord) Identity {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := uuid.New()
	d.online = append(d.online, id)
	d.names[id] = name
	d.positions[id] = at
	return id
}

func (d *directory) remove(id Identity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.online = slices.DeleteFunc(d.online, func(o Identity) bool { return o == id })
	delete(d.positions, id)
}

func (d *directory) Online() []Identity {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.online)
}

func (d *directory) Name(id Identity) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.names[id]
}

func (d *directory) Position(id Identity) (world.Coord, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	pos, ok := d.positions[id]
	return pos, ok
}

func (d *directory) setPosition(id Identity, at world.Coord) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.positions[id]; ok {
		d.positions[id] = at
	}
}

// teleporter moves players in the directory. Moves for identities in hold
// block until release is called.
type teleporter struct {
	dir *directory

	mu      sync.Mutex
	hold    map[Identity]bool
	gate    chan struct{}
	blocked int
	moves   []Identity
}

func newTeleporter(dir *directory) *teleporter {
	return &teleporter{dir: dir, hold: map[Identity]bool{}, gate: make(chan struct{})}
}

func (tp *teleporter) holdMoves(ids ...Identity) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	for _, id := range ids {
		tp.hold[id] = true
	}
}

func (tp *teleporter) release() {
	close(tp.gate)
}

func (tp *teleporter) blockedCount() int {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	return tp.blocked
}

func (tp *teleporter) Move(ctx context.Context, id Identity, to world.Coord) (bool, error) {
	tp.mu.Lock()
	held := tp.hold[id]
	if held {
		tp.blocked++
	}
	tp.mu.Unlock()
	if held {
		select {
		case <-tp.gate:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	tp.mu.Lock()
	tp.moves = append(tp.moves, id)
	tp.mu.Unlock()
	tp.dir.setPosition(id, to)
	return true, nil
}

type broadcaster struct {
	mu        sync.Mutex
	all       []string
	direct    map[Identity][]string
	actionBar map[Identity][]string
	operators []string
}

func newBroadcaster() *broadcaster {
	return &broadcaster{direct: map[Identity][]string{}, actionBar: map[Identity][]string{}}
}

func (b *broadcaster) SendAll(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, text)
}

func (b *broadcaster) Send(id Identity, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.direct[id] = append(b.direct[id], text)
}

func (b *broadcaster) SendActionBar(id Identity, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.actionBar[id] = append(b.actionBar[id], text)
}

func (b *broadcaster) SendOperators(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.operators = append(b.operators, text)
}

func (b *broadcaster) broadcasts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.all)
}

func (b *broadcaster) sentTo(id Identity) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.direct[id])
}

func (b *broadcaster) actionBarCount(id Identity) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.actionBar[id])
}

func (b *broadcaster) lastActionBar(id Identity) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	bar := b.actionBar[id]
	if len(bar) == 0 {
		return ""
	}
	return bar[len(bar)-1]
}

func (b *broadcaster) hasBroadcast(text string) bool {
	return slices.Contains(b.broadcasts(), text)
}

type roles struct {
	mu    sync.Mutex
	roles map[Identity]Role
}

func (r *roles) AssignRole(id Identity, role Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.roles == nil {
		r.roles = map[Identity]Role{}
	}
	r.roles[id] = role
}

func (r *roles) get(id Identity) (Role, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[id]
	return role, ok
}

// flatWorld is grass at y=64 everywhere.
type flatWorld struct {
	mu       sync.Mutex
	preloads int
	failNext int
}

func (w *flatWorld) HighestSolidBlockAt(x, z int) world.BlockInfo {
	return world.BlockInfo{Pos: world.BlockPos{X: x, Y: 64, Z: z}, Material: world.MaterialGrassBlock, Biome: world.BiomePlains}
}

func (w *flatWorld) BlockAt(pos world.BlockPos) world.BlockInfo {
	return world.BlockInfo{Pos: pos, Material: world.MaterialAir, Passable: true}
}

func (w *flatWorld) Preload(context.Context, world.Coord) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.preloads++
	if w.failNext > 0 {
		w.failNext--
		return errors.New("region unavailable")
	}
	return nil
}

type reservations struct {
	mu   sync.Mutex
	held map[string]int
}

func (r *reservations) Acquire(region world.Region, owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.held == nil {
		r.held = map[string]int{}
	}
	r.held[owner+region.String()]++
}

func (r *reservations) Release(region world.Region, owner string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := owner + region.String()
	r.held[key]--
	if r.held[key] <= 0 {
		delete(r.held, key)
	}
}

func (r *reservations) outstanding() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.held)
}

// flakyLocations fails the first failures calls to Take.
type flakyLocations struct {
	inner    Locations
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyLocations) Take(ctx context.Context) (*locationcache.Location, error) {
	f.mu.Lock()
	f.calls++
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()
	if fail {
		return nil, locationcache.ErrSearchExhausted
	}
	return f.inner.Take(ctx)
}

type recorder struct {
	mu           sync.Mutex
	started      []journal.RoundStarted
	eliminations []journal.Elimination
	ended        []journal.RoundEnded
}

func (r *recorder) RecordRoundStarted(_ context.Context, s journal.RoundStarted) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, s)
	return nil
}

func (r *recorder) RecordElimination(_ context.Context, e journal.Elimination) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.eliminations = append(r.eliminations, e)
	return nil
}

func (r *recorder) RecordRoundEnded(_ context.Context, e journal.RoundEnded) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, e)
	return nil
}

func (r *recorder) endings() []journal.RoundEnded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.ended)
}

func (r *recorder) eliminated() []journal.Elimination {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.eliminations)
}

type harness struct {
	ctrl         *Controller
	dir          *directory
	tp           *teleporter
	bc           *broadcaster
	roles        *roles
	world        *flatWorld
	reservations *reservations
	cache        *locationcache.Cache
	journal      *recorder
	msgs         *i18n.Messages
}

// testConfig keeps swaps from firing on their own; tests trigger them.
func testConfig() Config {
	return Config{
		GraceDelay:     time.Hour,
		SettleDelay:    5 * time.Millisecond,
		JoinRetryDelay: 10 * time.Millisecond,
		SwapUnit:       time.Hour,
	}
}

type harnessOption func(*harness, *Deps)

func newHarness(t *testing.T, cfg Config, opts ...harnessOption) *harness {
	t.Helper()

	bundle, err := i18n.Load()
	if err != nil {
		t.Fatalf("load messages: %v", err)
	}
	msgs, err := i18n.New(bundle, "en-US")
	if err != nil {
		t.Fatalf("new messages: %v", err)
	}
	rng, err := random.NewLocked(rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("rng: %v", err)
	}

	h := &harness{
		dir:          newDirectory(),
		bc:           newBroadcaster(),
		roles:        &roles{},
		world:        &flatWorld{},
		reservations: &reservations{},
		journal:      &recorder{},
		msgs:         msgs,
	}
	h.tp = newTeleporter(h.dir)
	h.cache, err = locationcache.New(locationcache.Config{Target: 4, MaxDistance: 200}, h.world, h.reservations, rng, nil)
	if err != nil {
		t.Fatalf("new cache: %v", err)
	}

	deps := Deps{
		Directory:   h.dir,
		Teleporter:  h.tp,
		Broadcaster: h.bc,
		Roles:       h.roles,
		Locations:   h.cache,
		World:       h.world,
		Messages:    msgs,
		Journal:     h.journal,
		Rand:        rng,
	}
	for _, opt := range opts {
		opt(h, &deps)
	}
	h.ctrl, err = New(cfg, deps)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = h.ctrl.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-h.ctrl.Done()
		h.cache.Shutdown()
	})
	return h
}

func (h *harness) snapshot(t *testing.T) Snapshot {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s, err := h.ctrl.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	return s
}

func (h *harness) waitFor(t *testing.T, what string, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		s := h.snapshot(t)
		if cond(s) {
			return s
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s; last snapshot %+v", what, s)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (h *harness) start(t *testing.T) Snapshot {
	t.Helper()
	want := len(h.dir.Online())
	if err := h.ctrl.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	return h.waitFor(t, "all contestants placed", func(s Snapshot) bool {
		return s.State == StateActive && len(s.Contestants) == want
	})
}

func eventually(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func containsID(ids []Identity, id Identity) bool {
	return slices.Contains(ids, id)
}

func containsText(lines []string, part string) bool {
	return slices.ContainsFunc(lines, func(l string) bool { return strings.Contains(l, part) })
}
