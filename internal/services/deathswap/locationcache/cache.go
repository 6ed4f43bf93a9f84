package locationcache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/louisbranch/deathswap/internal/platform/random"
	"github.com/louisbranch/deathswap/internal/services/deathswap/world"
)

var (
	// ErrSearchExhausted reports that no safe column was found within the
	// attempt cap.
	ErrSearchExhausted = errors.New("location search exhausted")
	// ErrClosed reports use of a cache after Shutdown.
	ErrClosed = errors.New("location cache closed")
)

// Cache is a pool of validated locations filled off the caller's path.
type Cache struct {
	cfg          Config
	query        world.Query
	reservations world.Reservations
	rng          random.Source
	onReady      func()

	mu              sync.Mutex
	pool            []*Location
	closed          bool
	readyEmitted    bool
	emptyWarned     bool
	exhaustedWarned bool
	cancel          context.CancelFunc
	done            chan struct{}

	seq       atomic.Uint64
	searching atomic.Bool
	searches  sync.WaitGroup
}

// New builds a cache. rng must be safe for concurrent use; a nil rng is
// replaced by a crypto-seeded locked generator. onReady, when set, is called
// each time the pool reaches its target after having been below it.
func New(cfg Config, query world.Query, reservations world.Reservations, rng random.Source, onReady func()) (*Cache, error) {
	if query == nil {
		return nil, errors.New("location cache: world query is required")
	}
	if reservations == nil {
		return nil, errors.New("location cache: reservations are required")
	}
	if rng == nil {
		locked, err := random.NewLocked(nil)
		if err != nil {
			return nil, fmt.Errorf("location cache: %w", err)
		}
		rng = locked
	}
	return &Cache{
		cfg:          cfg.normalized(),
		query:        query,
		reservations: reservations,
		rng:          rng,
		onReady:      onReady,
	}, nil
}

// Start runs the population cycle every Interval until ctx ends or the
// cache is shut down. The first cycle runs immediately.
func (c *Cache) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.cancel != nil {
		return errors.New("location cache: already started")
	}
	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.cancel = cancel
	c.done = done
	go func() {
		defer close(done)
		c.runPopulateLoop(loopCtx)
	}()
	return nil
}

func (c *Cache) runPopulateLoop(ctx context.Context) {
	c.Populate(ctx)

	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Populate(ctx)
		}
	}
}

// Populate runs one population cycle. When the pool is full it only emits
// the ready notice on the first full observation; otherwise it starts a
// background search unless one is already running.
func (c *Cache) Populate(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if len(c.pool) >= c.cfg.Target {
		emit := !c.readyEmitted
		c.readyEmitted = true
		c.mu.Unlock()
		if emit && c.onReady != nil {
			c.onReady()
		}
		return
	}
	if !c.searching.CompareAndSwap(false, true) {
		c.mu.Unlock()
		return
	}
	c.searches.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.searches.Done()
		defer c.searching.Store(false)
		c.searchOnce(ctx)
	}()
}

func (c *Cache) searchOnce(ctx context.Context) {
	loc, ok := c.find(ctx, c.cfg.SearchAttempts)
	if !ok {
		c.mu.Lock()
		warn := !c.exhaustedWarned && ctx.Err() == nil
		if warn {
			c.exhaustedWarned = true
		}
		c.mu.Unlock()
		if warn {
			log.Printf("location cache: no safe location after %d attempts, retrying next cycle", c.cfg.SearchAttempts)
		}
		return
	}
	c.push(loc)
}

func (c *Cache) push(loc *Location) {
	c.mu.Lock()
	if c.closed || len(c.pool) >= c.cfg.Target {
		c.mu.Unlock()
		loc.Release()
		return
	}
	c.pool = append(c.pool, loc)
	c.exhaustedWarned = false
	c.emptyWarned = false
	c.mu.Unlock()
}

// Take removes one location from the pool and hands its reservation to the
// caller, who must Release it once the location is no longer needed. An
// empty pool falls back to a synchronous search.
func (c *Cache) Take(ctx context.Context) (*Location, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if n := len(c.pool); n > 0 {
		loc := c.pool[n-1]
		c.pool[n-1] = nil
		c.pool = c.pool[:n-1]
		c.readyEmitted = false
		c.mu.Unlock()
		return loc, nil
	}
	warn := !c.emptyWarned
	c.emptyWarned = true
	c.readyEmitted = false
	c.mu.Unlock()

	if warn {
		log.Printf("location cache: empty, falling back to a synchronous search")
	}
	loc, ok := c.find(ctx, c.cfg.FallbackAttempts)
	if !ok {
		return nil, fmt.Errorf("take location after %d attempts: %w", c.cfg.FallbackAttempts, ErrSearchExhausted)
	}
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		loc.Release()
		return nil, ErrClosed
	}
	return loc, nil
}

func (c *Cache) find(ctx context.Context, attempts int) (*Location, bool) {
	span := 2*c.cfg.MaxDistance + 1
	for i := 0; i < attempts; i++ {
		if ctx.Err() != nil {
			return nil, false
		}
		x := c.rng.Intn(span) - c.cfg.MaxDistance
		z := c.rng.Intn(span) - c.cfg.MaxDistance
		coord, ok := world.SafeColumn(c.query, x, z)
		if !ok {
			continue
		}
		owner := fmt.Sprintf("%s#%d", c.cfg.Owner, c.seq.Add(1))
		return newLocation(coord, owner, c.reservations), true
	}
	return nil, false
}

// Shutdown stops the population loop, waits for an in-flight search and
// releases every pooled reservation. Locations already handed out by Take
// stay with their callers.
func (c *Cache) Shutdown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	pool := c.pool
	c.pool = nil
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	c.searches.Wait()
	for _, loc := range pool {
		loc.Release()
	}
}

// Len returns the number of pooled locations.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pool)
}

// Target returns the pool capacity.
func (c *Cache) Target() int {
	return c.cfg.Target
}
