package schedule

import (
	"sync"
	"time"
)

// Group tracks scheduled work so it can be cancelled together. The zero
// value is not usable; call NewGroup.
type Group struct {
	mu     sync.Mutex
	tasks  map[*task]struct{}
	closed bool
}

type task struct {
	stop func()
}

// NewGroup returns an empty group.
func NewGroup() *Group {
	return &Group{tasks: make(map[*task]struct{})}
}

// After runs fn once after d unless the group is cancelled first.
func (g *Group) After(d time.Duration, fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	t := &task{}
	timer := time.AfterFunc(d, func() {
		if !g.remove(t) {
			return
		}
		fn()
	})
	t.stop = func() { timer.Stop() }
	g.tasks[t] = struct{}{}
}

// Every runs fn each interval until the group is cancelled. The first run
// happens immediately.
func (g *Group) Every(interval time.Duration, fn func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return
	}
	done := make(chan struct{})
	t := &task{stop: sync.OnceFunc(func() { close(done) })}
	g.tasks[t] = struct{}{}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			default:
			}
			fn()
			select {
			case <-done:
				return
			case <-ticker.C:
			}
		}
	}()
}

// Cancel stops every outstanding task. The group stays usable.
func (g *Group) Cancel() {
	g.mu.Lock()
	tasks := g.tasks
	g.tasks = make(map[*task]struct{})
	g.mu.Unlock()
	for t := range tasks {
		t.stop()
	}
}

// Close cancels every task and rejects new ones.
func (g *Group) Close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	g.Cancel()
}

// Len returns the number of outstanding tasks.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tasks)
}

func (g *Group) remove(t *task) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.tasks[t]; !ok {
		return false
	}
	delete(g.tasks, t)
	return true
}
