package game

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Task is a scheduled callback. Tasks are idempotent and re-entrant: a
// mine-reveal deadline re-checks the state machine before transitioning,
// so a late or duplicate fire is harmless.
type Task func(now time.Time)

type scheduledTask struct {
	id string
	at time.Time
	fn Task
}

// Scheduler is the per-session timer: mine-reveal deadlines and lockout
// expiries. A coalesced tick loop fires due tasks in deadline order;
// 1 s granularity is plenty for this game.
type Scheduler struct {
	tick time.Duration

	mu    sync.Mutex
	tasks map[string]*scheduledTask

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewScheduler creates a stopped scheduler; call Run to start ticking.
func NewScheduler(tick time.Duration) *Scheduler {
	if tick <= 0 {
		tick = time.Second
	}
	return &Scheduler{
		tick:   tick,
		tasks:  make(map[string]*scheduledTask),
		stopCh: make(chan struct{}),
	}
}

// Run blocks, firing due tasks every tick, until the context is cancelled
// or Stop is called.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case now := <-ticker.C:
			s.fireDue(now)
		}
	}
}

// Stop halts the tick loop and drops all pending tasks.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.mu.Lock()
	s.tasks = make(map[string]*scheduledTask)
	s.mu.Unlock()
}

// Schedule registers fn to fire at the deadline. Scheduling an id that
// already exists replaces it.
func (s *Scheduler) Schedule(id string, at time.Time, fn Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[id] = &scheduledTask{id: id, at: at, fn: fn}
	slog.Debug("task scheduled", "id", id, "at", at.Format(time.RFC3339))
}

// Cancel removes a pending task. Cancelling an unknown id is a no-op.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
}

// PendingCount returns the number of scheduled tasks.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// fireDue runs every task whose deadline has passed, in deadline order.
// Tasks run outside the scheduler lock so they may reschedule freely.
func (s *Scheduler) fireDue(now time.Time) {
	s.mu.Lock()
	var due []*scheduledTask
	for id, t := range s.tasks {
		if !now.Before(t.at) {
			due = append(due, t)
			delete(s.tasks, id)
		}
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.fn(now)
	}
}
