// Package sched polls panel sources on isolated per-panel tasks and delivers
// results to the UI through a coalescing inbox. One panel's slow or failing
// source never affects another's cadence: every task has its own goroutine,
// its own cancellation, and a bounded fetch timeout. Results are held one
// slot per panel; a burst between UI drains collapses to the latest value.
package sched

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gridsens/gridsens/internal/logger"
	"github.com/gridsens/gridsens/internal/plugin"
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultInterval     = 2 * time.Second
	DefaultFetchTimeout = 5 * time.Second
)

// Update is one delivered poll result. Err is nil on success; on failure
// Value is the zero value and Err carries a fetch error.
type Update struct {
	PanelID string
	Value   plugin.Value
	Err     error
	At      time.Time
}

// Options configures a scheduler.
type Options struct {
	// Interval is the default poll cadence for tasks registered without one.
	Interval time.Duration

	// FetchTimeout bounds every fetch; an overrun is abandoned and recorded
	// as a transient failure.
	FetchTimeout time.Duration

	Logger logger.Logger
}

// Stats is a point-in-time snapshot for the status bar.
type Stats struct {
	ActiveTasks int
	InFlight    int
	Paused      bool
	Fetches     uint64
	Errors      uint64
	Skipped     uint64
}

// Scheduler owns all poll tasks. Register/Replace/Remove are called from the
// UI goroutine; Drain must be called from the UI goroutine; everything else
// is safe from any goroutine.
type Scheduler struct {
	defaultInterval time.Duration
	fetchTimeout    time.Duration
	log             logger.Logger
	m               *metrics

	mu      sync.Mutex
	tasks   map[string]*task
	pending map[string]Update
	stopped bool

	pausedAll atomic.Bool
	notify    chan struct{}

	fetchCount atomic.Uint64
	errCount   atomic.Uint64
	skipCount  atomic.Uint64
}

// New creates a scheduler. Zero option fields fall back to the defaults.
func New(opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logger.Noop()
	}
	return &Scheduler{
		defaultInterval: opts.Interval,
		fetchTimeout:    opts.FetchTimeout,
		log:             opts.Logger,
		m:               newMetrics(),
		tasks:           make(map[string]*task),
		pending:         make(map[string]Update),
		notify:          make(chan struct{}, 1),
	}
}

// Register starts a poll task for a panel. interval <= 0 uses the default.
// The task fetches immediately, then on its cadence. Registering an id that
// already has a task replaces it.
func (s *Scheduler) Register(id string, src plugin.Source, interval time.Duration) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	old := s.tasks[id]
	if old != nil {
		delete(s.tasks, id)
	}
	s.mu.Unlock()

	// Wind the old task down completely before the new one exists, so a
	// stale result can neither deliver nor survive the purge.
	if old != nil {
		s.windDown(old)
		s.purge(id)
	} else {
		s.m.ActiveTasks.Inc()
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	t := s.newTask(id, src, interval)
	s.tasks[id] = t
	s.mu.Unlock()

	s.log.Debug("task %s registered (interval %s)", id, t.interval)
	go t.run()
}

// Replace swaps a panel's task for one with a new source or cadence. The old
// task fully winds down first and its undelivered update is discarded, so a
// stale value from the old source can never arrive after the swap. Replacing
// also clears a permanent-failure latch: the fresh task polls immediately.
func (s *Scheduler) Replace(id string, src plugin.Source, interval time.Duration) {
	s.Register(id, src, interval)
}

// Remove cancels a panel's task, waits for it to wind down, and purges any
// undelivered update. When Remove returns, nothing more will ever be
// delivered for this id.
func (s *Scheduler) Remove(id string) {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if ok {
		delete(s.tasks, id)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	s.windDown(t)
	s.purge(id)
	s.m.ActiveTasks.Dec()
	s.log.Debug("task %s removed", id)
}

// windDown cancels a task and waits for its loop and any in-flight fetch.
func (s *Scheduler) windDown(t *task) {
	t.cancel()
	<-t.done
	t.fetches.Wait()
}

func (s *Scheduler) purge(id string) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}

// Pause stops one panel's polling. An in-flight fetch still completes and
// delivers; no new fetch starts until Resume.
func (s *Scheduler) Pause(id string) {
	s.mu.Lock()
	t, ok := s.tasks[id]
	s.mu.Unlock()
	if ok {
		t.paused.Store(true)
	}
}

// Resume restarts one panel's polling with an immediate fetch.
func (s *Scheduler) Resume(id string) {
	s.mu.Lock()
	t, ok := s.tasks[id]
	s.mu.Unlock()
	if ok {
		t.paused.Store(false)
		t.wakeUp()
	}
}

// PauseAll suspends every task, used when the terminal loses focus.
// Individually paused panels stay paused across a PauseAll/ResumeAll pair.
func (s *Scheduler) PauseAll() {
	s.pausedAll.Store(true)
}

// ResumeAll lifts a PauseAll and fetches immediately on every task that is
// not individually paused.
func (s *Scheduler) ResumeAll() {
	s.pausedAll.Store(false)
	s.mu.Lock()
	tasks := make([]*task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	s.mu.Unlock()
	for _, t := range tasks {
		if !t.paused.Load() {
			t.wakeUp()
		}
	}
}

func (t *task) wakeUp() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) allPaused() bool {
	return s.pausedAll.Load()
}

// Updates signals that at least one result is waiting. The channel has a
// one-slot buffer; receive from it, then Drain.
func (s *Scheduler) Updates() <-chan struct{} {
	return s.notify
}

// Drain returns and clears all pending results, at most one per panel (the
// latest), sorted by panel id for deterministic application.
func (s *Scheduler) Drain() []Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil
	}
	out := make([]Update, 0, len(s.pending))
	for _, u := range s.pending {
		out = append(out, u)
	}
	for id := range s.pending {
		delete(s.pending, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PanelID < out[j].PanelID })
	return out
}

// record files a completed fetch into the inbox. Results from cancelled or
// replaced tasks are dropped: only the task currently registered under the
// id may deliver.
func (s *Scheduler) record(t *task, upd Update, dur time.Duration, outcome string) {
	s.mu.Lock()
	current, ok := s.tasks[t.id]
	if !ok || current != t || s.stopped {
		s.mu.Unlock()
		return
	}
	s.pending[t.id] = upd
	s.mu.Unlock()

	s.fetchCount.Add(1)
	if upd.Err != nil {
		s.errCount.Add(1)
		s.log.Debug("task %s fetch failed (%s): %v", t.id, outcome, upd.Err)
	}
	s.m.Fetches.WithLabelValues(outcome).Inc()
	s.m.FetchDuration.Observe(dur.Seconds())

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Scheduler) noteSkip(id string) {
	s.skipCount.Add(1)
	s.m.TicksSkipped.Inc()
	s.log.Debug("task %s tick skipped, fetch still in flight", id)
}

// Stats returns a snapshot of scheduler activity.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	active := len(s.tasks)
	inFlight := 0
	for _, t := range s.tasks {
		if t.inFlight.Load() {
			inFlight++
		}
	}
	s.mu.Unlock()

	return Stats{
		ActiveTasks: active,
		InFlight:    inFlight,
		Paused:      s.pausedAll.Load(),
		Fetches:     s.fetchCount.Load(),
		Errors:      s.errCount.Load(),
		Skipped:     s.skipCount.Load(),
	}
}

// Gatherer exposes the scheduler's Prometheus registry for scraping or
// debug dumps.
func (s *Scheduler) Gatherer() prometheus.Gatherer {
	return s.m.registry
}

// Stop cancels every task and waits for all of them to wind down. The
// scheduler accepts no registrations afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	tasks := make([]*task, 0, len(s.tasks))
	for _, t := range s.tasks {
		tasks = append(tasks, t)
	}
	s.tasks = make(map[string]*task)
	s.mu.Unlock()

	for _, t := range tasks {
		t.cancel()
	}
	for _, t := range tasks {
		<-t.done
		t.fetches.Wait()
	}

	s.mu.Lock()
	s.pending = make(map[string]Update)
	s.mu.Unlock()
	s.m.ActiveTasks.Set(0)
}
