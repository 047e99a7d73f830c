package sched

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gridsens/gridsens/internal/errors"
	"github.com/gridsens/gridsens/internal/plugin"
)

// task is one panel's isolated poll loop. The loop goroutine owns cadence
// and pause state; each fetch runs in its own goroutine so the loop keeps
// observing ticks (and counting skips) while a slow fetch is in flight.
type task struct {
	id       string
	src      plugin.Source
	interval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	wake   chan struct{}

	paused   atomic.Bool // individual pause, survives ResumeAll
	halted   atomic.Bool // permanent failure latch, cleared only by Replace
	inFlight atomic.Bool

	fetches sync.WaitGroup
	sched   *Scheduler
}

func (s *Scheduler) newTask(id string, src plugin.Source, interval time.Duration) *task {
	if interval <= 0 {
		interval = s.defaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &task{
		id:       id,
		src:      src,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
		wake:     make(chan struct{}, 1),
		sched:    s,
	}
}

// run polls immediately, then on every tick. A wake signal (resume) fetches
// right away and restarts the cadence from now.
func (t *task) run() {
	defer close(t.done)

	if !t.suspended() {
		t.begin()
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return

		case <-ticker.C:
			if t.suspended() {
				continue
			}
			if t.inFlight.Load() {
				t.sched.noteSkip(t.id)
				continue
			}
			t.begin()

		case <-t.wake:
			if t.suspended() {
				continue
			}
			ticker.Reset(t.interval)
			if !t.inFlight.Load() {
				t.begin()
			}
		}
	}
}

func (t *task) suspended() bool {
	return t.paused.Load() || t.halted.Load() || t.sched.allPaused()
}

// begin launches one fetch off the loop goroutine. inFlight is set here, not
// in poll, so the loop never races a just-started fetch.
func (t *task) begin() {
	t.inFlight.Store(true)
	t.fetches.Add(1)
	go t.poll()
}

func (t *task) poll() {
	defer t.fetches.Done()
	defer t.inFlight.Store(false)

	start := time.Now()
	ctx, cancel := context.WithTimeout(t.ctx, t.sched.fetchTimeout)
	defer cancel()

	type result struct {
		v   plugin.Value
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := t.src.Fetch(ctx)
		ch <- result{v: v, err: err}
	}()

	var upd Update
	outcome := outcomeOK
	select {
	case r := <-ch:
		upd = Update{PanelID: t.id, Value: r.v, Err: r.err, At: time.Now()}
		if r.err != nil {
			if errors.IsCode(r.err, errors.ErrFetchPermanent) {
				outcome = outcomePermanent
			} else {
				outcome = outcomeTransient
			}
		}

	case <-ctx.Done():
		if t.ctx.Err() != nil {
			// The task was cancelled; deliver nothing for a removed panel.
			return
		}
		// The fetch overran its budget. Abandon it (the inner goroutine
		// drains into the buffered channel whenever it finishes) and record
		// a transient failure; the next tick fetches fresh.
		outcome = outcomeTimeout
		upd = Update{
			PanelID: t.id,
			Err: errors.New(errors.ErrFetchTransient,
				fmt.Sprintf("Fetch timed out after %s", t.sched.fetchTimeout),
				"The next poll will retry"),
			At: time.Now(),
		}
	}

	if outcome == outcomePermanent {
		t.halted.Store(true)
	}
	t.sched.record(t, upd, time.Since(start), outcome)
}
