package sched

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridsens/gridsens/internal/errors"
	"github.com/gridsens/gridsens/internal/logger"
	"github.com/gridsens/gridsens/internal/plugin"
)

// fakeSource scripts Fetch behavior per call number (1-based).
type fakeSource struct {
	mu    sync.Mutex
	calls int
	fetch func(ctx context.Context, call int) (plugin.Value, error)
}

func (f *fakeSource) Fetch(ctx context.Context) (plugin.Value, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	fn := f.fetch
	f.mu.Unlock()
	return fn(ctx, n)
}

func (f *fakeSource) Shape() plugin.Shape { return plugin.ShapePercent }
func (f *fakeSource) Close() error        { return nil }

func (f *fakeSource) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func constSource(v float64) *fakeSource {
	return &fakeSource{fetch: func(ctx context.Context, call int) (plugin.Value, error) {
		return plugin.ScalarValue(v, "%"), nil
	}}
}

func countingSource() *fakeSource {
	return &fakeSource{fetch: func(ctx context.Context, call int) (plugin.Value, error) {
		return plugin.ScalarValue(float64(call), ""), nil
	}}
}

func newTestScheduler(interval, timeout time.Duration) *Scheduler {
	return New(Options{Interval: interval, FetchTimeout: timeout, Logger: logger.Noop()})
}

func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond, msg)
}

func TestRegister_FetchesImmediately(t *testing.T) {
	// An hour-long interval proves the first fetch does not wait for a tick
	s := newTestScheduler(time.Hour, time.Second)
	defer s.Stop()

	src := constSource(42)
	s.Register("p1", src, 0)

	eventually(t, func() bool { return src.Calls() == 1 }, "first fetch should be immediate")

	// The result is announced and drainable
	select {
	case <-s.Updates():
	case <-time.After(2 * time.Second):
		t.Fatal("no update notification")
	}

	updates := s.Drain()
	require.Len(t, updates, 1)
	assert.Equal(t, "p1", updates[0].PanelID)
	assert.NoError(t, updates[0].Err)
	assert.Equal(t, 42.0, updates[0].Value.Scalar)
}

func TestPollCadence(t *testing.T) {
	s := newTestScheduler(15*time.Millisecond, time.Second)
	defer s.Stop()

	src := constSource(1)
	s.Register("p1", src, 0)

	eventually(t, func() bool { return src.Calls() >= 4 }, "task should keep polling on its interval")
}

func TestPerPanelIntervalOverride(t *testing.T) {
	s := newTestScheduler(time.Hour, time.Second)
	defer s.Stop()

	fast := constSource(1)
	slow := constSource(2)
	s.Register("fast", fast, 15*time.Millisecond)
	s.Register("slow", slow, 0)

	eventually(t, func() bool { return slow.Calls() == 1 }, "default-interval panel fetches once immediately")
	eventually(t, func() bool { return fast.Calls() >= 4 }, "override interval should drive cadence")

	// The default-interval panel got its immediate fetch and nothing more
	assert.Equal(t, 1, slow.Calls())
}

func TestDrain_CoalescesToLatest(t *testing.T) {
	s := newTestScheduler(10*time.Millisecond, time.Second)
	defer s.Stop()

	src := countingSource()
	s.Register("p1", src, 0)

	// Let several results pile up without draining
	eventually(t, func() bool { return src.Calls() >= 5 }, "several fetches should complete")

	updates := s.Drain()
	require.Len(t, updates, 1, "a burst must collapse to one slot per panel")
	assert.Equal(t, "p1", updates[0].PanelID)

	// The slot holds the newest delivered result, never an older one
	assert.GreaterOrEqual(t, updates[0].Value.Scalar, 4.0)
}

func TestDrain_SortedByPanelID(t *testing.T) {
	s := newTestScheduler(time.Hour, time.Second)
	defer s.Stop()

	s.Register("zeta", constSource(1), 0)
	s.Register("alpha", constSource(2), 0)
	s.Register("mid", constSource(3), 0)

	eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.pending) == 3
	}, "all three results should be pending")

	updates := s.Drain()
	require.Len(t, updates, 3)
	assert.Equal(t, "alpha", updates[0].PanelID)
	assert.Equal(t, "mid", updates[1].PanelID)
	assert.Equal(t, "zeta", updates[2].PanelID)

	// Drain empties the inbox
	assert.Nil(t, s.Drain())
}

func TestSkipTick_WhileFetchInFlight(t *testing.T) {
	s := newTestScheduler(15*time.Millisecond, time.Second)
	defer s.Stop()

	release := make(chan struct{})
	src := &fakeSource{fetch: func(ctx context.Context, call int) (plugin.Value, error) {
		if call == 1 {
			select {
			case <-release:
			case <-ctx.Done():
				return plugin.Value{}, ctx.Err()
			}
		}
		return plugin.ScalarValue(1, "%"), nil
	}}
	s.Register("p1", src, 0)

	// While the first fetch blocks, ticks keep firing and are skipped
	// rather than stacking a second fetch
	eventually(t, func() bool { return s.Stats().Skipped >= 2 }, "ticks should be skipped during a slow fetch")
	assert.Equal(t, 1, src.Calls(), "no overlapping fetch may start")

	// Once the fetch completes, polling resumes on the next tick
	close(release)
	eventually(t, func() bool { return src.Calls() >= 2 }, "polling should resume after the slow fetch")
}

func TestFetchTimeout_TransientThenFreshFetch(t *testing.T) {
	s := newTestScheduler(40*time.Millisecond, 20*time.Millisecond)
	defer s.Stop()

	// The first fetch ignores its context entirely and overruns the budget;
	// later fetches return promptly
	src := &fakeSource{fetch: func(ctx context.Context, call int) (plugin.Value, error) {
		if call == 1 {
			time.Sleep(300 * time.Millisecond)
			return plugin.ScalarValue(-1, "%"), nil
		}
		return plugin.ScalarValue(float64(call), "%"), nil
	}}
	s.Register("p1", src, 0)

	// The overrun is reported as a transient failure
	var timeoutErr error
	eventually(t, func() bool {
		for _, u := range s.Drain() {
			if u.Err != nil {
				timeoutErr = u.Err
				return true
			}
		}
		return false
	}, "the timed-out fetch should deliver a transient error")
	assert.True(t, errors.IsCode(timeoutErr, errors.ErrFetchTransient))

	// The abandoned fetch does not block the next tick: a fresh fetch runs
	// and its value (not the abandoned fetch's -1) is delivered
	var recovered plugin.Value
	eventually(t, func() bool {
		for _, u := range s.Drain() {
			if u.Err == nil {
				recovered = u.Value
				return true
			}
		}
		return false
	}, "a fresh fetch should succeed after the timeout")
	assert.Greater(t, recovered.Scalar, 0.0, "the abandoned fetch's value must never surface")

	// Outcome metrics recorded the timeout
	assert.GreaterOrEqual(t, testutil.ToFloat64(s.m.Fetches.WithLabelValues(outcomeTimeout)), 1.0)
}

func TestPermanentError_StopsPolling(t *testing.T) {
	s := newTestScheduler(15*time.Millisecond, time.Second)
	defer s.Stop()

	src := &fakeSource{fetch: func(ctx context.Context, call int) (plugin.Value, error) {
		return plugin.Value{}, errors.New(errors.ErrFetchPermanent, "device is gone", "")
	}}
	s.Register("p1", src, 0)

	eventually(t, func() bool {
		for _, u := range s.Drain() {
			if errors.IsCode(u.Err, errors.ErrFetchPermanent) {
				return true
			}
		}
		return false
	}, "the permanent error should be delivered")

	// The task is halted: no retries on later ticks
	calls := src.Calls()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, calls, src.Calls(), "a permanently failed source must not be re-polled")

	// Resume does not lift the latch
	s.Resume("p1")
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, calls, src.Calls())

	// Replacing the source does: the fresh task polls immediately
	fresh := constSource(7)
	s.Replace("p1", fresh, 0)
	eventually(t, func() bool { return fresh.Calls() >= 1 }, "replace should restart polling")
}

func TestFailureIsolation(t *testing.T) {
	s := newTestScheduler(15*time.Millisecond, 30*time.Millisecond)
	defer s.Stop()

	// One panel's source always fails; another hangs past its timeout
	failing := &fakeSource{fetch: func(ctx context.Context, call int) (plugin.Value, error) {
		return plugin.Value{}, errors.New(errors.ErrFetchTransient, "flaky", "")
	}}
	hanging := &fakeSource{fetch: func(ctx context.Context, call int) (plugin.Value, error) {
		<-ctx.Done()
		return plugin.Value{}, ctx.Err()
	}}
	healthy := countingSource()

	s.Register("failing", failing, 0)
	s.Register("hanging", hanging, 0)
	s.Register("healthy", healthy, 0)

	// The healthy panel keeps getting fresh values regardless
	var sawHealthy float64
	eventually(t, func() bool {
		for _, u := range s.Drain() {
			if u.PanelID == "healthy" && u.Err == nil {
				sawHealthy = u.Value.Scalar
			}
		}
		return sawHealthy >= 4
	}, "healthy panel must keep updating while others fail")

	// And the failing one keeps retrying (transient errors do not halt)
	assert.GreaterOrEqual(t, failing.Calls(), 3)
}

func TestPauseAndResume(t *testing.T) {
	s := newTestScheduler(15*time.Millisecond, time.Second)
	defer s.Stop()

	src := constSource(1)
	s.Register("p1", src, 0)

	eventually(t, func() bool { return src.Calls() >= 2 }, "task should be polling")

	s.Pause("p1")
	eventually(t, func() bool { return s.Stats().InFlight == 0 }, "in-flight fetch should finish")

	// No new fetches while paused
	calls := src.Calls()
	time.Sleep(90 * time.Millisecond)
	assert.Equal(t, calls, src.Calls(), "paused task must not poll")

	// Resume fetches immediately, not at the next tick
	s.Resume("p1")
	eventually(t, func() bool { return src.Calls() > calls }, "resume should fetch right away")
}

func TestPauseAll_PreservesIndividualPause(t *testing.T) {
	s := newTestScheduler(15*time.Millisecond, time.Second)
	defer s.Stop()

	a := constSource(1)
	b := constSource(2)
	s.Register("a", a, 0)
	s.Register("b", b, 0)

	eventually(t, func() bool { return a.Calls() >= 1 && b.Calls() >= 1 }, "both tasks should start")

	// a is paused on its own, then the window blurs
	s.Pause("a")
	s.PauseAll()
	eventually(t, func() bool { return s.Stats().InFlight == 0 }, "fetches should settle")

	aCalls, bCalls := a.Calls(), b.Calls()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, aCalls, a.Calls())
	assert.Equal(t, bCalls, b.Calls())

	// Focus returns: b resumes, a stays individually paused
	s.ResumeAll()
	eventually(t, func() bool { return b.Calls() > bCalls }, "b should resume with the window")
	assert.Equal(t, aCalls, a.Calls(), "individually paused panel must stay paused")
	assert.False(t, s.Stats().Paused)
}

func TestRemove_NothingDeliveredAfter(t *testing.T) {
	s := newTestScheduler(10*time.Millisecond, time.Second)
	defer s.Stop()

	src := countingSource()
	s.Register("p1", src, 0)

	eventually(t, func() bool { return src.Calls() >= 2 }, "task should be polling")

	s.Remove("p1")

	// Whatever was pending is purged with the task
	assert.Nil(t, s.Drain())

	// And nothing arrives later: the source is never polled again
	calls := src.Calls()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, calls, src.Calls())
	assert.Nil(t, s.Drain())
	assert.Equal(t, 0, s.Stats().ActiveTasks)
}

func TestRemove_WaitsForInFlightFetch(t *testing.T) {
	s := newTestScheduler(10*time.Millisecond, time.Minute)
	defer s.Stop()

	entered := make(chan struct{}, 1)
	src := &fakeSource{fetch: func(ctx context.Context, call int) (plugin.Value, error) {
		entered <- struct{}{}
		<-ctx.Done()
		return plugin.Value{}, ctx.Err()
	}}
	s.Register("p1", src, 0)

	// Wait until the fetch is genuinely in flight, then remove
	<-entered
	s.Remove("p1")

	// The cancelled fetch's result must not be delivered
	assert.Nil(t, s.Drain())
	time.Sleep(30 * time.Millisecond)
	assert.Nil(t, s.Drain())
}

func TestReplace_DiscardsStaleResult(t *testing.T) {
	s := newTestScheduler(time.Hour, time.Minute)
	defer s.Stop()

	// The old source ignores cancellation and eventually returns a stale
	// value; the new source answers immediately
	entered := make(chan struct{}, 1)
	stale := &fakeSource{fetch: func(ctx context.Context, call int) (plugin.Value, error) {
		entered <- struct{}{}
		time.Sleep(50 * time.Millisecond)
		return plugin.ScalarValue(-99, "%"), nil
	}}
	s.Register("p1", stale, 0)
	<-entered

	fresh := constSource(55)
	s.Replace("p1", fresh, 0)

	eventually(t, func() bool { return fresh.Calls() >= 1 }, "replacement should poll immediately")

	// Only the new source's value may ever surface
	deadline := time.Now().Add(150 * time.Millisecond)
	for time.Now().Before(deadline) {
		for _, u := range s.Drain() {
			require.NoError(t, u.Err)
			assert.Equal(t, 55.0, u.Value.Scalar, "stale result from the replaced source leaked through")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStop(t *testing.T) {
	s := newTestScheduler(10*time.Millisecond, time.Second)

	a := constSource(1)
	b := constSource(2)
	s.Register("a", a, 0)
	s.Register("b", b, 0)

	eventually(t, func() bool { return a.Calls() >= 1 && b.Calls() >= 1 }, "tasks should start")

	s.Stop()

	// All tasks wound down, inbox cleared, registrations refused
	aCalls, bCalls := a.Calls(), b.Calls()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, aCalls, a.Calls())
	assert.Equal(t, bCalls, b.Calls())
	assert.Nil(t, s.Drain())

	s.Register("c", constSource(3), 0)
	assert.Equal(t, 0, s.Stats().ActiveTasks)

	// Stop is idempotent
	s.Stop()
}

func TestStatsAndMetrics(t *testing.T) {
	s := newTestScheduler(time.Hour, time.Second)
	defer s.Stop()

	s.Register("ok", constSource(1), 0)
	s.Register("bad", &fakeSource{fetch: func(ctx context.Context, call int) (plugin.Value, error) {
		return plugin.Value{}, errors.New(errors.ErrFetchTransient, "nope", "")
	}}, 0)

	eventually(t, func() bool {
		st := s.Stats()
		return st.Fetches >= 2 && st.Errors >= 1
	}, "stats should count both fetches")

	st := s.Stats()
	assert.Equal(t, 2, st.ActiveTasks)
	assert.False(t, st.Paused)

	// Prometheus instruments mirror the counters on the private registry
	assert.GreaterOrEqual(t, testutil.ToFloat64(s.m.Fetches.WithLabelValues(outcomeOK)), 1.0)
	assert.GreaterOrEqual(t, testutil.ToFloat64(s.m.Fetches.WithLabelValues(outcomeTransient)), 1.0)
	assert.Equal(t, 2.0, testutil.ToFloat64(s.m.ActiveTasks))
	require.NotNil(t, s.Gatherer())

	families, err := s.Gatherer().Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "gridsens_fetches_total")
	assert.Contains(t, names, "gridsens_fetch_duration_seconds")
}
