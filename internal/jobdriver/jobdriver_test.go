package jobdriver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cronforge/chronod/internal/schedule"
)

func mustSchedule(t *testing.T, expr string, opts schedule.Options) *schedule.Schedule {
	t.Helper()
	sched, err := schedule.Compile(expr, opts)
	require.NoError(t, err)
	return sched
}

// recordingCallback counts invocations and can be told to fail or sleep.
type recordingCallback struct {
	mu    sync.Mutex
	calls int
	delay time.Duration
	fail  bool
}

func (c *recordingCallback) callback() Callback {
	return func(ctx context.Context, runID string, scheduledFor time.Time) error {
		c.mu.Lock()
		c.calls++
		delay := c.delay
		fail := c.fail
		c.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		if fail {
			return errors.New("callback failed")
		}
		return nil
	}
}

func (c *recordingCallback) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestTrigger_InvokesCallbackImmediately(t *testing.T) {
	cb := &recordingCallback{}
	sched := mustSchedule(t, "0 0 0 1 1 *", schedule.Options{}) // a year away; Trigger must not wait for it
	d := New(Config{Name: "job", Schedule: sched, Callback: cb.callback()})
	defer d.Stop()

	runID := d.Trigger()
	assert.NotEmpty(t, runID)

	require.Eventually(t, func() bool { return cb.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestPauseResume_SuppressesThenRestoresScheduledFires(t *testing.T) {
	cb := &recordingCallback{}
	sched := mustSchedule(t, "* * * * * *", schedule.Options{}) // every second
	d := New(Config{Name: "job", Schedule: sched, Callback: cb.callback()})
	defer d.Stop()

	d.Pause()
	assert.Equal(t, StatePaused, d.State())
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, 0, cb.count(), "a paused driver must not invoke its callback")

	d.Resume()
	require.Eventually(t, func() bool { return cb.count() > 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestStop_IsTerminalAndIdempotent(t *testing.T) {
	cb := &recordingCallback{}
	sched := mustSchedule(t, "* * * * * *", schedule.Options{})
	d := New(Config{Name: "job", Schedule: sched, Callback: cb.callback()})

	d.Stop()
	assert.True(t, d.State() == StateStopped)

	countAfterStop := cb.count()
	time.Sleep(1200 * time.Millisecond)
	assert.Equal(t, countAfterStop, cb.count(), "a stopped driver must never fire again")

	assert.NotPanics(t, func() { d.Stop() })
}

func TestProtect_SkipsOverlappingFire(t *testing.T) {
	cb := &recordingCallback{delay: 1100 * time.Millisecond}
	sched := mustSchedule(t, "* * * * * *", schedule.Options{}) // every second
	d := New(Config{Name: "job", Schedule: sched, Callback: cb.callback(), Protect: true})
	defer d.Stop()

	time.Sleep(3500 * time.Millisecond)
	// The control loop waits for each scheduled callback before arming the
	// next occurrence, so a 1100ms callback on a per-second schedule starts
	// about twice in a 3.5s window. Scheduled fires never overlap one
	// another, with or without Protect; Protect only suppresses a fire
	// that lands while another invocation (such as a Trigger) is in flight.
	assert.LessOrEqual(t, cb.count(), 4)
	assert.GreaterOrEqual(t, cb.count(), 2)
}

func TestMaxRuns_StopsAfterCap(t *testing.T) {
	cb := &recordingCallback{}
	sched := mustSchedule(t, "* * * * * *", schedule.Options{MaxRuns: 2})
	d := New(Config{Name: "job", Schedule: sched, Callback: cb.callback()})
	defer d.Stop()

	require.Eventually(t, func() bool { return d.State() == StateStopped }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 2, cb.count())
}

func TestCatchSwallow_KeepsSchedulingAndDiscardsError(t *testing.T) {
	cb := &recordingCallback{fail: true}
	sched := mustSchedule(t, "* * * * * *", schedule.Options{})
	d := New(Config{Name: "job", Schedule: sched, Callback: cb.callback(), Catch: CatchSwallow})
	defer d.Stop()

	require.Eventually(t, func() bool { return cb.count() >= 2 }, 3*time.Second, 10*time.Millisecond)
	assert.NotEqual(t, StateStopped, d.State())

	select {
	case err := <-d.Errors():
		t.Fatalf("CatchSwallow must not surface an error, got %v", err)
	default:
	}
}

func TestCatchPropagate_SurfacesErrorOnChannelByDefault(t *testing.T) {
	cb := &recordingCallback{fail: true}
	sched := mustSchedule(t, "* * * * * *", schedule.Options{})
	d := New(Config{Name: "job", Schedule: sched, Callback: cb.callback()})
	defer d.Stop()

	select {
	case err := <-d.Errors():
		assert.EqualError(t, err, "callback failed")
	case <-time.After(2 * time.Second):
		t.Fatal("expected a callback error on Errors()")
	}
	assert.NotEqual(t, StateStopped, d.State(), "the default catch behavior never stops the driver")
}

func TestCatchHandler_InvokedWithCallbackError(t *testing.T) {
	cb := &recordingCallback{fail: true}
	sched := mustSchedule(t, "* * * * * *", schedule.Options{})

	var mu sync.Mutex
	var handled error
	handler := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		handled = err
	}

	d := New(Config{Name: "job", Schedule: sched, Callback: cb.callback(), CatchHandler: handler})
	defer d.Stop()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return handled != nil
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.EqualError(t, handled, "callback failed")
	mu.Unlock()

	select {
	case err := <-d.Errors():
		t.Fatalf("CatchHandler takes precedence over Errors(), got %v", err)
	default:
	}
}

func TestIsRunningIsBusyIsStopped_ReflectState(t *testing.T) {
	cb := &recordingCallback{delay: 300 * time.Millisecond}
	sched := mustSchedule(t, "0 0 0 1 1 *", schedule.Options{}) // a year away; only Trigger fires it
	d := New(Config{Name: "job", Schedule: sched, Callback: cb.callback()})

	assert.True(t, d.IsRunning())
	assert.False(t, d.IsBusy())
	assert.False(t, d.IsStopped())
	if _, ok := d.CurrentRun(); ok {
		t.Fatal("CurrentRun must report none before any invocation")
	}

	d.Trigger()
	require.Eventually(t, func() bool { return d.IsBusy() }, time.Second, 5*time.Millisecond)
	assert.True(t, d.IsRunning())
	if _, ok := d.CurrentRun(); !ok {
		t.Fatal("CurrentRun must report the in-flight invocation while busy")
	}

	require.Eventually(t, func() bool { return !d.IsBusy() }, time.Second, 5*time.Millisecond)
	if _, ok := d.CurrentRun(); ok {
		t.Fatal("CurrentRun must clear once the invocation completes")
	}

	d.Stop()
	assert.True(t, d.IsStopped())
	assert.False(t, d.IsRunning())
}

func TestLastRun_ReflectsMostRecentCompletedInvocation(t *testing.T) {
	cb := &recordingCallback{}
	sched := mustSchedule(t, "* * * * * *", schedule.Options{})
	d := New(Config{Name: "job", Schedule: sched, Callback: cb.callback()})
	defer d.Stop()

	require.Eventually(t, func() bool {
		_, ok := d.LastRun()
		return ok
	}, 2*time.Second, 10*time.Millisecond)
}
