// Package jobdriver arms a timer against a compiled Schedule and drives
// a user callback, tracking run state the way the teacher repository's
// scheduler.JobRunner drives its poll loop: a stopCh plus sync.WaitGroup
// goroutine, here re-armed per occurrence instead of polling a ticker.
package jobdriver

import (
	"context"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cronforge/chronod/internal/schedule"
)

// State is one of the four states a JobDriver occupies.
type State string

const (
	StateScheduled State = "scheduled"
	StatePaused    State = "paused"
	StateBusy      State = "busy"
	StateStopped   State = "stopped"
)

// CatchPolicy controls what happens when a callback returns an error and
// Config.CatchHandler is not set. The driver keeps scheduling either way;
// catch only governs how the error is surfaced, never whether the driver
// stops.
type CatchPolicy string

const (
	// CatchPropagate is the zero-value default: the error is logged and
	// handed to Errors() for an owner to observe, matching the "raised"
	// row of the catch option's documented behavior.
	CatchPropagate CatchPolicy = ""
	// CatchSwallow discards the error after logging it.
	CatchSwallow CatchPolicy = "swallow"
)

// Outcome describes how a single tick resolved, used by run history and
// the event stream.
type Outcome string

const (
	OutcomeRan           Outcome = "ran"
	OutcomeSkippedBusy   Outcome = "skipped_busy"
	OutcomeSkippedPaused Outcome = "skipped_paused"
	OutcomeError         Outcome = "error"
)

// maxTimerDelay clamps a single time.Timer arm to the largest delay
// representable as a platform int32 millisecond count (2^31-1 ms),
// matching the long-delay clamp spec'd for the control loop. Occurrences
// further out than this re-arm the timer without firing.
const maxTimerDelay = time.Duration(math.MaxInt32) * time.Millisecond

// Callback is the user action a JobDriver invokes on each occurrence.
type Callback func(ctx context.Context, runID string, scheduledFor time.Time) error

// MetricsRecorder is the subset of metrics.Recorder a JobDriver needs.
// Declared here (rather than imported) so jobdriver has no dependency on
// the metrics package; nil is a valid no-op recorder.
type MetricsRecorder interface {
	ObserveRun(job string, outcome Outcome, schedulingDelay time.Duration)
	SetBusy(job string, busy bool)
}

// HistoryRecorder is the subset of runhistory.Store a JobDriver needs.
type HistoryRecorder interface {
	Record(ctx context.Context, driverName string, scheduledFor, firedAt time.Time, outcome Outcome, runID string, errMsg string) error
}

// EventSink receives state-transition notifications for the live event
// stream. nil is a valid no-op sink.
type EventSink interface {
	Publish(driverName string, state State, occurredAt time.Time, runID string)
}

// Config bundles a JobDriver's fixed collaborators.
type Config struct {
	Name          string
	Schedule      *schedule.Schedule
	Callback      Callback
	Protect       bool // when true, an in-flight run suppresses overlapping fires
	Catch         CatchPolicy
	CatchHandler  func(error) // when set, invoked with a callback error instead of Catch
	PausedInitial bool
	Context       context.Context // base context passed to each callback invocation
	Logger        *log.Logger
	Metrics       MetricsRecorder
	History       HistoryRecorder
	Events        EventSink
}

// JobDriver is a stateful controller: it owns one goroutine that arms a
// timer against its Schedule, invokes Callback on fire, and exposes a
// thread-safe control surface (Pause/Resume/Stop/Trigger/state queries).
type JobDriver struct {
	name         string
	schedule     *schedule.Schedule
	callback     Callback
	protect      bool
	catch        CatchPolicy
	catchHandler func(error)
	baseCtx      context.Context
	log          *log.Logger
	metrics      MetricsRecorder
	history      HistoryRecorder
	events       EventSink

	mu         sync.Mutex
	state      State
	busy       bool
	runCount   int
	nextRun    time.Time
	lastRun    time.Time
	currentRun time.Time

	wakeCh chan struct{}
	stopCh chan struct{}
	errCh  chan error
	wg     sync.WaitGroup
}

// New constructs a JobDriver in the Scheduled state (or Paused, if
// cfg.PausedInitial is set) and starts its control-loop goroutine.
func New(cfg Config) *JobDriver {
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	d := &JobDriver{
		name:         cfg.Name,
		schedule:     cfg.Schedule,
		callback:     cfg.Callback,
		protect:      cfg.Protect,
		catch:        cfg.Catch,
		catchHandler: cfg.CatchHandler,
		baseCtx:      cfg.Context,
		log:          cfg.Logger,
		metrics:      cfg.Metrics,
		history:      cfg.History,
		events:       cfg.Events,
		state:        StateScheduled,
		wakeCh:       make(chan struct{}, 1),
		stopCh:       make(chan struct{}),
		errCh:        make(chan error, 1),
	}
	if cfg.PausedInitial {
		d.state = StatePaused
	}

	d.wg.Add(1)
	go d.loop()
	return d
}

// Name returns the driver's registered name.
func (d *JobDriver) Name() string { return d.name }

// State returns the driver's current state.
func (d *JobDriver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// NextRun returns the next armed occurrence, if any.
func (d *JobDriver) NextRun() (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.nextRun, !d.nextRun.IsZero()
}

// LastRun returns the most recent fire time, if any.
func (d *JobDriver) LastRun() (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastRun, !d.lastRun.IsZero()
}

// RunCount returns the number of times Callback has been invoked.
func (d *JobDriver) RunCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runCount
}

// IsRunning reports whether the driver is armed: not paused and not
// stopped. A Busy driver still counts as running — it will re-arm as
// soon as the in-flight invocation returns.
func (d *JobDriver) IsRunning() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == StateScheduled || d.state == StateBusy
}

// IsStopped reports whether Stop has taken effect.
func (d *JobDriver) IsStopped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state == StateStopped
}

// IsBusy reports whether a callback invocation is currently in flight.
func (d *JobDriver) IsBusy() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.busy
}

// CurrentRun returns the scheduled time of the invocation currently in
// flight, if any.
func (d *JobDriver) CurrentRun() (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.currentRun, !d.currentRun.IsZero()
}

// Errors exposes callback errors recorded under the default
// CatchPropagate policy. Invocation happens on the driver's own
// goroutine, so there is no caller to return the error to synchronously;
// each error is instead offered on this channel, dropped if its single
// buffered slot is already full and unread — matching the driver's own
// stance that a slow observer never blocks scheduling.
func (d *JobDriver) Errors() <-chan error { return d.errCh }

// Pause suspends scheduling. A paused driver keeps its name reserved in
// the Registry but arms no timer until Resume is called.
func (d *JobDriver) Pause() {
	d.mu.Lock()
	if d.state == StateStopped {
		d.mu.Unlock()
		return
	}
	d.state = StatePaused
	d.mu.Unlock()
	d.wake()
	d.emit(StatePaused, "")
}

// Resume reverses Pause, re-arming the timer against the live Schedule.
func (d *JobDriver) Resume() {
	d.mu.Lock()
	if d.state != StatePaused {
		d.mu.Unlock()
		return
	}
	d.state = StateScheduled
	d.mu.Unlock()
	d.wake()
	d.emit(StateScheduled, "")
}

// Stop permanently halts the driver. A stopped driver never fires
// again and its goroutine exits; Stop is idempotent.
func (d *JobDriver) Stop() {
	d.mu.Lock()
	if d.state == StateStopped {
		d.mu.Unlock()
		return
	}
	d.state = StateStopped
	d.mu.Unlock()
	close(d.stopCh)
	d.wg.Wait()
	d.emit(StateStopped, "")
}

// Trigger starts Callback immediately on its own goroutine, out of band
// from the armed schedule, subject to the same overlap protection as a
// scheduled fire. It returns the run ID assigned to the invocation
// without waiting for it to finish.
func (d *JobDriver) Trigger() string {
	runID := uuid.NewString()
	go d.fire(time.Now(), runID, true)
	return runID
}

func (d *JobDriver) wake() {
	select {
	case d.wakeCh <- struct{}{}:
	default:
	}
}

func (d *JobDriver) loop() {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		state := d.state
		d.mu.Unlock()

		if state == StateStopped {
			return
		}
		if state == StatePaused {
			select {
			case <-d.wakeCh:
				continue
			case <-d.stopCh:
				return
			}
		}

		if maxRuns := d.schedule.Options().MaxRuns; maxRuns > 0 {
			d.mu.Lock()
			runCount := d.runCount
			d.mu.Unlock()
			if runCount >= maxRuns {
				d.mu.Lock()
				d.state = StateStopped
				d.mu.Unlock()
				d.emit(StateStopped, "")
				return
			}
		}

		next, ok := d.schedule.Next(time.Now())
		if !ok {
			d.mu.Lock()
			d.state = StateStopped
			d.mu.Unlock()
			d.emit(StateStopped, "")
			return
		}

		d.mu.Lock()
		d.nextRun = next
		d.mu.Unlock()

		delay := time.Until(next)
		if delay < 0 {
			delay = 0
		}
		armed := delay
		if armed > maxTimerDelay {
			armed = maxTimerDelay
		}

		timer := time.NewTimer(armed)
		select {
		case <-timer.C:
			if armed < delay {
				// Long-delay clamp: this wake only re-arms, it does not fire.
				continue
			}
			d.fire(next, uuid.NewString(), false)
		case <-d.wakeCh:
			timer.Stop()
		case <-d.stopCh:
			timer.Stop()
			return
		}
	}
}

// fire runs Callback for one occurrence, applying overlap protection and
// the configured catch policy. scheduledFor is the occurrence's nominal
// time (equal to time.Now() for a manual Trigger).
func (d *JobDriver) fire(scheduledFor time.Time, runID string, manual bool) {
	d.mu.Lock()
	if d.state == StateStopped {
		d.mu.Unlock()
		return
	}
	if d.state == StatePaused && !manual {
		d.mu.Unlock()
		d.recordOutcome(scheduledFor, scheduledFor, OutcomeSkippedPaused, runID, "")
		return
	}
	if d.protect && d.busy {
		d.mu.Unlock()
		d.recordOutcome(scheduledFor, time.Now(), OutcomeSkippedBusy, runID, "")
		return
	}
	// A manual Trigger may run while the driver is paused; the run must
	// not leave it resumed.
	restore := StateScheduled
	if d.state == StatePaused {
		restore = StatePaused
	}
	d.busy = true
	d.state = StateBusy
	d.currentRun = scheduledFor
	d.mu.Unlock()

	if d.metrics != nil {
		d.metrics.SetBusy(d.name, true)
	}
	d.emit(StateBusy, runID)

	firedAt := time.Now()
	err := d.callback(d.baseCtx, runID, scheduledFor)

	d.mu.Lock()
	d.busy = false
	d.currentRun = time.Time{}
	d.lastRun = firedAt
	d.runCount++
	// A concurrent Stop() or Pause() may already have moved the state on
	// while the callback was in flight; don't clobber that.
	if d.state == StateBusy {
		d.state = restore
	}
	nextState := d.state
	d.mu.Unlock()

	if d.metrics != nil {
		d.metrics.SetBusy(d.name, false)
	}

	outcome := OutcomeRan
	errMsg := ""
	if err != nil {
		outcome = OutcomeError
		errMsg = err.Error()
		d.log.Printf("jobdriver: %s: run %s failed: %v", d.name, runID, err)
		d.catchError(err)
	}
	d.recordOutcome(scheduledFor, firedAt, outcome, runID, errMsg)
	d.emit(nextState, runID)
}

// catchError applies the configured catch behavior to a callback error:
// a CatchHandler, if set, takes precedence over Catch; CatchSwallow
// discards it after the logging fire() already did; the CatchPropagate
// default offers it on Errors().
func (d *JobDriver) catchError(err error) {
	switch {
	case d.catchHandler != nil:
		d.catchHandler(err)
	case d.catch == CatchSwallow:
	default:
		select {
		case d.errCh <- err:
		default:
		}
	}
}

func (d *JobDriver) recordOutcome(scheduledFor, firedAt time.Time, outcome Outcome, runID, errMsg string) {
	if d.metrics != nil {
		d.metrics.ObserveRun(d.name, outcome, firedAt.Sub(scheduledFor))
	}
	if d.history != nil {
		if err := d.history.Record(d.baseCtx, d.name, scheduledFor, firedAt, outcome, runID, errMsg); err != nil {
			d.log.Printf("jobdriver: %s: failed to record run history: %v", d.name, err)
		}
	}
}

func (d *JobDriver) emit(state State, runID string) {
	if d.events != nil {
		d.events.Publish(d.name, state, time.Now(), runID)
	}
}
