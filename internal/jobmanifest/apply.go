package jobmanifest

import (
	"fmt"
	"log"
	"time"

	"github.com/cronforge/chronod/internal/jobdriver"
	"github.com/cronforge/chronod/internal/registry"
	"github.com/cronforge/chronod/internal/schedule"
)

// CallbackResolver binds a manifest entry's callback name to the actual
// function the host process runs for it. The manifest only ever carries
// scheduling metadata; the callback itself is an external collaborator.
type CallbackResolver func(name string) (jobdriver.Callback, bool)

// Loader owns a Registry and applies Manifests to it, starting,
// stopping, and restarting JobDrivers to match.
type Loader struct {
	reg      *registry.Registry
	resolve  CallbackResolver
	log      *log.Logger
	metrics  jobdriver.MetricsRecorder
	history  jobdriver.HistoryRecorder
	events   jobdriver.EventSink
	current  map[string]Entry
}

// NewLoader constructs a Loader bound to reg. logger, metrics, history,
// and events are forwarded to every JobDriver the Loader creates; any of
// them may be nil.
func NewLoader(reg *registry.Registry, resolve CallbackResolver, logger *log.Logger, metrics jobdriver.MetricsRecorder, history jobdriver.HistoryRecorder, events jobdriver.EventSink) *Loader {
	if logger == nil {
		logger = log.Default()
	}
	return &Loader{
		reg:     reg,
		resolve: resolve,
		log:     logger,
		metrics: metrics,
		history: history,
		events:  events,
		current: make(map[string]Entry),
	}
}

// Apply reconciles the live Registry against m: entries present in m but
// not live are started, entries live but absent from m are stopped,
// entries whose definition changed are stopped and restarted. It fails
// fast on the first unresolvable callback or invalid expression,
// matching the non-recoverable-compile-error stance of PatternCompiler.
func (l *Loader) Apply(m *Manifest) error {
	next := m.ByName()

	for name := range l.current {
		if _, stillPresent := next[name]; !stillPresent {
			if d, ok := l.reg.Get(name); ok {
				d.Stop()
				l.reg.Remove(name)
			}
			delete(l.current, name)
		}
	}

	for name, entry := range next {
		prior, existed := l.current[name]
		if existed && prior == entry {
			continue
		}
		if existed {
			if d, ok := l.reg.Get(name); ok {
				d.Stop()
				l.reg.Remove(name)
			}
		}
		if err := l.start(entry); err != nil {
			return err
		}
		l.current[name] = entry
	}
	return nil
}

func (l *Loader) start(entry Entry) error {
	callback, ok := l.resolve(entry.Callback)
	if !ok {
		return fmt.Errorf("jobmanifest: no callback registered for %q (job %q)", entry.Callback, entry.Name)
	}

	opts := schedule.Options{
		Name:       entry.Name,
		MaxRuns:    entry.MaxRuns,
		LegacyMode: entry.LegacyMode,
	}
	if entry.Timezone != "" {
		loc, err := time.LoadLocation(entry.Timezone)
		if err != nil {
			return fmt.Errorf("jobmanifest: job %q: %w", entry.Name, err)
		}
		opts.Timezone = loc
	}
	if entry.StartAt != "" {
		t, err := time.Parse(time.RFC3339, entry.StartAt)
		if err != nil {
			return fmt.Errorf("jobmanifest: job %q: invalid start_at: %w", entry.Name, err)
		}
		opts.StartAt = t
	}
	if entry.StopAt != "" {
		t, err := time.Parse(time.RFC3339, entry.StopAt)
		if err != nil {
			return fmt.Errorf("jobmanifest: job %q: invalid stop_at: %w", entry.Name, err)
		}
		opts.StopAt = t
	}

	sched, err := schedule.Compile(entry.Expression, opts)
	if err != nil {
		return fmt.Errorf("jobmanifest: job %q: %w", entry.Name, err)
	}

	driver := jobdriver.New(jobdriver.Config{
		Name:          entry.Name,
		Schedule:      sched,
		Callback:      callback,
		Protect:       entry.Protect,
		PausedInitial: entry.Paused,
		Logger:        l.log,
		Metrics:       l.metrics,
		History:       l.history,
		Events:        l.events,
	})

	if err := l.reg.Register(entry.Name, driver); err != nil {
		driver.Stop()
		return fmt.Errorf("jobmanifest: job %q: %w", entry.Name, err)
	}
	return nil
}
