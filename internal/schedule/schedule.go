// Package schedule turns a compiled cron expression into a Schedule: a
// set of fixed options (window, run limit, timezone, legacy mode) bound
// to a FieldSet or OneShot, exposing the occurrence queries a JobDriver
// needs to arm timers.
package schedule

import (
	"time"

	"github.com/cronforge/chronod/internal/cronexpr"
)

// Options configures a Schedule at construction time. All fields are
// optional; zero values select the documented defaults.
type Options struct {
	// Name identifies the schedule for logging, metrics, and the
	// Registry. Required when the schedule is registered as a job.
	Name string

	// Timezone is the IANA location occurrences are computed in. Nil
	// selects time.Local, matching the host's zoneinfo as spec'd.
	Timezone *time.Location

	// StartAt, if non-zero, suppresses any occurrence before this
	// instant.
	StartAt time.Time

	// StopAt, if non-zero, suppresses any occurrence at or after this
	// instant.
	StopAt time.Time

	// MaxRuns caps the number of occurrences a JobDriver will fire for
	// this schedule. Zero means unlimited.
	MaxRuns int

	// LegacyMode selects OR semantics between day-of-month and
	// day-of-week when both are explicitly constrained. False (the
	// default) requires both to match.
	LegacyMode bool
}

// Schedule is an immutable, compiled expression plus its options. It is
// safe for concurrent use: every method is a pure function of its
// receiver and argument.
type Schedule struct {
	expr    string
	compile *cronexpr.CompileResult
	opts    Options
	loc     *time.Location
}

// Compile parses expr and binds it to opts, returning a ready-to-query
// Schedule. Compile errors are non-recoverable *cronexpr.CompileError
// values.
func Compile(expr string, opts Options) (*Schedule, error) {
	result, err := cronexpr.Compile(expr)
	if err != nil {
		return nil, err
	}
	loc := opts.Timezone
	if loc == nil {
		loc = time.Local
	}
	return &Schedule{expr: expr, compile: result, opts: opts, loc: loc}, nil
}

// Expression returns the raw expression the Schedule was compiled from.
func (s *Schedule) Expression() string { return s.expr }

// Name returns the schedule's configured name, which may be empty.
func (s *Schedule) Name() string { return s.opts.Name }

// Options returns a copy of the schedule's configured options.
func (s *Schedule) Options() Options { return s.opts }

// Next returns the earliest occurrence strictly after `after`, honoring
// StartAt/StopAt. ok is false when no occurrence exists (OneShot already
// elapsed, pattern unsatisfiable, or the window has closed).
func (s *Schedule) Next(after time.Time) (time.Time, bool) {
	after = after.In(s.loc)
	if !s.opts.StartAt.IsZero() && after.Before(s.opts.StartAt) {
		after = s.opts.StartAt.In(s.loc).Add(-time.Second)
	}

	var candidate time.Time
	var ok bool
	if s.compile.IsOneShot {
		shot := s.compile.OneShot.In(s.loc)
		if shot.After(after) {
			candidate, ok = shot, true
		}
	} else {
		candidate, ok = s.compile.Fields.Advance(after, s.opts.LegacyMode)
	}

	if !ok {
		return time.Time{}, false
	}
	if !s.opts.StopAt.IsZero() && !candidate.Before(s.opts.StopAt) {
		return time.Time{}, false
	}
	return candidate, true
}

// NextN returns up to n occurrences strictly after `after`, in
// chronological order. It may return fewer than n entries when the
// pattern or window is exhausted first.
func (s *Schedule) NextN(after time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	cursor := after
	for len(out) < n {
		next, ok := s.Next(cursor)
		if !ok {
			break
		}
		out = append(out, next)
		cursor = next
	}
	return out
}

// MsToNext returns the number of milliseconds from `now` until the next
// occurrence after `now`, or ok=false if none exists. A negative value
// never occurs: if the next occurrence is not strictly after now it was
// already computed relative to it.
func (s *Schedule) MsToNext(now time.Time) (int64, bool) {
	next, ok := s.Next(now)
	if !ok {
		return 0, false
	}
	return next.Sub(now).Milliseconds(), true
}

// Previous returns the latest occurrence strictly before `before`,
// honoring StartAt/StopAt. ok is false when no such occurrence exists.
func (s *Schedule) Previous(before time.Time) (time.Time, bool) {
	before = before.In(s.loc)
	if !s.opts.StopAt.IsZero() && s.opts.StopAt.Before(before) {
		before = s.opts.StopAt.In(s.loc)
	}

	var candidate time.Time
	var ok bool
	if s.compile.IsOneShot {
		shot := s.compile.OneShot.In(s.loc)
		if shot.Before(before) {
			candidate, ok = shot, true
		}
	} else {
		candidate, ok = s.compile.Fields.Previous(before, s.opts.LegacyMode)
	}

	if !ok {
		return time.Time{}, false
	}
	if !s.opts.StartAt.IsZero() && candidate.Before(s.opts.StartAt) {
		return time.Time{}, false
	}
	return candidate, true
}

// Describe renders the schedule's expression as an English sentence.
func (s *Schedule) Describe() string {
	return cronexpr.Describe(s.expr)
}
