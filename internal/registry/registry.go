// Package registry is a process-wide name -> JobDriver map with atomic
// duplicate-name rejection, the one place in chronod that coordinates
// insertion across goroutines (HTTP handlers, the manifest watcher, and
// the admin CLI's server-side counterpart all share one Registry).
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cronforge/chronod/internal/jobdriver"
)

// DuplicateNameError is returned by Register when name is already live.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("registry: job %q is already registered", e.Name)
}

// Registry holds the live, named JobDrivers for a process.
type Registry struct {
	mu      sync.Mutex
	drivers map[string]*jobdriver.JobDriver
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{drivers: make(map[string]*jobdriver.JobDriver)}
}

// Register adds d under name, failing with *DuplicateNameError if the
// name is already in use by a live (non-Stopped) driver. Callers are
// expected to call Remove after Stop (routes_jobs.go's stop handler and
// jobmanifest.Loader.Apply both do), so in practice a stopped entry is
// gone from the map before Register ever sees it again; this check is a
// defensive fallback for any caller that stops a driver without also
// removing it, matching spec.md's "name release on Stop" contract either
// way.
func (r *Registry) Register(name string, d *jobdriver.JobDriver) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.drivers[name]; ok {
		if existing.State() != jobdriver.StateStopped {
			return &DuplicateNameError{Name: name}
		}
	}
	r.drivers[name] = d
	return nil
}

// Get returns the driver registered under name, if any.
func (r *Registry) Get(name string) (*jobdriver.JobDriver, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.drivers[name]
	return d, ok
}

// Remove evicts name from the registry outright (used when a manifest
// entry is deleted, rather than merely stopped).
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.drivers, name)
}

// ScheduledJobs returns every live (non-Stopped) registered driver,
// sorted by name. A driver can briefly be present in the map and already
// Stopped — between a caller's d.Stop() and its follow-up r.Remove() —
// so this filters on state rather than trusting the map alone to never
// hold a stopped entry.
func (r *Registry) ScheduledJobs() []*jobdriver.JobDriver {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*jobdriver.JobDriver, 0, len(names))
	for _, name := range names {
		if d := r.drivers[name]; d.State() != jobdriver.StateStopped {
			out = append(out, d)
		}
	}
	return out
}

// Names returns every live (non-Stopped) registered driver's name, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.drivers))
	for name, d := range r.drivers {
		if d.State() != jobdriver.StateStopped {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
