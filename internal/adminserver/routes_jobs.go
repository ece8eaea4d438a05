package adminserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cronforge/chronod/internal/api"
	"github.com/cronforge/chronod/internal/apperrors"
	"github.com/cronforge/chronod/internal/jobdriver"
)

// jobResource is the Stripe-style wire representation of a JobDriver.
type jobResource struct {
	Object   string     `json:"object"`
	Name     string     `json:"name"`
	State    string     `json:"state"`
	NextRun  *time.Time `json:"next_run,omitempty"`
	LastRun  *time.Time `json:"last_run,omitempty"`
	RunCount int        `json:"run_count"`
}

func renderJob(d *jobdriver.JobDriver) jobResource {
	resource := jobResource{
		Object:   "job",
		Name:     d.Name(),
		State:    string(d.State()),
		RunCount: d.RunCount(),
	}
	if next, ok := d.NextRun(); ok {
		resource.NextRun = &next
	}
	if last, ok := d.LastRun(); ok {
		resource.LastRun = &last
	}
	return resource
}

func registerJobRoutes(router chi.Router, deps Deps) {
	reg := deps.Registry

	router.Method(http.MethodGet, "/v1/jobs", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		drivers := reg.ScheduledJobs()
		resources := make([]jobResource, 0, len(drivers))
		for _, d := range drivers {
			resources = append(resources, renderJob(d))
		}
		return api.WriteList(w, "/v1/jobs", resources, false)
	}))

	router.Method(http.MethodGet, "/v1/jobs/{name}", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		d, ok := reg.Get(chi.URLParam(r, "name"))
		if !ok {
			return apperrors.NewNotFoundResource("job", chi.URLParam(r, "name"))
		}
		return api.WriteResource(w, http.StatusOK, renderJob(d))
	}))

	router.Method(http.MethodPost, "/v1/jobs/{name}/pause", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		d, ok := reg.Get(chi.URLParam(r, "name"))
		if !ok {
			return apperrors.NewNotFoundResource("job", chi.URLParam(r, "name"))
		}
		d.Pause()
		return api.WriteAction(w, http.StatusOK, renderJob(d))
	}))

	router.Method(http.MethodPost, "/v1/jobs/{name}/resume", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		d, ok := reg.Get(chi.URLParam(r, "name"))
		if !ok {
			return apperrors.NewNotFoundResource("job", chi.URLParam(r, "name"))
		}
		d.Resume()
		return api.WriteAction(w, http.StatusOK, renderJob(d))
	}))

	router.Method(http.MethodPost, "/v1/jobs/{name}/stop", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		name := chi.URLParam(r, "name")
		d, ok := reg.Get(name)
		if !ok {
			return apperrors.NewNotFoundResource("job", name)
		}
		d.Stop()
		reg.Remove(name)
		return api.WriteAction(w, http.StatusOK, renderJob(d))
	}))

	router.Method(http.MethodPost, "/v1/jobs/{name}/trigger", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		d, ok := reg.Get(chi.URLParam(r, "name"))
		if !ok {
			return apperrors.NewNotFoundResource("job", chi.URLParam(r, "name"))
		}
		runID := d.Trigger()
		return api.WriteAction(w, http.StatusAccepted, map[string]any{
			"object": "trigger",
			"name":   d.Name(),
			"run_id": runID,
		})
	}))
}
