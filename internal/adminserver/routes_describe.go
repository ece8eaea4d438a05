package adminserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cronforge/chronod/internal/api"
	"github.com/cronforge/chronod/internal/apperrors"
	"github.com/cronforge/chronod/internal/schedule"
)

type describeRequest struct {
	Expression string `json:"expression"`
	Timezone   string `json:"timezone"`
	LegacyMode bool   `json:"legacy_mode"`
	Count      int    `json:"count"`
}

type describeResponse struct {
	Object      string      `json:"object"`
	Expression  string      `json:"expression"`
	Description string      `json:"description"`
	NextRuns    []time.Time `json:"next_runs"`
}

// registerDescribeRoute adds a dry-run endpoint that compiles an
// expression and reports its description plus upcoming occurrences
// without registering anything in the Registry.
func registerDescribeRoute(router chi.Router) {
	router.Method(http.MethodPost, "/v1/describe", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		var req describeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return apperrors.NewValidationError("request body must be valid JSON", nil)
		}
		if req.Expression == "" {
			return apperrors.NewValidationError("expression is required", nil)
		}
		count := req.Count
		if count <= 0 {
			count = 5
		}

		opts := schedule.Options{LegacyMode: req.LegacyMode}
		if req.Timezone != "" {
			loc, err := time.LoadLocation(req.Timezone)
			if err != nil {
				return apperrors.NewValidationError("invalid timezone: "+req.Timezone, nil)
			}
			opts.Timezone = loc
		}

		sched, err := schedule.Compile(req.Expression, opts)
		if err != nil {
			return apperrors.NewInvalidExpressionError(err.Error())
		}

		return api.WriteResource(w, http.StatusOK, describeResponse{
			Object:      "describe",
			Expression:  req.Expression,
			Description: sched.Describe(),
			NextRuns:    sched.NextN(time.Now(), count),
		})
	}))
}
