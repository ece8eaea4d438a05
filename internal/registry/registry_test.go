package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cronforge/chronod/internal/jobdriver"
	"github.com/cronforge/chronod/internal/schedule"
)

func newTestDriver(t *testing.T, name string) *jobdriver.JobDriver {
	t.Helper()
	sched, err := schedule.Compile("0 0 0 1 1 *", schedule.Options{Name: name})
	require.NoError(t, err)
	return jobdriver.New(jobdriver.Config{
		Name:     name,
		Schedule: sched,
		Callback: func(ctx context.Context, runID string, scheduledFor time.Time) error { return nil },
	})
}

func TestRegister_RejectsDuplicateNameWhileLive(t *testing.T) {
	reg := New()
	first := newTestDriver(t, "backup")
	defer first.Stop()

	require.NoError(t, reg.Register("backup", first))

	second := newTestDriver(t, "backup")
	defer second.Stop()

	err := reg.Register("backup", second)
	require.Error(t, err)
	var dup *DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "backup", dup.Name)
}

func TestRegister_ReleasesNameAfterDriverStops(t *testing.T) {
	reg := New()
	first := newTestDriver(t, "backup")
	require.NoError(t, reg.Register("backup", first))

	first.Stop()

	second := newTestDriver(t, "backup")
	defer second.Stop()
	assert.NoError(t, reg.Register("backup", second))
}

func TestScheduledJobs_ExcludesUnregisteredNames(t *testing.T) {
	reg := New()
	d := newTestDriver(t, "alpha")
	defer d.Stop()
	require.NoError(t, reg.Register("alpha", d))

	assert.Len(t, reg.ScheduledJobs(), 1)
	reg.Remove("alpha")
	assert.Empty(t, reg.ScheduledJobs())
}

func TestScheduledJobs_ExcludesDriverStoppedDirectlyWithoutRemove(t *testing.T) {
	reg := New()
	d := newTestDriver(t, "alpha")
	require.NoError(t, reg.Register("alpha", d))
	assert.Len(t, reg.ScheduledJobs(), 1)

	d.Stop()

	assert.Empty(t, reg.ScheduledJobs(), "a stopped driver must not appear in scheduled_jobs even before Remove is called")
	assert.Empty(t, reg.Names())
}

func TestNames_ReturnsSortedLiveNames(t *testing.T) {
	reg := New()
	b := newTestDriver(t, "bravo")
	a := newTestDriver(t, "alpha")
	defer b.Stop()
	defer a.Stop()

	require.NoError(t, reg.Register("bravo", b))
	require.NoError(t, reg.Register("alpha", a))

	assert.Equal(t, []string{"alpha", "bravo"}, reg.Names())
}
