package jobmanifest

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cronforge/chronod/internal/jobdriver"
	"github.com/cronforge/chronod/internal/registry"
)

func noopResolver(name string) (jobdriver.Callback, bool) {
	return func(ctx context.Context, runID string, scheduledFor time.Time) error { return nil }, true
}

func TestApply_StartsEntriesFromManifest(t *testing.T) {
	reg := registry.New()
	loader := NewLoader(reg, noopResolver, nil, nil, nil, nil)

	m := &Manifest{Jobs: []Entry{{Name: "nightly", Expression: "0 0 2 * * *", Callback: "backup"}}}
	require.NoError(t, loader.Apply(m))

	d, ok := reg.Get("nightly")
	require.True(t, ok)
	assert.Equal(t, jobdriver.StateScheduled, d.State())
	d.Stop()
}

func TestApply_StopsEntriesRemovedFromManifest(t *testing.T) {
	reg := registry.New()
	loader := NewLoader(reg, noopResolver, nil, nil, nil, nil)

	require.NoError(t, loader.Apply(&Manifest{Jobs: []Entry{{Name: "nightly", Expression: "0 0 2 * * *", Callback: "backup"}}}))
	require.NoError(t, loader.Apply(&Manifest{}))

	_, ok := reg.Get("nightly")
	assert.False(t, ok)
}

func TestApply_RestartsEntryWhoseDefinitionChanged(t *testing.T) {
	reg := registry.New()
	loader := NewLoader(reg, noopResolver, nil, nil, nil, nil)

	require.NoError(t, loader.Apply(&Manifest{Jobs: []Entry{{Name: "nightly", Expression: "0 0 2 * * *", Callback: "backup"}}}))
	first, _ := reg.Get("nightly")

	require.NoError(t, loader.Apply(&Manifest{Jobs: []Entry{{Name: "nightly", Expression: "0 0 3 * * *", Callback: "backup"}}}))
	second, ok := reg.Get("nightly")
	require.True(t, ok)

	assert.Equal(t, jobdriver.StateStopped, first.State())
	assert.NotSame(t, first, second)
	second.Stop()
}

func TestApply_UnresolvableCallbackFailsFast(t *testing.T) {
	reg := registry.New()
	loader := NewLoader(reg, func(string) (jobdriver.Callback, bool) { return nil, false }, nil, nil, nil, nil)

	err := loader.Apply(&Manifest{Jobs: []Entry{{Name: "nightly", Expression: "0 0 2 * * *", Callback: "missing"}}})
	require.Error(t, err)

	_, ok := reg.Get("nightly")
	assert.False(t, ok)
}

func TestLoad_RejectsDuplicateEntryNames(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/jobs.yaml"
	content := "jobs:\n  - name: a\n    expression: \"* * * * * *\"\n    callback: x\n  - name: a\n    expression: \"* * * * * *\"\n    callback: y\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
