package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompile_InvalidExpressionPropagatesCompileError(t *testing.T) {
	_, err := Compile("not valid", Options{})
	require.Error(t, err)
}

func TestNext_HonorsStartAt(t *testing.T) {
	sched, err := Compile("0 0 0 * * *", Options{
		StartAt: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	next, ok := sched.Next(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.False(t, next.Before(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestNext_HonorsStopAt(t *testing.T) {
	sched, err := Compile("0 0 0 * * *", Options{
		StopAt: time.Date(2022, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	_, ok := sched.Next(time.Date(2022, 1, 2, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestNextN_StopsAtPatternExhaustion(t *testing.T) {
	sched, err := Compile("2030-06-15T09:30:00Z", Options{})
	require.NoError(t, err)

	got := sched.NextN(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), 5)
	require.Len(t, got, 1)
	assert.Equal(t, 2030, got[0].Year())
}

func TestMsToNext_MatchesNextDifference(t *testing.T) {
	sched, err := Compile("0 0 0 * * *", Options{})
	require.NoError(t, err)

	now := time.Date(2022, 5, 1, 12, 0, 0, 0, time.UTC)
	next, ok := sched.Next(now)
	require.True(t, ok)

	ms, ok := sched.MsToNext(now)
	require.True(t, ok)
	assert.Equal(t, next.Sub(now).Milliseconds(), ms)
}

func TestOneShot_PastInstantNeverFiresAgain(t *testing.T) {
	sched, err := Compile("2000-01-01T00:00:00Z", Options{})
	require.NoError(t, err)

	_, ok := sched.Next(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestDescribe_DelegatesToCronexpr(t *testing.T) {
	sched, err := Compile("@daily", Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, sched.Describe())
}
