package cronexpr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCompile(t *testing.T, expr string) *CompileResult {
	t.Helper()
	result, err := Compile(expr)
	require.NoError(t, err)
	return result
}

func TestCompile_WrongFieldCount(t *testing.T) {
	_, err := Compile("* * * *")
	require.Error(t, err)
	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, ErrWrongFieldCount, compileErr.Code)
}

func TestCompile_IllegalCharacter(t *testing.T) {
	_, err := Compile("* * * * * #")
	require.Error(t, err)
	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, ErrIllegalCharacter, compileErr.Code)
}

func TestCompile_OutOfRange(t *testing.T) {
	_, err := Compile("0 0 0 32 * *")
	require.Error(t, err)
	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, ErrOutOfRange, compileErr.Code)
}

func TestCompile_InvalidRange(t *testing.T) {
	_, err := Compile("0 0 10-5 * * *")
	require.Error(t, err)
	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, ErrInvalidRange, compileErr.Code)
}

func TestCompile_UnknownAlias(t *testing.T) {
	_, err := Compile("@fortnightly")
	require.Error(t, err)
	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, ErrUnknownAlias, compileErr.Code)
}

func TestCompile_NamedMonthsAndDaysCaseInsensitive(t *testing.T) {
	result := mustCompile(t, "0 0 0 1 jan sun")
	assert.True(t, result.Fields.isDomSet(1))
	assert.True(t, result.Fields.months&1 != 0, "jan must select month 1")
	assert.True(t, result.Fields.isDowSet(0), "sun must select day-of-week 0")
}

func TestCompile_DowSevenAliasesToZero(t *testing.T) {
	result := mustCompile(t, "0 0 0 * * 7")
	assert.True(t, result.Fields.isDowSet(0))
	assert.True(t, result.Fields.isDowSet(7))
}

func TestCompile_IsoOneShotLiteral(t *testing.T) {
	result := mustCompile(t, "2030-06-15T09:30:00Z")
	require.True(t, result.IsOneShot)
	assert.Equal(t, 2030, result.OneShot.Year())
}

func TestCompile_IsoLiteralBadCalendarDate(t *testing.T) {
	_, err := Compile("2030-02-30T00:00:00Z")
	require.Error(t, err)
}

// Scenario 1: @yearly from 2022-02-17 -> next three are 2023-01-01,
// 2024-01-01, 2025-01-01.
func TestAdvance_YearlyAlias(t *testing.T) {
	result := mustCompile(t, "@yearly")
	after := time.Date(2022, 2, 17, 0, 0, 0, 0, time.UTC)

	want := []time.Time{
		time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, w := range want {
		got, ok := result.Fields.Advance(after, false)
		require.True(t, ok)
		assert.True(t, got.Equal(w), "got %v want %v", got, w)
		after = got
	}
}

// @daily must land on midnight once a day, not every hour: it shares a
// minute/second field with @hourly and a regression collapsing the two
// would otherwise go unnoticed (@hourly itself never advances past the
// top of the next hour).
func TestAdvance_DailyAlias(t *testing.T) {
	result := mustCompile(t, "@daily")
	after := time.Date(2022, 2, 17, 13, 0, 0, 0, time.UTC)

	want := []time.Time{
		time.Date(2022, 2, 18, 0, 0, 0, 0, time.UTC),
		time.Date(2022, 2, 19, 0, 0, 0, 0, time.UTC),
		time.Date(2022, 2, 20, 0, 0, 0, 0, time.UTC),
	}
	for _, w := range want {
		got, ok := result.Fields.Advance(after, false)
		require.True(t, ok)
		assert.True(t, got.Equal(w), "got %v want %v", got, w)
		after = got
	}
}

func TestAdvance_HourlyAliasFiresEveryHourNotOncePerDay(t *testing.T) {
	result := mustCompile(t, "@hourly")
	after := time.Date(2022, 2, 17, 13, 0, 0, 0, time.UTC)

	got, ok := result.Fields.Advance(after, false)
	require.True(t, ok)
	assert.Equal(t, time.Date(2022, 2, 17, 14, 0, 0, 0, time.UTC), got)
}

// Scenario 2: 0 0 0 L * * from 2022-01-01 -> 2022-01-31, 2022-02-28, 2022-03-31.
func TestAdvance_LastDayOfMonth(t *testing.T) {
	result := mustCompile(t, "0 0 0 L * *")
	after := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	want := []time.Time{
		time.Date(2022, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2022, 2, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2022, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	for _, w := range want {
		got, ok := result.Fields.Advance(after, false)
		require.True(t, ok)
		assert.True(t, got.Equal(w), "got %v want %v", got, w)
		after = got
	}
}

// Scenario 3: 0 0 0 15,L * * from 2022-01-01 -> four occurrences mixing
// the explicit day with the L sentinel.
func TestAdvance_ExplicitDayAndLastDayCombined(t *testing.T) {
	result := mustCompile(t, "0 0 0 15,L * *")
	after := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)

	want := []time.Time{
		time.Date(2022, 1, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2022, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2022, 2, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2022, 2, 28, 0, 0, 0, 0, time.UTC),
	}
	for _, w := range want {
		got, ok := result.Fields.Advance(after, false)
		require.True(t, ok)
		assert.True(t, got.Equal(w), "got %v want %v", got, w)
		after = got
	}
}

// Scenario 4: Feb 31 is unsatisfiable; Advance must report none rather
// than hang or overflow the year horizon.
func TestAdvance_UnsatisfiablePatternReturnsNone(t *testing.T) {
	result := mustCompile(t, "* * * 31 2 *")
	_, ok := result.Fields.Advance(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC), false)
	assert.False(t, ok)
}

// Scenario 5: 0 0 0 1 11 4 (1 Nov AND Thursday) from 2021-10-13: strict
// mode lands on 2029, legacy mode (OR) lands within 2021.
func TestAdvance_StrictVsLegacyDayCombination(t *testing.T) {
	result := mustCompile(t, "0 0 0 1 11 4")
	after := time.Date(2021, 10, 13, 0, 0, 0, 0, time.UTC)

	strict, ok := result.Fields.Advance(after, false)
	require.True(t, ok)
	assert.Equal(t, 2029, strict.Year())

	legacy, ok := result.Fields.Advance(after, true)
	require.True(t, ok)
	assert.Equal(t, 2021, legacy.Year())
}

// Scenario 6: 0 0 0 29 FEB SAT strict mode from 2021-10-13 -> 2048-02-29.
func TestAdvance_StrictLeapDaySaturday(t *testing.T) {
	result := mustCompile(t, "0 0 0 29 FEB SAT")
	after := time.Date(2021, 10, 13, 0, 0, 0, 0, time.UTC)

	got, ok := result.Fields.Advance(after, false)
	require.True(t, ok)
	assert.Equal(t, time.Date(2048, 2, 29, 0, 0, 0, 0, time.UTC), got)
}

// Scenario 7: iterating a daily-midnight schedule 365 times lands
// exactly 365 calendar days after the start, at local midnight.
func TestAdvance_DailyIteratedOneYear(t *testing.T) {
	result := mustCompile(t, "0 0 0 * * *")
	start := time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)

	cur := start
	var ok bool
	for i := 0; i < 365; i++ {
		cur, ok = result.Fields.Advance(cur, false)
		require.True(t, ok)
	}
	assert.Equal(t, start.AddDate(0, 0, 365), cur)
}

func TestAdvance_RoundTripBrokenDownTime(t *testing.T) {
	instant := time.Date(2025, 7, 4, 13, 45, 30, 0, time.UTC)
	bdt := FromTime(instant)
	assert.True(t, bdt.ToTime().Equal(instant))
}

func TestPrevious_MirrorsAdvance(t *testing.T) {
	result := mustCompile(t, "0 0 0 L * *")
	before := time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)

	got, ok := result.Fields.Previous(before, false)
	require.True(t, ok)
	assert.Equal(t, time.Date(2022, 2, 28, 0, 0, 0, 0, time.UTC), got)
}

func TestDescribe_OneShotFallsBackToInstant(t *testing.T) {
	desc := Describe("2030-06-15T09:30:00Z")
	assert.Contains(t, desc, "2030-06-15")
}

func TestDescribe_InvalidExpressionEchoesInput(t *testing.T) {
	assert.Equal(t, "not a cron expression", Describe("not a cron expression"))
}
