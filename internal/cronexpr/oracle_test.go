package cronexpr

import (
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"
)

// oracleParser accepts the same six-field (seconds-first) layout
// cronexpr.Compile does, for the subset of the grammar both libraries
// share (no L sentinel, no ISO literals, no named-alias expansion
// differences). robfig/cron/v3 is never imported by production code —
// see DESIGN.md — it exists only here, as an independent correctness
// check on the field-cascade arithmetic.
var oracleParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

func TestAdvance_AgreesWithIndependentParser(t *testing.T) {
	expressions := []string{
		"0 0 0 * * *",
		"0 */15 * * * *",
		"0 30 9 1 * *",
		"0 0 12 * * 1-5",
		"0 0 0 1,15 * *",
	}
	reference := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, expr := range expressions {
		t.Run(expr, func(t *testing.T) {
			ours := mustCompile(t, expr)
			theirs, err := oracleParser.Parse(expr)
			require.NoError(t, err)

			cursor := reference
			for i := 0; i < 20; i++ {
				ourNext, ok := ours.Fields.Advance(cursor, true)
				require.True(t, ok)
				theirNext := theirs.Next(cursor)
				require.True(t, ourNext.Equal(theirNext), "iteration %d: ours=%v theirs=%v", i, ourNext, theirNext)
				cursor = ourNext
			}
		})
	}
}
