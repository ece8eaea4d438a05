package cronexpr

import (
	"github.com/lnquy/cron"
)

var descriptor, _ = cron.NewDescriptor(cron.Use24HourTimeFormat(true))

// Describe renders a compiled expression as an English sentence, with
// times of day on a 24-hour clock (no AM/PM). OneShot literals describe
// as the instant itself; descriptor errors (malformed input that somehow slipped past
// Compile) fall back to echoing the raw expression.
func Describe(expr string) string {
	result, err := Compile(expr)
	if err != nil {
		return expr
	}
	if result.IsOneShot {
		return "once at " + result.OneShot.Format("2006-01-02 15:04:05 MST")
	}
	text, err := descriptor.ToDescription(expr, cron.Locale_en)
	if err != nil {
		return expr
	}
	return text
}
