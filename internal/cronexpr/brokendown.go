package cronexpr

import "time"

// BrokenDownTime is a mutable calendar tuple used while cascading the
// Advancer through seconds, minutes, hours, days, and months. Month is
// stored 0-based (0=January) to match time.Month arithmetic; callers
// that need the 1-based field value add one.
type BrokenDownTime struct {
	Year   int
	Month  int // 0-based: 0=January ... 11=December
	Day    int
	Hour   int
	Minute int
	Second int
	Loc    *time.Location
}

// FromTime captures t's calendar fields in the given location.
func FromTime(t time.Time) BrokenDownTime {
	return BrokenDownTime{
		Year:   t.Year(),
		Month:  int(t.Month()) - 1,
		Day:    t.Day(),
		Hour:   t.Hour(),
		Minute: t.Minute(),
		Second: t.Second(),
		Loc:    t.Location(),
	}
}

// ToTime reconstructs an instant from the tuple. Out-of-range fields
// (e.g. Day 32) normalize the way time.Date normalizes them, which the
// Advancer relies on for month/day carry.
func (b BrokenDownTime) ToTime() time.Time {
	return time.Date(b.Year, time.Month(b.Month+1), b.Day, b.Hour, b.Minute, b.Second, 0, b.Loc)
}
