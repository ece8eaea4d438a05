package cronexpr

import "time"

// yearHorizon bounds the search for a match before Advance gives up and
// reports no occurrence. Patterns that are merely rare rather than
// impossible can require a multi-decade jump (a strict-mode AND of a
// specific weekday against Feb 29 only recurs on leap years that also
// land on that weekday, a ~28-year cycle); 100 years comfortably covers
// that case while still bounding truly unsatisfiable patterns like day
// 31 of February, which are reported as no occurrence once the search
// has walked past the horizon.
const yearHorizon = 100

// Advance returns the earliest instant strictly after `after` accepted
// by fs, or ok=false if none exists within yearHorizon years. legacy
// selects OR semantics between day-of-month and day-of-week when both
// fields are explicitly constrained; strict (legacy=false) requires
// both to match.
func (fs *FieldSet) Advance(after time.Time, legacy bool) (time.Time, bool) {
	loc := after.Location()
	cur := BrokenDownTime{
		Year:   after.Year(),
		Month:  int(after.Month()) - 1,
		Day:    after.Day(),
		Hour:   after.Hour(),
		Minute: after.Minute(),
		Second: after.Second(),
		Loc:    loc,
	}
	cur = addSecond(cur)

	startYear := cur.Year
	for {
		if cur.Year > startYear+yearHorizon {
			return time.Time{}, false
		}

		if month, ok := fs.nextMonth(cur.Month); !ok {
			cur = BrokenDownTime{Year: cur.Year + 1, Month: 0, Day: 1, Loc: loc}
			continue
		} else if month != cur.Month {
			cur = BrokenDownTime{Year: cur.Year, Month: month, Day: 1, Loc: loc}
			continue
		}

		t := cur.ToTime()
		if !fs.dayMatches(t, legacy) {
			cur = addDay(cur)
			continue
		}

		if hour, ok := fs.nextHour(cur.Hour); !ok {
			cur = addDay(cur)
			continue
		} else if hour != cur.Hour {
			cur.Hour, cur.Minute, cur.Second = hour, 0, 0
			continue
		}

		if minute, ok := fs.nextMinute(cur.Minute); !ok {
			cur = addHour(cur)
			continue
		} else if minute != cur.Minute {
			cur.Minute, cur.Second = minute, 0
			continue
		}

		if second, ok := fs.nextSecond(cur.Second); !ok {
			cur = addMinute(cur)
			continue
		} else if second != cur.Second {
			cur.Second = second
			continue
		}

		return cur.ToTime(), true
	}
}

func addSecond(b BrokenDownTime) BrokenDownTime {
	b.Second++
	return BrokenDownTime(FromTime(b.ToTime()))
}

func addMinute(b BrokenDownTime) BrokenDownTime {
	b.Minute, b.Second = b.Minute+1, 0
	return BrokenDownTime(FromTime(b.ToTime()))
}

func addHour(b BrokenDownTime) BrokenDownTime {
	b.Hour, b.Minute, b.Second = b.Hour+1, 0, 0
	return BrokenDownTime(FromTime(b.ToTime()))
}

func addDay(b BrokenDownTime) BrokenDownTime {
	b.Day, b.Hour, b.Minute, b.Second = b.Day+1, 0, 0, 0
	return BrokenDownTime(FromTime(b.ToTime()))
}

// dayMatches implements the day-of-month/day-of-week combination rule:
// a field left as a bare "*" never constrains the match on its own; when
// both are explicitly constrained, legacy mode ORs them (either is
// enough) and strict mode ANDs them (both are required).
func (fs *FieldSet) dayMatches(t time.Time, legacy bool) bool {
	domOK := fs.domMatches(t)
	dowOK := fs.isDowSet(int(t.Weekday()))

	switch {
	case fs.dowWildcard && fs.domWildcard:
		return true
	case fs.dowWildcard:
		return domOK
	case fs.domWildcard:
		return dowOK
	case legacy:
		return domOK || dowOK
	default:
		return domOK && dowOK
	}
}

// domMatches reports whether t's day-of-month is accepted, combining any
// explicit day bits with the L (last-day-of-month) sentinel.
func (fs *FieldSet) domMatches(t time.Time) bool {
	if fs.isDomSet(t.Day()) {
		return true
	}
	if fs.lastDayOfMonth {
		lastDay := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
		return t.Day() == lastDay
	}
	return false
}

// Previous returns the latest instant strictly before `before` accepted
// by fs, or ok=false if none exists within yearHorizon years. It mirrors
// Advance by cascading backward through the same field order.
func (fs *FieldSet) Previous(before time.Time, legacy bool) (time.Time, bool) {
	loc := before.Location()
	cur := BrokenDownTime{
		Year:   before.Year(),
		Month:  int(before.Month()) - 1,
		Day:    before.Day(),
		Hour:   before.Hour(),
		Minute: before.Minute(),
		Second: before.Second(),
		Loc:    loc,
	}
	cur = subSecond(cur)

	startYear := cur.Year
	for {
		if cur.Year < startYear-yearHorizon {
			return time.Time{}, false
		}

		if month, ok := prevSetBit(uint64(fs.months), cur.Month, monthsSize); !ok {
			cur = lastInstantOfYear(cur.Year-1, loc)
			continue
		} else if month != cur.Month {
			cur = lastInstantOfMonth(cur.Year, month, loc)
			continue
		}

		t := cur.ToTime()
		if !fs.dayMatches(t, legacy) {
			cur = subDay(cur)
			continue
		}

		if hour, ok := prevSetBit(uint64(fs.hours), cur.Hour, hoursSize); !ok {
			cur = subDay(cur)
			continue
		} else if hour != cur.Hour {
			cur.Hour, cur.Minute, cur.Second = hour, 59, 59
			continue
		}

		if minute, ok := prevSetBit(fs.minutes, cur.Minute, minutesSize); !ok {
			cur = subHour(cur)
			continue
		} else if minute != cur.Minute {
			cur.Minute, cur.Second = minute, 59
			continue
		}

		if second, ok := prevSetBit(fs.seconds, cur.Second, secondsSize); !ok {
			cur = subMinute(cur)
			continue
		} else if second != cur.Second {
			cur.Second = second
			continue
		}

		return cur.ToTime(), true
	}
}

// prevSetBit returns the largest bit index in mask that is <= from,
// i.e. the largest accepted value at or before from.
func prevSetBit(mask uint64, from, size int) (int, bool) {
	if from >= size {
		from = size - 1
	}
	for i := from; i >= 0; i-- {
		if mask&(1<<uint(i)) != 0 {
			return i, true
		}
	}
	return 0, false
}

func subSecond(b BrokenDownTime) BrokenDownTime {
	return BrokenDownTime(FromTime(b.ToTime().Add(-time.Second)))
}

func subMinute(b BrokenDownTime) BrokenDownTime {
	t := time.Date(b.Year, time.Month(b.Month+1), b.Day, b.Hour, b.Minute, 59, 0, b.Loc).Add(-time.Minute)
	return BrokenDownTime(FromTime(t))
}

func subHour(b BrokenDownTime) BrokenDownTime {
	t := time.Date(b.Year, time.Month(b.Month+1), b.Day, b.Hour, 59, 59, 0, b.Loc).Add(-time.Hour)
	return BrokenDownTime(FromTime(t))
}

func subDay(b BrokenDownTime) BrokenDownTime {
	t := time.Date(b.Year, time.Month(b.Month+1), b.Day, 23, 59, 59, 0, b.Loc).AddDate(0, 0, -1)
	return BrokenDownTime(FromTime(t))
}

func lastInstantOfYear(year int, loc *time.Location) BrokenDownTime {
	return BrokenDownTime{Year: year, Month: 11, Day: 31, Hour: 23, Minute: 59, Second: 59, Loc: loc}
}

func lastInstantOfMonth(year, month0 int, loc *time.Location) BrokenDownTime {
	lastDay := time.Date(year, time.Month(month0+2), 0, 0, 0, 0, 0, loc).Day()
	return BrokenDownTime{Year: year, Month: month0, Day: lastDay, Hour: 23, Minute: 59, Second: 59, Loc: loc}
}
