package cronexpr

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// field indices, in grammar order: second minute hour day-of-month month day-of-week
const (
	fieldSecond = iota
	fieldMinute
	fieldHour
	fieldDom
	fieldMonth
	fieldDow
	fieldCount
)

var fieldNames = [fieldCount]string{"second", "minute", "hour", "day-of-month", "month", "day-of-week"}
var fieldMin = [fieldCount]int{0, 0, 0, 1, 1, 0}
var fieldMax = [fieldCount]int{59, 59, 23, 31, 12, 7}

var monthNames = []string{"JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}
var dowNames = []string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

var aliasExpansions = map[string]string{
	"@yearly":   "0 0 0 1 1 *",
	"@annually": "0 0 0 1 1 *",
	"@monthly":  "0 0 0 1 * *",
	"@weekly":   "0 0 0 * * 0",
	"@daily":    "0 0 0 * * *",
	"@hourly":   "0 0 * * * *",
}

var isoLiteralShape = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}([T ]\d{2}:\d{2}(:\d{2})?(Z|[+-]\d{2}:?\d{2})?)?$`)

var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// CompileResult is the product of a successful Compile call: either a
// FieldSet-based recurring pattern, or a single fixed instant (OneShot).
type CompileResult struct {
	Fields    *FieldSet
	OneShot   time.Time
	IsOneShot bool
}

// Compile parses a six-field cron expression, a recognized @alias, or an
// ISO-8601 literal into a CompileResult. All failures are returned as
// *CompileError and are non-recoverable: callers must surface them
// synchronously rather than retry.
func Compile(expr string) (*CompileResult, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return nil, newError(ErrWrongFieldCount, "", expr, "expression is empty")
	}

	if strings.HasPrefix(trimmed, "@") {
		expansion, ok := aliasExpansions[strings.ToLower(trimmed)]
		if !ok {
			return nil, newError(ErrUnknownAlias, "", expr, "unrecognized alias "+trimmed)
		}
		fields, err := compileFields(expansion)
		if err != nil {
			return nil, err
		}
		return &CompileResult{Fields: fields}, nil
	}

	if !strings.ContainsAny(trimmed, " \t") && isoLiteralShape.MatchString(trimmed) {
		instant, err := parseIsoLiteral(trimmed)
		if err != nil {
			return nil, err
		}
		return &CompileResult{OneShot: instant, IsOneShot: true}, nil
	}

	fields, err := compileFields(trimmed)
	if err != nil {
		return nil, err
	}
	return &CompileResult{Fields: fields}, nil
}

func parseIsoLiteral(literal string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, literal); err == nil {
			return t, nil
		}
	}
	// Strict calendar validation: reject e.g. month 13 or day 32 even
	// though the textual shape looked like a date.
	return time.Time{}, newError(ErrInvalidIsoLiteral, "", literal, "not a valid ISO-8601 instant")
}

func compileFields(expr string) (*FieldSet, error) {
	parts := strings.Fields(expr)
	if len(parts) != fieldCount {
		return nil, newError(ErrWrongFieldCount, "", expr, "expected 6 whitespace-separated fields, got "+strconv.Itoa(len(parts)))
	}

	fs := newFieldSet()
	for idx, raw := range parts {
		if err := compileField(fs, idx, raw); err != nil {
			return nil, err
		}
	}

	if fs.isDowSet(7) {
		fs.setDow(0)
	}

	return fs, nil
}

func compileField(fs *FieldSet, idx int, raw string) error {
	name := fieldNames[idx]

	if raw == "*" {
		if idx == fieldDom {
			fs.domWildcard = true
		}
		if idx == fieldDow {
			fs.dowWildcard = true
		}
	}

	if err := checkCharset(idx, raw); err != nil {
		return err
	}

	for _, atom := range strings.Split(raw, ",") {
		if atom == "" {
			return newError(ErrInvalidField, name, raw, "empty atom in "+name+" field")
		}
		if err := compileAtom(fs, idx, atom); err != nil {
			return err
		}
	}
	return nil
}

// checkCharset enforces the character-class rule: outside alias and name
// substitution, fields may contain only 0-9 , - * / and, in the
// day-of-month field only, the letter L.
func checkCharset(idx int, raw string) error {
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
		case r == ',' || r == '-' || r == '*' || r == '/':
		case (r == 'L' || r == 'l') && idx == fieldDom:
		case idx == fieldMonth && isAlpha(r):
		case idx == fieldDow && isAlpha(r):
		default:
			return newError(ErrIllegalCharacter, fieldNames[idx], raw, "illegal character "+string(r))
		}
	}
	return nil
}

func isAlpha(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

func compileAtom(fs *FieldSet, idx int, atom string) error {
	name := fieldNames[idx]

	if atom == "*" {
		for v := fieldMin[idx]; v <= fieldMax[idx]; v++ {
			setFieldValue(fs, idx, v)
		}
		return nil
	}

	if idx == fieldDom && (atom == "L" || atom == "l") {
		fs.lastDayOfMonth = true
		return nil
	}

	if strings.HasPrefix(atom, "*/") {
		step, err := strconv.Atoi(atom[2:])
		if err != nil {
			return newError(ErrInvalidStep, name, atom, "step is not numeric")
		}
		domainSize := fieldMax[idx] - fieldMin[idx] + 1
		if step < 1 || step > domainSize {
			return newError(ErrInvalidStep, name, atom, "step out of range")
		}
		for v := fieldMin[idx]; v <= fieldMax[idx]; v += step {
			setFieldValue(fs, idx, v)
		}
		return nil
	}

	if strings.Contains(atom, "-") {
		bounds := strings.SplitN(atom, "-", 2)
		from, err := resolveToken(idx, bounds[0])
		if err != nil {
			return err
		}
		to, err := resolveToken(idx, bounds[1])
		if err != nil {
			return err
		}
		if from > to {
			return newError(ErrInvalidRange, name, atom, "range start exceeds range end")
		}
		for v := from; v <= to; v++ {
			setFieldValue(fs, idx, v)
		}
		return nil
	}

	value, err := resolveToken(idx, atom)
	if err != nil {
		return err
	}
	setFieldValue(fs, idx, value)
	return nil
}

func resolveToken(idx int, token string) (int, error) {
	name := fieldNames[idx]

	if idx == fieldMonth {
		if v := matchName(token, monthNames); v >= 0 {
			return v + 1, nil
		}
	}
	if idx == fieldDow {
		if v := matchName(token, dowNames); v >= 0 {
			return v, nil
		}
	}

	value, err := strconv.Atoi(token)
	if err != nil {
		return 0, newError(ErrInvalidField, name, token, "not a recognized value")
	}
	if value < fieldMin[idx] || value > fieldMax[idx] {
		return 0, newError(ErrOutOfRange, name, token, "value out of range")
	}
	return value, nil
}

func matchName(token string, names []string) int {
	upper := strings.ToUpper(token)
	for i, candidate := range names {
		if candidate == upper {
			return i
		}
	}
	return -1
}

func setFieldValue(fs *FieldSet, idx, v int) {
	switch idx {
	case fieldSecond:
		fs.setSecond(v)
	case fieldMinute:
		fs.setMinute(v)
	case fieldHour:
		fs.setHour(v)
	case fieldDom:
		fs.setDom(v)
	case fieldMonth:
		fs.setMonth(v)
	case fieldDow:
		fs.setDow(v)
	}
}
