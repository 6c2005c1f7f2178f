package timeext

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var durationRegex = regexp.MustCompile(`^(\d+(?:\.\d+)?)(ms|s|m|h)$`)

// A Source yields successive durations, e.g. for retry backoff. ParseAny
// consumes one value from it per call.
type Source interface {
	Next() time.Duration
}

// Parse parses the duration mini-grammar: a bare integer is taken as
// milliseconds, otherwise the string must match ^\d+(\.\d+)?(ms|s|m|h)$.
func Parse(s string) (time.Duration, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Millisecond, nil
	}

	m := durationRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("timeext: invalid duration %q", s)
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("timeext: invalid duration %q", s)
	}

	var unit time.Duration
	switch m[2] {
	case "ms":
		unit = time.Millisecond
	case "s":
		unit = time.Second
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	}
	return time.Duration(value * float64(unit)), nil
}

// ParseSleep parses a sleep argument. Unlike Parse, a bare number is taken
// as seconds, matching sleep(1). Suffixed forms follow the duration grammar.
func ParseSleep(s string) (time.Duration, error) {
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(n * float64(time.Second)), nil
	}
	return Parse(s)
}

// ParseAny accepts an int (milliseconds), a string in the duration grammar,
// a time.Duration, or a Source whose next value is consumed.
func ParseAny(v any) (time.Duration, error) {
	switch d := v.(type) {
	case time.Duration:
		return d, nil
	case int:
		return time.Duration(d) * time.Millisecond, nil
	case int64:
		return time.Duration(d) * time.Millisecond, nil
	case string:
		return Parse(d)
	case Source:
		return d.Next(), nil
	default:
		return 0, fmt.Errorf("timeext: cannot interpret %T as a duration", v)
	}
}

// Format renders a duration for human-facing messages: "1 millisecond",
// "2 seconds", "1.5 seconds". Fractional seconds keep one decimal place.
func Format(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 1000 {
		return pluralize(float64(ms), "millisecond")
	}
	secs := float64(ms) / 1000
	if ms%1000 == 0 {
		return pluralize(secs, "second")
	}
	return fmt.Sprintf("%.1f seconds", secs)
}

func pluralize(n float64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", int64(n), unit)
}
