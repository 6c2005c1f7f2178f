package shx

import (
	"time"

	"github.com/go-shx/shx/internal/timeext"
)

// DurationSource yields successive durations. Timeout consumes one value
// per builder, which makes a source usable as a retry backoff schedule.
type DurationSource = timeext.Source

// ExponentialBackoff returns a source that starts at initial and doubles
// on every call, capped at max when max is non-zero.
func ExponentialBackoff(initial, max time.Duration) DurationSource {
	return timeext.NewExponentialBackoff(initial, max)
}
