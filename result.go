package shx

import (
	"github.com/go-shx/shx/internal/iox"
)

// Result is the outcome of one execution: the final exit code, the timeout
// flag and whatever output the stdio modes captured.
type Result struct {
	// Code is the exit code of the last synchronous command.
	Code int
	// TimedOut reports whether the execution was cut short by Timeout or
	// by cancellation of the caller's context.
	TimedOut bool

	stdout   []byte
	stderr   []byte
	combined []byte
}

// Text returns captured stdout decoded as UTF-8 with exactly one trailing
// newline removed, if present.
func (r *Result) Text() string {
	return iox.Text(r.stdout)
}

// Lines returns captured stdout split on newlines, without a trailing
// empty element.
func (r *Result) Lines() []string {
	return iox.Lines(r.stdout)
}

// JSON decodes captured stdout into v.
func (r *Result) JSON(v any) error {
	return iox.JSON(r.stdout, v)
}

// Bytes returns the raw captured stdout.
func (r *Result) Bytes() []byte {
	return r.stdout
}

// StderrText returns captured stderr with one trailing newline removed.
func (r *Result) StderrText() string {
	return iox.Text(r.stderr)
}

// StderrBytes returns the raw captured stderr.
func (r *Result) StderrBytes() []byte {
	return r.stderr
}

// CombinedBytes returns the captured streams interleaved in arrival
// order.
func (r *Result) CombinedBytes() []byte {
	return r.combined
}

// CombinedText returns the combined capture with one trailing newline
// removed.
func (r *Result) CombinedText() string {
	return iox.Text(r.combined)
}
