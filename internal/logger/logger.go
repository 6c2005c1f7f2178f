// Package logger wraps stdout/stderr printing with optional color, in the
// style used across the rest of the module.
package logger

import (
	"io"
	"os"

	"github.com/go-shx/shx/internal/env"
	"github.com/go-shx/shx/internal/term"
)

// Logger prints to Stdout or Stderr with optional color.
type Logger struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Verbose bool
	Color   bool
}

// New returns a logger bound to the process stdout/stderr with color
// enabled when both are terminals. SHX_COLOR forces color on or off.
func New() *Logger {
	colorOn := term.IsTerminal()
	if forced, ok := env.GetShxEnvBool("COLOR"); ok {
		colorOn = forced
	}
	return &Logger{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Color:  colorOn,
	}
}

// Outf prints to Stdout with a trailing newline.
func (l *Logger) Outf(color Color, s string, args ...any) {
	l.FOutf(l.Stdout, color, s+"\n", args...)
}

// FOutf prints to the given writer.
func (l *Logger) FOutf(w io.Writer, color Color, s string, args ...any) {
	if len(args) == 0 {
		s, args = "%s", []any{s}
	}
	if !l.Color {
		color = Default
	}
	print := color()
	print(w, s, args...)
}

// VerboseOutf prints to Stdout if verbose mode is enabled.
func (l *Logger) VerboseOutf(color Color, s string, args ...any) {
	if l.Verbose {
		l.Outf(color, s, args...)
	}
}

// Errf prints to Stderr with a trailing newline.
func (l *Logger) Errf(color Color, s string, args ...any) {
	l.FOutf(l.Stderr, color, s+"\n", args...)
}

// VerboseErrf prints to Stderr if verbose mode is enabled.
func (l *Logger) VerboseErrf(color Color, s string, args ...any) {
	if l.Verbose {
		l.Errf(color, s, args...)
	}
}
