// Package shx runs shell-like command lines from Go with a consistent
// cross-platform interpretation: a small built-in command set, pipelines,
// redirects, environment scoping and command substitution all behave the
// same on every OS, while external commands still go through the host.
//
// The entry points are Command and Cmdf, which return an immutable Builder:
//
//	out, err := shx.Cmdf("git log -1 --format=%s", "%H").Text(ctx)
package shx

import (
	"github.com/elliotchance/orderedmap/v3"

	"github.com/go-shx/shx/internal/logger"
	"github.com/go-shx/shx/scoped"
)

// Shx is a builder factory carrying inheritable defaults: the logger, the
// print-command flag and the log indent level. Derive creates a child
// factory that sees this one's defaults until it overrides them.
type Shx struct {
	logger       *scoped.Value[*logger.Logger]
	printCommand *scoped.Value[bool]
	indent       *scoped.Value[int]
}

// New returns a root factory with process-bound defaults.
func New() *Shx {
	return &Shx{
		logger:       scoped.New(logger.New()),
		printCommand: scoped.New(false),
		indent:       scoped.New(0),
	}
}

// Derive returns a child factory inheriting every default from s. Setting
// a default on the child shadows s for the child and its descendants only.
func (s *Shx) Derive() *Shx {
	return &Shx{
		logger:       s.logger.Child(),
		printCommand: s.printCommand.Child(),
		indent:       s.indent.Child(),
	}
}

// SetLogger overrides the logger for this factory and its descendants.
func (s *Shx) SetLogger(l *logger.Logger) {
	s.logger.Set(l)
}

// Logger returns the effective logger.
func (s *Shx) Logger() *logger.Logger {
	return s.logger.Get()
}

// SetPrintCommand sets the default for echoing "> source" before runs.
func (s *Shx) SetPrintCommand(on bool) {
	s.printCommand.Set(on)
}

// SetIndent sets the indent level applied to printed command lines.
func (s *Shx) SetIndent(level int) {
	s.indent.Set(level)
}

// Command returns a builder for the given source text. The source is
// parsed when the builder runs.
func (s *Shx) Command(source string) *Builder {
	return &Builder{
		shx:          s,
		source:       source,
		envOverrides: orderedmap.NewOrderedMap[string, string](),
	}
}

// Default is the factory used by the package-level entry points.
var Default = New()

// Command returns a builder on the default factory.
func Command(source string) *Builder {
	return Default.Command(source)
}
