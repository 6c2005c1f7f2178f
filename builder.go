package shx

import (
	"bytes"
	"context"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/elliotchance/orderedmap/v3"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"

	"github.com/go-shx/shx/errors"
	"github.com/go-shx/shx/internal/deepcopy"
	"github.com/go-shx/shx/internal/env"
	"github.com/go-shx/shx/internal/filepathext"
	"github.com/go-shx/shx/internal/iox"
	"github.com/go-shx/shx/internal/logger"
	"github.com/go-shx/shx/internal/timeext"
	"github.com/go-shx/shx/interp"
	"github.com/go-shx/shx/syntax"
)

// StdioMode selects how an output stream of an execution is attached.
type StdioMode int

const (
	// Inherit forwards the stream to the corresponding stream of the
	// builder's logger (the process stream by default).
	Inherit StdioMode = iota
	// Null discards the stream.
	Null
	// Piped captures the stream into the Result.
	Piped
	// InheritPiped both forwards and captures.
	InheritPiped
)

// Builder is an immutable execution configuration. Every mutator returns a
// copy, so builders can be stored and reused as templates.
type Builder struct {
	shx    *Shx
	source string
	// err holds the first builder misuse, surfaced by Run regardless of
	// NoThrow.
	err error

	stdin      io.Reader
	stdoutMode StdioMode
	stderrMode StdioMode

	cwd          string
	envOverrides *orderedmap.OrderedMap[string, string]
	timeout      time.Duration

	noThrow      bool
	noThrowCodes []int

	exportEnv    bool
	printCommand bool
	printSet     bool

	custom map[string]interp.Handler

	fs afero.Fs
}

func (b *Builder) clone() *Builder {
	c := *b
	c.envOverrides = deepcopy.OrderedMap(b.envOverrides)
	c.noThrowCodes = deepcopy.Slice(b.noThrowCodes)
	c.custom = deepcopy.Map(b.custom)
	return &c
}

func (b *Builder) fail(message string) *Builder {
	c := b.clone()
	if c.err == nil {
		c.err = &errors.UsageError{Message: message}
	}
	return c
}

// Stdin attaches the given reader as the execution's standard input.
func (b *Builder) Stdin(r io.Reader) *Builder {
	c := b.clone()
	c.stdin = r
	return c
}

// StdinText feeds the given text as standard input.
func (b *Builder) StdinText(s string) *Builder {
	return b.Stdin(strings.NewReader(s))
}

// StdinBytes feeds the given bytes as standard input.
func (b *Builder) StdinBytes(p []byte) *Builder {
	return b.Stdin(bytes.NewReader(p))
}

// Stdout sets the stdout attachment mode.
func (b *Builder) Stdout(mode StdioMode) *Builder {
	c := b.clone()
	c.stdoutMode = mode
	return c
}

// Stderr sets the stderr attachment mode.
func (b *Builder) Stderr(mode StdioMode) *Builder {
	c := b.clone()
	c.stderrMode = mode
	return c
}

// Quiet stops the named streams from reaching the parent. With no
// arguments both stdout and stderr are silenced.
func (b *Builder) Quiet(streams ...string) *Builder {
	c := b.clone()
	if len(streams) == 0 {
		c.stdoutMode = Piped
		c.stderrMode = Piped
		return c
	}
	for _, s := range streams {
		switch s {
		case "stdout":
			c.stdoutMode = Piped
		case "stderr":
			c.stderrMode = Piped
		default:
			return c.fail("quiet: unknown stream " + s)
		}
	}
	return c
}

// Cwd sets the working directory, resolved against the builder's current
// one. A leading ~ expands to the home directory.
func (b *Builder) Cwd(path string) *Builder {
	c := b.clone()
	expanded, err := homedir.Expand(path)
	if err != nil {
		return c.fail("cwd: " + err.Error())
	}
	c.cwd = filepathext.Resolve(c.baseDir(), expanded)
	return c
}

// Env adds one environment override for child processes and $NAME
// expansion.
func (b *Builder) Env(name, value string) *Builder {
	c := b.clone()
	c.envOverrides.Set(name, value)
	return c
}

// EnvMap merges the given overrides in key-sorted order.
func (b *Builder) EnvMap(vars map[string]string) *Builder {
	c := b.clone()
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		c.envOverrides.Set(name, vars[name])
	}
	return c
}

// EnvFile loads NAME=value pairs from a dotenv file as overrides. Values
// already set by Env keep precedence over the file.
func (b *Builder) EnvFile(path string) *Builder {
	c := b.clone()
	vars, err := godotenv.Read(filepathext.Resolve(c.baseDir(), path))
	if err != nil {
		return c.fail("env file: " + err.Error())
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if _, ok := c.envOverrides.Get(name); !ok {
			c.envOverrides.Set(name, vars[name])
		}
	}
	return c
}

// Timeout bounds the execution. It accepts a time.Duration, an int of
// milliseconds, a string in the duration grammar ("500ms", "1.5s", "2m"),
// or a timeext.Source whose next value is consumed.
func (b *Builder) Timeout(v any) *Builder {
	c := b.clone()
	d, err := timeext.ParseAny(v)
	if err != nil {
		return c.fail("timeout: " + err.Error())
	}
	if d <= 0 {
		return c.fail("timeout: duration must be positive")
	}
	c.timeout = d
	return c
}

// NoThrow stops Run from returning an error for non-zero exit codes. With
// arguments, only the listed codes are tolerated.
func (b *Builder) NoThrow(codes ...int) *Builder {
	c := b.clone()
	c.noThrow = true
	c.noThrowCodes = slices.Clone(codes)
	return c
}

// ExportEnv applies the final working directory and exported environment
// to the host process after a successful run.
func (b *Builder) ExportEnv(on ...bool) *Builder {
	c := b.clone()
	c.exportEnv = len(on) == 0 || on[0]
	return c
}

// PrintCommand echoes "> source" before running.
func (b *Builder) PrintCommand(on ...bool) *Builder {
	c := b.clone()
	c.printCommand = len(on) == 0 || on[0]
	c.printSet = true
	return c
}

// RegisterCommand adds a custom command, shadowing any builtin of the
// same name.
func (b *Builder) RegisterCommand(name string, handler interp.Handler) *Builder {
	c := b.clone()
	if c.custom == nil {
		c.custom = map[string]interp.Handler{}
	}
	c.custom[name] = handler
	return c
}

// RegisterCommands adds several custom commands at once.
func (b *Builder) RegisterCommands(handlers map[string]interp.Handler) *Builder {
	c := b.clone()
	if c.custom == nil {
		c.custom = make(map[string]interp.Handler, len(handlers))
	}
	for name, handler := range handlers {
		c.custom[name] = handler
	}
	return c
}

func (b *Builder) baseDir() string {
	if b.cwd != "" {
		return b.cwd
	}
	wd, err := os.Getwd()
	if err != nil {
		return string(os.PathSeparator)
	}
	return wd
}

func (b *Builder) shouldPrint() bool {
	if b.printSet {
		return b.printCommand
	}
	return b.shx.printCommand.Get()
}

// Run executes the command and returns its result. A non-zero exit code
// also yields a CommandFailedError unless NoThrow covers it; the Result is
// returned either way so captured output stays accessible.
func (b *Builder) Run(ctx context.Context) (*Result, error) {
	if b.err != nil {
		return nil, b.err
	}

	list, err := syntax.Parse(b.source)
	if err != nil {
		return nil, &errors.ScriptParseError{Source: b.source, Err: err}
	}

	ex := b.setup(ctx)
	defer ex.cancel()

	log := b.shx.logger.Get()
	log.VerboseErrf(logger.Yellow, "shx: ast: %s", spew.Sdump(list))
	if b.shouldPrint() {
		log.Errf(logger.Blue, "%s> %s", strings.Repeat("  ", b.shx.indent.Get()), b.source)
	}

	code := ex.runner.Run(ex.ctx, list)
	return b.finish(ex, code)
}

// execution bundles the per-run state Run and Start share.
type execution struct {
	ctx      context.Context
	cancel   context.CancelFunc
	runner   *interp.Runner
	stdout   *iox.Buffer
	stderr   *iox.Buffer
	combined *iox.Buffer
	hostEnv  map[string]string
}

func (b *Builder) setup(ctx context.Context) *execution {
	ex := &execution{
		stdout:   &iox.Buffer{},
		stderr:   &iox.Buffer{},
		combined: &iox.Buffer{},
	}
	if b.timeout > 0 {
		ex.ctx, ex.cancel = context.WithTimeout(ctx, b.timeout)
	} else {
		ex.ctx, ex.cancel = context.WithCancel(ctx)
	}

	// Pipeline stages and background items write concurrently; a shared
	// mutex keeps parent-stream writes whole.
	log := b.shx.logger.Get()
	var mu sync.Mutex
	out := b.attach(b.stdoutMode, iox.NewSyncWriter(log.Stdout, &mu), ex.stdout, ex.combined)
	errw := b.attach(b.stderrMode, iox.NewSyncWriter(log.Stderr, &mu), ex.stderr, ex.combined)

	ex.hostEnv = env.FromList(os.Environ())
	runEnv := env.Merge(ex.hostEnv, nil)
	for pair := b.envOverrides.Front(); pair != nil; pair = pair.Next() {
		runEnv[pair.Key] = pair.Value
	}

	fs := b.fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	ex.runner = &interp.Runner{
		Dir:    b.baseDir(),
		Env:    runEnv,
		Vars:   map[string]string{},
		Stdin:  b.stdin,
		Stdout: out,
		Stderr: errw,
		Custom: b.custom,
		Fs:     fs,
		Logger: log,
	}
	return ex
}

func (b *Builder) attach(mode StdioMode, parent io.Writer, capture, combined *iox.Buffer) io.Writer {
	switch mode {
	case Null:
		return io.Discard
	case Piped:
		return iox.Tee(capture, combined)
	case InheritPiped:
		return iox.Tee(parent, iox.Tee(capture, combined))
	default:
		return parent
	}
}

func (b *Builder) finish(ex *execution, code int) (*Result, error) {
	result := &Result{
		Code:     code,
		TimedOut: code == errors.CodeTimeout && ex.ctx.Err() != nil,
		stdout:   ex.stdout.Bytes(),
		stderr:   ex.stderr.Bytes(),
		combined: ex.combined.Bytes(),
	}
	if result.TimedOut && b.timeout > 0 {
		b.shx.logger.Get().VerboseErrf(logger.Yellow, "shx: timed out after %s", timeext.Format(b.timeout))
	}

	if code == 0 && b.exportEnv {
		if err := b.applyHostEffects(ex); err != nil {
			return result, err
		}
	}

	if code != 0 && !b.codeAllowed(code) {
		return result, &errors.CommandFailedError{
			Source:   b.source,
			ExitCode: code,
			TimedOut: result.TimedOut,
		}
	}
	return result, nil
}

func (b *Builder) codeAllowed(code int) bool {
	if !b.noThrow {
		return false
	}
	if len(b.noThrowCodes) == 0 {
		return true
	}
	return slices.Contains(b.noThrowCodes, code)
}

// applyHostEffects chdirs the host process into the runner's final
// directory and applies exported environment deltas.
func (b *Builder) applyHostEffects(ex *execution) error {
	if err := os.Chdir(ex.runner.Dir); err != nil {
		return err
	}
	for name, value := range ex.runner.Env {
		if old, ok := ex.hostEnv[name]; !ok || old != value {
			if err := os.Setenv(name, value); err != nil {
				return err
			}
		}
	}
	return nil
}

// Text runs the command with stdout captured and returns it decoded, with
// one trailing newline removed.
func (b *Builder) Text(ctx context.Context) (string, error) {
	result, err := b.Stdout(Piped).Run(ctx)
	if err != nil {
		return "", err
	}
	return result.Text(), nil
}

// Lines runs the command with stdout captured and returns its lines.
func (b *Builder) Lines(ctx context.Context) ([]string, error) {
	result, err := b.Stdout(Piped).Run(ctx)
	if err != nil {
		return nil, err
	}
	return result.Lines(), nil
}

// JSON runs the command with stdout captured and decodes it into v.
func (b *Builder) JSON(ctx context.Context, v any) error {
	result, err := b.Stdout(Piped).Run(ctx)
	if err != nil {
		return err
	}
	return result.JSON(v)
}

// Output runs the command with stdout captured and returns the raw bytes.
func (b *Builder) Output(ctx context.Context) ([]byte, error) {
	result, err := b.Stdout(Piped).Run(ctx)
	if err != nil {
		return nil, err
	}
	return result.Bytes(), nil
}
