// Package interp evaluates parsed command trees. The evaluator owns the
// execution context (working directory, exported environment, shell-local
// variables, stdio endpoints) and dispatches simple commands to registered
// handlers, builtins, or external processes, in that order.
package interp

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/go-shx/shx/errors"
	"github.com/go-shx/shx/internal/env"
	"github.com/go-shx/shx/internal/iox"
	"github.com/go-shx/shx/internal/logger"
	"github.com/go-shx/shx/syntax"
)

// Handler implements a command registered on the runner. Handlers shadow
// builtins of the same name.
type Handler func(ctx context.Context, hc *HandlerContext) int

// HandlerContext carries everything a registered command needs for one
// invocation.
type HandlerContext struct {
	// Args holds the expanded argv, including the command name at Args[0].
	Args []string
	// Env is the exported environment merged with any NAME=value prefixes
	// of this invocation.
	Env map[string]string
	// Dir is the working directory at the time of the call.
	Dir string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Runner gives handlers access to the surrounding execution context,
	// e.g. to change the directory or export variables.
	Runner *Runner
}

// Runner is the execution context threaded through AST evaluation.
type Runner struct {
	// Dir is the current working directory, always absolute.
	Dir string
	// Env is the exported environment, passed to child processes.
	Env map[string]string
	// Vars holds shell-local variables, visible to expansion but not to
	// children.
	Vars map[string]string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Custom maps command names to registered handlers.
	Custom map[string]Handler

	// Fs is the filesystem used for redirects and file-related builtins.
	Fs afero.Fs

	Logger *logger.Logger

	lastCode int
}

// NewRunner returns a runner bound to the host process: its working
// directory, environment and stdio.
func NewRunner() *Runner {
	wd, err := os.Getwd()
	if err != nil {
		wd = string(os.PathSeparator)
	}
	return &Runner{
		Dir:    wd,
		Env:    env.FromList(os.Environ()),
		Vars:   map[string]string{},
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Fs:     afero.NewOsFs(),
		Logger: logger.New(),
	}
}

// LastCode returns the exit code of the most recently completed command.
func (r *Runner) LastCode() int {
	return r.lastCode
}

// Lookup resolves a variable name against shell-local variables first and
// the exported environment second.
func (r *Runner) Lookup(name string) (string, bool) {
	if v, ok := r.Vars[name]; ok {
		return v, true
	}
	v, ok := r.Env[name]
	return v, ok
}

// Export moves a value into the exported environment.
func (r *Runner) Export(name, value string) {
	delete(r.Vars, name)
	r.Env[name] = value
}

// clone produces an isolated copy for subshells, pipeline stages and
// background items. The handler registry and filesystem are shared.
func (r *Runner) clone() *Runner {
	return &Runner{
		Dir:      r.Dir,
		Env:      env.Merge(r.Env, nil),
		Vars:     env.Merge(r.Vars, nil),
		Stdin:    r.Stdin,
		Stdout:   r.Stdout,
		Stderr:   r.Stderr,
		Custom:   r.Custom,
		Fs:       r.Fs,
		Logger:   r.Logger,
		lastCode: r.lastCode,
	}
}

type stdio struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// Run evaluates a parsed list and returns its exit code. Cancellation of
// ctx stops further steps, terminates live children and yields code 124.
func (r *Runner) Run(ctx context.Context, list *syntax.SequentialList) int {
	code, _ := r.evalList(ctx, list, stdio{in: r.Stdin, out: r.Stdout, err: r.Stderr})
	r.lastCode = code
	return code
}

func (r *Runner) evalList(ctx context.Context, list *syntax.SequentialList, io stdio) (int, bool) {
	var wg sync.WaitGroup
	defer wg.Wait()

	code := 0
	for _, item := range list.Items {
		if ctx.Err() != nil {
			return errors.CodeTimeout, true
		}
		if item.Async {
			sub := r.clone()
			node := item.Node
			wg.Add(1)
			go func() {
				defer wg.Done()
				sub.evalNode(ctx, node, io)
			}()
			continue
		}
		var exit bool
		code, exit = r.evalNode(ctx, item.Node, io)
		r.lastCode = code
		if exit {
			return code, true
		}
	}
	return code, false
}

func (r *Runner) evalNode(ctx context.Context, node syntax.Node, io stdio) (int, bool) {
	if ctx.Err() != nil {
		return errors.CodeTimeout, true
	}
	switch n := node.(type) {
	case *syntax.SequentialList:
		return r.evalList(ctx, n, io)
	case *syntax.BooleanList:
		return r.evalBoolean(ctx, n, io)
	case *syntax.Pipeline:
		return r.evalPipeline(ctx, n, io)
	case *syntax.SimpleCommand:
		return r.evalSimple(ctx, n, io)
	case *syntax.Subshell:
		sub := r.clone()
		code, _ := sub.evalList(ctx, n.Inner, io)
		return code, false
	default:
		fmt.Fprintf(io.err, "shx: cannot evaluate %T\n", node)
		return errors.CodeUsage, false
	}
}

func (r *Runner) evalBoolean(ctx context.Context, n *syntax.BooleanList, io stdio) (int, bool) {
	code, exit := r.evalNode(ctx, n.Left, io)
	r.lastCode = code
	if exit {
		return code, true
	}
	if (n.Op == syntax.AndOp) != (code == 0) {
		return code, false
	}
	code, exit = r.evalNode(ctx, n.Right, io)
	r.lastCode = code
	return code, exit
}

// evalPipeline runs both sides concurrently with a byte channel between
// them. Each side evaluates against a cloned context, so stage-local state
// changes do not leak. The pipeline's code is the rightmost stage's code.
func (r *Runner) evalPipeline(ctx context.Context, n *syntax.Pipeline, sio stdio) (int, bool) {
	pr, pw := io.Pipe()

	leftIO := stdio{in: sio.in, out: pw, err: sio.err}
	if n.StderrToo {
		leftIO.err = pw
	}
	rightIO := stdio{in: pr, out: sio.out, err: sio.err}

	left := r.clone()
	right := r.clone()

	var code int
	var g errgroup.Group
	g.Go(func() error {
		defer pw.Close()
		left.evalNode(ctx, n.Left, leftIO)
		return nil
	})
	g.Go(func() error {
		// Unblock the left side if this one stops reading early.
		defer pr.CloseWithError(io.EOF)
		code, _ = right.evalNode(ctx, n.Right, rightIO)
		return nil
	})
	_ = g.Wait()
	return code, false
}

func (r *Runner) evalSimple(ctx context.Context, n *syntax.SimpleCommand, sio stdio) (int, bool) {
	prefix := make(map[string]string, len(n.Assigns))
	prefixOrder := make([]string, 0, len(n.Assigns))
	for _, assign := range n.Assigns {
		prefix[assign.Name] = r.expandWord(ctx, assign.Value, sio)
		prefixOrder = append(prefixOrder, assign.Name)
	}

	if len(n.Args) == 0 {
		// Pure assignment: the prefixes become shell-local variables.
		for _, name := range prefixOrder {
			r.Vars[name] = prefix[name]
		}
		if len(n.Redirects) == 0 {
			return 0, false
		}
	}

	argv := make([]string, 0, len(n.Args))
	for _, w := range n.Args {
		argv = append(argv, r.expandWord(ctx, w, sio))
	}

	cio, cleanup, err := r.applyRedirects(ctx, n.Redirects, sio)
	if err != nil {
		fmt.Fprintf(sio.err, "shx: %v\n", err)
		return 1, false
	}
	defer cleanup()

	if len(argv) == 0 {
		return 0, false
	}

	name := argv[0]
	if handler, ok := r.Custom[name]; ok {
		hc := &HandlerContext{
			Args:   argv,
			Env:    env.Merge(r.Env, prefix),
			Dir:    r.Dir,
			Stdin:  cio.in,
			Stdout: cio.out,
			Stderr: cio.err,
			Runner: r,
		}
		return handler(ctx, hc), false
	}
	if builtin, ok := builtins[name]; ok {
		return builtin(ctx, r, cio, argv[1:], prefix)
	}
	return r.spawn(ctx, argv, prefix, cio), false
}

// expandWord expands every segment of a word and concatenates the results
// into exactly one argv element. Expansion never field-splits.
func (r *Runner) expandWord(ctx context.Context, w *syntax.Word, sio stdio) string {
	var b strings.Builder
	for _, part := range w.Parts {
		b.WriteString(r.expandPart(ctx, part, sio))
	}
	return b.String()
}

func (r *Runner) expandPart(ctx context.Context, part syntax.WordPart, sio stdio) string {
	switch p := part.(type) {
	case *syntax.Lit:
		return p.Text
	case *syntax.EnvVar:
		v, _ := r.Lookup(p.Name)
		return v
	case *syntax.Quoted:
		return r.expandWord(ctx, p.Word, sio)
	case *syntax.CmdSubst:
		var buf iox.Buffer
		sub := r.clone()
		sub.evalList(ctx, p.List, stdio{in: sio.in, out: &buf, err: sio.err})
		return iox.TrimTrailingNewlines(string(buf.Bytes()))
	default:
		return ""
	}
}
