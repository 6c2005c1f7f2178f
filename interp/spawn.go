package interp

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"time"

	"github.com/sajari/fuzzy"

	shxerrors "github.com/go-shx/shx/errors"
	"github.com/go-shx/shx/internal/env"
	"github.com/go-shx/shx/internal/logger"
)

// terminateGrace is how long a cancelled child gets between the polite
// termination signal and the hard kill.
const terminateGrace = 100 * time.Millisecond

// spawn runs argv as an external process. Lookup failures map to 127 with
// a suggestion when a close command name exists, permission failures to
// 126 and cancellation to 124.
func (r *Runner) spawn(ctx context.Context, argv []string, prefix map[string]string, sio stdio) int {
	name := argv[0]
	path, err := exec.LookPath(name)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			notFound := &shxerrors.CommandNotFoundError{
				Command:    name,
				DidYouMean: r.suggest(name),
			}
			fmt.Fprintf(sio.err, "%v\n", notFound)
			return notFound.Code()
		}
		notExec := &shxerrors.NotExecutableError{Command: name}
		fmt.Fprintf(sio.err, "%v\n", notExec)
		return notExec.Code()
	}

	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	cmd.Dir = r.Dir
	cmd.Env = env.ToList(env.Merge(r.Env, prefix))
	cmd.Stdin = sio.in
	cmd.Stdout = sio.out
	cmd.Stderr = sio.err
	cmd.Cancel = func() error { return terminate(cmd) }
	cmd.WaitDelay = terminateGrace

	r.Logger.VerboseErrf(logger.Yellow, "shx: exec %s", path)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return shxerrors.CodeTimeout
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(sio.err, "shx: %s: %v\n", name, err)
		return shxerrors.CodeNotExecutable
	}
	return 0
}

// suggest returns the closest known command name within the fuzzy model's
// edit distance, or "" when nothing is close enough.
func (r *Runner) suggest(name string) string {
	model := fuzzy.NewModel()
	model.SetThreshold(1)
	model.SetDepth(2)
	known := make([]string, 0, len(builtins)+len(r.Custom))
	for b := range builtins {
		known = append(known, b)
	}
	for c := range r.Custom {
		known = append(known, c)
	}
	model.Train(known)
	if suggestion := model.SpellCheck(name); suggestion != name {
		return suggestion
	}
	return ""
}
