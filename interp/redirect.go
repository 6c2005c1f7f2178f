package interp

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-shx/shx/internal/filepathext"
	"github.com/go-shx/shx/syntax"
)

// applyRedirects resolves the command's redirects against the base stdio
// and returns the effective stdio plus a cleanup closing every file the
// redirects opened. Redirects apply left to right, so a later one for the
// same fd wins and a dup like 2>&1 sees the fd table as rewritten so far.
func (r *Runner) applyRedirects(ctx context.Context, redirects []syntax.Redirect, base stdio) (stdio, func(), error) {
	cur := base
	var closers []io.Closer
	cleanup := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	for _, redir := range redirects {
		if redir.DupFd >= 0 {
			src, err := fdWriter(cur, redir.DupFd)
			if err != nil {
				cleanup()
				return base, func() {}, err
			}
			switch redir.Fd {
			case 1:
				cur.out = src
			case 2:
				cur.err = src
			default:
				cleanup()
				return base, func() {}, fmt.Errorf("cannot duplicate onto fd %d", redir.Fd)
			}
			continue
		}

		name := r.expandWord(ctx, redir.Target, base)
		target := filepathext.Resolve(r.Dir, name)
		switch redir.Op {
		case syntax.RedirRead:
			f, err := r.Fs.Open(target)
			if err != nil {
				cleanup()
				return base, func() {}, fmt.Errorf("%s: no such file or directory", name)
			}
			closers = append(closers, f)
			cur.in = f
		case syntax.RedirWrite, syntax.RedirAppend:
			flag := os.O_WRONLY | os.O_CREATE
			if redir.Op == syntax.RedirAppend {
				flag |= os.O_APPEND
			} else {
				flag |= os.O_TRUNC
			}
			f, err := r.Fs.OpenFile(target, flag, 0o644)
			if err != nil {
				cleanup()
				return base, func() {}, fmt.Errorf("cannot open %s: %v", target, err)
			}
			closers = append(closers, f)
			switch redir.Fd {
			case 1:
				cur.out = f
			case 2:
				cur.err = f
			default:
				cleanup()
				return base, func() {}, fmt.Errorf("unsupported redirect fd %d", redir.Fd)
			}
		}
	}
	return cur, cleanup, nil
}

func fdWriter(s stdio, fd int) (io.Writer, error) {
	switch fd {
	case 1:
		return s.out, nil
	case 2:
		return s.err, nil
	default:
		return nil, fmt.Errorf("cannot duplicate fd %d", fd)
	}
}
