package shx

import (
	"context"

	"github.com/go-shx/shx/errors"
	"github.com/go-shx/shx/syntax"
)

// Child is a handle to an execution started in the background.
type Child struct {
	cancel context.CancelFunc
	done   chan struct{}
	result *Result
	err    error
}

// Start launches the command without waiting for it. Parse and builder
// usage errors are reported immediately; everything later is delivered
// through Wait.
func (b *Builder) Start(ctx context.Context) (*Child, error) {
	if b.err != nil {
		return nil, b.err
	}
	list, err := syntax.Parse(b.source)
	if err != nil {
		return nil, &errors.ScriptParseError{Source: b.source, Err: err}
	}

	ex := b.setup(ctx)
	child := &Child{
		cancel: ex.cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(child.done)
		defer ex.cancel()
		code := ex.runner.Run(ex.ctx, list)
		child.result, child.err = b.finish(ex, code)
	}()
	return child, nil
}

// Wait blocks until the execution finishes and returns its outcome, with
// the same failure policy as Run.
func (c *Child) Wait() (*Result, error) {
	<-c.done
	return c.result, c.err
}

// Abort cancels the execution. Live external processes are terminated and
// the eventual result carries the timeout code.
func (c *Child) Abort() {
	c.cancel()
}
