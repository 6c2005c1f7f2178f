//go:build !windows

package interp

import (
	"os/exec"
	"syscall"
)

// terminate asks the child to stop with SIGTERM. The runner's WaitDelay
// escalates to a kill if the child ignores it.
func terminate(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Signal(syscall.SIGTERM)
}
