//go:build windows

package interp

import "os/exec"

// terminate kills the child outright. Windows has no portable equivalent
// of a polite termination signal.
func terminate(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
