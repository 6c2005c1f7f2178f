package term

import (
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether both stdout and stderr are attached to a
// terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}
