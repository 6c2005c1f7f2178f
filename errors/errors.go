package errors

import "errors"

// Exit codes reported by failed executions. They follow the POSIX shell
// conventions for command dispatch failures.
const (
	CodeOk            int = 0
	CodeUsage         int = 2
	CodeTimeout       int = 124
	CodeNotExecutable int = 126
	CodeNotFound      int = 127
)

// ShxError extends the standard error interface with a Code method. The code
// doubles as the exit code of the failed execution, which lets callers
// distinguish between classes of failure without string matching.
type ShxError interface {
	error
	Code() int
}

// New returns an error that formats as the given text. Each call to New
// returns a distinct error value even if the text is identical. This wraps
// the standard errors.New function so that we don't need to alias that
// package.
func New(text string) error {
	return errors.New(text)
}

// Is wraps the standard errors.Is function so that we don't need to alias that package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps the standard errors.As function so that we don't need to alias that package.
func As(err error, target any) bool {
	return errors.As(err, target)
}
