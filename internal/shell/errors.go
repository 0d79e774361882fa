package shell

import (
	"errors"
	"fmt"
	"strings"
)

// ErrExit is the terminal-exit signal. Execute returns it, and nothing else,
// through its error result; callers stop feeding input when they see it.
var ErrExit = errors.New("exit")

// ErrorMarker prefixes every error line produced by Execute.
const ErrorMarker = "error: "

// UsageError reports a command invoked with the wrong number of arguments.
type UsageError struct {
	Command string
	Usage   string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s: wrong number of arguments, usage: %s", e.Command, e.Usage)
}

// UnboundVariableError reports a reference to an unset environment variable.
type UnboundVariableError struct {
	Name string
}

func (e *UnboundVariableError) Error() string {
	return fmt.Sprintf("environment variable $%s is not set", e.Name)
}

// IsError reports whether output is an error line.
func IsError(output string) bool {
	return strings.HasPrefix(output, ErrorMarker)
}

func failure(err error) string {
	return ErrorMarker + err.Error() + "\n"
}
