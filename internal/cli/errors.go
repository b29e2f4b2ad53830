package cli

import (
	"errors"

	"github.com/mesh-intelligence/arbor/pkg/types"
)

// exitError attaches a process exit code to an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

func userError(err error) error {
	return &exitError{code: exitUserError, err: err}
}

func sysError(err error) error {
	return &exitError{code: exitSysError, err: err}
}

// treeError classifies an error from a tree operation: caller mistakes are
// user errors, everything else (persistence, corrupt store) is a system error.
func treeError(err error) error {
	switch {
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrAlreadyExists),
		errors.Is(err, types.ErrInvalidMove),
		errors.Is(err, types.ErrInvalidID):
		return userError(err)
	default:
		return sysError(err)
	}
}

// exitCode returns the exit code for err. Errors raised by cobra itself
// (unknown command, bad flags, wrong argument count) are user errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}
