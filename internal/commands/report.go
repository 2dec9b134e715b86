package commands

import (
	"errors"
	"fmt"
	"io"

	"tasker/internal/config"
	"tasker/internal/exitcode"
	"tasker/internal/logging"
	"tasker/internal/service"
	"tasker/internal/session"
	"tasker/internal/tasksync"
)

// reportError prints err for the user and returns the matching exit code.
func reportError(errOut io.Writer, err error) int {
	var oor errOutOfRange
	switch {
	case errors.Is(err, session.ErrNoSession):
		fmt.Fprintln(errOut, "error: not logged in (run: tasker login)")
		return exitcode.AuthError
	case errors.As(err, &oor):
		fmt.Fprintf(errOut, "error: %v\n", oor)
		return exitcode.UserError
	case errors.Is(err, ErrTaskRefRequired):
		fmt.Fprintln(errOut, "error: task reference required")
		return exitcode.UserError
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintln(errOut, "error: task not found")
		return exitcode.UserError
	case errors.Is(err, service.ErrValidation):
		fmt.Fprintf(errOut, "error: rejected by backend: %v\n", err)
		return exitcode.BackendError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

// reportTaskError is reportError for an intent on one task. A task the
// backend no longer has is named by the reference the user gave.
func reportTaskError(errOut io.Writer, err error, ref TaskRef) int {
	if errors.Is(err, service.ErrNotFound) {
		fmt.Fprintf(errOut, "error: task not found: %s\n", ref)
		return exitcode.UserError
	}
	return reportError(errOut, err)
}

// reportRefError reports a task reference that could not be parsed.
func reportRefError(errOut io.Writer, err error) int {
	if errors.Is(err, ErrTaskRefRequired) {
		fmt.Fprintln(errOut, "error: task reference required")
	} else {
		fmt.Fprintf(errOut, "error: %v\n", err)
	}
	return exitcode.UserError
}

// newSynchronizer builds the synchronizer for one command run.
func newSynchronizer(cfg *config.Config, svc service.Service, sess *session.Session, errOut io.Writer) *tasksync.Synchronizer {
	log := logging.New(errOut, cfg.Debug)
	return tasksync.New(svc, *sess, tasksync.WithLogger(log))
}
