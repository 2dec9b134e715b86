// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, unknown task reference, missing login fields).
	UserError = 1

	// AuthError indicates a session or config error (not logged in, expired session, bad config.yaml).
	AuthError = 2

	// BackendError indicates a backend, network or server-side validation error.
	BackendError = 3
)
