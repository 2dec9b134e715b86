// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"tasker/internal/config"
	"tasker/internal/service"
	"tasker/internal/session"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a live session.
	// Commands like help, version, login, logout return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, backend settings).
	// svc and sess are nil if NeedsAuth() returns false, unless the command
	// is a ServiceUser and a live session exists.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, svc service.Service, sess *session.Session, args []string, out, errOut io.Writer) int
}

// ServiceUser is implemented by commands that run without a session but use
// the backend when one exists. The dispatcher then passes both svc and sess.
type ServiceUser interface {
	UsesService() bool
}
