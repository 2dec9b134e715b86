package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"tasker/internal/config"
	"tasker/internal/exitcode"
	"tasker/internal/service"
	"tasker/internal/session"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
//
// Login only records who is using the client. Nothing is verified: any
// non-empty user id and email are accepted and kept for seven days.
type LoginCmd struct {
	userID string
	email  string

	in          io.Reader
	interactive *bool
}

// SetIdentity sets the --user and --email values (for testing).
func (c *LoginCmd) SetIdentity(userID, email string) {
	c.userID = userID
	c.email = email
}

// SetInput replaces stdin and the terminal check (for testing).
func (c *LoginCmd) SetInput(r io.Reader, interactive bool) {
	c.in = r
	c.interactive = &interactive
}

// UsesService asks the dispatcher for a backend when a session exists.
func (c *LoginCmd) UsesService() bool { return true }

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Store user id and email" }
func (c *LoginCmd) Usage() string     { return "tasker login [--user <id>] [--email <address>]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.userID, "user", "", "")
	fs.StringVar(&c.userID, "u", "", "")
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.email, "e", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, sess *session.Session, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	store := session.NewStore(cfg.SessionPath())

	// A live session sends the user on to the task list
	if store.IsAuthenticated() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return c.showTasks(ctx, cfg, svc, sess, store, out, errOut)
	}

	userID, email := c.userID, c.email
	if (userID == "" || email == "") && c.isInteractive() {
		reader := bufio.NewReader(c.input())
		var err error
		if userID == "" {
			if userID, err = getSimpleText(reader, "User ID", errOut); err != nil && !errors.Is(err, io.EOF) {
				fmt.Fprintf(errOut, "error: %v\n", err)
				return exitcode.UserError
			}
		}
		if email == "" {
			if email, err = getSimpleText(reader, "Email", errOut); err != nil && !errors.Is(err, io.EOF) {
				fmt.Fprintf(errOut, "error: %v\n", err)
				return exitcode.UserError
			}
		}
	}

	if _, err := store.Set(userID, email); err != nil {
		if errors.Is(err, session.ErrMissingFields) {
			fmt.Fprintln(errOut, "error: user id and email required")
			return exitcode.UserError
		}
		fmt.Fprintf(errOut, "error: failed to save session: %v\n", err)
		return exitcode.AuthError
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// showTasks renders the list the way list does. Without a backend (no
// factory, or it failed) the redirect stops at the message.
func (c *LoginCmd) showTasks(ctx context.Context, cfg *config.Config, svc service.Service, sess *session.Session, store *session.Store, out, errOut io.Writer) int {
	if svc == nil {
		return exitcode.Success
	}
	if sess == nil {
		s, err := store.Get()
		if err != nil {
			return exitcode.Success
		}
		sess = &s
	}

	sync := newSynchronizer(cfg, svc, sess, errOut)
	if err := sync.Refresh(ctx); err != nil {
		return reportError(errOut, err)
	}
	renderTasks(out, cfg.Quiet, sess.UserID, sync.Tasks(), false)
	return exitcode.Success
}

func (c *LoginCmd) input() io.Reader {
	if c.in != nil {
		return c.in
	}
	return os.Stdin
}

func (c *LoginCmd) isInteractive() bool {
	if c.interactive != nil {
		return *c.interactive
	}
	return isTerminal()
}
