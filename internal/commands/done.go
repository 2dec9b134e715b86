package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasker/internal/config"
	"tasker/internal/exitcode"
	"tasker/internal/service"
	"tasker/internal/session"
)

func init() {
	Register(&DoneCmd{})
	Register(&ReopenCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct {
	byID bool
}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string  { return "Mark a task completed" }
func (c *DoneCmd) Usage() string     { return "tasker done [--id] <ref>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.byID, "id", false, "")
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, sess *session.Session, args []string, out, errOut io.Writer) int {
	return runSetStatus(ctx, cfg, svc, sess, args, c.byID, service.StatusCompleted, out, errOut)
}

// ReopenCmd sets a task back to Pending.
type ReopenCmd struct {
	byID bool
}

func (c *ReopenCmd) Name() string      { return "reopen" }
func (c *ReopenCmd) Aliases() []string { return nil }
func (c *ReopenCmd) Synopsis() string  { return "Mark a task pending again" }
func (c *ReopenCmd) Usage() string     { return "tasker reopen [--id] <ref>" }
func (c *ReopenCmd) NeedsAuth() bool   { return true }

func (c *ReopenCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.byID, "id", false, "")
}

func (c *ReopenCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, sess *session.Session, args []string, out, errOut io.Writer) int {
	return runSetStatus(ctx, cfg, svc, sess, args, c.byID, service.StatusPending, out, errOut)
}

// runSetStatus is the shared implementation for done and reopen.
// List numbers need the current list, so only they trigger a refresh.
func runSetStatus(ctx context.Context, cfg *config.Config, svc service.Service, sess *session.Session, args []string, byID bool, status service.Status, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args, byID)
	if err != nil {
		return reportRefError(errOut, err)
	}

	sync := newSynchronizer(cfg, svc, sess, errOut)
	if ref.ID == "" {
		if err := sync.Refresh(ctx); err != nil {
			return reportError(errOut, err)
		}
	}

	id, err := resolveTaskRef(sync.Tasks(), ref)
	if err != nil {
		return reportError(errOut, err)
	}

	if err := sync.UpdateStatus(ctx, id, status); err != nil {
		return reportTaskError(errOut, err, ref)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
