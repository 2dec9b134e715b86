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
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct {
	byID bool
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "tasker rm [--id] <ref>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.byID, "id", false, "")
}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, sess *session.Session, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args, c.byID)
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

	if err := sync.Delete(ctx, id); err != nil {
		return reportTaskError(errOut, err, ref)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
