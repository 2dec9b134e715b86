package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasker/internal/config"
	"tasker/internal/exitcode"
	"tasker/internal/output"
	"tasker/internal/service"
	"tasker/internal/session"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd prints every field of one task.
type ShowCmd struct {
	byID bool
}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Show task details" }
func (c *ShowCmd) Usage() string     { return "tasker show [--id] <ref>" }
func (c *ShowCmd) NeedsAuth() bool   { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.byID, "id", false, "")
}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, sess *session.Session, args []string, out, errOut io.Writer) int {
	ref, err := ParseTaskRef(args, c.byID)
	if err != nil {
		return reportRefError(errOut, err)
	}

	sync := newSynchronizer(cfg, svc, sess, errOut)
	if err := sync.Refresh(ctx); err != nil {
		return reportError(errOut, err)
	}

	tasks := sync.Tasks()
	id, err := resolveTaskRef(tasks, ref)
	if err != nil {
		return reportError(errOut, err)
	}
	task, ok := findTask(tasks, id)
	if !ok {
		fmt.Fprintf(errOut, "error: task not found: %s\n", id)
		return exitcode.UserError
	}

	output.FormatTaskCard(out, task)
	return exitcode.Success
}
