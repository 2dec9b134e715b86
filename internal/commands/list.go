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
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `tasker` (no args) and `tasker list`.
type ListCmd struct {
	pendingOnly bool
}

// SetPendingOnly sets the pending filter (for testing).
func (c *ListCmd) SetPendingOnly(v bool) {
	c.pendingOnly = v
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "tasker list [--pending]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.pendingOnly, "pending", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, sess *session.Session, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	sync := newSynchronizer(cfg, svc, sess, errOut)
	if err := sync.Refresh(ctx); err != nil {
		return reportError(errOut, err)
	}

	renderTasks(out, cfg.Quiet, sess.UserID, sync.Tasks(), c.pendingOnly)
	return exitcode.Success
}

// renderTasks prints the banner and the numbered list. Numbers are positions
// in the full list so they stay valid for done/rm when a filter is applied.
func renderTasks(out io.Writer, quiet bool, userID string, tasks []service.Task, pendingOnly bool) {
	if !quiet {
		output.FormatBanner(out, userID)
	}

	shown := 0
	for i, task := range tasks {
		if pendingOnly && task.Status == service.StatusCompleted {
			continue
		}
		output.FormatTask(out, i+1, task)
		shown++
	}

	if shown == 0 && !quiet {
		fmt.Fprintln(out, "no tasks found")
	}
}
