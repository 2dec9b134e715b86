package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasker/internal/config"
	"tasker/internal/exitcode"
	"tasker/internal/service"
	"tasker/internal/session"
	"tasker/internal/tasksync"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description string
	dueDate     string
	filePath    string
}

// SetDraftFields sets the optional fields (for testing).
func (c *AddCmd) SetDraftFields(description, dueDate, filePath string) {
	c.description = description
	c.dueDate = dueDate
	c.filePath = filePath
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "tasker add [--desc <text>] [--due <date>] [--file <path>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "desc", "", "")
	fs.StringVar(&c.description, "d", "", "")
	fs.StringVar(&c.dueDate, "due", "", "")
	fs.StringVar(&c.filePath, "file", "", "")
	fs.StringVar(&c.filePath, "f", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, sess *session.Session, args []string, out, errOut io.Writer) int {
	// Join args to form title
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	draft := &tasksync.Draft{
		Title:       title,
		Description: c.description,
		DueDate:     c.dueDate,
	}
	if c.filePath != "" {
		file, err := tasksync.LoadAttachment(c.filePath)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		draft.File = file
	}

	sync := newSynchronizer(cfg, svc, sess, errOut)
	task, err := sync.Create(ctx, draft)
	if err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		if tasksync.IsPlaceholderID(task.TaskID) {
			fmt.Fprintln(out, "ok (unsynced id)")
		} else {
			fmt.Fprintln(out, "ok")
		}
	}
	return exitcode.Success
}
