package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"tasker/internal/config"
	"tasker/internal/exitcode"
	"tasker/internal/output"
	"tasker/internal/service"
	"tasker/internal/session"
	"tasker/internal/tasksync"
)

func init() {
	Register(&ShellCmd{})
}

// ShellCmd is the interactive tasks view. One synchronizer lives for the
// whole session, so list numbers refer to the list last shown.
type ShellCmd struct {
	in io.Reader
}

// SetInput replaces stdin (for testing).
func (c *ShellCmd) SetInput(r io.Reader) {
	c.in = r
}

func (c *ShellCmd) Name() string      { return "shell" }
func (c *ShellCmd) Aliases() []string { return nil }
func (c *ShellCmd) Synopsis() string  { return "Interactive tasks view" }
func (c *ShellCmd) Usage() string     { return "tasker shell [common flags]" }
func (c *ShellCmd) NeedsAuth() bool   { return true }

func (c *ShellCmd) RegisterFlags(fs *flag.FlagSet) {}

const shellHelp = `Commands:
  list | ls              show tasks
  reload                 fetch tasks from the backend
  title <text>           set draft title
  desc <text>            set draft description
  due <date>             set draft due date
  file <path>            attach a file to the draft
  nofile                 drop the draft file
  draft                  show the draft
  clear                  discard the draft
  submit                 create a task from the draft
  done <ref>             mark completed
  reopen <ref>           mark pending
  rm <ref>               delete
  show <ref>             show task details
  whoami                 show the session
  quit | exit            leave
`

func (c *ShellCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, sess *session.Session, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	in := c.in
	if in == nil {
		in = os.Stdin
	}

	sh := &shell{
		sync:   newSynchronizer(cfg, svc, sess, errOut),
		draft:  &tasksync.Draft{},
		quiet:  cfg.Quiet,
		out:    out,
		errOut: errOut,
	}

	if err := sh.sync.Refresh(ctx); err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return reportError(errOut, err)
		}
		// The list stays empty; reload can try again
		reportError(errOut, err)
	} else {
		sh.render()
	}

	lines, readErr := readLines(ctx, in)
	for {
		if !cfg.Quiet {
			fmt.Fprint(out, "tasker> ")
		}

		var raw string
		var ok bool
		select {
		case <-ctx.Done():
			if !cfg.Quiet {
				fmt.Fprintln(out)
			}
			return exitcode.Success
		case raw, ok = <-lines:
		}
		if !ok {
			if err := readErr(); err != nil {
				fmt.Fprintf(errOut, "error: read input: %v\n", err)
				return exitcode.UserError
			}
			return exitcode.Success
		}

		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		if cmd == "quit" || cmd == "exit" {
			return exitcode.Success
		}
		sh.exec(ctx, cmd, rest)
	}
}

// maxLineSize bounds one shell input line.
const maxLineSize = 1 << 20

// readLines scans in on its own goroutine so the caller can stop waiting
// when ctx is cancelled. The channel is closed at EOF or on a read error;
// the returned func reports that error once the channel is closed.
func readLines(ctx context.Context, in io.Reader) (<-chan string, func() error) {
	lines := make(chan string)
	var err error

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		err = scanner.Err()
	}()

	return lines, func() error { return err }
}

type shell struct {
	sync   *tasksync.Synchronizer
	draft  *tasksync.Draft
	quiet  bool
	out    io.Writer
	errOut io.Writer
}

func (sh *shell) exec(ctx context.Context, cmd, rest string) {
	switch cmd {
	case "help":
		fmt.Fprint(sh.out, shellHelp)

	case "list", "ls":
		sh.render()

	case "reload":
		if err := sh.sync.Refresh(ctx); err != nil {
			reportError(sh.errOut, err)
			return
		}
		sh.render()

	case "title":
		sh.draft.Title = rest
	case "desc":
		sh.draft.Description = rest
	case "due":
		sh.draft.DueDate = rest

	case "file":
		if rest == "" {
			fmt.Fprintln(sh.errOut, "error: file path required")
			return
		}
		file, err := tasksync.LoadAttachment(rest)
		if err != nil {
			fmt.Fprintf(sh.errOut, "error: %v\n", err)
			return
		}
		sh.draft.File = file
	case "nofile":
		sh.draft.File = nil

	case "draft":
		sh.showDraft()
	case "clear":
		sh.draft.Reset()

	case "submit":
		task, err := sh.sync.Create(ctx, sh.draft)
		if err != nil {
			reportError(sh.errOut, err)
			return
		}
		sh.ok(task.TaskID)

	case "done", "reopen", "rm", "show":
		sh.execRef(ctx, cmd, rest)

	case "whoami":
		s := sh.sync.Session()
		fmt.Fprintf(sh.out, "%s <%s>, session expires %s\n", s.UserID, s.Email, s.ExpiresAt.Local().Format("2006-01-02 15:04"))

	default:
		fmt.Fprintf(sh.errOut, "error: unknown command: %s (try: help)\n", cmd)
	}
}

// execRef runs a command that takes a task reference. Numbers refer to the
// list as currently held; there is no implicit reload.
func (sh *shell) execRef(ctx context.Context, cmd, rest string) {
	ref, err := ParseTaskRef(strings.Fields(rest), false)
	if err != nil {
		reportRefError(sh.errOut, err)
		return
	}
	id, err := resolveTaskRef(sh.sync.Tasks(), ref)
	if err != nil {
		reportError(sh.errOut, err)
		return
	}

	switch cmd {
	case "done":
		err = sh.sync.UpdateStatus(ctx, id, service.StatusCompleted)
	case "reopen":
		err = sh.sync.UpdateStatus(ctx, id, service.StatusPending)
	case "rm":
		err = sh.sync.Delete(ctx, id)
	case "show":
		task, ok := sh.sync.Find(id)
		if !ok {
			fmt.Fprintf(sh.errOut, "error: task not found: %s\n", id)
			return
		}
		output.FormatTaskCard(sh.out, task)
		return
	}
	if err != nil {
		reportTaskError(sh.errOut, err, ref)
		return
	}
	sh.ok(id)
}

func (sh *shell) render() {
	renderTasks(sh.out, sh.quiet, sh.sync.Session().UserID, sh.sync.Tasks(), false)
}

func (sh *shell) ok(id string) {
	if sh.quiet {
		return
	}
	if tasksync.IsPlaceholderID(id) {
		fmt.Fprintln(sh.out, "ok (unsynced id)")
		return
	}
	fmt.Fprintln(sh.out, "ok")
}

func (sh *shell) showDraft() {
	d := sh.draft
	if d.IsEmpty() {
		fmt.Fprintln(sh.out, "draft is empty")
		return
	}
	fmt.Fprintf(sh.out, "title:       %s\n", d.Title)
	fmt.Fprintf(sh.out, "description: %s\n", d.Description)
	fmt.Fprintf(sh.out, "due:         %s\n", d.DueDate)
	if d.File != nil {
		fmt.Fprintf(sh.out, "file:        %s (%d bytes)\n", d.File.Name, len(d.File.Content))
	}
}
