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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "tasker help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, sess *session.Session, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  tasker                                             List tasks
  tasker list [common flags] [--pending]
  tasker add [common flags] [--desc <text>] [--due <date>] [--file <path>] <title...>
  tasker create [common flags] [--desc <text>] [--due <date>] [--file <path>] <title...>
  tasker done [common flags] [--id] <ref>
  tasker reopen [common flags] [--id] <ref>
  tasker rm [common flags] [--id] <ref>
  tasker show [common flags] [--id] <ref>
  tasker shell [common flags]
  tasker login [common flags] [--user <id>] [--email <address>]
  tasker logout [common flags]
  tasker help
  tasker version

A <ref> is a task number from the list, or a task id.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
