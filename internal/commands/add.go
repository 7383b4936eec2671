package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasker/internal/exitcode"
	"tasker/internal/output"
	"tasker/internal/tasksync"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description string
}

// SetDescription sets the description (for testing).
func (c *AddCmd) SetDescription(d string) {
	c.description = d
}

func (c *AddCmd) Name() string       { return "add" }
func (c *AddCmd) Aliases() []string  { return []string{"create"} }
func (c *AddCmd) Synopsis() string   { return "Create a task" }
func (c *AddCmd) Usage() string      { return "tasker add [--description <text>] <title...>" }
func (c *AddCmd) NeedsAuth() bool    { return true }
func (c *AddCmd) NeedsService() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "description", "", "")
	fs.StringVar(&c.description, "d", "", "")
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	s := env.Syncer()
	task, err := s.Create(ctx, strings.Join(args, " "), c.description)
	if mutationFailed(err) {
		return report(errOut, err)
	}
	return afterChange(env, s, fmt.Sprintf("created %d", task.ID), err, out, errOut)
}

// mutationFailed reports whether the change itself did not happen, as
// opposed to only the reload after it.
func mutationFailed(err error) bool {
	var rerr *tasksync.ResyncError
	return err != nil && !errors.As(err, &rerr)
}

// afterChange reports a successful change and prints the reloaded page.
// resyncErr is the reload failure, if any.
func afterChange(env *Env, s *tasksync.Syncer, msg string, resyncErr error, out, errOut io.Writer) int {
	if !env.Config.Quiet {
		fmt.Fprintln(out, msg)
	}
	if resyncErr != nil {
		return report(errOut, resyncErr)
	}
	if !env.Config.Quiet {
		if tasks, q, ok := s.Snapshot(); ok {
			output.NewPrinter(out).Page(q, tasks)
		}
	}
	return exitcode.Success
}
