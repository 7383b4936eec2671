package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasker/internal/exitcode"
)

func init() {
	Register(NewDoneCmd(true))
	Register(NewDoneCmd(false))
}

// DoneCmd implements the done and undone commands.
type DoneCmd struct {
	completed bool
}

// NewDoneCmd returns the done command, or undone when completed is false.
func NewDoneCmd(completed bool) *DoneCmd {
	return &DoneCmd{completed: completed}
}

func (c *DoneCmd) Name() string {
	if c.completed {
		return "done"
	}
	return "undone"
}

func (c *DoneCmd) Aliases() []string {
	if c.completed {
		return []string{"complete"}
	}
	return []string{"reopen"}
}

func (c *DoneCmd) Synopsis() string {
	if c.completed {
		return "Mark a task completed"
	}
	return "Mark a task open again"
}

func (c *DoneCmd) Usage() string      { return "tasker " + c.Name() + " <id>" }
func (c *DoneCmd) NeedsAuth() bool    { return true }
func (c *DoneCmd) NeedsService() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, _, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	s := env.Syncer()
	_, err = s.SetCompleted(ctx, id, c.completed)
	if mutationFailed(err) {
		return report(errOut, err)
	}
	state := "open"
	if c.completed {
		state = "done"
	}
	return afterChange(env, s, fmt.Sprintf("%s %d", state, id), err, out, errOut)
}
