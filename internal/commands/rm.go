package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasker/internal/exitcode"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string       { return "rm" }
func (c *RmCmd) Aliases() []string  { return []string{"delete"} }
func (c *RmCmd) Synopsis() string   { return "Delete a task" }
func (c *RmCmd) Usage() string      { return "tasker rm <id>" }
func (c *RmCmd) NeedsAuth() bool    { return true }
func (c *RmCmd) NeedsService() bool { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, _, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	s := env.Syncer()
	err = s.Delete(ctx, id)
	if mutationFailed(err) {
		return report(errOut, err)
	}
	return afterChange(env, s, fmt.Sprintf("deleted %d", id), err, out, errOut)
}
