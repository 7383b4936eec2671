package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasker/internal/exitcode"
	"tasker/internal/output"
	"tasker/internal/service"
)

func init() {
	Register(&EditCmd{})
	Register(&ShowCmd{})
}

// optionalString is a string flag that remembers whether it was given.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }

func (o *optionalString) Set(v string) error {
	o.value = v
	o.set = true
	return nil
}

// EditCmd implements the edit command. Without --description the task's
// current description is kept.
type EditCmd struct {
	description optionalString
}

func (c *EditCmd) Name() string       { return "edit" }
func (c *EditCmd) Aliases() []string  { return []string{"update"} }
func (c *EditCmd) Synopsis() string   { return "Change a task's title and description" }
func (c *EditCmd) Usage() string      { return "tasker edit [--description <text>] <id> <title...>" }
func (c *EditCmd) NeedsAuth() bool    { return true }
func (c *EditCmd) NeedsService() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.description = optionalString{}
	fs.Var(&c.description, "description", "")
	fs.Var(&c.description, "d", "")
}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, rest, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	title, err := service.NormalizeTitle(strings.Join(rest, " "))
	if err != nil {
		return report(errOut, err)
	}

	s := env.Syncer()
	description := c.description.value
	if !c.description.set {
		current, err := s.Get(ctx, id)
		if err != nil {
			return report(errOut, err)
		}
		description = current.Description
	}

	_, err = s.Update(ctx, id, title, description)
	if mutationFailed(err) {
		return report(errOut, err)
	}
	return afterChange(env, s, fmt.Sprintf("updated %d", id), err, out, errOut)
}

// ShowCmd prints one task.
type ShowCmd struct{}

func (c *ShowCmd) Name() string       { return "show" }
func (c *ShowCmd) Aliases() []string  { return nil }
func (c *ShowCmd) Synopsis() string   { return "Show a task" }
func (c *ShowCmd) Usage() string      { return "tasker show <id>" }
func (c *ShowCmd) NeedsAuth() bool    { return true }
func (c *ShowCmd) NeedsService() bool { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	id, _, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	task, err := env.Syncer().Get(ctx, id)
	if err != nil {
		return report(errOut, err)
	}
	output.NewPrinter(out).Task(task)
	return exitcode.Success
}
