package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasker/internal/exitcode"
	"tasker/internal/output"
	"tasker/internal/service"
	"tasker/internal/tasksync"
)

func init() {
	Register(&ListCmd{})
	Register(&NextCmd{})
	Register(&PrevCmd{})
	Register(&FilterCmd{})
}

// ListCmd implements the list command.
// Handles both `tasker` (no args) and `tasker list`.
type ListCmd struct {
	page   int
	filter string
}

// SetPage sets the page number (for testing).
func (c *ListCmd) SetPage(page int) {
	c.page = page
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List the current page of tasks" }
func (c *ListCmd) Usage() string      { return "tasker list [--page <n>] [--filter <all|done|open>]" }
func (c *ListCmd) NeedsAuth() bool    { return true }
func (c *ListCmd) NeedsService() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.page, "page", 0, "")
	fs.StringVar(&c.filter, "filter", "", "")
	fs.StringVar(&c.filter, "f", "", "")
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if c.page < 0 {
		fmt.Fprintf(errOut, "error: invalid page number: %d\n", c.page)
		return exitcode.UserError
	}

	s := env.Syncer()
	if c.page > 0 || c.filter != "" {
		q := s.Pages().Current()
		if c.page > 0 {
			q.Page = c.page
		}
		if c.filter != "" {
			f, err := service.ParseFilter(c.filter)
			if err != nil {
				return report(errOut, err)
			}
			q.Filter = f
		}
		s = env.SyncerAt(q)
	}
	return showPage(ctx, env, s, (*tasksync.Syncer).Refresh, out, errOut)
}

// NextCmd moves one page forward.
type NextCmd struct{}

func (c *NextCmd) Name() string       { return "next" }
func (c *NextCmd) Aliases() []string  { return nil }
func (c *NextCmd) Synopsis() string   { return "Show the next page" }
func (c *NextCmd) Usage() string      { return "tasker next" }
func (c *NextCmd) NeedsAuth() bool    { return true }
func (c *NextCmd) NeedsService() bool { return true }

func (c *NextCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *NextCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	return showPage(ctx, env, env.Syncer(), (*tasksync.Syncer).Next, out, errOut)
}

// PrevCmd moves one page back. On page 1 it shows page 1 again.
type PrevCmd struct{}

func (c *PrevCmd) Name() string       { return "prev" }
func (c *PrevCmd) Aliases() []string  { return []string{"previous"} }
func (c *PrevCmd) Synopsis() string   { return "Show the previous page" }
func (c *PrevCmd) Usage() string      { return "tasker prev" }
func (c *PrevCmd) NeedsAuth() bool    { return true }
func (c *PrevCmd) NeedsService() bool { return true }

func (c *PrevCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *PrevCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	return showPage(ctx, env, env.Syncer(), (*tasksync.Syncer).Prev, out, errOut)
}

// FilterCmd changes the completion filter. The page is kept.
type FilterCmd struct{}

func (c *FilterCmd) Name() string       { return "filter" }
func (c *FilterCmd) Aliases() []string  { return nil }
func (c *FilterCmd) Synopsis() string   { return "Filter tasks by completion" }
func (c *FilterCmd) Usage() string      { return "tasker filter <all|done|open>" }
func (c *FilterCmd) NeedsAuth() bool    { return true }
func (c *FilterCmd) NeedsService() bool { return true }

func (c *FilterCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *FilterCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "error: filter required (all, done or open)")
		return exitcode.UserError
	}
	f, err := service.ParseFilter(args[0])
	if err != nil {
		return report(errOut, err)
	}
	return showPage(ctx, env, env.Syncer(), func(s *tasksync.Syncer, ctx context.Context) ([]service.Task, error) {
		return s.SetFilter(ctx, f)
	}, out, errOut)
}

// showPage runs move, saves the resulting position and prints the page.
// A failed move leaves the saved position untouched.
func showPage(ctx context.Context, env *Env, s *tasksync.Syncer, move func(*tasksync.Syncer, context.Context) ([]service.Task, error), out, errOut io.Writer) int {
	tasks, err := move(s, ctx)
	if err != nil {
		return report(errOut, err)
	}
	env.SaveView(s)
	output.NewPrinter(out).Page(s.Pages().Current(), tasks)
	return exitcode.Success
}
