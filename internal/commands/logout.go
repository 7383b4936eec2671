package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"tasker/internal/exitcode"
	"tasker/internal/navigation"
)

func init() {
	Register(&LogoutCmd{})
	Register(&WhoamiCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string       { return "logout" }
func (c *LogoutCmd) Aliases() []string  { return nil }
func (c *LogoutCmd) Synopsis() string   { return "Remove the stored session" }
func (c *LogoutCmd) Usage() string      { return "tasker logout" }
func (c *LogoutCmd) NeedsAuth() bool    { return false }
func (c *LogoutCmd) NeedsService() bool { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	wasLoggedIn := env.Guard.IsValid()

	if err := env.Sessions().Logout(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove credential: %v\n", err)
		return exitcode.AuthError
	}
	env.ResetView()

	if !env.Config.Quiet {
		if wasLoggedIn {
			fmt.Fprintln(out, "ok")
		} else {
			fmt.Fprintln(out, "not logged in")
		}
	}
	return exitcode.Success
}

// WhoamiCmd prints the user of the stored session.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string       { return "whoami" }
func (c *WhoamiCmd) Aliases() []string  { return nil }
func (c *WhoamiCmd) Synopsis() string   { return "Show the signed-in user" }
func (c *WhoamiCmd) Usage() string      { return "tasker whoami" }
func (c *WhoamiCmd) NeedsAuth() bool    { return true }
func (c *WhoamiCmd) NeedsService() bool { return false }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	cred, payload, ok := env.Guard.Current()
	if !ok {
		fmt.Fprintln(errOut, "error: not logged in")
		env.Nav.GoTo(navigation.Login)
		return exitcode.AuthError
	}

	fmt.Fprintln(out, cred.Username)
	if exp, ok := payload.ExpiresAt(); ok && !env.Config.Quiet {
		state := "expires"
		if time.Now().After(exp) {
			state = "expired"
		}
		fmt.Fprintf(out, "session %s %s\n", state, exp.Local().Format(time.RFC3339))
	}
	return exitcode.Success
}
