package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"tasker/internal/config"
	"tasker/internal/exitcode"
)

func init() {
	Register(&LoginCmd{})
	Register(&RegisterCmd{})
}

// credentialFlags reads the password from --password or the environment.
type credentialFlags struct {
	password string
}

func (f *credentialFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.password, "password", "", "")
	fs.StringVar(&f.password, "p", "", "")
}

// credentials returns the username from args and the password from the
// flag, falling back to TASKER_PASSWORD. Empty values are left for the
// session layer to reject.
func (f *credentialFlags) credentials(args []string) (string, string) {
	password := f.password
	if password == "" {
		password = os.Getenv(config.PasswordEnv)
	}
	return strings.Join(args, " "), password
}

// LoginCmd implements the login command.
type LoginCmd struct {
	creds credentialFlags
}

func (c *LoginCmd) Name() string       { return "login" }
func (c *LoginCmd) Aliases() []string  { return nil }
func (c *LoginCmd) Synopsis() string   { return "Sign in and store the session" }
func (c *LoginCmd) Usage() string      { return "tasker login [--password <p>] <username>" }
func (c *LoginCmd) NeedsAuth() bool    { return false }
func (c *LoginCmd) NeedsService() bool { return true }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) { c.creds.register(fs) }

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	username, password := c.creds.credentials(args)

	cred, err := env.Sessions().Login(ctx, username, password)
	if err != nil {
		return report(errOut, err)
	}
	// A new session starts on the first page.
	env.ResetView()

	if !env.Config.Quiet {
		fmt.Fprintf(out, "logged in as %s\n", cred.Username)
	}
	return exitcode.Success
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	creds credentialFlags
}

func (c *RegisterCmd) Name() string       { return "register" }
func (c *RegisterCmd) Aliases() []string  { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string   { return "Create an account" }
func (c *RegisterCmd) Usage() string      { return "tasker register [--password <p>] <username>" }
func (c *RegisterCmd) NeedsAuth() bool    { return false }
func (c *RegisterCmd) NeedsService() bool { return true }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) { c.creds.register(fs) }

func (c *RegisterCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	username, password := c.creds.credentials(args)

	if err := env.Sessions().Register(ctx, username, password); err != nil {
		return report(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintf(out, "registered %s\n", strings.TrimSpace(username))
	}
	return exitcode.Success
}
