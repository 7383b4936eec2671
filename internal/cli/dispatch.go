// Package cli parses the command line and runs commands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tasker/internal/commands"
	"tasker/internal/config"
	"tasker/internal/credential"
	"tasker/internal/exitcode"
	"tasker/internal/navigation"
	"tasker/internal/service"
	"tasker/internal/session"
)

// ServiceFactory builds the task backend once the configuration and the
// credential store are known. Tests substitute a fake.
type ServiceFactory func(ctx context.Context, cfg *config.Config, store credential.Store, logger zerolog.Logger) (service.Service, error)

// defaultCommand runs when tasker is invoked without arguments.
const defaultCommand = "list"

// Dispatcher resolves a command by name, parses its flags and runs it.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
}

func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{registry: registry, factory: factory}
}

// Run executes the command line and returns the process exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	name, rest := defaultCommand, []string(nil)
	if len(args) > 0 {
		name, rest = args[0], args[1:]
	}

	cmd, ok := d.registry.Find(name)
	if !ok || strings.HasPrefix(name, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}
	return d.runCommand(ctx, cmd, rest, out, errOut)
}

func (d *Dispatcher) runCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configDir string
		quiet     bool
		debug     bool
	)
	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")
	cmd.RegisterFlags(fs)

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagError(err))
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug
	if err := cfg.Load(); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	logger := newLogger(errOut, debug)
	store := credential.NewFileStore(cfg.CredentialPath())
	nav := navigation.Hint{W: errOut, Quiet: quiet}
	env := &commands.Env{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Guard:  session.NewGuard(store, nav, logger),
		Nav:    nav,
	}

	if cmd.NeedsAuth() {
		admitted := env.Guard.AdmitOrLogin(func() {
			fmt.Fprintln(errOut, "error: not logged in")
		})
		if !admitted {
			return exitcode.AuthError
		}
	}

	if cmd.NeedsService() {
		if d.factory == nil {
			fmt.Fprintln(errOut, "error: no backend configured")
			return exitcode.BackendError
		}
		env.Service, err = d.factory(ctx, cfg, store, logger)
		if err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.UserError
		}
	}

	logger.Debug().
		Str("command", cmd.Name()).
		Str("config_dir", cfg.Dir).
		Str("api_url", cfg.APIURL).
		Msg("dispatch")

	return cmd.Run(ctx, env, positional, out, errOut)
}

// parseInterspersed parses flags wherever they appear among the positional
// arguments, so that "login alice --password x" works. Everything after
// "--" is positional.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// flagError rewrites flag package errors into the CLI's wording.
func flagError(err error) string {
	msg := err.Error()
	if name, ok := strings.CutPrefix(msg, "flag needs an argument:"); ok {
		return "flag needs an argument: " + strings.TrimSpace(name)
	}
	if name, ok := strings.CutPrefix(msg, "flag provided but not defined:"); ok {
		return "unknown flag: " + strings.TrimSpace(name)
	}
	return msg
}

// newLogger returns a console logger on w when debug is set, otherwise a
// logger that discards everything.
func newLogger(w io.Writer, debug bool) zerolog.Logger {
	if !debug {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: true}).
		Level(zerolog.DebugLevel).
		With().
		Timestamp().
		Logger()
}
