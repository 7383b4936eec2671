// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"io"

	"github.com/rs/zerolog"

	"tasker/internal/config"
	"tasker/internal/credential"
	"tasker/internal/navigation"
	"tasker/internal/pagination"
	"tasker/internal/service"
	"tasker/internal/session"
	"tasker/internal/tasksync"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a valid session.
	// The dispatcher admits the session before Run is called.
	NeedsAuth() bool

	// NeedsService returns true if the command talks to the server.
	NeedsService() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}

// Env is what a command runs against. Config, Store, Guard and Nav are
// always set; Service is nil unless NeedsService returns true.
type Env struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Store   credential.Store
	Guard   *session.Guard
	Nav     navigation.Controller
	Service service.Service
}

// Sessions returns a Manager for login, logout and registration.
func (e *Env) Sessions() *session.Manager {
	return session.NewManager(e.Service, e.Store, e.Nav, e.Logger)
}

// Syncer returns a Syncer positioned on the saved page and filter.
func (e *Env) Syncer() *tasksync.Syncer {
	pages := pagination.Load(e.Config.ViewPath(), e.Config.PerPage)
	return tasksync.New(e.Service, pages, e.Guard, e.Logger)
}

// SyncerAt returns a Syncer positioned on q. The page size always comes
// from the configuration.
func (e *Env) SyncerAt(q service.Query) *tasksync.Syncer {
	pages := pagination.Restore(q, e.Config.PerPage)
	return tasksync.New(e.Service, pages, e.Guard, e.Logger)
}

// SaveView persists the Syncer's page and filter for the next invocation.
// Failure only costs the position, so it is logged and otherwise ignored.
func (e *Env) SaveView(s *tasksync.Syncer) {
	if err := pagination.Save(e.Config.ViewPath(), s.Pages()); err != nil {
		e.Logger.Warn().Err(err).Msg("failed to save view")
	}
}

// ResetView forgets the saved page and filter.
func (e *Env) ResetView() {
	if err := pagination.Reset(e.Config.ViewPath()); err != nil {
		e.Logger.Warn().Err(err).Msg("failed to reset view")
	}
}
