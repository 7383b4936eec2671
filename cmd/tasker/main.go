// Command tasker is a command-line client for the task API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"tasker/internal/backend/taskapi"
	"tasker/internal/cli"
	"tasker/internal/commands"
	"tasker/internal/config"
	"tasker/internal/credential"
	"tasker/internal/service"
)

// newService connects commands to the HTTP API. The token is read from the
// credential store on every request.
func newService(_ context.Context, cfg *config.Config, store credential.Store, logger zerolog.Logger) (service.Service, error) {
	client, err := taskapi.New(cfg, credential.TokenSource(store), logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := cli.NewDispatcher(commands.DefaultRegistry, newService).
		Run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}
