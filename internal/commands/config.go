package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"tasker/internal/config"
	"tasker/internal/exitcode"
)

func init() {
	Register(&ConfigCmd{})
}

// ConfigCmd prints the effective settings as YAML.
type ConfigCmd struct{}

func (c *ConfigCmd) Name() string       { return "config" }
func (c *ConfigCmd) Aliases() []string  { return nil }
func (c *ConfigCmd) Synopsis() string   { return "Print the effective configuration" }
func (c *ConfigCmd) Usage() string      { return "tasker config" }
func (c *ConfigCmd) NeedsAuth() bool    { return false }
func (c *ConfigCmd) NeedsService() bool { return false }

func (c *ConfigCmd) RegisterFlags(fs *flag.FlagSet) {}

type effectiveConfig struct {
	Dir             string `yaml:"dir"`
	config.Settings `yaml:",inline"`
	User            string `yaml:"user,omitempty"`
}

func (c *ConfigCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	ec := effectiveConfig{Dir: env.Config.Dir, Settings: env.Config.Settings}
	if cred, _, ok := env.Guard.Current(); ok {
		ec.User = cred.Username
	}

	data, err := yaml.Marshal(ec)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	_, _ = out.Write(data)
	return exitcode.Success
}
