// Package config handles the configuration directory, its files and the
// API settings loaded from them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	// AppName is the application directory name.
	AppName = "tasker"

	// SettingsFile is the optional settings file inside the config directory.
	SettingsFile = "config.yaml"

	// CredentialFile stores the bearer token and username.
	CredentialFile = "credential.json"

	// ViewFile stores the current page and filter between invocations.
	ViewFile = "view.json"

	// EnvPrefix prefixes environment overrides, e.g. TASKER_API_URL.
	EnvPrefix = "TASKER"

	// PasswordEnv supplies the password to login and register.
	PasswordEnv = EnvPrefix + "_PASSWORD"
)

// Defaults for Settings.
const (
	DefaultAPIURL  = "http://localhost:5000"
	DefaultPerPage = 5
	DefaultTimeout = 5 * time.Second
)

// Settings are the tunables read from config.yaml and the environment.
type Settings struct {
	APIURL  string        `mapstructure:"api_url" yaml:"api_url"`
	PerPage int           `mapstructure:"per_page" yaml:"per_page"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	Settings
}

// New creates a Config with the default or specified config directory and
// default settings. Call Load to read config.yaml and the environment.
// If configDir is empty, uses XDG_CONFIG_HOME/tasker or $HOME/.config/tasker.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir: dir,
		Settings: Settings{
			APIURL:  DefaultAPIURL,
			PerPage: DefaultPerPage,
			Timeout: DefaultTimeout,
		},
	}, nil
}

// Load merges config.yaml (if present) and TASKER_* environment variables
// over the defaults.
func (c *Config) Load() error {
	v := viper.New()
	v.SetDefault("api_url", c.APIURL)
	v.SetDefault("per_page", c.PerPage)
	v.SetDefault("timeout", c.Timeout)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := c.SettingsPath()
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("invalid %s: %w", SettingsFile, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if s.APIURL == "" {
		s.APIURL = DefaultAPIURL
	}
	s.APIURL = strings.TrimRight(s.APIURL, "/")
	if s.PerPage <= 0 {
		return fmt.Errorf("invalid per_page: %d", s.PerPage)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("invalid timeout: %s", s.Timeout)
	}
	c.Settings = s
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SettingsPath returns the path to config.yaml.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// CredentialPath returns the path to the stored credential.
func (c *Config) CredentialPath() string {
	return filepath.Join(c.Dir, CredentialFile)
}

// ViewPath returns the path to the saved page and filter.
func (c *Config) ViewPath() string {
	return filepath.Join(c.Dir, ViewFile)
}
