package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasker/internal/config"
)

func TestNew_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.New(dir)
	require.NoError(t, err)
	require.NoError(t, cfg.Load())

	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, config.DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, config.DefaultPerPage, cfg.PerPage)
	assert.Equal(t, config.DefaultTimeout, cfg.Timeout)
	assert.Equal(t, filepath.Join(dir, "credential.json"), cfg.CredentialPath())
	assert.Equal(t, filepath.Join(dir, "view.json"), cfg.ViewPath())
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "tasker"), config.DefaultConfigDir())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	yaml := "api_url: http://tasks.example.com/\nper_page: 10\ntimeout: 2s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0600))

	cfg, _ := config.New(dir)
	require.NoError(t, cfg.Load())

	assert.Equal(t, "http://tasks.example.com", cfg.APIURL)
	assert.Equal(t, 10, cfg.PerPage)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("per_page: 10\n"), 0600))
	t.Setenv("TASKER_PER_PAGE", "3")
	t.Setenv("TASKER_API_URL", "http://env.example.com")

	cfg, _ := config.New(dir)
	require.NoError(t, cfg.Load())

	assert.Equal(t, 3, cfg.PerPage)
	assert.Equal(t, "http://env.example.com", cfg.APIURL)
}

func TestLoad_InvalidPerPage(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("per_page: 0\n"), 0600))

	cfg, _ := config.New(dir)
	assert.Error(t, cfg.Load())
}

func TestLoad_BrokenYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("per_page: [\n"), 0600))

	cfg, _ := config.New(dir)
	assert.Error(t, cfg.Load())
}
