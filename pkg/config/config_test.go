package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server, cfg.Server)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  host: 127.0.0.1
  port: 9090
api:
  base_url: http://labels.internal:8080
  token: file-token
  project_id: 3
  timeout: 5s
panel:
  edit_url: https://labels.internal/projects/3/settings/ml?edit={id}
  timezone: UTC
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("ML_API_TOKEN", "env-token")
	t.Setenv("ML_PROJECT_ID", "12")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://labels.internal:8080", cfg.API.BaseURL)
	assert.Equal(t, "env-token", cfg.API.Token)
	assert.Equal(t, 12, cfg.API.ProjectID)
	assert.Equal(t, 5*time.Second, cfg.API.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Untouched sections keep their defaults
	assert.Equal(t, "admin", cfg.Auth.Username)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLoadRejectsBadProjectID(t *testing.T) {
	t.Setenv("ML_PROJECT_ID", "seven")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [unterminated"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.yaml")
	cfg := DefaultConfig()
	cfg.API.ProjectID = 42
	cfg.Panel.Timezone = "UTC"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 42, loaded.API.ProjectID)
	assert.Equal(t, "UTC", loaded.Panel.Timezone)
}

func TestEditURLTemplate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Empty(t, cfg.Panel.EditURL)
	assert.Equal(t, "http://localhost:8000/projects/1/settings/ml", cfg.EditURLTemplate())

	cfg.API.BaseURL = "https://labels.example.com/"
	cfg.API.ProjectID = 4
	assert.Equal(t, "https://labels.example.com/projects/4/settings/ml", cfg.EditURLTemplate())

	cfg.Panel.EditURL = "https://labels.example.com/projects/4/settings/ml?edit={id}"
	assert.Equal(t, cfg.Panel.EditURL, cfg.EditURLTemplate())

	cfg.Panel.EditURL = ""
	cfg.API.BaseURL = ""
	assert.Empty(t, cfg.EditURLTemplate())
}
