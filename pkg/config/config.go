package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig `yaml:"server"`
	Auth      AuthConfig   `yaml:"auth"`
	API       APIConfig    `yaml:"api"`
	Panel     PanelConfig  `yaml:"panel"`
	LogLevel  string       `yaml:"log_level"`
	LogFormat string       `yaml:"log_format"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	JWTSecret string `yaml:"jwt_secret"`
}

// APIConfig points at the labeling API that owns the ML backends
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Token     string        `yaml:"token"`
	ProjectID int           `yaml:"project_id"`
	Timeout   time.Duration `yaml:"timeout"`
}

// PanelConfig controls how the settings panel renders
type PanelConfig struct {
	// EditURL is where the edit control sends the user; {id} is replaced
	// with the backend id. Empty means the project's ML settings page on
	// the API host.
	EditURL  string `yaml:"edit_url"`
	Timezone string `yaml:"timezone"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Auth: AuthConfig{
			Username:  "admin",
			Password:  "admin123",
			JWTSecret: "ml-settings-secret-key-change-me",
		},
		API: APIConfig{
			BaseURL:   "http://localhost:8000",
			ProjectID: 1,
			Timeout:   30 * time.Second,
		},
		Panel: PanelConfig{
			Timezone: "Local",
		},
		LogLevel:  "info",
		LogFormat: "json",
	}
}

// Load loads configuration from a YAML file
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		// Defaults plus environment when the file doesn't exist
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// Override with environment variables
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides overrides configuration with environment variables
func applyEnvOverrides(cfg *Config) error {
	if username := os.Getenv("AUTH_USERNAME"); username != "" {
		cfg.Auth.Username = username
	}
	if password := os.Getenv("AUTH_PASSWORD"); password != "" {
		cfg.Auth.Password = password
	}
	if jwtSecret := os.Getenv("AUTH_JWT_SECRET"); jwtSecret != "" {
		cfg.Auth.JWTSecret = jwtSecret
	}
	if apiURL := os.Getenv("ML_API_URL"); apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if apiToken := os.Getenv("ML_API_TOKEN"); apiToken != "" {
		cfg.API.Token = apiToken
	}
	if project := os.Getenv("ML_PROJECT_ID"); project != "" {
		id, err := strconv.Atoi(project)
		if err != nil {
			return fmt.Errorf("ML_PROJECT_ID: %w", err)
		}
		cfg.API.ProjectID = id
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	return nil
}

// Location returns the time zone versions are displayed in
func (c *Config) Location() (*time.Location, error) {
	if c.Panel.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Panel.Timezone)
}

// EditURLTemplate returns the edit page URL with its {id} placeholder,
// falling back to the upstream project ML settings page. It is empty when
// neither an edit URL nor an API base URL is configured.
func (c *Config) EditURLTemplate() string {
	if c.Panel.EditURL != "" {
		return c.Panel.EditURL
	}
	base := strings.TrimRight(c.API.BaseURL, "/")
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s/projects/%d/settings/ml", base, c.API.ProjectID)
}

// Save saves configuration to a YAML file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
