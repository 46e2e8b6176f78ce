package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultBackendURL is used when neither the environment nor the config file
// names a backend. It matches the port of `cpanel backend`.
const DefaultBackendURL = "http://localhost:8081"

// CLIConfig holds CLI configuration read from disk and the environment.
type CLIConfig struct {
	BackendURL string `yaml:"backend_url,omitempty" validate:"required,url"`
	DevMode    bool   `yaml:"dev_mode,omitempty"`
	Timezone   string `yaml:"timezone,omitempty" validate:"omitempty,timezone"`
	DBPath     string `yaml:"db_path,omitempty"`
}

var validate = validator.New()

// configDir returns ~/.config/cpanel, home of the config file and the
// development backend's database.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "cpanel"), nil
}

// configPath returns the path to the CLI config file.
func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// loadConfig reads the CLI config from disk.
// Returns a zero-value config if the file doesn't exist.
func loadConfig() (CLIConfig, error) {
	path, err := configPath()
	if err != nil {
		return CLIConfig{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CLIConfig{}, nil
	}
	if err != nil {
		return CLIConfig{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// resolveConfig layers CPANEL_* environment variables over the config file,
// fills in defaults and validates the result.
func resolveConfig() (CLIConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return CLIConfig{}, err
	}

	if v := os.Getenv("CPANEL_BACKEND_URL"); v != "" {
		cfg.BackendURL = v
	}
	if v := os.Getenv("CPANEL_DEV_MODE"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return CLIConfig{}, fmt.Errorf("invalid CPANEL_DEV_MODE %q: %w", v, err)
		}
		cfg.DevMode = dev
	}
	if v := os.Getenv("CPANEL_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("CPANEL_DB"); v != "" {
		cfg.DBPath = v
	}

	if cfg.BackendURL == "" {
		cfg.BackendURL = DefaultBackendURL
	}
	if cfg.DBPath == "" {
		dir, err := configDir()
		if err != nil {
			return CLIConfig{}, err
		}
		cfg.DBPath = filepath.Join(dir, "comments.db")
	}

	if err := validate.Struct(cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// location returns the time zone comment timestamps are shown in.
func (c CLIConfig) location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone: %w", err)
	}
	return loc, nil
}
