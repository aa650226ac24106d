// Package config loads the YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	BackendSQLite = "sqlite"
	BackendJSON   = "json"
)

// Config is the merged configuration
type Config struct {
	Storage       StorageConfig       `yaml:"storage"`
	Log           LogConfig           `yaml:"log"`
	View          ViewConfig          `yaml:"view"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

// StorageConfig selects the persistence backend. An empty path means the
// default file under the data directory.
type StorageConfig struct {
	Backend string `yaml:"backend" validate:"oneof=sqlite json"`
	Path    string `yaml:"path,omitempty"`
}

// LogConfig controls the log file
type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	Dir   string `yaml:"dir,omitempty"`
}

// ViewConfig holds the view used when nothing has been saved yet
type ViewConfig struct {
	Nav       string `yaml:"nav" validate:"oneof=all myDay important planned assigned"`
	Sort      string `yaml:"sort" validate:"oneof=none importance dueDate addedToMyDay alphabetically creationDate"`
	Ascending bool   `yaml:"ascending"`
}

// NotificationsConfig controls due-soon reminders
type NotificationsConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Window   time.Duration `yaml:"window" validate:"min=1m"`
	Interval time.Duration `yaml:"interval" validate:"min=1s"`
	Bell     bool          `yaml:"bell"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Backend: BackendSQLite},
		Log:     LogConfig{Level: "info"},
		View:    ViewConfig{Nav: "all", Sort: "none", Ascending: true},
		Notifications: NotificationsConfig{
			Enabled:  true,
			Window:   24 * time.Hour,
			Interval: time.Hour,
			Bell:     true,
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the file at path over the defaults. An empty path means
// DefaultPath; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field against its allowed values
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid %s: %v fails %q", fe.Namespace(), fe.Value(), fe.Tag())
		}
		return err
	}
	return nil
}

// Save writes the configuration as YAML, creating the directory
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Dir returns the configuration directory
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "todo"), nil
}

// DefaultPath returns the path to the default config file
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
