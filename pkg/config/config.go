package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/adrianmross/ga-context/pkg/selector"
)

// DefaultContainer is the selection slot used when none is named.
const DefaultContainer = "default"

// Config represents the persisted state for ga-context.
type Config struct {
	Options          Options                       `yaml:"options"`
	Selections       map[string]selector.Selection `yaml:"selections"`
	CurrentContainer string                        `yaml:"current_container"`
}

// Options holds global settings. Environment variables override file values.
type Options struct {
	CredentialsFile string `yaml:"credentials_file" env:"GA_CONTEXT_CREDENTIALS"`
	SocketPath      string `yaml:"socket_path" env:"GA_CONTEXT_SOCKET"`
	LogLevel        string `yaml:"log_level" env:"GA_CONTEXT_LOG_LEVEL"`
	RedisURL        string `yaml:"redis_url" env:"GA_CONTEXT_REDIS_URL"`
}

var (
	ErrSelectionNotFound = errors.New("selection not found")
	ErrInvalidContainer  = errors.New("container id is required")
)

// DefaultConfig returns the initial config.
func DefaultConfig(home string) Config {
	return Config{
		Options: Options{
			SocketPath: filepath.Join(home, ".ga-context", "daemon.sock"),
			LogLevel:   "warn",
		},
		Selections:       map[string]selector.Selection{},
		CurrentContainer: DefaultContainer,
	}
}

// EnsureDefaultConfig creates a default config file if it does not exist.
func EnsureDefaultConfig(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return nil // already exists
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	return Save(path, DefaultConfig(home))
}

// Load reads config with a file lock and applies environment overrides.
func Load(path string) (Config, error) {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return Config{}, err
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Selections == nil {
		cfg.Selections = map[string]selector.Selection{}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Save writes config with a file lock.
func Save(path string, cfg Config) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Update loads, mutates and saves config while holding the lock.
func Update(path string, fn func(*Config) error) error {
	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if cfg.Selections == nil {
		cfg.Selections = map[string]selector.Selection{}
	}
	if err := fn(&cfg); err != nil {
		return err
	}
	out, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o600)
}

// ApplyEnv overrides options from GA_CONTEXT_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(&c.Options); err != nil {
		return fmt.Errorf("env overrides: %w", err)
	}
	return nil
}

// GetSelection returns the selection stored for a container.
func (c Config) GetSelection(containerID string) (selector.Selection, error) {
	sel, ok := c.Selections[containerID]
	if !ok {
		return selector.Selection{}, ErrSelectionNotFound
	}
	return sel, nil
}

// PutSelection adds or replaces the selection for a container.
func (c *Config) PutSelection(containerID string, sel selector.Selection) error {
	if containerID == "" {
		return ErrInvalidContainer
	}
	if c.Selections == nil {
		c.Selections = map[string]selector.Selection{}
	}
	c.Selections[containerID] = sel
	if c.CurrentContainer == "" {
		c.CurrentContainer = containerID
	}
	return nil
}

// DeleteSelection removes a container's selection.
func (c *Config) DeleteSelection(containerID string) error {
	if _, ok := c.Selections[containerID]; !ok {
		return ErrSelectionNotFound
	}
	delete(c.Selections, containerID)
	if c.CurrentContainer == containerID {
		c.CurrentContainer = ""
	}
	return nil
}

// Container resolves the container to act on: explicit, then current, then default.
func (c Config) Container(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if c.CurrentContainer != "" {
		return c.CurrentContainer
	}
	return DefaultContainer
}
