package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/adrianmross/ga-context/internal/logging"
	"github.com/adrianmross/ga-context/pkg/config"
	"github.com/adrianmross/ga-context/pkg/ga"
	"github.com/adrianmross/ga-context/pkg/selector"
	"github.com/adrianmross/ga-context/pkg/store"
)

// Seams to allow testing without credentials, Redis, or the network.
var (
	newFetcher = func(ctx context.Context, cfg config.Config) (selector.Fetcher, error) {
		return ga.NewClient(ctx, cfg.Options.CredentialsFile)
	}
	openStore         = store.Open
	describeSelection = ga.Describe
)

// resolveConfigPath returns the config path based on flags and project discovery.
// Priority:
//  1. explicit --config
//  2. if global flag set -> ~/.ga-context/config.yml
//  3. project-local configs (in order):
//     ./.ga-context.yml, ./.ga-context.yaml,
//     ./.ga-context/config.yml, ./.ga-context/config.yaml,
//     ./ga-context.yml, ./ga-context.yaml,
//     ./ga-context/config.yml, ./ga-context/config.yaml
//  4. fallback to ~/.ga-context/config.yml
func resolveConfigPath(cfg string, global bool) (string, error) {
	if cfg != "" {
		return cfg, nil
	}

	if global {
		return globalConfigPath()
	}

	if wd, err := os.Getwd(); err == nil {
		candidates := []string{
			".ga-context.yml",
			".ga-context.yaml",
			filepath.Join(".ga-context", "config.yml"),
			filepath.Join(".ga-context", "config.yaml"),
			"ga-context.yml",
			"ga-context.yaml",
			filepath.Join("ga-context", "config.yml"),
			filepath.Join("ga-context", "config.yaml"),
		}
		for _, rel := range candidates {
			p := filepath.Join(wd, rel)
			if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
				return p, nil
			}
		}
	}

	return globalConfigPath()
}

func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".ga-context", "config.yml"), nil
}

// loadConfig resolves the config path for cmd and loads it.
func loadConfig(cmd *cobra.Command, cfgPath string) (string, config.Config, error) {
	useGlobal, err := cmd.Flags().GetBool("global")
	if err != nil {
		return "", config.Config{}, err
	}
	path, err := resolveConfigPath(cfgPath, useGlobal)
	if err != nil {
		return "", config.Config{}, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return "", config.Config{}, err
	}
	return path, cfg, nil
}

// withStore opens the configured selection store for the duration of fn.
func withStore(ctx context.Context, cfg config.Config, path string, fn func(store.Store) error) error {
	st, closeStore, err := openStore(ctx, cfg, path)
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(st)
}

// currentSelection returns the container to act on and its saved selection.
func currentSelection(ctx context.Context, cfg config.Config, path, explicit string) (string, selector.Selection, error) {
	var id string
	var sel selector.Selection
	err := withStore(ctx, cfg, path, func(st store.Store) error {
		var err error
		id, sel, err = store.Current(st, cfg, explicit)
		return err
	})
	return id, sel, err
}

// newLogger builds a logger from --log-level, falling back to the config file.
func newLogger(cmd *cobra.Command, cfg config.Config) (*logrus.Logger, error) {
	level := cfg.Options.LogLevel
	if f := cmd.Flag("log-level"); f != nil && f.Changed {
		level = f.Value.String()
	}
	return logging.New(level, cmd.ErrOrStderr())
}

// logLevelSet reports whether --log-level was given explicitly.
func logLevelSet(cmd *cobra.Command) bool {
	f := cmd.Flag("log-level")
	return f != nil && f.Changed
}
