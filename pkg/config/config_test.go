package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/adrianmross/ga-context/pkg/selector"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	cfg := Config{
		Options:          Options{CredentialsFile: "/tmp/sa.json", LogLevel: "debug"},
		Selections:       map[string]selector.Selection{"main": {AccountID: "1", PropertyID: "UA-1-1", ProfileID: "42"}},
		CurrentContainer: "main",
	}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Options != cfg.Options {
		t.Fatalf("options mismatch: %+v", got.Options)
	}
	if got.Selections["main"] != cfg.Selections["main"] {
		t.Fatalf("selection mismatch: %+v", got.Selections["main"])
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := Save(path, Config{Options: Options{CredentialsFile: "/from/file.json", LogLevel: "warn"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	t.Setenv("GA_CONTEXT_CREDENTIALS", "/from/env.json")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Options.CredentialsFile != "/from/env.json" {
		t.Fatalf("expected env override, got %s", cfg.Options.CredentialsFile)
	}
	if cfg.Options.LogLevel != "warn" {
		t.Fatalf("expected file value kept, got %s", cfg.Options.LogLevel)
	}
	if cfg.Selections == nil {
		t.Fatalf("expected non-nil selections map")
	}
}

func TestUpdateCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	err := Update(path, func(c *Config) error {
		return c.PutSelection("main", selector.Selection{AccountID: "1", PropertyID: "2", ProfileID: "3"})
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CurrentContainer != "main" {
		t.Fatalf("expected first selection to become current, got %q", cfg.CurrentContainer)
	}
	if sel, err := cfg.GetSelection("main"); err != nil || sel.ProfileID != "3" {
		t.Fatalf("unexpected selection %+v err=%v", sel, err)
	}
}

func TestSelectionLifecycle(t *testing.T) {
	var cfg Config
	if err := cfg.PutSelection("", selector.Selection{}); !errors.Is(err, ErrInvalidContainer) {
		t.Fatalf("expected invalid container error, got %v", err)
	}
	_ = cfg.PutSelection("b", selector.Selection{ProfileID: "2"})
	_ = cfg.PutSelection("a", selector.Selection{ProfileID: "1"})
	if len(cfg.Selections) != 2 || cfg.CurrentContainer != "b" {
		t.Fatalf("expected two selections with b current, got %+v", cfg)
	}
	if err := cfg.DeleteSelection("b"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if cfg.CurrentContainer != "" {
		t.Fatalf("expected current cleared, got %q", cfg.CurrentContainer)
	}
	if err := cfg.DeleteSelection("b"); !errors.Is(err, ErrSelectionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := cfg.GetSelection("zzz"); !errors.Is(err, ErrSelectionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestContainerResolution(t *testing.T) {
	cfg := Config{CurrentContainer: "cur"}
	if got := cfg.Container("x"); got != "x" {
		t.Fatalf("explicit should win, got %s", got)
	}
	if got := cfg.Container(""); got != "cur" {
		t.Fatalf("current should be used, got %s", got)
	}
	if got := (Config{}).Container(""); got != DefaultContainer {
		t.Fatalf("expected default, got %s", got)
	}
}
