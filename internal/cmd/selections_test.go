package cmd

import (
	"strings"
	"testing"

	"github.com/adrianmross/ga-context/pkg/config"
	"github.com/adrianmross/ga-context/pkg/selector"
)

// Every command must read and write the same store the selector saves to,
// even when that store is not the config file.
func TestCommandsShareSelectionStore(t *testing.T) {
	mem := stubAPI(t, fakeAPI())
	cfgPath := writeConfig(t, config.Config{CurrentContainer: "main"})

	if _, err := execute(t, newViewCmd(), "-P", "22", "--config", cfgPath); err != nil {
		t.Fatalf("view: %v", err)
	}

	if out, err := runCurrent(t, "--config", cfgPath); err != nil || out != "ga:22\n" {
		t.Fatalf("current after view save: out=%q err=%v", out, err)
	}
	out, err := execute(t, newExportCmd(), "--config", cfgPath)
	if err != nil || !strings.Contains(out, "export GA_TABLE_ID=ga:22\n") {
		t.Fatalf("export after view save: out=%q err=%v", out, err)
	}
	out, err = execute(t, newListCmd(), "-o", "plain", "--config", cfgPath)
	if err != nil || out != "container=main* account=2 property=UA-2-2 profile=22 table=ga:22\n" {
		t.Fatalf("list after view save: out=%q err=%v", out, err)
	}

	if _, err := execute(t, newSetCmd(), "side", "-a", "1", "-p", "UA-1-1", "-P", "11", "--config", cfgPath); err != nil {
		t.Fatalf("set side: %v", err)
	}
	if _, err := execute(t, newUseCmd(), "side", "--config", cfgPath); err != nil {
		t.Fatalf("use side: %v", err)
	}
	out, err = execute(t, newViewCmd(), "--config", cfgPath)
	if err != nil || !strings.HasSuffix(out, "table: ga:11\n") {
		t.Fatalf("view should restore the selection set by set: out=%q err=%v", out, err)
	}

	if _, err := execute(t, newDeleteCmd(), "main", "--config", cfgPath); err != nil {
		t.Fatalf("delete main: %v", err)
	}
	if _, ok, _ := mem.Load("main"); ok {
		t.Fatalf("expected main removed from the store")
	}
	saved, ok, _ := mem.Load("side")
	if !ok || saved != (selector.Selection{AccountID: "1", PropertyID: "UA-1-1", ProfileID: "11"}) {
		t.Fatalf("unexpected side selection %+v ok=%v", saved, ok)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Selections) != 0 || cfg.CurrentContainer != "side" {
		t.Fatalf("config should only hold the current pointer, got %+v", cfg)
	}
}
