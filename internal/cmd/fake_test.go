package cmd

import (
	"context"
	"testing"

	"github.com/adrianmross/ga-context/pkg/config"
	"github.com/adrianmross/ga-context/pkg/selector"
	"github.com/adrianmross/ga-context/pkg/store"
)

var fakeProperties = map[string][]selector.Item{
	"1": {{ID: "UA-1-1", Name: "Site One"}},
	"2": {{ID: "UA-2-1", Name: "Zeta site"}, {ID: "UA-2-2", Name: "Apps"}},
}

var fakeProfiles = map[string][]selector.Item{
	"1/UA-1-1": {{ID: "11", Name: "All"}},
	"2/UA-2-1": {{ID: "21", Name: "Raw"}},
	"2/UA-2-2": {{ID: "22", Name: "Main"}, {ID: "23", Name: "Filtered"}},
}

// fakeAPI serves a fixed account/property/profile tree. Sorted by name the
// defaults are account 2, property UA-2-2 and profile 23.
func fakeAPI() selector.FetcherFunc {
	return func(_ context.Context, req selector.Request) selector.ListResult {
		switch req.Level {
		case selector.LevelAccount:
			return selector.ListResult{Kind: req.Level, Items: []selector.Item{{ID: "1", Name: "Beta"}, {ID: "2", Name: "alpha"}}}
		case selector.LevelProperty:
			return selector.ListResult{Kind: req.Level, Items: fakeProperties[req.AccountID]}
		default:
			return selector.ListResult{Kind: req.Level, Items: fakeProfiles[req.AccountID+"/"+req.PropertyID]}
		}
	}
}

// stubFetcher points the fetcher seam at f. Selections stay in the config file.
func stubFetcher(t *testing.T, f selector.Fetcher) {
	t.Helper()
	orig := newFetcher
	newFetcher = func(context.Context, config.Config) (selector.Fetcher, error) { return f, nil }
	t.Cleanup(func() { newFetcher = orig })
}

// stubAPI points the fetcher seam at f and the store seam at an in-memory
// store, the way a Redis-backed config keeps selections out of the file.
func stubAPI(t *testing.T, f selector.Fetcher) *store.MemoryStore {
	t.Helper()
	stubFetcher(t, f)
	orig := openStore
	mem := store.NewMemoryStore()
	openStore = func(context.Context, config.Config, string) (store.Store, func() error, error) {
		return mem, func() error { return nil }, nil
	}
	t.Cleanup(func() { openStore = orig })
	return mem
}

// writeConfig saves cfg to a temp file and returns its path.
func writeConfig(t *testing.T, cfg config.Config) string {
	t.Helper()
	cfgPath := t.TempDir() + "/config.yml"
	if err := config.Save(cfgPath, cfg); err != nil {
		t.Fatalf("save config: %v", err)
	}
	return cfgPath
}
