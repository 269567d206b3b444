package selector

import (
	"context"
	"sync"
)

// fakeAPI serves canned lists and counts calls per request.
type fakeAPI struct {
	mu         sync.Mutex
	accounts   ListResult
	properties map[string]ListResult // account id
	profiles   map[string]ListResult // account/property
	calls      map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		accounts: ListResult{Kind: LevelAccount, Items: []Item{
			{ID: "1", Name: "B"},
			{ID: "2", Name: "a"},
			{ID: "5", Name: "c"},
		}},
		properties: map[string]ListResult{
			"1": {Kind: LevelProperty, Items: []Item{{ID: "11", Name: "b1"}}},
			"2": {Kind: LevelProperty, Items: []Item{{ID: "21", Name: "Zeta"}, {ID: "22", Name: "alpha"}}},
			"5": {Kind: LevelProperty, Items: []Item{{ID: "8", Name: "first"}, {ID: "9", Name: "second"}}},
		},
		profiles: map[string]ListResult{
			"1/11": {Kind: LevelProfile, Items: []Item{{ID: "111", Name: "p"}}},
			"2/21": {Kind: LevelProfile, Items: []Item{{ID: "211", Name: "z"}}},
			"2/22": {Kind: LevelProfile, Items: []Item{{ID: "221", Name: "y"}, {ID: "222", Name: "x"}}},
			"5/8":  {Kind: LevelProfile, Items: []Item{{ID: "81", Name: "only"}}},
			"5/9":  {Kind: LevelProfile, Items: []Item{{ID: "1", Name: "one"}, {ID: "3", Name: "three"}}},
		},
		calls: make(map[string]int),
	}
}

func (f *fakeAPI) Fetch(_ context.Context, req Request) ListResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[req.parentKey()]++
	switch req.Level {
	case LevelAccount:
		return f.accounts
	case LevelProperty:
		return f.properties[req.AccountID]
	default:
		return f.profiles[req.AccountID+"/"+req.PropertyID]
	}
}

func (f *fakeAPI) count(req Request) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[req.parentKey()]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// memStore is a Store backed by a map.
type memStore struct {
	data  map[string]Selection
	saves int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]Selection)}
}

func (m *memStore) Load(id string) (Selection, bool, error) {
	sel, ok := m.data[id]
	return sel, ok, nil
}

func (m *memStore) Save(id string, sel Selection) error {
	m.saves++
	m.data[id] = sel
	return nil
}
