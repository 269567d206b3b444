package selector

import (
	"context"
	"errors"
	"fmt"
)

// Level identifies one of the three linked lists.
type Level int

const (
	LevelAccount Level = iota
	LevelProperty
	LevelProfile
)

var levelNames = [...]string{"account", "property", "profile"}

func (l Level) String() string {
	if l < LevelAccount || l > LevelProfile {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

func (l Level) MarshalText() ([]byte, error) {
	if l < LevelAccount || l > LevelProfile {
		return nil, fmt.Errorf("invalid level %d", int(l))
	}
	return []byte(levelNames[l]), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	for i, name := range levelNames {
		if name == string(b) {
			*l = Level(i)
			return nil
		}
	}
	return fmt.Errorf("unknown level %q", b)
}

// elementSuffix is the per-level child element name under the container.
func (l Level) elementSuffix() string {
	switch l {
	case LevelAccount:
		return "acct-select"
	case LevelProperty:
		return "property-select"
	default:
		return "profile-select"
	}
}

// State is the position of the load chain.
type State int

const (
	StateInit State = iota
	StateLoadingAccounts
	StateLoadingProperties
	StateLoadingProfiles
	StateReady
	// StateHalted means an error payload stopped the chain.
	StateHalted
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateLoadingAccounts:
		return "loading_accounts"
	case StateLoadingProperties:
		return "loading_properties"
	case StateLoadingProfiles:
		return "loading_profiles"
	case StateReady:
		return "ready"
	case StateHalted:
		return "halted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func loadingState(l Level) State {
	switch l {
	case LevelAccount:
		return StateLoadingAccounts
	case LevelProperty:
		return StateLoadingProperties
	default:
		return StateLoadingProfiles
	}
}

// Item is one entry of a fetched list.
type Item struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// APIError is the error payload carried by a failed list response.
type APIError struct {
	Message string `json:"message" yaml:"message"`
}

func (e *APIError) Error() string { return e.Message }

// ListResult is the raw response of one list fetch.
type ListResult struct {
	Kind  Level     `json:"kind" yaml:"kind"`
	Items []Item    `json:"items" yaml:"items"`
	Err   *APIError `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed builds a ListResult carrying an error payload.
func Failed(kind Level, err error) ListResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return ListResult{Kind: kind, Err: &APIError{Message: msg}}
}

// Selection is the composite account/property/profile choice.
// PropertyID is only meaningful for AccountID, ProfileID only for PropertyID.
type Selection struct {
	AccountID  string `json:"account_id" yaml:"account_id"`
	PropertyID string `json:"property_id" yaml:"property_id"`
	ProfileID  string `json:"profile_id" yaml:"profile_id"`
}

// Complete reports whether all three levels are chosen.
func (s Selection) Complete() bool {
	return s.AccountID != "" && s.PropertyID != "" && s.ProfileID != ""
}

// TableID returns the reporting table id for the selection.
func (s Selection) TableID() (string, error) {
	if s.ProfileID == "" {
		return "", ErrNoProfile
	}
	return TablePrefix + s.ProfileID, nil
}

func (s Selection) id(l Level) string {
	switch l {
	case LevelAccount:
		return s.AccountID
	case LevelProperty:
		return s.PropertyID
	default:
		return s.ProfileID
	}
}

func (s *Selection) set(l Level, id string) {
	switch l {
	case LevelAccount:
		s.AccountID = id
		s.PropertyID = ""
		s.ProfileID = ""
	case LevelProperty:
		s.PropertyID = id
		s.ProfileID = ""
	default:
		s.ProfileID = id
	}
}

// TablePrefix prefixes profile ids to form table ids.
const TablePrefix = "ga:"

// Request is a single list fetch the driver must execute.
type Request struct {
	Level      Level  `json:"level"`
	AccountID  string `json:"account_id,omitempty"`
	PropertyID string `json:"property_id,omitempty"`
}

// parentKey identifies the parent whose children the request lists.
func (r Request) parentKey() string {
	switch r.Level {
	case LevelProperty:
		return "properties/" + r.AccountID
	case LevelProfile:
		return "profiles/" + r.AccountID + "/" + r.PropertyID
	default:
		return "accounts"
	}
}

func (r Request) String() string {
	return r.parentKey()
}

// Store persists selections keyed by container id.
type Store interface {
	Load(containerID string) (Selection, bool, error)
	Save(containerID string, sel Selection) error
}

// Fetcher executes list requests against the management API.
// Failures are reported in the result's error payload.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ListResult
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, req Request) ListResult

func (f FetcherFunc) Fetch(ctx context.Context, req Request) ListResult { return f(ctx, req) }

var (
	ErrNoProfile   = errors.New("no profile selected")
	ErrUnknownItem = errors.New("item not in list")
	ErrNotStarted  = errors.New("selector not started")
)
