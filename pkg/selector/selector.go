// Package selector drives three linked account/property/profile lists.
//
// A Selector never performs I/O. Operations return the next Request the
// caller must fetch; the result is handed back through Deliver. Properties and
// profiles already seen for a parent are served from the Cache without a
// Request. Only one Request per chain is in flight at a time.
package selector

import (
	"fmt"
	"io"
	"slices"

	"github.com/sirupsen/logrus"
)

// Selector owns one container's selection, dropdowns and cache namespace.
type Selector struct {
	containerID string
	store       Store
	cache       *Cache
	log         *logrus.Entry

	state     State
	started   bool
	restored  bool
	saved     Selection
	sel       Selection
	pending   *Request
	lists     [3][]Item
	dropdowns [3]Dropdown
	errMsg    string
	onError   func(msg string)
}

// Opt configures a Selector.
type Opt func(*Selector)

// WithCache shares a cache between selectors. Entries stay namespaced by container id.
func WithCache(c *Cache) Opt {
	return func(s *Selector) { s.cache = c }
}

// WithLogger sets the logger used for chain transitions.
func WithLogger(l *logrus.Logger) Opt {
	return func(s *Selector) { s.log = l.WithField("container", s.containerID) }
}

// WithErrorHandler registers a callback invoked once per surfaced error payload.
func WithErrorHandler(fn func(msg string)) Opt {
	return func(s *Selector) { s.onError = fn }
}

// New renders three placeholder dropdowns for containerID.
func New(containerID string, store Store, opts ...Opt) *Selector {
	s := &Selector{containerID: containerID, store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = NewCache()
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l.WithField("container", containerID)
	}
	for _, l := range []Level{LevelAccount, LevelProperty, LevelProfile} {
		s.dropdowns[l] = Dropdown{ElementID: ElementID(containerID, l), Level: l, Placeholder: LoadingLabel}
	}
	return s
}

// Init starts the chain when ready is already resolved. Otherwise it returns
// nil and the caller must call Start once ready.Done() is closed.
func (s *Selector) Init(ready *Ready) (*Request, error) {
	if ready != nil && !ready.Resolved() {
		s.log.Debug("api client not ready, deferring load")
		return nil, nil
	}
	return s.Start()
}

// Start loads the persisted selection and requests the account list.
// Only the first call has an effect.
func (s *Selector) Start() (*Request, error) {
	if s.started {
		return nil, nil
	}
	s.started = true
	if s.store != nil {
		saved, ok, err := s.store.Load(s.containerID)
		if err != nil {
			return nil, fmt.Errorf("load selection %s: %w", s.containerID, err)
		}
		if ok {
			s.saved = saved
			s.sel = saved
			s.restored = true
			s.log.WithFields(logrus.Fields{
				"account":  saved.AccountID,
				"property": saved.PropertyID,
				"profile":  saved.ProfileID,
			}).Debug("restoring saved selection")
		}
	}
	return s.request(Request{Level: LevelAccount}), nil
}

// Deliver applies a completed fetch and returns the next request, if any.
// Results that do not answer the request in flight are cached but not rendered.
func (s *Selector) Deliver(req Request, res ListResult) *Request {
	if req.Level != LevelAccount {
		s.cache.Put(s.containerID, req, res)
	}
	if s.pending == nil || *s.pending != req {
		s.log.WithField("request", req.String()).Debug("discarding stale response")
		return nil
	}
	s.pending = nil
	return s.handle(req, res)
}

// ChangeAccount selects an account and reloads its properties.
func (s *Selector) ChangeAccount(id string) (*Request, error) {
	if err := s.choose(LevelAccount, id); err != nil {
		return nil, err
	}
	return s.request(Request{Level: LevelProperty, AccountID: id}), nil
}

// ChangeProperty selects a property and reloads its profiles.
func (s *Selector) ChangeProperty(id string) (*Request, error) {
	if err := s.choose(LevelProperty, id); err != nil {
		return nil, err
	}
	return s.request(Request{Level: LevelProfile, AccountID: s.sel.AccountID, PropertyID: id}), nil
}

// ChangeProfile selects a profile and persists the full selection.
func (s *Selector) ChangeProfile(id string) error {
	if err := s.choose(LevelProfile, id); err != nil {
		return err
	}
	s.state = StateReady
	if s.store == nil {
		return nil
	}
	if err := s.store.Save(s.containerID, s.sel); err != nil {
		return fmt.Errorf("save selection %s: %w", s.containerID, err)
	}
	s.log.WithField("profile", id).Info("selection saved")
	return nil
}

// TableID returns the table id of the selected profile.
func (s *Selector) TableID() (string, error) {
	return s.sel.TableID()
}

func (s *Selector) ContainerID() string  { return s.containerID }
func (s *Selector) State() State         { return s.state }
func (s *Selector) Selection() Selection { return s.sel }
func (s *Selector) Restored() bool       { return s.restored }

// Pending returns the request in flight, if any.
func (s *Selector) Pending() *Request {
	if s.pending == nil {
		return nil
	}
	r := *s.pending
	return &r
}

// Err returns the last surfaced error message.
func (s *Selector) Err() string { return s.errMsg }

// Items returns the sorted list currently shown at a level.
func (s *Selector) Items(l Level) []Item { return cloneItems(s.lists[l]) }

// Dropdown returns the view-model for one level.
func (s *Selector) Dropdown(l Level) Dropdown {
	d := s.dropdowns[l]
	d.Options = slices.Clone(d.Options)
	return d
}

// View returns the three dropdowns in chain order.
func (s *Selector) View() []Dropdown {
	return []Dropdown{s.Dropdown(LevelAccount), s.Dropdown(LevelProperty), s.Dropdown(LevelProfile)}
}

// request serves req from the cache when possible, otherwise marks it in flight.
func (s *Selector) request(req Request) *Request {
	if req.Level != LevelAccount {
		if res, ok := s.cache.Get(s.containerID, req); ok {
			s.log.WithField("request", req.String()).Debug("cache hit")
			return s.handle(req, res)
		}
	}
	s.state = loadingState(req.Level)
	s.pending = &req
	s.log.WithFields(logrus.Fields{"request": req.String(), "state": s.state.String()}).Debug("fetching")
	out := req
	return &out
}

func (s *Selector) handle(req Request, res ListResult) *Request {
	level := req.Level
	s.pending = nil
	if res.Err != nil {
		s.clearBelow(level)
		s.halt(res.Err.Message)
		return nil
	}
	s.errMsg = ""
	items := SortByName(res.Items)
	s.lists[level] = items
	s.clearBelow(level)
	if len(items) == 0 {
		s.sel.set(level, "")
		s.dropdowns[level].Options = nil
		s.dropdowns[level].Placeholder = NotFoundLabel
		s.restored = false
		s.state = StateReady
		s.log.WithField("level", level.String()).Info("no items found")
		return nil
	}

	id := items[0].ID
	if s.restored {
		if want := s.saved.id(level); want != "" && containsID(items, want) {
			id = want
		}
	}
	s.sel.set(level, id)
	s.dropdowns[level].Placeholder = ""
	s.dropdowns[level].Options = RenderOptions(items, id)

	switch level {
	case LevelAccount:
		return s.request(Request{Level: LevelProperty, AccountID: id})
	case LevelProperty:
		return s.request(Request{Level: LevelProfile, AccountID: s.sel.AccountID, PropertyID: id})
	default:
		s.restored = false
		s.state = StateReady
		return nil
	}
}

func (s *Selector) halt(msg string) {
	s.errMsg = msg
	s.state = StateHalted
	s.pending = nil
	s.restored = false
	s.log.WithField("error", msg).Warn("list fetch failed")
	if s.onError != nil {
		s.onError(msg)
	}
}

// choose records a user choice at level and re-renders that dropdown.
func (s *Selector) choose(level Level, id string) error {
	if !s.started {
		return ErrNotStarted
	}
	if !containsID(s.lists[level], id) {
		return fmt.Errorf("%s %q: %w", level, id, ErrUnknownItem)
	}
	s.pending = nil
	s.sel.set(level, id)
	s.dropdowns[level].Options = RenderOptions(s.lists[level], id)
	s.errMsg = ""
	if level != LevelProfile {
		s.clearBelow(level)
	}
	return nil
}

// clearBelow resets the dropdowns depending on level.
func (s *Selector) clearBelow(level Level) {
	for l := level + 1; l <= LevelProfile; l++ {
		s.lists[l] = nil
		s.dropdowns[l].Options = nil
		s.dropdowns[l].Placeholder = LoadingLabel
	}
}

func containsID(items []Item, id string) bool {
	for _, it := range items {
		if it.ID == id {
			return true
		}
	}
	return false
}
