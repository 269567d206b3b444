package selector

import "sync"

// Ready is a one-shot signal that the API client can serve requests.
type Ready struct {
	once sync.Once
	ch   chan struct{}
}

// NewReady returns an unresolved signal.
func NewReady() *Ready {
	return &Ready{ch: make(chan struct{})}
}

// Resolve fires the signal. Later calls do nothing.
func (r *Ready) Resolve() {
	r.once.Do(func() { close(r.ch) })
}

// Done is closed once Resolve has been called.
func (r *Ready) Done() <-chan struct{} {
	return r.ch
}

// Resolved reports whether Resolve has been called.
func (r *Ready) Resolved() bool {
	select {
	case <-r.ch:
		return true
	default:
		return false
	}
}
