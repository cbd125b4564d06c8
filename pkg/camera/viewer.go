package camera

import (
	"sync"
	"sync/atomic"
)

// Viewer owns the one live session of a UI. Starting a source stops and releases
// the previous session first, so two handles are never open at once.
type Viewer struct {
	open Opener
	opts []Option

	mu      sync.Mutex // serializes Start and Stop
	current atomic.Pointer[Session]
}

func NewViewer(open Opener, opts ...Option) *Viewer {
	return &Viewer{open: open, opts: opts}
}

// Start replaces the current session with one reading source. When the open
// fails the previous session is still gone and nothing is current.
func (v *Viewer) Start(source Source) (*Session, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.current.Swap(nil).Stop()

	s, err := Start(v.open, source, v.opts...)
	if err != nil {
		return nil, err
	}
	v.current.Store(s)
	return s, nil
}

func (v *Viewer) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.current.Swap(nil).Stop()
}

// Current returns the live session, or nil. It does not wait for a Start in progress.
func (v *Viewer) Current() *Session {
	return v.current.Load()
}
