package auth

import "sync"

// Tracker is the in-process Navigator.
type Tracker struct {
	mu         sync.Mutex
	location   string
	redirects  int
	onRedirect func(string)
}

type TrackerOption func(*Tracker)

// WithRedirectHook runs fn after every hard redirect with the target path.
func WithRedirectHook(fn func(path string)) TrackerOption {
	return func(t *Tracker) {
		t.onRedirect = fn
	}
}

// NewTracker starts at initial, or "/" when initial is empty.
func NewTracker(initial string, opts ...TrackerOption) *Tracker {
	if initial == "" {
		initial = "/"
	}
	t := &Tracker{location: initial}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

func (t *Tracker) Location() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.location
}

func (t *Tracker) Visit(path string) {
	if path == "" {
		return
	}
	t.mu.Lock()
	t.location = path
	t.mu.Unlock()
}

func (t *Tracker) Redirect(path string) {
	t.mu.Lock()
	t.location = path
	t.redirects++
	hook := t.onRedirect
	t.mu.Unlock()
	if hook != nil {
		hook(path)
	}
}

// Redirects counts hard redirects performed so far.
func (t *Tracker) Redirects() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.redirects
}
