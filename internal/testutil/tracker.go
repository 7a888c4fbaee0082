package testutil

import (
	"io"
	"sync"
)

// Tracker records the resources registered with it, in the role the host
// statement plays for open procedure results.
type Tracker struct {
	mu           sync.Mutex
	open         []io.Closer
	Registered   int
	Unregistered int
}

// RegisterCloseableResource implements invoker.ResourceTracker.
func (t *Tracker) RegisterCloseableResource(c io.Closer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Registered++
	t.open = append(t.open, c)
}

// UnregisterCloseableResource implements invoker.ResourceTracker.
func (t *Tracker) UnregisterCloseableResource(c io.Closer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Unregistered++
	for i, o := range t.open {
		if o == c {
			t.open = append(t.open[:i], t.open[i+1:]...)
			break
		}
	}
}

// Open returns the number of resources still registered.
func (t *Tracker) Open() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.open)
}

// CloseAll closes every resource that is still registered, the way the host
// does when a statement ends.
func (t *Tracker) CloseAll() error {
	t.mu.Lock()
	open := append([]io.Closer(nil), t.open...)
	t.mu.Unlock()

	var first error
	for _, c := range open {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
