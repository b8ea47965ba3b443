package contacts

import (
	"context"
	"sync"
)

// InMemoryDirectory is a fixed contact list for local/dev use. Search returns
// every entry; ranking is left to the resolver.
type InMemoryDirectory struct {
	mu      sync.RWMutex
	entries []Candidate
	granted bool
}

func NewInMemoryDirectory(entries []Candidate) *InMemoryDirectory {
	copied := make([]Candidate, len(entries))
	copy(copied, entries)
	return &InMemoryDirectory{entries: copied, granted: true}
}

// SetPermission toggles simulated platform contact access.
func (d *InMemoryDirectory) SetPermission(granted bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.granted = granted
}

func (d *InMemoryDirectory) Search(_ context.Context, _ string) ([]Candidate, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.granted {
		return nil, ErrPermissionDenied
	}
	out := make([]Candidate, len(d.entries))
	copy(out, d.entries)
	return out, nil
}
