package internal

import (
	"sync"
)

// SideTable holds per-message UI state keyed by message id, so messages
// themselves never have to be edited
type SideTable[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
}

// NewSideTable creates an empty SideTable
func NewSideTable[V any]() *SideTable[V] {
	return &SideTable[V]{
		entries: make(map[string]V),
	}
}

// Get retrieves the entry for a message id
func (t *SideTable[V]) Get(messageID string) (V, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.entries[messageID]
	return v, ok
}

// Set stores the entry for a message id
func (t *SideTable[V]) Set(messageID string, v V) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[messageID] = v
}

// Update replaces the entry for messageID with fn applied to the current one
func (t *SideTable[V]) Update(messageID string, fn func(V) V) V {
	t.mu.Lock()
	defer t.mu.Unlock()
	v := fn(t.entries[messageID])
	t.entries[messageID] = v
	return v
}

// Len returns the number of entries
func (t *SideTable[V]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Reset removes every entry
func (t *SideTable[V]) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.entries)
}
