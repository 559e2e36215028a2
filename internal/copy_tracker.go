package internal

import (
	"sync"
	"time"
)

// CopyResetAfter is how long a code block shows as copied
const CopyResetAfter = 2 * time.Second

// CopyTracker remembers which code blocks of the current render pass were
// copied recently. Indexes are positions in CodeBlocks, not message ids.
type CopyTracker struct {
	mu     sync.Mutex
	copied map[int]time.Time
	window time.Duration
	now    func() time.Time
}

// NewCopyTracker creates a tracker using the wall clock
func NewCopyTracker() *CopyTracker {
	return NewCopyTrackerWithClock(time.Now)
}

// NewCopyTrackerWithClock creates a tracker with a custom clock
func NewCopyTrackerWithClock(now func() time.Time) *CopyTracker {
	return &CopyTracker{
		copied: make(map[int]time.Time),
		window: CopyResetAfter,
		now:    now,
	}
}

// MarkCopied records that block index was copied just now
func (t *CopyTracker) MarkCopied(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.copied[index] = t.now()
}

// Copied reports whether block index was copied within the reset window
func (t *CopyTracker) Copied(index int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	at, ok := t.copied[index]
	if !ok {
		return false
	}
	if t.now().Sub(at) >= t.window {
		delete(t.copied, index)
		return false
	}
	return true
}

// Reset forgets every copy mark, e.g. when a different thread is rendered
func (t *CopyTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.copied)
}
