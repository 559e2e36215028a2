package internal

import (
	"testing"
	"time"
)

func TestCopyTracker(t *testing.T) {
	now := testStart
	tracker := NewCopyTrackerWithClock(func() time.Time { return now })

	if tracker.Copied(1) {
		t.Error("nothing copied yet")
	}

	tracker.MarkCopied(1)
	if !tracker.Copied(1) {
		t.Error("block 1 should show as copied")
	}
	if tracker.Copied(2) {
		t.Error("block 2 was not copied")
	}

	now = now.Add(CopyResetAfter - time.Millisecond)
	if !tracker.Copied(1) {
		t.Error("block 1 should still show as copied inside the window")
	}

	now = now.Add(time.Millisecond)
	if tracker.Copied(1) {
		t.Error("block 1 should reset after the window")
	}
}

func TestCopyTracker_Reset(t *testing.T) {
	tracker := NewCopyTracker()
	tracker.MarkCopied(1)
	tracker.MarkCopied(3)
	tracker.Reset()

	if tracker.Copied(1) || tracker.Copied(3) {
		t.Error("Reset() should forget every block")
	}
}
