package internal

import (
	"sync"
	"testing"
)

func TestSideTable(t *testing.T) {
	table := NewSideTable[int]()

	if _, ok := table.Get("a"); ok {
		t.Error("Get() on empty table should miss")
	}

	table.Set("a", 1)
	if v, ok := table.Get("a"); !ok || v != 1 {
		t.Errorf("Get() = %d, %v", v, ok)
	}

	table.Set("a", 2)
	table.Set("b", 3)
	if v, _ := table.Get("a"); v != 2 {
		t.Errorf("Set() should overwrite, got %d", v)
	}

	if got := table.Update("a", func(v int) int { return v + 10 }); got != 12 {
		t.Errorf("Update() = %d, want 12", got)
	}
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}

	table.Reset()
	if table.Len() != 0 {
		t.Errorf("Len() after Reset() = %d", table.Len())
	}
}

func TestSideTable_ConcurrentUpdate(t *testing.T) {
	table := NewSideTable[int]()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			table.Update("counter", func(v int) int { return v + 1 })
		}()
	}
	wg.Wait()

	if v, _ := table.Get("counter"); v != 50 {
		t.Errorf("counter = %d, want 50", v)
	}
}
