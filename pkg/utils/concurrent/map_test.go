package concurrent

import (
	"strconv"
	"sync"
	"testing"
)

func TestMapConcurrentAccess(t *testing.T) {
	m := NewMap[string, int](HashString)
	var wg sync.WaitGroup
	for i := range 100 {
		wg.Go(func() {
			m.Set(strconv.Itoa(i), i)
		})
	}
	wg.Wait()

	if m.Len() != 100 {
		t.Fatalf("Len() = %d, want 100", m.Len())
	}
	if v, ok := m.Get("42"); !ok || v != 42 {
		t.Fatalf("Get(42) = %d, %v", v, ok)
	}
	m.Remove("42")
	if _, ok := m.Get("42"); ok {
		t.Fatal("Remove did not delete the key")
	}

	sum := 0
	m.Range(func(_ string, v int) bool {
		sum += v
		return true
	})
	if sum != 99*100/2-42 {
		t.Fatalf("Range sum = %d", sum)
	}

	visited := 0
	m.Range(func(string, int) bool {
		visited++
		return false
	})
	if visited != 1 {
		t.Fatalf("Range visited %d after stop", visited)
	}

	m.Clear()
	if m.Len() != 0 {
		t.Fatalf("Len() after Clear = %d", m.Len())
	}
}
