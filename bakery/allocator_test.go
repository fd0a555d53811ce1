package bakery

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatorSequential(t *testing.T) {
	var a Allocator
	for want := ID(0); want < 10; want++ {
		assert.Equal(t, want, a.Next())
	}

	a.Reset()
	assert.Equal(t, ID(0), a.Next())
}

func TestAllocatorConcurrentUnique(t *testing.T) {
	var a Allocator
	const numGoroutines = 50
	const perGoroutine = 100

	var mu sync.Mutex
	seen := make(map[ID]struct{}, numGoroutines*perGoroutine)
	var wg sync.WaitGroup

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			prev := ID(0)
			for k := 0; k < perGoroutine; k++ {
				id := a.Next()
				if k > 0 {
					assert.Greater(t, uint32(id), uint32(prev), "ids must strictly increase per caller")
				}
				prev = id
				mu.Lock()
				seen[id] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, numGoroutines*perGoroutine, "ids must never repeat")
	assert.Equal(t, ID(numGoroutines*perGoroutine), a.Next(), "next id follows every id handed out")
}

func TestAllocateDoesNotRegister(t *testing.T) {
	lock := New()
	for range 5 {
		lock.Allocate()
	}
	assert.Zero(t, lock.Size(), "slots are created on first acquire, not on allocation")
}
