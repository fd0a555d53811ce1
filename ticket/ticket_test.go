package ticket

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTimeout  = 5 * time.Second
	pollInterval = time.Millisecond
)

func TestLockConcurrentAccess(t *testing.T) {
	lock := NewLock()
	const numGoroutines = 100
	const iterations = 500
	counter := 0
	var wg sync.WaitGroup

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for range iterations {
				lock.Lock()
				counter++
				lock.Unlock()
			}
		}()
	}
	wg.Wait()

	expected := numGoroutines * iterations
	assert.Equal(t, expected, counter, "Expected counter to be %d, got %d", expected, counter)
	assert.True(t, lock.isFree(), "lock should be free once every goroutine unlocked")
}

func TestLockZeroValue(t *testing.T) {
	var lock Lock
	assert.True(t, lock.isFree())

	lock.Lock()
	assert.False(t, lock.isFree())
	lock.Unlock()
	assert.True(t, lock.isFree())
}

func TestLockServesInTicketOrder(t *testing.T) {
	lock := NewLock()
	const numGoroutines = 20

	var order []int
	var wg sync.WaitGroup

	// Hold the lock while the waiters queue up one at a time, so that ticket
	// order is known in advance.
	lock.Lock()
	for i := 0; i < numGoroutines; i++ {
		queued := lock.next.Load()
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			lock.Lock()
			order = append(order, id)
			lock.Unlock()
		}(i)
		require.Eventually(t, func() bool { return lock.next.Load() == queued+1 }, testTimeout, pollInterval)
	}
	lock.Unlock()
	wg.Wait()

	require.Len(t, order, numGoroutines)
	for i, id := range order {
		assert.Equal(t, i, id, "goroutines should be served in the order they queued: %v", order)
	}
}

func TestTryLock(t *testing.T) {
	lock := NewLock()

	require.True(t, lock.TryLock(), "TryLock on a free lock should succeed")
	assert.False(t, lock.TryLock(), "TryLock on a held lock should fail")

	lock.Unlock()
	assert.True(t, lock.TryLock(), "TryLock should succeed again after Unlock")
	lock.Unlock()
	assert.True(t, lock.isFree())
}

func TestTryLockDoesNotJumpQueue(t *testing.T) {
	lock := NewLock()
	lock.Lock()

	done := make(chan struct{})
	go func() {
		lock.Lock()
		lock.Unlock()
		close(done)
	}()
	require.Eventually(t, func() bool { return lock.next.Load() == 2 }, testTimeout, pollInterval)

	assert.False(t, lock.TryLock(), "TryLock must fail while a waiter is queued")
	lock.Unlock()
	<-done
	assert.True(t, lock.isFree())
}

// BenchmarkMutexUncontended tests mutex performance with no contention
func BenchmarkMutexUncontended(b *testing.B) {
	var mu sync.Mutex
	for i := 0; i < b.N; i++ {
		mu.Lock()
		mu.Unlock()
	}
}

// BenchmarkTicketLockUncontended tests ticket lock performance with no contention
func BenchmarkTicketLockUncontended(b *testing.B) {
	lock := NewLock()
	for i := 0; i < b.N; i++ {
		lock.Lock()
		lock.Unlock()
	}
}

// BenchmarkTicketLockContended tests ticket lock performance under contention
func BenchmarkTicketLockContended(b *testing.B) {
	lock := NewLock()
	shared := 0
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			lock.Lock()
			shared++
			lock.Unlock()
		}
	})
}
