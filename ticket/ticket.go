// Package ticket provides a fair mutual exclusion lock implementation using a ticket-based
// queuing system. Lock requests are served in the exact order they arrive: every caller
// draws the next ticket number and waits until the lock is serving that number.
//
// The bakery package uses Lock as its registration lock. Critical sections guarded by it
// are short (appending slots, bumping a counter), so waiters spin briefly and only fall
// back to sleeping when they are far back in the queue.
//
// The zero value is an unlocked Lock.
package ticket

import (
	"runtime"
	"sync/atomic"
	"time"
)

// Lock implements a fair mutual exclusion lock using a ticket-based queuing system.
//
// The internal implementation uses two counters:
//   - next: the next ticket number to be handed out
//   - serving: the ticket number currently allowed to hold the lock
//
// The lock is free when next == serving.
type Lock struct {
	next    atomic.Uint32
	serving atomic.Uint32
}

// NewLock creates a new, unlocked Lock.
func NewLock() *Lock { return new(Lock) }

const (
	baseWait  uint32 = 10
	waitNext         = 5
	sleepFrom        = 20 // queue distance after which waiters sleep
)

// TryLock attempts to acquire the lock without blocking. It returns true if the lock
// was acquired, and false if it is held or another caller is already queued.
func (t *Lock) TryLock() bool {
	cur := t.serving.Load()
	return t.next.CompareAndSwap(cur, cur+1)
}

// Lock acquires the lock. Waiters spin proportionally to their distance from the head
// of the queue and sleep once they are more than a few positions back.
func (t *Lock) Lock() {
	my := t.next.Add(1) - 1

	// Fast path for the uncontended case.
	if t.serving.Load() == my {
		return
	}

	wait := baseWait
	distancePrev := uint32(1)
	for {
		cur := t.serving.Load()
		if cur == my {
			return
		}
		distance := my - cur // wraps correctly with uint32 arithmetic

		if distance > 1 {
			if distance != distancePrev {
				distancePrev = distance
				wait = baseWait
			}
			for range distance * wait {
			}
		} else {
			for range waitNext {
			}
		}

		if distance > sleepFrom {
			time.Sleep(time.Millisecond)
		} else {
			runtime.Gosched()
		}
	}
}

// Unlock releases the lock, handing it to the next ticket holder.
func (t *Lock) Unlock() { t.serving.Add(1) }

// isFree reports whether no one holds or waits for the lock.
func (t *Lock) isFree() bool { return t.next.Load() == t.serving.Load() }
