// Package bakery implements Lamport's bakery algorithm: a starvation-free,
// deadlock-free mutual exclusion lock for a set of participants that may grow
// while the lock is in use.
//
// Each participant owns one slot holding a "choosing" flag and a ticket.
// To enter, a participant takes a ticket one larger than every ticket it can
// see, then waits for every other participant that is either still choosing
// or holds a lower (ticket, id) pair. Releasing drops the ticket back to zero.
// Apart from growing the slot arena, no step uses a lock or an atomic
// read-modify-write on the slots.
//
// The algorithm provides:
//   - Mutual exclusion without compare-and-swap on shared state
//   - First-come-first-served entry among tickets drawn in non-overlapping
//     choosing windows
//   - A deterministic tie-break by participant id when two tickets are equal
//
// Example usage:
//
//	lock := bakery.New(bakery.WithCapacity(8))
//	id := lock.Allocate()
//
//	// Blocking acquisition
//	if err := lock.Acquire(id); err != nil {
//	    return err
//	}
//	// ... critical section ...
//	_ = lock.Release(id)
//
//	// Scoped acquisition, released on every exit path
//	err := lock.Do(id, func() error {
//	    // ... critical section ...
//	    return nil
//	})
//
// Waiting is a busy-wait paced by a short spin followed by exponential sleep,
// so the lock suits short critical sections among a modest number of
// participants. A participant id must be used by one goroutine at a time.
// Fairness is the algorithm's native weak fairness: two participants whose
// choosing windows overlap may draw the same ticket, and the lower id enters
// first.
package bakery
