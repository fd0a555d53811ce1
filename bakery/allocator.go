package bakery

import "github.com/ahrav/go-bakery/ticket"

// Allocator hands out strictly increasing participant ids. It does not touch
// the Registry; slots are created when an id is first used to acquire.
// The zero value is ready to use and starts at 0.
type Allocator struct {
	mu   ticket.Lock
	next ID
}

// Next returns a fresh id. Ids are never recycled until Reset.
func (a *Allocator) Next() ID {
	a.mu.Lock()
	id := a.next
	a.next++
	a.mu.Unlock()
	return id
}

// Reset restarts numbering at 0.
func (a *Allocator) Reset() {
	a.mu.Lock()
	a.next = 0
	a.mu.Unlock()
}
