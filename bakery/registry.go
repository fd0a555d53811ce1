package bakery

import (
	"fmt"
	"math"
	"sync/atomic"

	"golang.org/x/sys/cpu"

	"github.com/ahrav/go-bakery/ticket"
)

// slot is one participant's published state. Both fields are only ever
// loaded and stored, never read-modify-written, so the protocol relies on
// nothing stronger than ordinary (sequentially consistent) reads and writes.
// The trailing pad keeps neighbouring slots off each other's cache line.
type slot struct {
	choosing atomic.Bool
	ticket   atomic.Uint64
	_        cpu.CacheLinePad
}

const (
	chunkShift = 6
	chunkSize  = 1 << chunkShift
	chunkMask  = chunkSize - 1

	// maxSlots keeps every slot index representable as an int on 32-bit
	// platforms.
	maxSlots = math.MaxInt32
)

type chunk [chunkSize]slot

// directory is immutable once published. Growth publishes a new directory
// that shares every existing chunk, so a slot never moves.
type directory struct {
	chunks []*chunk
}

// registry is the append-only arena of participant slots. The registration
// lock serializes growth and reset only; slot contents are read and written
// without it.
type registry struct {
	mu    ticket.Lock
	dir   atomic.Pointer[directory]
	size  atomic.Int64
	limit int // 0 means unbounded
}

// len returns the number of registered slots.
func (r *registry) len() int { return int(r.size.Load()) }

// ensure grows the registry until index is addressable. Slots are appended
// with choosing=false and ticket=0. Calls for an existing index are no-ops.
func (r *registry) ensure(index ID) error {
	if index >= maxSlots {
		return fmt.Errorf("%w: participant %d exceeds %d slots", ErrCapacityExhausted, index, maxSlots)
	}
	want := int(index) + 1
	if want <= r.len() {
		return nil
	}
	if r.limit > 0 && want > r.limit {
		return fmt.Errorf("%w: participant %d, limit %d", ErrCapacityExhausted, index, r.limit)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	have := r.len()
	if want <= have {
		return nil
	}

	var chunks []*chunk
	if d := r.dir.Load(); d != nil {
		chunks = d.chunks
	}
	if need := (want + chunkMask) >> chunkShift; need > len(chunks) {
		grown := make([]*chunk, need)
		copy(grown, chunks)
		for i := len(chunks); i < need; i++ {
			grown[i] = new(chunk)
		}
		r.dir.Store(&directory{chunks: grown})
	}
	// Publish size after the directory: a reader that observes the new size
	// is guaranteed to load a directory covering it.
	r.size.Store(int64(want))

	plog.Debugf("registry grew from %d to %d slots", have, want)
	return nil
}

// slot returns participant i's slot. i must be below a previously observed len.
func (r *registry) slot(i int) *slot {
	return &r.dir.Load().chunks[i>>chunkShift][i&chunkMask]
}

// maxTicket returns the largest ticket currently published, or 0.
func (r *registry) maxTicket() Ticket {
	var m uint64
	for j, n := 0, r.len(); j < n; j++ {
		if t := r.slot(j).ticket.Load(); t > m {
			m = t
		}
	}
	return Ticket(m)
}

// reset drops every slot. It returns how many slots still held a ticket,
// which is nonzero only if the caller broke the quiescence requirement.
func (r *registry) reset() (busy int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for j, n := 0, r.len(); j < n; j++ {
		if r.slot(j).ticket.Load() != 0 {
			busy++
		}
	}
	r.size.Store(0)
	r.dir.Store(nil)
	return busy
}
