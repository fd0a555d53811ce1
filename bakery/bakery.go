package bakery

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lni/dragonboat/v4/logger"
)

var plog = logger.GetLogger("bakery")

// ID addresses a participant's slot in the Registry.
type ID uint32

// Ticket encodes a participant's place in line. Zero means idle.
type Ticket uint64

// Lock is a Lamport bakery lock shared by a growing set of participants.
// Create one per run with New and share it by pointer; it must not be copied.
type Lock struct {
	_    noCopy
	reg  registry
	ids  Allocator
	opts options
}

// noCopy may be embedded into structs which must not be copied after first
// use. See https://golang.org/issues/8005#issuecomment-190753527.
type noCopy struct{}

// Lock is a no-op used by -copylocks checker from `go vet`.
func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Option configures a Lock.
type Option func(*options)

type options struct {
	capacity int
	limit    int
	spins    int
	minSleep time.Duration
	maxSleep time.Duration

	// choosingHook runs inside the choosing window, after the maximum ticket
	// has been read and before the new ticket is published.
	choosingHook func(ID)
}

// WithCapacity pre-registers n participant slots.
func WithCapacity(n int) Option {
	return func(o *options) { o.capacity = n }
}

// WithMaxParticipants bounds the Registry at n slots. Acquiring with an id
// at or beyond n fails with ErrCapacityExhausted. n <= 0 means unbounded.
func WithMaxParticipants(n int) Option {
	return func(o *options) { o.limit = n }
}

// WithBackoff tunes the busy-wait: spins scheduler yields, then sleeps
// doubling from minSleep to maxSleep. Non-positive sleeps keep the defaults.
func WithBackoff(spins int, minSleep, maxSleep time.Duration) Option {
	return func(o *options) {
		o.spins = max(spins, 0)
		if minSleep > 0 {
			o.minSleep = minSleep
		}
		if maxSleep > 0 {
			o.maxSleep = maxSleep
		}
		o.maxSleep = max(o.maxSleep, o.minSleep)
	}
}

// New creates a Lock.
func New(opts ...Option) *Lock {
	o := options{
		spins:    defaultSpins,
		minSleep: defaultMinSleep,
		maxSleep: defaultMaxSleep,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.limit > 0 && o.capacity > o.limit {
		o.capacity = o.limit
	}

	l := &Lock{opts: o}
	l.reg.limit = o.limit
	if o.capacity > 0 {
		// Cannot fail: capacity was clamped to the limit above.
		_ = l.reg.ensure(ID(o.capacity - 1))
	}
	return l
}

// Allocate returns a fresh participant id. It does not register a slot.
func (l *Lock) Allocate() ID { return l.ids.Next() }

// Backoff reports the effective busy-wait tuning.
func (l *Lock) Backoff() (spins int, minSleep, maxSleep time.Duration) {
	return l.opts.spins, l.opts.minSleep, l.opts.maxSleep
}

// Size returns the number of registered participant slots.
func (l *Lock) Size() int { return l.reg.len() }

// Acquire blocks until participant id holds the lock. It registers the
// participant on first use. The wait cannot be interrupted; use
// AcquireContext for that.
func (l *Lock) Acquire(id ID) error {
	return l.acquire(context.Background(), id)
}

// AcquireContext is Acquire with cancellation. The context is polled between
// wait iterations. If it is done first, the participant's ticket is withdrawn
// and the context's error is returned.
func (l *Lock) AcquireContext(ctx context.Context, id ID) error {
	return l.acquire(ctx, id)
}

func (l *Lock) acquire(ctx context.Context, id ID) error {
	if err := l.reg.ensure(id); err != nil {
		return err
	}
	me := l.reg.slot(int(id))
	if me.ticket.Load() != 0 {
		plog.Warningf("participant %d acquired twice without release", id)
		return fmt.Errorf("%w: participant %d", ErrAlreadyHeld, id)
	}

	// Choosing window.
	me.choosing.Store(true)
	mine := l.reg.maxTicket() + 1
	if l.opts.choosingHook != nil {
		l.opts.choosingHook(id)
	}
	me.ticket.Store(uint64(mine))
	me.choosing.Store(false)

	done := ctx.Done()
	b := backoff{spins: l.opts.spins, minSleep: l.opts.minSleep, maxSleep: l.opts.maxSleep}
	for j, n := 0, l.reg.len(); j < n; j++ {
		if j == int(id) {
			continue
		}
		other := l.reg.slot(j)

		b.reset()
		for other.choosing.Load() {
			if !b.wait(done) {
				return l.withdraw(ctx, me, id)
			}
		}

		b.reset()
		for {
			t := Ticket(other.ticket.Load())
			if t == 0 || !Less(t, ID(j), mine, id) {
				break
			}
			if !b.wait(done) {
				return l.withdraw(ctx, me, id)
			}
		}
	}
	return nil
}

// withdraw gives up a pending request. Dropping the ticket to zero is the
// same transition as a release, so waiters behind us are unaffected.
func (l *Lock) withdraw(ctx context.Context, me *slot, id ID) error {
	me.ticket.Store(0)
	return fmt.Errorf("bakery: acquire participant %d: %w", id, ctx.Err())
}

// Release gives up the lock held by participant id. Releasing a participant
// that holds no ticket returns ErrNotHeld and changes nothing.
func (l *Lock) Release(id ID) error {
	if uint64(id) >= uint64(l.reg.len()) {
		plog.Warningf("release of unregistered participant %d", id)
		return fmt.Errorf("%w: participant %d is not registered", ErrNotHeld, id)
	}
	s := l.reg.slot(int(id))
	if s.ticket.Load() == 0 {
		plog.Warningf("release of idle participant %d", id)
		return fmt.Errorf("%w: participant %d", ErrNotHeld, id)
	}
	s.ticket.Store(0)
	return nil
}

// Do runs fn while participant id holds the lock. The lock is released on
// every exit path, including a panic in fn.
func (l *Lock) Do(id ID, fn func() error) (err error) {
	if err := l.Acquire(id); err != nil {
		return err
	}
	defer func() {
		if rerr := l.Release(id); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return fn()
}

// Locker returns a sync.Locker acting as participant id. Its methods panic
// on protocol misuse, like sync.Mutex does for an unlock of an unlocked mutex.
func (l *Lock) Locker(id ID) sync.Locker {
	return locker{l: l, id: id}
}

type locker struct {
	l  *Lock
	id ID
}

func (k locker) Lock() {
	if err := k.l.Acquire(k.id); err != nil {
		panic(err)
	}
}

func (k locker) Unlock() {
	if err := k.l.Release(k.id); err != nil {
		panic(err)
	}
}

// Reset empties the Registry and restarts id allocation at 0. No participant
// may be inside Acquire, Release or a critical section while it runs; Reset
// does not wait for quiescence.
func (l *Lock) Reset() {
	if busy := l.reg.reset(); busy > 0 {
		plog.Warningf("reset with %d participants still holding tickets", busy)
	}
	l.ids.Reset()
	plog.Infof("registry reset")
}
