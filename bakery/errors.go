package bakery

import "errors"

var (
	// ErrNotHeld is returned by Release for a participant that is not
	// registered or holds no ticket. The Registry is left untouched.
	ErrNotHeld = errors.New("bakery: release of a participant that holds no ticket")

	// ErrAlreadyHeld is returned by Acquire when the participant already holds
	// or is requesting the lock. The lock is not reentrant.
	ErrAlreadyHeld = errors.New("bakery: participant already holds a ticket")

	// ErrCapacityExhausted is returned when a bounded Lock is asked to register
	// a participant index at or beyond its maximum.
	ErrCapacityExhausted = errors.New("bakery: participant capacity exhausted")
)
