package bakery

import "time"

const (
	testTimeout  = 10 * time.Second
	pollInterval = 100 * time.Microsecond
)

// withChoosingHook injects fn into the choosing window of every acquire.
func withChoosingHook(fn func(ID)) Option {
	return func(o *options) { o.choosingHook = fn }
}

// fastBackoff keeps tests quick without changing ordering.
func fastBackoff() Option {
	return WithBackoff(8, 10*time.Microsecond, 200*time.Microsecond)
}

func ticketOf(l *Lock, id ID) Ticket {
	if int(id) >= l.Size() {
		return 0
	}
	return Ticket(l.reg.slot(int(id)).ticket.Load())
}

// published reports whether id has finished choosing and holds a ticket.
func published(l *Lock, id ID) bool {
	if int(id) >= l.Size() {
		return false
	}
	s := l.reg.slot(int(id))
	return !s.choosing.Load() && s.ticket.Load() != 0
}
