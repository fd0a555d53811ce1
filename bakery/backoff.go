package bakery

import (
	"runtime"
	"time"
)

const (
	defaultSpins    = 16
	defaultMinSleep = 50 * time.Microsecond
	defaultMaxSleep = time.Millisecond
)

// backoff paces a single busy-wait loop: a few scheduler yields first, then
// sleeps that double from minSleep up to maxSleep.
type backoff struct {
	spins    int
	minSleep time.Duration
	maxSleep time.Duration

	n     int
	sleep time.Duration
}

// wait blocks for one poll interval. It returns false if done was closed
// while waiting; a nil done never fires.
func (b *backoff) wait(done <-chan struct{}) bool {
	if b.n < b.spins {
		b.n++
		runtime.Gosched()
		return !closed(done)
	}

	if b.sleep == 0 {
		b.sleep = b.minSleep
	}
	if done == nil {
		time.Sleep(b.sleep)
	} else {
		t := time.NewTimer(b.sleep)
		select {
		case <-done:
			t.Stop()
			return false
		case <-t.C:
		}
	}
	if b.sleep < b.maxSleep {
		b.sleep = min(b.sleep*2, b.maxSleep)
	}
	return true
}

func (b *backoff) reset() {
	b.n = 0
	b.sleep = 0
}

func closed(done <-chan struct{}) bool {
	if done == nil {
		return false
	}
	select {
	case <-done:
		return true
	default:
		return false
	}
}
