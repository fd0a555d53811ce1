// Package sim is a small process simulator built on a bakery.Lock. Each
// simulated process runs on its own goroutine as one bakery participant, and
// every change to process state or to the system queues happens while that
// participant holds the lock.
package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/lni/dragonboat/v4/logger"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-bakery/bakery"
)

var plog = logger.GetLogger("sim")

// State is a process lifecycle state.
type State string

const (
	StateNew        State = "NEW"
	StateReady      State = "READY"
	StateRunning    State = "RUNNING"
	StateTerminated State = "TERMINATED"
)

// Process is a simulated process control block.
type Process struct {
	PID       int
	Burst     int // ticks of work
	Remaining int
	State     State
	ID        bakery.ID // bakery participant
}

// Transition records one state change.
type Transition struct {
	PID      int
	From, To State
}

func (t Transition) String() string {
	return fmt.Sprintf("[PCB] %d: %s -> %s", t.PID, t.From, t.To)
}

// Snapshot is a consistent copy of the system queues.
type Snapshot struct {
	Ready      []Process
	Terminated []Process
}

// System owns the process queues. All fields below lock are guarded by it.
type System struct {
	lock         *bakery.Lock
	tick         time.Duration
	onTransition func(Transition)

	observer   bakery.ID
	lastPID    int
	ready      []*Process
	terminated []*Process
}

// NewSystem creates a System on lock. Each unit of burst takes tick to run.
// onTransition, if set, is called for every state change while the lock is
// held, so calls never interleave.
func NewSystem(lock *bakery.Lock, tick time.Duration, onTransition func(Transition)) *System {
	return &System{
		lock:         lock,
		tick:         tick,
		onTransition: onTransition,
		observer:     lock.Allocate(),
	}
}

// Run admits one process per burst and runs them concurrently until all have
// terminated or ctx is done.
func (s *System) Run(ctx context.Context, bursts []int) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, burst := range bursts {
		if burst < 0 {
			_ = g.Wait()
			return fmt.Errorf("sim: negative burst %d", burst)
		}
		p := &Process{Burst: burst, Remaining: burst, State: StateNew, ID: s.lock.Allocate()}
		err := s.lock.Do(p.ID, func() error {
			s.lastPID++
			p.PID = s.lastPID
			s.transition(p, StateReady)
			s.ready = append(s.ready, p)
			return nil
		})
		if err != nil {
			_ = g.Wait()
			return err
		}
		g.Go(func() error { return s.runProcess(gctx, p) })
	}
	return g.Wait()
}

func (s *System) runProcess(ctx context.Context, p *Process) error {
	if err := s.lock.Do(p.ID, func() error {
		s.transition(p, StateRunning)
		return nil
	}); err != nil {
		return err
	}
	plog.Debugf("pid %d running as participant %d", p.PID, p.ID)

	for {
		var remaining int
		if err := s.lock.Do(p.ID, func() error {
			remaining = p.Remaining
			return nil
		}); err != nil {
			return err
		}
		if remaining == 0 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.tick):
		}

		if err := s.lock.Do(p.ID, func() error {
			p.Remaining--
			return nil
		}); err != nil {
			return err
		}
	}

	return s.lock.Do(p.ID, func() error {
		s.transition(p, StateTerminated)
		for i, q := range s.ready {
			if q == p {
				s.ready = append(s.ready[:i], s.ready[i+1:]...)
				break
			}
		}
		s.terminated = append(s.terminated, p)
		plog.Debugf("pid %d finished after %d ticks", p.PID, p.Burst)
		return nil
	})
}

// transition must be called with the lock held.
func (s *System) transition(p *Process, to State) {
	t := Transition{PID: p.PID, From: p.State, To: to}
	p.State = to
	if s.onTransition != nil {
		s.onTransition(t)
	}
}

// Snapshot copies the queues while holding the lock as the system's own
// observer participant.
func (s *System) Snapshot() (Snapshot, error) {
	var snap Snapshot
	err := s.lock.Do(s.observer, func() error {
		snap.Ready = copyProcesses(s.ready)
		snap.Terminated = copyProcesses(s.terminated)
		return nil
	})
	return snap, err
}

// Reset empties the queues, restarts pid numbering and resets the lock.
// No Run may be in progress.
func (s *System) Reset() {
	s.lock.Reset()
	s.lastPID = 0
	s.ready = nil
	s.terminated = nil
	s.observer = s.lock.Allocate()
	plog.Infof("system reset")
}

func copyProcesses(ps []*Process) []Process {
	out := make([]Process, len(ps))
	for i, p := range ps {
		out[i] = *p
	}
	return out
}
