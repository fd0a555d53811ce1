// Package stress drives a bakery.Lock from many goroutines and checks that
// critical sections never overlap.
package stress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync/atomic"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-bakery/bakery"
)

var plog = logger.GetLogger("stress")

// ErrMutualExclusion is returned when two participants were observed inside
// the critical section at once.
var ErrMutualExclusion = errors.New("stress: mutual exclusion violated")

// Result summarizes a completed run.
type Result struct {
	Entries int64
	// PerParticipant maps each participant id to its number of entries.
	PerParticipant map[bakery.ID]uint64
	Elapsed        time.Duration

	metrics *metrics.Set
}

// Participants returns the ids that took part, in ascending order.
func (r *Result) Participants() []bakery.ID {
	ids := make([]bakery.ID, 0, len(r.PerParticipant))
	for id := range r.PerParticipant {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// WriteMetrics writes the run's metrics in Prometheus text format.
func (r *Result) WriteMetrics(w io.Writer) {
	if r.metrics != nil {
		r.metrics.WritePrometheus(w)
	}
}

// Options builds the bakery options matching cfg's lock tuning. Spins is
// always applied, so zero disables spinning; zero sleeps keep the defaults.
func Options(cfg Config) []bakery.Option {
	opts := []bakery.Option{bakery.WithCapacity(cfg.Participants)}
	if cfg.MaxParticipants > 0 {
		opts = append(opts, bakery.WithMaxParticipants(cfg.MaxParticipants))
	}
	return append(opts, bakery.WithBackoff(cfg.Spins, cfg.MinSleep, cfg.MaxSleep))
}

// Run executes cfg against lock. Every participant allocates its own id from
// lock. The first failure cancels the remaining participants.
func Run(ctx context.Context, lock *bakery.Lock, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	set := metrics.NewSet()
	entries := set.NewCounter("bakery_entries_total")
	violations := set.NewCounter("bakery_violations_total")
	wait := set.NewHistogram("bakery_acquire_wait_seconds")

	perParticipant := xsync.NewMapOf[bakery.ID, uint64]()
	var occupancy atomic.Int32

	critical := func(id bakery.ID) error {
		if n := occupancy.Add(1); n != 1 {
			occupancy.Add(-1)
			violations.Inc()
			return fmt.Errorf("%w: participant %d saw %d occupants", ErrMutualExclusion, id, n)
		}
		if cfg.Hold > 0 {
			time.Sleep(cfg.Hold)
		}
		entries.Inc()
		perParticipant.Compute(id, func(old uint64, _ bool) (uint64, bool) {
			return old + 1, false
		})
		occupancy.Add(-1)
		return nil
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for range cfg.Participants {
		g.Go(func() error {
			id := lock.Allocate()
			for i := 0; i < cfg.Iterations; i++ {
				began := time.Now()
				if err := lock.AcquireContext(gctx, id); err != nil {
					return err
				}
				wait.Update(time.Since(began).Seconds())

				err := critical(id)
				if rerr := lock.Release(id); rerr != nil && err == nil {
					err = rerr
				}
				if err != nil {
					return err
				}
			}
			plog.Debugf("participant %d finished %d iterations", id, cfg.Iterations)
			return nil
		})
	}
	err := g.Wait()

	res := Result{
		Entries:        int64(entries.Get()),
		PerParticipant: make(map[bakery.ID]uint64, cfg.Participants),
		Elapsed:        time.Since(start),
		metrics:        set,
	}
	perParticipant.Range(func(id bakery.ID, n uint64) bool {
		res.PerParticipant[id] = n
		return true
	})

	if err != nil {
		plog.Errorf("run stopped after %d entries: %v", res.Entries, err)
		return res, err
	}
	plog.Infof("%d participants completed %d entries in %s", cfg.Participants, res.Entries, res.Elapsed)
	return res, nil
}
