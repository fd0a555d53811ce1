package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ahrav/go-bakery/bakery"
	"github.com/ahrav/go-bakery/internal/sim"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the process simulator on a bakery lock",
	Long: `Admits one simulated process per burst, runs each on its own goroutine and
moves it through NEW -> READY -> RUNNING -> TERMINATED. Every state change and
queue update happens while that process holds the bakery lock.

With --runs > 1 the simulation repeats; --reset clears the system (queues,
pids and the lock registry) between runs.`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	f := simulateCmd.Flags()
	f.IntSlice("bursts", []int{5, 3, 4}, "burst length of each process, in ticks")
	f.Duration("tick", 100*time.Millisecond, "duration of one tick of work")
	f.Int("runs", 1, "number of simulation runs")
	f.Bool("reset", true, "reset the system between runs")
}

func runSimulate(cmd *cobra.Command, _ []string) error {
	runs := viper.GetInt("runs")
	if runs <= 0 {
		return fmt.Errorf("runs must be positive")
	}
	bursts := viper.GetIntSlice("bursts")
	out := cmd.OutOrStdout()

	sys := sim.NewSystem(bakery.New(), viper.GetDuration("tick"), func(t sim.Transition) {
		fmt.Fprintln(out, t)
	})

	for run := 1; run <= runs; run++ {
		if run > 1 && viper.GetBool("reset") {
			sys.Reset()
		}
		fmt.Fprintf(out, "run %d: %d processes\n", run, len(bursts))
		if err := sys.Run(cmd.Context(), bursts); err != nil {
			return err
		}

		snap, err := sys.Snapshot()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "ready: %d, terminated: %d\n", len(snap.Ready), len(snap.Terminated))
		for _, p := range snap.Terminated {
			fmt.Fprintf(out, "  P%d: %s (burst=%d)\n", p.PID, p.State, p.Burst)
		}
	}
	return nil
}
