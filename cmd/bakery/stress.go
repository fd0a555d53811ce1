package main

import (
	"fmt"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ahrav/go-bakery/bakery"
	"github.com/ahrav/go-bakery/internal/stress"
)

var (
	plog = logger.GetLogger("cli")

	stressCmd = &cobra.Command{
		Use:   "stress",
		Short: "Run concurrent participants against one bakery lock",
		Long: `Starts the configured number of participants, each allocating its own id
and repeatedly acquiring and releasing the lock. The run fails if two
participants are ever seen inside the critical section together.

Every flag can also be set through the environment, e.g. BAKERY_PARTICIPANTS=8.`,
		Args: cobra.NoArgs,
		RunE: runStress,
	}
)

func init() {
	f := stressCmd.Flags()
	f.Int("participants", 8, "number of concurrent participants")
	f.Int("iterations", 1000, "acquire/release cycles per participant")
	f.Duration("hold", 0, "time spent inside each critical section")
	f.Duration("timeout", 0, "abort the run after this long (0 for no limit)")
	f.Int("max-participants", 0, "bound the registry size (0 for unbounded)")
	f.Int("spins", 16, "scheduler yields before a waiter starts sleeping")
	f.Duration("min-sleep", 0, "first backoff sleep (0 for the default)")
	f.Duration("max-sleep", 0, "backoff sleep ceiling (0 for the default)")
	f.Bool("metrics", false, "print run metrics in Prometheus text format")
}

func runStress(cmd *cobra.Command, _ []string) error {
	cfg := stress.Config{
		Participants:    viper.GetInt("participants"),
		Iterations:      viper.GetInt("iterations"),
		Hold:            viper.GetDuration("hold"),
		Timeout:         viper.GetDuration("timeout"),
		MaxParticipants: viper.GetInt("max-participants"),
		Spins:           viper.GetInt("spins"),
		MinSleep:        viper.GetDuration("min-sleep"),
		MaxSleep:        viper.GetDuration("max-sleep"),
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	plog.Debugf("configuration:%s", cfg.String())

	lock := bakery.New(stress.Options(cfg)...)
	spins, minSleep, maxSleep := lock.Backoff()
	plog.Debugf("lock backoff: %d spins, sleep %s .. %s", spins, minSleep, maxSleep)
	res, err := stress.Run(cmd.Context(), lock, cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d entries by %d participants in %s\n", res.Entries, len(res.PerParticipant), res.Elapsed)
	for _, id := range res.Participants() {
		fmt.Fprintf(out, "  participant %-4d %d\n", id, res.PerParticipant[id])
	}
	if viper.GetBool("metrics") {
		res.WriteMetrics(out)
	}
	return nil
}
