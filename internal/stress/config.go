package stress

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config describes one stress run.
type Config struct {
	// Participants is the number of concurrent goroutines, each with its own id.
	Participants int
	// Iterations is the number of acquire/release cycles per participant.
	Iterations int
	// Hold is how long each critical section lasts.
	Hold time.Duration
	// Timeout bounds the whole run. Zero means no bound.
	Timeout time.Duration

	// Lock tuning
	MaxParticipants int
	Spins           int
	MinSleep        time.Duration
	MaxSleep        time.Duration
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.Participants <= 0:
		return errors.New("participants must be positive")
	case c.Iterations <= 0:
		return errors.New("iterations must be positive")
	case c.Hold < 0:
		return errors.New("hold must not be negative")
	case c.Timeout < 0:
		return errors.New("timeout must not be negative")
	case c.MaxParticipants > 0 && c.MaxParticipants < c.Participants:
		return fmt.Errorf("max-participants (%d) is below participants (%d)", c.MaxParticipants, c.Participants)
	}
	return nil
}

// String returns a formatted representation of the configuration.
func (c *Config) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}
	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Workload")
	addField("Participants", fmt.Sprintf("%d", c.Participants))
	addField("Iterations", fmt.Sprintf("%d", c.Iterations))
	addField("Hold", c.Hold.String())
	if c.Timeout > 0 {
		addField("Timeout", c.Timeout.String())
	} else {
		addField("Timeout", "none")
	}

	addSection("Lock")
	if c.MaxParticipants > 0 {
		addField("Max Participants", fmt.Sprintf("%d", c.MaxParticipants))
	} else {
		addField("Max Participants", "unbounded")
	}
	addField("Spins", fmt.Sprintf("%d", c.Spins))
	addField("Sleep", fmt.Sprintf("%s .. %s", orDefault(c.MinSleep), orDefault(c.MaxSleep)))

	return sb.String()
}

func orDefault(d time.Duration) string {
	if d <= 0 {
		return "default"
	}
	return d.String()
}
