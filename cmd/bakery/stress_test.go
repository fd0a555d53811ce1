package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStressCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"stress",
		"--participants", "3",
		"--iterations", "10",
		"--min-sleep", "10us",
		"--max-sleep", "100us",
		"--metrics",
		"--log-level", "warn",
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "30 entries by 3 participants")
	assert.Contains(t, out.String(), "participant 2")
	assert.Contains(t, out.String(), "bakery_entries_total 30")
}

func TestSimulateCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"simulate",
		"--bursts", "2,1",
		"--tick", "1ms",
		"--runs", "2",
		"--reset",
		"--log-level", "warn",
	})

	require.NoError(t, rootCmd.Execute())
	s := out.String()
	assert.Contains(t, s, "run 1: 2 processes")
	assert.Contains(t, s, "run 2: 2 processes")
	assert.Contains(t, s, "[PCB] 1: NEW -> READY")
	assert.Contains(t, s, "[PCB] 2: RUNNING -> TERMINATED")
	// With a reset in between, the second run reports only its own processes.
	assert.Equal(t, 2, strings.Count(s, "ready: 0, terminated: 2"))
	assert.NotContains(t, s, "P3:")
}
