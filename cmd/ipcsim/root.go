package main

import (
	"github.com/spf13/cobra"
)

// rootCmd is the base command; subcommands do the actual work.
var rootCmd = &cobra.Command{
	Use:   "ipcsim",
	Short: "Simulate worker processes exchanging messages over pluggable IPC channels",
	Long: `ipcsim runs a small set of concurrent workers exchanging messages over a ` +
		`pipe, queue, or shared-memory channel while a diagnostics engine watches ` +
		`for lock contention, deadlock cycles, and idle bottlenecks.`,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}
