package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command when devscore is called without any
// subcommands.
var rootCmd = &cobra.Command{
	Use:   "devscore",
	Short: "devscore runs DEVS simulation projects described by a YAML descriptor.",
	Long: `devscore loads a project descriptor (structural graph, conditions, ` +
		`observables, outputs and views), drives it through the coordinator's ` +
		`Init/Step/Finish loop, and streams observations to the configured outputs.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
}
