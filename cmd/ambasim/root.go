package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ambasim",
	Short: "ambasim runs AMBA AXI bus emulation scenarios.",
	Long: `ambasim runs AMBA AXI bus emulation scenarios. Each subcommand ` +
		`wires a bench with the engines it needs and drives the clock for a ` +
		`fixed scenario. Environment variables (optionally from a .env file) ` +
		`configure tracing: AMBASIM_TRACE enables the SQLite trace database, ` +
		`AMBASIM_TRACE_FILE names it.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// A missing .env file is fine.
		_ = godotenv.Load()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func tracingEnabled() bool {
	return os.Getenv("AMBASIM_TRACE") != ""
}

func traceFileName() string {
	return os.Getenv("AMBASIM_TRACE_FILE")
}
