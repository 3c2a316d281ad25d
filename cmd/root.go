// Package cmd wires the kanon CLI: serve, simulate, migrate and version.
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "kanon",
	Short: "kanon - legal strategy wizard",
	Long: `kanon researches precedent cases, synthesizes defense strategies,
simulates them against digital twins of the courtroom, and exports the
resulting strategy report.

Run "kanon serve" to start the HTTP API, or "kanon simulate" to drive a
simulation from the terminal.`,
	SilenceUsage: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		// Missing .env is the normal case outside development.
		_ = godotenv.Load()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
