package cli

import (
	"github.com/spf13/cobra"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "sparc",
	Short: "sparc — a five-phase methodology pipeline engine",
	Long: `sparc runs development tasks through the five-phase methodology
(specification, pseudocode, architecture, refinement, completion) with
quality gates, one remediation re-run per phase, and a synthetic agent pool.

All state is stored in ~/.sparc/ (SQLite for events, JSON for run state
and phase artifacts). Runs are namespaced; a namespace maps to one run.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(memoryCmd)
	rootCmd.AddCommand(abortCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(analyticsCmd)
}
