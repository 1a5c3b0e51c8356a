package main

import (
	"os"

	"github.com/spf13/cobra"
)

var debugEnabled bool

var rootCmd = &cobra.Command{
	Use:   "cadre",
	Short: "Agent Registry & Hierarchical Delegation Engine",
	Long: `Cadre manages a competitive registry of agents: it scores their
contributions, eliminates underperformers, promotes top performers into
the hall of fame, and routes work down a coordinator/specialist/worker
hierarchy through delegation chains.

Core capabilities:
- Scores agents on weighted, normalized contribution metrics
- Runs lifecycle evaluations with protected-agent safeguards
- Decomposes tasks by domain and builds delegation chains
- Enforces delegation permissions between hierarchy tiers
- Escalates blocked work to the tier above`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugEnabled, "debug", false, "Write a debug log under .cadre/logs")

	// Add subcommands
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(spawnCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(delegateCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(reassignCmd)
	rootCmd.AddCommand(escalateCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
