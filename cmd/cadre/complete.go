package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	completeSubtask string
	completeChain   string
)

var completeCmd = &cobra.Command{
	Use:   "complete",
	Short: "Mark a sub-task as completed",
	Long: `Move an in_progress sub-task to completed.

Work that was never started cannot complete. When the last outstanding
leaf finishes, the whole chain is reported complete.`,
	RunE: runComplete,
}

func init() {
	completeCmd.Flags().StringVar(&completeSubtask, "subtask", "", "Sub-task ID (required)")
	completeCmd.Flags().StringVar(&completeChain, "chain", "", "Refuse unless the sub-task belongs to this chain")
	completeCmd.MarkFlagRequired("subtask")
}

func runComplete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := openLogger(cfg)
	defer logger.Close()

	db, err := openState(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, _, err := newEngine(cfg, db, logger)
	if err != nil {
		return err
	}

	if err := verifyChainScope(db, completeSubtask, completeChain); err != nil {
		return err
	}

	st, done, err := engine.Complete(completeSubtask)
	if err != nil {
		return err
	}

	printStatus("✓", fmt.Sprintf("sub-task %s completed", st.ID), color.FgGreen)
	if done {
		printStatus("✓", fmt.Sprintf("chain %s complete", st.ChainID), color.FgGreen)
	}
	return nil
}
