package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var startSubtask string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Mark a sub-task as in progress",
	Long: `Move a pending sub-task to in_progress.

Only assigned sub-tasks can start; assign an orphaned sub-task first
with 'cadre reassign'.`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&startSubtask, "subtask", "", "Sub-task ID (required)")
	startCmd.MarkFlagRequired("subtask")
}

func runStart(cmd *cobra.Command, args []string) error {
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

	st, err := engine.Start(startSubtask)
	if err != nil {
		return err
	}

	printStatus("✓", fmt.Sprintf("sub-task %s in progress (%s)", st.ID, st.AgentID), color.FgGreen)
	return nil
}
