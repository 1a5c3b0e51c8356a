package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cadrekit/cadre/internal/registry"
)

var (
	reassignSubtask string
	reassignTo      string
	reassignChain   string
)

var reassignCmd = &cobra.Command{
	Use:   "reassign",
	Short: "Hand a sub-task to a different agent",
	Long: `Assign a sub-task to a new agent on the coordinator's behalf.

An escalated sub-task returns to pending under its new assignee; an
unassigned pending sub-task simply gains one. The new agent must hold
the sub-task's target role.`,
	RunE: runReassign,
}

func init() {
	reassignCmd.Flags().StringVar(&reassignSubtask, "subtask", "", "Sub-task ID (required)")
	reassignCmd.Flags().StringVar(&reassignTo, "to", "", "New assignee's agent ID (required)")
	reassignCmd.Flags().StringVar(&reassignChain, "chain", "", "Refuse unless the sub-task belongs to this chain")
	reassignCmd.MarkFlagRequired("subtask")
	reassignCmd.MarkFlagRequired("to")
}

func runReassign(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := openLogger(cfg)
	defer logger.Close()

	store := registry.NewStore(cfg.Registry.Path, logger)
	doc, err := store.Load()
	if err != nil {
		return err
	}

	to, err := findAgent(doc, reassignTo)
	if err != nil {
		return err
	}

	db, err := openState(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, _, err := newEngine(cfg, db, logger)
	if err != nil {
		return err
	}

	if err := verifyChainScope(db, reassignSubtask, reassignChain); err != nil {
		return err
	}

	st, err := engine.Reassign(reassignSubtask, to)
	if err != nil {
		return err
	}

	printStatus("✓", fmt.Sprintf("sub-task %s reassigned to %s (%s)", st.ID, to.ID, to.Role), color.FgGreen)
	return nil
}
