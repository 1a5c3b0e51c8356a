package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cadrekit/cadre/internal/config"
	"github.com/cadrekit/cadre/internal/logging"
	"github.com/cadrekit/cadre/internal/registry"
	"github.com/cadrekit/cadre/internal/state"
	"github.com/cadrekit/cadre/pkg/models"
)

var (
	escalateSubtask string
	escalateFrom    string
	escalateReason  string
	escalateStale   time.Duration
)

var escalateCmd = &cobra.Command{
	Use:   "escalate",
	Short: "Escalate a blocked sub-task up the hierarchy",
	Long: `Move a sub-task to escalated and route it to the tier above.

Workers escalate to the specialist who delegated to them; specialists
escalate to the chain's coordinator. When the delegator is unknown,
the configured default coordinator takes over. The sub-task then waits
in escalated until 'cadre reassign' hands it to someone new.

With --stale, every in-progress sub-task older than the given duration
is escalated on its assignee's behalf instead.

Examples:
  cadre escalate --subtask st-9f8e --from agent-0000000003 --reason "blocked on credentials"
  cadre escalate --stale 2h`,
	RunE: runEscalate,
}

func init() {
	escalateCmd.Flags().StringVar(&escalateSubtask, "subtask", "", "Sub-task ID")
	escalateCmd.Flags().StringVar(&escalateFrom, "from", "", "Escalating agent ID")
	escalateCmd.Flags().StringVar(&escalateReason, "reason", "", "Why the work is blocked")
	escalateCmd.Flags().DurationVar(&escalateStale, "stale", 0, "Escalate every in-progress sub-task older than this")
}

func runEscalate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := openLogger(cfg)
	defer logger.Close()

	if escalateStale > 0 {
		return runEscalateStale(cfg, logger)
	}

	if escalateSubtask == "" || escalateFrom == "" {
		return fmt.Errorf("--subtask and --from are required without --stale")
	}

	store := registry.NewStore(cfg.Registry.Path, logger)
	doc, err := store.Load()
	if err != nil {
		return err
	}

	from, err := findAgent(doc, escalateFrom)
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

	rec, err := engine.Escalate(escalateSubtask, from, escalateReason)
	if err != nil {
		return err
	}

	printEscalation(rec)
	return nil
}

// runEscalateStale escalates stuck sub-tasks on behalf of their
// recorded assignees.
func runEscalateStale(cfg *config.Config, logger *logging.Logger) error {
	db, err := openState(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	engine, _, err := newEngine(cfg, db, logger)
	if err != nil {
		return err
	}

	stale, err := state.NewRecoveryManager(db).StaleInProgress(escalateStale)
	if err != nil {
		return err
	}
	if len(stale) == 0 {
		fmt.Printf("No sub-tasks in progress longer than %s.\n", escalateStale)
		return nil
	}

	reason := fmt.Sprintf("stale: in progress longer than %s", escalateStale)
	escalated := 0
	for _, st := range stale {
		from := models.Agent{ID: st.AgentID, Role: st.TargetRole}
		rec, err := engine.Escalate(st.ID, from, reason)
		if err != nil {
			printStatus("✗", fmt.Sprintf("%s: %v", st.ID, err), color.FgRed)
			continue
		}
		printEscalation(rec)
		escalated++
	}

	fmt.Printf("\n%d of %d stale sub-tasks escalated.\n", escalated, len(stale))
	return nil
}

func printEscalation(rec *models.EscalationRecord) {
	target := rec.TargetAgentID
	if target == "" {
		target = "manual routing"
	}
	printStatus("⚠", fmt.Sprintf("sub-task %s escalated to %s", rec.SubTaskID, target), color.FgYellow)
}
