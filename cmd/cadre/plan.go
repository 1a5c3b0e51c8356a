package main

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cadrekit/cadre/internal/decompose"
	"github.com/cadrekit/cadre/internal/registry"
	"github.com/cadrekit/cadre/pkg/models"
)

var (
	planLabels []string
	planChain  bool
	planTaskID string
)

var planCmd = &cobra.Command{
	Use:   "plan \"task description\"",
	Short: "Decompose a task into a coordination plan",
	Long: `Analyze a task description, detect the domains it touches, and
produce a coordination plan.

Zero or one detected domain plans a simple task handled by a single
worker; two or three domains plan one specialist sub-task per domain;
four or more, or a 'complex' label, add worker sub-tasks beneath each
specialist.

With --chain the plan is persisted as a delegation chain, assigned
from the registry roster under the first competing coordinator.

Examples:
  cadre plan "fix login API validation"
  cadre plan "audit auth endpoints and update docs" --label complex
  cadre plan "refactor database layer for performance" --chain`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringSliceVar(&planLabels, "label", nil, "Task labels, e.g. complex")
	planCmd.Flags().BoolVar(&planChain, "chain", false, "Persist the plan as a delegation chain")
	planCmd.Flags().StringVar(&planTaskID, "task-id", "", "Task ID (defaults to a generated one)")
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := openLogger(cfg)
	defer logger.Close()

	taskID := planTaskID
	if taskID == "" {
		taskID = "task-" + uuid.New().String()[:8]
	}

	plan := decompose.NewDecomposer().Decompose(taskID, args[0], planLabels)
	if err := printPlan(plan); err != nil {
		return err
	}

	if !planChain {
		return nil
	}

	store := registry.NewStore(cfg.Registry.Path, logger)
	doc, err := store.Load()
	if err != nil {
		return err
	}
	coordinator, err := findCoordinator(doc)
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

	chain, err := engine.BuildChain(plan, args[0], coordinator, registryPicker(doc))
	if err != nil {
		return err
	}

	fmt.Println()
	displayChain(chain)
	printStatus("✓", fmt.Sprintf("chain %s persisted", chain.ID), color.FgGreen)
	return nil
}

// printPlan emits the coordination plan as JSON, the form downstream
// automation consumes.
func printPlan(plan *models.CoordinationPlan) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling plan: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func displayChain(chain *models.DelegationChain) {
	fmt.Printf("Chain %s (coordinator %s)\n", chain.ID, chain.CoordinatorID)
	for i, level := range chain.Levels {
		fmt.Printf("  Level %d:\n", i+1)
		for _, st := range level {
			assignee := st.AgentID
			if assignee == "" {
				assignee = color.YellowString("(unassigned)")
			}
			fmt.Printf("    %s [%s] %s -> %s\n", st.ID, st.TargetRole, st.Description, assignee)
		}
	}
}
