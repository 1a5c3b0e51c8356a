package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cadrekit/cadre/internal/registry"
)

var (
	delegateFrom        string
	delegateTo          string
	delegateChain       string
	delegateParent      string
	delegateDescription string
)

var delegateCmd = &cobra.Command{
	Use:   "delegate",
	Short: "Hand a sub-task from one agent to another",
	Long: `Create a sub-task inside an existing chain, handed from one agent
to another.

The hand-off must be allowed by the delegation rules: coordinators
delegate to specialists and workers, specialists delegate to workers,
workers delegate to nobody. Same-tier hand-offs are always denied.

Coordinators delegate at the chain's first level and must own the
chain; specialists delegate beneath one of their own sub-tasks via
--parent.

Examples:
  cadre delegate --from agent-0000000001 --to agent-0000000002 \
    --chain chain-1a2b --description "harden the login endpoint"
  cadre delegate --from agent-0000000002 --to agent-0000000003 \
    --chain chain-1a2b --parent st-9f8e --description "write the tests"`,
	RunE: runDelegate,
}

func init() {
	delegateCmd.Flags().StringVar(&delegateFrom, "from", "", "Delegating agent ID (required)")
	delegateCmd.Flags().StringVar(&delegateTo, "to", "", "Receiving agent ID (required)")
	delegateCmd.Flags().StringVar(&delegateChain, "chain", "", "Chain ID (required)")
	delegateCmd.Flags().StringVar(&delegateParent, "parent", "", "Parent sub-task ID for delegation below level 1")
	delegateCmd.Flags().StringVar(&delegateDescription, "description", "", "What the receiving agent should do (required)")
	delegateCmd.MarkFlagRequired("from")
	delegateCmd.MarkFlagRequired("to")
	delegateCmd.MarkFlagRequired("chain")
	delegateCmd.MarkFlagRequired("description")
}

func runDelegate(cmd *cobra.Command, args []string) error {
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

	from, err := findAgent(doc, delegateFrom)
	if err != nil {
		return err
	}
	to, err := findAgent(doc, delegateTo)
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

	rec, err := engine.Delegate(from, to, delegateChain, delegateParent, delegateDescription)
	if err != nil {
		return err
	}

	printStatus("✓", fmt.Sprintf("sub-task %s delegated: %s (%s) -> %s (%s)",
		rec.SubTaskID, from.ID, from.Role, to.ID, to.Role), color.FgGreen)
	return nil
}
