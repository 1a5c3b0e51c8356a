package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cadrekit/cadre/internal/hierarchy"
	"github.com/cadrekit/cadre/internal/lifecycle"
	"github.com/cadrekit/cadre/internal/registry"
	"github.com/cadrekit/cadre/internal/scoring"
	"github.com/cadrekit/cadre/pkg/models"
)

var evaluateDryRun bool

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [path]",
	Short: "Run a lifecycle evaluation cycle",
	Long: `Score every agent in the registry and apply lifecycle decisions.

Agents scoring below the elimination threshold are archived; agents at
or above the promotion threshold move to the hall of fame. Protected
agents and agents below the contribution gate are never eliminated.
Spawning agents activate at the start of the cycle.

The registry lock serializes evaluations: a second run fails while the
first holds the lock. Results are written to the results artifact and
recorded in the state database for 'cadre status'.

The path argument overrides the configured registry location.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().BoolVar(&evaluateDryRun, "dry-run", false, "Report decisions without changing the registry")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	registryPathArg(cfg, args)
	logger := openLogger(cfg)
	defer logger.Close()

	store := registry.NewStore(cfg.Registry.Path, logger)

	lock, err := lockRegistry(store, cfg.Registry.LockTimeout)
	if err != nil {
		return err
	}
	defer lock.Release()

	doc, err := store.Load()
	if err != nil {
		return err
	}

	hierCfg, err := hierarchy.Load(cfg.Hierarchy.Path)
	if err != nil {
		return fmt.Errorf("load hierarchy: %w", err)
	}

	manager := lifecycle.NewManager(
		scoring.NewScorer(cfg.Scoring.TargetIssuesResolved),
		hierarchy.NewClassifier(hierCfg),
		logger,
	)
	results := manager.Evaluate(doc)

	displayResults(results)

	if evaluateDryRun {
		fmt.Println("\nDry run: registry not modified.")
		return nil
	}

	report, err := store.Save(doc)
	if report != nil {
		printReport(report)
	}
	if err != nil {
		return err
	}

	if err := lifecycle.WriteResults(cfg.Registry.ResultsPath, results); err != nil {
		return err
	}

	db, err := openState(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.RecordEvaluation(results); err != nil {
		return err
	}

	fmt.Println()
	printStatus("✓", fmt.Sprintf("evaluation complete: results written to %s", cfg.Registry.ResultsPath), color.FgGreen)
	return nil
}

func displayResults(results *models.EvaluationResults) {
	fmt.Printf("Evaluation at %s (registry %s)\n", results.EvaluatedAt, results.RegistryVersion)

	if len(results.Promoted) > 0 {
		fmt.Printf("\nPromoted to hall of fame (%d):\n", len(results.Promoted))
		for _, e := range results.Promoted {
			fmt.Printf("  %s %s (%s) score %.3f\n", color.GreenString("↑"), e.Name, e.Specialization, e.Score)
		}
	}

	if len(results.Eliminated) > 0 {
		fmt.Printf("\nEliminated (%d):\n", len(results.Eliminated))
		for _, e := range results.Eliminated {
			fmt.Printf("  %s %s (%s) score %.3f: %s\n", color.RedString("↓"), e.Name, e.Specialization, e.Score, e.Reason)
		}
	}

	fmt.Printf("\nMaintained: %d\n", len(results.Maintained))
}
