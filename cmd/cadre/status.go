package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/cadrekit/cadre/internal/registry"
	"github.com/cadrekit/cadre/internal/scoring"
	"github.com/cadrekit/cadre/internal/state"
	"github.com/cadrekit/cadre/pkg/models"
)

var statusCmd = &cobra.Command{
	Use:   "status [path]",
	Short: "Show registry and delegation state",
	Long: `Display the current state of the cadre project.

Shows:
  - Registry roster summary by status and role
  - Delegation and escalation statistics
  - Chains with work still outstanding
  - Recent evaluation cycles`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	registryPathArg(cfg, args)
	logger := openLogger(cfg)
	defer logger.Close()

	store := registry.NewStore(cfg.Registry.Path, logger)
	doc, err := store.Load()
	if err != nil {
		fmt.Println("No registry found. Run 'cadre init' to create one.")
		return nil
	}

	displayRegistrySummary(doc, scoring.NewScorer(cfg.Scoring.TargetIssuesResolved))

	if _, err := os.Stat(cfg.State.Path); os.IsNotExist(err) {
		fmt.Println("\nNo delegation state yet. Run 'cadre plan --chain' to create a chain.")
		return nil
	}

	db, err := openState(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.Stats()
	if err != nil {
		return fmt.Errorf("read delegation stats: %w", err)
	}
	displayStats(stats)

	interrupted, err := state.NewRecoveryManager(db).CheckForInterrupted()
	if err != nil {
		return fmt.Errorf("check interrupted chains: %w", err)
	}
	displayInterrupted(interrupted)

	evals, err := db.ListEvaluations(5)
	if err != nil {
		return fmt.Errorf("list evaluations: %w", err)
	}
	displayEvaluations(evals)

	return nil
}

func displayRegistrySummary(doc *models.Document, scorer *scoring.Scorer) {
	counts := make(map[models.AgentStatus]int)
	roles := make(map[models.Role]int)
	for _, a := range doc.Agents {
		counts[a.Status]++
		if a.Status.Competing() {
			roles[a.Role]++
		}
	}

	fmt.Printf("Registry: %d agents (%d competing, max %d)\n",
		len(doc.Agents), doc.CompetingCount(), doc.Config.MaxActiveAgents)
	fmt.Printf("  Active: %d  Spawning: %d  Maintained: %d\n",
		counts[models.StatusActive], counts[models.StatusSpawning], counts[models.StatusMaintained])
	fmt.Printf("  Coordinators: %d  Specialists: %d  Workers: %d\n",
		roles[models.RoleCoordinator], roles[models.RoleSpecialist], roles[models.RoleWorker])
	fmt.Printf("  Hall of fame: %d  Archived: %d\n", len(doc.HallOfFame), len(doc.Archive))

	displayTopScores(doc, scorer)
}

// displayTopScores lists the highest-scoring eligible competing agents.
func displayTopScores(doc *models.Document, scorer *scoring.Scorer) {
	type ranked struct {
		agent models.Agent
		score float64
	}
	var top []ranked
	for _, a := range doc.Agents {
		if !a.Status.Competing() {
			continue
		}
		result := scorer.Score(a, doc.Config)
		if !result.Eligible {
			continue
		}
		top = append(top, ranked{agent: a, score: result.OverallScore})
	}
	if len(top) == 0 {
		return
	}

	sort.Slice(top, func(i, j int) bool { return top[i].score > top[j].score })
	if len(top) > 3 {
		top = top[:3]
	}

	fmt.Println("  Top scores:")
	for _, r := range top {
		fmt.Printf("    %.3f  %s (%s)\n", r.score, r.agent.Name, r.agent.Specialization)
	}
}

func displayStats(stats *models.DelegationStats) {
	fmt.Println("\nDelegation:")
	fmt.Printf("  Delegations: %d (%d sub-tasks completed)\n",
		stats.TotalDelegations, stats.SuccessfulDelegations)
	fmt.Printf("  Escalations: %d\n", stats.Escalations)
	if stats.AvgChainLength > 0 {
		fmt.Printf("  Avg chain length: %.1f sub-tasks\n", stats.AvgChainLength)
	}
}

func displayInterrupted(chains []state.InterruptedChain) {
	if len(chains) == 0 {
		return
	}

	fmt.Printf("\nChains with work outstanding (%d):\n", len(chains))
	for _, c := range chains {
		fmt.Printf("  %s: task %s, %d in progress, %d escalated (started %s ago)\n",
			c.ChainID, c.RootTaskID, c.InProgress, c.Escalated, formatDuration(time.Since(c.CreatedAt)))
	}
}

func displayEvaluations(rows []state.EvaluationRow) {
	if len(rows) == 0 {
		return
	}

	fmt.Println("\nRecent evaluations:")
	for _, row := range rows {
		fmt.Printf("  %s: %d promoted, %d eliminated, %d maintained\n",
			row.EvaluatedAt.Format("2006-01-02 15:04"), row.Promoted, row.Eliminated, row.Maintained)
	}
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m > 0 {
			return fmt.Sprintf("%dh%dm", h, m)
		}
		return fmt.Sprintf("%dh", h)
	}
	days := int(d.Hours()) / 24
	return fmt.Sprintf("%dd", days)
}
