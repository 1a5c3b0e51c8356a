package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cadrekit/cadre/internal/registry"
	"github.com/cadrekit/cadre/internal/scoring"
	"github.com/cadrekit/cadre/pkg/models"
)

var (
	agentsRole           string
	agentsSpecialization string
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List agents with their scores",
	Long: `List the registry roster with each agent's computed score.

Filter with --role and --specialization. Agents below the contribution
gate are marked with an asterisk: they are scored for visibility but
are not eligible for elimination or promotion.`,
	RunE: runAgents,
}

func init() {
	agentsCmd.Flags().StringVar(&agentsRole, "role", "", "Filter by role: coordinator, specialist, or worker")
	agentsCmd.Flags().StringVar(&agentsSpecialization, "specialization", "", "Filter by specialization")
}

func runAgents(cmd *cobra.Command, args []string) error {
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

	scorer := scoring.NewScorer(cfg.Scoring.TargetIssuesResolved)

	shown := 0
	for _, agent := range doc.Agents {
		if agentsRole != "" && string(agent.Role) != agentsRole {
			continue
		}
		if agentsSpecialization != "" && agent.Specialization != agentsSpecialization {
			continue
		}

		result := scorer.Score(agent, doc.Config)
		gate := " "
		if !result.Eligible {
			gate = "*"
		}
		fmt.Printf("  %s  %-20s %-14s %-11s %s  %.3f%s\n",
			agent.ID, agent.Name, agent.Specialization, agent.Role,
			statusBadge(agent.Status), result.OverallScore, gate)
		shown++
	}

	if shown == 0 {
		fmt.Println("No matching agents.")
	} else {
		fmt.Printf("\n%d agents. * below the contribution gate (%d contributions needed)\n",
			shown, doc.Config.MinContributions())
	}

	if len(doc.HallOfFame) > 0 && agentsRole == "" && agentsSpecialization == "" {
		fmt.Printf("\nHall of Fame (%d):\n", len(doc.HallOfFame))
		for _, rec := range doc.HallOfFame {
			fmt.Printf("  %s  %-20s %-14s score %.3f\n", rec.ID, rec.Name, rec.Specialization, rec.Score)
		}
	}
	return nil
}

// statusBadge colors an agent status for roster output.
func statusBadge(status models.AgentStatus) string {
	switch status {
	case models.StatusActive:
		return color.GreenString("%-12s", string(status))
	case models.StatusSpawning:
		return color.CyanString("%-12s", string(status))
	case models.StatusHallOfFame:
		return color.YellowString("%-12s", string(status))
	case models.StatusEliminated:
		return color.RedString("%-12s", string(status))
	default:
		return fmt.Sprintf("%-12s", string(status))
	}
}
