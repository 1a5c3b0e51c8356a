package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cadrekit/cadre/internal/hierarchy"
	"github.com/cadrekit/cadre/internal/lifecycle"
	"github.com/cadrekit/cadre/internal/registry"
)

var (
	spawnName           string
	spawnSpecialization string
)

var spawnCmd = &cobra.Command{
	Use:   "spawn [path]",
	Short: "Add a new agent to the registry",
	Long: `Register a new agent in spawning status.

The agent's role is derived from its specialization via the hierarchy
definition; unknown specializations become workers. Spawning agents
activate on the next evaluation cycle. Registration fails when the
registry is at its competing-agent capacity.

Examples:
  cadre spawn --name refactor-bot --specialization api
  cadre spawn --name sentinel --specialization security`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSpawn,
}

func init() {
	spawnCmd.Flags().StringVar(&spawnName, "name", "", "Agent name (required)")
	spawnCmd.Flags().StringVar(&spawnSpecialization, "specialization", "", "Agent specialization, e.g. api or security (required)")
	spawnCmd.MarkFlagRequired("name")
	spawnCmd.MarkFlagRequired("specialization")
}

func runSpawn(cmd *cobra.Command, args []string) error {
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

	spawner := lifecycle.NewSpawner(hierarchy.NewClassifier(hierCfg))
	agent, err := spawner.Spawn(doc, spawnName, spawnSpecialization)
	if err != nil {
		return err
	}

	report, err := store.Save(doc)
	if report != nil {
		printReport(report)
	}
	if err != nil {
		return err
	}

	printStatus("✓", fmt.Sprintf("spawned %s: %s, %s %s", agent.ID, agent.Name, agent.Role, agent.Specialization), color.FgGreen)
	return nil
}
