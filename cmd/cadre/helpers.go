package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/cadrekit/cadre/internal/config"
	"github.com/cadrekit/cadre/internal/delegation"
	"github.com/cadrekit/cadre/internal/hierarchy"
	"github.com/cadrekit/cadre/internal/logging"
	"github.com/cadrekit/cadre/internal/registry"
	"github.com/cadrekit/cadre/internal/state"
	"github.com/cadrekit/cadre/pkg/models"
)

// loadConfig loads the effective configuration with every relative path
// anchored to the project root.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	config.ResolvePaths(cfg, config.ProjectRoot())
	return cfg, nil
}

// openLogger opens the debug log when --debug is set, a no-op logger
// otherwise.
func openLogger(cfg *config.Config) *logging.Logger {
	if !debugEnabled {
		return logging.Nop()
	}
	logger, err := logging.New(cfg.Log.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: debug log unavailable: %v\n", err)
		return logging.Nop()
	}
	return logger
}

// openState opens the project state database and brings its schema up
// to date.
func openState(cfg *config.Config) (*state.DB, error) {
	db, err := state.Open(cfg.State.Path)
	if err != nil {
		return nil, fmt.Errorf("open state database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate state database: %w", err)
	}
	return db, nil
}

// newEngine wires a delegation engine over the state database and the
// hierarchy definition.
func newEngine(cfg *config.Config, db *state.DB, logger *logging.Logger) (*delegation.Engine, hierarchy.Config, error) {
	hierCfg, err := hierarchy.Load(cfg.Hierarchy.Path)
	if err != nil {
		return nil, hierarchy.Config{}, fmt.Errorf("load hierarchy: %w", err)
	}
	return delegation.NewEngine(db, db, hierCfg, logger), hierCfg, nil
}

// lockRegistry acquires the registry lock, retrying until the timeout
// elapses. A zero timeout fails on first contention.
func lockRegistry(store *registry.Store, timeout time.Duration) (*registry.Lock, error) {
	deadline := time.Now().Add(timeout)
	for {
		lock, err := store.TryLock()
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, registry.ErrLocked) || time.Now().After(deadline) {
			return nil, err
		}
		time.Sleep(100 * time.Millisecond)
	}
}

// registryPathArg overrides the configured registry path when a
// positional path is given.
func registryPathArg(cfg *config.Config, args []string) {
	if len(args) > 0 {
		cfg.Registry.Path = args[0]
	}
}

// verifyChainScope checks that a sub-task belongs to the expected chain
// when the caller scoped the operation with --chain.
func verifyChainScope(db *state.DB, subtaskID, chainID string) error {
	if chainID == "" {
		return nil
	}
	st, err := db.GetSubTask(subtaskID)
	if err != nil {
		return err
	}
	if st == nil {
		return fmt.Errorf("sub-task %s not found", subtaskID)
	}
	if st.ChainID != chainID {
		return fmt.Errorf("sub-task %s belongs to chain %s, not %s", subtaskID, st.ChainID, chainID)
	}
	return nil
}

// findAgent resolves an agent ID against the registry roster.
func findAgent(doc *models.Document, id string) (models.Agent, error) {
	agent, ok := doc.AgentByID(id)
	if !ok {
		return models.Agent{}, fmt.Errorf("agent %s not in registry", id)
	}
	return *agent, nil
}

// findCoordinator returns the first competing coordinator on the roster.
func findCoordinator(doc *models.Document) (models.Agent, error) {
	for _, a := range doc.Agents {
		if a.Role == models.RoleCoordinator && a.Status.Competing() {
			return a, nil
		}
	}
	return models.Agent{}, fmt.Errorf("no competing coordinator in registry")
}

// registryPicker assigns planned sub-tasks from the registry roster.
// Specialists are bound to the sub-task's domain; workers take anything.
// Agents already picked for this chain are passed over while fresh
// alternatives remain.
func registryPicker(doc *models.Document) delegation.AgentPicker {
	used := make(map[string]bool)
	return func(role models.Role, domain string) (models.Agent, bool) {
		var fallback *models.Agent
		for i := range doc.Agents {
			a := &doc.Agents[i]
			if a.Role != role || !a.Status.Competing() {
				continue
			}
			if role == models.RoleSpecialist && domain != "" && a.Specialization != domain {
				continue
			}
			if used[a.ID] {
				if fallback == nil {
					fallback = a
				}
				continue
			}
			used[a.ID] = true
			return *a, true
		}
		if fallback != nil {
			return *fallback, true
		}
		return models.Agent{}, false
	}
}

// printReport prints validation errors in red and warnings in yellow.
func printReport(report *registry.Report) {
	for _, msg := range report.Errors {
		fmt.Printf("%s %s\n", color.RedString("✗"), msg)
	}
	for _, msg := range report.Warnings {
		fmt.Printf("%s %s\n", color.YellowString("⚠"), msg)
	}
}

// printStatus prints a status line with color
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}
