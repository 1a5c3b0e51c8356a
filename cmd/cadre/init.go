package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/cadrekit/cadre/internal/hierarchy"
	"github.com/cadrekit/cadre/internal/logging"
	"github.com/cadrekit/cadre/internal/registry"
)

var (
	initForce      bool
	initWithConfig bool
)

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a cadre project",
	Long: `Initialize a directory for use with cadre.

This command sets up everything needed to run cadre:
  - Creates the .cadre directory structure
  - Creates a registry document with default thresholds
  - Creates a hierarchy definition with default role rules
  - Optionally creates a project configuration file

The directory argument is optional and defaults to the current directory.

Examples:
  cadre init                # Initialize current directory
  cadre init ./myproject    # Initialize specific directory
  cadre init --force        # Recreate the registry even if present
  cadre init --with-config  # Create a .cadre.yaml template`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Recreate the registry even if present")
	initCmd.Flags().BoolVar(&initWithConfig, "with-config", false, "Create a .cadre.yaml template")
}

func runInit(cmd *cobra.Command, args []string) error {
	// Step 1: Resolve target directory
	targetDir := "."
	if len(args) > 0 {
		targetDir = args[0]
	}

	absPath, err := filepath.Abs(targetDir)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}

	if err := os.MkdirAll(absPath, 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", absPath, err)
	}

	fmt.Printf("Initializing cadre in %s...\n\n", absPath)

	// Step 2: Create .cadre structure
	cadreDir := filepath.Join(absPath, ".cadre")
	logsDir := filepath.Join(cadreDir, "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("creating .cadre/logs directory: %w", err)
	}
	printStatus("✓", "Created .cadre directory structure", color.FgGreen)

	// Step 3: Create registry document
	registryPath := filepath.Join(absPath, "registry.json")
	store := registry.NewStore(registryPath, logging.Nop())
	if initForce {
		os.Remove(registryPath)
	}
	if _, err := store.Init(registry.DefaultDocument()); err != nil {
		if errors.Is(err, registry.ErrExists) {
			printStatus("⚠", "registry.json already present (use --force to recreate)", color.FgYellow)
		} else {
			return fmt.Errorf("creating registry: %w", err)
		}
	} else {
		printStatus("✓", "Created registry.json", color.FgGreen)
	}

	// Step 4: Create hierarchy definition
	hierarchyPath := filepath.Join(absPath, "hierarchy.yaml")
	created, err := writeHierarchyFile(hierarchyPath)
	if err != nil {
		return fmt.Errorf("creating hierarchy definition: %w", err)
	}
	if created {
		printStatus("✓", "Created hierarchy.yaml", color.FgGreen)
	} else {
		printStatus("⚠", "hierarchy.yaml already present", color.FgYellow)
	}

	// Step 5: Update .gitignore
	if err := updateGitignore(absPath); err != nil {
		return fmt.Errorf("updating .gitignore: %w", err)
	}
	printStatus("✓", "Updated .gitignore with cadre entries", color.FgGreen)

	// Step 6: Create project config (if --with-config)
	if initWithConfig {
		if err := createProjectConfig(absPath); err != nil {
			return fmt.Errorf("creating project config: %w", err)
		}
		printStatus("✓", "Created .cadre.yaml template", color.FgGreen)
	}

	// Step 7: Success message
	fmt.Printf("\n%s cadre initialization complete!\n\n", color.GreenString("✓"))
	fmt.Println("Next steps:")
	fmt.Println("  1. Spawn your first agent:")
	fmt.Println("     cadre spawn --name refactor-bot --specialization api")
	fmt.Println()
	fmt.Println("  2. Plan and delegate a task:")
	fmt.Println("     cadre plan \"add api auth and security tests\" --chain")
	fmt.Println()
	fmt.Println("  3. Run an evaluation cycle:")
	fmt.Println("     cadre evaluate")

	return nil
}

// writeHierarchyFile writes the default hierarchy definition unless one
// already exists. Returns true when a new file was written.
func writeHierarchyFile(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	data, err := yaml.Marshal(hierarchy.Default())
	if err != nil {
		return false, fmt.Errorf("marshaling hierarchy: %w", err)
	}

	header := "# Cadre hierarchy definition.\n# Maps specializations to roles and defines who may delegate to whom.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0644); err != nil {
		return false, err
	}
	return true, nil
}

// updateGitignore adds cadre entries to .gitignore if not present
func updateGitignore(repoPath string) error {
	gitignorePath := filepath.Join(repoPath, ".gitignore")

	// Read existing .gitignore or create new
	var existingContent string
	if data, err := os.ReadFile(gitignorePath); err == nil {
		existingContent = string(data)
	}

	cadreEntries := []string{
		".cadre/",
		"registry.json.lock",
	}

	needsUpdate := false
	for _, entry := range cadreEntries {
		if !strings.Contains(existingContent, entry) {
			needsUpdate = true
			break
		}
	}

	if !needsUpdate {
		return nil // Already has all entries
	}

	var newContent strings.Builder
	newContent.WriteString(existingContent)

	if len(existingContent) > 0 && !strings.HasSuffix(existingContent, "\n") {
		newContent.WriteString("\n")
	}

	newContent.WriteString("\n# cadre\n")
	for _, entry := range cadreEntries {
		if !strings.Contains(existingContent, entry) {
			newContent.WriteString(entry + "\n")
		}
	}

	return os.WriteFile(gitignorePath, []byte(newContent.String()), 0644)
}

// createProjectConfig creates a .cadre.yaml template
func createProjectConfig(repoPath string) error {
	configPath := filepath.Join(repoPath, ".cadre.yaml")

	// Check if already exists
	if _, err := os.Stat(configPath); err == nil {
		return nil // Already exists, don't overwrite
	}

	template := `# Cadre Project Configuration
# This file overrides defaults from ~/.config/cadre/config.yaml

# registry:
#   path: registry.json
#   results_path: .cadre/evaluation_results.json
#   lock_timeout: 30s

# hierarchy:
#   path: hierarchy.yaml

# state:
#   path: .cadre/state.db

# scoring:
#   target_issues_resolved: 20
`

	return os.WriteFile(configPath, []byte(template), 0644)
}
