package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cadrekit/cadre/internal/registry"
)

var validateQuiet bool

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate the registry document",
	Long: `Check the registry document for structural errors and suspicious
values.

Errors (duplicate or malformed IDs, out-of-range metrics, broken
config) fail the command. Warnings (inverted thresholds, weights that
do not sum to 1.0, stale activity timestamps) are reported but never
affect the exit code.

The path argument overrides the configured registry location.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVarP(&validateQuiet, "quiet", "q", false, "Print nothing, only set the exit code")
}

func runValidate(cmd *cobra.Command, args []string) error {
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
		return err
	}

	report := registry.Validate(doc)

	if !validateQuiet {
		printReport(report)
	}

	if report.HasErrors() {
		if validateQuiet {
			os.Exit(1)
		}
		return fmt.Errorf("registry invalid: %d errors, %d warnings", len(report.Errors), len(report.Warnings))
	}

	if validateQuiet {
		return nil
	}
	if report.HasWarnings() {
		printStatus("⚠", fmt.Sprintf("registry valid with %d warnings", len(report.Warnings)), color.FgYellow)
	} else {
		printStatus("✓", fmt.Sprintf("registry valid: %d agents", len(doc.Agents)), color.FgGreen)
	}
	return nil
}
