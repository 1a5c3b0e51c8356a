package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cadrekit/cadre/internal/registry"
	"github.com/cadrekit/cadre/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-validate the registry whenever it changes",
	Long: `Watch the registry document and run validation on every change.

Useful while hand-editing the registry: errors and warnings appear as
soon as the file is saved. Stop with Ctrl-C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	registryPathArg(cfg, args)
	logger := openLogger(cfg)
	defer logger.Close()

	store := registry.NewStore(cfg.Registry.Path, logger)

	revalidate := func() {
		doc, err := store.Load()
		if err != nil {
			printStatus("✗", err.Error(), color.FgRed)
			return
		}

		report := registry.Validate(doc)
		printReport(report)
		switch {
		case report.HasErrors():
			printStatus("✗", fmt.Sprintf("registry invalid: %d errors", len(report.Errors)), color.FgRed)
		case report.HasWarnings():
			printStatus("⚠", fmt.Sprintf("registry valid with %d warnings", len(report.Warnings)), color.FgYellow)
		default:
			printStatus("✓", fmt.Sprintf("registry valid: %d agents", len(doc.Agents)), color.FgGreen)
		}
		logger.Log("watch: revalidated %s", store.Path())
	}

	watcher, err := watch.New(cfg.Registry.Path, watch.DefaultDebounce, func() {
		fmt.Printf("\n%s changed:\n", cfg.Registry.Path)
		revalidate()
	})
	if err != nil {
		return err
	}
	defer watcher.Close()

	fmt.Printf("Watching %s (Ctrl-C to stop)\n", cfg.Registry.Path)
	revalidate()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	fmt.Println("\nStopped.")
	return nil
}
