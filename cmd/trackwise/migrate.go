// ABOUTME: CLI command for migrating data between storage backends.
// ABOUTME: Copies goals, progress and conversations from SQLite to Charm KV or back.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/trackwise/internal/config"
	"github.com/harperreed/trackwise/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateFrom   string
	migrateTo     string
	migrateDryRun bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate data between storage backends",
	Long: `Copy all trackwise data from one storage backend to another.

Goals, progress entries, conversations and messages are copied with their
IDs preserved. The destination should be empty; duplicate IDs cause errors.

IMPORTANT:

  - The source is never modified
  - Run with --dry-run first to see what would be migrated
  - Switch "backend" in ~/.config/trackwise/config.json afterwards

USAGE:

  trackwise migrate --from sqlite --to charm --dry-run   # Preview
  trackwise migrate --from sqlite --to charm             # Move to Charm Cloud
  trackwise migrate --from charm --to sqlite             # Back to local SQLite`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateFrom == migrateTo {
			return fmt.Errorf("source and destination are both %s", migrateFrom)
		}

		dataDir := cfg.GetDataDir()
		src, err := config.OpenBackend(migrateFrom, dataDir)
		if err != nil {
			return fmt.Errorf("failed to open source: %w", err)
		}
		defer func() { _ = src.Close() }()

		if migrateDryRun {
			color.Yellow("Dry run mode - no changes will be made")
			fmt.Println()

			summary, err := storage.CountData(src)
			if err != nil {
				return fmt.Errorf("failed to read source: %w", err)
			}
			fmt.Printf("Would migrate from %s to %s:\n", migrateFrom, migrateTo)
			printSummary(summary)
			return nil
		}

		dst, err := config.OpenBackend(migrateTo, dataDir)
		if err != nil {
			return fmt.Errorf("failed to open destination: %w", err)
		}
		defer func() { _ = dst.Close() }()

		summary, err := storage.MigrateData(src, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		color.Green("✓ Migrated from %s to %s", migrateFrom, migrateTo)
		printSummary(summary)
		return nil
	},
}

func printSummary(s *storage.MigrateSummary) {
	fmt.Printf("  Goals:         %d\n", s.Goals)
	fmt.Printf("  Progress:      %d\n", s.Progress)
	fmt.Printf("  Conversations: %d\n", s.Conversations)
	fmt.Printf("  Messages:      %d\n", s.Messages)
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", config.BackendSQLite, "source backend: sqlite or charm")
	migrateCmd.Flags().StringVar(&migrateTo, "to", config.BackendCharm, "destination backend: sqlite or charm")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	rootCmd.AddCommand(migrateCmd)
}
