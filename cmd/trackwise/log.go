// ABOUTME: CLI commands for logging progress against goals.
// ABOUTME: Supports add, list, and delete subcommands plus timestamp parsing.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/trackwise/internal/models"
	"github.com/spf13/cobra"
)

var (
	logHours float64
	logAt    string
	logGoal  int64
	logLimit int
)

var logCmd = &cobra.Command{
	Use:     "log",
	Aliases: []string{"l"},
	Short:   "Log progress on a goal",
	Long: `Record what you did toward a goal.

Each entry has a note, an optional number of hours and a date. Progress
percentage is 5 points per entry plus 2 per hour, capped at 100.

COMMANDS:

  add      Log a progress entry
  list     List recent entries
  delete   Delete an entry`,
}

var logAddCmd = &cobra.Command{
	Use:     "add <goal-id> <note>",
	Aliases: []string{"a"},
	Short:   "Log a progress entry",
	Long: `Log a progress entry for a goal.

Examples:
  trackwise log add 1 "Finished chapter 2"
  trackwise log add 1 "Practice scales" --hours 0.5
  trackwise log add 1 "Mock exam" -H 2 --at "2025-01-31 08:00"`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		goalID, err := parseID(args[0])
		if err != nil {
			return err
		}

		p := models.NewProgressEntry(goalID, strings.TrimSpace(strings.Join(args[1:], " ")))
		if cmd.Flags().Changed("hours") {
			p.WithHours(logHours)
		}
		if logAt != "" {
			t, err := parseTime(logAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", logAt)
			}
			p.WithDate(t)
		}

		if err := repo.AddProgress(p); err != nil {
			return fmt.Errorf("failed to log progress: %w", err)
		}

		color.Green("✓ Logged progress")
		fmt.Printf("  %s %s\n", color.New(color.Faint).Sprintf("#%d", p.ID), formatHours(p.Hours))
		return nil
	},
}

var logListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List progress entries",
	Long: `List recent progress entries, newest first.

OUTPUT FORMAT:

  Each line shows: ID  DATE  GOAL  HOURS  NOTE

EXAMPLES:

  trackwise log list           # Last 20 entries across goals
  trackwise log list -g 3      # Entries for goal 3
  trackwise log ls -g 3 -n 50  # Last 50 entries for goal 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := repo.ListProgress(logGoal, logLimit)
		if err != nil {
			return fmt.Errorf("failed to list progress: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No progress found.")
			return nil
		}

		list := make([]models.ProgressEntry, 0, len(entries))
		for _, p := range entries {
			list = append(list, *p)
		}
		printProgress(list)
		return nil
	},
}

var logDeleteCmd = &cobra.Command{
	Use:     "delete <entry-id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a progress entry",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		p, err := repo.GetProgress(id)
		if err != nil {
			return fmt.Errorf("progress entry not found: %s", args[0])
		}
		if err := repo.DeleteProgress(id); err != nil {
			return fmt.Errorf("failed to delete progress: %w", err)
		}

		color.Yellow("✗ Deleted entry #%d", p.ID)
		fmt.Printf("  %s\n", truncate(p.Note, 60))
		return nil
	},
}

func printProgress(entries []models.ProgressEntry) {
	faint := color.New(color.Faint)
	for _, p := range entries {
		fmt.Printf("%s %s %s %s %s\n",
			faint.Sprintf("%5d", p.ID),
			faint.Sprint(p.Date.Format("2006-01-02 15:04")),
			faint.Sprintf("g%-3d", p.GoalID),
			padRight(formatHours(p.Hours), 6),
			truncate(p.Note, 50))
	}
}

func formatHours(h *float64) string {
	if h == nil {
		return "-"
	}
	return fmt.Sprintf("%.1fh", *h)
}

// parseTime accepts the timestamp formats shown in help text, in local time.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

func init() {
	logAddCmd.Flags().Float64VarP(&logHours, "hours", "H", 0, "hours spent")
	logAddCmd.Flags().StringVar(&logAt, "at", "", "timestamp (YYYY-MM-DD HH:MM)")

	logListCmd.Flags().Int64VarP(&logGoal, "goal", "g", 0, "only entries for this goal")
	logListCmd.Flags().IntVarP(&logLimit, "limit", "n", 20, "max number of results")

	logCmd.AddCommand(logAddCmd)
	logCmd.AddCommand(logListCmd)
	logCmd.AddCommand(logDeleteCmd)
	rootCmd.AddCommand(logCmd)
}
