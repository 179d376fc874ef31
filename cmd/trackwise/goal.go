// ABOUTME: CLI commands for managing learning goals.
// ABOUTME: Supports add, list, show, status, edit, and delete subcommands.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/trackwise/internal/models"
	"github.com/spf13/cobra"
)

var (
	goalDescription string
	goalStatus      string
	goalLimit       int
	goalEditTitle   string
	goalEditDesc    string
)

var goalCmd = &cobra.Command{
	Use:     "goal",
	Aliases: []string{"g"},
	Short:   "Manage learning goals",
	Long: `Create and manage the goals you are learning toward.

Each goal keeps a log of progress entries (see 'trackwise log'). Progress
analysis, advice and chat all work per goal.

COMMANDS:

  add      Create a new goal
  list     List goals with entry counts and hours
  show     View a goal with its progress log
  status   Mark a goal active, paused or done
  edit     Change the title or description
  delete   Delete a goal and everything logged against it`,
}

var goalAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a new goal",
	Long: `Add a new learning goal.

Examples:
  trackwise goal add "Learn Spanish"
  trackwise goal add Piano -d "Play a Chopin nocturne by spring"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g := models.NewGoal(strings.TrimSpace(strings.Join(args, " ")))
		if goalDescription != "" {
			g.WithDescription(goalDescription)
		}

		if err := repo.CreateGoal(g); err != nil {
			return fmt.Errorf("failed to create goal: %w", err)
		}

		color.Green("✓ Added goal %s", g.Title)
		fmt.Printf("  ID: %d\n", g.ID)
		return nil
	},
}

var goalListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List goals",
	Long: `List goals, newest first.

OUTPUT FORMAT:

  Each line shows: ID  STATUS  TITLE  ENTRIES  HOURS  (LAST ACTIVITY)

EXAMPLES:

  trackwise goal list                 # All goals
  trackwise goal list --status active # Only active goals
  trackwise goal ls -n 5              # Five most recent goals`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var status *models.GoalStatus
		if goalStatus != "" {
			if !models.IsValidGoalStatus(goalStatus) {
				return fmt.Errorf("unknown status: %s (use active, paused or done)", goalStatus)
			}
			st := models.GoalStatus(goalStatus)
			status = &st
		}

		goals, err := repo.ListGoals(status, goalLimit)
		if err != nil {
			return fmt.Errorf("failed to list goals: %w", err)
		}

		if len(goals) == 0 {
			fmt.Println("No goals found.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, g := range goals {
			full, err := repo.GetGoalWithProgress(g.ID)
			if err != nil {
				return fmt.Errorf("failed to load goal %d: %w", g.ID, err)
			}
			last := ""
			if at := full.LastActivity(); at != nil {
				last = faint.Sprintf(" (last %s)", at.Format("2006-01-02"))
			}
			fmt.Printf("%s %s %s %3d entries %6.1fh%s\n",
				faint.Sprintf("%4d", g.ID),
				statusColor(g.Status).Sprint(padRight(string(g.Status), 6)),
				padRight(truncate(g.Title, 30), 30),
				full.ProgressCount(),
				full.TotalHours(),
				last)
		}
		return nil
	},
}

var goalShowCmd = &cobra.Command{
	Use:   "show <goal-id>",
	Short: "Show goal details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		g, err := repo.GetGoalWithProgress(id)
		if err != nil {
			return fmt.Errorf("goal not found: %s", args[0])
		}

		fmt.Printf("Goal: %d\n", g.ID)
		fmt.Printf("Title: %s\n", g.Title)
		if g.Description != nil {
			fmt.Printf("Description: %s\n", *g.Description)
		}
		fmt.Printf("Status: %s\n", statusColor(g.Status).Sprint(g.Status))
		fmt.Printf("Created: %s\n", g.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Printf("Entries: %d (%.1f hours)\n", g.ProgressCount(), g.TotalHours())

		if len(g.Progress) > 0 {
			fmt.Println("\nProgress:")
			printProgress(g.Progress)
		}
		return nil
	},
}

var goalStatusCmd = &cobra.Command{
	Use:       "status <goal-id> <active|paused|done>",
	Short:     "Set goal status",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"active", "paused", "done"},
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if !models.IsValidGoalStatus(args[1]) {
			return fmt.Errorf("unknown status: %s (use active, paused or done)", args[1])
		}

		g, err := repo.GetGoal(id)
		if err != nil {
			return fmt.Errorf("goal not found: %s", args[0])
		}
		g.WithStatus(models.GoalStatus(args[1]))
		if err := repo.UpdateGoal(g); err != nil {
			return fmt.Errorf("failed to update goal: %w", err)
		}

		color.Green("✓ %s is now %s", g.Title, g.Status)
		return nil
	},
}

var goalEditCmd = &cobra.Command{
	Use:   "edit <goal-id>",
	Short: "Edit goal title or description",
	Long: `Edit a goal's title or description.

Examples:
  trackwise goal edit 3 --title "Learn Portuguese"
  trackwise goal edit 3 --description "Hold a 10 minute conversation"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		titleSet := cmd.Flags().Changed("title")
		descSet := cmd.Flags().Changed("description")
		if !titleSet && !descSet {
			return fmt.Errorf("nothing to change: pass --title or --description")
		}

		g, err := repo.GetGoal(id)
		if err != nil {
			return fmt.Errorf("goal not found: %s", args[0])
		}
		if titleSet {
			g.Title = strings.TrimSpace(goalEditTitle)
		}
		if descSet {
			if d := strings.TrimSpace(goalEditDesc); d != "" {
				g.WithDescription(d)
			} else {
				g.Description = nil
			}
		}

		if err := repo.UpdateGoal(g); err != nil {
			return fmt.Errorf("failed to update goal: %w", err)
		}

		color.Green("✓ Updated goal %d", g.ID)
		return nil
	},
}

var goalDeleteCmd = &cobra.Command{
	Use:     "delete <goal-id>",
	Aliases: []string{"del", "rm"},
	Short:   "Delete a goal",
	Long: `Delete a goal by its ID.

CAUTION:

  This permanently deletes the goal, its progress log and its coaching
  conversations. There is no undo.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		// First, try to get the goal to show what we're deleting
		g, err := repo.GetGoal(id)
		if err != nil {
			return fmt.Errorf("goal not found: %s", args[0])
		}

		if err := repo.DeleteGoal(id); err != nil {
			return fmt.Errorf("failed to delete goal: %w", err)
		}

		color.Yellow("✗ Deleted goal %s", g.Title)
		return nil
	},
}

// parseID parses a positive record ID argument.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %s", s)
	}
	return id, nil
}

func statusColor(s models.GoalStatus) *color.Color {
	switch s {
	case models.StatusActive:
		return color.New(color.FgGreen)
	case models.StatusPaused:
		return color.New(color.FgYellow)
	default:
		return color.New(color.Faint)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func init() {
	goalAddCmd.Flags().StringVarP(&goalDescription, "description", "d", "", "goal description")

	goalListCmd.Flags().StringVarP(&goalStatus, "status", "s", "", "filter by status (active, paused, done)")
	goalListCmd.Flags().IntVarP(&goalLimit, "limit", "n", 20, "max number of results")

	goalEditCmd.Flags().StringVar(&goalEditTitle, "title", "", "new title")
	goalEditCmd.Flags().StringVarP(&goalEditDesc, "description", "d", "", "new description (empty clears it)")

	goalCmd.AddCommand(goalAddCmd)
	goalCmd.AddCommand(goalListCmd)
	goalCmd.AddCommand(goalShowCmd)
	goalCmd.AddCommand(goalStatusCmd)
	goalCmd.AddCommand(goalEditCmd)
	goalCmd.AddCommand(goalDeleteCmd)
	rootCmd.AddCommand(goalCmd)
}
