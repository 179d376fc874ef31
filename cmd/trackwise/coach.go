// ABOUTME: CLI commands for progress analysis, advice and summaries.
// ABOUTME: Renders coach output as terminal markdown with glamour.
package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/fatih/color"
	"github.com/harperreed/trackwise/internal/models"
	"github.com/spf13/cobra"
)

var (
	adviceContext string
	adviceAll     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <goal-id>",
	Short: "Analyze progress on a goal",
	Long: `Compute progress statistics for a goal.

OUTPUT:

  Progress      5 points per entry plus 2 per hour, capped at 100%
  Trend         improving, stable or declining over the last three entries
  Consistency   entries in the last 30 days as a rate per day
  Estimate      projected completion date at the current pace
  Insights and recommendations based on the numbers above`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		a, err := coachSvc.ComputeAnalysis(id)
		if err != nil {
			return err
		}

		fmt.Printf("Progress:    %d%%\n", a.Percentage)
		fmt.Printf("Trend:       %s\n", trendLabel(a.Trend))
		fmt.Printf("Consistency: %d%%\n", a.Consistency)
		if a.EstimatedCompletion != nil {
			fmt.Printf("Estimate:    %s\n", a.EstimatedCompletion.Format("2006-01-02"))
		}

		if len(a.Insights) > 0 {
			fmt.Println("\nInsights:")
			for _, s := range a.Insights {
				fmt.Printf("  • %s\n", s)
			}
		}
		if len(a.Recommendations) > 0 {
			fmt.Println("\nRecommendations:")
			for _, s := range a.Recommendations {
				fmt.Printf("  → %s\n", s)
			}
		}
		return nil
	},
}

var adviceCmd = &cobra.Command{
	Use:   "advice [goal-id]",
	Short: "Get coaching tips",
	Long: `Get three short coaching tips for a goal.

Tips come from the configured language model. When AI is not configured or
the call fails, general tips are shown instead.

CONTEXTS:

  dashboard          Overall motivation (default)
  goal_detail        Detailed guidance for the goal
  progress_logging   Feedback right after logging progress

EXAMPLES:

  trackwise advice 3
  trackwise advice 3 --context progress_logging
  trackwise advice --all             # Tips for every active goal`,
	Args: func(cmd *cobra.Command, args []string) error {
		if adviceAll {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		adviceCtx := models.ParseAdviceContext(adviceContext)

		if adviceAll {
			status := models.StatusActive
			goals, err := repo.ListGoals(&status, 0)
			if err != nil {
				return fmt.Errorf("failed to list goals: %w", err)
			}
			if len(goals) == 0 {
				fmt.Println("No active goals.")
				return nil
			}
			ids := make([]int64, 0, len(goals))
			for _, g := range goals {
				ids = append(ids, g.ID)
			}

			var b strings.Builder
			for _, ga := range coachSvc.AdviceForGoals(cmd.Context(), ids, adviceCtx) {
				fmt.Fprintf(&b, "# %s\n\n", ga.Title)
				if ga.Err != nil {
					fmt.Fprintf(&b, "_%s_\n\n", ga.Err)
					continue
				}
				writeAdvice(&b, ga.Advice.Value)
			}
			fmt.Print(renderMarkdown(b.String()))
			return nil
		}

		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		out, err := coachSvc.GetAdvice(cmd.Context(), id, adviceCtx)
		if err != nil {
			return err
		}
		if out.Degraded {
			color.Yellow("AI unavailable (%s), showing general tips", out.Reason)
		}

		var b strings.Builder
		writeAdvice(&b, out.Value)
		fmt.Print(renderMarkdown(b.String()))
		return nil
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary <goal-id>",
	Short: "One-sentence progress summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		out, err := coachSvc.GetSummary(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Println(out.Value)
		return nil
	},
}

func writeAdvice(b *strings.Builder, items []models.AdviceItem) {
	for _, item := range items {
		fmt.Fprintf(b, "## %s\n\n%s\n\n", item.Title, item.Content)
	}
}

func trendLabel(t models.Trend) string {
	switch t {
	case models.TrendImproving:
		return color.GreenString("improving")
	case models.TrendDeclining:
		return color.RedString("declining")
	case models.TrendNoData:
		return color.New(color.Faint).Sprint("not enough data")
	default:
		return string(t)
	}
}

// renderMarkdown renders coach text for the terminal, falling back to the raw text.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func init() {
	adviceCmd.Flags().StringVarP(&adviceContext, "context", "c", "dashboard", "advice context: dashboard, goal_detail, progress_logging")
	adviceCmd.Flags().BoolVar(&adviceAll, "all", false, "advice for every active goal")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(adviceCmd)
	rootCmd.AddCommand(summaryCmd)
}
