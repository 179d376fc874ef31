// ABOUTME: Builds the natural-language prompts sent to the language model.
// ABOUTME: Advice, summary and chat system prompts are pure functions of a GoalSnapshot.
package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/harperreed/trackwise/internal/models"
)

// System instructions paired with each prompt.
const (
	AdviceSystem  = "You are a helpful learning coach. Provide concise, actionable advice in 2-3 sentences maximum."
	SummarySystem = "You are a progress analyst. Provide concise, encouraging summaries in one sentence."
)

const (
	noDescription       = "No description"
	noRecentProgress    = "No recent progress"
	noRecentChatEntries = "No recent progress entries"

	adviceRecentEntries = 3
	chatRecentEntries   = 5
	noteExcerptRunes    = 50

	// DateLayout renders entry dates as month/day/year without padding.
	DateLayout = "1/2/2006"
)

var leads = map[models.AdviceContext]string{
	models.ContextDashboard:       "Provide general advice for this learning goal",
	models.ContextGoalDetail:      "Give specific advice based on their progress",
	models.ContextProgressLogging: "Suggest next steps for their learning journey",
}

// Advice builds the advice prompt for a goal in the given display context.
// Unknown contexts use the dashboard lead.
func Advice(goal models.GoalSnapshot, ctx models.AdviceContext) string {
	lead, ok := leads[ctx]
	if !ok {
		lead = leads[models.ContextDashboard]
	}

	var b strings.Builder
	b.WriteString(lead)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Goal: %s\n", goal.Title)
	fmt.Fprintf(&b, "Description: %s\n", goal.DescriptionOr(noDescription))
	fmt.Fprintf(&b, "Status: %s\n", goal.Status)
	fmt.Fprintf(&b, "Progress: %d entries, %s hours\n", goal.ProgressCount, FormatHours(goal.TotalHours))
	fmt.Fprintf(&b, "Recent activity: %s\n", recentActivity(goal))
	b.WriteString("\nProvide 2-3 specific, actionable tips.")
	return b.String()
}

// recentActivity always appends an ellipsis to the note excerpt, even for short notes.
func recentActivity(goal models.GoalSnapshot) string {
	recent := goal.Recent(adviceRecentEntries)
	if len(recent) == 0 {
		return noRecentProgress
	}

	lines := make([]string, len(recent))
	for i, p := range recent {
		lines[i] = fmt.Sprintf("%s: %s...", p.Date.Format(DateLayout), excerpt(p.Note, noteExcerptRunes))
	}
	return strings.Join(lines, "\n")
}

// Summary builds the one-sentence progress summary prompt.
func Summary(goal models.GoalSnapshot) string {
	status := goal.Status
	if status == "" {
		status = models.StatusActive
	}
	return fmt.Sprintf("Summarize this learning progress in one sentence:\n\nGoal: %s\nProgress: %d entries, %s hours\nStatus: %s",
		goal.Title, goal.ProgressCount, FormatHours(goal.TotalHours), status)
}

// ChatSystem builds the coaching system prompt with the goal's context and recent entries.
func ChatSystem(goal models.GoalSnapshot) string {
	var recent strings.Builder
	for i, p := range goal.Recent(chatRecentEntries) {
		if i > 0 {
			recent.WriteString("\n")
		}
		fmt.Fprintf(&recent, "- %s: %s", p.Date.Format(DateLayout), p.Note)
		if h := p.HoursOrZero(); h != 0 {
			fmt.Fprintf(&recent, " (%s hours)", FormatHours(h))
		}
	}
	recentBlock := recent.String()
	if recentBlock == "" {
		recentBlock = noRecentChatEntries
	}

	var b strings.Builder
	b.WriteString("You are an expert learning coach and AI tutor for TrackWise. Your role is to help users analyze their learning progress, provide personalized advice, and keep them motivated.\n\n")
	b.WriteString("Current Goal Context:\n")
	fmt.Fprintf(&b, "- Goal: %s\n", goal.Title)
	fmt.Fprintf(&b, "- Description: %s\n", goal.DescriptionOr(noDescription))
	fmt.Fprintf(&b, "- Status: %s\n", goal.Status)
	fmt.Fprintf(&b, "- Total progress entries: %d\n", goal.ProgressCount)
	fmt.Fprintf(&b, "- Total hours invested: %s\n\n", FormatHours(goal.TotalHours))
	b.WriteString("Recent Progress:\n")
	b.WriteString(recentBlock)
	b.WriteString("\n\n")
	b.WriteString(`Your capabilities:
1. Analyze learning patterns and progress trends
2. Provide personalized study recommendations
3. Offer motivational support and encouragement
4. Suggest learning strategies based on their progress
5. Help them overcome learning obstacles
6. Create actionable next steps

Guidelines:
- Be encouraging and supportive
- Provide specific, actionable advice
- Reference their actual progress data
- Ask follow-up questions to understand their challenges
- Keep responses concise but thorough
- Focus on practical solutions

Respond naturally as a learning coach would.`)
	return b.String()
}

// FormatHours renders hours in the shortest exact form, e.g. 3, 2.5.
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

func excerpt(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
