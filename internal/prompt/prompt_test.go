// ABOUTME: Tests for prompt builders.
// ABOUTME: Pins the exact advice template, excerpt behavior and chat context block.
package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/harperreed/trackwise/internal/models"
)

func snapshot(entries ...models.ProgressEntry) models.GoalSnapshot {
	g := models.NewGoal("Learn Rust").WithDescription("Ownership and lifetimes")
	g.ID = 3
	g.Progress = entries
	return models.SnapshotOf(g)
}

func at(month time.Month, d int) time.Time {
	return time.Date(2025, month, d, 10, 0, 0, 0, time.UTC)
}

func TestAdviceNoProgress(t *testing.T) {
	got := Advice(snapshot(), models.ContextDashboard)

	want := `Provide general advice for this learning goal

Goal: Learn Rust
Description: Ownership and lifetimes
Status: active
Progress: 0 entries, 0 hours
Recent activity: No recent progress

Provide 2-3 specific, actionable tips.`
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Advice mismatch (-want +got):\n%s", diff)
	}
}

func TestAdviceShortNoteStillGetsEllipsis(t *testing.T) {
	e := *models.NewProgressEntry(3, "ab").WithDate(at(time.March, 4))

	got := Advice(snapshot(e), models.ContextDashboard)

	if !strings.Contains(got, "Recent activity: 3/4/2025: ab...\n") {
		t.Errorf("expected short note excerpt with ellipsis, got:\n%s", got)
	}
}

func TestAdviceRecentActivity(t *testing.T) {
	long := strings.Repeat("x", 60)
	entries := []models.ProgressEntry{
		*models.NewProgressEntry(3, "oldest").WithDate(at(time.January, 1)).WithHours(1),
		*models.NewProgressEntry(3, long).WithDate(at(time.January, 9)).WithHours(2),
		*models.NewProgressEntry(3, "middle").WithDate(at(time.January, 5)),
		*models.NewProgressEntry(3, "newest").WithDate(at(time.January, 12)).WithHours(0.5),
	}

	got := Advice(snapshot(entries...), models.ContextGoalDetail)

	wantBlock := "Recent activity: 1/12/2025: newest...\n" +
		"1/9/2025: " + strings.Repeat("x", 50) + "...\n" +
		"1/5/2025: middle...\n"
	if !strings.Contains(got, wantBlock) {
		t.Errorf("recent block mismatch, got:\n%s", got)
	}
	if strings.Contains(got, "oldest") {
		t.Error("expected only the three most recent entries")
	}
	if !strings.HasPrefix(got, "Give specific advice based on their progress\n\n") {
		t.Errorf("unexpected lead: %q", strings.SplitN(got, "\n", 2)[0])
	}
	if !strings.Contains(got, "Progress: 4 entries, 3.5 hours\n") {
		t.Errorf("expected aggregate stats line, got:\n%s", got)
	}
}

func TestAdviceLeads(t *testing.T) {
	tests := []struct {
		ctx  models.AdviceContext
		lead string
	}{
		{models.ContextDashboard, "Provide general advice for this learning goal"},
		{models.ContextGoalDetail, "Give specific advice based on their progress"},
		{models.ContextProgressLogging, "Suggest next steps for their learning journey"},
		{models.AdviceContext("unknown"), "Provide general advice for this learning goal"},
		{models.AdviceContext(""), "Provide general advice for this learning goal"},
	}

	for _, tt := range tests {
		t.Run(string(tt.ctx), func(t *testing.T) {
			got := Advice(snapshot(), tt.ctx)
			if first := strings.SplitN(got, "\n", 2)[0]; first != tt.lead {
				t.Errorf("lead = %q, want %q", first, tt.lead)
			}
		})
	}
}

func TestAdviceMissingDescription(t *testing.T) {
	g := models.NewGoal("Guitar")
	got := Advice(models.SnapshotOf(g), models.ContextDashboard)

	if !strings.Contains(got, "Description: No description\n") {
		t.Errorf("expected placeholder description, got:\n%s", got)
	}
}

func TestAdviceDeterministic(t *testing.T) {
	s := snapshot(*models.NewProgressEntry(3, "notes").WithDate(at(time.May, 2)))
	if Advice(s, models.ContextGoalDetail) != Advice(s, models.ContextGoalDetail) {
		t.Error("Advice is not deterministic")
	}
}

func TestSummary(t *testing.T) {
	s := snapshot(*models.NewProgressEntry(3, "a").WithHours(1.5))

	got := Summary(s)

	want := "Summarize this learning progress in one sentence:\n\nGoal: Learn Rust\nProgress: 1 entries, 1.5 hours\nStatus: active"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Summary mismatch (-want +got):\n%s", diff)
	}
}

func TestChatSystem(t *testing.T) {
	var entries []models.ProgressEntry
	for d := 1; d <= 7; d++ {
		p := models.NewProgressEntry(3, "session").WithDate(at(time.February, d))
		if d%2 == 0 {
			p.WithHours(1)
		}
		entries = append(entries, *p)
	}

	got := ChatSystem(snapshot(entries...))

	for _, want := range []string{
		"- Goal: Learn Rust\n",
		"- Description: Ownership and lifetimes\n",
		"- Total progress entries: 7\n",
		"- Total hours invested: 3\n",
		"Recent Progress:\n- 2/7/2025: session\n- 2/6/2025: session (1 hours)\n",
		"Respond naturally as a learning coach would.",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in chat prompt", want)
		}
	}
	if strings.Contains(got, "2/2/2025") {
		t.Error("expected only the five most recent entries")
	}
}

func TestChatSystemNoProgress(t *testing.T) {
	got := ChatSystem(snapshot())

	if !strings.Contains(got, "Recent Progress:\nNo recent progress entries\n") {
		t.Errorf("expected empty progress placeholder, got:\n%s", got)
	}
}
