// ABOUTME: Tests for the progress metrics engine.
// ABOUTME: Covers scoring, trend, consistency, insights, recommendations and completion estimates.
package analytics

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/harperreed/trackwise/internal/models"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func entry(daysAgo float64, hours *float64) models.ProgressEntry {
	return models.ProgressEntry{
		Date:  testNow.Add(-time.Duration(daysAgo * float64(day))),
		Note:  "practice",
		Hours: hours,
	}
}

func hrs(h float64) *float64 { return &h }

func TestPercentage(t *testing.T) {
	tests := []struct {
		name  string
		count int
		hours float64
		want  int
	}{
		{"empty", 0, 0, 0},
		{"entries only", 3, 0, 15},
		{"hours only", 0, 10, 20},
		{"both", 4, 5.5, 31},
		{"rounds half up", 1, 1.25, 8},
		{"capped", 30, 0, 100},
		{"capped by hours", 0, 80, 100},
		{"just under cap", 19, 2, 99},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percentage(tt.count, tt.hours); got != tt.want {
				t.Errorf("Percentage(%d, %v) = %d, want %d", tt.count, tt.hours, got, tt.want)
			}
		})
	}
}

func TestPercentageMonotoneAndBounded(t *testing.T) {
	for count := 0; count <= 25; count++ {
		for h := 0.0; h <= 60; h += 0.5 {
			p := Percentage(count, h)
			if p < 0 || p > 100 {
				t.Fatalf("Percentage(%d, %v) = %d out of range", count, h, p)
			}
			if next := Percentage(count+1, h); next < p {
				t.Fatalf("not monotone in count at (%d, %v): %d then %d", count, h, p, next)
			}
			if next := Percentage(count, h+0.5); next < p {
				t.Fatalf("not monotone in hours at (%d, %v): %d then %d", count, h, p, next)
			}
		}
	}
}

func TestTrendInsufficientData(t *testing.T) {
	for n := 0; n < 3; n++ {
		entries := make([]models.ProgressEntry, n)
		for i := range entries {
			entries[i] = entry(float64(i), hrs(2))
		}
		_, err := Trend(entries, testNow)
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("Trend with %d entries: err = %v, want ErrInsufficientData", n, err)
		}
	}
}

func TestTrendClassification(t *testing.T) {
	tests := []struct {
		name    string
		entries []models.ProgressEntry
		want    models.Trend
	}{
		{
			name:    "dense recent work",
			entries: []models.ProgressEntry{entry(0, hrs(2)), entry(1, hrs(2)), entry(2, hrs(2))},
			want:    models.TrendImproving,
		},
		{
			name:    "one hour a day",
			entries: []models.ProgressEntry{entry(1, hrs(1)), entry(2, hrs(1)), entry(3, hrs(1))},
			want:    models.TrendStable,
		},
		{
			name:    "sparse",
			entries: []models.ProgressEntry{entry(1, hrs(0.5)), entry(10, hrs(0.5)), entry(20, hrs(0.5))},
			want:    models.TrendDeclining,
		},
		{
			name:    "absent hours count as one",
			entries: []models.ProgressEntry{entry(0.1, nil), entry(0.2, nil), entry(0.5, nil)},
			want:    models.TrendImproving,
		},
		{
			name: "only three most recent by date count regardless of order",
			entries: []models.ProgressEntry{
				entry(40, hrs(0.1)),
				entry(0, hrs(3)),
				entry(60, hrs(0.1)),
				entry(1, hrs(3)),
				entry(2, hrs(3)),
			},
			want: models.TrendImproving,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Trend(tt.entries, testNow)
			if err != nil {
				t.Fatalf("Trend failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Trend() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTrendExactlyThreeAlwaysClassified(t *testing.T) {
	spreads := [][3]float64{
		{0, 0, 0},
		{0, 100, 365},
		{5, 5, 5},
		{-2, 0, 3},
		{0.01, 0.02, 0.03},
	}
	for _, s := range spreads {
		entries := []models.ProgressEntry{entry(s[0], nil), entry(s[1], hrs(0)), entry(s[2], hrs(4))}
		got, err := Trend(entries, testNow)
		if err != nil {
			t.Fatalf("Trend(%v) failed: %v", s, err)
		}
		switch got {
		case models.TrendImproving, models.TrendStable, models.TrendDeclining:
		default:
			t.Errorf("Trend(%v) = %s, want a classified trend", s, got)
		}
	}
}

func TestTrendDoesNotReorderInput(t *testing.T) {
	entries := []models.ProgressEntry{entry(5, nil), entry(1, nil), entry(3, nil), entry(0, nil)}
	before := append([]models.ProgressEntry(nil), entries...)

	if _, err := Trend(entries, testNow); err != nil {
		t.Fatalf("Trend failed: %v", err)
	}
	if diff := cmp.Diff(before, entries); diff != "" {
		t.Errorf("input mutated (-before +after):\n%s", diff)
	}
}

func TestConsistency(t *testing.T) {
	daily := func(n int) []models.ProgressEntry {
		out := make([]models.ProgressEntry, n)
		for i := range out {
			out[i] = entry(float64(i)+0.5, nil)
		}
		return out
	}
	many := make([]models.ProgressEntry, 40)
	for i := range many {
		many[i] = entry(float64(i%20)+0.25, nil)
	}

	tests := []struct {
		name    string
		entries []models.ProgressEntry
		want    int
	}{
		{"one per day for 30 days", daily(30), 100},
		{"none in range", []models.ProgressEntry{entry(31, nil), entry(45, nil)}, 0},
		{"forty in range", many, 133},
		{"half the month", daily(15), 50},
		{"single entry", daily(1), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Consistency(tt.entries, testNow)
			if err != nil {
				t.Fatalf("Consistency failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Consistency() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConsistencyNoData(t *testing.T) {
	_, err := Consistency(nil, testNow)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestInsights(t *testing.T) {
	got := Insights(31, 5.5, 4)
	want := []string{"31% progress", "4 sessions completed", "5.5 hours invested"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Insights mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []float64{math.NaN(), math.Inf(1)} {
		if diff := cmp.Diff([]string{InsightsFallback}, Insights(bad, 1, 1)); diff != "" {
			t.Errorf("Insights(%v) mismatch (-want +got):\n%s", bad, diff)
		}
		if diff := cmp.Diff([]string{InsightsFallback}, Insights(10, bad, 1)); diff != "" {
			t.Errorf("Insights hours %v mismatch (-want +got):\n%s", bad, diff)
		}
	}
}

func TestRecommendations(t *testing.T) {
	tests := []struct {
		name        string
		percentage  float64
		consistency float64
		want        []string
	}{
		{"low everything", 20, 20, []string{RecPracticeMore, RecCreateRoutine, RecTrackDaily}},
		{"low progress steady routine", 20, 60, []string{RecPracticeMore, RecTrackDaily}},
		{"middle", 40, 50, []string{RecTrackDaily}},
		{"strong but irregular", 80, 10, []string{RecCreateRoutine, RecKeepGoing, RecTrackDaily}},
		{"strong and regular", 90, 120, []string{RecKeepGoing, RecTrackDaily}},
		{"boundaries are exclusive", 30, 40, []string{RecTrackDaily}},
		{"exactly fifty", 50, 40, []string{RecTrackDaily}},
		{"non-finite percentage", math.NaN(), 10, []string{RecTrackDaily}},
		{"non-finite consistency", 10, math.Inf(-1), []string{RecTrackDaily}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recommendations(tt.percentage, tt.consistency)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Recommendations mismatch (-want +got):\n%s", diff)
			}
			if got[len(got)-1] != RecTrackDaily {
				t.Errorf("last recommendation = %q, want %q", got[len(got)-1], RecTrackDaily)
			}
		})
	}
}

func TestEstimateCompletion(t *testing.T) {
	entries := []models.ProgressEntry{entry(10, nil), entry(5, nil)}

	eta := EstimateCompletion(entries, 20, testNow)
	if eta == nil {
		t.Fatal("expected an estimate")
	}
	// 20 points over 10 days is 2/day, leaving 40 days.
	want := testNow.Add(40 * day)
	if !eta.Equal(want) {
		t.Errorf("EstimateCompletion() = %v, want %v", eta, want)
	}

	if got := EstimateCompletion(entries, 100, testNow); got != nil {
		t.Errorf("expected nil at 100, got %v", got)
	}
	if got := EstimateCompletion(nil, 20, testNow); got != nil {
		t.Errorf("expected nil without entries, got %v", got)
	}
	if got := EstimateCompletion(entries, 0, testNow); got != nil {
		t.Errorf("expected nil at zero score, got %v", got)
	}
}

func TestAnalyze(t *testing.T) {
	e := NewWithClock(fixedClock)
	entries := []models.ProgressEntry{
		entry(0, hrs(2)),
		entry(1, hrs(1.5)),
		entry(2, hrs(2)),
		entry(3, nil),
	}

	got, err := e.Analyze(entries, 5.5)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if got.Percentage != 31 {
		t.Errorf("Percentage = %d, want 31", got.Percentage)
	}
	if got.Trend != models.TrendImproving {
		t.Errorf("Trend = %s, want improving", got.Trend)
	}
	if got.Consistency != 13 {
		t.Errorf("Consistency = %d, want 13", got.Consistency)
	}
	wantInsights := []string{"31% progress", "4 sessions completed", "5.5 hours invested"}
	if diff := cmp.Diff(wantInsights, got.Insights); diff != "" {
		t.Errorf("Insights mismatch (-want +got):\n%s", diff)
	}
	wantRecs := []string{RecCreateRoutine, RecTrackDaily}
	if diff := cmp.Diff(wantRecs, got.Recommendations); diff != "" {
		t.Errorf("Recommendations mismatch (-want +got):\n%s", diff)
	}
	if got.EstimatedCompletion == nil {
		t.Error("expected an estimated completion")
	}
}

func TestAnalyzeFewEntriesReportsNoData(t *testing.T) {
	e := NewWithClock(fixedClock)

	got, err := e.Analyze([]models.ProgressEntry{entry(1, hrs(1))}, 1)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if got.Trend != models.TrendNoData {
		t.Errorf("Trend = %s, want no_data", got.Trend)
	}
}

func TestAnalyzeEmpty(t *testing.T) {
	e := NewWithClock(fixedClock)

	got, err := e.Analyze(nil, 0)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if got.Percentage != 0 || got.Consistency != 0 || got.Trend != models.TrendNoData {
		t.Errorf("unexpected analysis for empty log: %+v", got)
	}
	if got.EstimatedCompletion != nil {
		t.Errorf("EstimatedCompletion = %v, want nil", got.EstimatedCompletion)
	}
	wantRecs := []string{RecPracticeMore, RecCreateRoutine, RecTrackDaily}
	if diff := cmp.Diff(wantRecs, got.Recommendations); diff != "" {
		t.Errorf("Recommendations mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeRejectsInvalidHours(t *testing.T) {
	e := NewWithClock(fixedClock)

	tests := []struct {
		name    string
		entries []models.ProgressEntry
		total   float64
	}{
		{"negative total", nil, -1},
		{"NaN total", nil, math.NaN()},
		{"infinite total", nil, math.Inf(1)},
		{"negative entry", []models.ProgressEntry{entry(0, hrs(-2))}, 0},
		{"NaN entry", []models.ProgressEntry{entry(0, hrs(math.NaN()))}, 0},
		{"infinite entry", []models.ProgressEntry{entry(0, hrs(math.Inf(1)))}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Analyze(tt.entries, tt.total)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("err = %v, want ErrInvalidInput", err)
			}
			if got != nil {
				t.Errorf("analysis = %+v, want nil", got)
			}
		})
	}
}
