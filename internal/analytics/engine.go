// ABOUTME: Progress metrics engine: percentage, trend, consistency, insights, recommendations.
// ABOUTME: Pure computations over a goal's progress entries; no I/O.
package analytics

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/harperreed/trackwise/internal/models"
)

const (
	pointsPerEntry     = 5
	pointsPerHour      = 2
	maxProgress        = 100
	minEntriesForTrend = 3
	consistencyDays    = 30
	lowProgress        = 30
	lowConsistency     = 40
	goodProgress       = 50

	// Absent hours count as one hour of effort when measuring the trend.
	assumedHoursPerEntry = 1.0

	improvingRate = 1.0
	decliningRate = 0.5
)

const day = 24 * time.Hour

// Recommendation texts, in the order they are emitted.
const (
	RecPracticeMore  = "Practice more frequently"
	RecCreateRoutine = "Create a routine"
	RecKeepGoing     = "Keep up the good work"
	RecTrackDaily    = "Track daily progress"
)

// InsightsFallback is returned when the inputs to insights are not finite.
const InsightsFallback = "Start tracking your progress to see insights"

var (
	// ErrInvalidInput is returned for malformed arguments such as negative hours.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientData is returned by Trend when fewer than three entries exist.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrNoData is returned by Consistency when there are no entries.
	ErrNoData = errors.New("no data")
)

// Engine computes progress analyses relative to a clock.
type Engine struct {
	now func() time.Time
}

// New returns an Engine using the wall clock.
func New() *Engine {
	return &Engine{now: time.Now}
}

// NewWithClock returns an Engine using the given clock.
func NewWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// Analyze turns a progress log into a ProgressAnalysis.
// Insufficient data for the trend is reported as TrendNoData, and an empty log yields consistency 0.
func (e *Engine) Analyze(entries []models.ProgressEntry, totalHours float64) (*models.ProgressAnalysis, error) {
	if !models.ValidHours(totalHours) {
		return nil, fmt.Errorf("%w: total hours must be finite and non-negative, got %v", ErrInvalidInput, totalHours)
	}
	for _, p := range entries {
		if p.Hours != nil && !models.ValidHours(*p.Hours) {
			return nil, fmt.Errorf("%w: entry %d has invalid hours %v", ErrInvalidInput, p.ID, *p.Hours)
		}
	}

	now := e.now()
	score := Score(len(entries), totalHours)
	percentage := roundPercentage(score)

	trend, err := Trend(entries, now)
	if err != nil {
		if !errors.Is(err, ErrInsufficientData) {
			return nil, err
		}
		trend = models.TrendNoData
	}

	consistency, err := Consistency(entries, now)
	if err != nil && !errors.Is(err, ErrNoData) {
		return nil, err
	}

	// Report the rounded percentage unless the score itself is unusable.
	reported := score
	if isFinite(score) {
		reported = float64(percentage)
	}

	return &models.ProgressAnalysis{
		Percentage:          percentage,
		Trend:               trend,
		Consistency:         consistency,
		Insights:            Insights(reported, totalHours, len(entries)),
		Recommendations:     Recommendations(reported, float64(consistency)),
		EstimatedCompletion: EstimateCompletion(entries, score, now),
	}, nil
}

// Score is the uncapped-then-capped linear progress score: 5 per entry plus 2 per hour, at most 100.
func Score(progressCount int, totalHours float64) float64 {
	points := float64(progressCount*pointsPerEntry) + totalHours*pointsPerHour
	return math.Min(points, maxProgress)
}

// Percentage returns Score rounded to an integer in [0, 100].
func Percentage(progressCount int, totalHours float64) int {
	return roundPercentage(Score(progressCount, totalHours))
}

func roundPercentage(score float64) int {
	if math.IsNaN(score) || score < 0 {
		return 0
	}
	return int(math.Round(score))
}

// Trend classifies recent effort from the three most recent entries by date.
// Hours per day since the earliest of those three: above 1 is improving, below 0.5 declining.
func Trend(entries []models.ProgressEntry, now time.Time) (models.Trend, error) {
	if len(entries) < minEntriesForTrend {
		return models.TrendNoData, fmt.Errorf("%w: need at least %d progress entries to analyze trend, have %d",
			ErrInsufficientData, minEntriesForTrend, len(entries))
	}

	recent := mostRecent(entries, minEntriesForTrend)

	var recentHours float64
	earliest := recent[0].Date
	for _, p := range recent {
		if p.Hours != nil && *p.Hours != 0 {
			recentHours += *p.Hours
		} else {
			recentHours += assumedHoursPerEntry
		}
		if p.Date.Before(earliest) {
			earliest = p.Date
		}
	}

	recentDays := math.Max(1, now.Sub(earliest).Hours()/24)
	rate := recentHours / recentDays

	switch {
	case rate > improvingRate:
		return models.TrendImproving, nil
	case rate < decliningRate:
		return models.TrendDeclining, nil
	default:
		return models.TrendStable, nil
	}
}

// Consistency counts entries dated within the trailing 30 days as a rate over 30 days.
// The result is not capped at 100.
func Consistency(entries []models.ProgressEntry, now time.Time) (int, error) {
	if len(entries) == 0 {
		return 0, fmt.Errorf("%w: no progress data to calculate consistency", ErrNoData)
	}

	cutoff := now.Add(-consistencyDays * day)
	count := 0
	for _, p := range entries {
		if p.Date.After(cutoff) {
			count++
		}
	}

	return int(math.Round(float64(count) / consistencyDays * 100)), nil
}

// Insights reports percentage, session count and hours, or a single fallback line
// when any input is not a finite number.
func Insights(percentage, totalHours float64, progressCount int) []string {
	if !isFinite(percentage) || !isFinite(totalHours) {
		return []string{InsightsFallback}
	}

	return []string{
		fmt.Sprintf("%s%% progress", formatNumber(percentage)),
		fmt.Sprintf("%d sessions completed", progressCount),
		fmt.Sprintf("%s hours invested", formatNumber(totalHours)),
	}
}

// Recommendations accumulates rule-based tips. The rules are independent and
// the daily-tracking tip always comes last.
func Recommendations(percentage, consistency float64) []string {
	if !isFinite(percentage) || !isFinite(consistency) {
		return []string{RecTrackDaily}
	}

	var recs []string
	if percentage < lowProgress {
		recs = append(recs, RecPracticeMore)
	}
	if consistency < lowConsistency {
		recs = append(recs, RecCreateRoutine)
	}
	if percentage > goodProgress {
		recs = append(recs, RecKeepGoing)
	}
	return append(recs, RecTrackDaily)
}

// EstimateCompletion extrapolates the score accrued per day since the first entry
// to reach 100. It returns nil when the goal is already at 100 or has no entries.
func EstimateCompletion(entries []models.ProgressEntry, score float64, now time.Time) *time.Time {
	if len(entries) == 0 || !isFinite(score) || score >= maxProgress || score <= 0 {
		return nil
	}

	first := entries[0].Date
	for _, p := range entries[1:] {
		if p.Date.Before(first) {
			first = p.Date
		}
	}

	elapsedDays := math.Max(1, now.Sub(first).Hours()/24)
	perDay := score / elapsedDays
	remainingDays := (maxProgress - score) / perDay

	eta := now.Add(time.Duration(remainingDays * float64(day)))
	return &eta
}

// mostRecent returns the n latest entries by date without reordering the input.
func mostRecent(entries []models.ProgressEntry, n int) []models.ProgressEntry {
	sorted := make([]models.ProgressEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return sorted[:n]
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
