// ABOUTME: Advice and analysis output models.
// ABOUTME: Generated per request and never persisted.
package models

import "time"

// AdviceType classifies an advice item.
type AdviceType string

const (
	AdviceTypeAdvice           AdviceType = "advice"
	AdviceTypeProgressAnalysis AdviceType = "progress_analysis"
	AdviceTypeMotivation       AdviceType = "motivation"
	AdviceTypeRecommendation   AdviceType = "recommendation"
)

// Priority ranks an advice item for display.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// AdviceItem is one short coaching tip.
type AdviceItem struct {
	ID        string     `json:"id"`
	Type      AdviceType `json:"type"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Priority  Priority   `json:"priority"`
	CreatedAt time.Time  `json:"created_at"`
}

// AdviceContext selects where advice will be shown, which shapes the prompt.
type AdviceContext string

const (
	ContextDashboard       AdviceContext = "dashboard"
	ContextGoalDetail      AdviceContext = "goal_detail"
	ContextProgressLogging AdviceContext = "progress_logging"
)

// ParseAdviceContext maps a raw string to an AdviceContext.
// Unknown or empty values fall back to the dashboard context.
func ParseAdviceContext(s string) AdviceContext {
	switch AdviceContext(s) {
	case ContextGoalDetail:
		return ContextGoalDetail
	case ContextProgressLogging:
		return ContextProgressLogging
	default:
		return ContextDashboard
	}
}

// Trend is a coarse classification of recent effort.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
	TrendNoData    Trend = "no_data"
)

// ProgressAnalysis is the computed metrics view of a goal's progress log.
type ProgressAnalysis struct {
	Percentage          int        `json:"percentage"`
	Trend               Trend      `json:"trend"`
	Consistency         int        `json:"consistency"`
	Insights            []string   `json:"insights"`
	Recommendations     []string   `json:"recommendations"`
	EstimatedCompletion *time.Time `json:"estimated_completion,omitempty"`
}
