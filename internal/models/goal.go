// ABOUTME: Goal and ProgressEntry models for learning goal tracking.
// ABOUTME: Goals own an append-only log of dated progress entries.
package models

import (
	"time"
)

// GoalStatus represents the lifecycle state of a goal.
type GoalStatus string

const (
	StatusActive GoalStatus = "active"
	StatusPaused GoalStatus = "paused"
	StatusDone   GoalStatus = "done"
)

// AllGoalStatuses returns all valid goal statuses.
var AllGoalStatuses = []GoalStatus{StatusActive, StatusPaused, StatusDone}

// IsValidGoalStatus checks if a string is a valid goal status.
func IsValidGoalStatus(s string) bool {
	for _, st := range AllGoalStatuses {
		if string(st) == s {
			return true
		}
	}
	return false
}

// Goal represents a tracked learning objective.
type Goal struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description *string         `json:"description,omitempty"`
	Status      GoalStatus      `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Progress    []ProgressEntry `json:"progress,omitempty"` // Populated when fetching full goal
}

// NewGoal creates a new active Goal with the current timestamp.
// The ID is assigned by the store on creation.
func NewGoal(title string) *Goal {
	now := time.Now()
	return &Goal{
		Title:     title,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// WithDescription sets the goal description.
func (g *Goal) WithDescription(description string) *Goal {
	g.Description = &description
	return g
}

// WithStatus sets the goal status.
func (g *Goal) WithStatus(status GoalStatus) *Goal {
	g.Status = status
	return g
}

// TotalHours sums the hours of all loaded progress entries, treating absent hours as zero.
func (g *Goal) TotalHours() float64 {
	var total float64
	for _, p := range g.Progress {
		total += p.HoursOrZero()
	}
	return total
}

// ProgressCount returns the number of loaded progress entries.
func (g *Goal) ProgressCount() int {
	return len(g.Progress)
}

// LastActivity returns the date of the most recent loaded entry, or nil if there are none.
func (g *Goal) LastActivity() *time.Time {
	var last *time.Time
	for i := range g.Progress {
		d := g.Progress[i].Date
		if last == nil || d.After(*last) {
			last = &d
		}
	}
	return last
}

// ProgressEntry represents one dated note of work done on a goal.
type ProgressEntry struct {
	ID        int64     `json:"id"`
	GoalID    int64     `json:"goal_id"`
	Date      time.Time `json:"date"`
	Note      string    `json:"note"`
	Hours     *float64  `json:"hours,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewProgressEntry creates a new entry for the goal dated now.
func NewProgressEntry(goalID int64, note string) *ProgressEntry {
	now := time.Now()
	return &ProgressEntry{
		GoalID:    goalID,
		Date:      now,
		Note:      note,
		CreatedAt: now,
	}
}

// WithHours sets the hours spent.
func (p *ProgressEntry) WithHours(hours float64) *ProgressEntry {
	p.Hours = &hours
	return p
}

// WithDate sets a custom entry date.
func (p *ProgressEntry) WithDate(t time.Time) *ProgressEntry {
	p.Date = t
	return p
}

// HoursOrZero returns the recorded hours, or 0 when absent.
func (p ProgressEntry) HoursOrZero() float64 {
	if p.Hours == nil {
		return 0
	}
	return *p.Hours
}
