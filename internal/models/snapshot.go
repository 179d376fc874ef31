// ABOUTME: GoalSnapshot is the immutable view of a goal handed to analytics and prompt building.
// ABOUTME: Built once at the service boundary from a goal loaded with its progress.
package models

import (
	"sort"
	"time"
)

// GoalSnapshot carries everything downstream components may read about a goal.
// Entries are sorted by date, most recent first.
type GoalSnapshot struct {
	ID            int64
	Title         string
	Description   *string
	Status        GoalStatus
	CreatedAt     time.Time
	Entries       []ProgressEntry
	TotalHours    float64
	ProgressCount int
}

// SnapshotOf builds a snapshot from a goal and its loaded progress.
// The goal's progress slice is copied, so later edits do not leak in.
func SnapshotOf(g *Goal) GoalSnapshot {
	entries := make([]ProgressEntry, len(g.Progress))
	copy(entries, g.Progress)
	SortByDateDesc(entries)

	return GoalSnapshot{
		ID:            g.ID,
		Title:         g.Title,
		Description:   g.Description,
		Status:        g.Status,
		CreatedAt:     g.CreatedAt,
		Entries:       entries,
		TotalHours:    g.TotalHours(),
		ProgressCount: len(entries),
	}
}

// DescriptionOr returns the description or the fallback when absent or blank.
func (s GoalSnapshot) DescriptionOr(fallback string) string {
	if s.Description == nil || *s.Description == "" {
		return fallback
	}
	return *s.Description
}

// Recent returns up to n of the most recent entries, most recent first.
func (s GoalSnapshot) Recent(n int) []ProgressEntry {
	if n <= 0 {
		return nil
	}
	if len(s.Entries) < n {
		n = len(s.Entries)
	}
	return s.Entries[:n]
}

// SortByDateDesc orders entries most recent first. Ties keep their relative order.
func SortByDateDesc(entries []ProgressEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
}
