// ABOUTME: Validation rules shared by every record store backend.
// ABOUTME: Stores call these before writing so both backends reject the same input.
package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrValidation marks a record that violates a model invariant.
var ErrValidation = errors.New("validation failed")

// Validate checks that the goal has a title and a known status.
func (g *Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return fmt.Errorf("%w: goal title is required", ErrValidation)
	}
	if !IsValidGoalStatus(string(g.Status)) {
		return fmt.Errorf("%w: invalid goal status %q", ErrValidation, g.Status)
	}
	return nil
}

// Validate checks that the entry has a note and finite, non-negative hours.
func (p *ProgressEntry) Validate() error {
	if p.GoalID <= 0 {
		return fmt.Errorf("%w: progress entry needs a goal", ErrValidation)
	}
	if strings.TrimSpace(p.Note) == "" {
		return fmt.Errorf("%w: progress note is required", ErrValidation)
	}
	if p.Hours != nil && !ValidHours(*p.Hours) {
		return fmt.Errorf("%w: hours must be a finite non-negative number, got %v", ErrValidation, *p.Hours)
	}
	return nil
}

// ValidHours reports whether h is a usable duration: finite and not negative.
func ValidHours(h float64) bool {
	return !math.IsNaN(h) && !math.IsInf(h, 0) && h >= 0
}

// Validate checks the message role and content.
func (m *ChatMessage) Validate() error {
	if m.Role != RoleUser && m.Role != RoleAssistant {
		return fmt.Errorf("%w: invalid message role %q", ErrValidation, m.Role)
	}
	if m.Content == "" {
		return fmt.Errorf("%w: message content is required", ErrValidation)
	}
	return nil
}
