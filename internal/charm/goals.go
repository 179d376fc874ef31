// ABOUTME: Goal CRUD operations for Charm KV storage.
// ABOUTME: Uses type-prefixed integer keys and client-side filtering.
package charm

import (
	"fmt"
	"time"

	"github.com/harperreed/trackwise/internal/models"
)

// CreateGoal stores a new goal and sets its ID.
func (c *Client) CreateGoal(g *models.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if g.ID != 0 {
		if _, err := c.get(recordKey(GoalPrefix, g.ID)); err == nil {
			return fmt.Errorf("create goal: goal %d already exists", g.ID)
		}
	}
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = g.CreatedAt
	}

	id, err := c.nextID("goal", g.ID)
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	g.ID = id
	return c.putGoal(g)
}

// putGoal stores the goal without its transient progress.
func (c *Client) putGoal(g *models.Goal) error {
	stored := *g
	stored.Progress = nil
	return c.putRecord(GoalPrefix, "goal", g.ID, &stored)
}

// GetGoal retrieves a goal by ID without its progress.
func (c *Client) GetGoal(id int64) (*models.Goal, error) {
	return getRecord[models.Goal](c, GoalPrefix, "goal", id)
}

// GetGoalWithProgress retrieves a goal with all progress entries, most recent first.
func (c *Client) GetGoalWithProgress(id int64) (*models.Goal, error) {
	g, err := c.GetGoal(id)
	if err != nil {
		return nil, err
	}

	entries, err := c.ListProgress(id, 0)
	if err != nil {
		return nil, err
	}
	g.Progress = make([]models.ProgressEntry, 0, len(entries))
	for _, p := range entries {
		g.Progress = append(g.Progress, *p)
	}
	return g, nil
}

// ListGoals retrieves goals with optional filtering by status.
// Results are sorted by CreatedAt descending (newest first).
func (c *Client) ListGoals(status *models.GoalStatus, limit int) ([]*models.Goal, error) {
	goals, err := listRecords(c, GoalPrefix, func(g *models.Goal) bool {
		return status == nil || g.Status == *status
	})
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	sortNewestFirst(goals, func(g *models.Goal) (int64, int64) {
		return g.CreatedAt.UnixNano(), g.ID
	})
	return applyLimit(goals, limit), nil
}

// UpdateGoal saves title, description and status, and bumps UpdatedAt.
func (c *Client) UpdateGoal(g *models.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	existing, err := c.GetGoal(g.ID)
	if err != nil {
		return err
	}

	g.CreatedAt = existing.CreatedAt
	g.UpdatedAt = time.Now()
	return c.putGoal(g)
}

// DeleteGoal removes a goal along with its progress and conversations.
func (c *Client) DeleteGoal(id int64) error {
	if _, err := c.GetGoal(id); err != nil {
		return err
	}

	keys := []string{recordKey(GoalPrefix, id)}

	entries, err := c.ListProgress(id, 0)
	if err != nil {
		return err
	}
	for _, p := range entries {
		keys = append(keys, recordKey(ProgressPrefix, p.ID))
	}

	convs, err := c.ListConversations(id)
	if err != nil {
		return err
	}
	for _, conv := range convs {
		keys = append(keys, recordKey(ConversationPrefix, conv.ID))
		msgs, err := c.listMessages(conv.ID)
		if err != nil {
			return err
		}
		for _, m := range msgs {
			keys = append(keys, recordKey(MessagePrefix, m.ID))
		}
	}

	if err := c.delete(keys...); err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return nil
}

// requireGoal returns storage.ErrNotFound when the goal does not exist.
func (c *Client) requireGoal(id int64) error {
	_, err := c.get(recordKey(GoalPrefix, id))
	if err != nil {
		return fmt.Errorf("goal %d: %w", id, err)
	}
	return nil
}
