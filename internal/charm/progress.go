// ABOUTME: Progress entry CRUD operations for Charm KV storage.
// ABOUTME: Entries reference their goal by id and are filtered client-side.
package charm

import (
	"fmt"
	"time"

	"github.com/harperreed/trackwise/internal/models"
)

// AddProgress stores a new entry for an existing goal and sets its ID.
func (c *Client) AddProgress(p *models.ProgressEntry) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := c.requireGoal(p.GoalID); err != nil {
		return err
	}

	if p.Date.IsZero() {
		p.Date = time.Now()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	id, err := c.nextID("progress", p.ID)
	if err != nil {
		return fmt.Errorf("add progress: %w", err)
	}
	p.ID = id
	return c.putRecord(ProgressPrefix, "progress", p.ID, p)
}

// GetProgress retrieves a progress entry by ID.
func (c *Client) GetProgress(id int64) (*models.ProgressEntry, error) {
	return getRecord[models.ProgressEntry](c, ProgressPrefix, "progress", id)
}

// ListProgress retrieves entries for a goal, or for all goals when goalID is 0.
// Results are sorted by Date descending (most recent first).
func (c *Client) ListProgress(goalID int64, limit int) ([]*models.ProgressEntry, error) {
	entries, err := listRecords(c, ProgressPrefix, func(p *models.ProgressEntry) bool {
		return goalID <= 0 || p.GoalID == goalID
	})
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}

	sortNewestFirst(entries, func(p *models.ProgressEntry) (int64, int64) {
		return p.Date.UnixNano(), p.ID
	})
	return applyLimit(entries, limit), nil
}

// DeleteProgress removes a progress entry by ID.
func (c *Client) DeleteProgress(id int64) error {
	if _, err := c.GetProgress(id); err != nil {
		return err
	}
	if err := c.delete(recordKey(ProgressPrefix, id)); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}
