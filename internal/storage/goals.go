// ABOUTME: Goal CRUD operations for SQLite storage.
// ABOUTME: Implements Repository interface methods for goals.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/trackwise/internal/models"
)

const goalColumns = `id, title, description, status, created_at, updated_at`

// CreateGoal stores a new goal and sets its ID.
func (d *DB) CreateGoal(g *models.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = g.CreatedAt
	}

	query := `
		INSERT INTO goals (id, title, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := d.db.Exec(query,
		nullableID(g.ID),
		g.Title,
		g.Description,
		string(g.Status),
		formatTime(g.CreatedAt),
		formatTime(g.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	g.ID = id
	return nil
}

// GetGoal retrieves a goal by ID without its progress.
func (d *DB) GetGoal(id int64) (*models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals WHERE id = ?`
	g, err := scanGoal(d.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("goal %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return g, nil
}

// GetGoalWithProgress retrieves a goal with all progress entries, most recent first.
func (d *DB) GetGoalWithProgress(id int64) (*models.Goal, error) {
	g, err := d.GetGoal(id)
	if err != nil {
		return nil, err
	}

	entries, err := d.ListProgress(id, 0)
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
func (d *DB) ListGoals(status *models.GoalStatus, limit int) ([]*models.Goal, error) {
	query := `SELECT ` + goalColumns + ` FROM goals`
	var args []interface{}

	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, string(*status))
	}
	query += ` ORDER BY created_at DESC, id DESC`

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()

	var goals []*models.Goal
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// UpdateGoal saves title, description and status, and bumps UpdatedAt.
func (d *DB) UpdateGoal(g *models.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	g.UpdatedAt = time.Now()

	result, err := d.db.Exec(
		`UPDATE goals SET title = ?, description = ?, status = ?, updated_at = ? WHERE id = ?`,
		g.Title, g.Description, string(g.Status), formatTime(g.UpdatedAt), g.ID,
	)
	if err != nil {
		return fmt.Errorf("update goal: %w", err)
	}
	return requireAffected(result, "goal", g.ID)
}

// DeleteGoal removes a goal along with its progress and conversations.
func (d *DB) DeleteGoal(id int64) error {
	result, err := d.db.Exec("DELETE FROM goals WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	return requireAffected(result, "goal", id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanGoal scans a single row into a Goal struct.
func scanGoal(row rowScanner) (*models.Goal, error) {
	var g models.Goal
	var status, createdAt, updatedAt string
	var description sql.NullString

	if err := row.Scan(&g.ID, &g.Title, &description, &status, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan goal: %w", err)
	}

	g.Status = models.GoalStatus(status)
	g.CreatedAt = parseTime(createdAt)
	g.UpdatedAt = parseTime(updatedAt)
	if description.Valid {
		g.Description = &description.String
	}
	return &g, nil
}

func requireAffected(result sql.Result, kind string, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s %d: %w", kind, id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return nil
}

func (d *DB) exists(table string, id int64) (bool, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(1) FROM `+table+` WHERE id = ?`, id).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check %s: %w", table, err)
	}
	return n > 0, nil
}
