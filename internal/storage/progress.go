// ABOUTME: Progress entry CRUD operations for SQLite storage.
// ABOUTME: Entries belong to a goal and are listed most recent first.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/trackwise/internal/models"
)

const progressColumns = `id, goal_id, date, note, hours, created_at`

// AddProgress stores a new entry for an existing goal and sets its ID.
func (d *DB) AddProgress(p *models.ProgressEntry) error {
	if err := p.Validate(); err != nil {
		return err
	}
	ok, err := d.exists("goals", p.GoalID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("goal %d: %w", p.GoalID, ErrNotFound)
	}

	if p.Date.IsZero() {
		p.Date = time.Now()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}

	result, err := d.db.Exec(
		`INSERT INTO progress (id, goal_id, date, note, hours, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		nullableID(p.ID), p.GoalID, formatTime(p.Date), p.Note, p.Hours, formatTime(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("add progress: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("add progress: %w", err)
	}
	p.ID = id
	return nil
}

// GetProgress retrieves a progress entry by ID.
func (d *DB) GetProgress(id int64) (*models.ProgressEntry, error) {
	query := `SELECT ` + progressColumns + ` FROM progress WHERE id = ?`
	p, err := scanProgress(d.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("progress %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

// ListProgress retrieves entries for a goal, or for all goals when goalID is 0.
// Results are sorted by Date descending (most recent first).
func (d *DB) ListProgress(goalID int64, limit int) ([]*models.ProgressEntry, error) {
	query := `SELECT ` + progressColumns + ` FROM progress`
	var args []interface{}

	if goalID > 0 {
		query += ` WHERE goal_id = ?`
		args = append(args, goalID)
	}
	query += ` ORDER BY date DESC, id DESC`

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	defer rows.Close()

	var entries []*models.ProgressEntry
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, p)
	}
	return entries, rows.Err()
}

// DeleteProgress removes a progress entry by ID.
func (d *DB) DeleteProgress(id int64) error {
	result, err := d.db.Exec("DELETE FROM progress WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return requireAffected(result, "progress", id)
}

// scanProgress scans a single row into a ProgressEntry struct.
func scanProgress(row rowScanner) (*models.ProgressEntry, error) {
	var p models.ProgressEntry
	var date, createdAt string
	var hours sql.NullFloat64

	if err := row.Scan(&p.ID, &p.GoalID, &date, &p.Note, &hours, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan progress: %w", err)
	}

	p.Date = parseTime(date)
	p.CreatedAt = parseTime(createdAt)
	if hours.Valid {
		p.Hours = &hours.Float64
	}
	return &p, nil
}
