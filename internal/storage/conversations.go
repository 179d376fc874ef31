// ABOUTME: Conversation and chat message operations for SQLite storage.
// ABOUTME: Messages are append-only; appending bumps the conversation's UpdatedAt.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/trackwise/internal/models"
)

const conversationColumns = `id, goal_id, title, created_at, updated_at`

// CreateConversation stores a new conversation for an existing goal and sets its ID.
func (d *DB) CreateConversation(c *models.Conversation) error {
	ok, err := d.exists("goals", c.GoalID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("goal %d: %w", c.GoalID, ErrNotFound)
	}

	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}
	if c.Messages == nil {
		c.Messages = []models.ChatMessage{}
	}

	result, err := d.db.Exec(
		`INSERT INTO conversations (id, goal_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		nullableID(c.ID), c.GoalID, c.Title, formatTime(c.CreatedAt), formatTime(c.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}
	c.ID = id
	return nil
}

// GetConversation retrieves a conversation with its messages in creation order.
func (d *DB) GetConversation(id int64) (*models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations WHERE id = ?`
	return d.loadConversation(d.db.QueryRow(query, id), fmt.Sprintf("conversation %d", id))
}

// LatestConversation retrieves the goal's most recently updated conversation with its messages.
func (d *DB) LatestConversation(goalID int64) (*models.Conversation, error) {
	query := `SELECT ` + conversationColumns + ` FROM conversations
		WHERE goal_id = ? ORDER BY updated_at DESC, id DESC LIMIT 1`
	return d.loadConversation(d.db.QueryRow(query, goalID), fmt.Sprintf("conversation for goal %d", goalID))
}

// ListConversations retrieves a goal's conversations without messages, most recently updated first.
func (d *DB) ListConversations(goalID int64) ([]*models.Conversation, error) {
	rows, err := d.db.Query(`SELECT `+conversationColumns+` FROM conversations
		WHERE goal_id = ? ORDER BY updated_at DESC, id DESC`, goalID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var convs []*models.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, c)
	}
	return convs, rows.Err()
}

// AppendMessage adds a message to an existing conversation and sets its ID.
func (d *DB) AppendMessage(m *models.ChatMessage) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec(`UPDATE conversations SET updated_at = ? WHERE id = ?`,
		formatTime(m.CreatedAt), m.ConversationID)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	if err := requireAffected(result, "conversation", m.ConversationID); err != nil {
		return err
	}

	result, err = tx.Exec(
		`INSERT INTO chat_messages (id, conversation_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		nullableID(m.ID), m.ConversationID, string(m.Role), m.Content, formatTime(m.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	m.ID = id
	return nil
}

func (d *DB) loadConversation(row *sql.Row, what string) (*models.Conversation, error) {
	c, err := scanConversation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
		}
		return nil, err
	}

	c.Messages, err = d.listMessages(c.ID)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (d *DB) listMessages(conversationID int64) ([]models.ChatMessage, error) {
	rows, err := d.db.Query(`SELECT id, conversation_id, role, content, created_at
		FROM chat_messages WHERE conversation_id = ? ORDER BY created_at ASC, id ASC`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []models.ChatMessage{}
	for rows.Next() {
		var m models.ChatMessage
		var role, createdAt string
		if err := rows.Scan(&m.ID, &m.ConversationID, &role, &m.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Role = models.Role(role)
		m.CreatedAt = parseTime(createdAt)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func scanConversation(row rowScanner) (*models.Conversation, error) {
	var c models.Conversation
	var createdAt, updatedAt string

	if err := row.Scan(&c.ID, &c.GoalID, &c.Title, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan conversation: %w", err)
	}

	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}
