// ABOUTME: SQLite schema definition and versioned migrations.
// ABOUTME: Defines tables for goals, progress, conversations and chat_messages.
package storage

import "fmt"

const schemaVersion = 1

// migrate brings the schema up to schemaVersion using PRAGMA user_version.
func (d *DB) migrate() error {
	var version int
	if err := d.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= schemaVersion {
		return nil
	}

	if version < 1 {
		if err := d.migrateV1(); err != nil {
			return fmt.Errorf("migrate v1: %w", err)
		}
	}

	_, err := d.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion))
	return err
}

func (d *DB) migrateV1() error {
	schema := `
	CREATE TABLE IF NOT EXISTS goals (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'paused', 'done')),
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS progress (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		goal_id INTEGER NOT NULL,
		date TEXT NOT NULL,
		note TEXT NOT NULL,
		hours REAL CHECK (hours IS NULL OR hours >= 0),
		created_at TEXT NOT NULL,
		FOREIGN KEY (goal_id) REFERENCES goals(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS conversations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		goal_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (goal_id) REFERENCES goals(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS chat_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id INTEGER NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
		content TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_goals_status ON goals(status);
	CREATE INDEX IF NOT EXISTS idx_goals_created ON goals(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_progress_goal_date ON progress(goal_id, date DESC);
	CREATE INDEX IF NOT EXISTS idx_progress_date ON progress(date DESC);
	CREATE INDEX IF NOT EXISTS idx_conversations_goal_updated ON conversations(goal_id, updated_at DESC);
	CREATE INDEX IF NOT EXISTS idx_chat_messages_conversation ON chat_messages(conversation_id, created_at);
	`

	_, err := d.db.Exec(schema)
	return err
}
