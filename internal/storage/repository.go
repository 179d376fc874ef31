// ABOUTME: Repository interface for goal tracking storage.
// ABOUTME: Defines the contract for goals, progress, conversations and chat messages.
package storage

import (
	"errors"

	"github.com/harperreed/trackwise/internal/models"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("not found")

// Repository defines the storage interface for trackwise data.
// IDs are assigned on create when zero and preserved when set.
type Repository interface {
	// Goal operations
	CreateGoal(g *models.Goal) error
	GetGoal(id int64) (*models.Goal, error)
	GetGoalWithProgress(id int64) (*models.Goal, error)
	ListGoals(status *models.GoalStatus, limit int) ([]*models.Goal, error)
	UpdateGoal(g *models.Goal) error
	DeleteGoal(id int64) error

	// Progress operations. Entries are immutable once added; ListProgress with goalID 0 lists across all goals.
	AddProgress(p *models.ProgressEntry) error
	GetProgress(id int64) (*models.ProgressEntry, error)
	ListProgress(goalID int64, limit int) ([]*models.ProgressEntry, error)
	DeleteProgress(id int64) error

	// Conversation operations
	CreateConversation(c *models.Conversation) error
	GetConversation(id int64) (*models.Conversation, error)
	LatestConversation(goalID int64) (*models.Conversation, error)
	ListConversations(goalID int64) ([]*models.Conversation, error)
	AppendMessage(m *models.ChatMessage) error

	// Export/Import
	GetAllData() (*ExportData, error)
	ImportData(data *ExportData) error

	// Lifecycle
	Close() error
}
