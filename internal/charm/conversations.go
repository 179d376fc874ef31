// ABOUTME: Conversation and chat message operations for Charm KV storage.
// ABOUTME: Messages are stored under their own keys and joined to conversations on read.
package charm

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/trackwise/internal/models"
	"github.com/harperreed/trackwise/internal/storage"
)

// CreateConversation stores a new conversation for an existing goal and sets its ID.
func (c *Client) CreateConversation(conv *models.Conversation) error {
	if err := c.requireGoal(conv.GoalID); err != nil {
		return err
	}

	now := time.Now()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = conv.CreatedAt
	}
	if conv.Messages == nil {
		conv.Messages = []models.ChatMessage{}
	}

	id, err := c.nextID("conversation", conv.ID)
	if err != nil {
		return fmt.Errorf("create conversation: %w", err)
	}
	conv.ID = id
	return c.putConversation(conv)
}

// putConversation stores the conversation header without its messages.
func (c *Client) putConversation(conv *models.Conversation) error {
	stored := *conv
	stored.Messages = nil
	return c.putRecord(ConversationPrefix, "conversation", conv.ID, &stored)
}

// GetConversation retrieves a conversation with its messages in creation order.
func (c *Client) GetConversation(id int64) (*models.Conversation, error) {
	conv, err := getRecord[models.Conversation](c, ConversationPrefix, "conversation", id)
	if err != nil {
		return nil, err
	}
	return c.withMessages(conv)
}

// LatestConversation retrieves the goal's most recently updated conversation with its messages.
func (c *Client) LatestConversation(goalID int64) (*models.Conversation, error) {
	convs, err := c.ListConversations(goalID)
	if err != nil {
		return nil, err
	}
	if len(convs) == 0 {
		return nil, fmt.Errorf("conversation for goal %d: %w", goalID, storage.ErrNotFound)
	}
	return c.withMessages(convs[0])
}

// ListConversations retrieves a goal's conversations without messages, most recently updated first.
func (c *Client) ListConversations(goalID int64) ([]*models.Conversation, error) {
	convs, err := listRecords(c, ConversationPrefix, func(conv *models.Conversation) bool {
		return conv.GoalID == goalID
	})
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	sortNewestFirst(convs, func(conv *models.Conversation) (int64, int64) {
		return conv.UpdatedAt.UnixNano(), conv.ID
	})
	for _, conv := range convs {
		conv.Messages = []models.ChatMessage{}
	}
	return convs, nil
}

// AppendMessage adds a message to an existing conversation and sets its ID.
// The conversation's UpdatedAt moves to the message time.
func (c *Client) AppendMessage(m *models.ChatMessage) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	conv, err := getRecord[models.Conversation](c, ConversationPrefix, "conversation", m.ConversationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return err
		}
		return fmt.Errorf("append message: %w", err)
	}

	id, err := c.nextID("message", m.ID)
	if err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	m.ID = id
	if err := c.putRecord(MessagePrefix, "message", m.ID, m); err != nil {
		return fmt.Errorf("append message: %w", err)
	}

	conv.UpdatedAt = m.CreatedAt
	return c.putConversation(conv)
}

func (c *Client) withMessages(conv *models.Conversation) (*models.Conversation, error) {
	msgs, err := c.listMessages(conv.ID)
	if err != nil {
		return nil, err
	}
	conv.Messages = make([]models.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		conv.Messages = append(conv.Messages, *m)
	}
	return conv, nil
}

// listMessages returns a conversation's messages oldest first.
func (c *Client) listMessages(conversationID int64) ([]*models.ChatMessage, error) {
	msgs, err := listRecords(c, MessagePrefix, func(m *models.ChatMessage) bool {
		return m.ConversationID == conversationID
	})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}

	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		}
		return msgs[i].ID < msgs[j].ID
	})
	return msgs, nil
}
