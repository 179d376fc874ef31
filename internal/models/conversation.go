// ABOUTME: Conversation and ChatMessage models for the per-goal coaching chat.
// ABOUTME: Messages are append-only and ordered by creation time.
package models

import (
	"fmt"
	"time"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Conversation is the ongoing coaching thread for one goal.
type Conversation struct {
	ID        int64         `json:"id"`
	GoalID    int64         `json:"goal_id"`
	Title     string        `json:"title"`
	Messages  []ChatMessage `json:"messages"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewConversation creates an empty conversation titled after the goal.
func NewConversation(goalID int64) *Conversation {
	now := time.Now()
	return &Conversation{
		GoalID:    goalID,
		Title:     fmt.Sprintf("Learning Coach: %d", goalID),
		Messages:  []ChatMessage{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ChatMessage is a single turn in a conversation.
type ChatMessage struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewChatMessage creates a message for the conversation stamped now.
func NewChatMessage(conversationID int64, role Role, content string) *ChatMessage {
	return &ChatMessage{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now(),
	}
}
