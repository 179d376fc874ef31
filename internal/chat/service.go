// ABOUTME: Conversation service: one ongoing coaching chat per goal.
// ABOUTME: Persists the user turn before calling the model and stores degraded replies like real ones.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/trackwise/internal/llm"
	"github.com/harperreed/trackwise/internal/models"
	"github.com/harperreed/trackwise/internal/prompt"
	"github.com/harperreed/trackwise/internal/storage"
	"go.uber.org/zap"
)

// ErrGoalNotFound is returned when the conversation's goal does not exist.
var ErrGoalNotFound = errors.New("goal not found")

// Replies persisted and returned when the model cannot answer.
const (
	NotConfiguredReply         = "I'm sorry, AI features are not available. Please add an API key to your trackwise config or set OPENAI_API_KEY."
	TechnicalDifficultiesReply = "I'm experiencing some technical difficulties. Please try again later."
)

// Degradation reasons.
const (
	ReasonNotConfigured = "not configured"
	ReasonCallFailed    = "call failed"
	ReasonEmptyReply    = "empty reply"
)

// Store is the subset of the record store the conversation service needs.
type Store interface {
	GetGoalWithProgress(id int64) (*models.Goal, error)
	LatestConversation(goalID int64) (*models.Conversation, error)
	CreateConversation(c *models.Conversation) error
	AppendMessage(m *models.ChatMessage) error
}

// Reply is the assistant's answer to one user message.
type Reply struct {
	llm.Outcome[string]
	ConversationID int64
}

// Service runs coaching conversations. A nil client means offline mode.
type Service struct {
	store    Store
	client   llm.Client
	settings llm.Settings
	logger   *zap.Logger
}

// New creates a conversation service. client may be nil.
func New(store Store, client llm.Client, settings llm.Settings, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		client:   client,
		settings: settings,
		logger:   logger.Named("chat"),
	}
}

// GetOrCreateConversation returns the goal's most recently updated conversation,
// creating an empty one when the goal has none.
func (s *Service) GetOrCreateConversation(goalID int64) (*models.Conversation, error) {
	conv, err := s.store.LatestConversation(goalID)
	if err == nil {
		return conv, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("find conversation: %w", err)
	}

	conv = models.NewConversation(goalID)
	if err := s.store.CreateConversation(conv); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrGoalNotFound, goalID)
		}
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

// SendMessage records the user's message, asks the model for a reply with the goal's
// context and prior history, and records the reply. Model failures never surface as errors.
func (s *Service) SendMessage(ctx context.Context, goalID int64, text string) (*Reply, error) {
	conv, err := s.GetOrCreateConversation(goalID)
	if err != nil {
		return nil, err
	}
	history := conv.Messages

	if err := s.store.AppendMessage(models.NewChatMessage(conv.ID, models.RoleUser, text)); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}

	goal, err := s.store.GetGoalWithProgress(goalID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrGoalNotFound, goalID)
		}
		return nil, fmt.Errorf("load goal: %w", err)
	}

	outcome := s.respond(ctx, models.SnapshotOf(goal), history, text)

	if err := s.store.AppendMessage(models.NewChatMessage(conv.ID, models.RoleAssistant, outcome.Value)); err != nil {
		return nil, fmt.Errorf("save assistant message: %w", err)
	}

	return &Reply{Outcome: outcome, ConversationID: conv.ID}, nil
}

func (s *Service) respond(ctx context.Context, goal models.GoalSnapshot, history []models.ChatMessage, text string) llm.Outcome[string] {
	if s.client == nil {
		return llm.Degrade(NotConfiguredReply, ReasonNotConfigured)
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.System(prompt.ChatSystem(goal)))
	for _, m := range history {
		if m.Role == models.RoleAssistant {
			messages = append(messages, llm.Assistant(m.Content))
		} else {
			messages = append(messages, llm.User(m.Content))
		}
	}
	messages = append(messages, llm.User(text))

	exchangeID := uuid.NewString()
	start := time.Now()
	reply, err := s.client.Complete(ctx, llm.Request{
		Model:       s.settings.Model,
		Messages:    messages,
		MaxTokens:   s.settings.MaxTokens,
		Temperature: s.settings.Temperature,
	})
	if err != nil {
		s.logger.Warn("chat completion failed",
			zap.Int64("goal_id", goal.ID),
			zap.String("exchange_id", exchangeID),
			zap.String("reason", ReasonCallFailed),
			zap.Error(err))
		return llm.Degrade(TechnicalDifficultiesReply, ReasonCallFailed)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		s.logger.Warn("chat completion was empty",
			zap.Int64("goal_id", goal.ID),
			zap.String("exchange_id", exchangeID),
			zap.String("reason", ReasonEmptyReply))
		return llm.Degrade(TechnicalDifficultiesReply, ReasonEmptyReply)
	}

	s.logger.Debug("chat reply",
		zap.Int64("goal_id", goal.ID),
		zap.String("exchange_id", exchangeID),
		zap.String("model", s.settings.Model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("reply_len", len(reply)),
		zap.Int("history_len", len(history)))
	return llm.Ok(reply)
}
