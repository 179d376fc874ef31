// ABOUTME: Coach service: the goal-level surface used by the CLI and MCP server.
// ABOUTME: Validates ids, loads goals into snapshots and delegates to analytics, advisory and chat.
package coach

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/harperreed/trackwise/internal/advisory"
	"github.com/harperreed/trackwise/internal/analytics"
	"github.com/harperreed/trackwise/internal/chat"
	"github.com/harperreed/trackwise/internal/llm"
	"github.com/harperreed/trackwise/internal/models"
	"github.com/harperreed/trackwise/internal/storage"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrInvalidGoalID is returned for ids that are zero or negative.
	ErrInvalidGoalID = errors.New("invalid goal id")
	// ErrGoalNotFound is returned when the goal does not exist.
	ErrGoalNotFound = errors.New("goal not found")
	// ErrEmptyMessage is returned when a chat message is blank.
	ErrEmptyMessage = errors.New("message is required")
)

// batchLimit bounds concurrent advice requests in AdviceForGoals.
const batchLimit = 4

// Service wires the record store to the analytics, advisory and conversation components.
type Service struct {
	repo     storage.Repository
	engine   *analytics.Engine
	advisory *advisory.Service
	chat     *chat.Service
	logger   *zap.Logger
}

// New builds a coach over repo. client may be nil for offline mode.
func New(repo storage.Repository, client llm.Client, settings llm.Settings, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:     repo,
		engine:   analytics.New(),
		advisory: advisory.New(client, settings, logger),
		chat:     chat.New(repo, client, settings, logger),
		logger:   logger.Named("coach"),
	}
}

// AIConfigured reports whether a language model client is available.
func (s *Service) AIConfigured() bool {
	return s.advisory.Configured()
}

// Snapshot loads the goal with its progress as an immutable snapshot.
func (s *Service) Snapshot(goalID int64) (models.GoalSnapshot, error) {
	if goalID <= 0 {
		return models.GoalSnapshot{}, fmt.Errorf("%w: %d", ErrInvalidGoalID, goalID)
	}
	g, err := s.repo.GetGoalWithProgress(goalID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.GoalSnapshot{}, fmt.Errorf("%w: %d", ErrGoalNotFound, goalID)
		}
		return models.GoalSnapshot{}, fmt.Errorf("load goal: %w", err)
	}
	return models.SnapshotOf(g), nil
}

// ComputeAnalysis returns the progress metrics for a goal.
func (s *Service) ComputeAnalysis(goalID int64) (*models.ProgressAnalysis, error) {
	goal, err := s.Snapshot(goalID)
	if err != nil {
		return nil, err
	}
	return s.engine.Analyze(goal.Entries, goal.TotalHours)
}

// GetAdvice returns coaching tips for a goal. Model failures degrade to default tips.
func (s *Service) GetAdvice(ctx context.Context, goalID int64, adviceCtx models.AdviceContext) (llm.Outcome[[]models.AdviceItem], error) {
	goal, err := s.Snapshot(goalID)
	if err != nil {
		return llm.Outcome[[]models.AdviceItem]{}, err
	}
	return s.advisory.GenerateAdvice(ctx, goal, adviceCtx)
}

// GetSummary returns a one-sentence summary of a goal's progress.
func (s *Service) GetSummary(ctx context.Context, goalID int64) (llm.Outcome[string], error) {
	goal, err := s.Snapshot(goalID)
	if err != nil {
		return llm.Outcome[string]{}, err
	}
	return s.advisory.GenerateSummary(ctx, goal)
}

// PostChatMessage sends a trimmed user message to the goal's coaching conversation.
func (s *Service) PostChatMessage(ctx context.Context, goalID int64, text string) (*chat.Reply, error) {
	if goalID <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGoalID, goalID)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	reply, err := s.chat.SendMessage(ctx, goalID, text)
	if err != nil {
		return nil, mapChatError(goalID, err)
	}
	return reply, nil
}

// GetConversation returns the goal's conversation, creating an empty one if needed.
func (s *Service) GetConversation(goalID int64) (*models.Conversation, error) {
	if goalID <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGoalID, goalID)
	}
	conv, err := s.chat.GetOrCreateConversation(goalID)
	if err != nil {
		return nil, mapChatError(goalID, err)
	}
	return conv, nil
}

// GoalAdvice is the result of one goal in a batch advice request.
type GoalAdvice struct {
	GoalID int64
	Title  string
	Advice llm.Outcome[[]models.AdviceItem]
	Err    error
}

// AdviceForGoals generates advice for several goals concurrently, sharing the one model client.
// Per-goal failures are reported in the result and never stop the other goals.
// Results keep the order of ids.
func (s *Service) AdviceForGoals(ctx context.Context, ids []int64, adviceCtx models.AdviceContext) []GoalAdvice {
	results := make([]GoalAdvice, len(ids))

	var mu sync.Mutex
	failed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchLimit)
	for i, id := range ids {
		g.Go(func() error {
			res := GoalAdvice{GoalID: id}
			goal, err := s.Snapshot(id)
			if err == nil {
				res.Title = goal.Title
				res.Advice, err = s.advisory.GenerateAdvice(gctx, goal, adviceCtx)
			}
			if err != nil {
				res.Err = err
				mu.Lock()
				failed++
				mu.Unlock()
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Debug("batch advice complete", zap.Int("goals", len(ids)), zap.Int("failed", failed))
	return results
}

func mapChatError(goalID int64, err error) error {
	if errors.Is(err, chat.ErrGoalNotFound) {
		return fmt.Errorf("%w: %d", ErrGoalNotFound, goalID)
	}
	return err
}
