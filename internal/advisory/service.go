// ABOUTME: Advisory service: AI coaching tips and one-line progress summaries for a goal.
// ABOUTME: Every language model failure degrades to static content; only an untitled goal is an error.
package advisory

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
	"go.uber.org/zap"
)

// ErrInvalidGoal is returned when the goal snapshot has no title.
var ErrInvalidGoal = errors.New("invalid goal data provided")

const (
	maxAdviceRunes = 200

	adviceTitle  = "AI Coach Advice"
	defaultTitle = "Learning Tip"

	summaryMaxTokens   = 100
	summaryTemperature = 0.3

	// Summaries switch from "beginning" to the stats sentence at this many entries.
	establishedEntries = 5
)

var defaultInsights = []string{
	"Keep making progress every day",
	"Consistency is key to success",
	"Small steps lead to big results",
}

// Degradation reasons.
const (
	ReasonNotConfigured = "not configured"
	ReasonCallFailed    = "call failed"
	ReasonNoUsableLines = "no usable lines"
	ReasonEmptyReply    = "empty reply"
)

// Service generates advice and summaries. A nil client means offline mode.
type Service struct {
	client   llm.Client
	settings llm.Settings
	logger   *zap.Logger
	now      func() time.Time
}

// New creates an advisory service. client may be nil.
func New(client llm.Client, settings llm.Settings, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:   client,
		settings: settings,
		logger:   logger.Named("advisory"),
		now:      time.Now,
	}
}

// Configured reports whether a language model client is available.
func (s *Service) Configured() bool {
	return s.client != nil
}

// GenerateAdvice returns coaching tips for the goal in the given context.
// The outcome is degraded to the three default tips when the model is unavailable or unusable.
func (s *Service) GenerateAdvice(ctx context.Context, goal models.GoalSnapshot, adviceCtx models.AdviceContext) (llm.Outcome[[]models.AdviceItem], error) {
	if strings.TrimSpace(goal.Title) == "" {
		return llm.Outcome[[]models.AdviceItem]{}, ErrInvalidGoal
	}

	if s.client == nil {
		return llm.Degrade(s.defaultInsights(), ReasonNotConfigured), nil
	}

	reply, err := s.complete(ctx, goal.ID, llm.Request{
		Model:       s.settings.Model,
		Messages:    []llm.Message{llm.System(prompt.AdviceSystem), llm.User(prompt.Advice(goal, adviceCtx))},
		MaxTokens:   s.settings.MaxTokens,
		Temperature: s.settings.Temperature,
	})
	if err != nil {
		return llm.Degrade(s.defaultInsights(), ReasonCallFailed), nil
	}

	items := s.parseAdvice(reply)
	if len(items) == 0 {
		s.logger.Warn("advice reply had no usable lines", zap.Int64("goal_id", goal.ID), zap.String("reason", ReasonNoUsableLines))
		return llm.Degrade(s.defaultInsights(), ReasonNoUsableLines), nil
	}
	return llm.Ok(items), nil
}

// GenerateSummary returns a one-sentence progress summary, or a canned sentence chosen by entry count.
func (s *Service) GenerateSummary(ctx context.Context, goal models.GoalSnapshot) (llm.Outcome[string], error) {
	if strings.TrimSpace(goal.Title) == "" {
		return llm.Outcome[string]{}, ErrInvalidGoal
	}

	if s.client == nil {
		return llm.Degrade(DefaultSummary(goal), ReasonNotConfigured), nil
	}

	reply, err := s.complete(ctx, goal.ID, llm.Request{
		Model:       s.settings.Model,
		Messages:    []llm.Message{llm.System(prompt.SummarySystem), llm.User(prompt.Summary(goal))},
		MaxTokens:   summaryMaxTokens,
		Temperature: summaryTemperature,
	})
	if err != nil {
		return llm.Degrade(DefaultSummary(goal), ReasonCallFailed), nil
	}

	summary := strings.TrimSpace(reply)
	if summary == "" {
		return llm.Degrade(DefaultSummary(goal), ReasonEmptyReply), nil
	}
	return llm.Ok(summary), nil
}

// complete makes one logged exchange with the model.
func (s *Service) complete(ctx context.Context, goalID int64, req llm.Request) (string, error) {
	exchangeID := uuid.NewString()
	start := time.Now()

	reply, err := s.client.Complete(ctx, req)
	if err != nil {
		s.logger.Warn("language model call failed, using defaults",
			zap.Int64("goal_id", goalID),
			zap.String("exchange_id", exchangeID),
			zap.String("reason", ReasonCallFailed),
			zap.Error(err))
		return "", err
	}

	s.logger.Debug("language model reply",
		zap.Int64("goal_id", goalID),
		zap.String("exchange_id", exchangeID),
		zap.String("model", req.Model),
		zap.Duration("latency", time.Since(start)),
		zap.Int("reply_len", len(reply)))
	return reply, nil
}

// parseAdvice turns each non-empty reply line into an item; the first is high priority.
func (s *Service) parseAdvice(reply string) []models.AdviceItem {
	now := s.now()
	var items []models.AdviceItem
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		priority := models.PriorityMedium
		if len(items) == 0 {
			priority = models.PriorityHigh
		}
		items = append(items, models.AdviceItem{
			ID:        fmt.Sprintf("advice-%d-%d", now.UnixMilli(), len(items)),
			Type:      models.AdviceTypeAdvice,
			Title:     adviceTitle,
			Content:   truncate(line, maxAdviceRunes),
			Priority:  priority,
			CreatedAt: now,
		})
	}
	return items
}

func (s *Service) defaultInsights() []models.AdviceItem {
	now := s.now()
	items := make([]models.AdviceItem, len(defaultInsights))
	for i, text := range defaultInsights {
		items[i] = models.AdviceItem{
			ID:        fmt.Sprintf("default-insight-%d", i),
			Type:      models.AdviceTypeMotivation,
			Title:     defaultTitle,
			Content:   text,
			Priority:  models.PriorityMedium,
			CreatedAt: now,
		}
	}
	return items
}

// DefaultSummary is the canned summary used when the model is unavailable.
func DefaultSummary(goal models.GoalSnapshot) string {
	switch {
	case goal.ProgressCount == 0:
		return fmt.Sprintf("Ready to start learning %s", goal.Title)
	case goal.ProgressCount < establishedEntries:
		return fmt.Sprintf("Beginning your journey with %s", goal.Title)
	default:
		return fmt.Sprintf("Made %d entries and spent %s hours on %s",
			goal.ProgressCount, prompt.FormatHours(goal.TotalHours), goal.Title)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
