// ABOUTME: MCP tool implementations for goals, progress and coaching.
// ABOUTME: Goal and progress CRUD go to storage; analysis, advice and chat go through the coach.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/trackwise/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	addTool(s, "add_goal", "Create a learning goal to track progress against", s.handleAddGoal)
	addTool(s, "list_goals", "List goals with progress totals, optionally filtered by status", s.handleListGoals)
	addTool(s, "get_goal", "Get a goal with all of its progress entries", s.handleGetGoal)
	addTool(s, "set_goal_status", "Set a goal's status to active, paused or done", s.handleSetGoalStatus)
	addTool(s, "delete_goal", "Delete a goal with its progress and conversations", s.handleDeleteGoal)
	addTool(s, "log_progress", "Log a progress entry (a note and optional hours) for a goal", s.handleLogProgress)
	addTool(s, "list_progress", "List recent progress entries, optionally for one goal", s.handleListProgress)
	addTool(s, "delete_progress", "Delete a progress entry by ID", s.handleDeleteProgress)
	addTool(s, "analyze_progress", "Compute percentage, trend, consistency, insights and recommendations for a goal", s.handleAnalyzeProgress)
	addTool(s, "get_advice", "Get AI coaching tips for a goal (falls back to general tips when AI is unavailable)", s.handleGetAdvice)
	addTool(s, "get_summary", "Get a one-sentence summary of a goal's progress", s.handleGetSummary)
	addTool(s, "send_chat_message", "Send a message to the goal's AI learning coach and get the reply", s.handleSendChatMessage)
	addTool(s, "get_conversation", "Get the goal's coaching conversation history", s.handleGetConversation)
}

// addTool registers a typed handler and records it in the server's catalog.
func addTool[In, Out any](s *Server, name, description string, h mcp.ToolHandlerFor[In, Out]) {
	mcp.AddTool(s.mcpServer, &mcp.Tool{Name: name, Description: description}, h)
	s.tools = append(s.tools, ToolInfo{Name: name, Description: description})
}

// Tool input/output types

type addGoalInput struct {
	Title       string `json:"title" jsonschema:"Goal title"`
	Description string `json:"description,omitempty" jsonschema:"Optional longer description"`
}

type goalOutput struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

type listGoalsInput struct {
	Status string `json:"status,omitempty" jsonschema:"Filter by status: active, paused or done"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type goalSummary struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Status        string     `json:"status"`
	ProgressCount int        `json:"progress_count"`
	TotalHours    float64    `json:"total_hours"`
	LastActivity  *time.Time `json:"last_activity,omitempty"`
}

type goalIDInput struct {
	GoalID int64 `json:"goal_id" jsonschema:"Goal ID"`
}

type setGoalStatusInput struct {
	GoalID int64  `json:"goal_id" jsonschema:"Goal ID"`
	Status string `json:"status" jsonschema:"New status: active, paused or done"`
}

type logProgressInput struct {
	GoalID int64    `json:"goal_id" jsonschema:"Goal ID"`
	Note   string   `json:"note" jsonschema:"What was done"`
	Hours  *float64 `json:"hours,omitempty" jsonschema:"Hours spent, if known"`
	Date   string   `json:"date,omitempty" jsonschema:"Date (YYYY-MM-DD or RFC 3339), defaults to now"`
}

type progressOutput struct {
	ID      int64  `json:"id"`
	GoalID  int64  `json:"goal_id"`
	Message string `json:"message"`
}

type listProgressInput struct {
	GoalID int64 `json:"goal_id,omitempty" jsonschema:"Only entries for this goal"`
	Limit  int   `json:"limit,omitempty" jsonschema:"Max results (default 20)"`
}

type idInput struct {
	ID int64 `json:"id" jsonschema:"Record ID"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

type adviceInput struct {
	GoalID  int64  `json:"goal_id" jsonschema:"Goal ID"`
	Context string `json:"context,omitempty" jsonschema:"Where the advice is shown: dashboard, goal_detail or progress_logging"`
}

type adviceOutput struct {
	GoalID   int64               `json:"goal_id"`
	Items    []models.AdviceItem `json:"items"`
	Fallback bool                `json:"fallback"`
}

type summaryOutput struct {
	GoalID   int64  `json:"goal_id"`
	Summary  string `json:"summary"`
	Fallback bool   `json:"fallback"`
}

type chatInput struct {
	GoalID  int64  `json:"goal_id" jsonschema:"Goal ID"`
	Message string `json:"message" jsonschema:"Message to the coach"`
}

type chatOutput struct {
	ConversationID int64  `json:"conversation_id"`
	Reply          string `json:"reply"`
	Fallback       bool   `json:"fallback"`
}

type conversationMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type conversationOutput struct {
	ID       int64                 `json:"id"`
	Messages []conversationMessage `json:"messages"`
}

// Tool handlers

func (s *Server) handleAddGoal(ctx context.Context, req *mcp.CallToolRequest, input addGoalInput) (*mcp.CallToolResult, goalOutput, error) {
	g := models.NewGoal(strings.TrimSpace(input.Title))
	if d := strings.TrimSpace(input.Description); d != "" {
		g.WithDescription(d)
	}

	if err := s.repo.CreateGoal(g); err != nil {
		return nil, goalOutput{}, fmt.Errorf("failed to create goal: %w", err)
	}

	return nil, goalOutput{
		ID:      g.ID,
		Title:   g.Title,
		Status:  string(g.Status),
		Message: fmt.Sprintf("Added goal %q (ID: %d)", g.Title, g.ID),
	}, nil
}

func (s *Server) handleListGoals(ctx context.Context, req *mcp.CallToolRequest, input listGoalsInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	var status *models.GoalStatus
	if input.Status != "" {
		if !models.IsValidGoalStatus(input.Status) {
			return nil, nil, fmt.Errorf("unknown status: %s", input.Status)
		}
		st := models.GoalStatus(input.Status)
		status = &st
	}

	summaries, err := s.goalSummaries(status, input.Limit)
	if err != nil {
		return nil, nil, err
	}
	if len(summaries) == 0 {
		return nil, map[string]interface{}{"message": "No goals found."}, nil
	}
	return nil, summaries, nil
}

func (s *Server) handleGetGoal(ctx context.Context, req *mcp.CallToolRequest, input goalIDInput) (*mcp.CallToolResult, any, error) {
	g, err := s.repo.GetGoalWithProgress(input.GoalID)
	if err != nil {
		return nil, nil, fmt.Errorf("goal not found: %d", input.GoalID)
	}
	return nil, g, nil
}

func (s *Server) handleSetGoalStatus(ctx context.Context, req *mcp.CallToolRequest, input setGoalStatusInput) (*mcp.CallToolResult, goalOutput, error) {
	if !models.IsValidGoalStatus(input.Status) {
		return nil, goalOutput{}, fmt.Errorf("unknown status: %s", input.Status)
	}
	g, err := s.repo.GetGoal(input.GoalID)
	if err != nil {
		return nil, goalOutput{}, fmt.Errorf("goal not found: %d", input.GoalID)
	}

	g.WithStatus(models.GoalStatus(input.Status))
	if err := s.repo.UpdateGoal(g); err != nil {
		return nil, goalOutput{}, fmt.Errorf("failed to update goal: %w", err)
	}

	return nil, goalOutput{
		ID:      g.ID,
		Title:   g.Title,
		Status:  string(g.Status),
		Message: fmt.Sprintf("Goal %d is now %s", g.ID, g.Status),
	}, nil
}

func (s *Server) handleDeleteGoal(ctx context.Context, req *mcp.CallToolRequest, input goalIDInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.repo.DeleteGoal(input.GoalID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Deleted goal: %d", input.GoalID)}, nil
}

func (s *Server) handleLogProgress(ctx context.Context, req *mcp.CallToolRequest, input logProgressInput) (*mcp.CallToolResult, progressOutput, error) {
	p := models.NewProgressEntry(input.GoalID, strings.TrimSpace(input.Note))
	if input.Hours != nil {
		p.WithHours(*input.Hours)
	}
	if input.Date != "" {
		t, err := parseDate(input.Date)
		if err != nil {
			return nil, progressOutput{}, err
		}
		p.WithDate(t)
	}

	if err := s.repo.AddProgress(p); err != nil {
		return nil, progressOutput{}, fmt.Errorf("failed to log progress: %w", err)
	}

	return nil, progressOutput{
		ID:      p.ID,
		GoalID:  p.GoalID,
		Message: fmt.Sprintf("Logged progress for goal %d (ID: %d)", p.GoalID, p.ID),
	}, nil
}

func (s *Server) handleListProgress(ctx context.Context, req *mcp.CallToolRequest, input listProgressInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 20
	}

	entries, err := s.repo.ListProgress(input.GoalID, input.Limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list progress: %w", err)
	}
	if len(entries) == 0 {
		return nil, map[string]interface{}{"message": "No progress found."}, nil
	}
	return nil, entries, nil
}

func (s *Server) handleDeleteProgress(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.repo.DeleteProgress(input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete progress: %w", err)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Deleted progress entry: %d", input.ID)}, nil
}

func (s *Server) handleAnalyzeProgress(ctx context.Context, req *mcp.CallToolRequest, input goalIDInput) (*mcp.CallToolResult, any, error) {
	a, err := s.coach.ComputeAnalysis(input.GoalID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to analyze goal: %w", err)
	}
	return nil, a, nil
}

func (s *Server) handleGetAdvice(ctx context.Context, req *mcp.CallToolRequest, input adviceInput) (*mcp.CallToolResult, adviceOutput, error) {
	out, err := s.coach.GetAdvice(ctx, input.GoalID, models.ParseAdviceContext(input.Context))
	if err != nil {
		return nil, adviceOutput{}, fmt.Errorf("failed to get advice: %w", err)
	}
	return nil, adviceOutput{GoalID: input.GoalID, Items: out.Value, Fallback: out.Degraded}, nil
}

func (s *Server) handleGetSummary(ctx context.Context, req *mcp.CallToolRequest, input goalIDInput) (*mcp.CallToolResult, summaryOutput, error) {
	out, err := s.coach.GetSummary(ctx, input.GoalID)
	if err != nil {
		return nil, summaryOutput{}, fmt.Errorf("failed to get summary: %w", err)
	}
	return nil, summaryOutput{GoalID: input.GoalID, Summary: out.Value, Fallback: out.Degraded}, nil
}

func (s *Server) handleSendChatMessage(ctx context.Context, req *mcp.CallToolRequest, input chatInput) (*mcp.CallToolResult, chatOutput, error) {
	reply, err := s.coach.PostChatMessage(ctx, input.GoalID, input.Message)
	if err != nil {
		return nil, chatOutput{}, fmt.Errorf("failed to send message: %w", err)
	}
	return nil, chatOutput{
		ConversationID: reply.ConversationID,
		Reply:          reply.Value,
		Fallback:       reply.Degraded,
	}, nil
}

func (s *Server) handleGetConversation(ctx context.Context, req *mcp.CallToolRequest, input goalIDInput) (*mcp.CallToolResult, conversationOutput, error) {
	conv, err := s.coach.GetConversation(input.GoalID)
	if err != nil {
		return nil, conversationOutput{}, fmt.Errorf("failed to load conversation: %w", err)
	}

	out := conversationOutput{ID: conv.ID, Messages: make([]conversationMessage, 0, len(conv.Messages))}
	for _, m := range conv.Messages {
		out.Messages = append(out.Messages, conversationMessage{
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return nil, out, nil
}

// goalSummaries lists goals with their progress totals.
func (s *Server) goalSummaries(status *models.GoalStatus, limit int) ([]goalSummary, error) {
	goals, err := s.repo.ListGoals(status, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	summaries := make([]goalSummary, 0, len(goals))
	for _, g := range goals {
		full, err := s.repo.GetGoalWithProgress(g.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load goal %d: %w", g.ID, err)
		}
		summaries = append(summaries, goalSummary{
			ID:            full.ID,
			Title:         full.Title,
			Status:        string(full.Status),
			ProgressCount: full.ProgressCount(),
			TotalHours:    full.TotalHours(),
			LastActivity:  full.LastActivity(),
		})
	}
	return summaries, nil
}

// parseDate accepts RFC 3339, "2006-01-02 15:04" or a bare date in local time.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD)", s)
}
