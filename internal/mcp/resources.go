// ABOUTME: MCP resource implementations for trackwise goals.
// ABOUTME: Provides trackwise://goals and trackwise://recent resources.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	goalsURI  = "trackwise://goals"
	recentURI = "trackwise://recent"

	recentLimit = 10
)

func (s *Server) registerResources() {
	// trackwise://goals - Every goal with progress totals
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         goalsURI,
		Name:        "Learning Goals",
		Description: "All goals with status, entry count, hours and last activity",
		MIMEType:    "application/json",
	}, s.handleGoalsResource)

	// trackwise://recent - Latest progress across all goals
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         recentURI,
		Name:        "Recent Progress",
		Description: "Last 10 progress entries across all goals",
		MIMEType:    "application/json",
	}, s.handleRecentResource)

	s.resources = append(s.resources, goalsURI, recentURI)
}

// Resource handlers

func (s *Server) handleGoalsResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	summaries, err := s.goalSummaries(nil, 0)
	if err != nil {
		return nil, err
	}

	result := map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"goals":        summaries,
		"count":        len(summaries),
	}
	return jsonResource(goalsURI, result)
}

func (s *Server) handleRecentResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	entries, err := s.repo.ListProgress(0, recentLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}

	titles := make(map[int64]string)
	items := make([]map[string]interface{}, 0, len(entries))
	for _, p := range entries {
		title, ok := titles[p.GoalID]
		if !ok {
			if g, err := s.repo.GetGoal(p.GoalID); err == nil {
				title = g.Title
			}
			titles[p.GoalID] = title
		}
		items = append(items, map[string]interface{}{
			"id":         p.ID,
			"goal_id":    p.GoalID,
			"goal_title": title,
			"date":       p.Date.Format(time.RFC3339),
			"note":       p.Note,
			"hours":      p.Hours,
		})
	}

	return jsonResource(recentURI, map[string]interface{}{"progress": items})
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
