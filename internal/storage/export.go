// ABOUTME: Export and import functionality for trackwise data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats over any Repository.
package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/trackwise/internal/models"
	"gopkg.in/yaml.v3"
)

const exportVersion = "1.0"

// ExportData represents the full export format for trackwise data.
// Goals carry their progress; conversations carry their messages.
type ExportData struct {
	Version       string                 `json:"version" yaml:"version"`
	ExportedAt    time.Time              `json:"exported_at" yaml:"exported_at"`
	Tool          string                 `json:"tool" yaml:"tool"`
	Goals         []*models.Goal         `json:"goals" yaml:"goals"`
	Conversations []*models.Conversation `json:"conversations" yaml:"conversations"`
}

// CollectData gathers every goal, progress entry, conversation and message from r.
func CollectData(r Repository) (*ExportData, error) {
	goals, err := r.ListGoals(nil, 0)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}

	data := &ExportData{
		Version:       exportVersion,
		ExportedAt:    time.Now(),
		Tool:          "trackwise",
		Goals:         make([]*models.Goal, 0, len(goals)),
		Conversations: []*models.Conversation{},
	}

	for _, g := range goals {
		full, err := r.GetGoalWithProgress(g.ID)
		if err != nil {
			return nil, fmt.Errorf("get goal %d: %w", g.ID, err)
		}
		data.Goals = append(data.Goals, full)

		convs, err := r.ListConversations(g.ID)
		if err != nil {
			return nil, fmt.Errorf("list conversations for goal %d: %w", g.ID, err)
		}
		for _, c := range convs {
			fullConv, err := r.GetConversation(c.ID)
			if err != nil {
				return nil, fmt.Errorf("get conversation %d: %w", c.ID, err)
			}
			data.Conversations = append(data.Conversations, fullConv)
		}
	}

	return data, nil
}

// RestoreData writes exported records into r, preserving their IDs.
func RestoreData(r Repository, data *ExportData) error {
	for _, g := range data.Goals {
		progress := g.Progress
		goal := *g
		goal.Progress = nil
		if err := r.CreateGoal(&goal); err != nil {
			return fmt.Errorf("import goal %d: %w", g.ID, err)
		}
		for i := range progress {
			p := progress[i]
			p.GoalID = goal.ID
			if err := r.AddProgress(&p); err != nil {
				return fmt.Errorf("import progress %d: %w", p.ID, err)
			}
		}
	}

	for _, c := range data.Conversations {
		messages := c.Messages
		conv := *c
		conv.Messages = nil
		if err := r.CreateConversation(&conv); err != nil {
			return fmt.Errorf("import conversation %d: %w", c.ID, err)
		}
		for i := range messages {
			m := messages[i]
			m.ConversationID = conv.ID
			if err := r.AppendMessage(&m); err != nil {
				return fmt.Errorf("import message %d: %w", m.ID, err)
			}
		}
	}

	return nil
}

// GetAllData retrieves all data for export.
func (d *DB) GetAllData() (*ExportData, error) {
	return CollectData(d)
}

// ImportData imports data from an export.
func (d *DB) ImportData(data *ExportData) error {
	return RestoreData(d, data)
}

// ExportJSON exports all data as JSON.
func ExportJSON(r Repository) ([]byte, error) {
	data, err := r.GetAllData()
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ImportJSON imports data from JSON bytes.
func ImportJSON(r Repository, raw []byte) error {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return fmt.Errorf("unmarshal JSON: %w", err)
	}
	return r.ImportData(&data)
}

// ExportYAML exports goals with nested progress as human-readable YAML.
func ExportYAML(r Repository) ([]byte, error) {
	data, err := r.GetAllData()
	if err != nil {
		return nil, err
	}

	yamlData := struct {
		Version    string     `yaml:"version"`
		ExportedAt string     `yaml:"exported_at"`
		Tool       string     `yaml:"tool"`
		Goals      []yamlGoal `yaml:"goals"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Goals:      make([]yamlGoal, 0, len(data.Goals)),
	}

	messages := make(map[int64]int)
	for _, c := range data.Conversations {
		messages[c.GoalID] += len(c.Messages)
	}

	for _, g := range data.Goals {
		yg := yamlGoal{
			ID:           g.ID,
			Title:        g.Title,
			Status:       string(g.Status),
			CreatedAt:    g.CreatedAt.Format(time.RFC3339),
			TotalHours:   g.TotalHours(),
			ChatMessages: messages[g.ID],
		}
		if g.Description != nil {
			yg.Description = *g.Description
		}
		for _, p := range g.Progress {
			yp := yamlProgress{
				Date: p.Date.Format("2006-01-02"),
				Note: p.Note,
			}
			if p.Hours != nil {
				yp.Hours = *p.Hours
			}
			yg.Progress = append(yg.Progress, yp)
		}
		yamlData.Goals = append(yamlData.Goals, yg)
	}

	return yaml.Marshal(yamlData)
}

type yamlGoal struct {
	ID           int64          `yaml:"id"`
	Title        string         `yaml:"title"`
	Description  string         `yaml:"description,omitempty"`
	Status       string         `yaml:"status"`
	CreatedAt    string         `yaml:"created_at"`
	TotalHours   float64        `yaml:"total_hours"`
	ChatMessages int            `yaml:"chat_messages,omitempty"`
	Progress     []yamlProgress `yaml:"progress,omitempty"`
}

type yamlProgress struct {
	Date  string  `yaml:"date"`
	Note  string  `yaml:"note"`
	Hours float64 `yaml:"hours,omitempty"`
}

// ExportMarkdown exports one progress table per goal, optionally only entries on or after since.
func ExportMarkdown(r Repository, since *time.Time) (string, error) {
	goals, err := r.ListGoals(nil, 0)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	now := time.Now()

	sb.WriteString(fmt.Sprintf("# TrackWise Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))

	for _, summary := range goals {
		g, err := r.GetGoalWithProgress(summary.ID)
		if err != nil {
			return "", err
		}

		sb.WriteString(fmt.Sprintf("## %s\n\n", g.Title))
		sb.WriteString(fmt.Sprintf("Status: %s | Entries: %d | Hours: %s\n\n",
			g.Status, g.ProgressCount(), formatHours(g.TotalHours())))
		if g.Description != nil && *g.Description != "" {
			sb.WriteString(*g.Description + "\n\n")
		}

		var rows []models.ProgressEntry
		for _, p := range g.Progress {
			if since == nil || !p.Date.Before(*since) {
				rows = append(rows, p)
			}
		}
		if len(rows) == 0 {
			sb.WriteString("_No progress logged._\n\n")
			continue
		}

		sb.WriteString("| Date | Hours | Note |\n")
		sb.WriteString("|------|-------|------|\n")
		for _, p := range rows {
			hours := ""
			if p.Hours != nil {
				hours = formatHours(*p.Hours)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n",
				p.Date.Format("2006-01-02 15:04"), hours, escapeCell(p.Note)))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

func formatHours(h float64) string {
	return fmt.Sprintf("%g", h)
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
