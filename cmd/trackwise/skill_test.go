// ABOUTME: Tests for the install-skill command.
// ABOUTME: Checks the embedded skill against the MCP catalog and the install and confirm flow.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/harperreed/trackwise/internal/mcp"
)

func TestSkillCoversMCPCatalog(t *testing.T) {
	content, err := skillContent()
	if err != nil {
		t.Fatalf("skillContent failed: %v", err)
	}

	for _, marker := range []string{
		"name: trackwise",
		"## Advice contexts",
		"`dashboard`",
		"`goal_detail`",
		"`progress_logging`",
	} {
		if !strings.Contains(string(content), marker) {
			t.Errorf("skill is missing %q", marker)
		}
	}
}

func TestMissingFromSkill(t *testing.T) {
	tools := []mcp.ToolInfo{{Name: "add_goal"}, {Name: "get_advice"}}
	resources := []string{"trackwise://goals"}

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "complete",
			content: "`mcp__trackwise__add_goal` `mcp__trackwise__get_advice` trackwise://goals",
			want:    nil,
		},
		{
			name:    "missing tool",
			content: "`mcp__trackwise__add_goal` trackwise://goals",
			want:    []string{"mcp__trackwise__get_advice"},
		},
		{
			name:    "bare name does not count",
			content: "add_goal get_advice",
			want:    []string{"mcp__trackwise__add_goal", "mcp__trackwise__get_advice", "trackwise://goals"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := missingFromSkill(tt.content, tools, resources)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("missingFromSkill mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInstallSkillConfirm(t *testing.T) {
	tests := []struct {
		name        string
		skipConfirm bool
		input       string
		wantFile    bool
	}{
		{"yes flag", true, "", true},
		{"answered y", false, "y\n", true},
		{"answered yes without newline", false, "yes", true},
		{"answered n", false, "n\n", false},
		{"no answer", false, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "trackwise")
			var out bytes.Buffer

			if err := installSkill(&out, strings.NewReader(tt.input), dir, tt.skipConfirm); err != nil {
				t.Fatalf("installSkill failed: %v", err)
			}

			_, err := os.Stat(filepath.Join(dir, "SKILL.md"))
			if got := err == nil; got != tt.wantFile {
				t.Errorf("file written = %v, want %v\noutput:\n%s", got, tt.wantFile, out.String())
			}
			if !strings.Contains(out.String(), "log_progress") {
				t.Errorf("output does not list the MCP tools:\n%s", out.String())
			}
		})
	}
}

func TestInstallSkillOverwritesStaleFile(t *testing.T) {
	dir := t.TempDir()
	skillPath := filepath.Join(dir, "SKILL.md")
	if err := os.WriteFile(skillPath, []byte("# Old Skill"), 0600); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := installSkill(&out, strings.NewReader(""), dir, true); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}
	if !strings.Contains(out.String(), "already exists") {
		t.Errorf("expected overwrite note, got:\n%s", out.String())
	}

	got, err := os.ReadFile(skillPath)
	if err != nil {
		t.Fatal(err)
	}
	want, _ := skillFS.ReadFile(skillFile)
	if !bytes.Equal(got, want) {
		t.Error("stale skill was not replaced with the embedded one")
	}

	info, err := os.Stat(skillPath)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 600", perm)
	}
}

func TestInstallSkillFlags(t *testing.T) {
	for _, name := range []string{"yes", "print", "dir"} {
		if installSkillCmd.Flags().Lookup(name) == nil {
			t.Errorf("install-skill is missing --%s", name)
		}
	}
	if f := installSkillCmd.Flags().Lookup("yes"); f != nil && f.Shorthand != "y" {
		t.Errorf("--yes shorthand = %q, want y", f.Shorthand)
	}
}
