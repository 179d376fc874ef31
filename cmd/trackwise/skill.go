// ABOUTME: Install Claude Code skill for trackwise
// ABOUTME: Checks the embedded skill against the MCP tool catalog, then installs it to ~/.claude/skills/

package main

import (
	"bufio"
	"embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/trackwise/internal/mcp"
	"github.com/spf13/cobra"
)

//go:embed skill/SKILL.md
var skillFS embed.FS

const (
	skillFile       = "skill/SKILL.md"
	skillToolPrefix = "mcp__trackwise__"
)

var (
	skillSkipConfirm bool
	skillPrint       bool
	skillDirFlag     string
)

var installSkillCmd = &cobra.Command{
	Use:   "install-skill",
	Short: "Install Claude Code skill",
	Long: `Install the trackwise skill for Claude Code.

This copies the skill definition to ~/.claude/skills/trackwise/
so Claude Code knows when to log progress and ask the coach.

The skill lists every tool the MCP server registers; installation
stops if the two disagree.

EXAMPLES:
  trackwise install-skill
  trackwise install-skill -y --dir ./skills/trackwise
  trackwise install-skill --print`,
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := skillContent()
		if err != nil {
			return err
		}
		if skillPrint {
			_, err := cmd.OutOrStdout().Write(content)
			return err
		}

		dir := skillDirFlag
		if dir == "" {
			if dir, err = defaultSkillDir(); err != nil {
				return err
			}
		}
		return installSkill(cmd.OutOrStdout(), cmd.InOrStdin(), dir, skillSkipConfirm)
	},
}

func init() {
	installSkillCmd.Flags().BoolVarP(&skillSkipConfirm, "yes", "y", false, "Skip confirmation prompt")
	installSkillCmd.Flags().BoolVar(&skillPrint, "print", false, "Print the skill instead of installing it")
	installSkillCmd.Flags().StringVar(&skillDirFlag, "dir", "", "Install into this directory instead of ~/.claude/skills/trackwise")
	rootCmd.AddCommand(installSkillCmd)
}

func defaultSkillDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".claude", "skills", "trackwise"), nil
}

// skillContent returns the embedded skill after checking it against the MCP catalog.
func skillContent() ([]byte, error) {
	content, err := skillFS.ReadFile(skillFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded skill: %w", err)
	}
	tools, resources := mcp.Catalog()
	if missing := missingFromSkill(string(content), tools, resources); len(missing) > 0 {
		return nil, fmt.Errorf("skill is out of date, missing: %s", strings.Join(missing, ", "))
	}
	return content, nil
}

// missingFromSkill lists the tools and resources the skill text does not mention.
func missingFromSkill(content string, tools []mcp.ToolInfo, resources []string) []string {
	var missing []string
	for _, tool := range tools {
		if !strings.Contains(content, "`"+skillToolPrefix+tool.Name+"`") {
			missing = append(missing, skillToolPrefix+tool.Name)
		}
	}
	for _, uri := range resources {
		if !strings.Contains(content, uri) {
			missing = append(missing, uri)
		}
	}
	return missing
}

func installSkill(out io.Writer, in io.Reader, skillDir string, skipConfirm bool) error {
	content, err := skillContent()
	if err != nil {
		return err
	}
	skillPath := filepath.Join(skillDir, "SKILL.md")
	tools, _ := mcp.Catalog()

	fmt.Fprintln(out, "Trackwise skill for Claude Code")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Claude Code will be able to use %d trackwise tools:\n", len(tools))
	for _, tool := range tools {
		fmt.Fprintf(out, "  • %-18s %s\n", tool.Name, tool.Description)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Destination:\n  %s\n\n", skillPath)

	if _, err := os.Stat(skillPath); err == nil {
		fmt.Fprintln(out, "Note: A skill file already exists and will be overwritten.")
		fmt.Fprintln(out)
	}

	if !skipConfirm {
		fmt.Fprint(out, "Install the trackwise skill? [y/N] ")
		response, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read response: %w", err)
		}
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(out, "Installation canceled.")
			return nil
		}
		fmt.Fprintln(out)
	}

	if err := os.MkdirAll(skillDir, 0750); err != nil {
		return fmt.Errorf("failed to create skill directory: %w", err)
	}
	if err := os.WriteFile(skillPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write skill file: %w", err)
	}

	fmt.Fprintln(out, color.GreenString("✓ Installed trackwise skill"))
	fmt.Fprintln(out, "Try asking Claude: \"Log an hour of Spanish practice\" or \"How is my piano goal going?\"")
	return nil
}
