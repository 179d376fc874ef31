// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for Claude integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/trackwise/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

MCP allows AI assistants like Claude to read and log your learning progress
and to ask the coach for advice through a standardized protocol. The server
communicates via stdin/stdout.

CLAUDE DESKTOP CONFIGURATION:

  Add this to your Claude Desktop config (claude_desktop_config.json):

  {
    "mcpServers": {
      "trackwise": {
        "command": "trackwise",
        "args": ["mcp"]
      }
    }
  }

  On macOS, the config is at:
    ~/Library/Application Support/Claude/claude_desktop_config.json

AVAILABLE TOOLS:

  add_goal            Create a learning goal
  list_goals          List goals with progress totals
  get_goal            Get a goal with all progress entries
  set_goal_status     Mark a goal active, paused or done
  delete_goal         Delete a goal
  log_progress        Log a progress entry
  list_progress       List recent progress entries
  delete_progress     Delete a progress entry
  analyze_progress    Percentage, trend, consistency and recommendations
  get_advice          Three coaching tips for a goal
  get_summary         One-sentence progress summary
  send_chat_message   Talk to the learning coach
  get_conversation    Read the coaching conversation

AVAILABLE RESOURCES:

  trackwise://goals     All goals with progress totals
  trackwise://recent    Recent progress entries`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(repo, coachSvc)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
