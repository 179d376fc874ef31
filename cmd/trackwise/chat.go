// ABOUTME: CLI commands for chatting with the learning coach.
// ABOUTME: Sends one message or runs an interactive loop, and shows history.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/trackwise/internal/models"
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat <goal-id> [message]",
	Short: "Chat with your learning coach",
	Long: `Chat with the learning coach about a goal.

The coach sees the goal, your totals and your five most recent entries, and
remembers the whole conversation.

EXAMPLES:

  trackwise chat 3 "I keep skipping practice, any ideas?"
  trackwise chat 3          # Interactive session, empty line or 'exit' quits`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		if len(args) > 1 {
			return sendChat(cmd, id, strings.Join(args[1:], " "))
		}
		return chatLoop(cmd, id, os.Stdin)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <goal-id>",
	Short: "Show the coaching conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		conv, err := coachSvc.GetConversation(id)
		if err != nil {
			return err
		}

		if len(conv.Messages) == 0 {
			fmt.Println("No messages yet.")
			return nil
		}

		faint := color.New(color.Faint)
		for _, m := range conv.Messages {
			fmt.Printf("%s %s\n", faint.Sprint(m.CreatedAt.Format("2006-01-02 15:04")), roleLabel(m.Role))
			if m.Role == models.RoleAssistant {
				fmt.Print(renderMarkdown(m.Content))
			} else {
				fmt.Printf("  %s\n\n", m.Content)
			}
		}
		return nil
	},
}

func sendChat(cmd *cobra.Command, goalID int64, text string) error {
	reply, err := coachSvc.PostChatMessage(cmd.Context(), goalID, text)
	if err != nil {
		return err
	}
	fmt.Print(renderMarkdown(reply.Value))
	return nil
}

func chatLoop(cmd *cobra.Command, goalID int64, in io.Reader) error {
	g, err := repo.GetGoal(goalID)
	if err != nil {
		return fmt.Errorf("goal not found: %d", goalID)
	}

	color.Cyan("Chatting about %s. Empty line or 'exit' to quit.", g.Title)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Print(color.GreenString("you> "))
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "exit" || line == "quit" {
			return nil
		}
		if err := sendChat(cmd, goalID, line); err != nil {
			return err
		}
	}
}

func roleLabel(r models.Role) string {
	if r == models.RoleAssistant {
		return color.CyanString("coach")
	}
	return color.GreenString("you")
}

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(historyCmd)
}
