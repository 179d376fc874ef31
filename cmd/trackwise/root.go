// ABOUTME: Root Cobra command for trackwise CLI.
// ABOUTME: Handles config, logger, storage and coach lifecycle via PersistentPre/PostRunE.
package main

import (
	"fmt"

	"github.com/harperreed/trackwise/internal/coach"
	"github.com/harperreed/trackwise/internal/config"
	"github.com/harperreed/trackwise/internal/storage"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfg      *config.Config
	logger   *zap.Logger
	repo     storage.Repository
	coachSvc *coach.Service

	dataDirFlag string
	backendFlag string
	verboseFlag bool
)

// skipStorage lists commands that manage their own storage or need none.
var skipStorage = map[string]bool{
	"help":          true,
	"version":       true,
	"completion":    true,
	"install-skill": true,
	"migrate":       true,
	"link":          true,
	"unlink":        true,
	"repair":        true,
	"reset":         true,
	"wipe":          true,
}

var rootCmd = &cobra.Command{
	Use:   "trackwise",
	Short: "Learning goal tracker with an AI coach",
	Long: `Trackwise tracks learning goals, measures your progress and coaches you.

WHAT IT DOES:

  Goals       Things you want to learn, each with a log of progress entries
  Analysis    Progress percentage, trend, consistency and recommendations
  Advice      Three short coaching tips tailored to your recent progress
  Chat        An ongoing conversation with a learning coach per goal

QUICK START:

  $ trackwise goal add "Learn Spanish"             # Create a goal
  $ trackwise log add 1 "Finished lesson 3" -H 1.5 # Log 1.5 hours of progress
  $ trackwise analyze 1                            # See your progress analysis
  $ trackwise advice 1                             # Get coaching tips
  $ trackwise chat 1 "How should I practice?"      # Ask the coach

AI CONFIGURATION:

  Advice, summaries and chat use OpenAI by default. Set OPENAI_API_KEY (or
  GEMINI_API_KEY with provider "gemini") or put the key in
  ~/.config/trackwise/config.json. Without a key trackwise still works and
  falls back to general tips.

MCP INTEGRATION:

  Run 'trackwise mcp' to start the Model Context Protocol server for use with
  Claude Desktop or other MCP-compatible AI assistants. Add to your Claude
  config:

  {
    "mcpServers": {
      "trackwise": { "command": "trackwise", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  Data is stored in SQLite at ~/.local/share/trackwise/trackwise.db.
  Set "backend": "charm" in the config to sync through Charm Cloud instead.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		cfg.ApplyEnv()
		if dataDirFlag != "" {
			cfg.DataDir = dataDirFlag
		}
		if backendFlag != "" {
			cfg.Backend = backendFlag
		}

		logger, err = cfg.NewLogger(verboseFlag)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}

		if skipStorage[cmd.Name()] {
			return nil
		}

		repo, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
		}

		client, err := cfg.NewLLMClient(cmd.Context())
		if err != nil {
			// Storage commands still work; the coach runs offline.
			logger.Warn("language model unavailable", zap.Error(err))
		}
		coachSvc = coach.New(repo, client, cfg.LLMSettings(), logger)
		logger.Debug("ready",
			zap.String("backend", cfg.GetBackend()),
			zap.String("data_dir", cfg.GetDataDir()),
			zap.Bool("ai", client != nil))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeAll()
	},
}

// closeAll releases storage and flushes the logger.
func closeAll() error {
	var err error
	if repo != nil {
		err = repo.Close()
		repo = nil
	}
	coachSvc = nil
	if logger != nil {
		_ = logger.Sync()
	}
	return err
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		// PostRunE is skipped when RunE fails.
		_ = closeAll()
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "data directory (default ~/.local/share/trackwise)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "storage backend: sqlite or charm")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "debug logging to stderr")
}
