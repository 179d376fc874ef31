// ABOUTME: Trackwise configuration management with backend and AI provider selection.
// ABOUTME: Handles settings, environment overrides, and storage, model client and logger factories.

package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harperreed/trackwise/internal/charm"
	"github.com/harperreed/trackwise/internal/llm"
	"github.com/harperreed/trackwise/internal/storage"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Backend names.
const (
	BackendSQLite = "sqlite"
	BackendCharm  = "charm"
)

// Config stores trackwise configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "charm".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage.
	// SQLite puts trackwise.db here. Charm keeps its KV store under charm/.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/trackwise.
	DataDir string `json:"data_dir,omitempty"`

	AI AIConfig `json:"ai,omitempty"`

	// LogLevel is a zap level name: debug, info, warn or error. Defaults to warn.
	LogLevel string `json:"log_level,omitempty"`
}

// AIConfig selects and tunes the language model provider.
type AIConfig struct {
	Provider    string   `json:"provider,omitempty"`
	APIKey      string   `json:"api_key,omitempty"`
	BaseURL     string   `json:"base_url,omitempty"`
	Model       string   `json:"model,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// ApplyEnv overlays environment variables onto the file settings.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("TRACKWISE_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("TRACKWISE_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("TRACKWISE_PROVIDER"); v != "" {
		c.AI.Provider = v
	}

	switch {
	case os.Getenv("TRACKWISE_API_KEY") != "":
		c.AI.APIKey = os.Getenv("TRACKWISE_API_KEY")
	case c.AI.APIKey != "":
	case os.Getenv("OPENAI_API_KEY") != "" && c.AI.Provider != llm.ProviderGemini:
		c.AI.APIKey = os.Getenv("OPENAI_API_KEY")
		if c.AI.Provider == "" {
			c.AI.Provider = llm.ProviderOpenAI
		}
	case geminiKey() != "" && c.AI.Provider != llm.ProviderOpenAI:
		c.AI.APIKey = geminiKey()
		if c.AI.Provider == "" {
			c.AI.Provider = llm.ProviderGemini
		}
	}

	if v := os.Getenv("TRACKWISE_MODEL"); v != "" {
		c.AI.Model = v
	}
	if v := os.Getenv("TRACKWISE_BASE_URL"); v != "" {
		c.AI.BaseURL = v
	}
}

func geminiKey() string {
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		return v
	}
	return os.Getenv("GOOGLE_API_KEY")
}

// GetProvider returns the configured provider, defaulting to openai.
func (c *Config) GetProvider() string {
	if c.AI.Provider == "" {
		return llm.ProviderOpenAI
	}
	return c.AI.Provider
}

// AIConfigured reports whether an API key is available.
func (c *Config) AIConfigured() bool {
	return strings.TrimSpace(c.AI.APIKey) != ""
}

// LLMSettings returns the completion parameters with defaults filled in.
func (c *Config) LLMSettings() llm.Settings {
	s := llm.DefaultSettings()
	s.Model = c.AI.Model
	if s.Model == "" {
		s.Model = llm.DefaultModel(c.GetProvider())
	}
	if c.AI.MaxTokens > 0 {
		s.MaxTokens = c.AI.MaxTokens
	}
	if c.AI.Temperature != nil {
		s.Temperature = *c.AI.Temperature
	}
	return s
}

// NewLLMClient builds the configured language model client.
// It returns a nil client and no error when no API key is configured.
func (c *Config) NewLLMClient(ctx context.Context) (llm.Client, error) {
	client, err := llm.New(ctx, llm.Options{
		Provider: c.GetProvider(),
		APIKey:   c.AI.APIKey,
		BaseURL:  c.AI.BaseURL,
		Model:    c.LLMSettings().Model,
	})
	if errors.Is(err, llm.ErrNotConfigured) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", c.GetProvider(), err)
	}
	return client, nil
}

// OpenStorage creates a Repository implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Repository, error) {
	return OpenBackend(c.GetBackend(), c.GetDataDir())
}

// OpenBackend opens the named backend rooted at dataDir.
func OpenBackend(backend, dataDir string) (storage.Repository, error) {
	switch backend {
	case BackendSQLite:
		return storage.Open(storage.DBPath(dataDir))
	case BackendCharm:
		return charm.Open(CharmOptions(dataDir))
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// CharmOptions places the Charm KV store under dataDir.
func CharmOptions(dataDir string) charm.Options {
	return charm.Options{DataDir: filepath.Join(dataDir, "charm")}
}

// NewLogger builds the process logger. verbose forces debug level.
func (c *Config) NewLogger(verbose bool) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if c.LogLevel != "" {
		parsed, err := zapcore.ParseLevel(c.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("log_level: %w", err)
		}
		level = parsed
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "trackwise", "config.json")
}

// Load reads config from disk.
func Load() (*Config, error) {
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
