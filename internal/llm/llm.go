// ABOUTME: Language model client abstraction shared by advisory and chat.
// ABOUTME: One operation: role-tagged messages in, a single completion text out.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotConfigured is returned when no API key is available.
	ErrNotConfigured = errors.New("language model not configured")
	// ErrEmptyResponse is returned when the provider replies with no text.
	ErrEmptyResponse = errors.New("empty response from language model")
)

// Role tags a message in a completion request.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged turn.
type Message struct {
	Role    Role
	Content string
}

// System, User and Assistant build messages.
func System(content string) Message    { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message      { return Message{Role: RoleUser, Content: content} }
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// Request is a single completion call. A zero Model uses the provider default.
type Request struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Settings are the completion parameters chosen by configuration.
type Settings struct {
	Model       string
	MaxTokens   int
	Temperature float64
}

// DefaultSettings returns the standard completion parameters.
func DefaultSettings() Settings {
	return Settings{MaxTokens: 500, Temperature: 0.7}
}

// Client completes a request. Implementations must be safe for concurrent use.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, req Request) (string, error)

// Complete calls f.
func (f ClientFunc) Complete(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Default models per provider.
const (
	DefaultOpenAIModel = "gpt-3.5-turbo"
	DefaultGeminiModel = "gemini-2.0-flash"
)

// Options configures a provider client.
type Options struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

// New builds the client for opts.Provider. It returns ErrNotConfigured without an API key.
func New(ctx context.Context, opts Options) (Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrNotConfigured
	}

	switch opts.Provider {
	case "", ProviderOpenAI:
		return NewOpenAI(opts), nil
	case ProviderGemini:
		c, err := NewGemini(ctx, opts)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown provider %q (use %s or %s)", opts.Provider, ProviderOpenAI, ProviderGemini)
	}
}

// DefaultModel returns the default model name for a provider.
func DefaultModel(provider string) string {
	if provider == ProviderGemini {
		return DefaultGeminiModel
	}
	return DefaultOpenAIModel
}
