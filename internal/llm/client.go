// Package llm provides LLM client interfaces and implementations.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvocation wraps provider failures so callers can treat every model
// fault uniformly.
var ErrInvocation = errors.New("model invocation failed")

// Tool describes one callable action offered to the model.
type Tool struct {
	Name        string
	Description string
	// InputSchema is a JSON-schema shaped description of the arguments.
	InputSchema any
}

// ToolCall is a structured request emitted by the model, naming one tool and
// its raw JSON arguments.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ChatMessage represents one prompt message. ToolCalls echoes an assistant
// turn's tool requests when replaying; ToolCallID links a tool-result message
// to the call that produced it.
type ChatMessage struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
}

// Prompt message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// CompletionRequest represents a completion request. When Tools is non-empty
// the model may either answer directly or request tool calls.
type CompletionRequest struct {
	Model       string
	Messages    []ChatMessage
	Tools       []Tool
	MaxTokens   int
	Temperature float64
}

// CompletionResponse represents a completion response. ToolCalls is non-empty
// when the model chose to call tools instead of (or before) answering.
type CompletionResponse struct {
	Content    string
	ToolCalls  []ToolCall
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is the interface for LLM providers.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string

	// Models returns available models.
	Models() []string
}

// Provider is the type of LLM provider.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// NewClient creates a new LLM client based on provider.
func NewClient(provider Provider, apiKey string) (Client, error) {
	switch provider {
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey)
	case ProviderAnthropic:
		return NewAnthropicClient(apiKey)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}
