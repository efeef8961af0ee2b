// Package generator produces answers to user queries via a
// tool-calling language model, bounding the number of tool rounds.
package generator

import (
	"context"
	"encoding/json"

	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/tools"
)

// Role identifies the author of a conversation message.
type Role string

// Message roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// StopReason reports why the model stopped generating.
type StopReason string

// Stop reasons.
const (
	StopEndTurn   StopReason = "end_turn"
	StopToolUse   StopReason = "tool_use"
	StopMaxTokens StopReason = "max_tokens"
)

// ToolCall is a model request to run a named tool with JSON input.
type ToolCall struct {
	ID    string
	Name  string
	Input json.RawMessage
}

// ToolResult carries a tool's output back to the model.
type ToolResult struct {
	ToolCallID string
	Content    string
	IsError    bool
}

// Content is one block of message content. Exactly one field is set.
type Content struct {
	Text       string
	ToolCall   *ToolCall
	ToolResult *ToolResult
}

// Message is one conversation turn, composed of content blocks.
type Message struct {
	Role    Role
	Content []Content
}

// Request is a provider-neutral model invocation.
type Request struct {
	System      string
	Messages    []Message
	Tools       []tools.Definition
	MaxTokens   int
	Temperature float64
}

// Response is a provider-neutral model reply.
type Response struct {
	Content    []Content
	StopReason StopReason
}

// ModelClient sends one request to a language model.
// Implementations must be safe for concurrent use.
type ModelClient interface {
	Generate(ctx context.Context, req *Request) (*Response, error)
}

// ToolExecutor dispatches a tool call by name.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, input json.RawMessage) (string, error)
}

// userMessage builds a user message with a single text block.
func userMessage(text string) Message {
	return Message{Role: RoleUser, Content: []Content{{Text: text}}}
}

// firstText returns the first text block of a response, or empty.
func firstText(resp *Response) string {
	for _, c := range resp.Content {
		if c.Text != "" {
			return c.Text
		}
	}
	return ""
}
