package generator

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/tools"
)

// AnthropicClient implements ModelClient on the Anthropic Messages API.
type AnthropicClient struct {
	client anthropic.Client
	model  string
}

// NewAnthropicClient creates a client for the given model.
func NewAnthropicClient(apiKey, model string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}

	return &AnthropicClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

// Generate implements ModelClient.
func (c *AnthropicClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(req.MaxTokens),
		Temperature: anthropic.Float(req.Temperature),
		Messages:    toMessageParams(req.Messages),
	}

	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	if len(req.Tools) > 0 {
		params.Tools = toToolParams(req.Tools)
		params.ToolChoice = anthropic.ToolChoiceUnionParam{
			OfAuto: &anthropic.ToolChoiceAutoParam{},
		}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	return fromMessage(msg), nil
}

// toMessageParams converts neutral messages to API message params.
func toMessageParams(messages []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.Content))
		for _, c := range m.Content {
			switch {
			case c.ToolCall != nil:
				blocks = append(blocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    c.ToolCall.ID,
						Name:  c.ToolCall.Name,
						Input: c.ToolCall.Input,
					},
				})
			case c.ToolResult != nil:
				blocks = append(blocks, anthropic.NewToolResultBlock(
					c.ToolResult.ToolCallID, c.ToolResult.Content, c.ToolResult.IsError))
			default:
				blocks = append(blocks, anthropic.NewTextBlock(c.Text))
			}
		}

		if m.Role == RoleAssistant {
			out = append(out, anthropic.NewAssistantMessage(blocks...))
		} else {
			out = append(out, anthropic.NewUserMessage(blocks...))
		}
	}
	return out
}

// toToolParams converts tool definitions to API tool params. The input
// schemas are object schemas, so properties and required carry over.
func toToolParams(defs []tools.Definition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(defs))
	for _, def := range defs {
		schema := anthropic.ToolInputSchemaParam{}
		if def.Schema != nil {
			schema.Properties = def.Schema.Properties
			schema.Required = def.Schema.Required
		}

		out = append(out, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        def.Name,
				Description: anthropic.String(def.Description),
				InputSchema: schema,
			},
		})
	}
	return out
}

// fromMessage converts an API message to the neutral response.
func fromMessage(msg *anthropic.Message) *Response {
	resp := &Response{StopReason: StopReason(msg.StopReason)}

	for _, block := range msg.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			resp.Content = append(resp.Content, Content{Text: b.Text})
		case anthropic.ToolUseBlock:
			resp.Content = append(resp.Content, Content{ToolCall: &ToolCall{
				ID:    b.ID,
				Name:  b.Name,
				Input: b.Input,
			}})
		}
	}

	return resp
}
