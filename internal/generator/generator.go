package generator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/tools"
)

// Generation parameters shared by every model call.
const (
	defaultMaxTokens     = 800
	defaultTemperature   = 0
	defaultMaxToolRounds = 2
)

// fallbackAnswer is returned when the model produces no text block.
const fallbackAnswer = "I was unable to produce an answer to that question."

// systemPrompt steers the model's tool usage and answer style. It is
// static; per-query conversation history is appended at call time.
const systemPrompt = `You are an AI assistant specialized in course materials and educational content with access to a comprehensive search tool for course information.

Tool Usage:
- Use the **search_course_content** tool for questions about specific course content or detailed educational materials
- Use the **get_course_outline** tool for questions about course structure, syllabus, outline, or lesson listings
  - When presenting outline results, always include: the course title, the course link, and for each lesson its number and title
- You may use up to 2 sequential tool calls per query when needed (e.g., first get an outline, then search based on results)
- Most questions require only one tool call
- Synthesize tool results into accurate, fact-based responses
- If a tool yields no results, state this clearly without offering alternatives

Response Protocol:
- **General knowledge questions**: Answer using existing knowledge without searching
- **Course outline/structure questions**: Use get_course_outline, then present the full outline with course title, course link, and all lessons
- **Course content questions**: Use search_course_content, then answer
- **No meta-commentary**:
 - Provide direct answers only — no reasoning process, search explanations, or question-type analysis
 - Do not mention "based on the search results" or "based on the tool results"


All responses must be:
1. **Brief, Concise and focused** - Get to the point quickly
2. **Educational** - Maintain instructional value
3. **Clear** - Use accessible language
4. **Example-supported** - Include relevant examples when they aid understanding
Provide only the direct answer to what was asked.`

// Generator answers queries through a bounded tool-calling loop.
// Each answer makes at most maxToolRounds+1 model calls: the final
// round advertises no tools, so the model must conclude with text.
type Generator struct {
	client        ModelClient
	executor      ToolExecutor
	maxToolRounds int
	logger        *slog.Logger
}

// New creates a Generator. maxToolRounds <= 0 selects the default.
func New(client ModelClient, executor ToolExecutor, maxToolRounds int, logger *slog.Logger) (*Generator, error) {
	if client == nil {
		return nil, fmt.Errorf("model client is required")
	}
	if executor == nil {
		return nil, fmt.Errorf("tool executor is required")
	}
	if maxToolRounds <= 0 {
		maxToolRounds = defaultMaxToolRounds
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Generator{
		client:        client,
		executor:      executor,
		maxToolRounds: maxToolRounds,
		logger:        logger,
	}, nil
}

// Answer generates a response to query. history is the formatted prior
// conversation to carry as context (empty for a fresh session); defs
// are the tools to advertise.
func (g *Generator) Answer(ctx context.Context, query, history string, defs []tools.Definition) (string, error) {
	system := systemPrompt
	if history != "" {
		system = fmt.Sprintf("%s\n\nPrevious conversation:\n%s", systemPrompt, history)
	}

	messages := []Message{userMessage(query)}

	resp, err := g.client.Generate(ctx, &Request{
		System:      system,
		Messages:    messages,
		Tools:       defs,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		return "", fmt.Errorf("model call failed: %w", err)
	}

	for round := 0; round < g.maxToolRounds; round++ {
		if resp.StopReason != StopToolUse {
			break
		}

		messages = append(messages, Message{Role: RoleAssistant, Content: resp.Content})

		results := g.runTools(ctx, resp.Content)
		if len(results) == 0 {
			break
		}
		messages = append(messages, Message{Role: RoleUser, Content: results})

		// The last permitted round advertises no tools so the model
		// has to answer in text.
		req := &Request{
			System:      system,
			Messages:    messages,
			MaxTokens:   defaultMaxTokens,
			Temperature: defaultTemperature,
		}
		if round+1 < g.maxToolRounds {
			req.Tools = defs
		}

		resp, err = g.client.Generate(ctx, req)
		if err != nil {
			return "", fmt.Errorf("model call failed after tool round %d: %w", round+1, err)
		}
	}

	text := firstText(resp)
	if text == "" {
		g.logger.Warn("model returned no text content", "stop_reason", resp.StopReason)
		return fallbackAnswer, nil
	}
	return text, nil
}

// runTools executes every tool call in the assistant content and
// returns the matching tool-result blocks. Execution failures become
// error results for the model rather than aborting the answer.
func (g *Generator) runTools(ctx context.Context, content []Content) []Content {
	var results []Content
	for _, block := range content {
		if block.ToolCall == nil {
			continue
		}
		call := block.ToolCall

		out, err := g.executor.Execute(ctx, call.Name, call.Input)
		result := &ToolResult{ToolCallID: call.ID, Content: out}
		if err != nil {
			result.Content = fmt.Sprintf("Tool execution error: %v", err)
			result.IsError = true
		}

		results = append(results, Content{ToolResult: result})
	}
	return results
}
