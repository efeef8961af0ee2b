// Package tools provides tool registration and execution for the
// answer generator's tool-calling loop.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
)

// ErrUnknownTool is returned when execution is requested for a name no
// registered tool carries.
var ErrUnknownTool = errors.New("unknown tool")

// Tool is a capability the model may invoke during generation.
// Implementations must be safe for concurrent use.
type Tool interface {
	// Name returns the wire name the model calls the tool by.
	Name() string

	// Description returns the model-facing usage description.
	Description() string

	// InputSchema returns the JSON Schema of the tool's input object.
	InputSchema() *jsonschema.Schema

	// Execute runs the tool with raw JSON input and returns text for
	// the model. Errors are surfaced to the model as error results,
	// not propagated as generation failures.
	Execute(ctx context.Context, input json.RawMessage) (string, error)
}

// Definition is the provider-neutral view of a registered tool, handed
// to the generator for advertising in model requests.
type Definition struct {
	Name        string
	Description string
	Schema      *jsonschema.Schema
}

// Source identifies a piece of indexed material a tool drew on while
// producing its result. Sources accumulate per query and are surfaced
// to the UI alongside the answer.
type Source struct {
	Label string `json:"label"`
	Link  string `json:"link,omitempty"`
}

// Recorder accepts sources from tools as they execute.
type Recorder interface {
	Record(sources ...Source)
}

// Registry manages registered tools, dispatches execution by name and
// collects the sources tools report.
//
// Registry is safe for concurrent use, though a query's execute/collect
// cycle assumes one query at a time per registry instance.
type Registry struct {
	logger *slog.Logger

	mu      sync.Mutex
	tools   map[string]Tool
	order   []string
	sources []Source
}

// NewRegistry creates an empty tool registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger: logger,
		tools:  make(map[string]Tool),
	}
}

// Register adds a tool. Registering a second tool under an existing
// name is rejected.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("tool must not be nil")
	}
	name := t.Name()
	if name == "" {
		return fmt.Errorf("tool name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	return nil
}

// Definitions returns the registered tools in registration order.
func (r *Registry) Definitions() []Definition {
	r.mu.Lock()
	defer r.mu.Unlock()

	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, Definition{
			Name:        t.Name(),
			Description: t.Description(),
			Schema:      t.InputSchema(),
		})
	}
	return defs
}

// Execute dispatches a tool call by name. An unregistered name yields
// ErrUnknownTool.
func (r *Registry) Execute(ctx context.Context, name string, input json.RawMessage) (string, error) {
	r.mu.Lock()
	t, ok := r.tools[name]
	r.mu.Unlock()

	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTool, name)
	}

	r.logger.Debug("executing tool", "tool", name)
	out, err := t.Execute(ctx, input)
	if err != nil {
		r.logger.Warn("tool execution failed", "tool", name, "error", err)
		return "", err
	}
	return out, nil
}

// Record appends sources reported by an executing tool.
func (r *Registry) Record(sources ...Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, sources...)
}

// LastSources returns a copy of the sources accumulated since the last
// Reset.
func (r *Registry) LastSources() []Source {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Reset clears accumulated sources. Call it before each query so
// sources reflect only the current answer.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = nil
}
