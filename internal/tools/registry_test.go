package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/log"
)

// fakeTool is a scriptable Tool for registry tests.
type fakeTool struct {
	name    string
	output  string
	err     error
	calls   int
	lastRaw json.RawMessage
}

func (f *fakeTool) Name() string                       { return f.name }
func (f *fakeTool) Description() string                { return "fake tool" }
func (f *fakeTool) InputSchema() *jsonschema.Schema    { return &jsonschema.Schema{Type: "object"} }
func (f *fakeTool) Execute(_ context.Context, input json.RawMessage) (string, error) {
	f.calls++
	f.lastRaw = input
	return f.output, f.err
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry(log.NewNop())

	require.NoError(t, r.Register(&fakeTool{name: "a"}))
	require.NoError(t, r.Register(&fakeTool{name: "b"}))

	t.Run("duplicate name rejected", func(t *testing.T) {
		err := r.Register(&fakeTool{name: "a"})
		require.Error(t, err)
	})

	t.Run("nil tool rejected", func(t *testing.T) {
		require.Error(t, r.Register(nil))
	})

	t.Run("empty name rejected", func(t *testing.T) {
		require.Error(t, r.Register(&fakeTool{}))
	})

	t.Run("definitions preserve registration order", func(t *testing.T) {
		defs := r.Definitions()
		require.Len(t, defs, 2)
		assert.Equal(t, "a", defs[0].Name)
		assert.Equal(t, "b", defs[1].Name)
		assert.NotNil(t, defs[0].Schema)
	})
}

func TestRegistryExecute(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry(log.NewNop())
	ft := &fakeTool{name: "echo", output: "result text"}
	require.NoError(t, r.Register(ft))

	t.Run("dispatches by name", func(t *testing.T) {
		out, err := r.Execute(ctx, "echo", json.RawMessage(`{"q":"x"}`))
		require.NoError(t, err)
		assert.Equal(t, "result text", out)
		assert.Equal(t, 1, ft.calls)
		assert.JSONEq(t, `{"q":"x"}`, string(ft.lastRaw))
	})

	t.Run("unknown tool", func(t *testing.T) {
		_, err := r.Execute(ctx, "nonexistent_tool", nil)
		assert.ErrorIs(t, err, ErrUnknownTool)
	})
}

func TestRegistrySources(t *testing.T) {
	r := NewRegistry(log.NewNop())

	assert.Empty(t, r.LastSources())

	r.Record(Source{Label: "A - Lesson 1", Link: "http://a/1"})
	r.Record(Source{Label: "B"})

	sources := r.LastSources()
	require.Len(t, sources, 2)
	assert.Equal(t, "A - Lesson 1", sources[0].Label)
	assert.Equal(t, "http://a/1", sources[0].Link)
	assert.Equal(t, "B", sources[1].Label)
	assert.Empty(t, sources[1].Link)

	t.Run("returned slice is a copy", func(t *testing.T) {
		sources[0].Label = "mutated"
		assert.Equal(t, "A - Lesson 1", r.LastSources()[0].Label)
	})

	t.Run("reset clears sources", func(t *testing.T) {
		r.Reset()
		assert.Empty(t, r.LastSources())
	})
}
