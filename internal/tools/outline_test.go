package tools

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/course"
	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/knowledge"
	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/log"
)

// fakeOutlineProvider is a scriptable OutlineProvider.
type fakeOutlineProvider struct {
	crs      *course.Course
	err      error
	lastName string
}

func (f *fakeOutlineProvider) Outline(_ context.Context, name string) (*course.Course, error) {
	f.lastName = name
	return f.crs, f.err
}

func newOutlineTool(t *testing.T, store OutlineProvider) (*OutlineTool, *Registry) {
	t.Helper()
	r := NewRegistry(log.NewNop())
	tool, err := NewOutlineTool(store, r, log.NewNop())
	require.NoError(t, err)
	return tool, r
}

func TestOutlineToolDefinition(t *testing.T) {
	tool, _ := newOutlineTool(t, &fakeOutlineProvider{})
	assert.Equal(t, "get_course_outline", tool.Name())
	require.NotNil(t, tool.InputSchema())
	assert.Contains(t, tool.InputSchema().Properties, "course_name")
}

func TestOutlineToolExecute(t *testing.T) {
	ctx := context.Background()

	crs := &course.Course{
		Title: "Intro to ML",
		Link:  "https://example.com/ml",
		Lessons: []course.Lesson{
			{Number: 1, Title: "Basics", Link: "https://example.com/ml/1"},
			{Number: 2, Title: "Advanced", Link: "https://example.com/ml/2"},
		},
	}

	t.Run("formats the full outline", func(t *testing.T) {
		store := &fakeOutlineProvider{crs: crs}
		tool, reg := newOutlineTool(t, store)

		out, err := tool.Execute(ctx, rawInput(t, OutlineInput{CourseName: "ML"}))
		require.NoError(t, err)
		assert.Contains(t, out, "Course: Intro to ML")
		assert.Contains(t, out, "Course Link: https://example.com/ml")
		assert.Contains(t, out, "Total Lessons: 2")
		assert.Contains(t, out, "Lesson 1: Basics")
		assert.Contains(t, out, "Lesson 2: Advanced")
		assert.Equal(t, "ML", store.lastName)

		sources := reg.LastSources()
		require.Len(t, sources, 1)
		assert.Equal(t, "Intro to ML", sources[0].Label)
		assert.Equal(t, "https://example.com/ml", sources[0].Link)
	})

	t.Run("empty catalog yields a no-course message", func(t *testing.T) {
		tool, _ := newOutlineTool(t, &fakeOutlineProvider{err: knowledge.ErrNoCourses})
		out, err := tool.Execute(ctx, rawInput(t, OutlineInput{CourseName: "Nonexistent"}))
		require.NoError(t, err)
		assert.Contains(t, out, "No course found")
		assert.Contains(t, out, "Nonexistent")
	})

	t.Run("other store errors propagate", func(t *testing.T) {
		tool, _ := newOutlineTool(t, &fakeOutlineProvider{err: errors.New("db error")})
		_, err := tool.Execute(ctx, rawInput(t, OutlineInput{CourseName: "ML"}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "retrieving course outline")
	})

	t.Run("missing course_name rejected", func(t *testing.T) {
		tool, _ := newOutlineTool(t, &fakeOutlineProvider{})
		_, err := tool.Execute(ctx, json.RawMessage(`{}`))
		require.Error(t, err)
	})

	t.Run("course without link omits the link line", func(t *testing.T) {
		bare := &course.Course{Title: "Bare", Lessons: []course.Lesson{{Number: 1, Title: "Only"}}}
		tool, _ := newOutlineTool(t, &fakeOutlineProvider{crs: bare})

		out, err := tool.Execute(ctx, rawInput(t, OutlineInput{CourseName: "Bare"}))
		require.NoError(t, err)
		assert.NotContains(t, out, "Course Link:")
		assert.Contains(t, out, "Total Lessons: 1")
	})
}
