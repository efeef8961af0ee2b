package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/course"
	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/knowledge"
)

// OutlineToolName is the wire name of the course outline tool.
const OutlineToolName = "get_course_outline"

// OutlineInput defines input for the get_course_outline tool.
type OutlineInput struct {
	CourseName string `json:"course_name" jsonschema_description:"Course title to look up (partial matches work)"`
}

// OutlineProvider is the slice of the vector index the outline tool
// needs.
type OutlineProvider interface {
	Outline(ctx context.Context, name string) (*course.Course, error)
}

// OutlineTool returns a course's structure: title, link and the full
// lesson list. It answers "what does this course cover" questions
// without a content search.
type OutlineTool struct {
	store    OutlineProvider
	recorder Recorder
	schema   *jsonschema.Schema
	logger   *slog.Logger
}

// NewOutlineTool creates the course outline tool.
func NewOutlineTool(store OutlineProvider, recorder Recorder, logger *slog.Logger) (*OutlineTool, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("recorder is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	schema, err := jsonschema.For[OutlineInput](nil)
	if err != nil {
		return nil, fmt.Errorf("build outline input schema: %w", err)
	}

	return &OutlineTool{store: store, recorder: recorder, schema: schema, logger: logger}, nil
}

// Name implements Tool.
func (t *OutlineTool) Name() string { return OutlineToolName }

// Description implements Tool.
func (t *OutlineTool) Description() string {
	return "Get the complete outline of a course: its title, link and full lesson list. " +
		"Use for questions about course structure, lesson lists or what a course covers overall."
}

// InputSchema implements Tool.
func (t *OutlineTool) InputSchema() *jsonschema.Schema { return t.schema }

// Execute implements Tool.
func (t *OutlineTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	var in OutlineInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid outline input: %w", err)
	}
	if in.CourseName == "" {
		return "", fmt.Errorf("course_name is required")
	}

	t.logger.Info("outline tool called", "course_name", in.CourseName)

	crs, err := t.store.Outline(ctx, in.CourseName)
	if err != nil {
		if errors.Is(err, knowledge.ErrNoCourses) {
			return fmt.Sprintf("No course found matching '%s'.", in.CourseName), nil
		}
		return "", fmt.Errorf("retrieving course outline: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s\n", crs.Title)
	if crs.Link != "" {
		fmt.Fprintf(&b, "Course Link: %s\n", crs.Link)
	}
	fmt.Fprintf(&b, "Total Lessons: %d\n", len(crs.Lessons))
	for _, l := range crs.Lessons {
		fmt.Fprintf(&b, "Lesson %d: %s\n", l.Number, l.Title)
	}

	t.recorder.Record(Source{Label: crs.Title, Link: crs.Link})
	return strings.TrimRight(b.String(), "\n"), nil
}
