package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/knowledge"
)

// SearchToolName is the wire name of the course content search tool.
const SearchToolName = "search_course_content"

// SearchInput defines input for the search_course_content tool.
type SearchInput struct {
	Query        string `json:"query" jsonschema_description:"What to search for in the course content"`
	CourseName   string `json:"course_name,omitempty" jsonschema_description:"Course title (partial matches work, e.g. 'MCP', 'Introduction')"`
	LessonNumber *int   `json:"lesson_number,omitempty" jsonschema_description:"Specific lesson number to search within (e.g. 1, 2, 3)"`
}

// ContentSearcher is the slice of the vector index the search tool
// needs.
type ContentSearcher interface {
	Search(ctx context.Context, query string, opts ...knowledge.SearchOption) ([]knowledge.Result, error)
	LessonLink(courseTitle string, lesson int) string
}

// SearchTool answers content questions by semantic search over course
// chunks, optionally filtered by course and lesson.
type SearchTool struct {
	store    ContentSearcher
	recorder Recorder
	schema   *jsonschema.Schema
	logger   *slog.Logger
}

// NewSearchTool creates the course content search tool.
func NewSearchTool(store ContentSearcher, recorder Recorder, logger *slog.Logger) (*SearchTool, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("recorder is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	schema, err := jsonschema.For[SearchInput](nil)
	if err != nil {
		return nil, fmt.Errorf("build search input schema: %w", err)
	}

	return &SearchTool{store: store, recorder: recorder, schema: schema, logger: logger}, nil
}

// Name implements Tool.
func (t *SearchTool) Name() string { return SearchToolName }

// Description implements Tool.
func (t *SearchTool) Description() string {
	return "Search course materials with smart course name matching and lesson filtering. " +
		"Use for questions about specific course content or detailed educational materials. " +
		"The course_name filter accepts partial titles."
}

// InputSchema implements Tool.
func (t *SearchTool) InputSchema() *jsonschema.Schema { return t.schema }

// Execute implements Tool. Results are formatted one block per chunk,
// headed by course title and lesson number; an empty result set yields
// an explanatory message rather than an error.
func (t *SearchTool) Execute(ctx context.Context, input json.RawMessage) (string, error) {
	var in SearchInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("invalid search input: %w", err)
	}
	if in.Query == "" {
		return "", fmt.Errorf("query is required")
	}

	t.logger.Info("search tool called",
		"query", in.Query, "course_name", in.CourseName, "lesson_number", in.LessonNumber)

	opts := make([]knowledge.SearchOption, 0, 2)
	if in.CourseName != "" {
		opts = append(opts, knowledge.WithCourse(in.CourseName))
	}
	if in.LessonNumber != nil {
		opts = append(opts, knowledge.WithLesson(*in.LessonNumber))
	}

	results, err := t.store.Search(ctx, in.Query, opts...)
	if err != nil {
		if errors.Is(err, knowledge.ErrNoCourses) {
			return fmt.Sprintf("No course found matching '%s'.", in.CourseName), nil
		}
		return "", fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		return emptyMessage(in.CourseName, in.LessonNumber), nil
	}

	blocks := make([]string, 0, len(results))
	sources := make([]Source, 0, len(results))
	for _, res := range results {
		header := res.CourseTitle
		src := Source{Label: res.CourseTitle}
		if res.LessonNumber != nil {
			header = fmt.Sprintf("%s - Lesson %d", res.CourseTitle, *res.LessonNumber)
			src.Label = header
			src.Link = t.store.LessonLink(res.CourseTitle, *res.LessonNumber)
		}
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", header, res.Content))
		sources = append(sources, src)
	}

	t.recorder.Record(sources...)
	return strings.Join(blocks, "\n\n"), nil
}

// emptyMessage describes a no-result search, naming the filters that
// were in effect.
func emptyMessage(courseName string, lesson *int) string {
	var b strings.Builder
	b.WriteString("No relevant content found")
	if courseName != "" {
		fmt.Fprintf(&b, " in course '%s'", courseName)
	}
	if lesson != nil {
		fmt.Fprintf(&b, " in lesson %d", *lesson)
	}
	b.WriteString(".")
	return b.String()
}
