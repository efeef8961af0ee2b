// Package rag wires document processing, the vector index, tools,
// session history and the answer generator into one query pipeline.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/course"
	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/tools"
)

// Indexer is the slice of the vector index the orchestrator needs.
type Indexer interface {
	AddCourse(ctx context.Context, crs *course.Course, chunks []course.Chunk) error
	CourseTitles() []string
	CourseCount() int
	Clear() error
}

// AnswerGenerator produces an answer for a query given formatted
// history and the tools to advertise.
type AnswerGenerator interface {
	Answer(ctx context.Context, query, history string, defs []tools.Definition) (string, error)
}

// SessionStore is the slice of session management the orchestrator
// needs.
type SessionStore interface {
	Create() string
	FormattedHistory(sessionID string) string
	AddExchange(sessionID, query, answer string)
}

// Analytics summarizes the indexed corpus.
type Analytics struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

// System orchestrates the full pipeline: ingestion on one side, the
// query loop on the other.
type System struct {
	chunker   *course.Chunker
	index     Indexer
	registry  *tools.Registry
	generator AnswerGenerator
	sessions  SessionStore
	logger    *slog.Logger
}

// New creates a System from its components.
func New(chunker *course.Chunker, index Indexer, registry *tools.Registry, gen AnswerGenerator, sessions SessionStore, logger *slog.Logger) (*System, error) {
	if chunker == nil {
		return nil, fmt.Errorf("chunker is required")
	}
	if index == nil {
		return nil, fmt.Errorf("index is required")
	}
	if registry == nil {
		return nil, fmt.Errorf("tool registry is required")
	}
	if gen == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &System{
		chunker:   chunker,
		index:     index,
		registry:  registry,
		generator: gen,
		sessions:  sessions,
		logger:    logger,
	}, nil
}

// AddCourseDocument parses, chunks and indexes one course document.
// It returns the parsed course and the number of chunks indexed.
func (s *System) AddCourseDocument(ctx context.Context, path string) (*course.Course, int, error) {
	text, err := course.ExtractText(path)
	if err != nil {
		return nil, 0, fmt.Errorf("extract %s: %w", path, err)
	}

	crs, sections, err := course.ParseDocument(filepath.Base(path), strings.NewReader(text))
	if err != nil {
		return nil, 0, fmt.Errorf("parse %s: %w", path, err)
	}

	chunks := s.chunker.ChunkCourse(crs, sections)

	if err := s.index.AddCourse(ctx, crs, chunks); err != nil {
		return nil, 0, fmt.Errorf("index %s: %w", crs.Title, err)
	}

	s.logger.Info("added course document",
		"path", path, "course", crs.Title, "chunks", len(chunks))
	return crs, len(chunks), nil
}

// AddCourseFolder ingests every supported document in dir. Courses
// whose titles are already indexed are skipped so repeated startups do
// not re-embed the corpus. With clearExisting the index is wiped
// first. Individual document failures are logged and skipped.
// It returns the number of courses and chunks added.
func (s *System) AddCourseFolder(ctx context.Context, dir string, clearExisting bool) (int, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read course folder: %w", err)
	}

	if clearExisting {
		s.logger.Info("clearing existing index")
		if err := s.index.Clear(); err != nil {
			return 0, 0, fmt.Errorf("clear index: %w", err)
		}
	}

	existing := make(map[string]bool)
	for _, title := range s.index.CourseTitles() {
		existing[title] = true
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !course.SupportedExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	totalCourses, totalChunks := 0, 0
	for _, name := range names {
		path := filepath.Join(dir, name)

		text, err := course.ExtractText(path)
		if err != nil {
			s.logger.Warn("skipping unreadable document", "path", path, "error", err)
			continue
		}

		crs, sections, err := course.ParseDocument(name, strings.NewReader(text))
		if err != nil {
			s.logger.Warn("skipping malformed document", "path", path, "error", err)
			continue
		}

		if existing[crs.Title] {
			s.logger.Debug("course already indexed, skipping", "course", crs.Title)
			continue
		}

		chunks := s.chunker.ChunkCourse(crs, sections)
		if err := s.index.AddCourse(ctx, crs, chunks); err != nil {
			s.logger.Warn("failed to index course", "course", crs.Title, "error", err)
			continue
		}

		existing[crs.Title] = true
		totalCourses++
		totalChunks += len(chunks)
		s.logger.Info("indexed course", "course", crs.Title, "chunks", len(chunks))
	}

	return totalCourses, totalChunks, nil
}

// Query answers a user question, returning the answer text and the
// sources the tools consulted. A non-empty sessionID carries prior
// conversation into the prompt and records the new exchange.
func (s *System) Query(ctx context.Context, query, sessionID string) (string, []tools.Source, error) {
	// A failed generation can leave tool sources behind; start clean so
	// sources reflect only this query.
	s.registry.Reset()

	var history string
	if sessionID != "" {
		history = s.sessions.FormattedHistory(sessionID)
	}

	prompt := fmt.Sprintf("Answer this question about course materials: %s", query)

	answer, err := s.generator.Answer(ctx, prompt, history, s.registry.Definitions())
	if err != nil {
		return "", nil, fmt.Errorf("generate answer: %w", err)
	}

	sources := s.registry.LastSources()
	s.registry.Reset()

	if sessionID != "" {
		s.sessions.AddExchange(sessionID, query, answer)
	}

	return answer, sources, nil
}

// CreateSession starts a new conversation session.
func (s *System) CreateSession() string {
	return s.sessions.Create()
}

// CourseAnalytics reports how many courses are indexed and their
// titles.
func (s *System) CourseAnalytics() Analytics {
	return Analytics{
		TotalCourses: s.index.CourseCount(),
		CourseTitles: s.index.CourseTitles(),
	}
}
