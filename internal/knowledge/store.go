package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/AjinkyaPawale1/starting-ragchatbot-codebase/internal/course"
)

// Collection names for the two-tier index.
const (
	// catalogCollection holds one document per course, embedded by title,
	// used for fuzzy course-name resolution.
	catalogCollection = "course_catalog"

	// contentCollection holds the chunked course material used for
	// semantic content search.
	contentCollection = "course_content"
)

// Metadata keys stored alongside indexed documents.
const (
	metaCourseTitle  = "course_title"
	metaLessonNumber = "lesson_number"
	metaChunkIndex   = "chunk_index"
)

// ErrNoCourses is returned when course-name resolution is attempted
// against an empty catalog.
var ErrNoCourses = errors.New("no courses indexed")

// Store manages the two-tier vector index over course material.
// The catalog tier resolves free-form course names to exact titles;
// the content tier answers filtered semantic search over chunks.
//
// Store is safe for concurrent use by multiple goroutines. Reads may
// run concurrently; ingestion is expected to happen once at startup.
type Store struct {
	db       *chromem.DB
	catalog  *chromem.Collection
	content  *chromem.Collection
	embedder Embedder
	logger   *slog.Logger

	maxResults int

	// mu guards the exact-title lookup tables backing outline and
	// lesson-link queries. chromem collections answer similarity
	// queries only, so exact lookups come from here. lessonChunks
	// counts indexed chunks per course and lesson so search can clamp
	// topK to the number of documents a filter can match, which chromem
	// requires.
	mu           sync.RWMutex
	courses      map[string]*course.Course
	chunkTotals  map[string]int
	lessonChunks map[string]map[int]int
}

// New creates a Store backed by an in-memory chromem-go database.
//
// Parameters:
//   - embedder: embedding provider for both tiers
//   - maxResults: default topK for content search (must be positive)
//   - logger: logger for debugging (nil = use default)
func New(embedder Embedder, maxResults int, logger *slog.Logger) (*Store, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder must not be nil")
	}
	if maxResults <= 0 {
		return nil, fmt.Errorf("maxResults must be positive, got %d", maxResults)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		db:           chromem.NewDB(),
		embedder:     embedder,
		logger:       logger,
		maxResults:   maxResults,
		courses:      make(map[string]*course.Course),
		chunkTotals:  make(map[string]int),
		lessonChunks: make(map[string]map[int]int),
	}

	if err := s.createCollections(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) createCollections() error {
	embedFunc := newEmbeddingFunc(s.embedder)

	catalog, err := s.db.GetOrCreateCollection(catalogCollection, nil, embedFunc)
	if err != nil {
		return fmt.Errorf("create catalog collection: %w", err)
	}

	content, err := s.db.GetOrCreateCollection(contentCollection, nil, embedFunc)
	if err != nil {
		return fmt.Errorf("create content collection: %w", err)
	}

	s.catalog = catalog
	s.content = content
	return nil
}

// AddCourse indexes a course and its chunks. The course title is the
// identity key: adding a course whose title is already indexed replaces
// its catalog entry and overwrites chunks at the same positions.
func (s *Store) AddCourse(ctx context.Context, crs *course.Course, chunks []course.Chunk) error {
	if crs == nil || crs.Title == "" {
		return fmt.Errorf("course must have a title")
	}

	// Drop the previous chunk set first: a re-ingested course with fewer
	// chunks must not leave stale tail documents searchable.
	s.mu.RLock()
	prior := s.chunkTotals[crs.Title]
	s.mu.RUnlock()
	if prior > 0 {
		if err := s.content.Delete(ctx, map[string]string{metaCourseTitle: crs.Title}, nil); err != nil {
			return fmt.Errorf("delete stale chunks for course %q: %w", crs.Title, err)
		}
	}

	// 1. Catalog entry, embedded by title.
	lessonsJSON, err := json.Marshal(crs.Lessons)
	if err != nil {
		return fmt.Errorf("marshal lessons for course %q: %w", crs.Title, err)
	}

	err = s.catalog.AddDocument(ctx, chromem.Document{
		ID:      crs.Title,
		Content: crs.Title,
		Metadata: map[string]string{
			"title":        crs.Title,
			"course_link":  crs.Link,
			"instructor":   crs.Instructor,
			"lessons_json": string(lessonsJSON),
			"lesson_count": strconv.Itoa(len(crs.Lessons)),
		},
	})
	if err != nil {
		return fmt.Errorf("add catalog entry for course %q: %w", crs.Title, err)
	}

	// 2. Content chunks, IDs derived from title and chunk index so
	// re-ingestion overwrites rather than duplicates.
	docs := make([]chromem.Document, 0, len(chunks))
	for _, ch := range chunks {
		metadata := map[string]string{
			metaCourseTitle: ch.CourseTitle,
			metaChunkIndex:  strconv.Itoa(ch.ChunkIndex),
		}
		if ch.LessonNumber != nil {
			metadata[metaLessonNumber] = strconv.Itoa(*ch.LessonNumber)
		}

		docs = append(docs, chromem.Document{
			ID:       fmt.Sprintf("%s:%d", ch.CourseTitle, ch.ChunkIndex),
			Content:  ch.Content,
			Metadata: metadata,
		})
	}

	if len(docs) > 0 {
		if err := s.content.AddDocuments(ctx, docs, 1); err != nil {
			return fmt.Errorf("add content chunks for course %q: %w", crs.Title, err)
		}
	}

	perLesson := make(map[int]int)
	for _, ch := range chunks {
		if ch.LessonNumber != nil {
			perLesson[*ch.LessonNumber]++
		}
	}

	s.mu.Lock()
	s.courses[crs.Title] = crs
	s.chunkTotals[crs.Title] = len(chunks)
	s.lessonChunks[crs.Title] = perLesson
	s.mu.Unlock()

	s.logger.Debug("indexed course", "title", crs.Title, "chunks", len(docs))
	return nil
}

// ResolveCourseName resolves a free-form course name to the exact stored
// title via semantic search over the catalog. With at least one course
// indexed it always resolves to the nearest title; it never rejects a
// poor match.
func (s *Store) ResolveCourseName(ctx context.Context, name string) (string, error) {
	if s.catalog.Count() == 0 {
		return "", ErrNoCourses
	}

	results, err := s.catalog.Query(ctx, name, 1, nil, nil)
	if err != nil {
		return "", fmt.Errorf("resolve course name %q: %w", name, err)
	}
	if len(results) == 0 {
		return "", ErrNoCourses
	}

	return results[0].ID, nil
}

// Search performs semantic search over course content using functional
// options.
//
// Example usage:
//
//	results, err := store.Search(ctx, "what is a neuron",
//	    knowledge.WithCourse("MCP"),
//	    knowledge.WithLesson(4))
func (s *Store) Search(ctx context.Context, query string, opts ...SearchOption) ([]Result, error) {
	cfg := buildSearchConfig(s.maxResults, opts)

	var title string
	if cfg.courseName != "" {
		resolved, err := s.ResolveCourseName(ctx, cfg.courseName)
		if err != nil {
			return nil, err
		}
		title = resolved
	}

	where := make(map[string]string)
	if title != "" {
		where[metaCourseTitle] = title
	}
	if cfg.lesson != nil {
		where[metaLessonNumber] = strconv.Itoa(*cfg.lesson)
	}
	if len(where) == 0 {
		where = nil
	}

	// chromem rejects nResults above the number of stored documents,
	// so clamp topK to how many documents the filter can match.
	topK := cfg.topK
	if limit := s.matchableChunks(title, cfg.lesson); limit < topK {
		topK = limit
	}
	if topK <= 0 {
		return []Result{}, nil
	}

	rows, err := s.content.Query(ctx, query, topK, where, nil)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	return s.rowsToResults(rows), nil
}

// matchableChunks returns how many indexed chunks a course/lesson
// filter can match. An empty title means no course filter.
func (s *Store) matchableChunks(title string, lesson *int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case title != "" && lesson != nil:
		return s.lessonChunks[title][*lesson]
	case title != "":
		return s.chunkTotals[title]
	case lesson != nil:
		total := 0
		for _, perLesson := range s.lessonChunks {
			total += perLesson[*lesson]
		}
		return total
	default:
		return s.content.Count()
	}
}

// rowsToResults converts chromem query results to business model Results.
func (s *Store) rowsToResults(rows []chromem.Result) []Result {
	results := make([]Result, 0, len(rows))

	for _, row := range rows {
		r := Result{
			Content:     row.Content,
			CourseTitle: row.Metadata[metaCourseTitle],
			Similarity:  row.Similarity,
		}

		if v, ok := row.Metadata[metaLessonNumber]; ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				s.logger.Warn("malformed lesson number metadata", "document_id", row.ID, "value", v)
			} else {
				r.LessonNumber = &n
			}
		}

		if v, ok := row.Metadata[metaChunkIndex]; ok {
			if n, err := strconv.Atoi(v); err == nil {
				r.ChunkIndex = n
			}
		}

		results = append(results, r)
	}

	return results
}

// CourseCount returns the number of indexed courses.
func (s *Store) CourseCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.courses)
}

// CourseTitles returns the exact titles of all indexed courses in
// lexical order.
func (s *Store) CourseTitles() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	titles := make([]string, 0, len(s.courses))
	for title := range s.courses {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}

// Outline resolves name to a course and returns its full structure:
// title, link and the ordered lesson list.
func (s *Store) Outline(ctx context.Context, name string) (*course.Course, error) {
	title, err := s.ResolveCourseName(ctx, name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	crs, ok := s.courses[title]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("course %q resolved but missing from catalog", title)
	}

	return crs, nil
}

// LessonLink returns the link for a lesson of the exactly titled course.
// It returns an empty string when the course, the lesson or its link is
// unknown.
func (s *Store) LessonLink(courseTitle string, lesson int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	crs, ok := s.courses[courseTitle]
	if !ok {
		return ""
	}
	for _, l := range crs.Lessons {
		if l.Number == lesson {
			return l.Link
		}
	}
	return ""
}

// CourseLink returns the link for the exactly titled course, or an
// empty string when unknown.
func (s *Store) CourseLink(courseTitle string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if crs, ok := s.courses[courseTitle]; ok {
		return crs.Link
	}
	return ""
}

// Clear drops both collections and the catalog table, leaving an empty
// index ready for re-ingestion.
func (s *Store) Clear() error {
	if err := s.db.DeleteCollection(catalogCollection); err != nil {
		return fmt.Errorf("delete catalog collection: %w", err)
	}
	if err := s.db.DeleteCollection(contentCollection); err != nil {
		return fmt.Errorf("delete content collection: %w", err)
	}
	if err := s.createCollections(); err != nil {
		return err
	}

	s.mu.Lock()
	s.courses = make(map[string]*course.Course)
	s.chunkTotals = make(map[string]int)
	s.lessonChunks = make(map[string]map[int]int)
	s.mu.Unlock()

	s.logger.Debug("cleared index")
	return nil
}
