package knowledge

// Result represents a single content search result with similarity score.
type Result struct {
	Content      string  // chunk text, including its contextual header
	CourseTitle  string  // owning course title (exact stored title)
	LessonNumber *int    // nil for course-level framing text
	ChunkIndex   int     // position within the course's chunk sequence
	Similarity   float32 // cosine similarity score (0-1)
}

// SearchOption configures search behavior using the functional options
// pattern.
type SearchOption func(*searchConfig)

// searchConfig holds internal search configuration.
type searchConfig struct {
	topK       int
	courseName string
	lesson     *int
}

// WithTopK sets the maximum number of results to return.
// Non-positive values keep the store default.
func WithTopK(k int) SearchOption {
	return func(c *searchConfig) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithCourse restricts results to one course. The name need not be the
// exact stored title: it is passed through fuzzy course-name resolution
// before filtering.
func WithCourse(name string) SearchOption {
	return func(c *searchConfig) {
		c.courseName = name
	}
}

// WithLesson restricts results to one lesson number.
func WithLesson(n int) SearchOption {
	return func(c *searchConfig) {
		c.lesson = &n
	}
}

// buildSearchConfig applies search options over the store default topK.
func buildSearchConfig(defaultTopK int, opts []SearchOption) *searchConfig {
	cfg := &searchConfig{topK: defaultTopK}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
