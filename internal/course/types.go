// Package course defines the course document model and turns raw course
// scripts into indexable chunks.
//
// A course document is plain text with a labeled header block followed by
// lesson sections:
//
//	Course Title: Intro to X
//	Course Link: https://example.com/x
//	Course Instructor: Jane Doe
//
//	Lesson 0: Introduction
//	Lesson Link: https://example.com/x/0
//	<lesson text...>
//
//	Lesson 1: ...
package course

// Course is the parsed metadata of one course document. The title is the
// unique natural key across the whole system.
type Course struct {
	Title      string   `json:"title"`
	Link       string   `json:"course_link,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

// Lesson is one lesson within a course. Number is unique within the course.
type Lesson struct {
	Number int    `json:"lesson_number"`
	Title  string `json:"lesson_title"`
	Link   string `json:"lesson_link,omitempty"`
}

// Section is the raw text of one lesson (or of course-level framing text
// when LessonNumber is nil), as produced by the parser.
type Section struct {
	LessonNumber *int
	Text         string
}

// Chunk is the atomic unit of semantic retrieval: a span of section text
// prefixed with a contextual header naming its course and lesson.
// LessonNumber is nil for chunks from course-level framing text.
// ChunkIndex is the 0-based position within the course's full ordered
// chunk sequence, across all lessons.
type Chunk struct {
	Content      string
	CourseTitle  string
	LessonNumber *int
	ChunkIndex   int
}
