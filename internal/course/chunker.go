package course

import (
	"fmt"
	"regexp"
	"strings"
)

// Chunker splits section text into overlapping, sentence-aligned chunks.
// Chunk boundaries never fall inside a sentence: a single sentence longer
// than the maximum size becomes its own oversized chunk.
type Chunker struct {
	maxSize int // maximum chunk size in characters
	overlap int // trailing-sentence overlap budget in characters
}

// NewChunker creates a chunker. Non-positive maxSize falls back to 800;
// negative overlap falls back to 0. Overlap is clamped below maxSize.
func NewChunker(maxSize, overlap int) *Chunker {
	if maxSize <= 0 {
		maxSize = 800
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxSize {
		overlap = maxSize - 1
	}
	return &Chunker{maxSize: maxSize, overlap: overlap}
}

// sentenceRe matches one sentence: a run of non-terminator characters
// followed by any run of terminators. A trailing fragment without terminal
// punctuation still matches, so no text is dropped.
var sentenceRe = regexp.MustCompile(`[^.!?]+[.!?]*`)

// splitSentences splits text into trimmed sentences, dropping empties.
func splitSentences(text string) []string {
	raw := sentenceRe.FindAllString(text, -1)
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// ChunkSection splits one section's text into chunk payloads (without the
// contextual header prefix). Sentences are packed greedily up to maxSize;
// each subsequent chunk re-opens with the trailing sentences of the
// previous chunk that fit within the overlap budget.
func (c *Chunker) ChunkSection(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	// joinedLen is the length of sentences joined with single spaces.
	add := func(s string) {
		if currentLen > 0 {
			currentLen++ // joining space
		}
		current = append(current, s)
		currentLen += len(s)
	}

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, " "))

		// Seed the next chunk with trailing sentences within the overlap
		// budget. The sentence that triggered the flush is added by the
		// caller afterwards.
		var tail []string
		tailLen := 0
		for i := len(current) - 1; i >= 0; i-- {
			n := len(current[i])
			if tailLen > 0 {
				n++
			}
			if tailLen+n > c.overlap {
				break
			}
			tail = append([]string{current[i]}, tail...)
			tailLen += n
		}
		current = tail
		currentLen = tailLen
	}

	for _, s := range sentences {
		need := len(s)
		if currentLen > 0 {
			need++
		}
		if currentLen+need > c.maxSize && currentLen > 0 {
			flush()
			// Re-check against the overlap seed; an oversized sentence
			// always stands alone.
			if currentLen > 0 && currentLen+len(s)+1 > c.maxSize {
				current = nil
				currentLen = 0
			}
		}
		add(s)
	}
	flush()

	// flush seeds an overlap tail even after the last sentence; a chunk
	// consisting only of that seed would duplicate content already emitted.
	return chunks
}

// ChunkCourse produces the full ordered chunk sequence for a course.
// Each chunk's content is prefixed with a deterministic contextual header
// so it is self-describing when returned standalone. chunk_index is
// assigned per course across all sections, not per lesson.
func (c *Chunker) ChunkCourse(crs *Course, sections []Section) []Chunk {
	var chunks []Chunk
	index := 0

	for _, sec := range sections {
		for _, payload := range c.ChunkSection(sec.Text) {
			var header string
			if sec.LessonNumber != nil {
				header = fmt.Sprintf("Course %s Lesson %d content: ", crs.Title, *sec.LessonNumber)
			} else {
				header = fmt.Sprintf("Course %s content: ", crs.Title)
			}
			chunks = append(chunks, Chunk{
				Content:      header + payload,
				CourseTitle:  crs.Title,
				LessonNumber: sec.LessonNumber,
				ChunkIndex:   index,
			})
			index++
		}
	}

	return chunks
}
