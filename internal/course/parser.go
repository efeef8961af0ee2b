package course

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedDocument indicates a document whose mandatory header block
// (course title line) is missing. Such documents are skipped wholesale;
// there is no partial import.
var ErrMalformedDocument = errors.New("malformed course document")

// Header labels. Lines are matched by label, not position, so the three
// header lines may appear in any order.
const (
	labelTitle      = "Course Title:"
	labelLink       = "Course Link:"
	labelInstructor = "Course Instructor:"
	labelLessonLink = "Lesson Link:"
)

// lessonMarkerRe matches a lesson marker line: "Lesson <N>: <title>".
var lessonMarkerRe = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)

// ParseDocument parses one raw course document into course metadata and an
// ordered list of sections, one per lesson. Text before the first lesson
// marker (after the header block) becomes a course-level section with no
// lesson number.
//
// name identifies the document in error messages, typically the file path.
func ParseDocument(name string, r io.Reader) (*Course, []Section, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	c := &Course{}
	var sections []Section

	// Current accumulation state. lessonNumber is nil while reading the
	// course-level preamble.
	var lessonNumber *int
	var body []string

	flush := func() {
		text := strings.TrimSpace(strings.Join(body, "\n"))
		body = body[:0]
		if text == "" {
			return
		}
		sections = append(sections, Section{LessonNumber: lessonNumber, Text: text})
	}

	inHeader := true
	expectLessonLink := false

	for scanner.Scan() {
		line := scanner.Text()

		if m := lessonMarkerRe.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			inHeader = false
			flush()

			n, err := strconv.Atoi(m[1])
			if err != nil {
				// \d+ guarantees digits; overflow is the only failure mode.
				return nil, nil, fmt.Errorf("%w: lesson number %q: %v", ErrMalformedDocument, m[1], err)
			}
			c.Lessons = append(c.Lessons, Lesson{Number: n, Title: strings.TrimSpace(m[2])})
			num := n
			lessonNumber = &num
			expectLessonLink = true
			continue
		}

		// An optional "Lesson Link:" line directly after a marker belongs
		// to the lesson metadata, not the section text.
		if expectLessonLink {
			expectLessonLink = false
			if link, ok := cutLabel(line, labelLessonLink); ok {
				c.Lessons[len(c.Lessons)-1].Link = link
				continue
			}
		}

		if inHeader {
			switch {
			case matchLabel(line, labelTitle):
				c.Title, _ = cutLabel(line, labelTitle)
				continue
			case matchLabel(line, labelLink):
				c.Link, _ = cutLabel(line, labelLink)
				continue
			case matchLabel(line, labelInstructor):
				c.Instructor, _ = cutLabel(line, labelInstructor)
				continue
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			// First non-label, non-blank line ends the header block and
			// starts the course-level preamble.
			inHeader = false
		}

		body = append(body, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", name, err)
	}

	flush()

	if c.Title == "" {
		return nil, nil, fmt.Errorf("%w: %s: missing %q header line", ErrMalformedDocument, name, labelTitle)
	}

	return c, sections, nil
}

// matchLabel reports whether line starts with the given header label.
func matchLabel(line, label string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), label)
}

// cutLabel returns the trimmed value after the label, and whether the line
// carried the label at all.
func cutLabel(line, label string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, label) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, label)), true
}
