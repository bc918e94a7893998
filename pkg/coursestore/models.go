package coursestore

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

type Lesson struct {
	Number int    `yaml:"number" json:"lesson_number"`
	Title  string `yaml:"title" json:"lesson_title"`
	Link   string `yaml:"link,omitempty" json:"lesson_link,omitempty"`
	// Chunks are the pre-split passages of the lesson. They are indexed in
	// the content collection and never stored with the catalog entry.
	Chunks []string `yaml:"chunks,omitempty" json:"-"`
}

// Course is the catalog entry of one course. Title is its unique identifier.
type Course struct {
	Title      string   `yaml:"title" json:"title"`
	Instructor string   `yaml:"instructor,omitempty" json:"instructor,omitempty"`
	Link       string   `yaml:"link,omitempty" json:"course_link,omitempty"`
	Lessons    []Lesson `yaml:"lessons,omitempty" json:"lessons,omitempty"`
	// Chunks that do not belong to a specific lesson.
	Chunks []string `yaml:"chunks,omitempty" json:"-"`
}

// SortedLessons returns the lessons ordered by number.
func (c Course) SortedLessons() []Lesson {
	ret := append([]Lesson(nil), c.Lessons...)
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Number < ret[j].Number })
	return ret
}

func (c Course) Lesson(n int) (Lesson, bool) {
	for _, l := range c.Lessons {
		if l.Number == n {
			return l, true
		}
	}
	return Lesson{}, false
}

// ContentChunks flattens the course into indexable chunks. Course level
// chunks come first, then lessons in order; ChunkIndex counts across the
// whole course. Blank chunks are skipped.
func (c Course) ContentChunks() []Chunk {
	var ret []Chunk
	idx := 0
	for _, text := range c.Chunks {
		if strings.TrimSpace(text) == "" {
			continue
		}
		ret = append(ret, Chunk{Content: text, Metadata: ChunkMetadata{CourseTitle: c.Title, ChunkIndex: idx}})
		idx++
	}
	for _, l := range c.SortedLessons() {
		n := l.Number
		for _, text := range l.Chunks {
			if strings.TrimSpace(text) == "" {
				continue
			}
			ret = append(ret, Chunk{Content: text, Metadata: ChunkMetadata{CourseTitle: c.Title, LessonNumber: &n, ChunkIndex: idx}})
			idx++
		}
	}
	return ret
}

func (c Course) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return errors.Errorf("course without title")
	}
	seen := map[int]bool{}
	for _, l := range c.Lessons {
		if seen[l.Number] {
			return errors.Errorf("course %q has duplicate lesson %d", c.Title, l.Number)
		}
		seen[l.Number] = true
	}
	return nil
}

type ChunkMetadata struct {
	CourseTitle  string
	LessonNumber *int
	ChunkIndex   int
}

type Chunk struct {
	Content  string
	Metadata ChunkMetadata
}

func chunkID(courseTitle string, idx int) string {
	return fmt.Sprintf("%s_%d", strings.ReplaceAll(courseTitle, " ", "_"), idx)
}

// SearchQuery is a semantic search over the content collection, optionally
// restricted to one course and one lesson.
type SearchQuery struct {
	Query        string
	CourseName   string
	LessonNumber *int
}

// SearchResults holds the matches of a search in rank order. A non-empty
// Error means the search could not run; Documents is then empty.
type SearchResults struct {
	Documents []string
	Metadata  []ChunkMetadata
	Distances []float32
	Error     string
}

func EmptyResults(errMsg string) SearchResults {
	return SearchResults{Error: errMsg}
}

func (r SearchResults) IsEmpty() bool {
	return len(r.Documents) == 0
}
