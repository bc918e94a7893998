package coursestore

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Courses []Course `yaml:"courses"`
}

// LoadCatalog reads pre-chunked courses from a YAML document of the form
//
//	courses:
//	  - title: Python Basics
//	    instructor: Jane Doe
//	    link: https://example.com/python
//	    lessons:
//	      - number: 1
//	        title: Variables
//	        link: https://example.com/python/1
//	        chunks: ["...", "..."]
func LoadCatalog(r io.Reader) ([]Course, error) {
	var f catalogFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, errors.Wrap(err, "could not decode catalog")
	}
	seen := map[string]bool{}
	for _, c := range f.Courses {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if seen[c.Title] {
			return nil, errors.Errorf("duplicate course %q in catalog", c.Title)
		}
		seen[c.Title] = true
	}
	return f.Courses, nil
}

func LoadCatalogFile(path string) ([]Course, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open catalog %s", path)
	}
	defer func() { _ = f.Close() }()
	return LoadCatalog(f)
}

// IngestCourses adds every course to the store and returns how many chunks
// were indexed.
func IngestCourses(ctx context.Context, store Store, courses []Course) (int, error) {
	total := 0
	for _, c := range courses {
		if err := store.AddCourse(ctx, c); err != nil {
			return total, errors.Wrapf(err, "could not add course %q", c.Title)
		}
		n := len(c.ContentChunks())
		total += n
		log.Info().Str("course", c.Title).Int("lessons", len(c.Lessons)).Int("chunks", n).Msg("coursestore: indexed course")
	}
	return total, nil
}

// lessonsJSON is the catalog's serialised lesson list. Chunks are excluded.
func lessonsJSON(c Course) (string, error) {
	lessons := c.SortedLessons()
	if lessons == nil {
		lessons = []Lesson{}
	}
	b, err := json.Marshal(lessons)
	if err != nil {
		return "", errors.Wrap(err, "could not encode lessons")
	}
	return string(b), nil
}

func courseToMetadata(c Course) (map[string]string, error) {
	lessons, err := lessonsJSON(c)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"title":        c.Title,
		"instructor":   c.Instructor,
		"course_link":  c.Link,
		"lesson_count": strconv.Itoa(len(c.Lessons)),
		"lessons_json": lessons,
	}, nil
}

func courseFromMetadata(m map[string]string) (*Course, error) {
	c := &Course{
		Title:      m["title"],
		Instructor: m["instructor"],
		Link:       m["course_link"],
	}
	if raw := m["lessons_json"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &c.Lessons); err != nil {
			return nil, errors.Wrapf(err, "could not decode lessons of %q", c.Title)
		}
	}
	return c, nil
}

func chunkToMetadata(m ChunkMetadata) map[string]string {
	ret := map[string]string{
		"course_title": m.CourseTitle,
		"chunk_index":  strconv.Itoa(m.ChunkIndex),
	}
	if m.LessonNumber != nil {
		ret["lesson_number"] = strconv.Itoa(*m.LessonNumber)
	}
	return ret
}

// chunkFromMetadata tolerates missing or malformed fields.
func chunkFromMetadata(m map[string]string) ChunkMetadata {
	ret := ChunkMetadata{CourseTitle: m["course_title"]}
	if v, err := strconv.Atoi(m["lesson_number"]); err == nil {
		ret.LessonNumber = &v
	}
	if v, err := strconv.Atoi(m["chunk_index"]); err == nil {
		ret.ChunkIndex = v
	}
	return ret
}
