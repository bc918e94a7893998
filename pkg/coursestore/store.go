package coursestore

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrCourseNotFound is returned when a course title has no catalog entry.
var ErrCourseNotFound = errors.New("course not found")

type Searcher interface {
	Search(ctx context.Context, q SearchQuery) SearchResults
}

type CourseResolver interface {
	// ResolveCourseName maps a possibly partial course name to an exact title.
	ResolveCourseName(ctx context.Context, partial string) (string, bool)
}

type LessonLinker interface {
	LessonLink(ctx context.Context, courseTitle string, lessonNumber int) (string, bool)
}

type CatalogReader interface {
	// CourseMetadata returns the catalog entry, or ErrCourseNotFound.
	CourseMetadata(ctx context.Context, title string) (*Course, error)
	CourseTitles(ctx context.Context) ([]string, error)
	CourseCount(ctx context.Context) (int, error)
}

// Store is a course index with both catalog and content collections.
type Store interface {
	Searcher
	CourseResolver
	LessonLinker
	CatalogReader
	// AddCourse indexes the catalog entry and all chunks of a course,
	// replacing an existing course with the same title.
	AddCourse(ctx context.Context, course Course) error
	Close() error
}

// contentFilter restricts a content query. Empty fields are unconstrained.
type contentFilter struct {
	CourseTitle  string
	LessonNumber *int
}

// backend is the part of a store that differs per vector database.
type backend interface {
	nearestCourse(ctx context.Context, text string) (string, bool, error)
	courseTitles(ctx context.Context) ([]string, error)
	queryContent(ctx context.Context, text string, filter contentFilter, limit int) (SearchResults, error)
}

// search resolves the course filter first, then queries the content
// collection. Resolution and backend failures are reported in the results.
func search(ctx context.Context, b backend, q SearchQuery, limit int) SearchResults {
	filter := contentFilter{LessonNumber: q.LessonNumber}
	if q.CourseName != "" {
		title, ok := resolveCourseName(ctx, b, q.CourseName)
		if !ok {
			return EmptyResults(fmt.Sprintf("No course found matching '%s'", q.CourseName))
		}
		filter.CourseTitle = title
	}

	res, err := b.queryContent(ctx, q.Query, filter, limit)
	if err != nil {
		log.Debug().Err(err).Str("query", q.Query).Msg("coursestore: content query failed")
		return EmptyResults(fmt.Sprintf("Search error: %s", errors.Cause(err).Error()))
	}
	return res
}

// resolveCourseName prefers a case-insensitive exact or substring title
// match and falls back to the nearest catalog entry.
func resolveCourseName(ctx context.Context, b backend, partial string) (string, bool) {
	partial = strings.TrimSpace(partial)
	if partial == "" {
		return "", false
	}

	titles, err := b.courseTitles(ctx)
	if err != nil {
		log.Debug().Err(err).Msg("coursestore: listing titles failed")
	}
	needle := strings.ToLower(partial)
	var contains []string
	for _, t := range titles {
		lower := strings.ToLower(t)
		if lower == needle {
			return t, true
		}
		if strings.Contains(lower, needle) {
			contains = append(contains, t)
		}
	}
	if len(contains) == 1 {
		return contains[0], true
	}

	title, ok, err := b.nearestCourse(ctx, partial)
	if err != nil {
		log.Debug().Err(err).Str("course_name", partial).Msg("coursestore: course resolution failed")
		return "", false
	}
	return title, ok
}

// lessonLink looks up a lesson's link through the catalog.
func lessonLink(ctx context.Context, r CatalogReader, title string, n int) (string, bool) {
	c, err := r.CourseMetadata(ctx, title)
	if err != nil {
		return "", false
	}
	l, ok := c.Lesson(n)
	if !ok || l.Link == "" {
		return "", false
	}
	return l.Link, true
}
