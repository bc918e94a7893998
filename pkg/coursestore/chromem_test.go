package coursestore

import (
	"context"
	"strings"
	"testing"

	"github.com/go-go-golems/coursebot/pkg/embeddings"
	"github.com/philippgille/chromem-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChromemStore(t *testing.T) *ChromemStore {
	t.Helper()
	p := embeddings.NewHashProvider(64)
	s, err := NewChromemStore(chromem.NewDB(), chromem.EmbeddingFunc(embeddings.Func(p)), ChromemOptions{MaxResults: 3})
	require.NoError(t, err)
	return s
}

func ingestTestCatalog(t *testing.T, s Store) {
	t.Helper()
	courses, err := LoadCatalog(strings.NewReader(testCatalog))
	require.NoError(t, err)
	n, err := IngestCourses(context.Background(), s, courses)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestChromemStore_Catalog(t *testing.T) {
	ctx := context.Background()
	s := newTestChromemStore(t)
	ingestTestCatalog(t, s)

	count, err := s.CourseCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	titles, err := s.CourseTitles(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go Concurrency", "Python Basics"}, titles)

	c, err := s.CourseMetadata(ctx, "Python Basics")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", c.Instructor)

	_, err = s.CourseMetadata(ctx, "Rust")
	assert.True(t, errors.Is(err, ErrCourseNotFound))
}

func TestChromemStore_ResolveCourseName(t *testing.T) {
	ctx := context.Background()
	s := newTestChromemStore(t)

	_, ok := s.ResolveCourseName(ctx, "python")
	assert.False(t, ok, "empty catalog resolves nothing")

	ingestTestCatalog(t, s)

	title, ok := s.ResolveCourseName(ctx, "python")
	require.True(t, ok)
	assert.Equal(t, "Python Basics", title)

	title, ok = s.ResolveCourseName(ctx, "GO CONCURRENCY")
	require.True(t, ok)
	assert.Equal(t, "Go Concurrency", title)
}

func TestChromemStore_SearchWithFilters(t *testing.T) {
	ctx := context.Background()
	s := newTestChromemStore(t)
	ingestTestCatalog(t, s)

	lesson := 2
	res := s.Search(ctx, SearchQuery{Query: "python variables", CourseName: "python", LessonNumber: &lesson})
	require.Empty(t, res.Error)
	require.Len(t, res.Documents, 1)
	assert.Contains(t, res.Documents[0], "Variables store values")
	require.NotNil(t, res.Metadata[0].LessonNumber)
	assert.Equal(t, 2, *res.Metadata[0].LessonNumber)
	assert.Equal(t, "Python Basics", res.Metadata[0].CourseTitle)
	require.Len(t, res.Distances, 1)

	res = s.Search(ctx, SearchQuery{Query: "goroutines", CourseName: "Go Concurrency"})
	require.Empty(t, res.Error)
	for _, m := range res.Metadata {
		assert.Equal(t, "Go Concurrency", m.CourseTitle)
	}

	res = s.Search(ctx, SearchQuery{Query: "anything"})
	require.Empty(t, res.Error)
	assert.Len(t, res.Documents, 3, "unfiltered search is capped by max results")
}

func TestChromemStore_SearchUnknownCourse(t *testing.T) {
	s := newTestChromemStore(t)
	res := s.Search(context.Background(), SearchQuery{Query: "x", CourseName: "NonExistent"})
	assert.Equal(t, "No course found matching 'NonExistent'", res.Error)
	assert.True(t, res.IsEmpty())
}

func TestChromemStore_LessonLink(t *testing.T) {
	ctx := context.Background()
	s := newTestChromemStore(t)
	ingestTestCatalog(t, s)

	link, ok := s.LessonLink(ctx, "Python Basics", 2)
	require.True(t, ok)
	assert.Equal(t, "https://example.com/python/2", link)

	_, ok = s.LessonLink(ctx, "Python Basics", 1)
	assert.False(t, ok, "lesson without link")
	_, ok = s.LessonLink(ctx, "Python Basics", 9)
	assert.False(t, ok)
}

func TestChromemStore_AddCourseReplacesChunks(t *testing.T) {
	ctx := context.Background()
	s := newTestChromemStore(t)
	ingestTestCatalog(t, s)

	require.NoError(t, s.AddCourse(ctx, Course{
		Title:   "Python Basics",
		Lessons: []Lesson{{Number: 1, Title: "Everything", Chunks: []string{"Rewritten material."}}},
	}))

	count, err := s.CourseCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	res := s.Search(ctx, SearchQuery{Query: "material", CourseName: "Python Basics"})
	require.Empty(t, res.Error)
	require.Len(t, res.Documents, 1)
	assert.Equal(t, "Rewritten material.", res.Documents[0])
}
