package coursestore

import (
	"context"
	"runtime"
	"sort"
	"strconv"

	"github.com/philippgille/chromem-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ChromemStore keeps the catalog and content collections in an embedded
// chromem database, in memory or persisted to a directory.
type ChromemStore struct {
	db         *chromem.DB
	catalog    *chromem.Collection
	content    *chromem.Collection
	maxResults int
}

var _ Store = &ChromemStore{}

type ChromemOptions struct {
	CatalogCollection string
	ContentCollection string
	MaxResults        int
}

func (o ChromemOptions) withDefaults() ChromemOptions {
	if o.CatalogCollection == "" {
		o.CatalogCollection = "course_catalog"
	}
	if o.ContentCollection == "" {
		o.ContentCollection = "course_content"
	}
	if o.MaxResults <= 0 {
		o.MaxResults = 5
	}
	return o
}

// OpenChromemDB opens a persistent database at path, or an in-memory one
// when path is empty.
func OpenChromemDB(path string, compress bool) (*chromem.DB, error) {
	if path == "" {
		return chromem.NewDB(), nil
	}
	db, err := chromem.NewPersistentDB(path, compress)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open chromem database at %s", path)
	}
	return db, nil
}

func NewChromemStore(db *chromem.DB, embed chromem.EmbeddingFunc, opts ChromemOptions) (*ChromemStore, error) {
	opts = opts.withDefaults()
	catalog, err := db.GetOrCreateCollection(opts.CatalogCollection, nil, embed)
	if err != nil {
		return nil, errors.Wrap(err, "could not open catalog collection")
	}
	content, err := db.GetOrCreateCollection(opts.ContentCollection, nil, embed)
	if err != nil {
		return nil, errors.Wrap(err, "could not open content collection")
	}
	return &ChromemStore{
		db:         db,
		catalog:    catalog,
		content:    content,
		maxResults: opts.MaxResults,
	}, nil
}

func (s *ChromemStore) Search(ctx context.Context, q SearchQuery) SearchResults {
	return search(ctx, s, q, s.maxResults)
}

func (s *ChromemStore) ResolveCourseName(ctx context.Context, partial string) (string, bool) {
	return resolveCourseName(ctx, s, partial)
}

func (s *ChromemStore) LessonLink(ctx context.Context, courseTitle string, lessonNumber int) (string, bool) {
	return lessonLink(ctx, s, courseTitle, lessonNumber)
}

func (s *ChromemStore) CourseMetadata(ctx context.Context, title string) (*Course, error) {
	if s.catalog.Count() == 0 {
		return nil, errors.Wrap(ErrCourseNotFound, title)
	}
	res, err := s.catalog.Query(ctx, title, 1, map[string]string{"title": title}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "catalog query failed")
	}
	if len(res) == 0 {
		return nil, errors.Wrap(ErrCourseNotFound, title)
	}
	return courseFromMetadata(res[0].Metadata)
}

func (s *ChromemStore) CourseTitles(ctx context.Context) ([]string, error) {
	return s.courseTitles(ctx)
}

func (s *ChromemStore) CourseCount(ctx context.Context) (int, error) {
	return s.catalog.Count(), nil
}

func (s *ChromemStore) AddCourse(ctx context.Context, course Course) error {
	if err := course.Validate(); err != nil {
		return err
	}
	meta, err := courseToMetadata(course)
	if err != nil {
		return err
	}
	if err := s.catalog.AddDocument(ctx, chromem.Document{
		ID:       course.Title,
		Metadata: meta,
		Content:  course.Title,
	}); err != nil {
		return errors.Wrap(err, "could not add catalog entry")
	}

	if s.content.Count() > 0 {
		if err := s.content.Delete(ctx, map[string]string{"course_title": course.Title}, nil); err != nil {
			return errors.Wrap(err, "could not remove previous chunks")
		}
	}
	chunks := course.ContentChunks()
	if len(chunks) == 0 {
		return nil
	}
	docs := make([]chromem.Document, 0, len(chunks))
	for _, c := range chunks {
		docs = append(docs, chromem.Document{
			ID:       chunkID(c.Metadata.CourseTitle, c.Metadata.ChunkIndex),
			Metadata: chunkToMetadata(c.Metadata),
			Content:  c.Content,
		})
	}
	if err := s.content.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return errors.Wrap(err, "could not add content chunks")
	}
	log.Debug().Str("course", course.Title).Int("chunks", len(docs)).Msg("coursestore: chromem indexed course")
	return nil
}

// Close is a no-op; persistent databases write through on every change.
func (s *ChromemStore) Close() error {
	return nil
}

func (s *ChromemStore) nearestCourse(ctx context.Context, text string) (string, bool, error) {
	if s.catalog.Count() == 0 {
		return "", false, nil
	}
	res, err := s.catalog.Query(ctx, text, 1, nil, nil)
	if err != nil {
		return "", false, err
	}
	if len(res) == 0 {
		return "", false, nil
	}
	title := res[0].Metadata["title"]
	return title, title != "", nil
}

func (s *ChromemStore) courseTitles(ctx context.Context) ([]string, error) {
	n := s.catalog.Count()
	if n == 0 {
		return nil, nil
	}
	res, err := s.catalog.Query(ctx, "course", n, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "catalog query failed")
	}
	titles := make([]string, 0, len(res))
	for _, r := range res {
		titles = append(titles, r.Metadata["title"])
	}
	sort.Strings(titles)
	return titles, nil
}

func (s *ChromemStore) queryContent(ctx context.Context, text string, filter contentFilter, limit int) (SearchResults, error) {
	n := min(limit, s.content.Count())
	if n <= 0 {
		return SearchResults{}, nil
	}
	where := map[string]string{}
	if filter.CourseTitle != "" {
		where["course_title"] = filter.CourseTitle
	}
	if filter.LessonNumber != nil {
		where["lesson_number"] = strconv.Itoa(*filter.LessonNumber)
	}
	if len(where) == 0 {
		where = nil
	}

	res, err := s.content.Query(ctx, text, n, where, nil)
	if err != nil {
		return SearchResults{}, err
	}
	ret := SearchResults{}
	for _, r := range res {
		ret.Documents = append(ret.Documents, r.Content)
		ret.Metadata = append(ret.Metadata, chunkFromMetadata(r.Metadata))
		ret.Distances = append(ret.Distances, 1-r.Similarity)
	}
	return ret, nil
}
