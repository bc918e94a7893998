package coursestore

import (
	"context"
	"sort"

	"github.com/iancoleman/strcase"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// EmbeddingFunc embeds a text for vector search.
type EmbeddingFunc func(ctx context.Context, text string) ([]float32, error)

// WeaviateStore keeps the catalog and content collections as two Weaviate
// classes. Vectors are computed locally and supplied with each object, so
// the classes use no server-side vectorizer.
type WeaviateStore struct {
	client       *weaviate.Client
	embed        EmbeddingFunc
	catalogClass string
	contentClass string
	maxResults   int
}

var _ Store = &WeaviateStore{}

type WeaviateOptions struct {
	Host              string
	Scheme            string
	CatalogCollection string
	ContentCollection string
	MaxResults        int
}

// className turns a collection name such as course_catalog into a valid
// Weaviate class name (CourseCatalog).
func className(collection string) string {
	return strcase.ToCamel(collection)
}

func NewWeaviateStore(ctx context.Context, embed EmbeddingFunc, opts WeaviateOptions) (*WeaviateStore, error) {
	if opts.Scheme == "" {
		opts.Scheme = "http"
	}
	co := ChromemOptions{
		CatalogCollection: opts.CatalogCollection,
		ContentCollection: opts.ContentCollection,
		MaxResults:        opts.MaxResults,
	}.withDefaults()

	client, err := weaviate.NewClient(weaviate.Config{Host: opts.Host, Scheme: opts.Scheme})
	if err != nil {
		return nil, errors.Wrap(err, "could not create weaviate client")
	}
	s := &WeaviateStore{
		client:       client,
		embed:        embed,
		catalogClass: className(co.CatalogCollection),
		contentClass: className(co.ContentCollection),
		maxResults:   co.MaxResults,
	}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func catalogSchema(class string) *models.Class {
	filterable := true
	return &models.Class{
		Class:       class,
		Description: "Course catalog entries, one per course",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{Name: "title", DataType: []string{"text"}, Tokenization: "field", IndexFilterable: &filterable},
			{Name: "instructor", DataType: []string{"text"}},
			{Name: "courseLink", DataType: []string{"text"}},
			{Name: "lessonCount", DataType: []string{"int"}},
			{Name: "lessonsJson", DataType: []string{"text"}},
		},
	}
}

func contentSchema(class string) *models.Class {
	filterable := true
	return &models.Class{
		Class:       class,
		Description: "Course content chunks",
		Vectorizer:  "none",
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "courseTitle", DataType: []string{"text"}, Tokenization: "field", IndexFilterable: &filterable},
			{Name: "lessonNumber", DataType: []string{"int"}, IndexFilterable: &filterable},
			{Name: "chunkIndex", DataType: []string{"int"}},
		},
	}
}

func (s *WeaviateStore) ensureSchema(ctx context.Context) error {
	for _, class := range []*models.Class{catalogSchema(s.catalogClass), contentSchema(s.contentClass)} {
		if _, err := s.client.Schema().ClassGetter().WithClassName(class.Class).Do(ctx); err == nil {
			continue
		}
		log.Info().Str("class", class.Class).Msg("coursestore: creating weaviate class")
		if err := s.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
			return errors.Wrapf(err, "could not create class %s", class.Class)
		}
	}
	return nil
}

func (s *WeaviateStore) Search(ctx context.Context, q SearchQuery) SearchResults {
	return search(ctx, s, q, s.maxResults)
}

func (s *WeaviateStore) ResolveCourseName(ctx context.Context, partial string) (string, bool) {
	return resolveCourseName(ctx, s, partial)
}

func (s *WeaviateStore) LessonLink(ctx context.Context, courseTitle string, lessonNumber int) (string, bool) {
	return lessonLink(ctx, s, courseTitle, lessonNumber)
}

func titleFilter(path string, title string) *filters.WhereBuilder {
	return filters.Where().
		WithPath([]string{path}).
		WithOperator(filters.Equal).
		WithValueText(title)
}

// contentWhere builds the filter for a content query, or nil when unconstrained.
func contentWhere(f contentFilter) *filters.WhereBuilder {
	var operands []*filters.WhereBuilder
	if f.CourseTitle != "" {
		operands = append(operands, titleFilter("courseTitle", f.CourseTitle))
	}
	if f.LessonNumber != nil {
		operands = append(operands, filters.Where().
			WithPath([]string{"lessonNumber"}).
			WithOperator(filters.Equal).
			WithValueInt(int64(*f.LessonNumber)))
	}
	switch len(operands) {
	case 0:
		return nil
	case 1:
		return operands[0]
	default:
		return filters.Where().WithOperator(filters.And).WithOperands(operands)
	}
}

var catalogFields = []graphql.Field{
	{Name: "title"},
	{Name: "instructor"},
	{Name: "courseLink"},
	{Name: "lessonsJson"},
}

func (s *WeaviateStore) getObjects(ctx context.Context, class string, fields []graphql.Field, where *filters.WhereBuilder, vector []float32, limit int) ([]map[string]interface{}, error) {
	get := s.client.GraphQL().Get().WithClassName(class).WithFields(fields...)
	if where != nil {
		get = get.WithWhere(where)
	}
	if vector != nil {
		get = get.WithNearVector(s.client.GraphQL().NearVectorArgBuilder().WithVector(vector))
	}
	if limit > 0 {
		get = get.WithLimit(limit)
	}
	result, err := get.Do(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "query on %s failed", class)
	}
	return parseGetResponse(result, class)
}

// parseGetResponse extracts the objects of one class from a GraphQL Get response.
func parseGetResponse(result *models.GraphQLResponse, class string) ([]map[string]interface{}, error) {
	if result == nil {
		return nil, nil
	}
	if len(result.Errors) > 0 {
		return nil, errors.Errorf("search error: %s", result.Errors[0].Message)
	}
	data, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	objects, ok := data[class].([]interface{})
	if !ok {
		return nil, nil
	}
	ret := make([]map[string]interface{}, 0, len(objects))
	for _, o := range objects {
		if m, ok := o.(map[string]interface{}); ok {
			ret = append(ret, m)
		}
	}
	return ret, nil
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// getInt reads a number property. JSON numbers decode as float64.
func getInt(m map[string]interface{}, key string) (int, bool) {
	switch v := m[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}

func courseFromObject(m map[string]interface{}) (*Course, error) {
	return courseFromMetadata(map[string]string{
		"title":        getString(m, "title"),
		"instructor":   getString(m, "instructor"),
		"course_link":  getString(m, "courseLink"),
		"lessons_json": getString(m, "lessonsJson"),
	})
}

func chunkFromObject(m map[string]interface{}) ChunkMetadata {
	ret := ChunkMetadata{CourseTitle: getString(m, "courseTitle")}
	if n, ok := getInt(m, "lessonNumber"); ok {
		ret.LessonNumber = &n
	}
	if n, ok := getInt(m, "chunkIndex"); ok {
		ret.ChunkIndex = n
	}
	return ret
}

func (s *WeaviateStore) CourseMetadata(ctx context.Context, title string) (*Course, error) {
	objs, err := s.getObjects(ctx, s.catalogClass, catalogFields, titleFilter("title", title), nil, 1)
	if err != nil {
		return nil, err
	}
	if len(objs) == 0 {
		return nil, errors.Wrap(ErrCourseNotFound, title)
	}
	return courseFromObject(objs[0])
}

func (s *WeaviateStore) CourseTitles(ctx context.Context) ([]string, error) {
	return s.courseTitles(ctx)
}

func (s *WeaviateStore) CourseCount(ctx context.Context) (int, error) {
	titles, err := s.courseTitles(ctx)
	if err != nil {
		return 0, err
	}
	return len(titles), nil
}

func (s *WeaviateStore) courseTitles(ctx context.Context) ([]string, error) {
	objs, err := s.getObjects(ctx, s.catalogClass, []graphql.Field{{Name: "title"}}, nil, nil, 0)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(objs))
	for _, o := range objs {
		if t := getString(o, "title"); t != "" {
			titles = append(titles, t)
		}
	}
	sort.Strings(titles)
	return titles, nil
}

func (s *WeaviateStore) nearestCourse(ctx context.Context, text string) (string, bool, error) {
	vec, err := s.embed(ctx, text)
	if err != nil {
		return "", false, errors.Wrap(err, "could not embed course name")
	}
	objs, err := s.getObjects(ctx, s.catalogClass, []graphql.Field{{Name: "title"}}, nil, vec, 1)
	if err != nil {
		return "", false, err
	}
	if len(objs) == 0 {
		return "", false, nil
	}
	title := getString(objs[0], "title")
	return title, title != "", nil
}

func (s *WeaviateStore) queryContent(ctx context.Context, text string, filter contentFilter, limit int) (SearchResults, error) {
	vec, err := s.embed(ctx, text)
	if err != nil {
		return SearchResults{}, errors.Wrap(err, "could not embed query")
	}
	fields := []graphql.Field{
		{Name: "content"},
		{Name: "courseTitle"},
		{Name: "lessonNumber"},
		{Name: "chunkIndex"},
		{Name: "_additional { distance }"},
	}
	objs, err := s.getObjects(ctx, s.contentClass, fields, contentWhere(filter), vec, limit)
	if err != nil {
		return SearchResults{}, err
	}

	ret := SearchResults{}
	for _, o := range objs {
		ret.Documents = append(ret.Documents, getString(o, "content"))
		ret.Metadata = append(ret.Metadata, chunkFromObject(o))
		var distance float32
		if additional, ok := o["_additional"].(map[string]interface{}); ok {
			if d, ok := additional["distance"].(float64); ok {
				distance = float32(d)
			}
		}
		ret.Distances = append(ret.Distances, distance)
	}
	return ret, nil
}

func (s *WeaviateStore) AddCourse(ctx context.Context, course Course) error {
	if err := course.Validate(); err != nil {
		return err
	}
	lessons, err := lessonsJSON(course)
	if err != nil {
		return err
	}

	for class, path := range map[string]string{s.catalogClass: "title", s.contentClass: "courseTitle"} {
		if _, err := s.client.Batch().ObjectsBatchDeleter().
			WithClassName(class).
			WithOutput("minimal").
			WithWhere(titleFilter(path, course.Title)).
			Do(ctx); err != nil {
			return errors.Wrapf(err, "could not remove previous objects of %q", course.Title)
		}
	}

	vec, err := s.embed(ctx, course.Title)
	if err != nil {
		return errors.Wrap(err, "could not embed course title")
	}
	if _, err := s.client.Data().Creator().
		WithClassName(s.catalogClass).
		WithProperties(map[string]interface{}{
			"title":       course.Title,
			"instructor":  course.Instructor,
			"courseLink":  course.Link,
			"lessonCount": len(course.Lessons),
			"lessonsJson": lessons,
		}).
		WithVector(vec).
		Do(ctx); err != nil {
		return errors.Wrap(err, "could not add catalog entry")
	}

	chunks := course.ContentChunks()
	objects := make([]*models.Object, 0, len(chunks))
	for _, c := range chunks {
		vec, err := s.embed(ctx, c.Content)
		if err != nil {
			return errors.Wrap(err, "could not embed chunk")
		}
		props := map[string]interface{}{
			"content":     c.Content,
			"courseTitle": c.Metadata.CourseTitle,
			"chunkIndex":  c.Metadata.ChunkIndex,
		}
		if c.Metadata.LessonNumber != nil {
			props["lessonNumber"] = *c.Metadata.LessonNumber
		}
		objects = append(objects, &models.Object{
			Class:      s.contentClass,
			Properties: props,
			Vector:     vec,
		})
	}
	if len(objects) == 0 {
		return nil
	}
	resp, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return errors.Wrap(err, "could not add content chunks")
	}
	for _, r := range resp {
		if r.Result != nil && r.Result.Errors != nil && len(r.Result.Errors.Error) > 0 {
			return errors.Errorf("could not add chunk: %s", r.Result.Errors.Error[0].Message)
		}
	}
	log.Debug().Str("course", course.Title).Int("chunks", len(objects)).Msg("coursestore: weaviate indexed course")
	return nil
}

func (s *WeaviateStore) Close() error {
	return nil
}
