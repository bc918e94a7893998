package coursetools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-go-golems/coursebot/pkg/coursestore"
	"github.com/go-go-golems/coursebot/pkg/inference/tools"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const SearchToolName = "search_course_content"

type SearchInput struct {
	Query        string `json:"query" jsonschema:"description=What to search for in the course content"`
	CourseName   string `json:"course_name,omitempty" jsonschema:"description=Course title (partial matches work, e.g. 'MCP', 'Introduction')"`
	LessonNumber *int   `json:"lesson_number,omitempty" jsonschema:"description=Specific lesson number to search within (e.g. 1, 2, 3)"`
}

// SearchContentStore is what the search tool needs from a course index.
type SearchContentStore interface {
	coursestore.Searcher
	coursestore.LessonLinker
}

// SearchTool runs a filtered semantic search over course content and cites
// every passage it returns.
type SearchTool struct {
	store SearchContentStore
}

var _ tools.CitableTool = &SearchTool{}

func NewSearchTool(store SearchContentStore) *SearchTool {
	return &SearchTool{store: store}
}

func (t *SearchTool) Definition() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        SearchToolName,
		Description: "Search course materials with smart course name matching and lesson filtering",
		InputSchema: tools.SchemaFor[SearchInput](),
	}
}

func (t *SearchTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	out, _, err := t.ExecuteCited(ctx, args)
	return out, err
}

// ExecuteCited searches and formats the matches. Search service errors and
// empty results are returned as text for the model, not as errors.
func (t *SearchTool) ExecuteCited(ctx context.Context, args json.RawMessage) (string, []tools.Source, error) {
	var in SearchInput
	if err := json.Unmarshal(args, &in); err != nil {
		return "", nil, errors.Wrap(err, "could not parse search arguments")
	}

	results := t.store.Search(ctx, coursestore.SearchQuery{
		Query:        in.Query,
		CourseName:   in.CourseName,
		LessonNumber: in.LessonNumber,
	})
	if results.Error != "" {
		log.Debug().Str("query", in.Query).Str("error", results.Error).Msg("coursetools: search returned error")
		return results.Error, nil, nil
	}
	if results.IsEmpty() {
		return noContentMessage(in), nil, nil
	}

	text, sources := t.formatResults(ctx, results)
	return text, sources, nil
}

func noContentMessage(in SearchInput) string {
	filterInfo := ""
	if in.CourseName != "" {
		filterInfo += fmt.Sprintf(" in course '%s'", in.CourseName)
	}
	if in.LessonNumber != nil {
		filterInfo += fmt.Sprintf(" in lesson %d", *in.LessonNumber)
	}
	return fmt.Sprintf("No relevant content found%s.", filterInfo)
}

func (t *SearchTool) formatResults(ctx context.Context, results coursestore.SearchResults) (string, []tools.Source) {
	formatted := make([]string, 0, len(results.Documents))
	sources := make([]tools.Source, 0, len(results.Documents))

	for i, doc := range results.Documents {
		var meta coursestore.ChunkMetadata
		if i < len(results.Metadata) {
			meta = results.Metadata[i]
		}
		title := meta.CourseTitle
		if title == "" {
			title = "unknown"
		}

		header := "[" + title
		if meta.LessonNumber != nil {
			header += fmt.Sprintf(" - Lesson %d", *meta.LessonNumber)
		}
		header += "]"

		source := tools.Source{CourseTitle: title}
		if meta.LessonNumber != nil {
			n := *meta.LessonNumber
			source.LessonNumber = &n
			if link, ok := t.store.LessonLink(ctx, title, n); ok {
				source.LessonLink = &link
			}
		}
		sources = append(sources, source)
		formatted = append(formatted, header+"\n"+doc)
	}

	return strings.Join(formatted, "\n\n"), sources
}
