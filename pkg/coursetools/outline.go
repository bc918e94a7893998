package coursetools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-go-golems/coursebot/pkg/coursestore"
	"github.com/go-go-golems/coursebot/pkg/inference/tools"
	"github.com/pkg/errors"
)

const OutlineToolName = "get_course_outline"

type OutlineInput struct {
	CourseTitle string `json:"course_title" jsonschema:"description=Course title or partial course name (e.g. 'MCP', 'Introduction', 'Python Basics')"`
}

type OutlineStore interface {
	coursestore.CourseResolver
	coursestore.CatalogReader
}

// OutlineTool renders the lesson list of a course. Outlines are not
// citable passages, so the tool produces no sources.
type OutlineTool struct {
	store OutlineStore
}

var _ tools.Tool = &OutlineTool{}

func NewOutlineTool(store OutlineStore) *OutlineTool {
	return &OutlineTool{store: store}
}

func (t *OutlineTool) Definition() tools.ToolDefinition {
	return tools.ToolDefinition{
		Name:        OutlineToolName,
		Description: "Get complete course outline including course title, link, and all lessons with their numbers and titles",
		InputSchema: tools.SchemaFor[OutlineInput](),
	}
}

func (t *OutlineTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in OutlineInput
	if err := json.Unmarshal(args, &in); err != nil {
		return "", errors.Wrap(err, "could not parse outline arguments")
	}

	title, ok := t.store.ResolveCourseName(ctx, in.CourseTitle)
	if !ok {
		return fmt.Sprintf("No course found matching '%s'. Please check the course title and try again.", in.CourseTitle), nil
	}

	course, err := t.store.CourseMetadata(ctx, title)
	if err != nil {
		if errors.Is(err, coursestore.ErrCourseNotFound) {
			return fmt.Sprintf("Course '%s' not found in metadata.", title), nil
		}
		return "", err
	}
	return FormatOutline(course), nil
}

// FormatOutline renders a course as markdown.
func FormatOutline(c *coursestore.Course) string {
	title := orDefault(c.Title, "Unknown Course")
	instructor := orDefault(c.Instructor, "Unknown Instructor")
	link := orDefault(c.Link, "No link available")

	outline := []string{
		"**Course Title:** " + title,
		"",
		"**Instructor:** " + instructor,
		"",
		"**Course Link:** " + link,
		"",
		fmt.Sprintf("**Total Lessons:** %d", len(c.Lessons)),
		"",
		"## Course Outline",
		"",
	}

	lessons := c.SortedLessons()
	if len(lessons) == 0 {
		outline = append(outline, "No lessons available")
		return strings.Join(outline, "\n")
	}
	for _, l := range lessons {
		line := fmt.Sprintf("**Lesson %d:** %s", l.Number, orDefault(l.Title, "Untitled Lesson"))
		if l.Link != "" {
			line += fmt.Sprintf(" → [View Lesson](%s)", l.Link)
		}
		outline = append(outline, line, "")
	}
	return strings.Join(outline, "\n")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
