package coursestore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMarkdownCourse = `# Python Basics Course
Instructor: Jane Doe
Link: https://example.com/python

An introduction to Python.

## Lesson 1: Getting Started
Link: https://example.com/python/1

Python is a programming language.

- install python
- run the REPL

## Lesson 2 - Variables

Variables are names bound to values.
`

func TestLoadMarkdownCourse(t *testing.T) {
	c, err := LoadMarkdownCourse(strings.NewReader(testMarkdownCourse), 0)
	require.NoError(t, err)

	assert.Equal(t, "Python Basics Course", c.Title)
	assert.Equal(t, "Jane Doe", c.Instructor)
	assert.Equal(t, "https://example.com/python", c.Link)
	assert.Equal(t, []string{"An introduction to Python."}, c.Chunks)

	require.Len(t, c.Lessons, 2)
	assert.Equal(t, 1, c.Lessons[0].Number)
	assert.Equal(t, "Getting Started", c.Lessons[0].Title)
	assert.Equal(t, "https://example.com/python/1", c.Lessons[0].Link)
	assert.Equal(t, []string{"Python is a programming language.\n\n- install python\n- run the REPL"}, c.Lessons[0].Chunks)

	assert.Equal(t, 2, c.Lessons[1].Number)
	assert.Equal(t, "Variables", c.Lessons[1].Title)
	assert.Empty(t, c.Lessons[1].Link)
	assert.Equal(t, []string{"Variables are names bound to values."}, c.Lessons[1].Chunks)

	assert.Len(t, c.ContentChunks(), 3)
}

func TestLoadMarkdownCourse_SplitsAtChunkSize(t *testing.T) {
	doc := "# T\n\n## Lesson 1: A\n\n" + strings.Repeat("a", 30) + "\n\n" + strings.Repeat("b", 30) + "\n\n" + strings.Repeat("c", 10) + "\n"
	c, err := LoadMarkdownCourse(strings.NewReader(doc), 50)
	require.NoError(t, err)
	require.Len(t, c.Lessons, 1)
	assert.Equal(t, []string{strings.Repeat("a", 30), strings.Repeat("b", 30) + "\n\n" + strings.Repeat("c", 10)}, c.Lessons[0].Chunks)
}

func TestLoadMarkdownCourse_RequiresTitle(t *testing.T) {
	_, err := LoadMarkdownCourse(strings.NewReader("## Lesson 1: A\n\ntext\n"), 0)
	assert.Error(t, err)
}

func TestLoadMarkdownCourse_DuplicateLessons(t *testing.T) {
	_, err := LoadMarkdownCourse(strings.NewReader("# T\n\n## Lesson 1: A\n\n## Lesson 1: B\n"), 0)
	assert.Error(t, err)
}
