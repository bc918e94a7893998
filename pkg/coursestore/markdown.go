package coursestore

import (
	"bytes"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// DefaultChunkSize is the maximum number of characters merged into one chunk.
const DefaultChunkSize = 800

var (
	lessonHeading = regexp.MustCompile(`(?i)^lesson\s+(\d+)\s*[:.-]?\s*(.*)$`)
	fieldLine     = regexp.MustCompile(`(?i)^(instructor|course instructor|link|course link|lesson link)\s*:\s*(.+)$`)
)

// LoadMarkdownCourse reads one course from a markdown document:
//
//	# Python Basics Course
//	Instructor: Jane Doe
//	Link: https://example.com/python
//
//	## Lesson 1: Variables
//	Link: https://example.com/python/1
//
//	Text of the lesson...
//
// Blocks below a lesson heading become that lesson's chunks, merged up to
// chunkSize characters. Blocks before the first lesson become course chunks.
func LoadMarkdownCourse(r io.Reader, chunkSize int) (*Course, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	source, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not read markdown")
	}

	p := &markdownCourse{chunkSize: chunkSize}
	document := goldmark.DefaultParser().Parse(text.NewReader(source))
	err = ast.Walk(document, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Heading:
			p.heading(string(v.Text(source)), v.Level)
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph:
			p.block(linesOf(v, source), true)
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock:
			p.block(linesOf(v, source), false)
			return ast.WalkSkipChildren, nil
		case *ast.List:
			var entries []string
			for cur := v.FirstChild(); cur != nil; cur = cur.NextSibling() {
				entries = append(entries, "- "+string(cur.Text(source)))
			}
			p.block(strings.Join(entries, "\n"), false)
			return ast.WalkSkipChildren, nil
		case *ast.Blockquote:
			p.block(string(v.Text(source)), false)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	p.flush()

	if err := p.course.Validate(); err != nil {
		return nil, err
	}
	return &p.course, nil
}

func LoadMarkdownCourseFile(path string, chunkSize int) (*Course, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", path)
	}
	defer func() { _ = f.Close() }()
	c, err := LoadMarkdownCourse(f, chunkSize)
	if err != nil {
		return nil, errors.Wrapf(err, "could not load %s", path)
	}
	return c, nil
}

func linesOf(n ast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return strings.TrimSpace(buf.String())
}

type markdownCourse struct {
	course    Course
	chunkSize int
	lesson    *Lesson
	pending   []string
	// fields are only read directly below a heading
	inHeader bool
}

func (p *markdownCourse) heading(title string, level int) {
	title = strings.TrimSpace(title)
	if m := lessonHeading.FindStringSubmatch(title); m != nil && level > 1 {
		p.flush()
		n, _ := strconv.Atoi(m[1])
		p.course.Lessons = append(p.course.Lessons, Lesson{Number: n, Title: strings.TrimSpace(m[2])})
		p.lesson = &p.course.Lessons[len(p.course.Lessons)-1]
		p.inHeader = true
		return
	}
	if level == 1 && p.course.Title == "" {
		p.course.Title = title
		p.inHeader = true
		return
	}
	// other headings stay part of the text
	p.block(title, false)
}

// block adds a text block, consuming "Key: value" lines when it directly
// follows the course or a lesson heading.
func (p *markdownCourse) block(s string, fields bool) {
	if fields && p.inHeader {
		var rest []string
		for _, line := range strings.Split(s, "\n") {
			if !p.field(strings.TrimSpace(line)) {
				rest = append(rest, line)
			}
		}
		s = strings.TrimSpace(strings.Join(rest, "\n"))
	}
	p.inHeader = false
	if s == "" {
		return
	}

	if len(p.pending) > 0 && len(strings.Join(p.pending, "\n\n"))+2+len(s) > p.chunkSize {
		p.flush()
	}
	p.pending = append(p.pending, s)
}

func (p *markdownCourse) field(line string) bool {
	m := fieldLine.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	key, value := strings.ToLower(m[1]), strings.TrimSpace(m[2])
	switch {
	case p.lesson != nil && (key == "link" || key == "lesson link"):
		p.lesson.Link = value
	case p.lesson == nil && (key == "link" || key == "course link"):
		p.course.Link = value
	case p.lesson == nil && (key == "instructor" || key == "course instructor"):
		p.course.Instructor = value
	default:
		return false
	}
	return true
}

func (p *markdownCourse) flush() {
	if len(p.pending) == 0 {
		return
	}
	chunk := strings.Join(p.pending, "\n\n")
	p.pending = nil
	if p.lesson != nil {
		p.lesson.Chunks = append(p.lesson.Chunks, chunk)
	} else {
		p.course.Chunks = append(p.course.Chunks, chunk)
	}
}
