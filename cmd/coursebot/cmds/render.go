package cmds

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/go-go-golems/coursebot/pkg/inference/toolloop"
	"github.com/go-go-golems/coursebot/pkg/inference/tools"
	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
)

type outputFormat string

const (
	formatText     outputFormat = "text"
	formatMarkdown outputFormat = "markdown"
	formatHTML     outputFormat = "html"
)

func parseOutputFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(s)); f {
	case formatText, formatMarkdown, formatHTML:
		return f, nil
	case "md":
		return formatMarkdown, nil
	default:
		return "", errors.Errorf("unknown output format %q", s)
	}
}

// answerMarkdown renders the answer followed by its cited sources. A source
// with a lesson link becomes a markdown link.
func answerMarkdown(ans *toolloop.Answer) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(ans.Text))
	b.WriteString("\n")
	if len(ans.Sources) == 0 {
		return b.String()
	}
	b.WriteString("\n**Sources**\n\n")
	for _, s := range ans.Sources {
		if s.LessonLink != nil && *s.LessonLink != "" {
			fmt.Fprintf(&b, "- [%s](%s)\n", s.Label(), *s.LessonLink)
		} else {
			fmt.Fprintf(&b, "- %s\n", s.Label())
		}
	}
	return b.String()
}

func sourcesText(sources []tools.Source) string {
	var b strings.Builder
	for _, s := range sources {
		b.WriteString("- " + s.Label())
		if s.LessonLink != nil && *s.LessonLink != "" {
			b.WriteString(" <" + *s.LessonLink + ">")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func markdownToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", errors.Wrap(err, "could not render html")
	}
	return buf.String(), nil
}

// writeAnswer prints ans in the requested format. style selects the
// glamour style for markdown output on a terminal; empty prints raw
// markdown.
func writeAnswer(w io.Writer, ans *toolloop.Answer, format outputFormat, style string) error {
	var out string
	switch format {
	case formatHTML:
		html, err := markdownToHTML(answerMarkdown(ans))
		if err != nil {
			return err
		}
		out = html
	case formatMarkdown:
		out = answerMarkdown(ans)
		if style != "" {
			rendered, err := glamour.Render(out, style)
			if err != nil {
				return errors.Wrap(err, "could not render markdown")
			}
			out = rendered
		}
	default:
		out = strings.TrimSpace(ans.Text) + "\n"
		if len(ans.Sources) > 0 {
			out += "\nSources:\n" + sourcesText(ans.Sources)
		}
	}
	_, err := io.WriteString(w, out)
	return err
}
