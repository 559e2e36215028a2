package internal

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.*?)\*`)
	linkPattern   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

	proseSanitizer = newProseSanitizer()
)

const lineBreak = "<br>"

// newProseSanitizer allows exactly the markup MarkdownToHTML emits
func newProseSanitizer() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("strong", "em", "br", "ul", "li")
	p.AllowStandardURLs()
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("target").Matching(regexp.MustCompile(`^_blank$`)).OnElements("a")
	p.AllowAttrs("rel").Matching(regexp.MustCompile(`^noopener noreferrer$`)).OnElements("a")
	return p
}

// MarkdownToHTML converts the assistant's markdown subset to sanitized HTML.
// Rules run in a fixed order: bold, italic, links, line breaks, then bullet
// lists. Bold must precede italic so "**" is never split by a single "*".
func MarkdownToHTML(text string) string {
	if text == "" {
		return ""
	}

	out := html.EscapeString(text)
	out = boldPattern.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicPattern.ReplaceAllString(out, "<em>$1</em>")
	out = linkPattern.ReplaceAllString(out, `<a href="$2" target="_blank" rel="noopener noreferrer">$1</a>`)
	out = strings.ReplaceAll(out, "\n", lineBreak)
	out = convertListItems(out)

	return proseSanitizer.Sanitize(out)
}

// convertListItems turns "- " lines into list items and wraps the span from
// the first item to the last one in a single list.
func convertListItems(s string) string {
	lines := strings.Split(s, lineBreak)
	isItem := make([]bool, len(lines))
	found := false
	for i, line := range lines {
		if rest, ok := strings.CutPrefix(line, "- "); ok {
			lines[i] = "<li>" + rest + "</li>"
			isItem[i] = true
			found = true
		}
	}
	if !found {
		return s
	}

	var b strings.Builder
	for i, line := range lines {
		if i > 0 && !isItem[i-1] && !isItem[i] {
			b.WriteString(lineBreak)
		}
		b.WriteString(line)
	}
	out := b.String()

	first := strings.Index(out, "<li>")
	last := strings.LastIndex(out, "</li>") + len("</li>")
	return out[:first] + "<ul>" + out[first:last] + "</ul>" + out[last:]
}
