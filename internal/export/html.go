package export

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/iksnae/merchant-support/internal"
)

// HTMLExporter exports transcripts as a standalone HTML page. Message text
// goes through the same renderer the chat uses, so prose is sanitized and
// code is escaped.
type HTMLExporter struct{}

type htmlPage struct {
	Title    string
	Started  string
	Messages []htmlMessage
}

type htmlMessage struct {
	Class     string
	Label     string
	Timestamp string
	Body      template.HTML
	Details   []string
	Sources   []internal.Source
}

var pageTemplate = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, sans-serif; max-width: 860px; margin: 2em auto; color: #202223; }
.message { padding: 0.75em 1em; margin: 1em 0; border-radius: 8px; }
.user { background: #e3f1df; }
.assistant { background: #f4f6f8; }
.error { background: #fbeae5; }
.meta { color: #6d7175; font-size: 0.85em; }
pre { background: #1e1e1e; color: #f4f4f4; padding: 0.75em; overflow-x: auto; border-radius: 4px; }
code { font-family: Menlo, Consolas, monospace; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{if .Started}}<p class="meta">Started {{.Started}}</p>{{end}}
{{range .Messages}}<div class="message {{.Class}}">
<p class="meta"><strong>{{.Label}}</strong>{{if .Timestamp}} · {{.Timestamp}}{{end}}</p>
{{.Body}}
{{range .Details}}<p class="meta">{{.}}</p>
{{end}}{{if .Sources}}<ul class="meta">
{{range .Sources}}<li>{{if .URL}}<a href="{{.URL}}" target="_blank" rel="noopener noreferrer">{{.Title}}</a>{{else}}{{.Title}}{{end}}</li>
{{end}}</ul>
{{end}}</div>
{{end}}</body>
</html>
`))

// Export exports a transcript to HTML
func (e *HTMLExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	page := htmlPage{
		Title: "Conversation " + transcript.Session.ID,
	}
	if !transcript.Session.CreatedAt.IsZero() {
		page.Started = transcript.Session.CreatedAt.UTC().Format(time.RFC1123)
	}

	for _, msg := range transcript.Messages {
		m := htmlMessage{
			Class: string(msg.Role),
			Label: roleLabel(msg),
			Body:  RenderHTML(msg.Content),
		}
		if msg.IsError {
			m.Class = "error"
		}
		if !msg.Timestamp.IsZero() {
			m.Timestamp = msg.Timestamp.UTC().Format("2006-01-02 15:04:05 MST")
		}
		if msg.SelectedAPI != "" {
			m.Details = append(m.Details, "Using "+msg.SelectedAPI)
		}
		if !msg.Confidence.IsEmpty() {
			m.Details = append(m.Details, fmt.Sprintf("Confidence: %s (%.0f%%)", msg.Confidence.Level, msg.Confidence.Score))
		}
		m.Sources = msg.Sources
		page.Messages = append(page.Messages, m)
	}

	if err := pageTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("failed to render html: %w", err)
	}
	return nil
}

// RenderHTML turns message content into HTML: prose through the markdown
// converter, inline code and fenced blocks escaped
func RenderHTML(content string) template.HTML {
	var out strings.Builder
	for node := range internal.Nodes(content) {
		switch node.Kind {
		case internal.NodeProse:
			out.WriteString(node.HTML)
		case internal.NodeInlineCode:
			out.WriteString("<code>" + template.HTMLEscapeString(node.Text) + "</code>")
		case internal.NodeCodeBlock:
			fmt.Fprintf(&out, `<pre><code class="language-%s">%s</code></pre>`,
				template.HTMLEscapeString(node.Language), template.HTMLEscapeString(node.Code))
		}
	}
	// Prose is sanitized by the markdown converter and everything else is
	// escaped above.
	return template.HTML(out.String())
}

// Extension returns the file extension for this format
func (e *HTMLExporter) Extension() string {
	return "html"
}
