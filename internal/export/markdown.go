package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/merchant-support/internal"
)

// MarkdownExporter exports transcripts in Markdown format
type MarkdownExporter struct{}

// Export exports a transcript to Markdown format
func (e *MarkdownExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	// Header
	_, _ = fmt.Fprintf(w, "# Conversation %s\n\n", transcript.Session.ID)
	if !transcript.Session.CreatedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "**Started:** %s  \n", transcript.Session.CreatedAt.UTC().Format(time.RFC3339))
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(transcript.Messages))

	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range transcript.Messages {
		timestamp := ""
		if !msg.Timestamp.IsZero() {
			timestamp = fmt.Sprintf(" (%s)", msg.Timestamp.UTC().Format(time.RFC3339))
		}

		_, _ = fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", roleLabel(msg), timestamp, strings.TrimRight(msg.Content, "\n"))
		writeDetails(w, msg)

		if i < len(transcript.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

func roleLabel(msg internal.Message) string {
	switch {
	case msg.IsError:
		return "Assistant (error)"
	case msg.IsUser():
		return "You"
	default:
		return "Assistant"
	}
}

// writeDetails lists the reply metadata worth keeping in a written record
func writeDetails(w io.Writer, msg internal.Message) {
	var details []string
	if msg.SelectedAPI != "" {
		details = append(details, "Using "+msg.SelectedAPI)
	}
	if !msg.Confidence.IsEmpty() {
		details = append(details, fmt.Sprintf("Confidence: %s (%.0f%%)", msg.Confidence.Level, msg.Confidence.Score))
	}
	if len(msg.MCPTools.ToolsUsed) > 0 {
		names := make([]string, 0, len(msg.MCPTools.ToolsUsed))
		for _, tool := range msg.MCPTools.ToolsUsed {
			names = append(names, internal.ToolDisplayName(tool))
		}
		details = append(details, "Tools: "+strings.Join(names, ", "))
	}
	if !msg.TokenUsage.IsEmpty() {
		details = append(details, fmt.Sprintf("Tokens: %d / %d", msg.TokenUsage.TotalTokens, msg.TokenUsage.MaxTokens))
	}
	if msg.Truncated {
		details = append(details, "Response truncated")
	}
	if len(details) > 0 {
		_, _ = fmt.Fprintf(w, "_%s_\n\n", strings.Join(details, " · "))
	}

	if len(msg.Sources) > 0 {
		_, _ = fmt.Fprintf(w, "Sources:\n\n")
		for _, src := range msg.Sources {
			if src.URL != "" {
				_, _ = fmt.Fprintf(w, "- [%s](%s)\n", src.Title, src.URL)
			} else {
				_, _ = fmt.Fprintf(w, "- %s\n", src.Title)
			}
		}
		_, _ = fmt.Fprintln(w)
	}
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
