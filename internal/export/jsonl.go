package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/iksnae/merchant-support/internal"
)

// JSONLExporter exports transcripts one message per line
type JSONLExporter struct{}

type jsonlLine struct {
	SessionID   string        `json:"sessionId"`
	ID          string        `json:"id"`
	Role        internal.Role `json:"role"`
	Content     string        `json:"content"`
	Timestamp   string        `json:"timestamp,omitempty"`
	Confidence  string        `json:"confidence,omitempty"`
	Sources     []string      `json:"sources,omitempty"`
	SelectedAPI string        `json:"selectedApi,omitempty"`
	TotalTokens int           `json:"totalTokens,omitempty"`
	Error       bool          `json:"error,omitempty"`
}

// Export exports a transcript to JSONL format
func (e *JSONLExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range transcript.Messages {
		line := jsonlLine{
			SessionID:   transcript.Session.ID,
			ID:          msg.ID,
			Role:        msg.Role,
			Content:     msg.Content,
			Confidence:  msg.Confidence.Level,
			SelectedAPI: msg.SelectedAPI,
			TotalTokens: msg.TokenUsage.TotalTokens,
			Error:       msg.IsError,
		}
		if !msg.Timestamp.IsZero() {
			line.Timestamp = msg.Timestamp.UTC().Format(time.RFC3339)
		}
		for _, src := range msg.Sources {
			line.Sources = append(line.Sources, src.Title)
		}

		if err := enc.Encode(line); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
