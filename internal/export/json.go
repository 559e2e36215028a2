package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/merchant-support/internal"
)

// JSONExporter exports transcripts as pretty-printed JSON, using the
// service's field names
type JSONExporter struct{}

// Export exports a transcript to JSON format
func (e *JSONExporter) Export(transcript *internal.Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(transcript)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}
