package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iksnae/merchant-support/internal"
)

func TestJSONLExporter_Export(t *testing.T) {
	tests := []struct {
		name       string
		transcript *internal.Transcript
		want       []string
		notWant    []string
	}{
		{
			name:       "empty transcript",
			transcript: internal.CreateTestTranscriptWithMessages("s1", []internal.Message{}),
			want:       []string{},
		},
		{
			name:       "sample exchange",
			transcript: internal.CreateTestTranscript("s2"),
			want: []string{
				`"sessionId":"s2"`,
				`"role":"user"`,
				`"role":"assistant"`,
				`"timestamp":"2024-03-01T10:00:00Z"`,
				`"confidence":"High"`,
				`"sources":["Product API"]`,
				`"totalTokens":1200`,
			},
			notWant: []string{`"error"`},
		},
		{
			name: "error reply",
			transcript: internal.CreateTestTranscriptWithMessages("s3", []internal.Message{
				{ID: "error_1", Role: internal.RoleAssistant, Content: "Sorry", IsError: true},
			}),
			want:    []string{`"error":true`, `"content":"Sorry"`},
			notWant: []string{`"timestamp"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter := &JSONLExporter{}
			var buf bytes.Buffer
			if err := exporter.Export(tt.transcript, &buf); err != nil {
				t.Fatalf("JSONLExporter.Export() error = %v", err)
			}

			output := buf.String()
			lines := strings.Split(strings.TrimSpace(output), "\n")
			if len(tt.transcript.Messages) == 0 {
				if output != "" {
					t.Errorf("JSONLExporter.Export() = %q, want no output", output)
				}
				return
			}
			if len(lines) != len(tt.transcript.Messages) {
				t.Fatalf("JSONLExporter.Export() wrote %d lines, want %d", len(lines), len(tt.transcript.Messages))
			}
			for i, line := range lines {
				var decoded map[string]interface{}
				if err := json.Unmarshal([]byte(line), &decoded); err != nil {
					t.Errorf("line %d is not valid JSON: %v", i+1, err)
				}
			}
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("JSONLExporter.Export() missing %q:\n%s", want, output)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(output, notWant) {
					t.Errorf("JSONLExporter.Export() should not contain %q:\n%s", notWant, output)
				}
			}
		})
	}
}
