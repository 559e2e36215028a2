package export

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gopkg.in/yaml.v3"

	"github.com/iksnae/merchant-support/internal"
)

func TestJSONExporter_RoundTrip(t *testing.T) {
	transcript := internal.CreateTestTranscript("session_1_abc")

	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(transcript, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var got internal.Transcript
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if diff := cmp.Diff(*transcript, got, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("decoded transcript mismatch (-want +got):\n%s", diff)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"conversationId": "conv-1"`)) {
		t.Errorf("expected service field names in output:\n%s", buf.String())
	}
}

func TestYAMLExporter_Sections(t *testing.T) {
	transcript := internal.CreateTestTranscript("session_1_abc")

	var buf bytes.Buffer
	if err := (&YAMLExporter{}).Export(transcript, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var got struct {
		Session struct {
			ID string `yaml:"id"`
		} `yaml:"session"`
		Messages []struct {
			Role    string `yaml:"role"`
			Content string `yaml:"content"`
		} `yaml:"messages"`
	}
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if got.Session.ID != "session_1_abc" {
		t.Errorf("session id = %q, want session_1_abc", got.Session.ID)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "user" || got.Messages[1].Role != "assistant" {
		t.Errorf("unexpected messages: %+v", got.Messages)
	}
}

func TestJSONLExporter_Lines(t *testing.T) {
	tests := []struct {
		name      string
		messages  []internal.Message
		wantLines int
		wantKeys  map[string]any
	}{
		{
			name:      "empty transcript",
			messages:  []internal.Message{},
			wantLines: 0,
		},
		{
			name:      "sample exchange",
			messages:  internal.CreateTestMessages(),
			wantLines: 2,
			wantKeys: map[string]any{
				"sessionId":   "s1",
				"role":        "user",
				"content":     "How do I add a product?",
				"timestamp":   "2024-03-01T10:00:00Z",
				"confidence":  nil,
				"selectedApi": nil,
			},
		},
		{
			name: "error reply",
			messages: []internal.Message{
				{ID: "error_1", Role: internal.RoleAssistant, Content: "Sorry", IsError: true},
			},
			wantLines: 1,
			wantKeys: map[string]any{
				"error":     true,
				"timestamp": nil,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			transcript := internal.CreateTestTranscriptWithMessages("s1", tt.messages)
			if err := (&JSONLExporter{}).Export(transcript, &buf); err != nil {
				t.Fatalf("Export() error = %v", err)
			}

			lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
			if tt.wantLines == 0 {
				if buf.Len() != 0 {
					t.Errorf("expected no output, got %q", buf.String())
				}
				return
			}
			if len(lines) != tt.wantLines {
				t.Fatalf("got %d lines, want %d", len(lines), tt.wantLines)
			}

			var first map[string]any
			if err := json.Unmarshal(lines[0], &first); err != nil {
				t.Fatalf("line is not valid JSON: %v", err)
			}
			for key, want := range tt.wantKeys {
				got, ok := first[key]
				if want == nil {
					if ok {
						t.Errorf("key %q = %v, want it omitted", key, got)
					}
					continue
				}
				if got != want {
					t.Errorf("key %q = %v, want %v", key, got, want)
				}
			}
		})
	}
}

func TestJSONLExporter_ReplyFields(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(internal.CreateTestTranscript("s1"), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))

	var reply jsonlLine
	if err := json.Unmarshal(lines[1], &reply); err != nil {
		t.Fatalf("line is not valid JSON: %v", err)
	}
	want := jsonlLine{
		SessionID:   "s1",
		ID:          "assistant_1709287201000",
		Role:        internal.RoleAssistant,
		Content:     "Use the **Admin API**:\n```graphql\nmutation { productCreate }\n```",
		Timestamp:   "2024-03-01T10:00:01Z",
		Confidence:  "High",
		Sources:     []string{"Product API"},
		TotalTokens: 1200,
	}
	if diff := cmp.Diff(want, reply); diff != "" {
		t.Errorf("reply line mismatch (-want +got):\n%s", diff)
	}
}
