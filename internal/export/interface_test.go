package export

import (
	"testing"
)

func TestNewExporter(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		want    Exporter
		wantExt string
		wantErr bool
	}{
		{name: "jsonl format", format: "jsonl", want: &JSONLExporter{}, wantExt: "jsonl"},
		{name: "markdown format", format: "md", want: &MarkdownExporter{}, wantExt: "md"},
		{name: "markdown format long", format: "markdown", want: &MarkdownExporter{}, wantExt: "md"},
		{name: "yaml format", format: "yaml", want: &YAMLExporter{}, wantExt: "yaml"},
		{name: "yml alias", format: "yml", want: &YAMLExporter{}, wantExt: "yaml"},
		{name: "json format", format: "json", want: &JSONExporter{}, wantExt: "json"},
		{name: "html format", format: "html", want: &HTMLExporter{}, wantExt: "html"},
		{name: "unsupported format", format: "xml", wantErr: true},
		{name: "empty format", format: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter, err := NewExporter(tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewExporter() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				if exporter != nil {
					t.Errorf("NewExporter() returned exporter %T, want nil", exporter)
				}
				return
			}

			if got := exporter.Extension(); got != tt.wantExt {
				t.Errorf("Exporter.Extension() = %v, want %v", got, tt.wantExt)
			}
			if gotType, wantType := typeName(exporter), typeName(tt.want); gotType != wantType {
				t.Errorf("NewExporter() = %s, want %s", gotType, wantType)
			}
		})
	}
}

func typeName(e Exporter) string {
	switch e.(type) {
	case *JSONLExporter:
		return "jsonl"
	case *MarkdownExporter:
		return "markdown"
	case *YAMLExporter:
		return "yaml"
	case *JSONExporter:
		return "json"
	case *HTMLExporter:
		return "html"
	}
	return "unknown"
}
