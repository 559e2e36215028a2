package internal

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []ContentNode
	}{
		{
			name:    "empty",
			content: "",
			want:    nil,
		},
		{
			name:    "prose only",
			content: "Hello **there**",
			want: []ContentNode{
				{Kind: NodeProse, HTML: "Hello <strong>there</strong>", Source: "Hello **there**"},
			},
		},
		{
			name:    "mixed content",
			content: "Run `npm i` then:\n```bash\nnpm start\n```\nDone",
			want: []ContentNode{
				{Kind: NodeProse, HTML: "Run ", Source: "Run "},
				{Kind: NodeInlineCode, Text: "npm i"},
				{Kind: NodeProse, HTML: " then:<br>", Source: " then:\n"},
				{Kind: NodeCodeBlock, Language: "bash", Code: "npm start"},
				{Kind: NodeProse, HTML: "<br>Done", Source: "\nDone"},
			},
		},
		{
			name:    "fence without language",
			content: "```\nplain\n```",
			want: []ContentNode{
				{Kind: NodeCodeBlock, Language: DefaultCodeLanguage, Code: "plain"},
			},
		},
		{
			name:    "unclosed fence stays prose",
			content: "```go\nx",
			want: []ContentNode{
				{Kind: NodeProse, HTML: "```go<br>x", Source: "```go\nx"},
			},
		},
		{
			name:    "fence, prose and inline code",
			content: "See ```js\nconsole.log(1)\n``` and `x=1`",
			want: []ContentNode{
				{Kind: NodeProse, HTML: "See ", Source: "See "},
				{Kind: NodeCodeBlock, Language: "js", Code: "console.log(1)"},
				{Kind: NodeProse, HTML: " and ", Source: " and "},
				{Kind: NodeInlineCode, Text: "x=1"},
			},
		},
		{
			name:    "one-line fence has no language",
			content: "```python```",
			want: []ContentNode{
				{Kind: NodeCodeBlock, Language: DefaultCodeLanguage, Code: "python"},
			},
		},
		{
			name:    "two code blocks",
			content: "```js\na()\n```\n```py\nb()\n```",
			want: []ContentNode{
				{Kind: NodeCodeBlock, Language: "js", Code: "a()"},
				{Kind: NodeProse, HTML: "<br>", Source: "\n"},
				{Kind: NodeCodeBlock, Language: "py", Code: "b()"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.content)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Render() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRender_PlainTextHasNoCode(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "fence and inline code", content: "See ```js\nconsole.log(1)\n``` and `x=1`", want: "See console.log(1) and x=1"},
		{name: "inline code only", content: "Set `a` and `b`", want: "Set a and b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plain := PlainText(Render(tt.content))
			if plain != tt.want {
				t.Fatalf("PlainText() = %q, want %q", plain, tt.want)
			}
			for _, node := range Render(plain) {
				if node.Kind != NodeProse {
					t.Errorf("Render(%q) produced a %s node, want prose only", plain, node.Kind)
				}
			}
		})
	}
}

func TestNodes_Restartable(t *testing.T) {
	seq := Nodes("a `b` c")

	count := func() int {
		n := 0
		for range seq {
			n++
		}
		return n
	}
	if first, second := count(), count(); first != 3 || second != 3 {
		t.Errorf("ranging twice gave %d and %d nodes, want 3 and 3", first, second)
	}

	// Stopping early is allowed.
	for node := range seq {
		if node.Kind != NodeProse {
			t.Errorf("first node kind = %v, want prose", node.Kind)
		}
		break
	}
}

func TestCodeBlocks(t *testing.T) {
	content := "Try `inline` first.\n```graphql\nquery { shop { name } }\n```\nor\n```\necho hi\n```"
	blocks := CodeBlocks(content)

	if len(blocks) != 2 {
		t.Fatalf("got %d code blocks, want 2", len(blocks))
	}
	if blocks[0].Language != "graphql" || blocks[0].Code != "query { shop { name } }" {
		t.Errorf("block 1 = %+v", blocks[0])
	}
	if blocks[1].Language != DefaultCodeLanguage || blocks[1].Code != "echo hi" {
		t.Errorf("block 2 = %+v", blocks[1])
	}
}

func TestPlainText(t *testing.T) {
	got := PlainText(Render("Run `npm i` then:\n```bash\nnpm start\n```\nDone"))
	want := "Run npm i then:\nnpm start\nDone"
	if got != want {
		t.Errorf("PlainText() = %q, want %q", got, want)
	}
}

func TestNodeKind_String(t *testing.T) {
	tests := []struct {
		kind NodeKind
		want string
	}{
		{NodeProse, "prose"},
		{NodeInlineCode, "inlineCode"},
		{NodeCodeBlock, "codeBlock"},
		{NodeKind(7), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
