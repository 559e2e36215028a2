package internal

import (
	"iter"
	"regexp"
	"slices"
	"strings"
)

// NodeKind is the type of a rendered content fragment
type NodeKind int

const (
	NodeProse NodeKind = iota
	NodeInlineCode
	NodeCodeBlock
)

func (k NodeKind) String() string {
	switch k {
	case NodeProse:
		return "prose"
	case NodeInlineCode:
		return "inlineCode"
	case NodeCodeBlock:
		return "codeBlock"
	default:
		return "unknown"
	}
}

// DefaultCodeLanguage labels fenced blocks without a language tag
const DefaultCodeLanguage = "code"

// ContentNode is one fragment of a message's content.
//
// Prose nodes carry sanitized HTML plus the raw markdown they came from.
// Inline code nodes carry Text. Code block nodes carry Language and Code.
type ContentNode struct {
	Kind     NodeKind
	HTML     string
	Source   string
	Text     string
	Language string
	Code     string
}

var (
	codeSplitPattern = regexp.MustCompile("(```[\\s\\S]*?```|`[^`]+`)")
	fenceLangPattern = regexp.MustCompile(`^(\w+)\n`)
)

// Nodes returns the content split into prose, inline code and fenced code
// fragments, in order. The sequence is lazy and can be ranged over any
// number of times with the same result.
func Nodes(content string) iter.Seq[ContentNode] {
	return func(yield func(ContentNode) bool) {
		pos := 0
		for _, loc := range codeSplitPattern.FindAllStringIndex(content, -1) {
			if loc[0] > pos {
				if !yield(proseNode(content[pos:loc[0]])) {
					return
				}
			}
			if !yield(codeNode(content[loc[0]:loc[1]])) {
				return
			}
			pos = loc[1]
		}
		if pos < len(content) {
			yield(proseNode(content[pos:]))
		}
	}
}

// Render collects Nodes into a slice
func Render(content string) []ContentNode {
	return slices.Collect(Nodes(content))
}

// CodeBlocks returns only the fenced blocks of content, in order. Their
// positions match the indexes used by CopyTracker.
func CodeBlocks(content string) []ContentNode {
	var blocks []ContentNode
	for node := range Nodes(content) {
		if node.Kind == NodeCodeBlock {
			blocks = append(blocks, node)
		}
	}
	return blocks
}

func proseNode(segment string) ContentNode {
	return ContentNode{
		Kind:   NodeProse,
		HTML:   MarkdownToHTML(segment),
		Source: segment,
	}
}

func codeNode(segment string) ContentNode {
	if strings.HasPrefix(segment, "```") && len(segment) >= 6 {
		body := strings.TrimSpace(segment[3 : len(segment)-3])
		language := DefaultCodeLanguage
		if m := fenceLangPattern.FindStringSubmatch(body); m != nil {
			language = m[1]
			body = body[len(m[0]):]
		}
		return ContentNode{
			Kind:     NodeCodeBlock,
			Language: language,
			Code:     body,
		}
	}
	return ContentNode{
		Kind: NodeInlineCode,
		Text: segment[1 : len(segment)-1],
	}
}

// PlainText joins the visible text of nodes without any code delimiters
func PlainText(nodes []ContentNode) string {
	var b strings.Builder
	for _, node := range nodes {
		switch node.Kind {
		case NodeProse:
			b.WriteString(node.Source)
		case NodeInlineCode:
			b.WriteString(node.Text)
		case NodeCodeBlock:
			b.WriteString(node.Code)
		}
	}
	return b.String()
}
