// Package ui renders conversations in the terminal and hosts the
// interactive chat program.
package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/iksnae/merchant-support/internal"
)

var (
	userLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("135")).
				Bold(true)

	errorLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	clarifyStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(0, 1)

	codeHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Bold(true)

	copiedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	confidenceStyles = map[string]lipgloss.Style{
		"high":   lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		"medium": lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		"low":    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
)

// ThreadState supplies the per-message UI state kept outside messages.
// Nil funcs mean "nothing recorded".
type ThreadState struct {
	SourcesExpanded func(messageID string) bool
	Feedback        func(messageID string) (internal.FeedbackEntry, bool)
	Copied          func(codeIndex int) bool
	// Pending is the open clarification; API choices are listed only for it
	Pending *internal.PendingClarification
}

// RenderedThread is a rendered conversation plus its code blocks in the
// order they are numbered on screen
type RenderedThread struct {
	Text       string
	CodeBlocks []internal.ContentNode
}

// MessageView renders messages for a terminal
type MessageView struct {
	renderer *glamour.TermRenderer
	width    int
}

// NewMessageView creates a view. theme is a glamour style name or "auto".
// When glamour cannot be set up prose is printed as plain text.
func NewMessageView(theme string, width int) *MessageView {
	if width <= 0 {
		width = 80
	}
	style := glamour.WithAutoStyle()
	if theme != "" && theme != "auto" {
		style = glamour.WithStandardStyle(theme)
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		internal.LogWarn("Failed to create markdown renderer, using plain text: %v", err)
		renderer = nil
	}
	return &MessageView{renderer: renderer, width: width}
}

// Width returns the wrap width
func (v *MessageView) Width() int {
	return v.width
}

// RenderThread renders every message, numbering code blocks across the
// whole thread
func (v *MessageView) RenderThread(messages []internal.Message, st ThreadState) RenderedThread {
	return v.RenderThreadFrom(messages, 0, st)
}

// RenderThreadFrom renders messages[from:] while keeping the reply and code
// block numbering of the whole thread
func (v *MessageView) RenderThreadFrom(messages []internal.Message, from int, st ThreadState) RenderedThread {
	var (
		b      strings.Builder
		blocks []internal.ContentNode
	)
	reply := 0
	for i, msg := range messages {
		number := 0
		if rateable(msg) {
			reply++
			number = reply
		}
		if i < from {
			blocks = append(blocks, internal.CodeBlocks(msg.Content)...)
			continue
		}
		if i > from {
			b.WriteString("\n")
		}
		b.WriteString(v.renderMessage(msg, number, st, &blocks))
	}
	return RenderedThread{Text: b.String(), CodeBlocks: blocks}
}

// RenderMessage renders a single message
func (v *MessageView) RenderMessage(msg internal.Message, st ThreadState) string {
	var blocks []internal.ContentNode
	return v.renderMessage(msg, 0, st, &blocks)
}

// ReplyIDs returns the ids of the assistant replies in thread order. Reply
// n on screen is ReplyIDs(messages)[n-1].
func ReplyIDs(messages []internal.Message) []string {
	var ids []string
	for _, msg := range messages {
		if rateable(msg) {
			ids = append(ids, msg.ID)
		}
	}
	return ids
}

func rateable(msg internal.Message) bool {
	return msg.Role == internal.RoleAssistant && !msg.IsError
}

func (v *MessageView) renderMessage(msg internal.Message, number int, st ThreadState, blocks *[]internal.ContentNode) string {
	var b strings.Builder

	b.WriteString(v.header(msg, number))
	b.WriteString("\n")
	b.WriteString(v.content(msg.Content, st, blocks))

	if rateable(msg) {
		for _, section := range v.annotations(msg, st) {
			if section == "" {
				continue
			}
			b.WriteString(indent.String(section, 2))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (v *MessageView) header(msg internal.Message, number int) string {
	var label string
	switch {
	case msg.IsError:
		label = errorLabelStyle.Render("⚠ Assistant")
	case msg.IsUser():
		label = userLabelStyle.Render("👤 You")
	default:
		label = assistantLabelStyle.Render("🤖 Assistant")
	}
	if number > 0 {
		label += " " + dimStyle.Render(fmt.Sprintf("#%d", number))
	}
	if !msg.Timestamp.IsZero() {
		label += " " + timestampStyle.Render(msg.Timestamp.Local().Format("15:04:05"))
	}
	if msg.SelectedAPI != "" {
		label += " " + badgeStyle.Render("Using "+msg.SelectedAPI)
	}
	return label
}

// content renders prose and inline code through glamour and prints fenced
// blocks with a numbered header so they can be copied by index
func (v *MessageView) content(content string, st ThreadState, blocks *[]internal.ContentNode) string {
	var (
		out  strings.Builder
		text strings.Builder
	)
	flush := func() {
		if strings.TrimSpace(text.String()) != "" {
			out.WriteString(v.markdown(text.String()))
		}
		text.Reset()
	}

	for node := range internal.Nodes(content) {
		switch node.Kind {
		case internal.NodeProse:
			text.WriteString(node.Source)
		case internal.NodeInlineCode:
			text.WriteString("`" + node.Text + "`")
		case internal.NodeCodeBlock:
			flush()
			*blocks = append(*blocks, node)
			index := len(*blocks)
			header := codeHeaderStyle.Render(fmt.Sprintf("── [%d] %s", index, node.Language))
			if st.Copied != nil && st.Copied(index) {
				header += " " + copiedStyle.Render("✓ Copied")
			}
			out.WriteString(indent.String(header, 2))
			out.WriteString("\n")
			out.WriteString(v.markdown("```" + node.Language + "\n" + node.Code + "\n```"))
		}
	}
	flush()

	return out.String()
}

func (v *MessageView) markdown(md string) string {
	if v.renderer == nil {
		return indent.String(wordwrap.String(md, v.width-2), 2) + "\n"
	}
	rendered, err := v.renderer.Render(md)
	if err != nil {
		internal.LogDebug("Markdown render failed: %v", err)
		return indent.String(wordwrap.String(md, v.width-2), 2) + "\n"
	}
	return rendered
}

func (v *MessageView) annotations(msg internal.Message, st ThreadState) []string {
	return []string{
		v.clarification(msg, st),
		dialogueContext(msg),
		confidence(msg.Confidence),
		v.tools(msg.MCPTools),
		v.sources(msg, st),
		usage(msg),
		v.suggestions(msg.ProactiveSuggestions),
		feedback(msg.ID, st),
	}
}

func (v *MessageView) clarification(msg internal.Message, st ThreadState) string {
	switch {
	case msg.IsClarifyingQuestion:
		var b strings.Builder
		b.WriteString("? API Clarification Needed\n")
		if msg.OriginalQuery != "" {
			fmt.Fprintf(&b, "Your question: %q\n", msg.OriginalQuery)
		}
		pending := st.Pending != nil && st.Pending.Kind == internal.AwaitingAPIChoice
		if pending && len(msg.SuggestedAPIs) > 0 {
			b.WriteString("Choose an API:\n")
			for i, api := range msg.SuggestedAPIs {
				fmt.Fprintf(&b, "  [%d] %s\n", i+1, api)
			}
			b.WriteString(dimStyle.Render("Select with /api <number>"))
		} else if len(msg.SuggestedAPIs) > 0 {
			b.WriteString(dimStyle.Render("Options: " + strings.Join(msg.SuggestedAPIs, ", ")))
		}
		return clarifyStyle.Render(strings.TrimRight(b.String(), "\n"))
	case msg.NeedsClarification:
		return dimStyle.Render("↳ Reply to this question to continue")
	}
	return ""
}

func dialogueContext(msg internal.Message) string {
	var parts []string
	ctx := msg.MultiTurnContext
	if ctx.IsFollowUp {
		parts = append(parts, fmt.Sprintf("↻ Follow-up (turn %d)", ctx.TurnCount))
	}
	if intent := msg.IntentClassification; intent.Intent != "" {
		parts = append(parts, fmt.Sprintf("Intent: %s (%.0f%%)", strings.ReplaceAll(intent.Intent, "_", " "), intent.Confidence*100))
	}
	if prefs := ctx.UserPreferences; !prefs.IsEmpty() {
		var profile []string
		for _, p := range []string{prefs.MerchantPlanTier, prefs.StoreType, prefs.Industry, prefs.ExperienceLevel} {
			if p != "" {
				profile = append(profile, p)
			}
		}
		parts = append(parts, "Profile: "+strings.Join(profile, " · "))
	}
	if len(parts) == 0 {
		return ""
	}
	return dimStyle.Render(strings.Join(parts, "  |  "))
}

func confidence(c internal.Confidence) string {
	if c.IsEmpty() {
		return ""
	}
	style, ok := confidenceStyles[strings.ToLower(c.Level)]
	if !ok {
		style = dimStyle
	}
	line := style.Render(fmt.Sprintf("Confidence: %s (%.0f%%)", c.Level, c.Score))
	for _, factor := range c.Factors {
		line += "\n" + dimStyle.Render("  • "+factor)
	}
	return line
}

func (v *MessageView) tools(t internal.MCPTools) string {
	if t.IsEmpty() {
		return ""
	}
	names := make([]string, 0, len(t.ToolsUsed))
	for _, tool := range t.ToolsUsed {
		names = append(names, internal.ToolDisplayName(tool))
	}

	var b strings.Builder
	b.WriteString("🔧 Tools: " + strings.Join(names, ", "))

	keys := make([]string, 0, len(t.ToolResults))
	for k := range t.ToolResults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, tool := range keys {
		for _, line := range toolResultLines(t.ToolResults[tool]) {
			b.WriteString("\n  " + internal.ToolDisplayName(tool) + ": " + line)
		}
	}
	return b.String()
}

// toolResultLines summarizes whatever fields a tool result carries
func toolResultLines(r internal.ToolResult) []string {
	if r.Error != "" {
		return []string{"error: " + r.Error}
	}
	var lines []string
	for _, c := range r.Calculations {
		switch {
		case c.Original != "":
			lines = append(lines, fmt.Sprintf("%s = %s", c.Original, c.Formatted))
		case c.Date1 != "" || c.Date2 != "":
			lines = append(lines, fmt.Sprintf("%s → %s: %s", c.Date1, c.Date2, c.Formatted))
		default:
			lines = append(lines, c.Formatted)
		}
	}
	if s := r.Status; !s.IsEmpty() {
		line := s.OverallStatus
		if s.OverallDescription != "" {
			line += " - " + s.OverallDescription
		}
		lines = append(lines, line)
		for _, inc := range s.Incidents {
			lines = append(lines, "incident: "+inc.Name)
		}
		for _, m := range s.Maintenance {
			lines = append(lines, "maintenance: "+m.Name)
		}
		if len(s.Components) > 0 {
			lines = append(lines, fmt.Sprintf("%d component(s) reported", len(s.Components)))
		}
	}
	for _, op := range r.Operations {
		lines = append(lines, fmt.Sprintf("%s: %s", op.Type, op.Formatted))
	}
	for _, val := range r.Validations {
		rep := val.Validation
		lines = append(lines, fmt.Sprintf("%s: %d error(s), %d warning(s)", val.Type, len(rep.Errors), len(rep.Warnings)))
		for _, e := range rep.Errors {
			lines = append(lines, "  ✗ "+e)
		}
		for _, w := range rep.Warnings {
			lines = append(lines, "  ! "+w)
		}
		for _, s := range rep.Suggestions {
			lines = append(lines, "  → "+s)
		}
	}
	for _, res := range r.Results {
		line := res.Title
		if res.URL != "" {
			line += " (" + res.URL + ")"
		}
		lines = append(lines, line)
	}
	if r.Summary != "" {
		lines = append(lines, r.Summary)
	}
	return lines
}

func (v *MessageView) sources(msg internal.Message, st ThreadState) string {
	if len(msg.Sources) == 0 {
		return ""
	}
	expanded := st.SourcesExpanded != nil && st.SourcesExpanded(msg.ID)
	if !expanded {
		return dimStyle.Render(fmt.Sprintf("📚 Sources (%d)", len(msg.Sources)))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📚 Sources (%d)", len(msg.Sources))
	for i, src := range msg.Sources {
		line := fmt.Sprintf("\n  %d. %s", i+1, src.Title)
		if src.Category != "" {
			line += " [" + src.Category + "]"
		}
		if src.Score > 0 {
			line += fmt.Sprintf(" %.0f%%", src.Score*100)
		}
		if src.URL != "" {
			line += "\n     " + dimStyle.Render(src.URL)
		}
		b.WriteString(line)
	}
	return b.String()
}

func usage(msg internal.Message) string {
	var parts []string
	if !msg.TokenUsage.IsEmpty() {
		parts = append(parts, fmt.Sprintf("Tokens: %d / %d", msg.TokenUsage.TotalTokens, msg.TokenUsage.MaxTokens))
	}
	if msg.Truncated {
		parts = append(parts, "Response truncated")
	}
	if len(parts) == 0 {
		return ""
	}
	return dimStyle.Render(strings.Join(parts, " · "))
}

func (v *MessageView) suggestions(p internal.ProactiveSuggestions) string {
	if len(p.Suggestions) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(suggestionStyle.Render("💡 Suggestions"))
	for _, s := range p.Suggestions {
		line := "\n  • " + s.Suggestion
		if s.Priority != "" {
			line += " " + dimStyle.Render("("+s.Priority+")")
		}
		b.WriteString(line)
		if s.Reasoning != "" {
			b.WriteString("\n" + indent.String(wordwrap.String(s.Reasoning, v.width-8), 4))
		}
		if s.Link != "" {
			b.WriteString("\n    " + dimStyle.Render(s.Link))
		}
	}
	return b.String()
}

func feedback(messageID string, st ThreadState) string {
	if st.Feedback == nil {
		return ""
	}
	entry, ok := st.Feedback(messageID)
	if !ok {
		return ""
	}
	label := "👎 Thanks for the feedback"
	if entry.Positive {
		label = "👍 Thanks for the feedback"
	}
	if entry.Rating != nil {
		label += fmt.Sprintf(" (%d/5)", *entry.Rating)
	}
	return dimStyle.Render(label)
}
