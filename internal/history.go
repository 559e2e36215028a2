package internal

import (
	"context"
	"sync"
	"time"
)

const (
	// MaxConversations is how many past conversations the browser lists
	MaxConversations = 8
	// PreviewLength is the rune length of a last-message preview
	PreviewLength = 50

	historyLoadErrorText = "Failed to load chat history"
	noMessagesText       = "No messages yet"
)

// ConversationLister lists past conversations on the assistant service
type ConversationLister interface {
	Conversations(ctx context.Context) ([]ConversationSummary, error)
}

// HistoryBrowser lists past conversations and moves the controller
// between them
type HistoryBrowser struct {
	lister     ConversationLister
	controller *Controller

	mu            sync.Mutex
	conversations []ConversationSummary
	loadErr       string
	loading       bool
}

// NewHistoryBrowser creates a browser for controller's sessions
func NewHistoryBrowser(lister ConversationLister, controller *Controller) *HistoryBrowser {
	return &HistoryBrowser{
		lister:     lister,
		controller: controller,
	}
}

// Load fetches the conversation list. On failure the list is emptied and
// Error reports a fixed message.
func (b *HistoryBrowser) Load(ctx context.Context) error {
	b.mu.Lock()
	b.loading = true
	b.loadErr = ""
	b.mu.Unlock()

	conversations, err := b.lister.Conversations(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = false
	if err != nil {
		LogError("Error loading chat history: %v", err)
		b.conversations = nil
		b.loadErr = historyLoadErrorText
		return err
	}
	if len(conversations) > MaxConversations {
		conversations = conversations[:MaxConversations]
	}
	b.conversations = conversations
	return nil
}

// Conversations returns the loaded list, most recent first
func (b *HistoryBrowser) Conversations() []ConversationSummary {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]ConversationSummary(nil), b.conversations...)
}

// Error returns the load error shown to the user, or ""
func (b *HistoryBrowser) Error() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loadErr
}

// Loading reports whether a load is in progress
func (b *HistoryBrowser) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

// Select switches to a past conversation. Selecting the active session does
// nothing.
func (b *HistoryBrowser) Select(ctx context.Context, sessionID string) error {
	if sessionID == b.controller.Session().ID {
		return nil
	}
	return b.controller.SwitchSession(ctx, sessionID)
}

// NewChat starts a fresh session
func (b *HistoryBrowser) NewChat() Session {
	return b.controller.CreateSession()
}

// Preview returns the one-line summary of a conversation's newest message
func Preview(c ConversationSummary) string {
	if c.LastMessage == nil {
		return noMessagesText
	}
	text := truncateRunes(c.LastMessage.Content, PreviewLength)
	if c.LastMessage.Role == RoleUser {
		return "You: " + text
	}
	return "AI: " + text
}

// FormatUpdated renders a conversation timestamp relative to now: a clock
// time within a day, a weekday within a week, otherwise month and day.
func FormatUpdated(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < 24*time.Hour:
		return t.Format("15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon")
	default:
		return t.Format("Jan 2")
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
