package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Session identifies one conversation with the assistant service
type Session struct {
	ID        string    `json:"id" yaml:"id"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

// NewSession creates a session with a fresh client-side identifier
func NewSession(now time.Time) Session {
	return Session{
		ID:        NewSessionID(now),
		CreatedAt: now,
	}
}

// NewSessionID returns an identifier of the form session_<millis>_<random>
func NewSessionID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), random)
}

// MessageID returns the local identifier for a message created at now
func MessageID(prefix string, now time.Time) string {
	return fmt.Sprintf("%s_%d", prefix, now.UnixMilli())
}

// Transcript is a session together with its messages, used for display and export
type Transcript struct {
	Session  Session   `json:"session" yaml:"session"`
	Messages []Message `json:"messages" yaml:"messages"`
}

// ConversationSummary is one entry of the conversation history list
type ConversationSummary struct {
	SessionID    string       `json:"sessionId" yaml:"session_id"`
	Title        string       `json:"title" yaml:"title"`
	UpdatedAt    time.Time    `json:"updatedAt" yaml:"updated_at"`
	MessageCount int          `json:"messageCount" yaml:"message_count"`
	LastMessage  *LastMessage `json:"lastMessage,omitempty" yaml:"last_message,omitempty"`
}

// LastMessage is the preview of the newest message in a conversation
type LastMessage struct {
	Content string `json:"content" yaml:"content"`
	Role    Role   `json:"role" yaml:"role"`
}
