package internal

import (
	"context"
	"sync"
	"time"
)

// CreateTestMessages returns a short user/assistant exchange
func CreateTestMessages() []Message {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return []Message{
		NormalizeMessage(Message{
			ID:        "user_1709287200000",
			Role:      RoleUser,
			Content:   "How do I add a product?",
			Timestamp: ts,
		}),
		NormalizeMessage(Message{
			ID:             "assistant_1709287201000",
			Role:           RoleAssistant,
			Content:        "Use the **Admin API**:\n```graphql\nmutation { productCreate }\n```",
			Timestamp:      ts.Add(time.Second),
			ConversationID: "conv-1",
			Confidence:     Confidence{Level: "High", Score: 92, Factors: []string{"Exact documentation match"}},
			Sources: []Source{
				{ID: "s1", Title: "Product API", Score: 0.91, Category: "api", URL: "https://shopify.dev/docs/api/admin-graphql"},
			},
			TokenUsage: TokenUsage{TotalTokens: 1200},
		}),
	}
}

// CreateTestTranscript creates a transcript with sample messages
func CreateTestTranscript(id string) *Transcript {
	return &Transcript{
		Session: Session{
			ID:        id,
			CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		Messages: CreateTestMessages(),
	}
}

// CreateTestTranscriptWithMessages creates a transcript with custom messages
func CreateTestTranscriptWithMessages(id string, messages []Message) *Transcript {
	return &Transcript{
		Session:  Session{ID: id},
		Messages: messages,
	}
}

// FakeAssistant is an in-memory Assistant, ConversationLister and
// FeedbackSink. Each call records its request and returns the next queued
// reply; when the queue is empty it returns a plain answer.
type FakeAssistant struct {
	mu sync.Mutex

	Replies        []FakeReply
	History        map[string][]Message
	HistoryErr     error
	ConversationsV []ConversationSummary
	ConversationsE error
	FeedbackOK     bool
	FeedbackErr    error

	ChatRequests     []ChatRequest
	ClarifyRequests  []ClarifyRequest
	FeedbackRequests []FeedbackRequest
	HistoryRequests  []string

	// OnCall runs inside every Chat and Clarify call, before it returns
	OnCall func()
}

// FakeReply is one queued response or error
type FakeReply struct {
	Response *ChatResponse
	Err      error
}

// Chat records req and returns the next reply
func (f *FakeAssistant) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	f.mu.Lock()
	f.ChatRequests = append(f.ChatRequests, req)
	f.mu.Unlock()
	return f.next()
}

// Clarify records req and returns the next reply
func (f *FakeAssistant) Clarify(ctx context.Context, req ClarifyRequest) (*ChatResponse, error) {
	f.mu.Lock()
	f.ClarifyRequests = append(f.ClarifyRequests, req)
	f.mu.Unlock()
	return f.next()
}

// SessionHistory returns the canned history for sessionID
func (f *FakeAssistant) SessionHistory(ctx context.Context, sessionID string) ([]Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.HistoryRequests = append(f.HistoryRequests, sessionID)
	if f.HistoryErr != nil {
		return nil, f.HistoryErr
	}
	return f.History[sessionID], nil
}

// Conversations returns the canned conversation list
func (f *FakeAssistant) Conversations(ctx context.Context) ([]ConversationSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ConversationsV, f.ConversationsE
}

// StoreFeedback records req and returns the canned outcome
func (f *FakeAssistant) StoreFeedback(ctx context.Context, req FeedbackRequest) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FeedbackRequests = append(f.FeedbackRequests, req)
	return f.FeedbackOK, f.FeedbackErr
}

func (f *FakeAssistant) next() (*ChatResponse, error) {
	if f.OnCall != nil {
		f.OnCall()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Replies) == 0 {
		return &ChatResponse{Answer: "ok"}, nil
	}
	reply := f.Replies[0]
	f.Replies = f.Replies[1:]
	return reply.Response, reply.Err
}

// StepClock returns a clock that advances by step on every call
func StepClock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := current
		current = current.Add(step)
		return t
	}
}
