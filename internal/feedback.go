package internal

import (
	"context"
	"fmt"
	"time"
)

// FeedbackEntry is the locally recorded vote for one message
type FeedbackEntry struct {
	Positive  bool      `json:"type" yaml:"positive"`
	Rating    *int      `json:"rating,omitempty" yaml:"rating,omitempty"`
	Comment   string    `json:"comment,omitempty" yaml:"comment,omitempty"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// FeedbackVote is one thumbs up/down submission
type FeedbackVote struct {
	MessageID      string
	SessionID      string
	ConversationID string
	Positive       bool
	Rating         *int
	Comment        string
}

// FeedbackSink stores votes on the assistant service
type FeedbackSink interface {
	StoreFeedback(ctx context.Context, req FeedbackRequest) (bool, error)
}

// FeedbackRecorder sends votes and remembers the ones the service accepted.
// It does not refuse repeat votes; callers check Has first.
type FeedbackRecorder struct {
	sink    FeedbackSink
	entries *SideTable[FeedbackEntry]
	now     func() time.Time
}

// NewFeedbackRecorder creates a recorder backed by sink
func NewFeedbackRecorder(sink FeedbackSink) *FeedbackRecorder {
	return &FeedbackRecorder{
		sink:    sink,
		entries: NewSideTable[FeedbackEntry](),
		now:     time.Now,
	}
}

// Record sends the vote. The local entry is written only when the service
// reports success.
func (r *FeedbackRecorder) Record(ctx context.Context, vote FeedbackVote) error {
	ok, err := r.sink.StoreFeedback(ctx, FeedbackRequest{
		MessageID:      vote.MessageID,
		SessionID:      vote.SessionID,
		ConversationID: vote.ConversationID,
		Feedback:       vote.Positive,
		Rating:         vote.Rating,
		Comment:        vote.Comment,
	})
	if err != nil {
		LogError("Failed to submit feedback for %s: %v", vote.MessageID, err)
		return fmt.Errorf("failed to submit feedback: %w", err)
	}
	if !ok {
		LogWarn("Feedback for %s was not accepted", vote.MessageID)
		return fmt.Errorf("feedback for %s was not accepted", vote.MessageID)
	}

	r.entries.Set(vote.MessageID, FeedbackEntry{
		Positive:  vote.Positive,
		Rating:    vote.Rating,
		Comment:   vote.Comment,
		Timestamp: r.now(),
	})
	LogDebug("Feedback submitted for message %s (positive=%t)", vote.MessageID, vote.Positive)
	return nil
}

// Entry returns the recorded vote for a message
func (r *FeedbackRecorder) Entry(messageID string) (FeedbackEntry, bool) {
	return r.entries.Get(messageID)
}

// Has reports whether a message already has a recorded vote
func (r *FeedbackRecorder) Has(messageID string) bool {
	_, ok := r.entries.Get(messageID)
	return ok
}

// Len returns the number of recorded votes
func (r *FeedbackRecorder) Len() int {
	return r.entries.Len()
}
