package internal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	messageErrorText      = "Sorry, I encountered an error while processing your message. Please try again."
	apiSelectionErrorText = "Sorry, I encountered an error while processing your API selection. Please try again."
)

// Assistant is the conversational part of the assistant service
type Assistant interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Clarify(ctx context.Context, req ClarifyRequest) (*ChatResponse, error)
	SessionHistory(ctx context.Context, sessionID string) ([]Message, error)
}

// TurnKind distinguishes typed submissions from API selections
type TurnKind int

const (
	TurnMessage TurnKind = iota
	TurnAPISelection
)

// Turn is an outbound request that has been started but not completed
type Turn struct {
	Kind        TurnKind
	SessionID   string
	Input       string // the text the reply answers
	SelectedAPI string
	Request     OutboundRequest
}

// TurnResult is the outcome of dispatching a Turn
type TurnResult struct {
	Turn     *Turn
	Response *ChatResponse
	Err      error
}

// Snapshot is a consistent view of the controller state
type Snapshot struct {
	Session       Session
	Messages      []Message
	Clarification PendingClarification
	State         ClarificationState
	Loading       bool
	Shop          string
}

// Controller owns the active session, its message list and the
// clarification state. Starting and completing a turn are separate steps
// so an event loop can run the network call in the background.
type Controller struct {
	mu            sync.Mutex
	assistant     Assistant
	feedback      *FeedbackRecorder
	session       Session
	messages      []Message
	clarification ClarificationMachine
	expanded      *SideTable[bool]
	loading       bool
	shop          string
	now           func() time.Time
}

// ControllerOption configures a Controller
type ControllerOption func(*Controller)

// WithClock sets the clock used for ids and timestamps
func WithClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.now = now
	}
}

// WithShop sets the connected store sent with chat and clarify requests
func WithShop(shop string) ControllerOption {
	return func(c *Controller) {
		c.shop = shop
	}
}

// WithFeedbackRecorder enables RateMessage
func WithFeedbackRecorder(r *FeedbackRecorder) ControllerOption {
	return func(c *Controller) {
		c.feedback = r
	}
}

// NewController creates a controller with a fresh session
func NewController(assistant Assistant, opts ...ControllerOption) *Controller {
	c := &Controller{
		assistant: assistant,
		expanded:  NewSideTable[bool](),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.session = NewSession(c.now())
	return c
}

// Session returns the active session
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// SetShop changes the connected store
func (c *Controller) SetShop(shop string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shop = shop
}

// Loading reports whether a turn is in flight
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Snapshot returns a copy of the observable state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	pending, _ := c.clarification.Pending()
	return Snapshot{
		Session:       c.session,
		Messages:      append([]Message(nil), c.messages...),
		Clarification: pending,
		State:         c.clarification.State(),
		Loading:       c.loading,
		Shop:          c.shop,
	}
}

// CreateSession starts a new empty conversation. No request is made.
func (c *Controller) CreateSession() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked(NewSession(c.now()))
	LogDebug("Started new session %s", c.session.ID)
	return c.session
}

// SwitchSession makes id the active session and loads its history. When
// loading fails the thread stays empty and the error is returned.
func (c *Controller) SwitchSession(ctx context.Context, id string) error {
	c.mu.Lock()
	c.resetLocked(Session{ID: id, CreatedAt: c.now()})
	c.mu.Unlock()

	history, err := c.assistant.SessionHistory(ctx, id)
	if err != nil {
		LogError("Failed to load conversation history for %s: %v", id, err)
		return fmt.Errorf("failed to load history for %s: %w", id, err)
	}

	loaded := make([]Message, 0, len(history))
	for _, msg := range history {
		loaded = append(loaded, NormalizeMessage(msg))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.ID != id {
		LogDebug("Discarding history for %s: session changed to %s", id, c.session.ID)
		return nil
	}
	c.messages = MergeHistory(loaded, c.messages)
	LogDebug("Loaded %d message(s) for session %s", len(loaded), id)
	return nil
}

func (c *Controller) resetLocked(session Session) {
	c.session = session
	c.messages = nil
	c.clarification.Reset()
	c.expanded.Reset()
}

// Begin starts a turn for typed text. It appends the user message at once
// and returns false without doing anything for blank text or while another
// turn is in flight.
func (c *Controller) Begin(text string) (*Turn, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.TrimSpace(text) == "" || c.loading {
		return nil, false
	}

	now := c.now()
	c.messages = append(c.messages, Message{
		ID:        MessageID(string(RoleUser), now),
		Role:      RoleUser,
		Content:   text,
		Timestamp: now,
	})
	c.loading = true

	return &Turn{
		Kind:      TurnMessage,
		SessionID: c.session.ID,
		Input:     text,
		Request:   c.clarification.Route(text, c.session.ID, c.shop),
	}, true
}

// BeginAPISelection starts the follow-up turn for a chosen API. Nothing
// changes when no API choice is pending or a turn is in flight.
func (c *Controller) BeginAPISelection(api string) (*Turn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loading {
		return nil, ErrBusy
	}
	req, err := c.clarification.SelectAPI(api, c.session.ID, c.shop)
	if err != nil {
		return nil, err
	}
	c.loading = true

	return &Turn{
		Kind:        TurnAPISelection,
		SessionID:   c.session.ID,
		Input:       req.Chat.Message,
		SelectedAPI: api,
		Request:     req,
	}, nil
}

// Dispatch performs the network call for a turn. It does not touch
// controller state and may run on any goroutine.
func (c *Controller) Dispatch(ctx context.Context, turn *Turn) TurnResult {
	var (
		resp *ChatResponse
		err  error
	)
	switch turn.Request.Kind {
	case RequestClarify:
		resp, err = c.assistant.Clarify(ctx, *turn.Request.Clarify)
	default:
		resp, err = c.assistant.Chat(ctx, *turn.Request.Chat)
	}
	return TurnResult{Turn: turn, Response: resp, Err: err}
}

// Complete applies a turn's outcome: the assistant reply or an apology
// message is appended and the clarification state is updated.
func (c *Controller) Complete(res TurnResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	turn := res.Turn
	c.loading = false
	if turn.SessionID != c.session.ID {
		LogWarn("Reply for session %s arrived after switching to %s", turn.SessionID, c.session.ID)
	}

	now := c.now()
	if res.Err != nil {
		content := messageErrorText
		if turn.Kind == TurnAPISelection {
			LogError("Error processing API selection: %v", res.Err)
			content = apiSelectionErrorText
		} else {
			LogError("Error sending message: %v", res.Err)
		}
		// A failed free-text reply consumes the clarification; a failed API
		// selection can be retried.
		if turn.Request.Kind == RequestClarify {
			c.clarification.Reset()
		}
		c.messages = append(c.messages, Message{
			ID:        MessageID("error", now),
			Role:      RoleAssistant,
			Content:   content,
			Timestamp: now,
			IsError:   true,
		})
		return
	}

	msg := NormalizeResponse(res.Response, MessageID(string(RoleAssistant), now), now)
	if turn.Kind == TurnAPISelection {
		msg.SelectedAPI = turn.SelectedAPI
	}
	c.messages = append(c.messages, msg)
	c.clarification.Observe(msg, turn.Input)
}

// SendUserTurn submits typed text and waits for the reply. A failed call
// still leaves an apology message in the thread; the error is returned
// for logging only.
func (c *Controller) SendUserTurn(ctx context.Context, text string) error {
	turn, ok := c.Begin(text)
	if !ok {
		return nil
	}
	res := c.Dispatch(ctx, turn)
	c.Complete(res)
	return res.Err
}

// SelectAPI answers a pending API choice and waits for the reply
func (c *Controller) SelectAPI(ctx context.Context, api string) error {
	turn, err := c.BeginAPISelection(api)
	if err != nil {
		return err
	}
	res := c.Dispatch(ctx, turn)
	c.Complete(res)
	return res.Err
}

// ToggleSources flips whether a message's sources are expanded
func (c *Controller) ToggleSources(messageID string) bool {
	return c.expanded.Update(messageID, func(v bool) bool { return !v })
}

// SourcesExpanded reports whether a message's sources are expanded
func (c *Controller) SourcesExpanded(messageID string) bool {
	v, _ := c.expanded.Get(messageID)
	return v
}

// Feedback returns the recorded vote for a message
func (c *Controller) Feedback(messageID string) (FeedbackEntry, bool) {
	if c.feedback == nil {
		return FeedbackEntry{}, false
	}
	return c.feedback.Entry(messageID)
}

// RateMessage records a vote for a message in the active session. Each
// message can be rated once.
func (c *Controller) RateMessage(ctx context.Context, messageID string, positive bool, rating *int, comment string) error {
	if c.feedback == nil {
		return errors.New("feedback is not configured")
	}
	if c.feedback.Has(messageID) {
		return ErrAlreadyRated
	}

	c.mu.Lock()
	vote := FeedbackVote{
		MessageID: messageID,
		SessionID: c.session.ID,
		Positive:  positive,
		Rating:    rating,
		Comment:   comment,
	}
	for _, msg := range c.messages {
		if msg.ID == messageID {
			vote.ConversationID = msg.ConversationID
			break
		}
	}
	c.mu.Unlock()

	return c.feedback.Record(ctx, vote)
}
