package internal

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var testStart = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestController(fake *FakeAssistant, opts ...ControllerOption) *Controller {
	opts = append([]ControllerOption{WithClock(StepClock(testStart, time.Second))}, opts...)
	return NewController(fake, opts...)
}

func TestController_SendUserTurn(t *testing.T) {
	fake := &FakeAssistant{Replies: []FakeReply{
		{Response: &ChatResponse{Answer: "Use productCreate", TokenUsage: &TokenUsage{TotalTokens: 40}}},
	}}
	c := newTestController(fake, WithShop("demo.myshopify.com"))

	if err := c.SendUserTurn(context.Background(), "How do I add a product?"); err != nil {
		t.Fatalf("SendUserTurn() error = %v", err)
	}

	snap := c.Snapshot()
	if len(snap.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(snap.Messages))
	}
	user, reply := snap.Messages[0], snap.Messages[1]
	if user.Role != RoleUser || user.Content != "How do I add a product?" {
		t.Errorf("user message = %+v", user)
	}
	if !strings.HasPrefix(user.ID, "user_") || !strings.HasPrefix(reply.ID, "assistant_") {
		t.Errorf("ids = %q, %q", user.ID, reply.ID)
	}
	if reply.Content != "Use productCreate" || reply.TokenUsage.MaxTokens != DefaultMaxTokens {
		t.Errorf("reply = %+v", reply)
	}
	if snap.Loading {
		t.Error("Loading should be false after the turn completes")
	}

	if len(fake.ChatRequests) != 1 {
		t.Fatalf("got %d chat requests, want 1", len(fake.ChatRequests))
	}
	req := fake.ChatRequests[0]
	if req.SessionID != snap.Session.ID || req.Shop != "demo.myshopify.com" {
		t.Errorf("chat request = %+v", req)
	}
}

func TestController_BeginIgnoresBlankAndBusy(t *testing.T) {
	c := newTestController(&FakeAssistant{})

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, ok := c.Begin(text); ok {
			t.Errorf("Begin(%q) should be ignored", text)
		}
	}

	turn, ok := c.Begin("first")
	if !ok {
		t.Fatal("Begin() should start a turn")
	}
	// The user message shows before the reply arrives.
	snap := c.Snapshot()
	if !snap.Loading || len(snap.Messages) != 1 {
		t.Fatalf("after Begin: loading=%v messages=%d", snap.Loading, len(snap.Messages))
	}

	if _, ok := c.Begin("second"); ok {
		t.Error("Begin() while loading should be ignored")
	}
	if _, err := c.BeginAPISelection("Admin API"); !errors.Is(err, ErrBusy) {
		t.Errorf("BeginAPISelection() while loading error = %v, want ErrBusy", err)
	}

	c.Complete(c.Dispatch(context.Background(), turn))
	if got := len(c.Snapshot().Messages); got != 2 {
		t.Errorf("got %d messages, want 2", got)
	}
}

func TestController_FailureAppendsApology(t *testing.T) {
	serviceErr := errors.New("service unavailable")
	fake := &FakeAssistant{Replies: []FakeReply{{Err: serviceErr}}}
	c := newTestController(fake)

	err := c.SendUserTurn(context.Background(), "hello")
	if !errors.Is(err, serviceErr) {
		t.Fatalf("SendUserTurn() error = %v, want %v", err, serviceErr)
	}

	msgs := c.Snapshot().Messages
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Role != RoleUser {
		t.Error("user message must stay after a failure")
	}
	apology := msgs[1]
	if !apology.IsError || apology.Role != RoleAssistant {
		t.Errorf("apology = %+v", apology)
	}
	if apology.Content != messageErrorText {
		t.Errorf("apology content = %q", apology.Content)
	}
	if !strings.HasPrefix(apology.ID, "error_") {
		t.Errorf("apology id = %q, want error_ prefix", apology.ID)
	}
}

func TestController_APISelectionFlow(t *testing.T) {
	fake := &FakeAssistant{Replies: []FakeReply{
		{Response: &ChatResponse{
			Answer:               "Which API do you mean?",
			IsClarifyingQuestion: true,
			SuggestedAPIs:        []string{"Admin API", "Storefront API"},
		}},
		{Response: &ChatResponse{Answer: "With the Admin API, call orders."}},
	}}
	c := newTestController(fake)
	ctx := context.Background()

	if err := c.SendUserTurn(ctx, "How do I fetch orders?"); err != nil {
		t.Fatalf("SendUserTurn() error = %v", err)
	}
	snap := c.Snapshot()
	if snap.State != AwaitingAPIChoice {
		t.Fatalf("State = %v, want awaiting API choice", snap.State)
	}
	if snap.Clarification.OriginalQuery != "How do I fetch orders?" {
		t.Errorf("OriginalQuery = %q", snap.Clarification.OriginalQuery)
	}

	if err := c.SelectAPI(ctx, "Admin API"); err != nil {
		t.Fatalf("SelectAPI() error = %v", err)
	}

	if got := fake.ChatRequests[1].Message; got != "How do I fetch orders? using Admin API" {
		t.Errorf("follow-up message = %q", got)
	}
	snap = c.Snapshot()
	if snap.State != ClarificationIdle {
		t.Errorf("State = %v, want idle", snap.State)
	}
	last := snap.Messages[len(snap.Messages)-1]
	if last.SelectedAPI != "Admin API" {
		t.Errorf("SelectedAPI = %q, want Admin API", last.SelectedAPI)
	}
	// Selecting an API adds no user message.
	if len(snap.Messages) != 3 {
		t.Errorf("got %d messages, want 3", len(snap.Messages))
	}
}

func TestController_FailedAPISelectionKeepsChoice(t *testing.T) {
	fake := &FakeAssistant{Replies: []FakeReply{
		{Response: &ChatResponse{IsClarifyingQuestion: true, SuggestedAPIs: []string{"Admin API"}}},
		{Err: errors.New("timeout")},
	}}
	c := newTestController(fake)
	ctx := context.Background()

	_ = c.SendUserTurn(ctx, "fetch orders")
	_ = c.SelectAPI(ctx, "Admin API")

	snap := c.Snapshot()
	last := snap.Messages[len(snap.Messages)-1]
	if last.Content != apiSelectionErrorText {
		t.Errorf("apology = %q, want the API selection text", last.Content)
	}
	if snap.State != AwaitingAPIChoice {
		t.Errorf("State = %v, want the choice to stay pending", snap.State)
	}
}

func TestController_FreeTextClarification(t *testing.T) {
	fake := &FakeAssistant{Replies: []FakeReply{
		{Response: &ChatResponse{Answer: "Which store?", NeedsClarification: true}},
		{Err: errors.New("boom")},
	}}
	c := newTestController(fake)
	ctx := context.Background()

	_ = c.SendUserTurn(ctx, "sync inventory")
	if c.Snapshot().State != AwaitingFreeText {
		t.Fatalf("State = %v, want awaiting clarification", c.Snapshot().State)
	}

	_ = c.SendUserTurn(ctx, "the outdoor store")
	if len(fake.ClarifyRequests) != 1 {
		t.Fatalf("got %d clarify requests, want 1", len(fake.ClarifyRequests))
	}
	req := fake.ClarifyRequests[0]
	if req.OriginalQuestion != "sync inventory" || req.ClarificationResponse != "the outdoor store" {
		t.Errorf("clarify request = %+v", req)
	}
	// A failed clarification reply resets the state.
	if c.Snapshot().State != ClarificationIdle {
		t.Errorf("State = %v, want idle after failure", c.Snapshot().State)
	}
}

func TestController_SelectAPIWhenIdle(t *testing.T) {
	c := newTestController(&FakeAssistant{})

	err := c.SelectAPI(context.Background(), "Admin API")
	var clarificationErr *ClarificationError
	if !errors.As(err, &clarificationErr) {
		t.Fatalf("SelectAPI() error = %v, want ClarificationError", err)
	}
	if len(c.Snapshot().Messages) != 0 || c.Loading() {
		t.Error("a rejected selection must not change state")
	}
}

func TestController_SessionLifecycle(t *testing.T) {
	fake := &FakeAssistant{
		History: map[string][]Message{
			"session_old": {
				{ID: "u1", Role: RoleUser, Content: "hi"},
				{ID: "a1", Role: RoleAssistant, Content: "hello"},
				{Role: RoleUser, Content: "ok", Timestamp: testStart},
				{Role: RoleUser, Content: "ok", Timestamp: testStart},
			},
		},
		Replies: []FakeReply{{Response: &ChatResponse{Answer: "Which API?", IsClarifyingQuestion: true}}},
	}
	c := newTestController(fake)
	ctx := context.Background()
	first := c.Session()

	if !strings.HasPrefix(first.ID, "session_") {
		t.Errorf("session id = %q", first.ID)
	}

	_ = c.SendUserTurn(ctx, "question")
	c.ToggleSources("assistant_x")

	if err := c.SwitchSession(ctx, "session_old"); err != nil {
		t.Fatalf("SwitchSession() error = %v", err)
	}
	snap := c.Snapshot()
	if snap.Session.ID != "session_old" {
		t.Errorf("Session.ID = %q", snap.Session.ID)
	}
	if len(snap.Messages) != 4 {
		t.Errorf("got %d messages, want the 4 history messages as sent", len(snap.Messages))
	}
	if snap.State != ClarificationIdle {
		t.Errorf("State = %v, want idle after switching", snap.State)
	}
	if c.SourcesExpanded("assistant_x") {
		t.Error("expansion state should reset on switch")
	}
	if snap.Messages[1].Sources == nil {
		t.Error("loaded messages should be normalized")
	}

	fresh := c.CreateSession()
	if fresh.ID == "session_old" || fresh.ID == first.ID {
		t.Errorf("CreateSession() reused id %q", fresh.ID)
	}
	if len(c.Snapshot().Messages) != 0 {
		t.Error("new session should start empty")
	}
}

func TestController_SwitchSessionTwiceWhileAwaitingAPIChoice(t *testing.T) {
	fake := &FakeAssistant{Replies: []FakeReply{{Response: &ChatResponse{
		Answer:               "Which API?",
		IsClarifyingQuestion: true,
		SuggestedAPIs:        []string{"Admin API", "Storefront API"},
	}}}}
	c := newTestController(fake)
	ctx := context.Background()

	if err := c.SendUserTurn(ctx, "How do I fetch products?"); err != nil {
		t.Fatalf("SendUserTurn() error = %v", err)
	}
	if got := c.Snapshot().State; got != AwaitingAPIChoice {
		t.Fatalf("State = %v, want AwaitingAPIChoice", got)
	}

	var snaps []Snapshot
	for i := 0; i < 2; i++ {
		if err := c.SwitchSession(ctx, "session_other"); err != nil {
			t.Fatalf("SwitchSession() #%d error = %v", i+1, err)
		}
		snaps = append(snaps, c.Snapshot())
	}

	for i, snap := range snaps {
		if snap.State != ClarificationIdle || len(snap.Messages) != 0 || snap.Loading {
			t.Errorf("switch #%d: state=%v messages=%d loading=%v, want an empty idle session", i+1, snap.State, len(snap.Messages), snap.Loading)
		}
	}
	if diff := cmp.Diff(snaps[0], snaps[1], cmpopts.IgnoreFields(Session{}, "CreatedAt")); diff != "" {
		t.Errorf("second switch changed state (-first +second):\n%s", diff)
	}
}

func TestController_SwitchSessionFailure(t *testing.T) {
	fake := &FakeAssistant{HistoryErr: errors.New("not found")}
	c := newTestController(fake)

	err := c.SwitchSession(context.Background(), "session_gone")
	if err == nil {
		t.Fatal("SwitchSession() should return the load error")
	}
	snap := c.Snapshot()
	if snap.Session.ID != "session_gone" || len(snap.Messages) != 0 {
		t.Errorf("after failed switch: session=%q messages=%d", snap.Session.ID, len(snap.Messages))
	}
}

func TestController_LateReplyLandsInCurrentSession(t *testing.T) {
	c := newTestController(&FakeAssistant{})
	ctx := context.Background()

	turn, _ := c.Begin("question")
	res := c.Dispatch(ctx, turn)
	next := c.CreateSession()
	c.Complete(res)

	snap := c.Snapshot()
	if snap.Session.ID != next.ID {
		t.Fatalf("session changed to %q", snap.Session.ID)
	}
	if len(snap.Messages) != 1 || snap.Messages[0].Role != RoleAssistant {
		t.Errorf("messages = %+v, want the late reply", snap.Messages)
	}
	if snap.Loading {
		t.Error("Loading should be cleared")
	}
}

func TestController_RateMessage(t *testing.T) {
	fake := &FakeAssistant{
		FeedbackOK: true,
		History: map[string][]Message{
			"s1": {{ID: "a1", Role: RoleAssistant, Content: "answer", ConversationID: "conv-9"}},
		},
	}
	c := newTestController(fake, WithFeedbackRecorder(NewFeedbackRecorder(fake)))
	ctx := context.Background()
	if err := c.SwitchSession(ctx, "s1"); err != nil {
		t.Fatalf("SwitchSession() error = %v", err)
	}

	rating := 5
	if err := c.RateMessage(ctx, "a1", true, &rating, "great"); err != nil {
		t.Fatalf("RateMessage() error = %v", err)
	}
	if err := c.RateMessage(ctx, "a1", false, nil, ""); !errors.Is(err, ErrAlreadyRated) {
		t.Errorf("second RateMessage() error = %v, want ErrAlreadyRated", err)
	}

	if len(fake.FeedbackRequests) != 1 {
		t.Fatalf("got %d feedback requests, want 1", len(fake.FeedbackRequests))
	}
	req := fake.FeedbackRequests[0]
	if req.ConversationID != "conv-9" || req.SessionID != "s1" || !req.Feedback || *req.Rating != 5 {
		t.Errorf("feedback request = %+v", req)
	}
	entry, ok := c.Feedback("a1")
	if !ok || !entry.Positive || entry.Comment != "great" {
		t.Errorf("Feedback() = %+v, %v", entry, ok)
	}
}

func TestController_RateMessageWithoutRecorder(t *testing.T) {
	c := newTestController(&FakeAssistant{})
	if err := c.RateMessage(context.Background(), "a1", true, nil, ""); err == nil {
		t.Error("RateMessage() without a recorder should fail")
	}
	if _, ok := c.Feedback("a1"); ok {
		t.Error("Feedback() without a recorder should be empty")
	}
}

func TestController_ToggleSources(t *testing.T) {
	c := newTestController(&FakeAssistant{})

	if c.SourcesExpanded("a1") {
		t.Error("sources start collapsed")
	}
	if !c.ToggleSources("a1") || !c.SourcesExpanded("a1") {
		t.Error("first toggle expands")
	}
	if c.ToggleSources("a1") {
		t.Error("second toggle collapses")
	}
}
