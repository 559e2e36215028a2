package internal

import (
	"fmt"
)

// ClarificationState is the state of the clarification sub-protocol
type ClarificationState int

const (
	// ClarificationIdle means the next submission is a fresh question
	ClarificationIdle ClarificationState = iota
	// AwaitingAPIChoice means the assistant asked which API the merchant meant
	AwaitingAPIChoice
	// AwaitingFreeText means the assistant asked an open follow-up question
	AwaitingFreeText
)

func (s ClarificationState) String() string {
	switch s {
	case ClarificationIdle:
		return "idle"
	case AwaitingAPIChoice:
		return "awaiting API choice"
	case AwaitingFreeText:
		return "awaiting clarification"
	default:
		return fmt.Sprintf("ClarificationState(%d)", int(s))
	}
}

// PendingClarification is the open question the next submission answers.
// Kind selects which group of fields is meaningful.
type PendingClarification struct {
	Kind ClarificationState

	// API selection
	OriginalQuery     string
	SuggestedAPIs     []string
	ClarificationData map[string]any

	// Free text
	OriginalQuestion      string
	ClarificationQuestion string
}

// RequestKind names the endpoint an outbound turn goes to
type RequestKind int

const (
	RequestChat RequestKind = iota
	RequestClarify
)

// OutboundRequest is the request a submission should produce. Exactly one
// of Chat and Clarify is set, matching Kind.
type OutboundRequest struct {
	Kind    RequestKind
	Chat    *ChatRequest
	Clarify *ClarifyRequest
}

// ClarificationMachine tracks at most one pending clarification. It is not
// safe for concurrent use; the Controller serializes access.
type ClarificationMachine struct {
	pending *PendingClarification
}

// State returns the current state
func (m *ClarificationMachine) State() ClarificationState {
	if m.pending == nil {
		return ClarificationIdle
	}
	return m.pending.Kind
}

// Pending returns a copy of the pending clarification, if any
func (m *ClarificationMachine) Pending() (PendingClarification, bool) {
	if m.pending == nil {
		return PendingClarification{}, false
	}
	p := *m.pending
	p.SuggestedAPIs = append([]string(nil), p.SuggestedAPIs...)
	return p, true
}

// Reset discards any pending clarification
func (m *ClarificationMachine) Reset() {
	m.pending = nil
}

// Route decides where a typed submission goes. Any pending clarification
// turns the text into a clarification reply.
func (m *ClarificationMachine) Route(text, sessionID, shop string) OutboundRequest {
	if m.pending == nil {
		return OutboundRequest{
			Kind: RequestChat,
			Chat: &ChatRequest{Message: text, SessionID: sessionID, Shop: shop},
		}
	}

	original := m.pending.OriginalQuestion
	if m.pending.Kind == AwaitingAPIChoice {
		original = m.pending.OriginalQuery
	}
	return OutboundRequest{
		Kind: RequestClarify,
		Clarify: &ClarifyRequest{
			ClarificationResponse: text,
			OriginalQuestion:      original,
			SessionID:             sessionID,
			Shop:                  shop,
		},
	}
}

// SelectAPI builds the follow-up chat request for a chosen API. It fails
// unless the machine is waiting for an API choice.
func (m *ClarificationMachine) SelectAPI(api, sessionID, shop string) (OutboundRequest, error) {
	if m.pending == nil || m.pending.Kind != AwaitingAPIChoice {
		return OutboundRequest{}, &ClarificationError{State: m.State(), SelectedAPI: api}
	}
	return OutboundRequest{
		Kind: RequestChat,
		Chat: &ChatRequest{
			Message:   CombineAPIQuery(m.pending.OriginalQuery, api),
			SessionID: sessionID,
			Shop:      shop,
		},
	}, nil
}

// Observe updates the state from an assistant reply. triggeringInput is the
// text whose request produced msg.
func (m *ClarificationMachine) Observe(msg Message, triggeringInput string) {
	switch {
	case msg.IsClarifyingQuestion:
		query := msg.OriginalQuery
		if query == "" {
			query = triggeringInput
		}
		m.pending = &PendingClarification{
			Kind:              AwaitingAPIChoice,
			OriginalQuery:     query,
			SuggestedAPIs:     append([]string(nil), msg.SuggestedAPIs...),
			ClarificationData: msg.ClarificationData,
		}
	case msg.NeedsClarification:
		m.pending = &PendingClarification{
			Kind:                  AwaitingFreeText,
			OriginalQuestion:      triggeringInput,
			ClarificationQuestion: msg.Content,
		}
	default:
		m.pending = nil
	}
}

// CombineAPIQuery joins the original question and the chosen API
func CombineAPIQuery(originalQuery, api string) string {
	return originalQuery + " using " + api
}
