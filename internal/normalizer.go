package internal

import (
	"time"
)

// NormalizeResponse builds an assistant Message from a raw chat or clarify
// payload. Every optional slice and map comes out non-nil so display code
// only ever has to ask "empty or not".
func NormalizeResponse(resp *ChatResponse, id string, ts time.Time) Message {
	if resp == nil {
		resp = &ChatResponse{}
	}

	msg := Message{
		ID:                   id,
		Role:                 RoleAssistant,
		Content:              resp.Answer,
		Timestamp:            ts,
		Sources:              resp.Sources,
		Truncated:            resp.Truncated,
		IsClarifyingQuestion: resp.IsClarifyingQuestion,
		SuggestedAPIs:        resp.SuggestedAPIs,
		ClarificationData:    resp.ClarificationData,
		NeedsClarification:   resp.NeedsClarification,
	}

	if resp.Confidence != nil {
		msg.Confidence = *resp.Confidence
	}
	if resp.TokenUsage != nil {
		msg.TokenUsage = *resp.TokenUsage
	}
	if resp.MCPTools != nil {
		msg.MCPTools = *resp.MCPTools
	}
	if resp.OriginalQuery != nil {
		msg.OriginalQuery = *resp.OriginalQuery
	}
	if resp.MultiTurnContext != nil {
		msg.MultiTurnContext = *resp.MultiTurnContext
	}
	if resp.IntentClassification != nil {
		msg.IntentClassification = *resp.IntentClassification
	}
	if resp.ProactiveSuggestions != nil {
		msg.ProactiveSuggestions = *resp.ProactiveSuggestions
	}

	return NormalizeMessage(msg)
}

// NormalizeMessage applies display defaults to a message, including ones
// loaded from conversation history.
func NormalizeMessage(msg Message) Message {
	msg.Sources = nonNil(msg.Sources)
	msg.SuggestedAPIs = nonNil(msg.SuggestedAPIs)
	if msg.ClarificationData == nil {
		msg.ClarificationData = map[string]any{}
	}

	msg.Confidence.Factors = nonNil(msg.Confidence.Factors)
	if msg.TokenUsage.MaxTokens == 0 {
		msg.TokenUsage.MaxTokens = DefaultMaxTokens
	}

	msg.MCPTools.ToolsUsed = nonNil(msg.MCPTools.ToolsUsed)
	results := make(map[string]ToolResult, len(msg.MCPTools.ToolResults))
	for name, result := range msg.MCPTools.ToolResults {
		results[name] = normalizeToolResult(result)
	}
	msg.MCPTools.ToolResults = results

	msg.ProactiveSuggestions.Suggestions = nonNil(msg.ProactiveSuggestions.Suggestions)

	return msg
}

func normalizeToolResult(r ToolResult) ToolResult {
	r.Calculations = nonNil(r.Calculations)
	r.Operations = nonNil(r.Operations)
	r.Results = nonNil(r.Results)
	r.Status.Incidents = nonNil(r.Status.Incidents)
	r.Status.Maintenance = nonNil(r.Status.Maintenance)
	r.Status.Components = nonNil(r.Status.Components)

	validations := make([]Validation, 0, len(r.Validations))
	for _, v := range r.Validations {
		v.Validation.Errors = nonNil(v.Validation.Errors)
		v.Validation.Warnings = nonNil(v.Validation.Warnings)
		v.Validation.Suggestions = nonNil(v.Validation.Suggestions)
		validations = append(validations, v)
	}
	r.Validations = validations

	return r
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
