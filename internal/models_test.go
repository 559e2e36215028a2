package internal

import (
	"encoding/json"
	"testing"
)

func TestToolDisplayName(t *testing.T) {
	tests := []struct {
		tool string
		want string
	}{
		{"calculator", "Calculator"},
		{"web_search", "Web Search"},
		{"shopify_status", "Shopify Status"},
		{"date_time", "Date/Time"},
		{"code_validator", "Code Validator"},
		{"inventory_lookup", "inventory_lookup"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ToolDisplayName(tt.tool); got != tt.want {
			t.Errorf("ToolDisplayName(%q) = %q, want %q", tt.tool, got, tt.want)
		}
	}
}

func TestMessage_IsUser(t *testing.T) {
	if !(Message{Role: RoleUser}).IsUser() {
		t.Error("user message should report IsUser")
	}
	if (Message{Role: RoleAssistant}).IsUser() {
		t.Error("assistant message should not report IsUser")
	}
}

func TestIsEmpty(t *testing.T) {
	tests := []struct {
		name  string
		empty bool
		got   bool
	}{
		{"zero confidence", true, Confidence{}.IsEmpty()},
		{"confidence with level", false, Confidence{Level: "High"}.IsEmpty()},
		{"confidence with factors only", false, Confidence{Factors: []string{"match"}}.IsEmpty()},
		{"zero token usage", true, TokenUsage{}.IsEmpty()},
		{"default max only", true, TokenUsage{MaxTokens: DefaultMaxTokens}.IsEmpty()},
		{"token usage", false, TokenUsage{TotalTokens: 10}.IsEmpty()},
		{"no tools", true, MCPTools{ToolsUsed: []string{}, ToolResults: map[string]ToolResult{}}.IsEmpty()},
		{"tools", false, MCPTools{ToolsUsed: []string{"calculator"}}.IsEmpty()},
		{"no status", true, StoreStatus{Incidents: []StatusEntry{}}.IsEmpty()},
		{"status", false, StoreStatus{OverallStatus: "operational"}.IsEmpty()},
		{"no preferences", true, UserPreferences{}.IsEmpty()},
		{"preferences", false, UserPreferences{StoreType: "apparel"}.IsEmpty()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.empty {
				t.Errorf("IsEmpty() = %v, want %v", tt.got, tt.empty)
			}
		})
	}
}

func TestChatResponse_DecodesServicePayload(t *testing.T) {
	payload := `{
		"answer": "Use the Admin API",
		"confidence": {"level": "High", "score": 91, "factors": ["docs"]},
		"sources": [{"title": "Products", "score": 0.8, "url": "https://shopify.dev"}],
		"tokenUsage": {"totalTokens": 321},
		"mcpTools": {"toolsUsed": ["calculator"], "toolResults": {"calculator": {"calculations": [{"original": "2+2", "formatted": "4"}]}}},
		"isClarifyingQuestion": true,
		"suggestedApis": ["Admin API", "Storefront API"],
		"originalQuery": "How do I fetch products?",
		"multiTurnContext": {"isFollowUp": true, "turnCount": 3, "userPreferences": {"merchantPlanTier": "plus"}},
		"intentClassification": {"intent": "setup", "confidence": 0.7},
		"proactiveSuggestions": {"suggestions": [{"suggestion": "Enable webhooks", "priority": "high"}]}
	}`

	var resp ChatResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if resp.Answer != "Use the Admin API" {
		t.Errorf("Answer = %q", resp.Answer)
	}
	if resp.Confidence == nil || resp.Confidence.Score != 91 {
		t.Errorf("Confidence = %+v", resp.Confidence)
	}
	if resp.OriginalQuery == nil || *resp.OriginalQuery != "How do I fetch products?" {
		t.Errorf("OriginalQuery = %v", resp.OriginalQuery)
	}
	if got := resp.MCPTools.ToolResults["calculator"].Calculations[0].Formatted; got != "4" {
		t.Errorf("calculator result = %q, want 4", got)
	}
	if resp.MultiTurnContext.UserPreferences.MerchantPlanTier != "plus" {
		t.Errorf("MultiTurnContext = %+v", resp.MultiTurnContext)
	}
	if len(resp.ProactiveSuggestions.Suggestions) != 1 {
		t.Errorf("ProactiveSuggestions = %+v", resp.ProactiveSuggestions)
	}
}

func TestRequests_WireFormat(t *testing.T) {
	rating := 4
	tests := []struct {
		name string
		body any
		want string
	}{
		{
			name: "chat without shop",
			body: ChatRequest{Message: "hi", SessionID: "s1"},
			want: `{"message":"hi","sessionId":"s1"}`,
		},
		{
			name: "chat with shop",
			body: ChatRequest{Message: "hi", SessionID: "s1", Shop: "a.myshopify.com"},
			want: `{"message":"hi","sessionId":"s1","shop":"a.myshopify.com"}`,
		},
		{
			name: "clarify",
			body: ClarifyRequest{ClarificationResponse: "orders", OriginalQuestion: "help", SessionID: "s1"},
			want: `{"clarificationResponse":"orders","originalQuestion":"help","sessionId":"s1"}`,
		},
		{
			name: "feedback with rating",
			body: FeedbackRequest{MessageID: "m1", SessionID: "s1", ConversationID: "c1", Feedback: true, Rating: &rating},
			want: `{"messageId":"m1","sessionId":"s1","conversationId":"c1","feedback":true,"rating":4}`,
		},
		{
			name: "negative feedback",
			body: FeedbackRequest{MessageID: "m1", SessionID: "s1", Feedback: false},
			want: `{"messageId":"m1","sessionId":"s1","feedback":false}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.body)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("Marshal() = %s, want %s", data, tt.want)
			}
		})
	}
}
